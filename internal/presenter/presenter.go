// internal/presenter/presenter.go
package presenter

import (
	"context"
	"fmt"

	apperrors "registry-matcher/internal/common/errors"
	"registry-matcher/internal/common/logger"
	"registry-matcher/internal/models"
	"registry-matcher/internal/store/address"
)

// DefaultPageSize is the fixed review page size.
const DefaultPageSize = 15

// Presenter paginates a scan snapshot and enriches candidates with address
// display names for human review. Enrichment is cosmetic only: it never
// touches confidence scores or ordering, and the presenter mutates nothing.
type Presenter struct {
	addresses address.Source
	pageSize  int
	logger    logger.Logger
}

func New(addresses address.Source, pageSize int, log logger.Logger) *Presenter {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Presenter{
		addresses: addresses,
		pageSize:  pageSize,
		logger:    log.WithFields(map[string]interface{}{"component": "presenter"}),
	}
}

// Page slices one fixed-size window out of the snapshot. Page indexes are
// zero-based; an index past the end yields an empty page, not an error.
func (p *Presenter) Page(result *models.ScanResult, pageIndex int) (models.MatchPage, error) {
	if result == nil {
		return models.MatchPage{}, apperrors.NewNoScanResultError()
	}
	if pageIndex < 0 {
		return models.MatchPage{}, fmt.Errorf("page index must not be negative: %d", pageIndex)
	}

	total := len(result.Candidates)
	totalPages := (total + p.pageSize - 1) / p.pageSize

	page := models.MatchPage{
		ScanID:     result.ScanID,
		PageIndex:  pageIndex,
		PageSize:   p.pageSize,
		TotalCount: total,
		TotalPages: totalPages,
		Candidates: []models.MatchCandidate{},
	}

	start := pageIndex * p.pageSize
	if start >= total {
		return page, nil
	}
	end := start + p.pageSize
	if end > total {
		end = total
	}
	page.Candidates = result.Candidates[start:end]
	return page, nil
}

// Detail exposes one candidate's full field-score breakdown with both
// records' address codes resolved to display names. Unresolved codes fall
// back to the raw code; a failed lookup degrades the same way instead of
// hiding the candidate.
func (p *Presenter) Detail(ctx context.Context, result *models.ScanResult, index int) (*models.CandidateDetail, error) {
	if result == nil {
		return nil, apperrors.NewNoScanResultError()
	}
	if index < 0 || index >= len(result.Candidates) {
		return nil, fmt.Errorf("candidate index out of range: %d of %d", index, len(result.Candidates))
	}

	candidate := result.Candidates[index]
	detail := &models.CandidateDetail{
		Candidate:        candidate,
		PendingAddress:   p.resolve(ctx, candidate.Pending),
		ReferenceAddress: p.resolve(ctx, candidate.Reference),
	}
	return detail, nil
}

func (p *Presenter) resolve(ctx context.Context, rec models.CitizenRecord) models.AddressDisplay {
	return models.AddressDisplay{
		Province: p.lookup(ctx, models.AddressProvince, rec.ProvinceCode),
		Lgu:      p.lookup(ctx, models.AddressLgu, rec.LguCode),
		Barangay: p.lookup(ctx, models.AddressBarangay, rec.BarangayCode),
	}
}

func (p *Presenter) lookup(ctx context.Context, kind models.AddressKind, code string) string {
	if code == "" {
		return ""
	}
	names, err := p.addresses.FetchNames(ctx, kind, []string{code})
	if err != nil {
		p.logger.Warn("address lookup failed, showing raw code", map[string]interface{}{
			"kind":  string(kind),
			"code":  code,
			"error": err.Error(),
		})
		return code
	}
	if name, ok := names[code]; ok {
		return name
	}
	return code
}
