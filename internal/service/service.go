// internal/service/service.go
package service

import (
	"context"
	"sync"
	"time"

	apperrors "registry-matcher/internal/common/errors"
	"registry-matcher/internal/common/logger"
	"registry-matcher/internal/common/metrics"
	"registry-matcher/internal/common/observability"
	"registry-matcher/internal/models"
	"registry-matcher/internal/presenter"
	"registry-matcher/internal/scanner"
)

// Service owns the scan lifecycle: it runs scans, holds the single
// immutable result snapshot, and serves pages and candidate details from
// it. Starting a new scan cancels any scan still in flight; its result
// replaces the snapshot wholesale.
type Service struct {
	scanner   *scanner.Scanner
	presenter *presenter.Presenter
	obs       *observability.Observability
	logger    logger.Logger

	mu       sync.Mutex
	snapshot *models.ScanResult
	cancel   context.CancelFunc
	gen      uint64
}

func New(sc *scanner.Scanner, pr *presenter.Presenter, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		scanner:   sc,
		presenter: pr,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "match-service"}),
	}
}

// Scan recomputes the full match list for the given threshold. On any
// failure the previous snapshot is discarded and the error is returned to
// the caller; a scan never leaves a stale or partial result behind.
func (s *Service) Scan(ctx context.Context, minConfidence int) (*models.ScanResult, error) {
	cfg := models.ScanConfiguration{MinConfidence: minConfidence}
	if !cfg.Valid() {
		return nil, apperrors.NewInvalidThresholdError(minConfidence)
	}

	s.mu.Lock()
	if s.cancel != nil {
		// A threshold change or refresh supersedes the running scan.
		s.cancel()
	}
	scanCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	defer cancel()

	start := time.Now()
	result, err := s.scanner.Scan(scanCtx, cfg)

	status := "completed"
	if err != nil {
		status = "failed"
		if apperrors.HasCode(err, apperrors.ErrCodeScanCancelled) {
			status = "cancelled"
		}
	}
	metrics.ScansTotal.WithLabelValues(status).Inc()
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	if s.obs != nil {
		s.obs.RecordScan(ctx, status)
		s.obs.RecordScanDuration(ctx, time.Since(start), status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// Superseded by a newer scan; leave its snapshot alone.
		return nil, apperrors.NewScanCancelledError("superseded by a newer scan")
	}
	s.cancel = nil

	if err != nil {
		s.snapshot = nil
		return nil, err
	}

	metrics.PairsCompared.Add(float64(result.PairsCompared))
	metrics.CandidatesKept.Add(float64(len(result.Candidates)))
	metrics.RecordsSkipped.Add(float64(result.SkippedRecords))

	s.snapshot = result
	return result, nil
}

// GetPage returns one fixed-size window over the last completed scan.
func (s *Service) GetPage(pageIndex int) (models.MatchPage, error) {
	return s.presenter.Page(s.currentSnapshot(), pageIndex)
}

// CandidateDetail returns the full field-score breakdown of one candidate,
// with address codes resolved to display names.
func (s *Service) CandidateDetail(ctx context.Context, index int) (*models.CandidateDetail, error) {
	return s.presenter.Detail(ctx, s.currentSnapshot(), index)
}

// LastScan returns the current snapshot, or nil when no scan has completed.
func (s *Service) LastScan() *models.ScanResult {
	return s.currentSnapshot()
}

func (s *Service) currentSnapshot() *models.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}
