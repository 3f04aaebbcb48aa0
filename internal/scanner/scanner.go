// internal/scanner/scanner.go
package scanner

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "registry-matcher/internal/common/errors"
	"registry-matcher/internal/common/logger"
	"registry-matcher/internal/matching"
	"registry-matcher/internal/models"
)

// CitizenSource provides the two registry partitions, each internally
// ordered by last name then first name.
type CitizenSource interface {
	FetchByStatus(ctx context.Context, filter models.StatusFilter) ([]models.CitizenRecord, error)
}

type Config struct {
	// Parallelism bounds the number of workers sharding the cross product
	// by pending-record index. 1 means a sequential scan.
	Parallelism int
	// FetchTimeout bounds each partition fetch. Zero means no limit.
	FetchTimeout time.Duration
}

// Scanner performs the full pending x reference duplicate scan. Every scan
// is a complete recomputation: nothing survives from earlier scans.
type Scanner struct {
	config *Config
	source CitizenSource
	logger logger.Logger
}

func New(config *Config, source CitizenSource, log logger.Logger) *Scanner {
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}
	return &Scanner{
		config: config,
		source: source,
		logger: log.WithFields(map[string]interface{}{"component": "scanner"}),
	}
}

// Scan fetches both partitions, scores every pending/reference pair, keeps
// the pairs at or above the threshold and returns them ordered by
// confidence descending. Ties keep the order in which the cross product
// produced them (pending-then-reference iteration order).
//
// The scan either fully completes or returns an error with no result:
// a fetch failure or a cancelled context never yields a partial match list.
func (s *Scanner) Scan(ctx context.Context, cfg models.ScanConfiguration) (*models.ScanResult, error) {
	if !cfg.Valid() {
		return nil, apperrors.NewInvalidThresholdError(cfg.MinConfidence)
	}

	result := &models.ScanResult{
		ScanID:        uuid.NewString(),
		MinConfidence: cfg.MinConfidence,
		StartedAt:     time.Now().UTC(),
	}
	log := s.logger.WithFields(map[string]interface{}{"scanId": result.ScanID})

	pending, err := s.fetchPartition(ctx, models.FilterPending, result)
	if err != nil {
		return nil, err
	}
	reference, err := s.fetchPartition(ctx, models.FilterReference, result)
	if err != nil {
		return nil, err
	}

	result.PendingCount = len(pending)
	result.ReferenceCount = len(reference)

	// An empty partition means there is nothing to compare against.
	if len(pending) == 0 || len(reference) == 0 {
		result.Candidates = []models.MatchCandidate{}
		result.Duration = time.Since(result.StartedAt)
		log.Info("scan skipped, empty partition", map[string]interface{}{
			"pending":   len(pending),
			"reference": len(reference),
		})
		return result, nil
	}

	candidates, err := s.comparePartitions(ctx, pending, reference, cfg.MinConfidence)
	if err != nil {
		return nil, err
	}

	// Stable sort keeps first-encountered order between equal confidences.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	result.Candidates = candidates
	result.PairsCompared = len(pending) * len(reference)
	result.Duration = time.Since(result.StartedAt)

	log.Info("scan completed", map[string]interface{}{
		"pending":       result.PendingCount,
		"reference":     result.ReferenceCount,
		"pairsCompared": result.PairsCompared,
		"candidates":    len(candidates),
		"skipped":       result.SkippedRecords,
		"durationMs":    result.Duration.Milliseconds(),
	})

	return result, nil
}

// fetchPartition loads one partition in full and drops records whose birth
// date could not be read, counting them as data-quality skips. The scanner
// never runs against a partially fetched partition.
func (s *Scanner) fetchPartition(ctx context.Context, filter models.StatusFilter, result *models.ScanResult) ([]models.CitizenRecord, error) {
	if s.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.FetchTimeout)
		defer cancel()
	}

	records, err := s.source.FetchByStatus(ctx, filter)
	if err != nil {
		s.logger.Error("partition fetch failed", map[string]interface{}{
			"scanId": result.ScanID,
			"filter": string(filter),
			"error":  err.Error(),
		})
		return nil, apperrors.NewCitizenFetchError(err.Error())
	}

	valid := records[:0]
	for _, rec := range records {
		if rec.BirthDate.IsZero() {
			result.SkippedRecords++
			s.logger.Warn("skipping record with invalid birth date", map[string]interface{}{
				"scanId":    result.ScanID,
				"citizenId": rec.ID,
				"filter":    string(filter),
			})
			continue
		}
		valid = append(valid, rec)
	}
	return valid, nil
}

// comparePartitions scores the full cross product. Pairs are sharded by
// pending-record index across a bounded worker pool; each pending record's
// candidates are collected in its own slot, so merging the slots in pending
// order reproduces the exact sequence a sequential scan would produce.
func (s *Scanner) comparePartitions(ctx context.Context, pending, reference []models.CitizenRecord, minConfidence int) ([]models.MatchCandidate, error) {
	perPending := make([][]models.MatchCandidate, len(pending))

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := s.config.Parallelism
	if workers > len(pending) {
		workers = len(pending)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				perPending[i] = comparePending(pending[i], reference, minConfidence)
			}
		}()
	}

	cancelled := false
feed:
	for i := range pending {
		select {
		case jobs <- i:
		case <-ctx.Done():
			cancelled = true
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled || ctx.Err() != nil {
		return nil, apperrors.NewScanCancelledError(ctx.Err().Error())
	}

	var candidates []models.MatchCandidate
	for _, part := range perPending {
		candidates = append(candidates, part...)
	}
	return candidates, nil
}

func comparePending(pending models.CitizenRecord, reference []models.CitizenRecord, minConfidence int) []models.MatchCandidate {
	var out []models.MatchCandidate
	for _, ref := range reference {
		fields, confidence := matching.Score(pending, ref)
		if confidence >= minConfidence {
			out = append(out, models.MatchCandidate{
				Pending:    pending,
				Reference:  ref,
				Confidence: confidence,
				Fields:     fields,
			})
		}
	}
	return out
}
