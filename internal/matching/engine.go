package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "matching-workers/internal/common/errors"
	"matching-workers/internal/common/logger"
	"matching-workers/internal/common/metrics"
	"matching-workers/internal/models"
)

const tracerName = "matching-workers/internal/matching"

// CandidateRepository returns the eligible candidate pool.
type CandidateRepository interface {
	FetchEligibleCandidates(ctx context.Context, minFollowers int64) ([]models.CandidateProfile, error)
}

// ResultStore persists match results. Writes are append-only.
type ResultStore interface {
	PersistResults(ctx context.Context, campaignID string, results []models.MatchResult) error
	FindResult(ctx context.Context, campaignID, candidateID string) (*models.MatchResult, error)
}

// Engine runs recommendation and explanation requests. It is safe for
// concurrent use; runs for different campaigns share nothing.
type Engine struct {
	config     *Config
	scorer     *Scorer
	policy     Policy
	candidates CandidateRepository
	results    ResultStore
	logger     logger.Logger
	tracer     trace.Tracer

	newID func() string
	now   func() time.Time
}

func NewEngine(cfg *Config, candidates CandidateRepository, results ResultStore, log logger.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching config: %w", err)
	}
	if candidates == nil || results == nil {
		return nil, errors.New("candidate repository and result store are required")
	}

	scorer, err := NewScorer(cfg)
	if err != nil {
		return nil, err
	}

	return &Engine{
		config:     cfg,
		scorer:     scorer,
		policy:     Policy{MinScore: cfg.MinScore, MaxResults: cfg.MaxResults},
		candidates: candidates,
		results:    results,
		logger:     log.WithFields(map[string]interface{}{"component": "matching-engine"}),
		tracer:     otel.Tracer(tracerName),
		newID:      func() string { return uuid.New().String() },
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// Scorer exposes the engine's scorer.
func (e *Engine) Scorer() *Scorer {
	return e.scorer
}

// GenerateRecommendations scores the eligible pool against criteria,
// keeps the best candidates and persists them as one run. Nothing is
// written when the run fails or is cancelled before persistence.
func (e *Engine) GenerateRecommendations(ctx context.Context, criteria *models.MatchingCriteria) ([]models.MatchResult, error) {
	start := time.Now()

	if err := ValidateCriteria(criteria); err != nil {
		metrics.RunDuration.WithLabelValues("invalid").Observe(time.Since(start).Seconds())
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "matching.generate", trace.WithAttributes(
		attribute.String("campaign.id", criteria.CampaignID),
	))
	defer span.End()

	ranked, err := e.generate(ctx, criteria)
	outcome := "success"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	elapsed := time.Since(start)
	metrics.RunDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())

	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(ranked)))
	fields := map[string]interface{}{
		"campaignId":  criteria.CampaignID,
		"resultCount": len(ranked),
		"durationMs":  elapsed.Milliseconds(),
	}
	e.logger.Info("recommendations generated", fields)
	if e.config.SlowRunThreshold > 0 && elapsed > e.config.SlowRunThreshold {
		e.logger.Warn("recommendation run exceeded threshold", fields)
	}
	return ranked, nil
}

func (e *Engine) generate(ctx context.Context, criteria *models.MatchingCriteria) ([]models.MatchResult, error) {
	minFollowers := criteria.MinFollowers
	if minFollowers == 0 {
		minFollowers = e.config.DefaultMinFollowers
	}

	pool, err := e.candidates.FetchEligibleCandidates(ctx, minFollowers)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperrors.NewRunCancelledError(ctxErr)
		}
		if _, ok := apperrors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewCandidateFetchError(err)
	}

	e.logger.Debug("candidate pool fetched", map[string]interface{}{
		"campaignId":   criteria.CampaignID,
		"poolSize":     len(pool),
		"minFollowers": minFollowers,
	})

	if len(pool) == 0 {
		return []models.MatchResult{}, nil
	}

	scored, err := e.scoreAll(ctx, criteria, pool)
	if err != nil {
		return nil, apperrors.NewRunCancelledError(err)
	}
	metrics.CandidatesScored.Add(float64(len(scored)))

	ranked := e.policy.Apply(scored)
	if len(ranked) == 0 {
		return ranked, nil
	}

	runID := e.newID()
	createdAt := e.now()
	for i := range ranked {
		ranked[i].ID = e.newID()
		ranked[i].RunID = runID
		ranked[i].CampaignID = criteria.CampaignID
		ranked[i].CreatedAt = createdAt
	}

	// A run cancelled after scoring must not start writing.
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewRunCancelledError(err)
	}

	if err := e.results.PersistResults(ctx, criteria.CampaignID, ranked); err != nil {
		if _, ok := apperrors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewResultPersistError(err)
	}

	metrics.ResultsPersisted.Add(float64(len(ranked)))
	for i := range ranked {
		metrics.ObserveFactors(ranked[i].Factors)
	}
	return ranked, nil
}

// scoreAll scores the pool in parallel. The output keeps the pool order.
func (e *Engine) scoreAll(ctx context.Context, criteria *models.MatchingCriteria, pool []models.CandidateProfile) ([]models.MatchResult, error) {
	scored := make([]models.MatchResult, len(pool))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Concurrency)

	for i := range pool {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scored[i] = e.scorer.Score(&pool[i], criteria)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scored, nil
}

// ExplainRecommendation explains the most recent stored result for the
// pair.
func (e *Engine) ExplainRecommendation(ctx context.Context, campaignID, candidateID string) (*models.Explanation, error) {
	if err := validateIDs(campaignID, candidateID); err != nil {
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "matching.explain", trace.WithAttributes(
		attribute.String("campaign.id", campaignID),
		attribute.String("candidate.id", candidateID),
	))
	defer span.End()

	result, err := e.results.FindResult(ctx, campaignID, candidateID)
	switch {
	case err != nil && apperrors.IsNotFound(err):
		return nil, err
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if _, ok := apperrors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewResultLookupError(err)
	case result == nil:
		return nil, apperrors.NewNotFoundError(campaignID, candidateID)
	}

	explanation := Explain(result)
	e.logger.Debug("recommendation explained", map[string]interface{}{
		"campaignId":   campaignID,
		"candidateId":  candidateID,
		"overallScore": result.OverallScore,
	})
	return explanation, nil
}
