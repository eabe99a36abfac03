package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "matching-workers/internal/common/errors"
	"matching-workers/internal/common/logger"
	"matching-workers/internal/models"
)

const insertMatchResult = `
	INSERT INTO match_results (
		id, run_id, campaign_id, candidate_id, rank, overall_score,
		category_match, audience_match, budget_fit, location_match,
		engagement_quality, past_performance, regional_fit,
		reasons, algorithm_version, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

const matchResultColumns = `
	id, run_id, campaign_id, candidate_id, rank, overall_score,
	category_match, audience_match, budget_fit, location_match,
	engagement_quality, past_performance, regional_fit,
	reasons, algorithm_version, created_at`

var selectLatestResult = `
	SELECT` + matchResultColumns + `
	FROM match_results
	WHERE campaign_id = $1 AND candidate_id = $2
	ORDER BY created_at DESC, id DESC
	LIMIT 1`

var selectLatestRun = `
	SELECT` + matchResultColumns + `
	FROM match_results
	WHERE campaign_id = $1
	  AND run_id = (
		SELECT run_id FROM match_results
		WHERE campaign_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	  )
	ORDER BY rank ASC
	LIMIT $2`

// PostgresResultStore is the append-only match result store. Each
// PersistResults call is one run written in a single transaction.
type PostgresResultStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresResultStore(db *sql.DB, log logger.Logger) *PostgresResultStore {
	return &PostgresResultStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"repository": "match-results"}),
	}
}

// PersistResults writes one record per result. Either every record of the
// run is committed or none is.
func (s *PostgresResultStore) PersistResults(ctx context.Context, campaignID string, results []models.MatchResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewResultPersistError(fmt.Errorf("begin transaction: %w", err))
	}

	runID := results[0].RunID
	if runID == "" {
		runID = uuid.New().String()
	}

	for i := range results {
		r := &results[i]
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if r.RunID == "" {
			r.RunID = runID
		}
		r.CampaignID = campaignID

		reasons := r.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		reasonsJSON, err := json.Marshal(reasons)
		if err != nil {
			_ = tx.Rollback()
			return apperrors.NewResultPersistError(fmt.Errorf("encode reasons: %w", err))
		}

		f := r.Factors
		if _, err := tx.ExecContext(ctx, insertMatchResult,
			r.ID, r.RunID, campaignID, r.CandidateID, r.Rank, r.OverallScore,
			f.CategoryMatch, f.AudienceMatch, f.BudgetFit, f.LocationMatch,
			f.EngagementQuality, f.PastPerformance, f.RegionalFit,
			reasonsJSON, r.AlgorithmVersion, r.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return apperrors.NewResultPersistError(fmt.Errorf("insert match result %d of %d: %w", i+1, len(results), err))
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewResultPersistError(fmt.Errorf("commit match results: %w", err))
	}

	s.logger.Info("match results persisted", map[string]interface{}{
		"campaignId": campaignID,
		"runId":      runID,
		"count":      len(results),
	})
	return nil
}

// FindResult returns the most recent record for the pair.
func (s *PostgresResultStore) FindResult(ctx context.Context, campaignID, candidateID string) (*models.MatchResult, error) {
	row := s.db.QueryRowContext(ctx, selectLatestResult, campaignID, candidateID)
	result, err := scanMatchResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(campaignID, candidateID)
	}
	if err != nil {
		return nil, apperrors.NewResultLookupError(err)
	}
	return result, nil
}

// LatestRun returns up to limit records of the campaign's most recent run
// in rank order.
func (s *PostgresResultStore) LatestRun(ctx context.Context, campaignID string, limit int) ([]models.MatchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectLatestRun, campaignID, limit)
	if err != nil {
		return nil, apperrors.NewResultLookupError(err)
	}
	defer rows.Close()

	var results []models.MatchResult
	for rows.Next() {
		r, err := scanMatchResult(rows)
		if err != nil {
			return nil, apperrors.NewResultLookupError(err)
		}
		results = append(results, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewResultLookupError(err)
	}
	if len(results) == 0 {
		return nil, apperrors.NewRunNotFoundError(campaignID)
	}
	return results, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatchResult(row rowScanner) (*models.MatchResult, error) {
	var (
		r       models.MatchResult
		reasons []byte
	)
	err := row.Scan(
		&r.ID, &r.RunID, &r.CampaignID, &r.CandidateID, &r.Rank, &r.OverallScore,
		&r.Factors.CategoryMatch, &r.Factors.AudienceMatch, &r.Factors.BudgetFit, &r.Factors.LocationMatch,
		&r.Factors.EngagementQuality, &r.Factors.PastPerformance, &r.Factors.RegionalFit,
		&reasons, &r.AlgorithmVersion, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(reasons) > 0 {
		if err := json.Unmarshal(reasons, &r.Reasons); err != nil {
			return nil, fmt.Errorf("decode reasons: %w", err)
		}
	}
	if r.Reasons == nil {
		r.Reasons = []string{}
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}
