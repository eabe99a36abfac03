package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"matching-workers/internal/common/logger"
	"matching-workers/internal/models"
)

// CandidateSource is implemented by every candidate adapter.
type CandidateSource interface {
	FetchEligibleCandidates(ctx context.Context, minFollowers int64) ([]models.CandidateProfile, error)
}

const selectEligibleCandidates = `
	SELECT id, follower_count, engagement_rate, categories, demographics,
	       location, average_rate, bio, is_verified
	FROM candidates
	WHERE follower_count >= $1
	ORDER BY created_at ASC, id ASC`

const selectRecentAnalytics = `
	SELECT candidate_id, views, engagements, recorded_at
	FROM (
		SELECT candidate_id, views, engagements, recorded_at,
		       ROW_NUMBER() OVER (PARTITION BY candidate_id ORDER BY recorded_at DESC) AS rn
		FROM candidate_analytics
		WHERE candidate_id = ANY($1)
	) recent
	WHERE rn <= $2
	ORDER BY candidate_id, recorded_at DESC`

// PostgresCandidateRepository reads candidates and their recent analytics
// from the profile tables.
type PostgresCandidateRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresCandidateRepository(db *sql.DB, log logger.Logger) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"repository": "candidates-postgres"}),
	}
}

// FetchEligibleCandidates returns candidates with at least minFollowers
// followers, oldest first, each with up to MaxAnalyticsWindow recent
// analytics snapshots.
func (r *PostgresCandidateRepository) FetchEligibleCandidates(ctx context.Context, minFollowers int64) ([]models.CandidateProfile, error) {
	rows, err := r.db.QueryContext(ctx, selectEligibleCandidates, minFollowers)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var (
		candidates []models.CandidateProfile
		ids        []string
		index      = map[string]int{}
	)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		index[c.ID] = len(candidates)
		ids = append(ids, c.ID)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}

	if len(candidates) == 0 {
		return []models.CandidateProfile{}, nil
	}

	if err := r.attachAnalytics(ctx, ids, index, candidates); err != nil {
		return nil, err
	}

	r.logger.Debug("eligible candidates loaded", map[string]interface{}{
		"minFollowers": minFollowers,
		"count":        len(candidates),
	})
	return candidates, nil
}

func scanCandidate(rows *sql.Rows) (models.CandidateProfile, error) {
	var (
		c            models.CandidateProfile
		categories   pq.StringArray
		demographics []byte
	)
	if err := rows.Scan(
		&c.ID, &c.FollowerCount, &c.EngagementRate, &categories, &demographics,
		&c.Location, &c.AverageRate, &c.Bio, &c.IsVerified,
	); err != nil {
		return c, fmt.Errorf("scan candidate: %w", err)
	}

	c.Categories = []string(categories)
	if len(demographics) > 0 {
		var d models.AudienceDescriptor
		// A malformed descriptor is treated as absent so the factor falls
		// back to its neutral score.
		if err := json.Unmarshal(demographics, &d); err == nil {
			c.Demographics = &d
		}
	}
	if c.FollowerCount < 0 {
		c.FollowerCount = 0
	}
	if c.EngagementRate < 0 {
		c.EngagementRate = 0
	}
	return c, nil
}

func (r *PostgresCandidateRepository) attachAnalytics(ctx context.Context, ids []string, index map[string]int, candidates []models.CandidateProfile) error {
	rows, err := r.db.QueryContext(ctx, selectRecentAnalytics, pq.Array(ids), models.MaxAnalyticsWindow)
	if err != nil {
		return fmt.Errorf("query candidate analytics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			candidateID string
			snap        models.AnalyticsSnapshot
			recordedAt  time.Time
		)
		if err := rows.Scan(&candidateID, &snap.Views, &snap.Engagements, &recordedAt); err != nil {
			return fmt.Errorf("scan candidate analytics: %w", err)
		}
		snap.RecordedAt = recordedAt.UTC()

		i, ok := index[candidateID]
		if !ok || len(candidates[i].Analytics) >= models.MaxAnalyticsWindow {
			continue
		}
		candidates[i].Analytics = append(candidates[i].Analytics, snap)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate candidate analytics: %w", err)
	}
	return nil
}
