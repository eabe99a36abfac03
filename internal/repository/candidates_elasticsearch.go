package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	apperrors "matching-workers/internal/common/errors"
	"matching-workers/internal/common/logger"
	"matching-workers/internal/models"
)

const defaultSearchPageSize = 500

var ErrCandidateIndexNotFound = errors.New("candidate index not found")

// candidateIndexMapping types the sort and filter fields. id must be a
// keyword: Elasticsearch refuses to sort on text fields.
const candidateIndexMapping = `{
  "mappings": {
    "properties": {
      "id":             {"type": "keyword"},
      "createdAt":      {"type": "date"},
      "followerCount":  {"type": "long"},
      "engagementRate": {"type": "double"},
      "categories":     {"type": "keyword"},
      "location":       {"type": "text"},
      "averageRate":    {"type": "double"},
      "bio":            {"type": "text"},
      "isVerified":     {"type": "boolean"}
    }
  }
}`

// ElasticsearchCandidateRepository reads the candidate pool from a search
// index whose documents use the CandidateProfile JSON shape plus a
// createdAt field. Pages are walked with search_after on
// (createdAt, id) so the pool order matches the Postgres source.
type ElasticsearchCandidateRepository struct {
	client   *elasticsearch.Client
	index    string
	pageSize int
	logger   logger.Logger
}

func NewElasticsearchCandidateRepository(client *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchCandidateRepository {
	return &ElasticsearchCandidateRepository{
		client:   client,
		index:    index,
		pageSize: defaultSearchPageSize,
		logger:   log.WithFields(map[string]interface{}{"repository": "candidates-elasticsearch", "index": index}),
	}
}

// EnsureIndex creates the candidate index with candidateIndexMapping when
// it does not exist yet. An existing index is left untouched.
func (r *ElasticsearchCandidateRepository) EnsureIndex(ctx context.Context) error {
	res, err := r.client.Indices.Exists([]string{r.index}, r.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check candidate index: %w", err)
	}
	res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
		return nil
	case res.StatusCode != http.StatusNotFound:
		return fmt.Errorf("check candidate index: %s", res.Status())
	}

	res, err = r.client.Indices.Create(r.index,
		r.client.Indices.Create.WithContext(ctx),
		r.client.Indices.Create.WithBody(strings.NewReader(candidateIndexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create candidate index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create candidate index: %s", res.Status())
	}
	r.logger.Info("candidate index created", nil)
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.CandidateProfile `json:"_source"`
			Sort   []interface{}           `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

func (r *ElasticsearchCandidateRepository) buildQuery(minFollowers int64, after []interface{}) map[string]interface{} {
	query := map[string]interface{}{
		"size": r.pageSize,
		"query": map[string]interface{}{
			"range": map[string]interface{}{
				"followerCount": map[string]interface{}{"gte": minFollowers},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"createdAt": "asc"},
			map[string]interface{}{"id": "asc"},
		},
	}
	if len(after) > 0 {
		query["search_after"] = after
	}
	return query
}

func (r *ElasticsearchCandidateRepository) FetchEligibleCandidates(ctx context.Context, minFollowers int64) ([]models.CandidateProfile, error) {
	candidates := []models.CandidateProfile{}
	var after []interface{}

	for {
		page, last, err := r.searchPage(ctx, minFollowers, after)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, page...)
		if len(page) < r.pageSize || last == nil {
			break
		}
		after = last
	}

	for i := range candidates {
		if len(candidates[i].Analytics) > models.MaxAnalyticsWindow {
			candidates[i].Analytics = candidates[i].Analytics[:models.MaxAnalyticsWindow]
		}
	}

	r.logger.Debug("eligible candidates searched", map[string]interface{}{
		"minFollowers": minFollowers,
		"count":        len(candidates),
	})
	return candidates, nil
}

func (r *ElasticsearchCandidateRepository) searchPage(ctx context.Context, minFollowers int64, after []interface{}) ([]models.CandidateProfile, []interface{}, error) {
	body, err := json.Marshal(r.buildQuery(minFollowers, after))
	if err != nil {
		return nil, nil, fmt.Errorf("encode candidate query: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, apperrors.NewCandidateSearchError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return nil, nil, apperrors.NewCandidateSearchError(fmt.Errorf("%w: %s", ErrCandidateIndexNotFound, r.index))
		}
		return nil, nil, apperrors.NewCandidateSearchError(fmt.Errorf("search error: %s", res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, nil, apperrors.NewCandidateSearchError(fmt.Errorf("decode search response: %w", err))
	}

	page := make([]models.CandidateProfile, 0, len(parsed.Hits.Hits))
	var last []interface{}
	for _, hit := range parsed.Hits.Hits {
		c := hit.Source
		if c.FollowerCount < 0 {
			c.FollowerCount = 0
		}
		if c.EngagementRate < 0 {
			c.EngagementRate = 0
		}
		page = append(page, c)
		last = hit.Sort
	}
	return page, last, nil
}
