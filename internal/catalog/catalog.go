// internal/catalog/catalog.go
package catalog

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"course-workers/internal/catalog/pagination"
	"course-workers/internal/common/errors"
	"course-workers/internal/common/logger"
	"course-workers/internal/models"
	"course-workers/internal/recommendation/candidates"

	"github.com/elastic/go-elasticsearch/v8"
)

// Catalog serves course pages and suggestion candidates from Elasticsearch.
type Catalog struct {
	client          *elasticsearch.Client
	index           string
	suggestionIndex string
	logger          logger.Logger
}

func New(client *elasticsearch.Client, index, suggestionIndex string, log logger.Logger) *Catalog {
	return &Catalog{
		client:          client,
		index:           index,
		suggestionIndex: suggestionIndex,
		logger:          logger.Component(log, "catalog"),
	}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type decodedHit struct {
	course models.Course
	err    error
}

// FetchPage loads one 1-based page of the course catalog. Hits that cannot
// be decoded are skipped.
func (c *Catalog) FetchPage(ctx context.Context, query models.CatalogQuery, page, pageSize int) (*pagination.Page, error) {
	hits, total, err := c.search(ctx, c.index, query, page, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]models.Course, 0, len(hits))
	for _, h := range hits {
		if h.err != nil {
			c.logger.Warn("skipping malformed course", map[string]interface{}{
				"index": c.index,
				"error": h.err.Error(),
			})
			continue
		}
		items = append(items, h.course)
	}
	return &pagination.Page{Items: items, Total: total}, nil
}

// FetchCandidatePage loads one page of the suggestion index. Malformed hits
// are returned as failed entries.
func (c *Catalog) FetchCandidatePage(ctx context.Context, page, pageSize int) (*candidates.Batch, error) {
	hits, total, err := c.search(ctx, c.suggestionIndex, models.CatalogQuery{}, page, pageSize)
	if err != nil {
		return nil, err
	}

	batch := &candidates.Batch{Total: total, Entries: make([]candidates.Entry, 0, len(hits))}
	for _, h := range hits {
		batch.Entries = append(batch.Entries, candidates.Entry{Course: h.course, Err: h.err})
	}
	return batch, nil
}

func (c *Catalog) search(ctx context.Context, index string, query models.CatalogQuery, page, pageSize int) ([]decodedHit, int, error) {
	if page < 1 {
		page = 1
	}
	req := BuildSearchRequest(index, query, (page-1)*pageSize, pageSize)

	res, err := req.Do(ctx, c.client)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, 0, errors.NewSearchTimeoutError(index)
		}
		return nil, 0, errors.NewSearchQueryFailedError(index, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, 0, errors.NewIndexNotFoundError(index)
	}
	if res.IsError() {
		return nil, 0, errors.NewSearchQueryFailedError(index, fmt.Errorf("search returned %s", res.Status()))
	}

	var body searchResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, 0, errors.NewSearchQueryFailedError(index, fmt.Errorf("decode search response: %w", err))
	}

	hits := make([]decodedHit, 0, len(body.Hits.Hits))
	for _, h := range body.Hits.Hits {
		var course models.Course
		if err := json.Unmarshal(h.Source, &course); err != nil {
			hits = append(hits, decodedHit{err: fmt.Errorf("decode hit %s: %w", h.ID, err)})
			continue
		}
		if course.ID == "" {
			course.ID = h.ID
		}
		hits = append(hits, decodedHit{course: course})
	}
	return hits, body.Hits.Total.Value, nil
}
