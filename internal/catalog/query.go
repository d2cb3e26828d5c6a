// internal/catalog/query.go
package catalog

import (
	"bytes"
	"encoding/json"

	"course-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// searchFields are matched by the search term, name weighted highest.
var searchFields = []string{"name^3", "description^2", "category"}

// BuildSearchRequest builds the search for one window of a catalog query.
// An empty query matches every course.
func BuildSearchRequest(index string, q models.CatalogQuery, from, size int) *esapi.SearchRequest {
	body, _ := json.Marshal(buildQueryBody(q.Normalize()))
	return &esapi.SearchRequest{
		Index:          []string{index},
		Body:           bytes.NewReader(body),
		From:           &from,
		Size:           &size,
		TrackTotalHits: true,
	}
}

func buildQueryBody(q models.CatalogQuery) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if q.SearchTerm != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":    q.SearchTerm,
				"fields":   searchFields,
				"type":     "bool_prefix",
				"operator": "and",
			},
		})
	}

	if q.Category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": q.Category},
		})
	}

	if !q.PriceRange.Unbounded() {
		bounds := map[string]interface{}{"gte": q.PriceRange.Min}
		if q.PriceRange.Max > 0 {
			bounds["lte"] = q.PriceRange.Max
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"price": bounds},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery := map[string]interface{}{"must": mustClauses}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"_score": "desc"},
			map[string]interface{}{"id": "asc"},
		},
	}
}
