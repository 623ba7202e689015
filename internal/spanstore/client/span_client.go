package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	json "github.com/goccy/go-json"
	"github.com/mdrideout/junjo-server-sub000/internal/spanstore/model"
)

const defaultQuerySize = 1000

// SpanClient is a read-only search client over the span indices. Ingestion
// and index management are owned by the collector, not by this module.
type SpanClient interface {
	// Search searches for documents in the index
	// https://www.elastic.co/guide/en/elasticsearch/reference/master/search-search.html
	// queryResultSize is the number of results to return, -1 for default
	Search(ctx context.Context, query string, indices []string, queryResultSize *int) ([]map[string]interface{}, error)
}

type SpanClientImpl struct {
	es *elasticsearch.Client
}

func NewSpanClientImpl(es *elasticsearch.Client) *SpanClientImpl {
	return &SpanClientImpl{
		es: es,
	}
}

func (sc *SpanClientImpl) Search(
	ctx context.Context,
	query string,
	indices []string,
	queryResultSize *int,
) ([]map[string]interface{}, error) {
	res, err := sc.es.Search(
		sc.es.Search.WithContext(ctx),
		sc.es.Search.WithIndex(indices...),
		sc.es.Search.WithBody(strings.NewReader(query)),
		sc.es.Search.WithSize(getQuerySize(queryResultSize)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("failed to execute query: %s", res.String())
	}

	var esResponse model.EsResponse
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	var results []map[string]interface{}
	for _, hit := range esResponse.Hits.HitArray {
		results = append(results, hit.Source)
		results[len(results)-1]["_id"] = hit.ID
	}
	return results, nil
}

func getQuerySize(queryResultSize *int) int {
	if queryResultSize == nil || *queryResultSize < 0 {
		return defaultQuerySize
	}
	return *queryResultSize
}
