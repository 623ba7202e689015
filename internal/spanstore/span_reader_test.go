package spanstore

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSpanReaderImpl_FetchSpans(t *testing.T) {
	sc := &fakeSpanClient{
		responses: []fakeResponse{
			{docs: []map[string]interface{}{
				spanDocument("a", "", "trace-1", "junjo-app"),
				spanDocument("b", "a", "trace-1", "junjo-app"),
			}},
		},
	}
	sr := NewSpanReaderImpl(sc, "junjo_span_index", zap.NewNop())

	spans, err := sr.FetchSpans(context.Background(), "trace-1")
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, "a", spans[0].SpanID)
	assert.Equal(t, "b", spans[1].SpanID)
	assert.Equal(t, "trace-1", spans[0].TraceID)
	require.Len(t, sc.queries, 1)
	assert.Contains(t, sc.queries[0], `"trace_id"`)
	assert.Equal(t, []string{"junjo_span_index"}, sc.indices[0])
}

func TestSpanReaderImpl_FetchSpansForService(t *testing.T) {
	t.Run("Resolves ancestor lineage level by level", func(t *testing.T) {
		sc := &fakeSpanClient{
			responses: []fakeResponse{
				// Service spans: one span whose parent is outside the set.
				{docs: []map[string]interface{}{
					spanDocument("c", "b", "trace-1", "junjo-app"),
				}},
				// First lineage level resolves b, whose parent is a.
				{docs: []map[string]interface{}{
					spanDocument("b", "a", "trace-1", "gateway"),
				}},
				// Second lineage level resolves the root.
				{docs: []map[string]interface{}{
					spanDocument("a", "", "trace-1", "gateway"),
				}},
			},
		}
		sr := NewSpanReaderImpl(sc, "junjo_span_index", zap.NewNop())

		serviceSpans, err := sr.FetchSpansForService(context.Background(), "junjo-app")
		require.NoError(t, err)
		require.Len(t, serviceSpans.Spans, 1)
		assert.Equal(t, "c", serviceSpans.Spans[0].SpanID)
		require.Len(t, serviceSpans.Lineage, 2)
		assert.Equal(t, "b", serviceSpans.Lineage[0].SpanID)
		assert.Equal(t, "a", serviceSpans.Lineage[1].SpanID)
		assert.Len(t, sc.queries, 3)
	})

	t.Run("Stops when every parent pointer is satisfied", func(t *testing.T) {
		sc := &fakeSpanClient{
			responses: []fakeResponse{
				{docs: []map[string]interface{}{
					spanDocument("a", "", "trace-1", "junjo-app"),
					spanDocument("b", "a", "trace-1", "junjo-app"),
				}},
			},
		}
		sr := NewSpanReaderImpl(sc, "junjo_span_index", zap.NewNop())

		serviceSpans, err := sr.FetchSpansForService(context.Background(), "junjo-app")
		require.NoError(t, err)
		assert.Empty(t, serviceSpans.Lineage)
		assert.Len(t, sc.queries, 1)
	})
}

type fakeResponse struct {
	docs []map[string]interface{}
	err  error
}

type fakeSpanClient struct {
	responses []fakeResponse
	queries   []string
	indices   [][]string
}

func (fsc *fakeSpanClient) Search(
	ctx context.Context,
	query string,
	indices []string,
	queryResultSize *int,
) ([]map[string]interface{}, error) {
	fsc.queries = append(fsc.queries, query)
	fsc.indices = append(fsc.indices, indices)
	if len(fsc.responses) == 0 {
		return nil, nil
	}
	response := fsc.responses[0]
	fsc.responses = fsc.responses[1:]
	return response.docs, response.err
}

func spanDocument(spanID string, parentSpanID string, traceID string, serviceName string) map[string]interface{} {
	return map[string]interface{}{
		"span_id":        spanID,
		"parent_span_id": parentSpanID,
		"trace_id":       traceID,
		"service_name":   serviceName,
		"name":           "span " + spanID,
		"start_time":     "2024-11-01T12:00:00.000000100Z",
		"end_time":       "2024-11-01T12:00:01.000000200Z",
		"attributes": map[string]interface{}{
			"junjo.span_type": "node",
		},
		"events": []interface{}{},
	}
}

func TestQueryBuilders(t *testing.T) {
	t.Run("Trace query filters on trace_id", func(t *testing.T) {
		query := traceIDQueryBuilder("trace-1")
		data, err := json.Marshal(query)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"trace_id":{"value":"trace-1"}`)
	})

	t.Run("Span ids query uses a terms filter", func(t *testing.T) {
		query := spanIDsQueryBuilder([]string{"a", "b"})
		data, err := json.Marshal(query)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"span_id":["a","b"]`)
	})
}
