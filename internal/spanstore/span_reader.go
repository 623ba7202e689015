package spanstore

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mdrideout/junjo-server-sub000/internal/spanstore/client"
	"github.com/mdrideout/junjo-server-sub000/internal/trace/helper"
	spanModel "github.com/mdrideout/junjo-server-sub000/internal/trace/model"
	"go.uber.org/zap"
)

const timeout = 10 * time.Second
const querySize = 10000

// lineage walks are bounded so malformed parent chains in the index cannot
// keep the reader querying forever.
const maxLineageDepth = 64

// ServiceSpans is the result of a service-scoped fetch: the service's own
// spans plus the ancestor spans outside the immediate execution subtree
// needed to resolve enclosing workflows.
type ServiceSpans struct {
	Lineage []spanModel.Span `json:"lineage"`
	Spans   []spanModel.Span `json:"spans"`
}

// AllSpans returns lineage and service spans as one collection, the shape
// the workflow chain resolver expects.
func (ss ServiceSpans) AllSpans() []spanModel.Span {
	all := make([]spanModel.Span, 0, len(ss.Lineage)+len(ss.Spans))
	all = append(all, ss.Lineage...)
	all = append(all, ss.Spans...)
	return all
}

// SpanReader supplies recorded spans to the reconstruction core.
type SpanReader interface {
	FetchSpans(ctx context.Context, traceID string) ([]spanModel.Span, error)
	FetchSpansForService(ctx context.Context, serviceName string) (ServiceSpans, error)
}

type SpanReaderImpl struct {
	sc        client.SpanClient
	indexName string
	logger    *zap.Logger
}

func NewSpanReaderImpl(sc client.SpanClient, indexName string, logger *zap.Logger) *SpanReaderImpl {
	return &SpanReaderImpl{
		sc:        sc,
		indexName: indexName,
		logger:    logger,
	}
}

func (sr *SpanReaderImpl) FetchSpans(ctx context.Context, traceID string) ([]spanModel.Span, error) {
	return sr.search(ctx, traceIDQueryBuilder(traceID))
}

func (sr *SpanReaderImpl) FetchSpansForService(
	ctx context.Context,
	serviceName string,
) (ServiceSpans, error) {
	spans, err := sr.search(ctx, serviceNameQueryBuilder(serviceName))
	if err != nil {
		return ServiceSpans{}, err
	}
	lineage, err := sr.fetchLineage(ctx, spans)
	if err != nil {
		return ServiceSpans{}, err
	}
	return ServiceSpans{Lineage: lineage, Spans: spans}, nil
}

// fetchLineage resolves ancestor spans of the given set, level by level,
// until every parent pointer is satisfied or points outside the index.
func (sr *SpanReaderImpl) fetchLineage(
	ctx context.Context,
	spans []spanModel.Span,
) ([]spanModel.Span, error) {
	known := make(map[string]bool, len(spans))
	for _, span := range spans {
		known[span.SpanID] = true
	}

	var lineage []spanModel.Span
	frontier := missingParentIDs(spans, known)
	for depth := 0; len(frontier) > 0 && depth < maxLineageDepth; depth++ {
		for _, spanID := range frontier {
			known[spanID] = true
		}
		parents, err := sr.search(ctx, spanIDsQueryBuilder(frontier))
		if err != nil {
			return nil, err
		}
		lineage = append(lineage, parents...)
		frontier = missingParentIDs(parents, known)
	}
	if len(frontier) > 0 {
		sr.logger.Warn(
			"Lineage walk exceeded maximum depth",
			zap.Int("max_depth", maxLineageDepth),
			zap.Strings("unresolved_parent_ids", frontier),
		)
	}
	return lineage, nil
}

func (sr *SpanReaderImpl) search(
	ctx context.Context,
	query map[string]interface{},
) ([]spanModel.Span, error) {
	queryJson, err := json.Marshal(query)
	if err != nil {
		sr.logger.Error("Error when marshalling query to JSON", zap.Error(err))
		return nil, err
	}
	localQuerySize := querySize
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	res, err := sr.sc.Search(queryCtx, string(queryJson), []string{sr.indexName}, &localQuerySize)
	if err != nil {
		sr.logger.Error("Error when searching for spans", zap.Error(err))
		return nil, err
	}
	spans, err := helper.ConvertFromDocuments(res)
	if err != nil {
		sr.logger.Error("Error when converting search result to spans", zap.Error(err))
		return nil, err
	}
	return spans, nil
}

func missingParentIDs(spans []spanModel.Span, known map[string]bool) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, span := range spans {
		parentID := span.ParentSpanID
		if parentID == "" || known[parentID] || seen[parentID] {
			continue
		}
		seen[parentID] = true
		missing = append(missing, parentID)
	}
	return missing
}
