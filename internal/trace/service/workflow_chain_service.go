package service

import (
	"github.com/mdrideout/junjo-server-sub000/internal/trace/model"
	"go.uber.org/zap"
)

// WorkflowChainService resolves the chain of workflow and subflow spans
// enclosing a selected span, used to pick which execution graphs to render.
type WorkflowChainService struct {
	logger *zap.Logger
}

func NewWorkflowChainService(logger *zap.Logger) *WorkflowChainService {
	return &WorkflowChainService{
		logger: logger,
	}
}

// ResolveChain walks the ancestor chain of activeSpan through spans,
// collecting every traversed span (the active span included) whose role is
// workflow or subflow, ordered root to leaf. If the walk yields nothing the
// caller-supplied rootSpan is returned as a single-element fallback chain so
// the UI always has a graph context to select. Parent cycles terminate via a
// visited set.
func (wcs *WorkflowChainService) ResolveChain(
	activeSpan model.Span,
	spans []model.Span,
	rootSpan model.Span,
) []model.Span {
	spanByID := make(map[string]model.Span, len(spans))
	for _, span := range spans {
		spanByID[span.SpanID] = span
	}

	var chain []model.Span
	visited := make(map[string]bool)
	current := activeSpan
	for {
		if visited[current.SpanID] {
			wcs.logger.Warn(
				"Cycle detected in span parent chain",
				zap.String("span_id", current.SpanID),
				zap.String("trace_id", current.TraceID),
			)
			break
		}
		visited[current.SpanID] = true
		if IsWorkflowRole(ClassifyRole(current)) {
			chain = append([]model.Span{current}, chain...)
		}
		parent, ok := spanByID[current.ParentSpanID]
		if current.ParentSpanID == "" || !ok {
			break
		}
		current = parent
	}

	if len(chain) == 0 {
		return []model.Span{rootSpan}
	}
	return chain
}
