package service

import (
	"errors"

	graphService "github.com/mdrideout/junjo-server-sub000/internal/graph/service"
	spanModel "github.com/mdrideout/junjo-server-sub000/internal/trace/model"
	"go.uber.org/zap"
)

var ErrNoGraphStructure = errors.New("span carries no execution graph document")

// GraphQueryService renders the execution graph recorded on a workflow or
// subflow span.
type GraphQueryService interface {
	GetWorkflowGraph(workflowSpan spanModel.Span, options graphService.RenderOptions) (graphService.RenderResult, error)
}

type GraphQueryServiceImpl struct {
	mermaidService *graphService.MermaidService
	logger         *zap.Logger
}

func NewGraphQueryServiceImpl(
	mermaidService *graphService.MermaidService,
	logger *zap.Logger,
) *GraphQueryServiceImpl {
	return &GraphQueryServiceImpl{
		mermaidService: mermaidService,
		logger:         logger,
	}
}

func (gqs *GraphQueryServiceImpl) GetWorkflowGraph(
	workflowSpan spanModel.Span,
	options graphService.RenderOptions,
) (graphService.RenderResult, error) {
	document, ok := workflowSpan.GraphStructure()
	if !ok {
		return graphService.RenderResult{}, ErrNoGraphStructure
	}
	graph, err := graphService.ParseGraph(document)
	if err != nil {
		gqs.logger.Error(
			"Failed to parse execution graph document",
			zap.String("span_id", workflowSpan.SpanID),
			zap.String("trace_id", workflowSpan.TraceID),
			zap.Error(err),
		)
		return graphService.RenderResult{}, err
	}
	return gqs.mermaidService.Render(graph, options)
}
