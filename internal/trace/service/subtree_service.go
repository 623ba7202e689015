package service

import (
	"github.com/mdrideout/junjo-server-sub000/internal/trace/model"
	"go.uber.org/zap"
)

// SubtreeService reconstructs the execution subtree below a chosen span from
// the flat span collection of a trace.
type SubtreeService struct {
	logger *zap.Logger
}

func NewSubtreeService(logger *zap.Logger) *SubtreeService {
	return &SubtreeService{
		logger: logger,
	}
}

// GetSubtreeSpans returns every span reachable from rootSpanID over the
// parent_span_id relation, the root included. The traversal is an iterative
// breadth-first walk over an explicit visited set, so cyclic or duplicated
// parent links in malformed recordings terminate instead of looping. If the
// root id is not present in spans the result is empty and no error is raised.
func (ss *SubtreeService) GetSubtreeSpans(spans []model.Span, rootSpanID string) []model.Span {
	spanByID := make(map[string]model.Span, len(spans))
	childIDsByParent := make(map[string][]string, len(spans))
	for _, span := range spans {
		spanByID[span.SpanID] = span
		if span.ParentSpanID != "" {
			childIDsByParent[span.ParentSpanID] = append(childIDsByParent[span.ParentSpanID], span.SpanID)
		}
	}

	if _, ok := spanByID[rootSpanID]; !ok {
		ss.logger.Warn("Subtree root span not found in span collection", zap.String("span_id", rootSpanID))
		return []model.Span{}
	}

	visited := map[string]bool{rootSpanID: true}
	queue := []string{rootSpanID}
	result := make([]model.Span, 0, len(spans))
	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]
		result = append(result, spanByID[currentID])
		for _, childID := range childIDsByParent[currentID] {
			if visited[childID] {
				continue
			}
			visited[childID] = true
			queue = append(queue, childID)
		}
	}
	return result
}

// TreeNode is one span in the hierarchical execution tree view.
type TreeNode struct {
	Span     model.Span
	Children []*TreeNode
	Parent   *TreeNode
}

// ConstructTree assembles the hierarchical tree for the subtree rooted at
// rootSpanID. Children keep the order in which their spans appear in the
// input collection. The same visited-set guard as GetSubtreeSpans applies.
func (ss *SubtreeService) ConstructTree(spans []model.Span, rootSpanID string) *TreeNode {
	subtree := ss.GetSubtreeSpans(spans, rootSpanID)
	if len(subtree) == 0 {
		return nil
	}

	nodes := make(map[string]*TreeNode, len(subtree))
	for _, span := range subtree {
		nodes[span.SpanID] = &TreeNode{Span: span}
	}
	root := nodes[rootSpanID]
	for _, span := range subtree {
		if span.SpanID == rootSpanID {
			continue
		}
		parentNode, ok := nodes[span.ParentSpanID]
		if !ok {
			continue
		}
		curNode := nodes[span.SpanID]
		curNode.Parent = parentNode
		parentNode.Children = append(parentNode.Children, curNode)
	}
	return root
}
