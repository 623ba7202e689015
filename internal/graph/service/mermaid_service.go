package service

import (
	"fmt"
	"strings"

	"dario.cat/mergo"
	"github.com/mdrideout/junjo-server-sub000/internal/graph/model"
	"go.uber.org/zap"
)

// RenderOptions controls the produced diagram notation. Zero-value fields
// fall back to defaults.
type RenderOptions struct {
	// ShowEdgeLabels emits edge condition labels when set.
	ShowEdgeLabels bool
	// Direction is the flowchart direction, TD by default.
	Direction string
}

var defaultRenderOptions = RenderOptions{
	Direction: "TD",
}

// RenderResult carries the diagram notation together with the bidirectional
// registry mapping rendered element ids to domain node ids. The registry is
// rebuilt on every render so click handling never has to parse
// renderer-assigned strings.
type RenderResult struct {
	Notation          string
	NodeIDByElementID map[string]string
	ElementIDByNodeID map[string]string
}

// MermaidService renders validated execution graphs to Mermaid flowchart
// notation. Rendering is deterministic: identical documents and options
// produce byte-identical notation.
type MermaidService struct {
	logger *zap.Logger
}

func NewMermaidService(logger *zap.Logger) *MermaidService {
	return &MermaidService{
		logger: logger,
	}
}

// Render produces flowchart notation for graph. Nodes are declared before
// edges, subgraph nodes recursively emit their children as a nested block,
// and every node receives an element id deterministically derived from its
// domain id.
func (ms *MermaidService) Render(graph *model.ExecutionGraph, options RenderOptions) (RenderResult, error) {
	if err := mergo.Merge(&options, defaultRenderOptions); err != nil {
		return RenderResult{}, fmt.Errorf("failed to merge render options: %w", err)
	}

	elementIDByNodeID := buildElementIDs(graph)
	nodeIDByElementID := make(map[string]string, len(elementIDByNodeID))
	for nodeID, elementID := range elementIDByNodeID {
		nodeIDByElementID[elementID] = nodeID
	}

	nodeByID := make(map[string]model.Node, len(graph.Nodes))
	contained := make(map[string]bool)
	for _, node := range graph.Nodes {
		nodeByID[node.ID] = node
		for _, childID := range node.Children {
			contained[childID] = true
		}
	}

	var builder strings.Builder
	builder.WriteString("flowchart " + options.Direction + "\n")
	for _, node := range graph.Nodes {
		if contained[node.ID] {
			continue
		}
		writeNode(&builder, node, nodeByID, elementIDByNodeID, 1)
	}
	for _, edge := range graph.Edges {
		if err := writeEdge(&builder, edge, elementIDByNodeID, options.ShowEdgeLabels); err != nil {
			return RenderResult{}, err
		}
	}

	return RenderResult{
		Notation:          builder.String(),
		NodeIDByElementID: nodeIDByElementID,
		ElementIDByNodeID: elementIDByNodeID,
	}, nil
}

func writeNode(
	builder *strings.Builder,
	node model.Node,
	nodeByID map[string]model.Node,
	elementIDByNodeID map[string]string,
	depth int,
) {
	indent := strings.Repeat("    ", depth)
	elementID := elementIDByNodeID[node.ID]
	if node.IsSubgraph {
		builder.WriteString(indent + "subgraph " + elementID + "[\"" + escapeLabel(nodeLabel(node)) + "\"]\n")
		for _, childID := range node.Children {
			child, ok := nodeByID[childID]
			if !ok {
				continue
			}
			writeNode(builder, child, nodeByID, elementIDByNodeID, depth+1)
		}
		builder.WriteString(indent + "end\n")
		return
	}
	builder.WriteString(indent + elementID + "[\"" + escapeLabel(nodeLabel(node)) + "\"]\n")
}

func writeEdge(
	builder *strings.Builder,
	edge model.Edge,
	elementIDByNodeID map[string]string,
	showEdgeLabels bool,
) error {
	source, ok := elementIDByNodeID[edge.Source]
	if !ok {
		return fmt.Errorf("cannot render edge %q: unknown source node %q", edge.ID, edge.Source)
	}
	target, ok := elementIDByNodeID[edge.Target]
	if !ok {
		return fmt.Errorf("cannot render edge %q: unknown target node %q", edge.ID, edge.Target)
	}
	if showEdgeLabels && edge.Condition != nil && *edge.Condition != "" {
		builder.WriteString("    " + source + " -->|\"" + escapeLabel(*edge.Condition) + "\"| " + target + "\n")
		return nil
	}
	builder.WriteString("    " + source + " --> " + target + "\n")
	return nil
}

// buildElementIDs derives one diagram element id per node from its domain
// id. Sanitization collisions are resolved by a deterministic suffix in
// document order, so repeated renders of the same document always assign
// the same ids.
func buildElementIDs(graph *model.ExecutionGraph) map[string]string {
	elementIDByNodeID := make(map[string]string, len(graph.Nodes))
	used := make(map[string]bool, len(graph.Nodes))
	for _, node := range graph.Nodes {
		elementID := "jn_" + sanitizeElementID(node.ID)
		if used[elementID] {
			suffix := 2
			for used[fmt.Sprintf("%s_%d", elementID, suffix)] {
				suffix++
			}
			elementID = fmt.Sprintf("%s_%d", elementID, suffix)
		}
		used[elementID] = true
		elementIDByNodeID[node.ID] = elementID
	}
	return elementIDByNodeID
}

func sanitizeElementID(id string) string {
	var builder strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}
	return builder.String()
}

func nodeLabel(node model.Node) string {
	if node.Label != "" {
		return node.Label
	}
	return node.ID
}

// escapeLabel rewrites characters Mermaid treats as markup inside quoted
// labels.
func escapeLabel(label string) string {
	replacer := strings.NewReplacer(
		"&", "#amp;",
		"\"", "#quot;",
		"<", "#lt;",
		">", "#gt;",
		"\n", " ",
	)
	return replacer.Replace(label)
}
