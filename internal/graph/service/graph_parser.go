package service

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/mdrideout/junjo-server-sub000/internal/graph/model"
)

var (
	ErrGraphEmptyDocument = errors.New("execution graph document is empty")
	ErrGraphNoNodes       = errors.New("execution graph declares no nodes")
)

// ParseGraph decodes and validates one execution graph document. The
// document either parses and validates as a whole or the call fails with a
// descriptive error; a partially valid graph is never returned.
func ParseGraph(raw string) (*model.ExecutionGraph, error) {
	if raw == "" {
		return nil, ErrGraphEmptyDocument
	}
	var graph model.ExecutionGraph
	if err := json.Unmarshal([]byte(raw), &graph); err != nil {
		return nil, fmt.Errorf("failed to decode execution graph document: %w", err)
	}
	if err := validateGraph(&graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

func validateGraph(graph *model.ExecutionGraph) error {
	if len(graph.Nodes) == 0 {
		return ErrGraphNoNodes
	}

	nodeIDs := make(map[string]bool, len(graph.Nodes))
	for i, node := range graph.Nodes {
		if node.ID == "" {
			return fmt.Errorf("node at position %d has an empty id", i)
		}
		if nodeIDs[node.ID] {
			return fmt.Errorf("duplicate node id %q", node.ID)
		}
		nodeIDs[node.ID] = true
		if !node.IsSubgraph && len(node.Children) > 0 {
			return fmt.Errorf("node %q declares children but is not flagged as a subgraph", node.ID)
		}
	}

	childParent := make(map[string]string)
	for _, node := range graph.Nodes {
		for _, childID := range node.Children {
			if !nodeIDs[childID] {
				return fmt.Errorf("subgraph %q references unknown child node %q", node.ID, childID)
			}
			if childID == node.ID {
				return fmt.Errorf("subgraph %q contains itself", node.ID)
			}
			if parent, ok := childParent[childID]; ok {
				return fmt.Errorf("node %q is a child of both %q and %q", childID, parent, node.ID)
			}
			childParent[childID] = node.ID
		}
	}
	if err := checkContainmentCycles(graph, childParent); err != nil {
		return err
	}

	for i, edge := range graph.Edges {
		if edge.Source == "" || edge.Target == "" {
			return fmt.Errorf("edge at position %d is missing a source or target", i)
		}
		if !nodeIDs[edge.Source] {
			return fmt.Errorf("edge %q references unknown source node %q", edge.ID, edge.Source)
		}
		if !nodeIDs[edge.Target] {
			return fmt.Errorf("edge %q references unknown target node %q", edge.ID, edge.Target)
		}
	}
	return nil
}

// checkContainmentCycles rejects subgraph containment loops, which would
// otherwise recurse forever at render time.
func checkContainmentCycles(graph *model.ExecutionGraph, childParent map[string]string) error {
	for _, node := range graph.Nodes {
		seen := map[string]bool{node.ID: true}
		current := node.ID
		for {
			parent, ok := childParent[current]
			if !ok {
				break
			}
			if seen[parent] {
				return fmt.Errorf("cyclic subgraph containment involving node %q", parent)
			}
			seen[parent] = true
			current = parent
		}
	}
	return nil
}
