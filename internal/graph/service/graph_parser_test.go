package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGraph(t *testing.T) {
	t.Run("Parses a valid document", func(t *testing.T) {
		doc := `{
			"v": 1,
			"nodes": [
				{"id": "start", "type": "node", "label": "Start"},
				{"id": "work", "type": "subflow", "label": "Work", "isSubgraph": true, "children": ["inner"]},
				{"id": "inner", "type": "node", "label": "Inner"}
			],
			"edges": [
				{"id": "e1", "source": "start", "target": "work", "condition": null}
			]
		}`
		graph, err := ParseGraph(doc)
		require.NoError(t, err)
		assert.Equal(t, 1, graph.V)
		assert.Len(t, graph.Nodes, 3)
		assert.Len(t, graph.Edges, 1)
		assert.Nil(t, graph.Edges[0].Condition)
	})

	t.Run("Rejects an empty document", func(t *testing.T) {
		_, err := ParseGraph("")
		assert.ErrorIs(t, err, ErrGraphEmptyDocument)
	})

	t.Run("Rejects malformed JSON", func(t *testing.T) {
		_, err := ParseGraph(`{"v": 1, "nodes": [`)
		assert.Error(t, err)
	})

	t.Run("Rejects a document without nodes", func(t *testing.T) {
		_, err := ParseGraph(`{"v": 1, "nodes": [], "edges": []}`)
		assert.ErrorIs(t, err, ErrGraphNoNodes)
	})

	t.Run("Rejects duplicate node ids", func(t *testing.T) {
		_, err := ParseGraph(`{"v":1,"nodes":[{"id":"a"},{"id":"a"}],"edges":[]}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate node id")
	})

	t.Run("Rejects children on non subgraph nodes", func(t *testing.T) {
		_, err := ParseGraph(`{"v":1,"nodes":[{"id":"a","children":["b"]},{"id":"b"}],"edges":[]}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not flagged as a subgraph")
	})

	t.Run("Rejects unknown child references", func(t *testing.T) {
		_, err := ParseGraph(`{"v":1,"nodes":[{"id":"a","isSubgraph":true,"children":["ghost"]}],"edges":[]}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown child node")
	})

	t.Run("Rejects cyclic subgraph containment", func(t *testing.T) {
		doc := `{"v":1,"nodes":[
			{"id":"a","isSubgraph":true,"children":["b"]},
			{"id":"b","isSubgraph":true,"children":["a"]}
		],"edges":[]}`
		_, err := ParseGraph(doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cyclic subgraph containment")
	})

	t.Run("Rejects edges referencing unknown nodes", func(t *testing.T) {
		_, err := ParseGraph(`{"v":1,"nodes":[{"id":"a"}],"edges":[{"id":"e1","source":"a","target":"ghost"}]}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown target node")
	})

	t.Run("Rejects nodes claimed by two subgraphs", func(t *testing.T) {
		doc := `{"v":1,"nodes":[
			{"id":"a","isSubgraph":true,"children":["c"]},
			{"id":"b","isSubgraph":true,"children":["c"]},
			{"id":"c"}
		],"edges":[]}`
		_, err := ParseGraph(doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "child of both")
	})
}
