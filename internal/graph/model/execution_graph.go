package model

// ExecutionGraph is the static node/edge document captured on workflow and
// subflow spans as the junjo.workflow.graph_structure attribute. It is
// treated as untrusted input since historical recordings may carry drifted
// schemas.
type ExecutionGraph struct {
	V     int    `json:"v"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

type Node struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Label      string   `json:"label"`
	IsSubgraph bool     `json:"isSubgraph,omitempty"`
	Children   []string `json:"children,omitempty"`
}

type Edge struct {
	ID        string  `json:"id"`
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Condition *string `json:"condition"`
	Type      string  `json:"type,omitempty"`
}
