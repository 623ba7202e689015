package model

import "time"

type Span struct {
	Id           string            `json:"_id,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	SpanID       string            `json:"span_id"`
	ParentSpanID string            `json:"parent_span_id"`
	TraceID      string            `json:"trace_id"`
	ServiceName  string            `json:"service_name"`
	Name         string            `json:"name"`
	SpanKind     string            `json:"span_kind"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      time.Time         `json:"end_time"`
	Attributes   map[string]string `json:"attributes"`
	Events       []SpanEvent       `json:"events"`
}

type SpanEvent struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Attribute keys written by the junjo engine instrumentation. These are part
// of the wire contract with existing recordings and must not be renamed.
const (
	AttrSpanType        = "junjo.span_type"
	AttrNodeID          = "junjo.node.id"
	AttrWorkflowStoreID = "junjo.workflow.store.id"
	AttrGraphStructure  = "junjo.workflow.graph_structure"
	AttrStateStart      = "junjo.workflow.state_start"
	AttrStateEnd        = "junjo.workflow.state_end"
	AttrDBSystem        = "db.system"
	AttrGenAISystem     = "gen_ai.system"
)

// Attribute returns the raw attribute value for key, and whether it was set
// to a non-empty value.
func (s Span) Attribute(key string) (string, bool) {
	if s.Attributes == nil {
		return "", false
	}
	value, ok := s.Attributes[key]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// StoreID returns the id of the store owned by this workflow or subflow span.
func (s Span) StoreID() (string, bool) {
	return s.Attribute(AttrWorkflowStoreID)
}

// GraphStructure returns the serialized execution graph document captured on
// workflow and subflow spans.
func (s Span) GraphStructure() (string, bool) {
	return s.Attribute(AttrGraphStructure)
}

// StateStart returns the serialized start-state snapshot of the span's store.
func (s Span) StateStart() (string, bool) {
	return s.Attribute(AttrStateStart)
}

// StateEnd returns the serialized end-state snapshot of the span's store.
func (s Span) StateEnd() (string, bool) {
	return s.Attribute(AttrStateEnd)
}

// NodeID returns the graph node id this span was recorded for, if any.
func (s Span) NodeID() (string, bool) {
	return s.Attribute(AttrNodeID)
}
