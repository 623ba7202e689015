package service

import (
	"github.com/mdrideout/junjo-server-sub000/internal/trace/model"
)

// SpanRole is the structural role a span plays in a junjo execution, derived
// from the junjo.span_type discriminator attribute.
type SpanRole string

const (
	RoleWorkflow        SpanRole = "workflow"
	RoleSubflow         SpanRole = "subflow"
	RoleNode            SpanRole = "node"
	RoleConcurrentGroup SpanRole = "run_concurrent"
	RoleOther           SpanRole = "other"
)

// ClassifyRole maps a span to its role. Unset, empty, or unrecognized
// discriminator values always fall through to RoleOther.
func ClassifyRole(span model.Span) SpanRole {
	spanType, ok := span.Attribute(model.AttrSpanType)
	if !ok {
		return RoleOther
	}
	switch spanType {
	case string(RoleWorkflow):
		return RoleWorkflow
	case string(RoleSubflow):
		return RoleSubflow
	case string(RoleNode):
		return RoleNode
	case string(RoleConcurrentGroup):
		return RoleConcurrentGroup
	default:
		return RoleOther
	}
}

// IsWorkflowRole reports whether role marks a span that owns a store and an
// execution graph.
func IsWorkflowRole(role SpanRole) bool {
	return role == RoleWorkflow || role == RoleSubflow
}

// IsDatabaseCall reports whether the span recorded a database client call.
// Display-only classification, independent of the span's role.
func IsDatabaseCall(span model.Span) bool {
	_, ok := span.Attribute(model.AttrDBSystem)
	return ok
}

// IsModelInferenceCall reports whether the span recorded a model inference
// request. Display-only classification, independent of the span's role.
func IsModelInferenceCall(span model.Span) bool {
	_, ok := span.Attribute(model.AttrGenAISystem)
	return ok
}
