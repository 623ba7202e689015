package service

import (
	"testing"

	"github.com/mdrideout/junjo-server-sub000/internal/trace/model"
	"github.com/stretchr/testify/assert"
)

func TestClassifyRole(t *testing.T) {
	t.Run("Maps the discriminator attribute to a role", func(t *testing.T) {
		assert.Equal(t, RoleWorkflow, ClassifyRole(spanWithType("workflow")))
		assert.Equal(t, RoleSubflow, ClassifyRole(spanWithType("subflow")))
		assert.Equal(t, RoleNode, ClassifyRole(spanWithType("node")))
		assert.Equal(t, RoleConcurrentGroup, ClassifyRole(spanWithType("run_concurrent")))
	})

	t.Run("Falls back to other for unknown values", func(t *testing.T) {
		assert.Equal(t, RoleOther, ClassifyRole(spanWithType("something_new")))
	})

	t.Run("Falls back to other for empty or missing attributes", func(t *testing.T) {
		assert.Equal(t, RoleOther, ClassifyRole(spanWithType("")))
		assert.Equal(t, RoleOther, ClassifyRole(model.Span{SpanID: "a"}))
	})
}

func TestIsWorkflowRole(t *testing.T) {
	assert.True(t, IsWorkflowRole(RoleWorkflow))
	assert.True(t, IsWorkflowRole(RoleSubflow))
	assert.False(t, IsWorkflowRole(RoleNode))
	assert.False(t, IsWorkflowRole(RoleConcurrentGroup))
	assert.False(t, IsWorkflowRole(RoleOther))
}

func TestSecondaryClassification(t *testing.T) {
	t.Run("Database call detected by db.system presence", func(t *testing.T) {
		span := model.Span{Attributes: map[string]string{model.AttrDBSystem: "sqlite"}}
		assert.True(t, IsDatabaseCall(span))
		assert.False(t, IsModelInferenceCall(span))
	})

	t.Run("Model inference call detected by gen_ai.system presence", func(t *testing.T) {
		span := model.Span{Attributes: map[string]string{model.AttrGenAISystem: "openai"}}
		assert.True(t, IsModelInferenceCall(span))
		assert.False(t, IsDatabaseCall(span))
	})

	t.Run("Secondary classification is independent of the role", func(t *testing.T) {
		span := spanWithType("node")
		span.Attributes[model.AttrDBSystem] = "postgresql"
		assert.Equal(t, RoleNode, ClassifyRole(span))
		assert.True(t, IsDatabaseCall(span))
	})
}

func spanWithType(spanType string) model.Span {
	return model.Span{
		SpanID:     "a",
		Attributes: map[string]string{model.AttrSpanType: spanType},
	}
}
