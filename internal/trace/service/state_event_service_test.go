package service

import (
	"testing"
	"time"

	"github.com/mdrideout/junjo-server-sub000/internal/trace/model"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestStateEventService_ExtractStateEvents(t *testing.T) {
	ses := NewStateEventService(zap.NewNop())

	t.Run("Extracts well-formed set_state events in recorded order", func(t *testing.T) {
		span := model.Span{
			SpanID: "a",
			Events: []model.SpanEvent{
				setStateEvent("evt-1", `[{"op":"replace","path":"/count","value":1}]`),
				{Name: "exception", Attributes: map[string]string{"message": "boom"}},
				setStateEvent("evt-2", `[{"op":"replace","path":"/count","value":2}]`),
			},
		}

		events := ses.ExtractStateEvents(span)
		assert.Len(t, events, 2)
		assert.Equal(t, "evt-1", events[0].ID)
		assert.Equal(t, "evt-2", events[1].ID)
		assert.Equal(t, "store-1", events[0].StoreID)
		assert.Equal(t, "counter_store", events[0].StoreName)
		assert.Equal(t, "increment", events[0].Action)
		assert.Equal(t, 0, events[0].Seq)
		assert.Equal(t, 2, events[1].Seq)
	})

	t.Run("Drops events missing required attributes without failing the span", func(t *testing.T) {
		missingID := setStateEvent("", `[{"op":"add","path":"/a","value":1}]`)
		delete(missingID.Attributes, model.EventAttrID)
		missingPatch := setStateEvent("evt-2", "")
		delete(missingPatch.Attributes, model.EventAttrPatch)
		missingStoreName := setStateEvent("evt-3", `[{"op":"add","path":"/a","value":1}]`)
		delete(missingStoreName.Attributes, model.EventAttrStoreName)
		missingAction := setStateEvent("evt-4", `[{"op":"add","path":"/a","value":1}]`)
		delete(missingAction.Attributes, model.EventAttrStoreAction)

		span := model.Span{
			SpanID: "a",
			Events: []model.SpanEvent{
				missingID,
				missingPatch,
				missingStoreName,
				missingAction,
				setStateEvent("evt-5", `[{"op":"add","path":"/a","value":1}]`),
			},
		}

		events := ses.ExtractStateEvents(span)
		assert.Len(t, events, 1)
		assert.Equal(t, "evt-5", events[0].ID)
	})

	t.Run("Drops events whose patch is not valid JSON", func(t *testing.T) {
		span := model.Span{
			SpanID: "a",
			Events: []model.SpanEvent{
				setStateEvent("evt-1", `{"op":"add",`),
				setStateEvent("evt-2", `[{"op":"add","path":"/a","value":1}]`),
			},
		}

		events := ses.ExtractStateEvents(span)
		assert.Len(t, events, 1)
		assert.Equal(t, "evt-2", events[0].ID)
	})

	t.Run("Returns an empty list for spans without set_state events", func(t *testing.T) {
		span := model.Span{
			SpanID: "a",
			Events: []model.SpanEvent{
				{Name: "exception"},
			},
		}
		assert.Empty(t, ses.ExtractStateEvents(span))
	})
}

func setStateEvent(id string, patch string) model.SpanEvent {
	return model.SpanEvent{
		Name:      model.EventSetState,
		Timestamp: time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC),
		Attributes: map[string]string{
			model.EventAttrID:          id,
			model.EventAttrPatch:       patch,
			model.EventAttrStoreName:   "counter_store",
			model.EventAttrStoreAction: "increment",
			model.EventAttrStoreID:     "store-1",
		},
	}
}
