package service

import (
	"errors"

	json "github.com/goccy/go-json"
	"github.com/mdrideout/junjo-server-sub000/internal/trace/model"
	"go.uber.org/zap"
)

// StateEventService extracts normalized store mutation events from recorded
// spans.
type StateEventService struct {
	logger *zap.Logger
}

func NewStateEventService(logger *zap.Logger) *StateEventService {
	return &StateEventService{
		logger: logger,
	}
}

// ExtractStateEvents returns the span's set_state events in recorded order.
// A malformed entry (missing id, patch, store name, or store action, or a
// patch that is not valid JSON) is dropped and logged rather than failing
// the extraction, so one corrupt event cannot hide the rest of the span's
// timeline.
func (ses *StateEventService) ExtractStateEvents(span model.Span) []model.StateEvent {
	stateEvents := make([]model.StateEvent, 0, len(span.Events))
	for i, event := range span.Events {
		if event.Name != model.EventSetState {
			continue
		}
		stateEvent, err := parseStateEvent(event, i)
		if err != nil {
			ses.logger.Warn(
				"Dropping malformed set_state event",
				zap.String("span_id", span.SpanID),
				zap.String("trace_id", span.TraceID),
				zap.Int("event_index", i),
				zap.Error(err),
			)
			continue
		}
		stateEvents = append(stateEvents, stateEvent)
	}
	return stateEvents
}

var (
	ErrStateEventMissingID        = errors.New("set_state event has no id attribute")
	ErrStateEventMissingPatch     = errors.New("set_state event has no junjo.state_json_patch attribute")
	ErrStateEventInvalidPatch     = errors.New("set_state event patch is not valid JSON")
	ErrStateEventMissingStoreName = errors.New("set_state event has no junjo.store.name attribute")
	ErrStateEventMissingAction    = errors.New("set_state event has no junjo.store.action attribute")
)

func parseStateEvent(event model.SpanEvent, seq int) (model.StateEvent, error) {
	id, ok := event.Attributes[model.EventAttrID]
	if !ok || id == "" {
		return model.StateEvent{}, ErrStateEventMissingID
	}
	patch, ok := event.Attributes[model.EventAttrPatch]
	if !ok || patch == "" {
		return model.StateEvent{}, ErrStateEventMissingPatch
	}
	if !json.Valid([]byte(patch)) {
		return model.StateEvent{}, ErrStateEventInvalidPatch
	}
	storeName, ok := event.Attributes[model.EventAttrStoreName]
	if !ok || storeName == "" {
		return model.StateEvent{}, ErrStateEventMissingStoreName
	}
	action, ok := event.Attributes[model.EventAttrStoreAction]
	if !ok || action == "" {
		return model.StateEvent{}, ErrStateEventMissingAction
	}

	return model.StateEvent{
		ID:        id,
		StoreID:   event.Attributes[model.EventAttrStoreID],
		StoreName: storeName,
		Action:    action,
		Timestamp: event.Timestamp,
		Patch:     json.RawMessage(patch),
		Seq:       seq,
	}, nil
}
