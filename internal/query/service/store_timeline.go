package service

import (
	"sort"

	spanModel "github.com/mdrideout/junjo-server-sub000/internal/trace/model"
	traceService "github.com/mdrideout/junjo-server-sub000/internal/trace/service"
)

// StoreTimeline is the full ordered mutation history of one store within an
// execution subtree.
type StoreTimeline struct {
	StoreID   string                 `json:"store_id"`
	StoreName string                 `json:"store_name"`
	Events    []spanModel.StateEvent `json:"events"`
}

// BuildStoreTimelines extracts the state events of every span in subtree and
// groups them by owning store. Events within one timeline are ordered by
// timestamp; events sharing an identical nanosecond timestamp keep their
// in-span recording order, with the event id as the final tie-break so the
// order is deterministic across spans as well.
func BuildStoreTimelines(
	subtree []spanModel.Span,
	stateEventService *traceService.StateEventService,
) map[string]StoreTimeline {
	timelines := make(map[string]StoreTimeline)
	for _, span := range subtree {
		for _, event := range stateEventService.ExtractStateEvents(span) {
			timeline, ok := timelines[event.StoreID]
			if !ok {
				timeline = StoreTimeline{
					StoreID:   event.StoreID,
					StoreName: event.StoreName,
				}
			}
			timeline.Events = append(timeline.Events, event)
			timelines[event.StoreID] = timeline
		}
	}

	for storeID, timeline := range timelines {
		events := timeline.Events
		sort.SliceStable(events, func(i, j int) bool {
			if !events[i].Timestamp.Equal(events[j].Timestamp) {
				return events[i].Timestamp.Before(events[j].Timestamp)
			}
			if events[i].Seq != events[j].Seq {
				return events[i].Seq < events[j].Seq
			}
			return events[i].ID < events[j].ID
		})
		timeline.Events = events
		timelines[storeID] = timeline
	}
	return timelines
}
