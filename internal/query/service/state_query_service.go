package service

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	stateService "github.com/mdrideout/junjo-server-sub000/internal/state/service"
	spanModel "github.com/mdrideout/junjo-server-sub000/internal/trace/model"
	traceService "github.com/mdrideout/junjo-server-sub000/internal/trace/service"
	"github.com/mdrideout/junjo-server-sub000/pkg/cache"
	"go.uber.org/zap"
)

var (
	ErrStoreNotFound       = errors.New("store has no events in the execution subtree")
	ErrMissingEndSnapshot  = errors.New("workflow span carries no end-state snapshot")
	ErrEndSnapshotMismatch = errors.New("replayed state does not match the recorded end snapshot")
)

// StateAtEventResult is the answer to one timeline selection: the store
// state immediately before and after the selected event, plus the top-level
// keys the event changed.
type StateAtEventResult struct {
	Before json.RawMessage        `json:"before"`
	After  json.RawMessage        `json:"after"`
	Diff   map[string]interface{} `json:"diff"`
}

// StateQueryService answers point-in-time state queries over one workflow
// execution.
type StateQueryService interface {
	// GetStateAtEvent reconstructs the state of storeID around the index-th
	// event of its timeline within the execution subtree rooted at
	// workflowSpan.
	GetStateAtEvent(
		workflowSpan spanModel.Span,
		spans []spanModel.Span,
		storeID string,
		index int,
	) (StateAtEventResult, error)
	// GetStoreTimelines returns the ordered mutation history of every store
	// touched within the execution subtree rooted at workflowSpan.
	GetStoreTimelines(workflowSpan spanModel.Span, spans []spanModel.Span) map[string]StoreTimeline
	// VerifyRoundTrip checks that replaying the full timeline of the
	// workflow span's own store over its start snapshot reproduces the
	// recorded end snapshot.
	VerifyRoundTrip(workflowSpan spanModel.Span, spans []spanModel.Span) error
}

type StateQueryServiceImpl struct {
	subtreeService    *traceService.SubtreeService
	stateEventService *traceService.StateEventService
	reconstructor     *stateService.StateReconstructorService
	memoCache         cache.MemoCache[StateAtEventResult]
	logger            *zap.Logger
}

func NewStateQueryServiceImpl(
	subtreeService *traceService.SubtreeService,
	stateEventService *traceService.StateEventService,
	reconstructor *stateService.StateReconstructorService,
	memoCache cache.MemoCache[StateAtEventResult],
	logger *zap.Logger,
) *StateQueryServiceImpl {
	return &StateQueryServiceImpl{
		subtreeService:    subtreeService,
		stateEventService: stateEventService,
		reconstructor:     reconstructor,
		memoCache:         memoCache,
		logger:            logger,
	}
}

func (sqs *StateQueryServiceImpl) GetStateAtEvent(
	workflowSpan spanModel.Span,
	spans []spanModel.Span,
	storeID string,
	index int,
) (StateAtEventResult, error) {
	// Every input to the reconstruction is immutable once recorded, so the
	// result can be memoized on query identity alone. Fields are quoted so
	// ids containing the delimiter cannot collide across identities.
	memoKey := fmt.Sprintf("%q:%q:%q:%d", workflowSpan.TraceID, workflowSpan.SpanID, storeID, index)
	if cached, err := sqs.memoCache.Get(memoKey); err == nil {
		return cached, nil
	}

	subtree := sqs.subtreeService.GetSubtreeSpans(spans, workflowSpan.SpanID)
	timeline, ok := BuildStoreTimelines(subtree, sqs.stateEventService)[storeID]
	if !ok {
		return StateAtEventResult{}, ErrStoreNotFound
	}

	base := startSnapshotForStore(subtree, storeID)
	accumulated, err := sqs.reconstructor.Accumulate(base, timeline.Events, index)
	if err != nil {
		sqs.logger.Error(
			"Failed to reconstruct store state",
			zap.String("trace_id", workflowSpan.TraceID),
			zap.String("store_id", storeID),
			zap.Int("event_index", index),
			zap.Error(err),
		)
		return StateAtEventResult{}, err
	}
	diff, err := sqs.reconstructor.Diff(accumulated.Before, accumulated.After)
	if err != nil {
		return StateAtEventResult{}, err
	}

	result := StateAtEventResult{
		Before: accumulated.Before,
		After:  accumulated.After,
		Diff:   diff,
	}
	if err := sqs.memoCache.Put(memoKey, result); err != nil {
		sqs.logger.Warn("Failed to memoize state query result", zap.String("key", memoKey), zap.Error(err))
	}
	return result, nil
}

func (sqs *StateQueryServiceImpl) GetStoreTimelines(
	workflowSpan spanModel.Span,
	spans []spanModel.Span,
) map[string]StoreTimeline {
	subtree := sqs.subtreeService.GetSubtreeSpans(spans, workflowSpan.SpanID)
	return BuildStoreTimelines(subtree, sqs.stateEventService)
}

func (sqs *StateQueryServiceImpl) VerifyRoundTrip(
	workflowSpan spanModel.Span,
	spans []spanModel.Span,
) error {
	endState, ok := workflowSpan.StateEnd()
	if !ok {
		return ErrMissingEndSnapshot
	}
	storeID, _ := workflowSpan.StoreID()
	timeline, ok := sqs.GetStoreTimelines(workflowSpan, spans)[storeID]
	var events []spanModel.StateEvent
	if ok {
		events = timeline.Events
	}

	replayed, err := sqs.reconstructor.Replay(startSnapshot(workflowSpan), events)
	if err != nil {
		return err
	}
	equal, err := sqs.reconstructor.SnapshotsEqual(replayed, json.RawMessage(endState))
	if err != nil {
		return err
	}
	if !equal {
		return ErrEndSnapshotMismatch
	}
	return nil
}

// startSnapshotForStore returns the start snapshot recorded by the workflow
// or subflow span owning storeID within the subtree. A store's patches were
// recorded against its owner's snapshot, so a store owned by a nested
// subflow must not replay against the queried root's state.
func startSnapshotForStore(subtree []spanModel.Span, storeID string) json.RawMessage {
	for _, span := range subtree {
		ownedStoreID, ok := span.StoreID()
		if !ok || ownedStoreID != storeID {
			continue
		}
		if traceService.IsWorkflowRole(traceService.ClassifyRole(span)) {
			return startSnapshot(span)
		}
	}
	return json.RawMessage("{}")
}

func startSnapshot(workflowSpan spanModel.Span) json.RawMessage {
	startState, ok := workflowSpan.StateStart()
	if !ok {
		return json.RawMessage("{}")
	}
	return json.RawMessage(startState)
}
