package service

import (
	"fmt"
	"reflect"

	jsonpatch "github.com/evanphx/json-patch/v5"
	json "github.com/goccy/go-json"
	"github.com/mdrideout/junjo-server-sub000/internal/trace/model"
	"go.uber.org/zap"
)

// AccumulateResult holds the reconstructed store state immediately before
// and immediately after one event in a store's timeline. Before and After
// never alias the same underlying bytes.
type AccumulateResult struct {
	Before json.RawMessage `json:"before"`
	After  json.RawMessage `json:"after"`
}

// DetailedDiff partitions the top-level differences between two snapshots.
// Added and Updated carry the new sub-tree, Deleted marks removed keys.
type DetailedDiff struct {
	Added   map[string]interface{} `json:"added"`
	Updated map[string]interface{} `json:"updated"`
	Deleted map[string]interface{} `json:"deleted"`
}

// StateReconstructorService replays recorded JSON Patch mutations over a
// store's start snapshot to reconstruct its state at any point in the
// execution, and compares reconstructed snapshots.
type StateReconstructorService struct {
	logger *zap.Logger
}

func NewStateReconstructorService(logger *zap.Logger) *StateReconstructorService {
	return &StateReconstructorService{
		logger: logger,
	}
}

// Accumulate reconstructs the state around events[index] by replaying
// patches over base in ascending order. An empty timeline or an
// out-of-range index is not an error: both sides of the result are then the
// unchanged base snapshot. A patch that cannot be applied to the state it
// was recorded against is a hard error, because skipping it would yield a
// plausible-looking but wrong state.
func (srs *StateReconstructorService) Accumulate(
	base json.RawMessage,
	events []model.StateEvent,
	index int,
) (AccumulateResult, error) {
	if len(events) == 0 || index < 0 || index >= len(events) {
		return AccumulateResult{
			Before: cloneDocument(base),
			After:  cloneDocument(base),
		}, nil
	}

	before, err := srs.replay(base, events[:index])
	if err != nil {
		return AccumulateResult{}, err
	}
	after, err := srs.replay(base, events[:index+1])
	if err != nil {
		return AccumulateResult{}, err
	}
	return AccumulateResult{Before: before, After: after}, nil
}

// Replay applies the full event list to base, reproducing the store's final
// state. For a complete timeline the result must equal the recorded end
// snapshot.
func (srs *StateReconstructorService) Replay(
	base json.RawMessage,
	events []model.StateEvent,
) (json.RawMessage, error) {
	return srs.replay(base, events)
}

func (srs *StateReconstructorService) replay(
	base json.RawMessage,
	events []model.StateEvent,
) (json.RawMessage, error) {
	document := cloneDocument(base)
	for _, event := range events {
		patch, err := jsonpatch.DecodePatch([]byte(event.Patch))
		if err != nil {
			srs.logger.Error(
				"Failed to decode state patch",
				zap.String("event_id", event.ID),
				zap.String("store_id", event.StoreID),
				zap.Error(err),
			)
			return nil, fmt.Errorf("failed to decode patch for event %s: %w", event.ID, err)
		}
		document, err = patch.Apply(document)
		if err != nil {
			srs.logger.Error(
				"Failed to apply state patch",
				zap.String("event_id", event.ID),
				zap.String("store_id", event.StoreID),
				zap.Error(err),
			)
			return nil, fmt.Errorf("failed to apply patch for event %s: %w", event.ID, err)
		}
	}
	return document, nil
}

// Diff returns the top-level keys whose values differ between snapshots a
// and b, mapped to b's value (nil for keys deleted in b). Diff of a
// snapshot against itself is always empty.
func (srs *StateReconstructorService) Diff(a, b json.RawMessage) (map[string]interface{}, error) {
	aMap, bMap, err := unmarshalSnapshots(a, b)
	if err != nil {
		return nil, err
	}

	changed := make(map[string]interface{})
	for key, bValue := range bMap {
		aValue, ok := aMap[key]
		if !ok || !reflect.DeepEqual(aValue, bValue) {
			changed[key] = bValue
		}
	}
	for key := range aMap {
		if _, ok := bMap[key]; !ok {
			changed[key] = nil
		}
	}
	return changed, nil
}

// DetailedDiff partitions the differences between a and b into keys added
// in b, keys updated between the two, and keys deleted from a.
func (srs *StateReconstructorService) DetailedDiff(a, b json.RawMessage) (DetailedDiff, error) {
	aMap, bMap, err := unmarshalSnapshots(a, b)
	if err != nil {
		return DetailedDiff{}, err
	}

	result := DetailedDiff{
		Added:   make(map[string]interface{}),
		Updated: make(map[string]interface{}),
		Deleted: make(map[string]interface{}),
	}
	for key, bValue := range bMap {
		aValue, ok := aMap[key]
		if !ok {
			result.Added[key] = bValue
		} else if !reflect.DeepEqual(aValue, bValue) {
			result.Updated[key] = bValue
		}
	}
	for key, aValue := range aMap {
		if _, ok := bMap[key]; !ok {
			result.Deleted[key] = aValue
		}
	}
	return result, nil
}

// SnapshotsEqual compares two snapshots structurally, ignoring formatting
// and key order.
func (srs *StateReconstructorService) SnapshotsEqual(a, b json.RawMessage) (bool, error) {
	var aValue, bValue interface{}
	if len(a) > 0 {
		if err := json.Unmarshal(a, &aValue); err != nil {
			return false, fmt.Errorf("failed to unmarshal first snapshot: %w", err)
		}
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &bValue); err != nil {
			return false, fmt.Errorf("failed to unmarshal second snapshot: %w", err)
		}
	}
	return reflect.DeepEqual(aValue, bValue), nil
}

func unmarshalSnapshots(a, b json.RawMessage) (map[string]interface{}, map[string]interface{}, error) {
	aMap := make(map[string]interface{})
	if len(a) > 0 {
		if err := json.Unmarshal(a, &aMap); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal first snapshot: %w", err)
		}
	}
	bMap := make(map[string]interface{})
	if len(b) > 0 {
		if err := json.Unmarshal(b, &bMap); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal second snapshot: %w", err)
		}
	}
	return aMap, bMap, nil
}

func cloneDocument(document json.RawMessage) json.RawMessage {
	if len(document) == 0 {
		return json.RawMessage("{}")
	}
	clone := make(json.RawMessage, len(document))
	copy(clone, document)
	return clone
}
