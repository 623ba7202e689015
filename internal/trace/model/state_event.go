package model

import (
	"time"

	json "github.com/goccy/go-json"
)

// Span event name and attribute keys for store mutations. Part of the wire
// contract with existing recordings.
const (
	EventSetState        = "set_state"
	EventAttrID          = "id"
	EventAttrPatch       = "junjo.state_json_patch"
	EventAttrStoreName   = "junjo.store.name"
	EventAttrStoreAction = "junjo.store.action"
	EventAttrStoreID     = "junjo.store.id"
)

// StateEvent is one recorded mutation of a store, expressed as an RFC 6902
// JSON Patch against the store's previous cumulative state.
type StateEvent struct {
	ID        string          `json:"id"`
	StoreID   string          `json:"store_id"`
	StoreName string          `json:"store_name"`
	Action    string          `json:"action"`
	Timestamp time.Time       `json:"timestamp"`
	Patch     json.RawMessage `json:"patch"`
	// Seq is the event's position in its span's event list, assigned at
	// extraction time. It breaks ties between events sharing an identical
	// nanosecond timestamp so the replay order stays deterministic.
	Seq int `json:"seq"`
}
