// Package invalidation defines the event that upstream data pipelines emit
// when a layer's features change and its cached covers must be dropped.
package invalidation

import (
	"fmt"
	"strings"
	"time"
)

// Event invalidates every cached cover of a layer. Seq is an optional
// monotonically increasing counter per layer; consumers use it to skip
// replayed or out-of-order events.
type Event struct {
	Version int       `json:"version"`
	Op      string    `json:"op"`
	Layer   string    `json:"layer"`
	TS      time.Time `json:"ts"`
	Seq     uint64    `json:"seq,omitempty"`
	Source  string    `json:"source,omitempty"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	switch e.Op {
	case "insert", "update", "delete":
	default:
		return fmt.Errorf("op must be insert|update|delete")
	}
	if strings.TrimSpace(e.Layer) == "" {
		return fmt.Errorf("layer is required")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}
