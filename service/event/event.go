// Package event defines typed events published through messaging queues.
package event

import (
	"time"

	"github.com/viant/notestore/internal/clock"
)

// Event types
const (
	TypeImported = "imported"
	TypeFailed   = "failed"
)

// Context describes the run that produced an event
type Context struct {
	RunID       string `json:"runID"`
	Type        string `json:"type"`
	Service     string `json:"service,omitempty"`
	TimeTakenMs int    `json:"timeTakenMs,omitempty"`
}

// Event wraps payload with its context
type Event[T any] struct {
	Context   *Context  `json:"context"`
	CreatedAt time.Time `json:"createdAt"`
	Data      T         `json:"data"`
}

// NewEvent creates an event
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Data:      data,
	}
}
