package domain

import "time"

// EventKind names what happened to a chain.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventUpdated   EventKind = "updated"
	EventCompleted EventKind = "completed"
	EventDeleted   EventKind = "deleted"
)

// ChainEvent is emitted after a chain write has been persisted. Chain is a
// snapshot; consumers may keep it. Op and Part are set for part transitions.
type ChainEvent struct {
	Kind   EventKind
	Chain  Chain
	Op     Op
	Part   int
	UserID string
	At     time.Time
}
