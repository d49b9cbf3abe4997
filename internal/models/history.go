package models

import "time"

// EventKind identifies which lifecycle operation produced a history entry.
type EventKind string

const (
	EventCheck  EventKind = "check"
	EventDeploy EventKind = "deploy"
)

// EventStatus is the outcome of a recorded operation.
type EventStatus string

const (
	EventStatusOK     EventStatus = "ok"
	EventStatusFailed EventStatus = "failed"
	EventStatusDryRun EventStatus = "dry-run"
)

// Event records one check or deploy attempt for a project.
type Event struct {
	ID        string      `json:"id"`
	Kind      EventKind   `json:"kind"`
	Project   string      `json:"project"`
	Path      string      `json:"path"`
	Remote    string      `json:"remote,omitempty"`
	Status    EventStatus `json:"status"`
	Phase     string      `json:"phase,omitempty"` // failing phase, empty on success
	Message   string      `json:"message,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
