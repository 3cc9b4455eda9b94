package models

import (
	"time"
)

// Action represents what should be done with a file
type Action string

const (
	// ActionCopy copies a source file into the destination
	ActionCopy Action = "copy"
	// ActionRemove removes a stale destination entry
	ActionRemove Action = "remove"
	// ActionSkip leaves an up to date destination file untouched
	ActionSkip Action = "skip"
)

// LogEntry is the event emitted for every executed copy or remove.
// To is empty for removals.
type LogEntry struct {
	Action Action
	From   string
	To     string
}

// EntryHandler receives log entries. Handlers may be called from several
// goroutines at once.
type EntryHandler func(entry LogEntry)

// FileOperation represents a planned or executed operation on a file
type FileOperation struct {
	Action      Action
	From        string
	To          string
	Reason      string
	Error       error
	BytesCopied int64
	Duration    time.Duration
}
