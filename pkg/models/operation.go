package models

import (
	"fmt"
	"time"

	"github.com/sdejongh/globsync/pkg/pathmap"
)

// Containment selects how a destination entry is matched against the
// source set when looking for stale files
type Containment string

const (
	// ContainmentSegment treats a destination key as covered when it equals a
	// source key or is a whole-segment prefix of one
	ContainmentSegment Containment = "segment"
	// ContainmentSubstring treats a destination key as covered when it occurs
	// anywhere inside a source key
	ContainmentSubstring Containment = "substring"
)

// DefaultMaxWorkers bounds concurrent actions per destination
const DefaultMaxWorkers = 5

// Options controls a sync invocation
type Options struct {
	// UpdateAndDelete removes stale destination entries and overwrites
	// outdated files. When false, nothing is removed and existing
	// destination files are never overwritten.
	UpdateAndDelete bool

	// Verbose prints every action to stdout
	Verbose bool

	// OnEntry receives every action and takes precedence over Verbose
	OnEntry EntryHandler

	// Base is stripped from source paths before they are joined onto a
	// destination
	Base string

	// IgnoreInDest lists destination-relative patterns that are never removed
	IgnoreInDest []string

	// Containment selects the stale-entry matching rule
	Containment Containment

	// MaxWorkers bounds concurrent actions per destination
	MaxWorkers int

	// DryRun plans and reports actions without touching the destination
	DryRun bool

	// BandwidthLimit caps copy throughput in bytes per second, 0 = unlimited
	BandwidthLimit int64
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{
		UpdateAndDelete: true,
		Containment:     ContainmentSegment,
		MaxWorkers:      DefaultMaxWorkers,
	}
}

// Normalize fills defaults and strips trailing separators from Base
func (o *Options) Normalize() {
	o.Base = pathmap.TrimBase(o.Base)
	if o.Containment == "" {
		o.Containment = ContainmentSegment
	}
	if o.MaxWorkers == 0 {
		o.MaxWorkers = DefaultMaxWorkers
	}
}

// Validate checks the options
func (o *Options) Validate() error {
	switch o.Containment {
	case ContainmentSegment, ContainmentSubstring:
	default:
		return &ValidationError{Field: "Containment", Message: fmt.Sprintf("unknown containment %q (valid: segment, substring)", o.Containment)}
	}
	if o.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "max workers must be at least 1"}
	}
	if o.BandwidthLimit < 0 {
		return &ValidationError{Field: "BandwidthLimit", Message: "bandwidth limit cannot be negative"}
	}
	for _, p := range o.IgnoreInDest {
		if !pathmap.ValidPattern(p) {
			return &ValidationError{Field: "IgnoreInDest", Message: fmt.Sprintf("invalid pattern %q", p)}
		}
	}
	return nil
}

// SyncOperation represents one invocation of the synchronizer
type SyncOperation struct {
	ID           string
	Patterns     []string
	Destinations []string
	Options      Options
	CreatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// Validate checks the patterns, destinations and options. It performs no I/O.
func (op *SyncOperation) Validate() error {
	if len(op.Patterns) == 0 {
		return &ValidationError{Field: "Patterns", Message: "at least one pattern is required"}
	}
	for _, p := range op.Patterns {
		if !pathmap.ValidPattern(p) {
			return &ValidationError{Field: "Patterns", Message: fmt.Sprintf("%q is not a valid glob pattern", p)}
		}
	}

	if len(op.Destinations) == 0 {
		return &ValidationError{Field: "Destinations", Message: "at least one destination is required"}
	}
	for _, d := range op.Destinations {
		if d == "" {
			return &ValidationError{Field: "Destinations", Message: "destination path cannot be empty"}
		}
	}

	return op.Options.Validate()
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
