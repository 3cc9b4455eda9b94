package models

import (
	"time"
)

// SyncReport represents the results of a sync operation
type SyncReport struct {
	// Operation details
	OperationID string
	Patterns    []string
	DryRun      bool

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// SourceFiles is the number of paths matched by the patterns
	SourceFiles int

	// Per-destination results, in the order the destinations were given
	Destinations []*DestinationReport

	// Statistics summed over all destinations
	Stats Statistics

	// Errors encountered across all destinations
	Errors []SyncError

	// Overall status
	Status SyncStatus
}

// DestinationReport holds the results for one destination root
type DestinationReport struct {
	Root       string
	Created    bool
	Operations []FileOperation
	Stats      Statistics
	Errors     []SyncError
	Status     SyncStatus
}

// Statistics holds sync operation metrics
type Statistics struct {
	DestEntriesScanned int
	FilesCopied        int
	FilesSkipped       int
	FilesRemoved       int
	FilesErrored       int
	BytesTransferred   int64
}

// Add accumulates other into s
func (s *Statistics) Add(other Statistics) {
	s.DestEntriesScanned += other.DestEntriesScanned
	s.FilesCopied += other.FilesCopied
	s.FilesSkipped += other.FilesSkipped
	s.FilesRemoved += other.FilesRemoved
	s.FilesErrored += other.FilesErrored
	s.BytesTransferred += other.BytesTransferred
}

// SyncStatus represents the overall result
type SyncStatus string

const (
	// StatusSuccess indicates all operations completed successfully
	StatusSuccess SyncStatus = "success"
	// StatusPartial indicates some operations failed
	StatusPartial SyncStatus = "partial"
	// StatusFailed indicates the sync operation failed
	StatusFailed SyncStatus = "failed"
	// StatusCancelled indicates the operation was cancelled
	StatusCancelled SyncStatus = "cancelled"
)

// SyncError represents an error during sync
type SyncError struct {
	Destination string
	FilePath    string
	Operation   Action
	Error       string
	Timestamp   time.Time
}

// ExitCode returns the appropriate exit code for the sync status
func (s SyncStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}

// Finalize fills timing, sums statistics and errors, and derives the overall
// status from the destination statuses
func (r *SyncReport) Finalize(end time.Time) {
	r.EndTime = end
	r.Duration = end.Sub(r.StartTime)

	r.Stats = Statistics{}
	r.Errors = nil
	failed, succeeded, cancelled := 0, 0, 0
	for _, d := range r.Destinations {
		if d == nil {
			continue
		}
		r.Stats.Add(d.Stats)
		r.Errors = append(r.Errors, d.Errors...)

		switch d.Status {
		case StatusSuccess:
			succeeded++
		case StatusCancelled:
			cancelled++
		default:
			failed++
		}
	}

	switch {
	case cancelled > 0:
		r.Status = StatusCancelled
	case failed == 0:
		r.Status = StatusSuccess
	case succeeded == 0 && r.Stats.FilesCopied == 0 && r.Stats.FilesRemoved == 0:
		r.Status = StatusFailed
	default:
		r.Status = StatusPartial
	}
}
