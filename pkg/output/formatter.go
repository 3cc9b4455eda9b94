package output

import (
	"io"

	"github.com/sdejongh/globsync/pkg/models"
)

// ProgressUpdate represents a progress notification during sync
type ProgressUpdate struct {
	Type         string // "action_start", "action_complete", "action_skip", "action_error"
	Destination  string
	Action       models.Action
	From         string
	To           string
	BytesWritten int64
	Error        error
}

// Formatter defines the interface for output formatting.
// Progress may be called from several goroutines at once.
type Formatter interface {
	// Start initializes the formatter once every destination is planned.
	// totalActions counts planned deletes and copy candidates.
	Start(writer io.Writer, totalActions int, maxWorkers int) error

	// Progress reports progress during sync
	Progress(update ProgressUpdate) error

	// Complete finalizes output and displays summary
	Complete(report *models.SyncReport) error

	// Error reports an error during sync
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for a format name: "json", "progress" or the
// human-readable default
func New(format string, progress bool) Formatter {
	switch {
	case format == "json":
		return NewJSONFormatter()
	case progress:
		return NewProgressFormatter()
	default:
		return NewHumanFormatter()
	}
}
