package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sdejongh/globsync/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	writer       io.Writer
	totalActions int
	err          error
	mu           sync.Mutex
}

// JSONReportData represents the final report data
type JSONReportData struct {
	OperationID  string                `json:"operation_id"`
	Status       string                `json:"status"`
	DryRun       bool                  `json:"dry_run"`
	Patterns     []string              `json:"patterns"`
	Duration     string                `json:"duration"`
	DurationMs   int64                 `json:"duration_ms"`
	SourceFiles  int                   `json:"source_files"`
	Stats        JSONStatsData         `json:"stats"`
	Destinations []JSONDestinationData `json:"destinations"`
	Errors       []JSONErrorData       `json:"errors,omitempty"`
	Error        string                `json:"error,omitempty"`
}

// JSONDestinationData represents the results for one destination
type JSONDestinationData struct {
	Root       string              `json:"root"`
	Created    bool                `json:"created"`
	Status     string              `json:"status"`
	Stats      JSONStatsData       `json:"stats"`
	Operations []JSONOperationData `json:"operations,omitempty"`
}

// JSONOperationData represents one executed or skipped action
type JSONOperationData struct {
	Action string `json:"action"`
	From   string `json:"from"`
	To     string `json:"to,omitempty"`
	Reason string `json:"reason,omitempty"`
	Bytes  int64  `json:"bytes,omitempty"`
	Error  string `json:"error,omitempty"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	DestEntriesScanned int   `json:"dest_entries_scanned"`
	FilesCopied        int   `json:"files_copied"`
	FilesRemoved       int   `json:"files_removed"`
	FilesSkipped       int   `json:"files_skipped"`
	FilesErrored       int   `json:"files_errored"`
	BytesTransferred   int64 `json:"bytes_transferred"`
}

// JSONErrorData represents an error entry
type JSONErrorData struct {
	Destination string `json:"destination"`
	Path        string `json:"path"`
	Action      string `json:"action,omitempty"`
	Error       string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, totalActions int, maxWorkers int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.totalActions = totalActions
	return nil
}

// Progress reports progress during sync
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	// Only the final report is printed, to keep the output parseable
	return nil
}

// Complete writes the report as a single JSON document
func (f *JSONFormatter) Complete(report *models.SyncReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		f.writer = os.Stdout
	}

	data := NewJSONReport(report)
	if f.err != nil {
		data.Error = f.err.Error()
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Error records the run error. It is written as the "error" field of the
// report, so stdout stays a single JSON document.
func (f *JSONFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err == nil {
		f.err = err
	}
	return nil
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

// NewJSONReport converts a sync report into its JSON shape
func NewJSONReport(report *models.SyncReport) JSONReportData {
	data := JSONReportData{
		OperationID: report.OperationID,
		Status:      string(report.Status),
		DryRun:      report.DryRun,
		Patterns:    report.Patterns,
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		SourceFiles: report.SourceFiles,
		Stats:       jsonStats(report.Stats),
	}

	for _, d := range report.Destinations {
		dest := JSONDestinationData{
			Root:    d.Root,
			Created: d.Created,
			Status:  string(d.Status),
			Stats:   jsonStats(d.Stats),
		}
		for _, op := range d.Operations {
			o := JSONOperationData{
				Action: string(op.Action),
				From:   op.From,
				To:     op.To,
				Reason: op.Reason,
				Bytes:  op.BytesCopied,
			}
			if op.Error != nil {
				o.Error = op.Error.Error()
			}
			dest.Operations = append(dest.Operations, o)
		}
		data.Destinations = append(data.Destinations, dest)
	}

	for _, err := range report.Errors {
		data.Errors = append(data.Errors, JSONErrorData{
			Destination: err.Destination,
			Path:        err.FilePath,
			Action:      string(err.Operation),
			Error:       err.Error,
		})
	}

	return data
}

func jsonStats(s models.Statistics) JSONStatsData {
	return JSONStatsData{
		DestEntriesScanned: s.DestEntriesScanned,
		FilesCopied:        s.FilesCopied,
		FilesRemoved:       s.FilesRemoved,
		FilesSkipped:       s.FilesSkipped,
		FilesErrored:       s.FilesErrored,
		BytesTransferred:   s.BytesTransferred,
	}
}
