package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sdejongh/globsync/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer       io.Writer
	totalActions int
	startTime    time.Time
	mu           sync.Mutex
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, totalActions int, maxWorkers int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.totalActions = totalActions
	f.startTime = time.Now()

	return nil
}

// Progress reports failed actions as they happen. Successful actions are
// printed by the entry handler when verbose output is on.
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil || update.Type != "action_error" {
		return nil
	}

	path := update.From
	if update.Action == models.ActionCopy {
		path = update.To
	}
	fmt.Fprintf(f.writer, "✗ %s %s: %v\n", update.Action, path, update.Error)

	return nil
}

// Complete finalizes output and displays summary
func (f *HumanFormatter) Complete(report *models.SyncReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		f.writer = os.Stdout
	}

	writeSummary(f.writer, report)
	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// writeSummary prints the end-of-run summary shared by the text formatters
func writeSummary(w io.Writer, report *models.SyncReport) {
	fmt.Fprintf(w, "\n")
	if report.DryRun {
		fmt.Fprintf(w, "Dry run completed in %s (no changes made)\n", report.Duration.Round(time.Millisecond))
	} else {
		fmt.Fprintf(w, "Sync completed in %s\n", report.Duration.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Source matches:     %d\n", report.SourceFiles)
	fmt.Fprintf(w, "  Destinations:       %d\n", len(report.Destinations))
	for _, d := range report.Destinations {
		created := ""
		if d.Created {
			created = " (created)"
		}
		fmt.Fprintf(w, "    %s%s: %d copied, %d removed, %d skipped, %d errors [%s]\n",
			d.Root, created, d.Stats.FilesCopied, d.Stats.FilesRemoved, d.Stats.FilesSkipped, d.Stats.FilesErrored, d.Status)
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Operations:\n")
	fmt.Fprintf(w, "    Files copied:     %d\n", report.Stats.FilesCopied)
	fmt.Fprintf(w, "    Entries removed:  %d\n", report.Stats.FilesRemoved)
	fmt.Fprintf(w, "    Files skipped:    %d\n", report.Stats.FilesSkipped)
	fmt.Fprintf(w, "    Errors:           %d\n", report.Stats.FilesErrored)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Transfer:\n")
	fmt.Fprintf(w, "    Data:             %s\n", formatBytes(report.Stats.BytesTransferred))

	if report.Duration.Seconds() > 0 && report.Stats.BytesTransferred > 0 {
		avgSpeed := float64(report.Stats.BytesTransferred) / report.Duration.Seconds()
		fmt.Fprintf(w, "    Average speed:    %s/s\n", formatBytes(int64(avgSpeed)))
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Status: %s\n", report.Status)

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, err := range report.Errors {
			fmt.Fprintf(w, "  %s: %s\n", err.FilePath, err.Error)
		}
	}
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
