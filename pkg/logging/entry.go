package logging

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/sdejongh/globsync/pkg/models"
)

var (
	removingLabel = color.New(color.FgRed)
	copyingLabel  = color.New(color.FgGreen)
	arrow         = color.New(color.FgCyan)
)

// FormatEntry renders an entry as a single line, colored unless
// color.NoColor is set:
//
//	Copying: from -> to
//	Removing: from
func FormatEntry(entry models.LogEntry) string {
	if entry.Action == models.ActionRemove {
		return removingLabel.Sprint("Removing: ") + entry.From
	}
	return copyingLabel.Sprint("Copying: ") + entry.From + arrow.Sprint(" -> ") + entry.To
}

// NewConsoleEntryHandler returns a handler printing FormatEntry lines to w.
// Writes are serialized so lines from concurrent actions never interleave.
func NewConsoleEntryHandler(w io.Writer) models.EntryHandler {
	var mu sync.Mutex

	return func(entry models.LogEntry) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintln(w, FormatEntry(entry))
	}
}

// ResolveEntryHandler picks the handler for a run: the caller's OnEntry if
// set, a console handler on w when verbose, or nil.
func ResolveEntryHandler(onEntry models.EntryHandler, verbose bool, w io.Writer) models.EntryHandler {
	if onEntry != nil {
		return onEntry
	}
	if verbose {
		return NewConsoleEntryHandler(w)
	}
	return nil
}
