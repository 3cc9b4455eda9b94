package sync

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/globsync/pkg/compare"
	"github.com/sdejongh/globsync/pkg/logging"
	"github.com/sdejongh/globsync/pkg/models"
	"github.com/sdejongh/globsync/pkg/output"
	"github.com/sdejongh/globsync/pkg/storage"
)

// WorkerConfig controls how a plan is executed
type WorkerConfig struct {
	MaxWorkers      int
	UpdateAndDelete bool
	DryRun          bool
	OnEntry         models.EntryHandler
	Formatter       output.Formatter
	Logger          logging.Logger
}

// Worker executes the actions of a plan in parallel
type Worker struct {
	backend storage.Backend
	config  WorkerConfig
	mu      sync.Mutex
}

// NewWorker creates a new worker pool
func NewWorker(backend storage.Backend, config WorkerConfig) *Worker {
	if config.MaxWorkers < 1 {
		config.MaxWorkers = 1
	}
	if config.Logger == nil {
		config.Logger = logging.NewNullLogger()
	}
	return &Worker{
		backend: backend,
		config:  config,
	}
}

// Execute runs every delete and copy of plan, at most MaxWorkers at a time.
// A failing action does not stop its siblings; the first error is returned
// once all started actions have finished. All outcomes are recorded in
// report. Cancelling ctx stops new actions from starting.
func (w *Worker) Execute(ctx context.Context, plan *Plan, report *models.DestinationReport) error {
	var g errgroup.Group
	g.SetLimit(w.config.MaxWorkers)

	for _, d := range plan.Deletes {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return w.remove(ctx, d, report)
		})
	}

	for _, c := range plan.Copies {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return w.copy(ctx, c, report)
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return err
}

// remove deletes one stale destination entry
func (w *Worker) remove(ctx context.Context, action RemoveAction, report *models.DestinationReport) error {
	if ctx.Err() != nil {
		return nil
	}

	startTime := time.Now()
	op := models.FileOperation{
		Action: models.ActionRemove,
		From:   action.Path,
		Reason: "no matching source",
	}

	w.progress(output.ProgressUpdate{
		Type:        "action_start",
		Destination: report.Root,
		Action:      models.ActionRemove,
		From:        action.Path,
	})

	if !w.config.DryRun {
		if err := w.backend.Delete(ctx, action.Path); err != nil {
			op.Error = &RemoveError{Path: action.Path, Err: err}
			op.Duration = time.Since(startTime)
			w.fail(ctx, report, op)
			return op.Error
		}
	}
	op.Duration = time.Since(startTime)

	w.mu.Lock()
	report.Operations = append(report.Operations, op)
	report.Stats.FilesRemoved++
	w.mu.Unlock()

	msg := "Removed stale entry"
	if w.config.DryRun {
		msg = "Would remove stale entry"
	}
	w.config.Logger.Info(ctx, msg, logging.Fields{
		"destination": report.Root,
		"path":        action.Path,
	})
	w.emit(models.LogEntry{Action: models.ActionRemove, From: action.Relative})
	w.progress(output.ProgressUpdate{
		Type:        "action_complete",
		Destination: report.Root,
		Action:      models.ActionRemove,
		From:        action.Path,
	})

	return nil
}

// copy stats both sides, applies the update decision and copies when needed
func (w *Worker) copy(ctx context.Context, action CopyAction, report *models.DestinationReport) error {
	if ctx.Err() != nil {
		return nil
	}

	startTime := time.Now()
	op := models.FileOperation{
		Action: models.ActionCopy,
		From:   action.From,
		To:     action.To,
	}

	decision, err := DecideCopy(ctx, w.backend, action, w.config.UpdateAndDelete)
	if err != nil {
		op.Error = &CopyError{From: action.From, To: action.To, Err: err}
		w.fail(ctx, report, op)
		return op.Error
	}
	op.Reason = string(decision.Reason)

	if decision.Skip {
		op.Action = models.ActionSkip

		w.mu.Lock()
		report.Operations = append(report.Operations, op)
		report.Stats.FilesSkipped++
		w.mu.Unlock()

		w.config.Logger.Debug(ctx, "Skipped file", logging.Fields{
			"destination": report.Root,
			"from":        action.From,
			"to":          action.To,
			"reason":      op.Reason,
		})
		w.progress(output.ProgressUpdate{
			Type:        "action_skip",
			Destination: report.Root,
			Action:      models.ActionSkip,
			From:        action.From,
			To:          action.To,
		})
		return nil
	}

	w.progress(output.ProgressUpdate{
		Type:        "action_start",
		Destination: report.Root,
		Action:      models.ActionCopy,
		From:        action.From,
		To:          action.To,
	})

	if !w.config.DryRun {
		written, err := w.backend.Copy(ctx, action.From, action.To)
		op.BytesCopied = written
		if err != nil {
			op.Error = &CopyError{From: action.From, To: action.To, Err: err}
			op.Duration = time.Since(startTime)
			w.fail(ctx, report, op)
			return op.Error
		}
	}
	op.Duration = time.Since(startTime)

	w.mu.Lock()
	report.Operations = append(report.Operations, op)
	report.Stats.FilesCopied++
	report.Stats.BytesTransferred += op.BytesCopied
	w.mu.Unlock()

	msg := "Copied file"
	if w.config.DryRun {
		msg = "Would copy file"
	}
	w.config.Logger.Info(ctx, msg, logging.Fields{
		"destination": report.Root,
		"from":        action.From,
		"to":          action.To,
		"bytes":       op.BytesCopied,
		"reason":      op.Reason,
	})
	w.emit(models.LogEntry{Action: models.ActionCopy, From: action.From, To: action.To})
	w.progress(output.ProgressUpdate{
		Type:         "action_complete",
		Destination:  report.Root,
		Action:       models.ActionCopy,
		From:         action.From,
		To:           action.To,
		BytesWritten: op.BytesCopied,
	})

	return nil
}

// DecideCopy stats both sides of a copy and applies the update rules.
// A destination that does not exist is treated as absent.
func DecideCopy(ctx context.Context, backend storage.Backend, action CopyAction, updateAndDelete bool) (compare.Decision, error) {
	source, err := backend.Stat(ctx, action.From)
	if err != nil {
		return compare.Decision{}, err
	}

	dest, err := backend.Stat(ctx, action.To)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return compare.Decision{}, err
		}
		dest = nil
	}

	return compare.Decide(source, dest, updateAndDelete), nil
}

// fail records a failed operation
func (w *Worker) fail(ctx context.Context, report *models.DestinationReport, op models.FileOperation) {
	path := op.From
	if op.Action == models.ActionCopy {
		path = op.To
	}

	w.mu.Lock()
	report.Operations = append(report.Operations, op)
	report.Stats.FilesErrored++
	report.Errors = append(report.Errors, models.SyncError{
		Destination: report.Root,
		FilePath:    path,
		Operation:   op.Action,
		Error:       op.Error.Error(),
		Timestamp:   time.Now(),
	})
	w.mu.Unlock()

	w.config.Logger.Error(ctx, "Action failed", op.Error, logging.Fields{
		"destination": report.Root,
		"action":      string(op.Action),
		"path":        path,
	})
	w.progress(output.ProgressUpdate{
		Type:        "action_error",
		Destination: report.Root,
		Action:      op.Action,
		From:        op.From,
		To:          op.To,
		Error:       op.Error,
	})
}

func (w *Worker) emit(entry models.LogEntry) {
	if w.config.OnEntry != nil {
		w.config.OnEntry(entry)
	}
}

func (w *Worker) progress(update output.ProgressUpdate) {
	if w.config.Formatter != nil {
		w.config.Formatter.Progress(update)
	}
}
