// Package sync makes destination trees match the files selected by a set of
// source glob patterns.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/globsync/pkg/logging"
	"github.com/sdejongh/globsync/pkg/models"
	"github.com/sdejongh/globsync/pkg/output"
	"github.com/sdejongh/globsync/pkg/storage"
)

// Engine orchestrates the sync operation
type Engine struct {
	backend   storage.Backend
	formatter output.Formatter
	logger    logging.Logger
	operation *models.SyncOperation
	stdout    io.Writer
	started   bool
}

// NewEngine creates a new sync engine. formatter and logger may be nil.
func NewEngine(
	backend storage.Backend,
	formatter output.Formatter,
	logger logging.Logger,
	operation *models.SyncOperation,
) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Engine{
		backend:   backend,
		formatter: formatter,
		logger:    logger,
		operation: operation,
		stdout:    os.Stdout,
	}
}

// SetOutput sets where verbose entries and the formatter output are
// printed, stdout by default
func (e *Engine) SetOutput(w io.Writer) {
	e.stdout = w
}

// Run validates the operation, expands the patterns once and syncs every
// destination concurrently.
//
// The returned report always holds the outcome of every action that ran.
// The error is the first failure: a *models.ValidationError before any I/O,
// a *pathmap.PathError for a source outside the base, or a *RemoveError /
// *CopyError from an action. Completed actions are never rolled back.
func (e *Engine) Run(ctx context.Context) (*models.SyncReport, error) {
	op := e.operation
	op.Options.Normalize()
	if err := op.Validate(); err != nil {
		return nil, err
	}

	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	startTime := time.Now()
	op.StartedAt = &startTime

	report := &models.SyncReport{
		OperationID:  op.ID,
		Patterns:     op.Patterns,
		DryRun:       op.Options.DryRun,
		StartTime:    startTime,
		Destinations: make([]*models.DestinationReport, len(op.Destinations)),
	}
	for i, root := range op.Destinations {
		report.Destinations[i] = &models.DestinationReport{Root: root}
	}

	logger := e.logger.WithFields(logging.Fields{"operation_id": op.ID})
	logger.Info(ctx, "Starting sync operation", logging.Fields{
		"patterns":     op.Patterns,
		"destinations": op.Destinations,
		"base":         op.Options.Base,
		"delete":       op.Options.UpdateAndDelete,
		"dry_run":      op.Options.DryRun,
		"workers":      op.Options.MaxWorkers,
	})

	sources, err := e.expand(ctx)
	if err != nil {
		logger.Error(ctx, "Pattern expansion failed", err, nil)
		for _, dr := range report.Destinations {
			dr.Status = models.StatusFailed
		}
		return e.finish(ctx, logger, report, err)
	}
	report.SourceFiles = len(sources)
	logger.Debug(ctx, "Expanded patterns", logging.Fields{"matches": len(sources)})

	// Prepare every destination: create, list, reconcile
	plans := make([]*Plan, len(op.Destinations))
	var prepare errgroup.Group
	for i, root := range op.Destinations {
		prepare.Go(func() error {
			dr := report.Destinations[i]
			plan, err := e.prepare(ctx, logger, root, sources, dr)
			if err != nil {
				dr.Status = models.StatusFailed
				dr.Errors = append(dr.Errors, models.SyncError{
					Destination: root,
					FilePath:    root,
					Error:       err.Error(),
					Timestamp:   time.Now(),
				})
				logger.Error(ctx, "Destination preparation failed", err, logging.Fields{"destination": root})
				return err
			}
			plans[i] = plan
			return nil
		})
	}
	firstErr := prepare.Wait()

	if e.formatter != nil {
		total := 0
		for _, p := range plans {
			if p != nil {
				total += p.Len()
			}
		}
		e.startFormatter(total)
	}

	onEntry := logging.ResolveEntryHandler(op.Options.OnEntry, op.Options.Verbose, e.stdout)

	// Act on every prepared destination
	var act errgroup.Group
	for i, plan := range plans {
		if plan == nil {
			continue
		}
		act.Go(func() error {
			dr := report.Destinations[i]
			worker := NewWorker(e.backend, WorkerConfig{
				MaxWorkers:      op.Options.MaxWorkers,
				UpdateAndDelete: op.Options.UpdateAndDelete,
				DryRun:          op.Options.DryRun,
				OnEntry:         onEntry,
				Formatter:       e.formatter,
				Logger:          logger.WithFields(logging.Fields{"destination": dr.Root}),
			})

			err := worker.Execute(ctx, plan, dr)
			dr.Status = destinationStatus(dr, err)
			return err
		})
	}
	if err := act.Wait(); firstErr == nil {
		firstErr = err
	}

	return e.finish(ctx, logger, report, firstErr)
}

// Plan expands the patterns and reconciles every destination without
// creating, copying or removing anything. Missing destinations plan as empty.
func (e *Engine) Plan(ctx context.Context) ([]*Plan, error) {
	op := e.operation
	op.Options.Normalize()
	if err := op.Validate(); err != nil {
		return nil, err
	}

	sources, err := e.expand(ctx)
	if err != nil {
		return nil, err
	}

	plans := make([]*Plan, 0, len(op.Destinations))
	for _, root := range op.Destinations {
		entries, err := e.listDestination(ctx, root)
		if err != nil {
			return nil, err
		}

		plan, err := Reconcile(PlanInput{
			Patterns:         op.Patterns,
			SourceFiles:      sources,
			Root:             root,
			DestinationFiles: entries,
			Options:          op.Options,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to plan %s: %w", root, err)
		}
		plans = append(plans, plan)
	}

	return plans, nil
}

// expand runs every pattern through the backend glob. Paths matched by more
// than one pattern are kept once, in first-seen order.
func (e *Engine) expand(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var sources []string

	for _, pattern := range e.operation.Patterns {
		matches, err := e.backend.Glob(ctx, pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			sources = append(sources, m)
		}
	}

	return sources, nil
}

// prepare creates the destination root if needed, lists it and reconciles
func (e *Engine) prepare(ctx context.Context, logger logging.Logger, root string, sources []string, dr *models.DestinationReport) (*Plan, error) {
	op := e.operation

	exists, err := e.backend.Exists(ctx, root)
	if err != nil {
		return nil, err
	}
	if !exists {
		if op.Options.DryRun {
			logger.Info(ctx, "Would create destination", logging.Fields{"destination": root})
		} else {
			if err := e.backend.MkdirAll(ctx, root); err != nil {
				return nil, err
			}
			logger.Info(ctx, "Created destination", logging.Fields{"destination": root})
		}
		dr.Created = true
	}

	entries, err := e.listDestination(ctx, root)
	if err != nil {
		return nil, err
	}
	dr.Stats.DestEntriesScanned = len(entries)

	plan, err := Reconcile(PlanInput{
		Patterns:         op.Patterns,
		SourceFiles:      sources,
		Root:             root,
		DestinationFiles: entries,
		Options:          op.Options,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug(ctx, "Reconciled destination", logging.Fields{
		"destination": root,
		"entries":     len(entries),
		"deletes":     len(plan.Deletes),
		"copies":      len(plan.Copies),
	})

	return plan, nil
}

// listDestination returns the entries below root relative to it.
// A missing root lists as empty.
func (e *Engine) listDestination(ctx context.Context, root string) ([]string, error) {
	files, err := e.backend.List(ctx, root, false)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	entries := make([]string, len(files))
	for i, f := range files {
		entries[i] = f.RelativePath
	}
	return entries, nil
}

func (e *Engine) finish(ctx context.Context, logger logging.Logger, report *models.SyncReport, err error) (*models.SyncReport, error) {
	completedAt := time.Now()
	e.operation.CompletedAt = &completedAt
	report.Finalize(completedAt)

	if e.formatter != nil {
		if !e.started {
			e.startFormatter(0)
		}
		if err != nil {
			e.formatter.Error(err)
		}
		e.formatter.Complete(report)
	}

	logger.Info(ctx, "Sync operation completed", logging.Fields{
		"status":       string(report.Status),
		"copied":       report.Stats.FilesCopied,
		"removed":      report.Stats.FilesRemoved,
		"skipped":      report.Stats.FilesSkipped,
		"errors":       report.Stats.FilesErrored,
		"bytes":        report.Stats.BytesTransferred,
		"duration_ms":  report.Duration.Milliseconds(),
		"source_files": report.SourceFiles,
		"destinations": len(report.Destinations),
	})

	return report, err
}

func (e *Engine) startFormatter(totalActions int) {
	e.formatter.Start(e.stdout, totalActions, e.operation.Options.MaxWorkers)
	e.started = true
}

func destinationStatus(dr *models.DestinationReport, err error) models.SyncStatus {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return models.StatusCancelled
	case err == nil && len(dr.Errors) == 0:
		return models.StatusSuccess
	case dr.Stats.FilesCopied == 0 && dr.Stats.FilesRemoved == 0 && dr.Stats.FilesSkipped == 0:
		return models.StatusFailed
	default:
		return models.StatusPartial
	}
}
