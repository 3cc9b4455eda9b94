package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/globsync/pkg/models"
	"github.com/sdejongh/globsync/pkg/output"
	"github.com/sdejongh/globsync/pkg/storage"
	"github.com/sdejongh/globsync/pkg/sync"
)

var planShowAll bool

// NewPlanCommand creates the plan command
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan PATTERN...",
		Short: "Show what sync would do, without syncing",
		Long: `Expand the patterns and reconcile every destination, then print the
copies and removals a sync with the same flags would perform. Nothing is
created, copied or removed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runPlan,
	}

	addSelectionFlags(cmd, &syncFlags)
	cmd.Flags().BoolVar(&planShowAll, "all", false, "also list files that would be skipped")

	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlagsToConfig(cfg, &syncFlags); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	operation := createSyncOperation(cfg, args, &syncFlags)
	operation.Options.DryRun = true
	if err := validateSyncFlags(operation); err != nil {
		return err
	}

	backend := storage.NewOsLocal()
	defer backend.Close()

	plans, err := sync.NewEngine(backend, nil, nil, operation).Plan(ctx)
	if err != nil {
		return fmt.Errorf("plan failed: %w", err)
	}

	rows, err := planRows(ctx, backend, plans, operation.Options.UpdateAndDelete, planShowAll)
	if err != nil {
		return err
	}

	return output.WritePlanTable(cmd.OutOrStdout(), rows)
}

// planRows lists removals first, then the copies that would really happen
func planRows(ctx context.Context, backend storage.Backend, plans []*sync.Plan, updateAndDelete, all bool) ([]output.PlanRow, error) {
	var rows []output.PlanRow

	for _, plan := range plans {
		for _, d := range plan.Deletes {
			rows = append(rows, output.PlanRow{
				Destination: plan.Root,
				Action:      models.ActionRemove,
				From:        d.Path,
			})
		}

		for _, c := range plan.Copies {
			decision, err := sync.DecideCopy(ctx, backend, c, updateAndDelete)
			if err != nil {
				return nil, fmt.Errorf("failed to compare %s: %w", c.From, err)
			}

			action := models.ActionCopy
			if decision.Skip {
				if !all {
					continue
				}
				action = models.ActionSkip
			}

			rows = append(rows, output.PlanRow{
				Destination: plan.Root,
				Action:      action,
				From:        c.From,
				To:          c.To,
			})
		}
	}

	return rows, nil
}
