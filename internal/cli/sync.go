package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sdejongh/globsync/pkg/config"
	"github.com/sdejongh/globsync/pkg/logging"
	"github.com/sdejongh/globsync/pkg/output"
	"github.com/sdejongh/globsync/pkg/ratelimit"
	"github.com/sdejongh/globsync/pkg/storage"
	"github.com/sdejongh/globsync/pkg/sync"
)

// SyncFlags holds sync command flags
type SyncFlags struct {
	Dest         []string
	Base         string
	NoDelete     bool
	IgnoreInDest []string
	Containment  string
	Verbose      bool
	Parallel     int
	DryRun       bool
	Bandwidth    string
	Output       string
	Progress     bool
	ReportFile   string
	ReportFormat string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var syncFlags SyncFlags

// ExitError carries a non-zero exit code for a run whose outcome was
// already reported
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync PATTERN...",
		Short: "Mirror the files matched by glob patterns into destinations",
		Long: `Expand the source glob patterns and make every destination match:
missing or outdated files are copied, and destination entries without a
matching source are removed unless --no-delete is set.`,
		Example: `  globsync sync 'photos/**/*.jpg' --base photos --dest /mnt/backup
  globsync sync 'src/**' --dest out-a --dest out-b --ignore-in-dest '**/.keep'`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSync,
	}

	addSelectionFlags(cmd, &syncFlags)

	cmd.Flags().BoolVarP(&syncFlags.Verbose, "verbose", "v", false, "print every copy and removal")
	cmd.Flags().IntVarP(&syncFlags.Parallel, "parallel", "p", 0, "number of parallel workers (default: 5)")
	cmd.Flags().BoolVar(&syncFlags.DryRun, "dry-run", false, "report what would change without touching destinations")
	cmd.Flags().StringVarP(&syncFlags.Bandwidth, "bandwidth", "b", "", "bandwidth limit (e.g., \"10M\", \"1G\")")
	cmd.Flags().StringVarP(&syncFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().BoolVar(&syncFlags.Progress, "progress", false, "show a progress bar on terminals")
	cmd.Flags().StringVar(&syncFlags.ReportFile, "report-file", "", "write the list of executed actions to file")
	cmd.Flags().StringVar(&syncFlags.ReportFormat, "report-format", "human", "actions report format: human, json")

	// Logging flags
	cmd.Flags().StringVar(&syncFlags.LogFile, "log-file", "", "write logs to file, or \"-\" for stderr (enables logging)")
	cmd.Flags().StringVar(&syncFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&syncFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	if err := applyFlagsToConfig(cfg, &syncFlags); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	operation := createSyncOperation(cfg, args, &syncFlags)
	if err := validateSyncFlags(operation); err != nil {
		return err
	}

	backend := storage.NewOsLocal()
	defer backend.Close()
	backend.SetLimiter(ratelimit.NewLimiter(operation.Options.BandwidthLimit))

	// Create output formatter
	var formatter output.Formatter
	if !cfg.Output.Quiet {
		progress := cfg.Output.Progress && output.IsTerminal(cmd.OutOrStdout())
		formatter = output.New(cfg.Output.Format, progress)
	}

	// Keep the JSON document alone on stdout
	if operation.Options.Verbose && formatter != nil && formatter.Name() == "json" {
		operation.Options.OnEntry = logging.NewConsoleEntryHandler(cmd.ErrOrStderr())
	}

	// Create logger
	logger, err := createLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	engine := sync.NewEngine(backend, formatter, logger, operation)
	engine.SetOutput(cmd.OutOrStdout())

	report, err := engine.Run(ctx)
	if report == nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	// The formatter already reported the error
	if err != nil && formatter == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}

	if syncFlags.ReportFile != "" {
		if err := output.WriteActionsReport(report, syncFlags.ReportFile, syncFlags.ReportFormat); err != nil {
			return fmt.Errorf("failed to write actions report: %w", err)
		}
	}

	if code := report.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// createLogger creates a logger based on configuration. A file of "-"
// logs to stderr.
func createLogger(cfg config.LoggingConfig, stderr io.Writer) (logging.Logger, error) {
	// No run log unless a file is configured
	if !cfg.Enabled || cfg.File == "" {
		return logging.NewNullLogger(), nil
	}
	if cfg.File == "-" {
		return logging.NewStreamLogger(stderr, logging.ParseFormat(cfg.Format), logging.ParseLevel(cfg.Level)), nil
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.File,
		Format:     logging.ParseFormat(cfg.Format),
		Level:      logging.ParseLevel(cfg.Level),
		MaxSize:    10 * 1024 * 1024, // 10 MB
		MaxBackups: 5,
	})
}
