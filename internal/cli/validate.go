package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sdejongh/globsync/pkg/config"
	"github.com/sdejongh/globsync/pkg/models"
	"github.com/sdejongh/globsync/pkg/pathmap"
	"github.com/sdejongh/globsync/pkg/ratelimit"
)

// validateSyncFlags checks the destinations against the filesystem and the
// patterns. Pattern syntax and option values are checked by the operation.
func validateSyncFlags(operation *models.SyncOperation) error {
	for _, dest := range operation.Destinations {
		info, err := os.Stat(dest)
		if err == nil && !info.IsDir() {
			return fmt.Errorf("destination path exists but is not a directory: %s", dest)
		}
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to access destination path: %w", err)
		}

		destAbs, err := filepath.Abs(dest)
		if err != nil {
			return fmt.Errorf("failed to resolve destination path: %w", err)
		}

		// A destination inside a recursive source tree would be matched
		// by the next expansion
		for _, pattern := range operation.Patterns {
			if !pathmap.Recursive(pattern) {
				continue
			}
			parent := pathmap.ParentDir(pattern)
			if parent == "" {
				parent = "."
			}
			parentAbs, err := filepath.Abs(filepath.FromSlash(parent))
			if err != nil {
				return fmt.Errorf("failed to resolve pattern directory: %w", err)
			}
			if destAbs == parentAbs || strings.HasPrefix(destAbs, parentAbs+string(filepath.Separator)) {
				return fmt.Errorf("destination %s is inside the source tree of pattern %q", dest, pattern)
			}
		}
	}

	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	return config.Load(globalFlags.ConfigFile)
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config, flags *SyncFlags) error {
	if flags.Base != "" {
		cfg.Sync.Base = flags.Base
	}
	if flags.NoDelete {
		cfg.Sync.UpdateAndDelete = false
	}
	if len(flags.IgnoreInDest) > 0 {
		cfg.Sync.IgnoreInDest = flags.IgnoreInDest
	}
	if flags.Containment != "" {
		cfg.Sync.Containment = models.Containment(flags.Containment)
	}
	if flags.Verbose {
		cfg.Sync.Verbose = true
	}

	// Parallel workers (default: 5)
	if flags.Parallel > 0 {
		cfg.Performance.MaxWorkers = flags.Parallel
	} else if cfg.Performance.MaxWorkers == 0 {
		cfg.Performance.MaxWorkers = models.DefaultMaxWorkers
	}

	if flags.Bandwidth != "" {
		limit, err := ratelimit.ParseBandwidth(flags.Bandwidth)
		if err != nil {
			return fmt.Errorf("invalid bandwidth limit: %w", err)
		}
		cfg.Performance.BandwidthLimit = limit
	}

	// Output format
	if flags.Output != "" {
		cfg.Output.Format = flags.Output
	}
	if flags.Progress {
		cfg.Output.Progress = true
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	// A log file on the command line turns the run log on
	if flags.LogFile != "" {
		cfg.Logging.File = flags.LogFile
		cfg.Logging.Enabled = true
	}
	if flags.LogFormat != "" {
		cfg.Logging.Format = flags.LogFormat
	}
	if flags.LogLevel != "" {
		cfg.Logging.Level = flags.LogLevel
	}

	return nil
}

// createSyncOperation creates a sync operation from configuration
func createSyncOperation(cfg *config.Config, patterns []string, flags *SyncFlags) *models.SyncOperation {
	options := cfg.Options()
	options.DryRun = flags.DryRun

	return &models.SyncOperation{
		Patterns:     patterns,
		Destinations: flags.Dest,
		Options:      *options,
		CreatedAt:    time.Now(),
	}
}
