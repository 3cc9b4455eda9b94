package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/globsync/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}

// addSelectionFlags registers the flags shared by sync and plan: where files
// go and which destination entries are kept
func addSelectionFlags(cmd *cobra.Command, flags *SyncFlags) {
	cmd.Flags().StringArrayVarP(&flags.Dest, "dest", "d", nil, "destination directory, repeat for several (required)")
	cmd.MarkFlagRequired("dest")

	cmd.Flags().StringVar(&flags.Base, "base", "", "source prefix stripped before mapping into the destination")
	cmd.Flags().BoolVar(&flags.NoDelete, "no-delete", false, "only copy missing files, never overwrite or remove")
	cmd.Flags().StringArrayVar(&flags.IgnoreInDest, "ignore-in-dest", nil, "glob of destination entries to keep even without a source (repeatable)")
	cmd.Flags().StringVar(&flags.Containment, "containment", "", "stale entry test: segment, substring (default: segment)")
}
