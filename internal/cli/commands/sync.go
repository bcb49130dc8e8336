package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tcat/internal/config"
	"tcat/internal/storage"
)

// SyncCommand handles the sync command
type SyncCommand struct {
	config  *config.Config
	builder *catalogBuilder
}

// NewSyncCommand creates a new SyncCommand
func NewSyncCommand(cfg *config.Config, builder *catalogBuilder) *SyncCommand {
	return &SyncCommand{
		config:  cfg,
		builder: builder,
	}
}

// Execute runs the command
func (sc *SyncCommand) Execute(cmd *cobra.Command, args []string) error {
	registry, err := sc.builder.Build(cmd.Context(), nil)
	if err != nil {
		return err
	}

	result, err := storage.NewMySQLStorage(sc.config.Database).Sync(cmd.Context(), registry.Snapshot())
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if result.CreatedDatabase {
		fmt.Fprintf(out, "%s %s\n", color.CyanString("Created database"), result.Database)
	}
	fmt.Fprintf(out, "%s %d suite(s), %d case(s) to %s (%d stale row(s) removed)\n",
		color.GreenString("✓ Synced"), result.Suites, result.Cases, result.Database, result.Removed)
	return nil
}
