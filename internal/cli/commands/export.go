package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"tcat/internal/config"
	"tcat/internal/storage"
)

// ExportCommand handles the export command
type ExportCommand struct {
	config  *config.Config
	builder *catalogBuilder
}

// NewExportCommand creates a new ExportCommand
func NewExportCommand(cfg *config.Config, builder *catalogBuilder) *ExportCommand {
	return &ExportCommand{
		config:  cfg,
		builder: builder,
	}
}

// Execute runs the command
func (ec *ExportCommand) Execute(cmd *cobra.Command, args []string) error {
	metrics, reg := newMetrics()
	registry, err := ec.builder.Build(cmd.Context(), metrics)
	if err != nil {
		return err
	}

	store := storage.NewJSONStorage(ec.config)
	if err := store.Save(registry.Snapshot()); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", color.GreenString("✓ Catalog written to"), store.Path())

	if path := ec.config.Flags.Metrics; path != "" {
		if err := prometheus.WriteToTextfile(path, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		fmt.Fprintf(out, "%s %s\n", color.GreenString("✓ Metrics written to"), path)
	}
	return nil
}
