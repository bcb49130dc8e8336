package commands

import (
	"github.com/spf13/cobra"

	"tcat/internal/config"
	"tcat/internal/selection"
	"tcat/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config  *config.Config
	builder *catalogBuilder
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, builder *catalogBuilder) *ListCommand {
	return &ListCommand{
		config:  cfg,
		builder: builder,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	registry, err := lc.builder.Build(cmd.Context(), nil)
	if err != nil {
		return err
	}

	snapshot := registry.Snapshot()
	suites := selection.Select(snapshot.Suites, criteria(lc.config.Flags))

	formatter := ui.NewFormatter(cmd.OutOrStdout())
	formatter.PrintCatalog(suites, lc.config.Flags.ShowCases)
	formatter.PrintPending(snapshot.Pending)
	return nil
}
