package commands

import (
	"github.com/spf13/cobra"

	"tcat/internal/config"
	"tcat/internal/ui"
)

// CheckCommand handles the check command
type CheckCommand struct {
	config  *config.Config
	builder *catalogBuilder
}

// NewCheckCommand creates a new CheckCommand
func NewCheckCommand(cfg *config.Config, builder *catalogBuilder) *CheckCommand {
	return &CheckCommand{
		config:  cfg,
		builder: builder,
	}
}

// Execute runs the command. A rejected registration is printed and returned
// as a ReportedError, so the process exits non-zero without repeating it.
func (cc *CheckCommand) Execute(cmd *cobra.Command, args []string) error {
	formatter := ui.NewFormatter(cmd.OutOrStdout())

	registry, err := cc.builder.Build(cmd.Context(), nil)
	if err != nil {
		formatter.PrintCheckResult(err)
		return &ReportedError{Err: err}
	}

	snapshot := registry.Snapshot()
	formatter.PrintStats(snapshot.Stats())
	formatter.PrintPending(snapshot.Pending)
	formatter.PrintCheckResult(nil)
	return nil
}
