package commands

import (
	"github.com/spf13/cobra"

	"tcat/internal/catalog"
	"tcat/internal/config"
	"tcat/internal/storage"
	"tcat/internal/ui"
)

// BrowseCommand handles the browse command
type BrowseCommand struct {
	config  *config.Config
	builder *catalogBuilder
	viewer  ui.Viewer
}

// NewBrowseCommand creates a new BrowseCommand
func NewBrowseCommand(cfg *config.Config, builder *catalogBuilder, viewer ui.Viewer) *BrowseCommand {
	return &BrowseCommand{
		config:  cfg,
		builder: builder,
		viewer:  viewer,
	}
}

// Execute runs the command
func (bc *BrowseCommand) Execute(cmd *cobra.Command, args []string) error {
	snapshot, err := bc.snapshot(cmd)
	if err != nil {
		return err
	}
	return bc.viewer.View(snapshot)
}

func (bc *BrowseCommand) snapshot(cmd *cobra.Command) (*catalog.Snapshot, error) {
	if from := bc.config.Flags.From; from != "" {
		return storage.LoadFile(from)
	}
	registry, err := bc.builder.Build(cmd.Context(), nil)
	if err != nil {
		return nil, err
	}
	return registry.Snapshot(), nil
}
