package commands

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"tcat/internal/catalog"
	"tcat/internal/cli"
	"tcat/internal/config"
	"tcat/internal/discovery"
	"tcat/internal/logging"
	"tcat/internal/selection"
	"tcat/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	List   *ListCommand
	Check  *CheckCommand
	Export *ExportCommand
	Sync   *SyncCommand
	Browse *BrowseCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	builder := &catalogBuilder{config: cfg}
	return &Commands{
		List:   NewListCommand(cfg, builder),
		Check:  NewCheckCommand(cfg, builder),
		Export: NewExportCommand(cfg, builder),
		Sync:   NewSyncCommand(cfg, builder),
		Browse: NewBrowseCommand(cfg, builder, ui.NewBrowser()),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.PersistentFlags().CountVarP(&flags.Verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().StringVar(&flags.ProjectPath, "project", config.DefaultProjectPath, "Project directory holding tcat.toml and .env")
	rootCmd.PersistentFlags().StringVarP(&flags.SourcePath, "source-path", "s", "", "Path to the folder where suite discovery should start")
	rootCmd.PersistentFlags().IntVarP(&flags.Workers, "workers", "w", 0, "Number of parallel parsers (default from config)")
	rootCmd.PersistentFlags().StringVar(&flags.FilePattern, "files", "", "Only read suite sources whose file name matches (e.g. '*network*')")

	// Update config with flags after parsing
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logging.Setup(flags.Verbosity, os.Stderr)
		loaded, err := config.Load(flags.ProjectPath)
		if err != nil {
			return err
		}
		*cfg = *loaded
		cfg.ApplyFlags(flags.ToConfigFlags())
		return nil
	}

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered test suites",
		Long:  "Discover test suites and cases and print them as a tree",
		RunE:  c.List.Execute,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter suites and cases by name pattern (supports wildcards, e.g. 'cpu*' or '*online*')")
	listCmd.Flags().StringVar(&flags.Area, "area", "", "Only suites in this area")
	listCmd.Flags().StringVar(&flags.Category, "category", "", "Only suites in this category")
	listCmd.Flags().StringSliceVar(&flags.Tags, "tag", nil, "Only suites carrying this tag (repeatable)")
	listCmd.Flags().IntVar(&flags.MaxPriority, "max-priority", -1, "Only cases with this priority or lower")
	listCmd.Flags().BoolVarP(&flags.ShowCases, "cases", "c", false, "List test cases under each suite")
	rootCmd.AddCommand(listCmd)

	// Check command
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the test catalog",
		Long:  "Build the catalog and report duplicate suites or cases and cases without a suite",
		RunE:  c.Check.Execute,
	}
	rootCmd.AddCommand(checkCmd)

	// Export command
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the test catalog as JSON",
		Long:  "Build the catalog and write a JSON snapshot (default storage/test-catalog.json)",
		RunE:  c.Export.Execute,
	}
	exportCmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Write the snapshot to this file")
	exportCmd.Flags().StringVar(&flags.Metrics, "metrics", "", "Also write registration metrics in Prometheus text format to this file")
	rootCmd.AddCommand(exportCmd)

	// Sync command
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror the test catalog into MySQL",
		Long:  "Build the catalog and upsert it into the tcat_suites and tcat_cases tables",
		RunE:  c.Sync.Execute,
	}
	rootCmd.AddCommand(syncCmd)

	// Browse command
	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the test catalog interactively",
		Long:  "Display suites and cases in an interactive viewer",
		RunE:  c.Browse.Execute,
	}
	browseCmd.Flags().StringVar(&flags.From, "from", "", "Browse an exported JSON snapshot instead of rediscovering")
	rootCmd.AddCommand(browseCmd)
}

// catalogBuilder discovers suites with the current configuration
type catalogBuilder struct {
	config *config.Config
}

// Build loads a sealed registry from the configured source path
func (b *catalogBuilder) Build(ctx context.Context, metrics *catalog.Metrics) (*catalog.Registry, error) {
	cfg := b.config
	scanner := discovery.NewScanner(cfg.PathsToIgnore)
	pool := discovery.NewWorkerPool(cfg.Workers, discovery.RoundRobin)

	opts := []discovery.LoaderOption{discovery.WithFilePattern(cfg.Flags.FilePattern)}
	if metrics != nil {
		opts = append(opts, discovery.WithRegistryOptions(catalog.WithMetrics(metrics)))
	}
	if cfg.Flags.Verbosity == 0 {
		opts = append(opts, discovery.WithProgress(func(files int) discovery.Progress {
			return ui.NewProgressBar(files)
		}))
	}
	return discovery.NewLoader(scanner, pool, opts...).Load(ctx, cfg.GetSourcePath())
}

// newMetrics returns catalog metrics registered with a fresh registry
func newMetrics() (*catalog.Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return catalog.NewMetrics(reg), reg
}

// criteria converts the selection flags
func criteria(flags config.Flags) selection.Criteria {
	c := selection.Criteria{
		Pattern:  flags.NameFilter,
		Area:     flags.Area,
		Category: flags.Category,
		Tags:     flags.Tags,
	}
	if flags.MaxPriority >= 0 {
		p := flags.MaxPriority
		c.MaxPriority = &p
	}
	return c
}
