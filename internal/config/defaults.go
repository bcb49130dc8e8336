package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultSourcePath is where suite discovery starts, relative to the project
	DefaultSourcePath = "."
	// DefaultOutputJSONFile is the default catalog export file name
	DefaultOutputJSONFile = "test-catalog.json"
	// DefaultOutputJSONDir is the default export directory
	DefaultOutputJSONDir = "storage"
	// DefaultWorkers is the default number of parse workers
	DefaultWorkers = 4
	// DefaultConfigFile is the optional per-project config file
	DefaultConfigFile = "tcat.toml"
	// EnvPrefix prefixes environment overrides, e.g. TCAT_WORKERS
	EnvPrefix = "TCAT_"

	// DefaultDatabaseHost is the MySQL host used by sync
	DefaultDatabaseHost = "127.0.0.1"
	// DefaultDatabasePort is the MySQL port used by sync
	DefaultDatabasePort = "3306"
	// DefaultDatabaseUser is the MySQL user used by sync
	DefaultDatabaseUser = "root"
	// DefaultDatabaseName is the schema holding the catalog tables
	DefaultDatabaseName = "tcat"
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for suites
var DefaultPathsToIgnore = []string{
	"__pycache__",
	"venv",
	"node_modules",
	"build",
	"dist",
	"storage",
}

// defaultsMap is the lowest configuration layer
func defaultsMap() map[string]interface{} {
	ignore := make([]interface{}, len(DefaultPathsToIgnore))
	for i, p := range DefaultPathsToIgnore {
		ignore[i] = p
	}
	return map[string]interface{}{
		"source_path":       DefaultSourcePath,
		"output_json_file":  DefaultOutputJSONFile,
		"output_json_dir":   DefaultOutputJSONDir,
		"workers":           DefaultWorkers,
		"paths_to_ignore":   ignore,
		"database.host":     DefaultDatabaseHost,
		"database.port":     DefaultDatabasePort,
		"database.user":     DefaultDatabaseUser,
		"database.password": "",
		"database.name":     DefaultDatabaseName,
	}
}
