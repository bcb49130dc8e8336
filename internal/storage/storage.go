package storage

import (
	"tcat/internal/catalog"
	"tcat/internal/config"
)

// Storage persists and loads catalog snapshots (e.g. for the browser).
type Storage interface {
	Save(snapshot *catalog.Snapshot) error
	Load() (*catalog.Snapshot, error)
}

// JSONStorage stores snapshots in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

// Path returns the file the storage reads and writes
func (s *JSONStorage) Path() string {
	return s.cfg.GetOutputPath()
}
