package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tcat/internal/catalog"
)

// ExportMeta describes an exported catalog
type ExportMeta struct {
	Suites    int    `json:"suites"`
	Cases     int    `json:"cases"`
	Pending   int    `json:"pending"`
	Timestamp string `json:"timestamp"`
}

// Export is the JSON document written by JSONStorage
type Export struct {
	Meta    ExportMeta           `json:"meta"`
	Suites  []catalog.SuiteEntry `json:"suites"`
	Pending []catalog.CaseEntry  `json:"pending,omitempty"`
}

// Save writes the snapshot to the configured JSON output file.
func (s *JSONStorage) Save(snapshot *catalog.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is required")
	}
	stats := snapshot.Stats()
	output := Export{
		Meta: ExportMeta{
			Suites:    stats.Suites,
			Cases:     stats.Cases,
			Pending:   stats.Pending,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Suites:  snapshot.Suites,
		Pending: snapshot.Pending,
	}
	if output.Suites == nil {
		output.Suites = []catalog.SuiteEntry{}
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	path := s.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// Load reads a snapshot from the configured JSON output file.
func (s *JSONStorage) Load() (*catalog.Snapshot, error) {
	return LoadFile(s.Path())
}

// LoadFile reads a snapshot exported to path.
func LoadFile(path string) (*catalog.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var output Export
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &catalog.Snapshot{Suites: output.Suites, Pending: output.Pending}, nil
}
