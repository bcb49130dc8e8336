package discovery

import (
	"path/filepath"

	"tcat/internal/selection"
)

// Filter filters source files by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the files whose base name matches pattern.
// Supports patterns like "*suite.py" or "*network*".
func (f *Filter) FilterByName(files []string, pattern string) []string {
	if pattern == "" {
		return files
	}

	var filtered []string
	for _, file := range files {
		if selection.Match(pattern, filepath.Base(file)) {
			filtered = append(filtered, file)
		}
	}
	return filtered
}
