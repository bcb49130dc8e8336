package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source file kinds recognized by the scanner
const (
	PythonSuffix        = ".py"
	ManifestSuffix      = ".suite.yaml"
	ManifestSuffixShort = ".suite.yml"
)

// Scanner scans for suite sources in a directory
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// IsManifest reports whether path names a YAML suite manifest
func IsManifest(path string) bool {
	return strings.HasSuffix(path, ManifestSuffix) || strings.HasSuffix(path, ManifestSuffixShort)
}

// IsPythonSource reports whether path names a Python suite module
func IsPythonSource(path string) bool {
	return strings.HasSuffix(path, PythonSuffix)
}

// Scan finds all suite sources under root, in lexical order
func (s *Scanner) Scan(root string) ([]string, error) {
	var sources []string

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("source path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if IsPythonSource(d.Name()) || IsManifest(d.Name()) {
			sources = append(sources, path)
		}
		return nil
	})

	return sources, err
}
