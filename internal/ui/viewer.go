package ui

import "tcat/internal/catalog"

// Viewer displays a catalog snapshot in an interactive TUI
type Viewer interface {
	View(snapshot *catalog.Snapshot) error
}
