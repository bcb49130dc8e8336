package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"tcat/internal/catalog"
)

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	white  = color.New(color.FgWhite)
	faint  = color.New(color.Faint)
)

// Formatter formats and displays catalog output
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to w (stdout when nil)
func NewFormatter(w io.Writer) *Formatter {
	if w == nil {
		w = os.Stdout
	}
	return &Formatter{out: w}
}

// PrintCatalog prints suites as a tree, optionally with their cases.
func (f *Formatter) PrintCatalog(suites []catalog.SuiteEntry, showCases bool) {
	total := 0
	for _, s := range suites {
		total += len(s.Cases)
	}
	if len(suites) == 0 {
		yellow.Fprintln(f.out, "No test suites found")
		return
	}
	green.Fprintf(f.out, "Found %d test suite(s) with %d test case(s):\n\n", len(suites), total)

	for i, suite := range suites {
		isLastSuite := i == len(suites)-1
		connector := "├── "
		if isLastSuite {
			connector = "└── "
		}
		fmt.Fprintf(f.out, "%s%s%s %s\n", connector, cyan.Sprint(suite.Name), suiteLabels(suite), faint.Sprintf("(%d)", len(suite.Cases)))

		if !showCases {
			continue
		}

		indent := "│   "
		if isLastSuite {
			indent = "    "
		}
		if len(suite.Cases) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", indent, red.Sprint("(no test cases found)"))
		}
		for j, c := range suite.Cases {
			prefix := indent + "├── "
			if j == len(suite.Cases)-1 {
				prefix = indent + "└── "
			}
			fmt.Fprintf(f.out, "%s%s %s%s\n", prefix, yellow.Sprint(c.Name), faint.Sprint(c.QualifiedName), priorityLabel(c.Priority))
		}

		// Add spacing between suites (except for the last one)
		if !isLastSuite {
			fmt.Fprintln(f.out)
		}
	}
}

func suiteLabels(suite catalog.SuiteEntry) string {
	var parts []string
	if suite.Area != "" {
		parts = append(parts, suite.Area)
	}
	if suite.Category != "" {
		parts = append(parts, suite.Category)
	}
	label := ""
	if len(parts) > 0 {
		label = " " + white.Sprintf("[%s]", strings.Join(parts, "/"))
	}
	if len(suite.Tags) > 0 {
		label += " " + faint.Sprintf("#%s", strings.Join(suite.Tags, " #"))
	}
	return label
}

func priorityLabel(p *int) string {
	if p == nil {
		return ""
	}
	return " " + green.Sprintf("P%d", *p)
}

// PrintStats prints the catalog statistics table
func (f *Formatter) PrintStats(stats catalog.Stats) {
	fmt.Fprintln(f.out)
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                      Test Catalog Statistics                  ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	rows := []struct {
		label string
		value int
		c     *color.Color
	}{
		{"Test Suites", stats.Suites, white},
		{"Test Cases", stats.Cases, white},
		{"Attached Cases", stats.Attached, green},
		{"Pending Cases", stats.Pending, yellow},
	}

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-31s │ ", row.label)
		row.c.Fprintf(f.out, "%-27d", row.value)
		fmt.Fprintln(f.out, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├─────────────────────────────────┼─────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")
}

// PrintPending warns about cases whose suite was never registered
func (f *Formatter) PrintPending(pending []catalog.CaseEntry) {
	if len(pending) == 0 {
		return
	}
	fmt.Fprintln(f.out)
	yellow.Fprintf(f.out, "⚠ %d test case(s) without a registered suite:\n", len(pending))
	for _, c := range pending {
		fmt.Fprintf(f.out, "  - %s\n", yellow.Sprint(c.QualifiedName))
	}
}

// PrintCheckResult prints the outcome of a catalog check
func (f *Formatter) PrintCheckResult(err error) {
	fmt.Fprintln(f.out)
	if err == nil {
		green.Fprintln(f.out, "✓ Test catalog is consistent")
		return
	}
	red.Fprintf(f.out, "✗ %v\n", err)
	if key := catalog.ConflictKey(err); key != "" {
		red.Fprintf(f.out, "  conflicting key: %s\n", key)
	}
}
