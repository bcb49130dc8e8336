package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"tcat/internal/catalog"
)

// pendingGroup names the pseudo-suite holding cases without a suite
const pendingGroup = "(pending)"

// Browser displays a catalog in an interactive TUI: suites on the left,
// the selected suite's cases in the middle, details on the right.
type Browser struct{}

// NewBrowser creates a new Browser
func NewBrowser() *Browser {
	return &Browser{}
}

// browserGroups returns the suites to list, with pending cases appended as a
// pseudo-suite.
func browserGroups(snapshot *catalog.Snapshot) []catalog.SuiteEntry {
	groups := append([]catalog.SuiteEntry(nil), snapshot.Suites...)
	if len(snapshot.Pending) > 0 {
		groups = append(groups, catalog.SuiteEntry{
			Name:  pendingGroup,
			Cases: snapshot.Pending,
		})
	}
	return groups
}

// View displays the snapshot until the user quits
func (b *Browser) View(snapshot *catalog.Snapshot) error {
	groups := browserGroups(snapshot)
	if len(groups) == 0 {
		color.Yellow("No test suites found")
		return nil
	}

	app := tview.NewApplication()

	suiteList := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	caseList := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for _, list := range []*tview.List{suiteList, caseList} {
		list.SetMainTextColor(tview.Styles.PrimaryTextColor).
			SetSelectedTextColor(tcell.ColorWhite).
			SetSelectedBackgroundColor(tcell.ColorDarkCyan)
	}

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	for _, g := range groups {
		suiteList.AddItem(suiteItemText(g), "", 0, nil)
	}

	showSuite := func(index int) {
		if index < 0 || index >= len(groups) {
			return
		}
		g := groups[index]
		caseList.Clear()
		for _, c := range g.Cases {
			caseList.AddItem(caseItemText(c), "", 0, nil)
		}
		detailsView.SetText(formatSuiteDetails(g))
	}
	showCase := func(index int) {
		g := groups[suiteList.GetCurrentItem()]
		if index < 0 || index >= len(g.Cases) {
			return
		}
		detailsView.SetText(formatCaseDetails(g.Cases[index]))
	}

	suiteList.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		showSuite(index)
	})
	caseList.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		showCase(index)
	})

	suiteList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			if caseList.GetItemCount() > 0 {
				app.SetFocus(caseList)
				showCase(caseList.GetCurrentItem())
			}
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' {
				app.Stop()
				return nil
			}
		}
		return event
	})
	caseList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(suiteList)
			showSuite(suiteList.GetCurrentItem())
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	stats := snapshot.Stats()
	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText(fmt.Sprintf(" Test Catalog (%d suites, %d cases, %d pending) | ↑↓ navigate, → cases, ← suites, [yellow]q[white] to exit ",
			stats.Suites, stats.Cases, stats.Pending))

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	columns := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(suiteList, 0, 1, true).
		AddItem(caseList, 0, 1, false).
		AddItem(detailsContainer, 0, 2, false)

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(columns, 0, 1, true)

	showSuite(0)

	if err := app.SetRoot(mainLayout, true).SetFocus(suiteList).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func suiteItemText(s catalog.SuiteEntry) string {
	if s.Name == pendingGroup {
		return fmt.Sprintf("[yellow]%s[white] (%d)", s.Name, len(s.Cases))
	}
	return fmt.Sprintf("%s [gray](%d)[white]", tview.Escape(s.Name), len(s.Cases))
}

func caseItemText(c catalog.CaseEntry) string {
	if c.Priority == nil {
		return tview.Escape(c.Name)
	}
	return fmt.Sprintf("[green]P%d[white] %s", *c.Priority, tview.Escape(c.Name))
}

// formatSuiteDetails formats a suite for display using tview color tags
func formatSuiteDetails(s catalog.SuiteEntry) string {
	var b strings.Builder
	if s.Name == pendingGroup {
		fmt.Fprintf(&b, "[yellow]Cases without a registered suite[white]\n\n")
		fmt.Fprintf(&b, "%d case(s) name a class that never registered as a suite.\n", len(s.Cases))
		return b.String()
	}

	fmt.Fprintf(&b, "[cyan]Suite: %s[white]\n", tview.Escape(s.Name))
	fmt.Fprintf(&b, "[gray]key: %s[white]\n\n", tview.Escape(s.Key))
	if s.Area != "" {
		fmt.Fprintf(&b, "[yellow]Area:[white] %s\n", tview.Escape(s.Area))
	}
	if s.Category != "" {
		fmt.Fprintf(&b, "[yellow]Category:[white] %s\n", tview.Escape(s.Category))
	}
	if len(s.Tags) > 0 {
		fmt.Fprintf(&b, "[yellow]Tags:[white] %s\n", tview.Escape(strings.Join(s.Tags, ", ")))
	}
	fmt.Fprintf(&b, "[yellow]Cases:[white] %d\n", len(s.Cases))
	if s.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", tview.Escape(s.Description))
	}
	return b.String()
}

// formatCaseDetails formats a case for display using tview color tags
func formatCaseDetails(c catalog.CaseEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[cyan]Case: %s[white]\n", tview.Escape(c.Name))
	fmt.Fprintf(&b, "[gray]%s[white]\n\n", tview.Escape(c.QualifiedName))
	if c.Priority != nil {
		fmt.Fprintf(&b, "[yellow]Priority:[white] %d\n", *c.Priority)
	} else {
		fmt.Fprintf(&b, "[yellow]Priority:[white] none\n")
	}
	if c.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", tview.Escape(c.Description))
	}
	return b.String()
}
