package selection

import (
	"strings"

	"tcat/internal/catalog"
)

// Criteria narrows a catalog down to the suites and cases of interest.
// Zero values do not constrain.
type Criteria struct {
	Pattern     string   // Wildcard pattern for a suite key, case name or qualified name
	Area        string   // Exact area, ignoring case
	Category    string   // Exact category, ignoring case
	Tags        []string // The suite must carry all of them
	MaxPriority *int     // Cases above it are dropped; cases without a priority are kept
}

// IsEmpty reports whether c selects everything
func (c Criteria) IsEmpty() bool {
	return c.Pattern == "" && c.Area == "" && c.Category == "" && len(c.Tags) == 0 && c.MaxPriority == nil
}

// Select returns the suites matching c, each holding only its matching cases.
// A suite whose key or name matches the pattern keeps all of its cases;
// otherwise it is kept only for the cases that match on their own. The input
// is left untouched.
func Select(suites []catalog.SuiteEntry, c Criteria) []catalog.SuiteEntry {
	if c.IsEmpty() {
		return suites
	}

	var selected []catalog.SuiteEntry
	for _, suite := range suites {
		if !c.matchSuiteAttributes(suite) {
			continue
		}
		suiteMatched := Match(c.Pattern, suite.Key) || Match(c.Pattern, suite.Name)

		var cases []catalog.CaseEntry
		for _, ce := range suite.Cases {
			if !c.matchPriority(ce) {
				continue
			}
			if suiteMatched || Match(c.Pattern, ce.Name) || Match(c.Pattern, ce.QualifiedName) {
				cases = append(cases, ce)
			}
		}

		if len(cases) == 0 && !(suiteMatched && c.MaxPriority == nil) {
			continue
		}
		suite.Cases = cases
		selected = append(selected, suite)
	}
	return selected
}

func (c Criteria) matchSuiteAttributes(suite catalog.SuiteEntry) bool {
	if c.Area != "" && !strings.EqualFold(c.Area, suite.Area) {
		return false
	}
	if c.Category != "" && !strings.EqualFold(c.Category, suite.Category) {
		return false
	}
	for _, want := range c.Tags {
		if !hasTag(suite.Tags, want) {
			return false
		}
	}
	return true
}

func (c Criteria) matchPriority(ce catalog.CaseEntry) bool {
	if c.MaxPriority == nil || ce.Priority == nil {
		return true
	}
	return *ce.Priority <= *c.MaxPriority
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, want) {
			return true
		}
	}
	return false
}
