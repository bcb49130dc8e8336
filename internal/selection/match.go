package selection

import (
	"path/filepath"
	"strings"
)

// Match reports whether name matches pattern, ignoring case.
//
// A pattern with wildcards is tried as a glob first; if that fails, every
// non-empty fragment between '*' must appear in name ("*cpu*" matches
// "cpusuite.verify"). A pattern without wildcards matches as a substring.
func Match(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	pattern = strings.ToLower(pattern)
	name = strings.ToLower(name)

	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}
	if !strings.Contains(pattern, "*") {
		return false
	}

	matchedAny := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		if !strings.Contains(name, part) {
			return false
		}
		matchedAny = true
	}
	return matchedAny
}
