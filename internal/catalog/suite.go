package catalog

import (
	"sort"
	"strings"
	"sync"

	"tcat/internal/domain"
)

// Suite groups the cases of one test class. The exported fields are fixed at
// construction; the case set is guarded and may be read while the registry
// is still attaching cases.
type Suite struct {
	Name        string // Explicit name, or the class identifier
	Key         string // Lowercased Name, unique in the registry
	Area        string
	Category    string
	Description string
	Tags        []string
	Class       domain.TestClass

	mu    sync.RWMutex
	cases map[string]*Case
}

// NewSuite builds an empty suite for class. An empty meta.Name falls back to
// the class identifier.
func NewSuite(class domain.TestClass, meta domain.SuiteMeta) *Suite {
	name := meta.Name
	if name == "" {
		name = class.Name()
	}
	tags := make([]string, len(meta.Tags))
	copy(tags, meta.Tags)
	return &Suite{
		Name:        name,
		Key:         strings.ToLower(name),
		Area:        meta.Area,
		Category:    meta.Category,
		Description: meta.Description,
		Tags:        tags,
		Class:       class,
		cases:       make(map[string]*Case),
	}
}

// addCase inserts c under its key
func (s *Suite) addCase(c *Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cases[c.Key]; exists {
		return &DuplicateCaseError{Key: c.Key, Suite: s.Key}
	}
	s.cases[c.Key] = c
	return nil
}

// Case looks up a case by key (case-insensitive)
func (s *Suite) Case(key string) (*Case, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[strings.ToLower(key)]
	return c, ok
}

// Cases returns the suite's cases sorted by key
func (s *Suite) Cases() []*Case {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cases := make([]*Case, 0, len(s.cases))
	for _, c := range s.cases {
		cases = append(cases, c)
	}
	sort.Slice(cases, func(i, j int) bool { return cases[i].Key < cases[j].Key })
	return cases
}

// CaseKeys returns the sorted case keys
func (s *Suite) CaseKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.cases))
	for k := range s.cases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of attached cases
func (s *Suite) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cases)
}

// HasTag reports whether the suite carries tag (case-insensitive)
func (s *Suite) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
