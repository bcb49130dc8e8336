package catalog

// Snapshot is a plain copy of a registry, for storage and display
type Snapshot struct {
	Suites  []SuiteEntry `json:"suites"`
	Pending []CaseEntry  `json:"pending,omitempty"`
}

// SuiteEntry is a suite in a Snapshot
type SuiteEntry struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	Area        string      `json:"area,omitempty"`
	Category    string      `json:"category,omitempty"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags,omitempty"`
	Cases       []CaseEntry `json:"cases"`
}

// CaseEntry is a case in a Snapshot
type CaseEntry struct {
	Key           string `json:"key"`
	Name          string `json:"name"`
	QualifiedName string `json:"qualified_name"`
	Description   string `json:"description"`
	Priority      *int   `json:"priority,omitempty"`
}

// Snapshot copies the registry into plain values. Suites and cases are sorted
// by key; pending cases by qualified name.
func (r *Registry) Snapshot() *Snapshot {
	snap := &Snapshot{}
	for _, s := range r.Suites() {
		snap.Suites = append(snap.Suites, suiteEntry(s))
	}
	for _, c := range r.Pending() {
		snap.Pending = append(snap.Pending, caseEntry(c))
	}
	return snap
}

func suiteEntry(s *Suite) SuiteEntry {
	entry := SuiteEntry{
		Key:         s.Key,
		Name:        s.Name,
		Area:        s.Area,
		Category:    s.Category,
		Description: s.Description,
		Cases:       make([]CaseEntry, 0, s.Len()),
	}
	if len(s.Tags) > 0 {
		entry.Tags = append([]string(nil), s.Tags...)
	}
	for _, c := range s.Cases() {
		entry.Cases = append(entry.Cases, caseEntry(c))
	}
	return entry
}

func caseEntry(c *Case) CaseEntry {
	entry := CaseEntry{
		Key:           c.Key,
		Name:          c.Name,
		QualifiedName: c.QualifiedName,
		Description:   c.Description,
	}
	if c.Priority != nil {
		p := *c.Priority
		entry.Priority = &p
	}
	return entry
}

// Stats counts the snapshot contents
func (s *Snapshot) Stats() Stats {
	st := Stats{Suites: len(s.Suites), Pending: len(s.Pending)}
	for _, suite := range s.Suites {
		st.Attached += len(suite.Cases)
	}
	st.Cases = st.Attached + st.Pending
	return st
}

// Suite finds a suite entry by key
func (s *Snapshot) Suite(key string) (SuiteEntry, bool) {
	for _, suite := range s.Suites {
		if suite.Key == key {
			return suite, true
		}
	}
	return SuiteEntry{}, false
}
