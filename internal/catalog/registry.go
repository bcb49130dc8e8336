package catalog

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"tcat/internal/domain"
	"tcat/internal/logging"
)

// Registry is the catalog of every registered suite and case.
// Mutations are serialized behind one mutex because suites and cases
// reference each other across the two maps.
type Registry struct {
	mu     sync.Mutex
	suites map[string]*Suite // suite key -> suite
	cases  map[string]*Case  // qualified name -> case
	sealed atomic.Bool

	log     zerolog.Logger
	metrics *Metrics
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger replaces the default "catalog" component logger
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) { r.log = logger }
}

// WithMetrics records registrations in m
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// New creates an empty, unsealed registry
func New(opts ...Option) *Registry {
	r := &Registry{
		suites: make(map[string]*Suite),
		cases:  make(map[string]*Case),
		log:    logging.GetLogger("catalog"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddClass registers a test class as a suite and attaches every case already
// registered under "<key>.", in qualified-name order.
//
// Attaching stops at the first case whose key is already taken in the suite.
// The suite then stays registered with the cases attached so far, and the
// remaining cases stay pending.
func (r *Registry) AddClass(class domain.TestClass, meta domain.SuiteMeta) error {
	suite := NewSuite(class, meta)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return ErrSealed
	}

	if _, exists := r.suites[suite.Key]; exists {
		r.metrics.rejected("suite")
		return &DuplicateSuiteError{Key: suite.Key}
	}
	r.suites[suite.Key] = suite
	r.metrics.suiteRegistered()

	// Methods loaded ahead of their class are waiting here.
	prefix := suite.Key + domain.Separator
	for _, name := range r.caseNamesLocked() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := r.attachLocked(suite, r.cases[name]); err != nil {
			return err
		}
	}

	r.log.Info().
		Str("suite", suite.Key).
		Strs("cases", suite.CaseKeys()).
		Msg("registered test suite")
	return nil
}

// AddMethod registers a test method as a case. The case is attached right
// away when its suite is known and stays pending otherwise.
func (r *Registry) AddMethod(method domain.TestMethod, meta domain.CaseMeta) error {
	c := NewCase(method, meta)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return ErrSealed
	}

	if _, exists := r.cases[c.QualifiedName]; exists {
		r.metrics.rejected("case")
		return &DuplicateCaseError{Key: c.QualifiedName}
	}
	r.cases[c.QualifiedName] = c
	r.metrics.caseRegistered()

	suite, ok := r.suites[c.SuiteKey()]
	if !ok {
		r.log.Debug().Str("case", c.QualifiedName).Msg("case pending until its suite is registered")
		return nil
	}
	r.log.Debug().Str("case", c.Name).Str("suite", suite.Name).Msg("add case to suite")
	return r.attachLocked(suite, c)
}

// attachLocked links c into suite. The caller holds r.mu.
func (r *Registry) attachLocked(suite *Suite, c *Case) error {
	if owner := c.Suite(); owner != nil {
		panic("catalog: case " + c.QualifiedName + " is already attached to suite " + owner.Key)
	}
	if err := suite.addCase(c); err != nil {
		r.metrics.rejected("case_in_suite")
		return err
	}
	c.suite.Store(suite)
	r.metrics.caseAttached()
	return nil
}

// caseNamesLocked returns registered qualified names in sorted order
func (r *Registry) caseNamesLocked() []string {
	names := make([]string, 0, len(r.cases))
	for name := range r.cases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Seal ends the discovery phase. It waits for a registration in progress,
// is idempotent and returns true if this call changed the state.
func (r *Registry) Seal() bool {
	r.mu.Lock()
	changed := !r.sealed.Swap(true)
	r.mu.Unlock()
	if changed {
		stats := r.Stats()
		r.log.Debug().
			Int("suites", stats.Suites).
			Int("cases", stats.Cases).
			Int("pending", stats.Pending).
			Msg("registry sealed")
	}
	return changed
}

// Sealed reports whether further registrations are refused
func (r *Registry) Sealed() bool { return r.sealed.Load() }

// Suite returns the suite registered under key (case-insensitive)
func (r *Registry) Suite(key string) (*Suite, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suites[strings.ToLower(key)]
	return s, ok
}

// Suites returns all suites sorted by key
func (r *Registry) Suites() []*Suite {
	r.mu.Lock()
	defer r.mu.Unlock()
	suites := make([]*Suite, 0, len(r.suites))
	for _, s := range r.suites {
		suites = append(suites, s)
	}
	sort.Slice(suites, func(i, j int) bool { return suites[i].Key < suites[j].Key })
	return suites
}

// Case returns the case registered under a qualified name (case-insensitive)
func (r *Registry) Case(qualifiedName string) (*Case, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[strings.ToLower(qualifiedName)]
	return c, ok
}

// Cases returns every registered case, attached or not, sorted by qualified name
func (r *Registry) Cases() []*Case {
	r.mu.Lock()
	defer r.mu.Unlock()
	cases := make([]*Case, 0, len(r.cases))
	for _, name := range r.caseNamesLocked() {
		cases = append(cases, r.cases[name])
	}
	return cases
}

// Pending returns the cases whose suite has not been registered
func (r *Registry) Pending() []*Case {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*Case
	for _, name := range r.caseNamesLocked() {
		if c := r.cases[name]; !c.Attached() {
			pending = append(pending, c)
		}
	}
	return pending
}

// Stats summarizes the registry contents
type Stats struct {
	Suites   int `json:"suites"`
	Cases    int `json:"cases"`
	Attached int `json:"attached"`
	Pending  int `json:"pending"`
}

// Stats counts suites and cases
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := Stats{Suites: len(r.suites), Cases: len(r.cases)}
	for _, c := range r.cases {
		if c.Attached() {
			st.Attached++
		}
	}
	st.Pending = st.Cases - st.Attached
	return st
}
