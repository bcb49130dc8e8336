package catalog

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcat/internal/domain"
)

func newTestRegistry(opts ...Option) *Registry {
	return New(append([]Option{WithLogger(zerolog.Nop())}, opts...)...)
}

func class(name string) domain.ClassRef { return domain.ClassRef{Ident: name} }

func method(className, name string) domain.MethodRef {
	return domain.MethodRef{Class: className, Ident: name}
}

// registration is one call on either stream
type registration struct {
	label string
	apply func(r *Registry) error
}

func addClass(name string, meta domain.SuiteMeta) registration {
	return registration{
		label: "class " + name,
		apply: func(r *Registry) error { return r.AddClass(class(name), meta) },
	}
}

func addMethod(className, name string, meta domain.CaseMeta) registration {
	return registration{
		label: "method " + className + "." + name,
		apply: func(r *Registry) error { return r.AddMethod(method(className, name), meta) },
	}
}

func permutations(regs []registration) [][]registration {
	if len(regs) <= 1 {
		return [][]registration{append([]registration(nil), regs...)}
	}
	var out [][]registration
	for i := range regs {
		rest := make([]registration, 0, len(regs)-1)
		rest = append(rest, regs[:i]...)
		rest = append(rest, regs[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]registration{regs[i]}, p...))
		}
	}
	return out
}

func TestRegistry_MethodBeforeClass(t *testing.T) {
	r := newTestRegistry()

	require.NoError(t, r.AddMethod(method("CpuSuite", "verify_cpu_online_offline"), domain.CaseMeta{
		Description: "desc",
		Priority:    domain.Priority(3),
	}))

	c, ok := r.Case("cpusuite.verify_cpu_online_offline")
	require.True(t, ok)
	assert.False(t, c.Attached())
	assert.Len(t, r.Pending(), 1)

	require.NoError(t, r.AddClass(class("CpuSuite"), domain.SuiteMeta{
		Area:        "cpu",
		Category:    "functional",
		Description: "cpu related tests",
		Tags:        []string{},
	}))

	suite, ok := r.Suite("cpusuite")
	require.True(t, ok)
	fromSuite, ok := suite.Case("verify_cpu_online_offline")
	require.True(t, ok)
	assert.Same(t, c, fromSuite)
	assert.Same(t, suite, c.Suite())
	require.NotNil(t, c.Priority)
	assert.Equal(t, 3, *c.Priority)
	assert.Empty(t, r.Pending())
}

func TestRegistry_MethodAfterClass(t *testing.T) {
	r := newTestRegistry()

	require.NoError(t, r.AddClass(class("CpuSuite"), domain.SuiteMeta{Area: "cpu"}))
	require.NoError(t, r.AddMethod(method("CpuSuite", "verify_cpu_online_offline"), domain.CaseMeta{Description: "desc"}))

	suite, ok := r.Suite("CPUSUITE")
	require.True(t, ok)
	c, ok := r.Case("CpuSuite.Verify_Cpu_Online_Offline")
	require.True(t, ok)
	fromSuite, ok := suite.Case("verify_cpu_online_offline")
	require.True(t, ok)
	assert.Same(t, c, fromSuite)
	assert.Same(t, suite, c.Suite())
	assert.Nil(t, c.Priority)
}

func TestRegistry_Confluence(t *testing.T) {
	regs := []registration{
		addClass("CpuSuite", domain.SuiteMeta{Area: "cpu", Category: "functional", Tags: []string{"hotplug"}}),
		addMethod("CpuSuite", "verify_cpu_online_offline", domain.CaseMeta{Priority: domain.Priority(3)}),
		addMethod("CpuSuite", "verify_l3_cache", domain.CaseMeta{Name: "L3Cache", Description: "cache"}),
		addClass("NetworkSettings", domain.SuiteMeta{Area: "network"}),
		addMethod("NetworkSettings", "validate_ringbuffer", domain.CaseMeta{Priority: domain.Priority(1)}),
		addMethod("Orphan", "never_attached", domain.CaseMeta{}),
	}

	var want *Snapshot
	for _, order := range permutations(regs) {
		r := newTestRegistry()
		for _, reg := range order {
			require.NoError(t, reg.apply(r), reg.label)
		}
		got := r.Snapshot()
		if want == nil {
			want = got
			continue
		}
		require.Equal(t, want, got, "order %v", labels(order))
	}

	require.NotNil(t, want)
	assert.Len(t, want.Suites, 2)
	cpu, ok := want.Suite("cpusuite")
	require.True(t, ok)
	assert.Equal(t, []string{"l3cache", "verify_cpu_online_offline"}, caseKeys(cpu))
	require.Len(t, want.Pending, 1)
	assert.Equal(t, "orphan.never_attached", want.Pending[0].QualifiedName)
}

func labels(regs []registration) []string {
	out := make([]string, len(regs))
	for i, r := range regs {
		out[i] = r.label
	}
	return out
}

func caseKeys(s SuiteEntry) []string {
	keys := make([]string, len(s.Cases))
	for i, c := range s.Cases {
		keys[i] = c.Key
	}
	return keys
}

func TestRegistry_DuplicateSuite(t *testing.T) {
	r := newTestRegistry()

	require.NoError(t, r.AddClass(class("CpuSuite"), domain.SuiteMeta{Area: "cpu"}))
	require.NoError(t, r.AddMethod(method("CpuSuite", "a"), domain.CaseMeta{}))

	err := r.AddClass(class("CPUSUITE"), domain.SuiteMeta{Area: "other"})
	require.Error(t, err)

	var dup *DuplicateSuiteError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "cpusuite", dup.Key)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "cpusuite")

	assert.Len(t, r.Suites(), 1)
	suite, _ := r.Suite("cpusuite")
	assert.Equal(t, "cpu", suite.Area)
	assert.Equal(t, 1, suite.Len())
}

func TestRegistry_DuplicateSuiteByExplicitName(t *testing.T) {
	r := newTestRegistry()

	require.NoError(t, r.AddClass(class("First"), domain.SuiteMeta{Name: "Shared"}))
	err := r.AddClass(class("Second"), domain.SuiteMeta{Name: "shared"})

	var dup *DuplicateSuiteError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "shared", dup.Key)
	assert.Len(t, r.Suites(), 1)
}

func TestRegistry_DuplicateQualifiedName(t *testing.T) {
	r := newTestRegistry()

	require.NoError(t, r.AddMethod(method("CpuSuite", "verify"), domain.CaseMeta{Description: "first"}))
	err := r.AddMethod(method("cpusuite", "VERIFY"), domain.CaseMeta{Description: "second"})

	var dup *DuplicateCaseError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "cpusuite.verify", dup.Key)
	assert.Empty(t, dup.Suite)
	assert.ErrorIs(t, err, ErrConfiguration)

	c, ok := r.Case("cpusuite.verify")
	require.True(t, ok)
	assert.Equal(t, "first", c.Description)
	assert.Len(t, r.Cases(), 1)
}

func TestRegistry_DuplicateCaseKeyInSuite(t *testing.T) {
	tests := []struct {
		name  string
		order []registration
	}{
		{
			name: "class first",
			order: []registration{
				addClass("CpuSuite", domain.SuiteMeta{}),
				addMethod("CpuSuite", "verify", domain.CaseMeta{}),
				addMethod("CpuSuite", "other", domain.CaseMeta{Name: "Verify"}),
			},
		},
		{
			name: "class last",
			order: []registration{
				addMethod("CpuSuite", "verify", domain.CaseMeta{}),
				addMethod("CpuSuite", "other", domain.CaseMeta{Name: "Verify"}),
				addClass("CpuSuite", domain.SuiteMeta{}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry()
			var err error
			for _, reg := range tt.order {
				if err = reg.apply(r); err != nil {
					break
				}
			}

			var dup *DuplicateCaseError
			require.ErrorAs(t, err, &dup)
			assert.Equal(t, "verify", dup.Key)
			assert.Equal(t, "cpusuite", dup.Suite)
			assert.Contains(t, err.Error(), `"verify"`)
			assert.Equal(t, "verify", ConflictKey(err))
		})
	}
}

func TestRegistry_DefaultCaseKeyIsLowercasedIdentifier(t *testing.T) {
	r := newTestRegistry()

	require.NoError(t, r.AddMethod(method("Suite", "Verify_Something"), domain.CaseMeta{}))

	c, ok := r.Case("suite.verify_something")
	require.True(t, ok)
	assert.Equal(t, "Verify_Something", c.Name)
	assert.Equal(t, "verify_something", c.Key)
	assert.Equal(t, "suite", c.SuiteKey())
}

func TestRegistry_ExplicitSuiteNameChangesPrefix(t *testing.T) {
	r := newTestRegistry()

	require.NoError(t, r.AddMethod(method("CpuSuite", "verify"), domain.CaseMeta{}))
	require.NoError(t, r.AddClass(class("CpuSuite"), domain.SuiteMeta{Name: "cpu"}))

	suite, ok := r.Suite("cpu")
	require.True(t, ok)
	assert.Equal(t, 0, suite.Len())
	assert.Len(t, r.Pending(), 1)
}

func TestRegistry_Seal(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.AddClass(class("A"), domain.SuiteMeta{}))

	assert.True(t, r.Seal())
	assert.True(t, r.Sealed())
	assert.False(t, r.Seal())

	assert.ErrorIs(t, r.AddClass(class("B"), domain.SuiteMeta{}), ErrSealed)
	assert.ErrorIs(t, r.AddMethod(method("A", "x"), domain.CaseMeta{}), ErrSealed)
	assert.False(t, IsConfigurationError(ErrSealed))
	assert.Len(t, r.Suites(), 1)
}

func TestRegistry_AttachTwicePanics(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.AddClass(class("A"), domain.SuiteMeta{}))
	require.NoError(t, r.AddMethod(method("A", "x"), domain.CaseMeta{}))

	suite, _ := r.Suite("a")
	c, _ := r.Case("a.x")
	assert.Panics(t, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		_ = r.attachLocked(suite, c)
	})
}

func TestRegistry_ConcurrentRegistration(t *testing.T) {
	r := newTestRegistry()

	const suites = 8
	const casesPerSuite = 16

	var wg sync.WaitGroup
	for s := 0; s < suites; s++ {
		className := fmt.Sprintf("Suite%d", s)
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.AddClass(class(className), domain.SuiteMeta{}))
		}()
		for c := 0; c < casesPerSuite; c++ {
			methodName := fmt.Sprintf("case_%d", c)
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, r.AddMethod(method(className, methodName), domain.CaseMeta{}))
			}()
		}
	}
	wg.Wait()
	r.Seal()

	stats := r.Stats()
	assert.Equal(t, Stats{Suites: suites, Cases: suites * casesPerSuite, Attached: suites * casesPerSuite}, stats)
	for _, s := range r.Suites() {
		assert.Equal(t, casesPerSuite, s.Len(), s.Key)
		for _, c := range s.Cases() {
			assert.Same(t, s, c.Suite())
		}
	}
}

func TestRegistry_ReadWhileRegistering(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.AddClass(class("CpuSuite"), domain.SuiteMeta{}))
	suite, ok := r.Suite("cpusuite")
	require.True(t, ok)

	const cases = 200
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < cases; i++ {
			assert.NoError(t, r.AddMethod(method("CpuSuite", fmt.Sprintf("verify_%d", i)), domain.CaseMeta{}))
		}
	}()

	for reading := true; reading; {
		select {
		case <-done:
			reading = false
		default:
		}
		for _, c := range suite.Cases() {
			assert.Same(t, suite, c.Suite())
		}
		_ = suite.CaseKeys()
		_, _ = suite.Case("verify_0")
		assert.LessOrEqual(t, suite.Len(), cases)
	}
	assert.Equal(t, cases, suite.Len())
}

func TestRegistry_SealDuringRegistration(t *testing.T) {
	r := newTestRegistry()

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted, refused := 0, 0
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				err := r.AddMethod(method(fmt.Sprintf("Suite%d", w), fmt.Sprintf("case_%d", i)), domain.CaseMeta{})
				mu.Lock()
				if errors.Is(err, ErrSealed) {
					refused++
				} else {
					assert.NoError(t, err)
					accepted++
				}
				mu.Unlock()
			}
		}()
	}

	r.Seal()
	sealedStats := r.Stats()
	wg.Wait()

	assert.Equal(t, sealedStats, r.Stats())
	assert.Equal(t, accepted, sealedStats.Cases)
	assert.Equal(t, workers*50, accepted+refused)
}

func TestRegistry_AddClassStopsAtFirstCollision(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.AddMethod(method("CpuSuite", "a_first"), domain.CaseMeta{Name: "verify"}))
	require.NoError(t, r.AddMethod(method("CpuSuite", "b_second"), domain.CaseMeta{Name: "Verify"}))
	require.NoError(t, r.AddMethod(method("CpuSuite", "c_third"), domain.CaseMeta{}))

	err := r.AddClass(class("CpuSuite"), domain.SuiteMeta{})
	var dup *DuplicateCaseError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "verify", dup.Key)

	suite, ok := r.Suite("cpusuite")
	require.True(t, ok)
	assert.Equal(t, []string{"verify"}, suite.CaseKeys())

	pending := r.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "cpusuite.b_second", pending[0].QualifiedName)
	assert.Equal(t, "cpusuite.c_third", pending[1].QualifiedName)
}

func TestRegistry_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := newTestRegistry(WithMetrics(m))

	require.NoError(t, r.AddMethod(method("A", "x"), domain.CaseMeta{}))
	require.NoError(t, r.AddMethod(method("A", "y"), domain.CaseMeta{}))
	require.NoError(t, r.AddClass(class("A"), domain.SuiteMeta{}))
	require.NoError(t, r.AddMethod(method("B", "z"), domain.CaseMeta{}))
	require.Error(t, r.AddClass(class("a"), domain.SuiteMeta{}))
	require.Error(t, r.AddMethod(method("A", "X"), domain.CaseMeta{}))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SuitesRegistered))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.CasesRegistered))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CasesAttached))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Rejected.WithLabelValues("suite")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Rejected.WithLabelValues("case")))
}

func TestRegistry_SuiteTagsAreCopied(t *testing.T) {
	r := newTestRegistry()
	tags := []string{"Smoke", "cpu"}
	require.NoError(t, r.AddClass(class("A"), domain.SuiteMeta{Tags: tags}))
	tags[0] = "changed"

	suite, _ := r.Suite("a")
	assert.Equal(t, []string{"Smoke", "cpu"}, suite.Tags)
	assert.True(t, suite.HasTag("smoke"))
	assert.False(t, suite.HasTag("changed"))
}
