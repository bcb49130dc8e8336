package catalog

import (
	"strings"
	"sync/atomic"

	"tcat/internal/domain"
)

// Case is one test case: a test method plus its declared metadata.
// All fields are fixed at construction; the owning suite is assigned once,
// when the case is attached.
type Case struct {
	Name          string // Explicit name, or the method identifier
	QualifiedName string // Lowercased "class.method", unique in the registry
	Key           string // Lowercased Name, unique in the owning suite
	Description   string
	Priority      *int // Optional; meaning belongs to the execution engine
	Method        domain.TestMethod

	suite atomic.Pointer[Suite]
}

// NewCase builds a case for method. An empty meta.Name falls back to the
// method's own identifier.
func NewCase(method domain.TestMethod, meta domain.CaseMeta) *Case {
	name := meta.Name
	if name == "" {
		name = method.Name()
	}
	return &Case{
		Name:          name,
		QualifiedName: strings.ToLower(method.QualifiedName()),
		Key:           strings.ToLower(name),
		Description:   meta.Description,
		Priority:      meta.Priority,
		Method:        method,
	}
}

// Suite returns the owning suite, or nil while the case is pending
func (c *Case) Suite() *Suite { return c.suite.Load() }

// Attached reports whether the case has been reconciled with its suite
func (c *Case) Attached() bool { return c.suite.Load() != nil }

// SuiteKey returns the key of the suite that owns this case: the first
// segment of the qualified name.
func (c *Case) SuiteKey() string {
	key, _, _ := strings.Cut(c.QualifiedName, domain.Separator)
	return key
}
