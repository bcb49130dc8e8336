package domain

// DefaultPriority is the priority given to a case declaration that omits one
const DefaultPriority = 2

// Separator joins a class identifier and a member identifier in a qualified name
const Separator = "."

// TestClass is a test class as seen by the host's load mechanism
type TestClass interface {
	Name() string
}

// TestMethod is a test method as seen by the host's load mechanism.
// QualifiedName is "class-identifier" + Separator + "member-identifier".
type TestMethod interface {
	Name() string
	QualifiedName() string
}

// ClassRef is a discovered test class
type ClassRef struct {
	Ident string // Class identifier as written in source
	File  string // Path to the file declaring the class
	Line  int    // Line of the class statement
}

// Name returns the class identifier
func (c ClassRef) Name() string { return c.Ident }

// MethodRef is a discovered test method
type MethodRef struct {
	Class string // Identifier of the owning class
	Ident string // Method identifier as written in source
	File  string
	Line  int
}

// Name returns the method identifier
func (m MethodRef) Name() string { return m.Ident }

// QualifiedName returns "Class.Ident"
func (m MethodRef) QualifiedName() string { return m.Class + Separator + m.Ident }
