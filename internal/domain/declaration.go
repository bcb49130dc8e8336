package domain

import "fmt"

// DeclarationKind tells which registration stream a declaration belongs to
type DeclarationKind int

const (
	// MethodDeclaration registers a test method
	MethodDeclaration DeclarationKind = iota
	// ClassDeclaration registers a test class
	ClassDeclaration
)

func (k DeclarationKind) String() string {
	switch k {
	case MethodDeclaration:
		return "method"
	case ClassDeclaration:
		return "class"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// SuiteMeta is the metadata attached to a test class declaration
type SuiteMeta struct {
	Name        string   `json:"name,omitempty" yaml:"name"`
	Area        string   `json:"area,omitempty" yaml:"area"`
	Category    string   `json:"category,omitempty" yaml:"category"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags,omitempty" yaml:"tags"`
}

// CaseMeta is the metadata attached to a test method declaration
type CaseMeta struct {
	Name        string `json:"name,omitempty" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Priority    *int   `json:"priority,omitempty" yaml:"priority"`
}

// Declaration is one registration call discovered in a source file
type Declaration struct {
	Kind   DeclarationKind
	Class  ClassRef  // Set for ClassDeclaration
	Method MethodRef // Set for MethodDeclaration
	Suite  SuiteMeta
	Case   CaseMeta
}

// Source returns "file:line" of the declaration
func (d Declaration) Source() string {
	if d.Kind == ClassDeclaration {
		return fmt.Sprintf("%s:%d", d.Class.File, d.Class.Line)
	}
	return fmt.Sprintf("%s:%d", d.Method.File, d.Method.Line)
}

// Priority returns a pointer to p, for building CaseMeta literals
func Priority(p int) *int {
	return &p
}
