package discovery

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"tcat/internal/domain"
)

// ManifestError reports a manifest that does not match the schema
type ManifestError struct {
	Path   string
	Issues []ValidationIssue
}

// Error implements the error interface
func (e *ManifestError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return fmt.Sprintf("invalid manifest %s: %s", e.Path, strings.Join(msgs, "; "))
}

// ManifestParser reads suite declarations from YAML manifests.
//
//	suites:
//	  - class: CPUSuite
//	    area: cpu
//	    cases:
//	      - method: verify_cpu_online_offline
//	        priority: 3
//	cases:
//	  - class: NetworkSettings
//	    method: validate_ringbuffer_settings_change
type ManifestParser struct{}

// NewManifestParser creates a new ManifestParser
func NewManifestParser() *ManifestParser {
	return &ManifestParser{}
}

type manifestSuite struct {
	Class       string      `yaml:"class"`
	Name        string      `yaml:"name"`
	Area        string      `yaml:"area"`
	Category    string      `yaml:"category"`
	Description string      `yaml:"description"`
	Tags        []string    `yaml:"tags"`
	Cases       []yaml.Node `yaml:"cases"`
}

type manifestCase struct {
	Class       string    `yaml:"class"`
	Method      string    `yaml:"method"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Priority    yaml.Node `yaml:"priority"`
}

// ParseFile reads path and returns its declarations
func (p *ManifestParser) ParseFile(path string) ([]domain.Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}
	return p.Parse(path, data)
}

// Parse returns the declarations of a manifest in document order: each suite
// followed by its cases, then the top-level cases.
func (p *ManifestParser) Parse(path string, data []byte) ([]domain.Declaration, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	result, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !result.Valid {
		return nil, &ManifestError{Path: path, Issues: result.Issues}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]

	var decls []domain.Declaration
	for _, item := range sequence(root, "suites") {
		var s manifestSuite
		if err := item.Decode(&s); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, item.Line, err)
		}
		decls = append(decls, domain.Declaration{
			Kind:  domain.ClassDeclaration,
			Class: domain.ClassRef{Ident: s.Class, File: path, Line: item.Line},
			Suite: domain.SuiteMeta{
				Name:        s.Name,
				Area:        s.Area,
				Category:    s.Category,
				Description: s.Description,
				Tags:        s.Tags,
			},
		})
		for i := range s.Cases {
			decl, err := caseDeclaration(path, s.Class, &s.Cases[i])
			if err != nil {
				return nil, err
			}
			decls = append(decls, decl)
		}
	}

	for _, item := range sequence(root, "cases") {
		decl, err := caseDeclaration(path, "", item)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

func caseDeclaration(path, className string, node *yaml.Node) (domain.Declaration, error) {
	var c manifestCase
	if err := node.Decode(&c); err != nil {
		return domain.Declaration{}, fmt.Errorf("%s:%d: %w", path, node.Line, err)
	}
	if className == "" {
		className = c.Class
	}

	meta := domain.CaseMeta{Name: c.Name, Description: c.Description}
	switch {
	case c.Priority.Kind == 0:
		meta.Priority = domain.Priority(domain.DefaultPriority)
	case c.Priority.ShortTag() == "!!null":
	default:
		var v int
		if err := c.Priority.Decode(&v); err != nil {
			return domain.Declaration{}, fmt.Errorf("%s:%d: priority: %w", path, c.Priority.Line, err)
		}
		meta.Priority = &v
	}

	return domain.Declaration{
		Kind:   domain.MethodDeclaration,
		Method: domain.MethodRef{Class: className, Ident: c.Method, File: path, Line: node.Line},
		Case:   meta,
	}, nil
}

// sequence returns the items of the sequence stored under key in a mapping node
func sequence(mapping *yaml.Node, key string) []*yaml.Node {
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key && mapping.Content[i+1].Kind == yaml.SequenceNode {
			return mapping.Content[i+1].Content
		}
	}
	return nil
}
