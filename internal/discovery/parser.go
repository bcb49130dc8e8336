package discovery

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"tcat/internal/domain"
)

// Decorators that declare suites and cases in Python suite modules
const (
	SuiteDecorator = "TestSuiteMetadata"
	CaseDecorator  = "TestCaseMetadata"
)

var (
	classPattern     = regexp.MustCompile(`^(\s*)class\s+(\w+)\s*[(:]`)
	defPattern       = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+(\w+)\s*\(`)
	decoratorPattern = regexp.MustCompile(`^\s*@([\w.]+)`)
	kwargPattern     = regexp.MustCompile(`(?s)^(\w+)\s*=([^=].*)$`)
)

// Parser extracts suite and case declarations from Python suite modules
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// decorator is one parsed "@Name(key=value, ...)" line
type decorator struct {
	name string
	args map[string]string
	line int
}

// topClass is the top-level class whose body is being read
type topClass struct {
	ref        domain.ClassRef
	suite      *decorator
	bodyIndent int
}

// ParseFile reads path and returns its declarations
func (p *Parser) ParseFile(path string) ([]domain.Declaration, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}
	return p.Parse(path, content)
}

// Parse returns the declarations of a Python module in the order the host
// would issue them: a class's decorated methods register while its body
// executes, so they come before the class itself.
//
// Only methods defined directly in a top-level class body are considered;
// nested classes and module-level functions are skipped because their
// qualified names would not have exactly one separator.
func (p *Parser) Parse(path string, src []byte) ([]domain.Declaration, error) {
	lines := strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n")

	var (
		decls   []domain.Declaration
		pending []decorator
		current *topClass
		inQuote string
	)

	closeClass := func() {
		if current != nil && current.suite != nil {
			meta, err := suiteMeta(*current.suite)
			if err == nil {
				decls = append(decls, domain.Declaration{
					Kind:  domain.ClassDeclaration,
					Class: current.ref,
					Suite: meta,
				})
			}
		}
		current = nil
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if inQuote != "" {
			inQuote = scanQuotes(line, inQuote)
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))

		if current != nil {
			if indent == 0 {
				closeClass()
			} else if current.bodyIndent < 0 {
				current.bodyIndent = indent
			}
		}

		if m := decoratorPattern.FindStringSubmatch(line); m != nil {
			text, end, err := collectCall(lines, i)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, i+1, err)
			}
			name := m[1]
			if dot := strings.LastIndex(name, "."); dot >= 0 {
				name = name[dot+1:]
			}
			pending = append(pending, decorator{name: name, args: parseKwargs(text), line: i + 1})
			i = end
			continue
		}

		if m := classPattern.FindStringSubmatch(line); m != nil {
			if indent == 0 {
				current = &topClass{
					ref:        domain.ClassRef{Ident: m[2], File: path, Line: i + 1},
					suite:      findDecorator(pending, SuiteDecorator),
					bodyIndent: -1,
				}
				if current.suite != nil {
					if _, err := suiteMeta(*current.suite); err != nil {
						return nil, fmt.Errorf("%s:%d: %w", path, current.suite.line, err)
					}
				}
			}
			pending = nil
			continue
		}

		if m := defPattern.FindStringSubmatch(line); m != nil {
			if d := findDecorator(pending, CaseDecorator); d != nil && current != nil && indent == current.bodyIndent {
				meta, err := caseMeta(*d)
				if err != nil {
					return nil, fmt.Errorf("%s:%d: %w", path, d.line, err)
				}
				decls = append(decls, domain.Declaration{
					Kind: domain.MethodDeclaration,
					Method: domain.MethodRef{
						Class: current.ref.Ident,
						Ident: m[2],
						File:  path,
						Line:  i + 1,
					},
					Case: meta,
				})
			}
			pending = nil
			continue
		}

		inQuote = scanQuotes(line, "")
	}
	closeClass()

	return decls, nil
}

func findDecorator(decorators []decorator, name string) *decorator {
	for i := range decorators {
		if decorators[i].name == name {
			return &decorators[i]
		}
	}
	return nil
}

func suiteMeta(d decorator) (domain.SuiteMeta, error) {
	var meta domain.SuiteMeta
	var err error
	if meta.Name, err = stringArg(d, "name"); err != nil {
		return meta, err
	}
	if meta.Area, err = stringArg(d, "area"); err != nil {
		return meta, err
	}
	if meta.Category, err = stringArg(d, "category"); err != nil {
		return meta, err
	}
	if meta.Description, err = stringArg(d, "description"); err != nil {
		return meta, err
	}
	meta.Description = cleandoc(meta.Description)
	if raw, ok := d.args["tags"]; ok && raw != "None" {
		if meta.Tags, err = parseStringList(raw); err != nil {
			return meta, fmt.Errorf("%s tags: %w", d.name, err)
		}
	}
	return meta, nil
}

func caseMeta(d decorator) (domain.CaseMeta, error) {
	var meta domain.CaseMeta
	var err error
	if meta.Name, err = stringArg(d, "name"); err != nil {
		return meta, err
	}
	if meta.Description, err = stringArg(d, "description"); err != nil {
		return meta, err
	}
	meta.Description = cleandoc(meta.Description)

	raw, ok := d.args["priority"]
	switch {
	case !ok:
		meta.Priority = domain.Priority(domain.DefaultPriority)
	case raw == "None":
	default:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return meta, fmt.Errorf("%s priority %q is not an integer", d.name, raw)
		}
		meta.Priority = &v
	}
	return meta, nil
}

// stringArg returns a string keyword argument; a missing argument or None is ""
func stringArg(d decorator, key string) (string, error) {
	raw, ok := d.args[key]
	if !ok || raw == "None" {
		return "", nil
	}
	s, ok := parseStringLiteral(raw)
	if !ok {
		return "", fmt.Errorf("%s %s must be a string literal, got %q", d.name, key, raw)
	}
	return s, nil
}

// collectCall gathers a decorator starting at lines[start], following
// parentheses and string literals across lines. It returns the text and the
// index of the last line consumed.
func collectCall(lines []string, start int) (string, int, error) {
	var buf []byte
	depth := 0
	opened := false
	quote := ""

	for i := start; i < len(lines); i++ {
		line := lines[i]
		if i > start {
			buf = append(buf, '\n')
		}
	scan:
		for j := 0; j < len(line); j++ {
			ch := line[j]
			if quote != "" {
				buf = append(buf, ch)
				if ch == '\\' && j+1 < len(line) {
					j++
					buf = append(buf, line[j])
					continue
				}
				if strings.HasPrefix(line[j:], quote) {
					buf = append(buf, line[j+1:j+len(quote)]...)
					j += len(quote) - 1
					quote = ""
				}
				continue
			}
			switch ch {
			case '#':
				break scan
			case '"', '\'':
				quote = string(ch)
				if strings.HasPrefix(line[j:], strings.Repeat(quote, 3)) {
					quote = strings.Repeat(quote, 3)
				}
				buf = append(buf, quote...)
				j += len(quote) - 1
				continue
			case '(', '[', '{':
				depth++
				opened = true
			case ')', ']', '}':
				depth--
			}
			buf = append(buf, ch)
			if opened && depth == 0 {
				return string(buf), i, nil
			}
		}
		if len(quote) == 1 {
			quote = ""
		}
		if !opened && quote == "" {
			return string(buf), i, nil
		}
	}
	return "", start, fmt.Errorf("unterminated decorator")
}

// scanQuotes returns the triple-quote delimiter still open at the end of
// line, given the one open at its start.
func scanQuotes(line, open string) string {
	for j := 0; j < len(line); j++ {
		if open != "" {
			if line[j] == '\\' {
				j++
				continue
			}
			if strings.HasPrefix(line[j:], open) {
				j += len(open) - 1
				open = ""
			}
			continue
		}
		switch ch := line[j]; ch {
		case '#':
			return ""
		case '"', '\'':
			open = string(ch)
			if strings.HasPrefix(line[j:], strings.Repeat(open, 3)) {
				open = strings.Repeat(open, 3)
			}
			j += len(open) - 1
		}
	}
	if len(open) == 1 {
		return ""
	}
	return open
}

// parseKwargs returns the raw keyword arguments of a call "name(k=v, ...)"
func parseKwargs(call string) map[string]string {
	args := make(map[string]string)
	open := strings.Index(call, "(")
	if open < 0 || !strings.HasSuffix(call, ")") {
		return args
	}
	for _, part := range splitTopLevel(call[open+1 : len(call)-1]) {
		if m := kwargPattern.FindStringSubmatch(strings.TrimSpace(part)); m != nil {
			args[m[1]] = strings.TrimSpace(m[2])
		}
	}
	return args
}

// splitTopLevel splits s on commas outside brackets and string literals
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	quote := ""
	last := 0
	for j := 0; j < len(s); j++ {
		ch := s[j]
		if quote != "" {
			if ch == '\\' {
				j++
				continue
			}
			if strings.HasPrefix(s[j:], quote) {
				j += len(quote) - 1
				quote = ""
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = string(ch)
			if strings.HasPrefix(s[j:], strings.Repeat(quote, 3)) {
				quote = strings.Repeat(quote, 3)
			}
			j += len(quote) - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:j])
				last = j + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[last:]); rest != "" {
		parts = append(parts, s[last:])
	}
	return parts
}

// parseStringLiteral decodes one or more adjacent Python string literals
func parseStringLiteral(raw string) (string, bool) {
	var out strings.Builder
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	for s != "" {
		rawString := false
		for len(s) > 0 && strings.ContainsRune("rRbBuUfF", rune(s[0])) {
			if s[0] == 'r' || s[0] == 'R' {
				rawString = true
			}
			s = s[1:]
		}
		if s == "" || (s[0] != '"' && s[0] != '\'') {
			return "", false
		}
		quote := s[:1]
		if strings.HasPrefix(s, strings.Repeat(quote, 3)) {
			quote = strings.Repeat(quote, 3)
		}
		body := s[len(quote):]
		end := -1
		for j := 0; j < len(body); j++ {
			if body[j] == '\\' {
				j++
				continue
			}
			if strings.HasPrefix(body[j:], quote) {
				end = j
				break
			}
		}
		if end < 0 {
			return "", false
		}
		if rawString {
			out.WriteString(body[:end])
		} else {
			out.WriteString(unescape(body[:end]))
		}
		s = strings.TrimSpace(body[end+len(quote):])
	}
	return out.String(), true
}

var escapes = strings.NewReplacer(
	"\\\n", "",
	`\\`, `\`,
	`\n`, "\n",
	`\t`, "\t",
	`\"`, `"`,
	`\'`, `'`,
)

func unescape(s string) string {
	return escapes.Replace(s)
}

// parseStringList decodes a list or tuple of string literals
func parseStringList(raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if len(s) < 2 || !((s[0] == '[' && s[len(s)-1] == ']') || (s[0] == '(' && s[len(s)-1] == ')')) {
		return nil, fmt.Errorf("expected a list of strings, got %q", raw)
	}
	items := []string{}
	for _, part := range splitTopLevel(s[1 : len(s)-1]) {
		item, ok := parseStringLiteral(part)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %q", strings.TrimSpace(part))
		}
		items = append(items, item)
	}
	return items, nil
}

// cleandoc trims a docstring-style description: leading and trailing blank
// lines go away and the common indentation of the lines after the first is
// removed.
func cleandoc(s string) string {
	if s == "" {
		return s
	}
	lines := strings.Split(strings.ReplaceAll(s, "\t", "    "), "\n")

	margin := -1
	for _, l := range lines[1:] {
		content := strings.TrimLeft(l, " ")
		if content == "" {
			continue
		}
		if ind := len(l) - len(content); margin < 0 || ind < margin {
			margin = ind
		}
	}

	lines[0] = strings.TrimSpace(lines[0])
	for i := 1; i < len(lines); i++ {
		if margin > 0 && len(lines[i]) >= margin {
			lines[i] = lines[i][margin:]
		}
		lines[i] = strings.TrimRight(lines[i], " ")
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
