package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcat/internal/domain"
)

const cpuSuiteSource = `# Copyright (c) Microsoft Corporation.
from lisa import TestCaseMetadata, TestSuite, TestSuiteMetadata


class CPUState:
    OFFLINE: str = "0"
    ONLINE: str = "1"


@TestSuiteMetadata(
    area="cpu",
    category="functional",
    description="""
    This test suite is used to run cpu related tests.
    """,
    tags=["hotplug", 'smoke'],
)
class CPUSuite(TestSuite):
    @TestCaseMetadata(
        description="""
            This test will check cpu online and offline.

            Steps :
            1. skip test case when kernel doesn't support cpu hotplug.
            """,
        priority=3,
        requirement=simple_requirement(
            min_core_count=32,
        ),
    )
    def verify_cpu_online_offline(self, node: Node, log: Logger) -> None:
        result = node.execute(
            f"grep CONFIG_HOTPLUG_CPU=y {config_path}", shell=True
        )
        script = """
class NotASuite:
    def not_a_case(self):
        pass
"""

    @TestCaseMetadata(description="l3 cache", name="L3Cache")  # keeps the old name
    def verify_l3_cache(self, node: Node) -> None:
        pass

    def _helper(self) -> None:
        pass

    class Nested:
        @TestCaseMetadata(description="nested")
        def nested_case(self) -> None:
            pass

    @TestCaseMetadata(description="no priority", priority=None)
    def verify_no_priority(self) -> None:
        pass


class Undecorated(TestSuite):
    @TestCaseMetadata(description="orphan")
    def orphan_case(self) -> None:
        pass


@TestCaseMetadata(description="module level")
def module_level_case() -> None:
    pass
`

func TestParser_Parse(t *testing.T) {
	parser := NewParser()

	decls, err := parser.Parse("cpusuite.py", []byte(cpuSuiteSource))
	require.NoError(t, err)

	var got []string
	for _, d := range decls {
		if d.Kind == domain.ClassDeclaration {
			got = append(got, "class "+d.Class.Name())
		} else {
			got = append(got, "method "+d.Method.QualifiedName())
		}
	}
	assert.Equal(t, []string{
		"method CPUSuite.verify_cpu_online_offline",
		"method CPUSuite.verify_l3_cache",
		"method CPUSuite.verify_no_priority",
		"class CPUSuite",
		"method Undecorated.orphan_case",
	}, got)

	t.Run("suite metadata", func(t *testing.T) {
		suite := decls[3]
		assert.Equal(t, "cpu", suite.Suite.Area)
		assert.Equal(t, "functional", suite.Suite.Category)
		assert.Equal(t, "This test suite is used to run cpu related tests.", suite.Suite.Description)
		assert.Equal(t, []string{"hotplug", "smoke"}, suite.Suite.Tags)
		assert.Empty(t, suite.Suite.Name)
		assert.Equal(t, "cpusuite.py:18", suite.Source())
	})

	t.Run("case metadata", func(t *testing.T) {
		online := decls[0]
		require.NotNil(t, online.Case.Priority)
		assert.Equal(t, 3, *online.Case.Priority)
		assert.Equal(t, "This test will check cpu online and offline.\n\n"+
			"Steps :\n"+
			"1. skip test case when kernel doesn't support cpu hotplug.", online.Case.Description)
		assert.Equal(t, 31, online.Method.Line)

		l3 := decls[1]
		assert.Equal(t, "L3Cache", l3.Case.Name)
		assert.Equal(t, "l3 cache", l3.Case.Description)
		require.NotNil(t, l3.Case.Priority)
		assert.Equal(t, domain.DefaultPriority, *l3.Case.Priority)

		assert.Nil(t, decls[2].Case.Priority)
	})
}

func TestParser_ParseFile(t *testing.T) {
	parser := NewParser()
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "cpusuite.py")
	if err := os.WriteFile(testFile, []byte(cpuSuiteSource), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	t.Run("finds declarations", func(t *testing.T) {
		decls, err := parser.ParseFile(testFile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(decls) != 5 {
			t.Errorf("expected 5 declarations, got %d", len(decls))
		}
		for _, d := range decls {
			if d.Kind == domain.MethodDeclaration && d.Method.File != testFile {
				t.Errorf("expected file %s, got %s", testFile, d.Method.File)
			}
		}
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		_, err := parser.ParseFile("/non/existent/file.py")
		if err == nil {
			t.Error("expected error for non-existent file")
		}
	})
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "non integer priority",
			src: `class A(TestSuite):
    @TestCaseMetadata(description="x", priority="high")
    def case(self):
        pass
`,
		},
		{
			name: "non literal area",
			src: `@TestSuiteMetadata(area=AREA, description="x")
class A(TestSuite):
    pass
`,
		},
		{
			name: "unterminated decorator",
			src: `@TestSuiteMetadata(area="cpu",
`,
		},
		{
			name: "tags not a list",
			src: `@TestSuiteMetadata(description="x", tags="cpu")
class A(TestSuite):
    pass
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse("bad.py", []byte(tt.src))
			assert.Error(t, err)
			if err != nil {
				assert.Contains(t, err.Error(), "bad.py:")
			}
		})
	}
}

func TestParseStringLiteral(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{`"cpu"`, "cpu", true},
		{`'cpu'`, "cpu", true},
		{`"a" "b"`, "ab", true},
		{`r"\d+"`, `\d+`, true},
		{`"it\'s"`, "it's", true},
		{`"line\nbreak"`, "line\nbreak", true},
		{`"""multi
line"""`, "multi\nline", true},
		{`AREA`, "", false},
		{`"unterminated`, "", false},
		{``, "", false},
	}
	for _, tt := range tests {
		got, ok := parseStringLiteral(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestCleandoc(t *testing.T) {
	in := `
            This test case verifies ring buffer settings.

            Steps:
            1. Get the current settings.
                indented detail
        `
	want := "This test case verifies ring buffer settings.\n\nSteps:\n1. Get the current settings.\n    indented detail"
	assert.Equal(t, want, cleandoc(in))
	assert.Equal(t, "single", cleandoc("  single  "))
	assert.Equal(t, "", cleandoc(""))
}
