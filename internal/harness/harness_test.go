package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/aqlwizard/internal/wizerr"
)

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	testCases := []string{
		"hostname_contains",
		"csv_saved_queries",
		"json_tags",
		"unknown_field",
	}

	for _, name := range testCases {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"hostname_contains", "unknown_field"} {
		t.Run(name, func(t *testing.T) {
			result, err := RunWithGolden(t, loadScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ReportsMismatches(t *testing.T) {
	base := loadScenario(t, "hostname_contains")

	testCases := []struct {
		name   string
		expect Expect
		want   string
	}{
		{
			name:   "wrong query",
			expect: Expect{Query: `(hostname == "blah")`},
			want:   "expected query",
		},
		{
			name:   "wrong count",
			expect: Expect{Queries: []ExpectedQuery{{Query: "a"}, {Query: "b"}}},
			want:   "expected 2 saved queries, got 1",
		},
		{
			name:   "error expected",
			expect: Expect{Error: &ExpectedError{Code: string(wizerr.CodeFieldNotFound)}},
			want:   "expected FIELD_NOT_FOUND error",
		},
		{
			name:   "wrong fields",
			expect: Expect{Queries: []ExpectedQuery{{Query: `(hostname == regex("blah", "i"))`, Fields: []string{"hostname"}}}},
			want:   "expected fields [hostname]",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := *base
			s.Expect = tc.expect

			result, err := Run(&s)
			require.NoError(t, err)
			assert.False(t, result.Pass)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, result.Errors[0], tc.want)
		})
	}
}

func TestRun_ErrorMismatch(t *testing.T) {
	s := *loadScenario(t, "unknown_field")
	s.Expect = Expect{Error: &ExpectedError{Code: string(wizerr.CodeInvalidOperator), Contains: "frobnicate", Group: "G"}}

	result, err := Run(&s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 3)
	require.NotNil(t, result.Err)
	assert.Equal(t, wizerr.CodeFieldNotFound, result.Err.Code)
}

func TestRun_MissingCatalog(t *testing.T) {
	_, err := Run(&Scenario{Name: "x", Catalog: filepath.Join(t.TempDir(), "missing.yaml"), Expect: Expect{Query: "q"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load catalog")
}

func TestLoadScenario_Errors(t *testing.T) {
	dir := t.TempDir()
	catalog, err := filepath.Abs(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	testCases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "unknown field",
			content: "name: x\ndescription: d\ncatalog: " + catalog + "\ninput: a\nexpected:\n  query: q\n",
			want:    "failed to parse YAML",
		},
		{
			name:    "missing name",
			content: "description: d\ncatalog: " + catalog + "\nexpect:\n  query: q\n",
			want:    "name is required",
		},
		{
			name:    "missing catalog file",
			content: "name: x\ndescription: d\ncatalog: nope.yaml\nexpect:\n  query: q\n",
			want:    "catalog file not found",
		},
		{
			name:    "bad surface",
			content: "name: x\ndescription: d\ncatalog: " + catalog + "\nsurface: xml\nexpect:\n  query: q\n",
			want:    "invalid surface",
		},
		{
			name:    "two expectations",
			content: "name: x\ndescription: d\ncatalog: " + catalog + "\nexpect:\n  query: q\n  error:\n    code: FIELD_NOT_FOUND\n",
			want:    "exactly one of",
		},
		{
			name:    "no expectation",
			content: "name: x\ndescription: d\ncatalog: " + catalog + "\n",
			want:    "exactly one of",
		},
		{
			name:    "unknown code",
			content: "name: x\ndescription: d\ncatalog: " + catalog + "\nexpect:\n  error:\n    code: OOPS\n",
			want:    `unknown code "OOPS"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, "scenario.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadScenario_ResolvesPaths(t *testing.T) {
	s := loadScenario(t, "json_tags")
	assert.Equal(t, filepath.Join("testdata", "catalog.yaml"), s.Catalog)
	assert.Equal(t, filepath.Join("testdata", "lookups.yaml"), s.Lookups)
	assert.Equal(t, "json", s.Surface)
}

func TestMarshalSnapshot_IsDeterministic(t *testing.T) {
	s := loadScenario(t, "csv_saved_queries")

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := MarshalSnapshot(s.Name, first)
	require.NoError(t, err)
	b, err := MarshalSnapshot(s.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Contains(t, string(a), `"id": "00000000-0000-0000-0000-000000000002"`)
}
