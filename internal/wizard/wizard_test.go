package wizard

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/aqlwizard/internal/catalog"
	"github.com/roach88/aqlwizard/internal/entry"
	"github.com/roach88/aqlwizard/internal/lookup"
	"github.com/roach88/aqlwizard/internal/testutil"
	"github.com/roach88/aqlwizard/internal/wizerr"
)

func newWizard(t *testing.T, opts ...Option) *Wizard {
	t.Helper()
	return New(testutil.Catalog(t), testutil.Lookups(), opts...)
}

func simple(value string, flags ...entry.Flag) entry.Entry {
	return entry.Entry{Type: entry.TypeSimple, Value: value, Flags: flags}
}

func complexEntry(value string) entry.Entry {
	return entry.Entry{Type: entry.TypeComplex, Value: value}
}

func TestCompile_Golden(t *testing.T) {
	testCases := []struct {
		name    string
		entries []entry.Entry
	}{
		{
			name:    "simple_contains",
			entries: []entry.Entry{simple("hostname contains blah")},
		},
		{
			name: "bracket_pair",
			entries: []entry.Entry{
				simple("os.type equals windows", entry.FlagLeft),
				simple("os.type equals os x", entry.FlagOr, entry.FlagRight),
			},
		},
		{
			name:    "complex_match",
			entries: []entry.Entry{complexEntry("installed_software // name contains chrome // version earlier_than 82")},
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := newWizard(t).Compile(tc.entries, "")
			require.NoError(t, err)

			data, err := Marshal(q)
			require.NoError(t, err)
			g.Assert(t, tc.name, data)
		})
	}
}

func TestCompile_Queries(t *testing.T) {
	testCases := []struct {
		name    string
		entries []entry.Entry
		want    string
		weights []int
	}{
		{
			name:    "simple",
			entries: []entry.Entry{simple("hostname contains blah")},
			want:    `(hostname == regex("blah", "i"))`,
			weights: []int{0},
		},
		{
			name: "bracket pair from flags in values",
			entries: []entry.Entry{
				simple("( os.type equals windows"),
				simple("| os.type equals os x )"),
			},
			want:    `((os.type == "windows") or (os.type == "os x"))`,
			weights: []int{-1, 1},
		},
		{
			name: "open bracket closed on last entry",
			entries: []entry.Entry{
				simple("hostname contains a"),
				simple("os.type equals windows", entry.FlagLeft),
				simple("os.type equals linux", entry.FlagOr),
			},
			want:    `(hostname == regex("a", "i")) and ((os.type == "windows") or (os.type == "linux"))`,
			weights: []int{0, -1, 1},
		},
		{
			name:    "not exists",
			entries: []entry.Entry{simple("! hostname exists")},
			want:    `not ((hostname == ({"$exists":true,"$ne":""})))`,
			weights: []int{0},
		},
		{
			name: "default join is and",
			entries: []entry.Entry{
				simple("hostname contains a"),
				simple("hostname contains b"),
			},
			want:    `(hostname == regex("a", "i")) and (hostname == regex("b", "i"))`,
			weights: []int{0, 0},
		},
		{
			name:    "regex characters escaped",
			entries: []entry.Entry{simple("hostname contains a.b")},
			want:    `(hostname == regex("a\.b", "i"))`,
			weights: []int{0},
		},
		{
			name:    "qualified field",
			entries: []entry.Entry{simple("aws:aws_device_type equals ec2")},
			want:    `(aws_device_type == "EC2")`,
			weights: []int{0},
		},
		{
			name:    "source field renders qualified name",
			entries: []entry.Entry{simple("aws:hostname contains x")},
			want:    `(adapters_data.aws_adapter.hostname == regex("x", "i"))`,
			weights: []int{0},
		},
		{
			name:    "aggregated field keeps its name",
			entries: []entry.Entry{simple("hostname contains x")},
			want:    `(hostname == regex("x", "i"))`,
			weights: []int{0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := newWizard(t).Compile(tc.entries, "")
			require.NoError(t, err)
			assert.Equal(t, tc.want, q.Query)

			weights := make([]int, 0, len(q.Expressions))
			for _, expr := range q.Expressions {
				weights = append(weights, expr.BracketWeight)
			}
			if tc.weights == nil {
				tc.weights = []int{}
			}
			assert.Equal(t, tc.weights, weights)
		})
	}
}

func TestCompile_ExpressionShape(t *testing.T) {
	q, err := newWizard(t).Compile([]entry.Entry{
		simple("hostname contains a"),
		complexEntry("installed_software // name contains chrome // version earlier_than 82"),
	}, "")
	require.NoError(t, err)
	require.Len(t, q.Expressions, 2)

	first, second := q.Expressions[0], q.Expressions[1]
	assert.Equal(t, 0, first.I)
	assert.Equal(t, "", first.LogicOp)
	assert.Empty(t, first.Context)
	require.Len(t, first.Children, 1)
	assert.Equal(t, `(hostname == regex("a", "i"))`, first.Children[0].Condition)

	assert.Equal(t, 1, second.I)
	assert.Equal(t, "and", second.LogicOp)
	assert.Equal(t, ContextObject, second.Context)
	assert.Equal(t, "", second.CompOp)
	assert.Nil(t, second.Value)
	require.Len(t, second.Children, 2)
	assert.Equal(t, 0, second.Children[0].I)
	assert.Equal(t, 1, second.Children[1].I)
	assert.Equal(t, "earlier than", second.Children[1].Expression.CompOp)
}

func TestCompile_SavedQueryOperatorOverridesField(t *testing.T) {
	q, err := newWizard(t).Compile([]entry.Entry{simple("saved_query equals abc123")}, "")
	require.NoError(t, err)
	require.Len(t, q.Expressions, 1)
	assert.Equal(t, "saved_query", q.Expressions[0].Field)
	assert.Equal(t, "({{QueryID=abc123}})", q.Query)
}

func TestCompile_IsDeterministic(t *testing.T) {
	entries := []entry.Entry{
		simple("( hostname contains web"),
		simple("| hostname contains db )"),
		complexEntry("cpus // cores more_than 4 // name contains xeon"),
	}

	w := newWizard(t)
	first, err := w.Compile(entries, "")
	require.NoError(t, err)
	second, err := w.Compile(entries, "")
	require.NoError(t, err)

	a, err := Marshal(first)
	require.NoError(t, err)
	b, err := Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestCompile_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		entry    entry.Entry
		code     wizerr.Code
		contains string
	}{
		{name: "missing operator", entry: simple("hostname"), code: wizerr.CodeMalformedEntry, contains: "empty required OPERATOR"},
		{name: "only flags", entry: simple("( )"), code: wizerr.CodeMalformedEntry, contains: "empty value after removing flags"},
		{name: "bad field chars", entry: simple("host$name contains x"), code: wizerr.CodeMalformedEntry, contains: "invalid FIELD"},
		{name: "field starts with digit", entry: simple("1host contains x"), code: wizerr.CodeMalformedEntry, contains: "must start with a letter"},
		{name: "bad operator chars", entry: simple("hostname con=tains x"), code: wizerr.CodeMalformedEntry, contains: "invalid OPERATOR"},
		{name: "unknown field", entry: simple("nope contains x"), code: wizerr.CodeFieldNotFound, contains: `no field named "nope"`},
		{name: "reserved field", entry: simple("all contains x"), code: wizerr.CodeReservedField, contains: `"all"`},
		{name: "unknown operator", entry: simple("hostname frobnicate x"), code: wizerr.CodeInvalidOperator, contains: "frobnicate"},
		{name: "bad int", entry: simple("port_count equals many"), code: wizerr.CodeInvalidValue},
		{name: "enum miss", entry: simple("power_state equals sleeping"), code: wizerr.CodeInvalidChoice},
		{name: "not complex", entry: complexEntry("hostname // name contains x"), code: wizerr.CodeNotComplex, contains: "installed_software"},
		{name: "empty complex", entry: complexEntry("installed_software"), code: wizerr.CodeEmptyComplex},
		{name: "empty complex subs", entry: complexEntry("installed_software //  // "), code: wizerr.CodeEmptyComplex},
		{name: "complex without separator", entry: complexEntry("installed_software name contains x"), code: wizerr.CodeMalformedEntry, contains: "no \" // \" found"},
		{name: "unknown sub-field", entry: complexEntry("installed_software // nope contains x"), code: wizerr.CodeSubFieldNotFound, contains: `sub-field filter #1/1 "nope contains x"`},
		{name: "bad sub-field value", entry: complexEntry("cpus // name contains x // cores equals many"), code: wizerr.CodeInvalidValue, contains: "sub-field filter #2/2"},
		{name: "saved query entry", entry: entry.Entry{Type: entry.TypeSavedQuery, Value: "x"}, code: wizerr.CodeMalformedEntry, contains: "can not be compiled"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newWizard(t).Compile([]entry.Entry{tc.entry}, "")
			require.Error(t, err)

			we, ok := wizerr.As(err)
			require.True(t, ok, "want wizard error, got %v", err)
			assert.Equal(t, tc.code, we.Code)
			assert.Equal(t, "list of records entry #1/1", we.Source)
			if tc.contains != "" {
				assert.Contains(t, err.Error(), tc.contains)
			}
		})
	}
}

const qualifiedCatalog = `
sources:
  - name: agg
    fields:
      - {name: hostname, type: string}
  - name: aws
    fields:
      - {name: hostname, name_qual: adapters_data.aws_adapter.hostname, type: string}
      - name: installed_software
        name_qual: adapters_data.aws_adapter.installed_software
        type: array
        is_complex: true
        items: {type: array}
        sub_fields:
          - {name: name, name_qual: installed_software.name, type: string}
`

func TestCompile_QualifiedNames(t *testing.T) {
	cat, err := catalog.ParseYAML([]byte(qualifiedCatalog))
	require.NoError(t, err)
	w := New(cat, nil)

	q, err := w.Compile([]entry.Entry{
		simple("aws:hostname contains x"),
		simple("hostname contains x"),
		complexEntry("aws:installed_software // name contains chrome"),
	}, "")
	require.NoError(t, err)
	assert.Equal(t,
		`(adapters_data.aws_adapter.hostname == regex("x", "i")) and (hostname == regex("x", "i")) and `+
			`(adapters_data.aws_adapter.installed_software == match([(name == regex("chrome", "i"))]))`,
		q.Query)
	assert.Equal(t, "hostname", q.Expressions[0].Field)
	assert.Equal(t, "installed_software", q.Expressions[2].Field)
}

func TestCompile_NoEntries(t *testing.T) {
	for _, entries := range [][]entry.Entry{nil, {}} {
		_, err := newWizard(t).Compile(entries, "")
		require.Error(t, err)

		we, ok := wizerr.As(err)
		require.True(t, ok)
		assert.Equal(t, wizerr.CodeMalformedEntry, we.Code)
		assert.Equal(t, entry.SourceRecords, we.Source)
		assert.Contains(t, we.Message, "no entries to compile")
	}
}

func TestCompileGroups_EmptyNamedGroup(t *testing.T) {
	_, err := newWizard(t).CompileGroups([]entry.Group{{Name: "Nothing"}})
	require.Error(t, err)

	we, ok := wizerr.As(err)
	require.True(t, ok)
	assert.Equal(t, wizerr.CodeMalformedEntry, we.Code)
	assert.Equal(t, "Nothing", we.Group)
}

func TestCompile_KeepsEntrySource(t *testing.T) {
	e := simple("nope contains x")
	e.Source = "text string line #3: nope contains x"

	_, err := newWizard(t).Compile([]entry.Entry{simple("hostname contains a"), e}, "")
	require.Error(t, err)
	we, ok := wizerr.As(err)
	require.True(t, ok)
	assert.Equal(t, e.Source, we.Source)
}

func TestCompile_InvalidOperatorListsProfile(t *testing.T) {
	_, err := newWizard(t).Compile([]entry.Entry{simple("hostname frobnicate x")}, "")
	require.Error(t, err)

	we, ok := wizerr.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"exists", "regex", "contains", "equals", "startswith", "endswith", "in"}, we.Hints)
}

func TestCompile_FetchesLookupsOnce(t *testing.T) {
	calls := 0
	lookups := lookup.Funcs{
		TagsFunc: func() ([]string, error) {
			calls++
			return []string{"Production", "Staging"}, nil
		},
	}

	w := New(testutil.Catalog(t), lookups)
	_, err := w.Compile([]entry.Entry{
		simple("labels equals production"),
		simple("labels equals staging"),
	}, "")
	require.NoError(t, err)
	_, err = w.Compile([]entry.Entry{simple("labels equals production")}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestCompile_NilLookups(t *testing.T) {
	w := New(testutil.Catalog(t), nil)

	_, err := w.Compile([]entry.Entry{simple("hostname contains a")}, "")
	require.NoError(t, err)

	_, err = w.Compile([]entry.Entry{simple("labels equals production")}, "")
	require.Error(t, err)
	assert.True(t, wizerr.Is(err, wizerr.CodeNoCandidates))
}

func TestCompileGroups(t *testing.T) {
	ids := testutil.NewSequentialIDs()
	w := newWizard(t, WithIDs(ids))

	groups := []entry.Group{
		{
			Name:        "Windows",
			Description: "windows hosts",
			Tags:        []string{"os"},
			Fields:      []string{"hostname", "default", "aws:aws_device_type", "default"},
			Private:     true,
			Entries:     []entry.Entry{simple("os.type equals windows")},
		},
		{
			Name:         "Web",
			AlwaysCached: true,
			Entries:      []entry.Entry{simple("hostname contains web")},
		},
	}

	got, err := w.CompileGroups(groups)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "00000000-0000-0000-0000-000000000001", got[0].ID)
	assert.Equal(t, "Windows", got[0].Name)
	assert.Equal(t, []string{"os"}, got[0].Tags)
	assert.Equal(t, []string{"hostname", "adapters", "last_seen", "os.type", "aws:aws_device_type"}, got[0].Fields)
	assert.True(t, got[0].Private)
	assert.Equal(t, `(os.type == "windows")`, got[0].Query.Query)

	assert.Equal(t, "00000000-0000-0000-0000-000000000002", got[1].ID)
	assert.Equal(t, []string{}, got[1].Tags)
	assert.Equal(t, []string{"adapters", "hostname", "last_seen", "os.type"}, got[1].Fields)
	assert.True(t, got[1].AlwaysCached)
}

func TestCompileGroups_WithSource(t *testing.T) {
	w := newWizard(t, WithSource("aws"), WithIDs(testutil.NewSequentialIDs()))

	got, err := w.CompileGroups([]entry.Group{{Name: "AWS", Entries: []entry.Entry{simple("hostname contains a")}}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"aws:aws_device_type"}, got[0].Fields)
}

func TestCompileGroups_ErrorsNameGroup(t *testing.T) {
	testCases := []struct {
		name  string
		group entry.Group
		code  wizerr.Code
	}{
		{
			name:  "bad entry",
			group: entry.Group{Name: "Broken", Entries: []entry.Entry{simple("nope contains x")}},
			code:  wizerr.CodeFieldNotFound,
		},
		{
			name:  "bad display field",
			group: entry.Group{Name: "Broken", Fields: []string{"nope"}, Entries: []entry.Entry{simple("hostname contains x")}},
			code:  wizerr.CodeFieldNotFound,
		},
		{
			name:  "reserved display field",
			group: entry.Group{Name: "Broken", Fields: []string{"all"}, Entries: []entry.Entry{simple("hostname contains x")}},
			code:  wizerr.CodeReservedField,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ok := entry.Group{Name: "Fine", Entries: []entry.Entry{simple("hostname contains a")}}
			_, err := newWizard(t).CompileGroups([]entry.Group{ok, tc.group})
			require.Error(t, err)

			we, isWizErr := wizerr.As(err)
			require.True(t, isWizErr)
			assert.Equal(t, tc.code, we.Code)
			assert.Equal(t, "Broken", we.Group)
			assert.Contains(t, err.Error(), `(group "Broken")`)
		})
	}
}

func TestCompileGroups_FromText(t *testing.T) {
	groups, err := entry.ParseText(`
type=saved_query, value=Chrome, tags=software
type=complex, field=installed_software
type=complex_sub, value=name contains chrome
type=complex_sub, value=version earlier_than 82
type=bracket, value=(
field=hostname, operator=contains, value=web
flags=or, field=hostname, operator=contains, value=db
type=bracket, value=)
`, "")
	require.NoError(t, err)

	got, err := newWizard(t, WithIDs(testutil.NewSequentialIDs())).CompileGroups(groups)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t,
		`(installed_software == match([(name == regex("chrome", "i")) and (version_raw < '000000082')])) `+
			`and ((hostname == regex("web", "i")) or (hostname == regex("db", "i")))`,
		got[0].Query.Query)
}
