package harness

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/aqlwizard/internal/catalog"
	"github.com/roach88/aqlwizard/internal/entry"
	"github.com/roach88/aqlwizard/internal/lookup"
	"github.com/roach88/aqlwizard/internal/testutil"
	"github.com/roach88/aqlwizard/internal/wizard"
	"github.com/roach88/aqlwizard/internal/wizerr"
)

// Option configures Run.
type Option func(*runner)

type runner struct {
	log *slog.Logger
}

// WithLogger routes parser and compiler logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) {
		r.log = logger
	}
}

// Run compiles a scenario's input and checks the outcome against its
// expect clause.
//
// The returned error reports problems with the scenario itself (an
// unreadable catalog or lookups file). Compile failures are outcomes and
// end up in Result.Err.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	r := &runner{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(r)
	}

	cat, err := catalog.Load(scenario.Catalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var lookups lookup.Provider = lookup.Static{}
	if scenario.Lookups != "" {
		static, err := lookup.LoadYAML(scenario.Lookups)
		if err != nil {
			return nil, fmt.Errorf("load lookups: %w", err)
		}
		lookups = static
	}

	surface := entry.SurfaceText
	if scenario.Surface != "" {
		if surface, err = entry.ParseSurface(scenario.Surface); err != nil {
			return nil, err
		}
	}

	wopts := []wizard.Option{
		wizard.WithLogger(r.log),
		wizard.WithIDs(testutil.NewSequentialIDs()),
	}
	if scenario.Source != "" {
		wopts = append(wopts, wizard.WithSource(scenario.Source))
	}
	w := wizard.New(cat, lookups, wopts...)

	result := NewResult()
	groups, err := entry.NewParser(r.log).Parse(surface, []byte(scenario.Input), "")
	if err == nil {
		result.Queries, err = w.CompileGroups(groups)
	}
	if err != nil {
		we, ok := wizerr.As(err)
		if !ok {
			return nil, fmt.Errorf("compile: %w", err)
		}
		result.Err = we
		result.Queries = nil
	}

	check(scenario.Expect, result)
	return result, nil
}

func check(expect Expect, result *Result) {
	if expect.Error != nil {
		checkError(*expect.Error, result)
		return
	}
	if result.Err != nil {
		result.AddError("unexpected error: %v", result.Err)
		return
	}

	want := expect.Queries
	if expect.Query != "" {
		want = []ExpectedQuery{{Query: expect.Query}}
	}
	if len(result.Queries) != len(want) {
		result.AddError("expected %d saved queries, got %d", len(want), len(result.Queries))
		return
	}

	for i, w := range want {
		got := result.Queries[i]
		if expect.Query == "" && got.Name != w.Name {
			result.AddError("queries[%d]: expected name %q, got %q", i, w.Name, got.Name)
		}
		if got.Query.Query != w.Query {
			result.AddError("queries[%d]: expected query\n    %s\n  got\n    %s", i, w.Query, got.Query.Query)
		}
		if w.Fields != nil && !slices.Equal(got.Fields, w.Fields) {
			result.AddError("queries[%d]: expected fields %v, got %v", i, w.Fields, got.Fields)
		}
	}
}

func checkError(expect ExpectedError, result *Result) {
	if result.Err == nil {
		result.AddError("expected %s error, compiled %d saved queries", expect.Code, len(result.Queries))
		return
	}
	if string(result.Err.Code) != expect.Code {
		result.AddError("expected %s error, got %v", expect.Code, result.Err)
	}
	if expect.Contains != "" && !strings.Contains(result.Err.Error(), expect.Contains) {
		result.AddError("expected error containing %q, got %v", expect.Contains, result.Err)
	}
	if expect.Group != "" && result.Err.Group != expect.Group {
		result.AddError("expected error in group %q, got %q", expect.Group, result.Err.Group)
	}
}
