package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/aqlwizard/internal/catalog"
	"github.com/roach88/aqlwizard/internal/entry"
	"github.com/roach88/aqlwizard/internal/lookup"
	"github.com/roach88/aqlwizard/internal/store"
	"github.com/roach88/aqlwizard/internal/wizard"
	"github.com/roach88/aqlwizard/internal/wizerr"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Surface string   // text | json | csv, inferred from the file extension when empty
	Catalog string   // catalog file, overrides catalog.path
	Lookups string   // lookups file, overrides lookups.path
	Source  string   // data source for default display fields
	Save    bool     // persist named saved queries
	Store   string   // sqlite file, overrides store.path
	Output  string   // output file path
	Entries []string // inline text lines
}

// CompileResult is the JSON payload of a successful compile.
type CompileResult struct {
	Queries []wizard.SavedQuery `json:"queries"`
	Saved   []string            `json:"saved,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [file|-]",
		Short: "Compile entries into AQL",
		Long: `Compile filter entries into AQL and expression trees.

Entries are read from a file, from stdin ("-") or from repeated --entry
flags holding text lines. The input surface follows the file extension
(.csv, .json, anything else is text) unless --surface is given.

Examples:
  aqlwizard compile --catalog fields.yaml --entry "type=simple, value=hostname contains web"
  aqlwizard compile --catalog fields.cue queries.csv --save
  cat entries.json | aqlwizard compile --catalog fields.yaml --surface json -`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runCompile(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Surface, "surface", "", "input surface (text|json|csv)")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "field catalog file (.yaml or .cue)")
	cmd.Flags().StringVar(&opts.Lookups, "lookups", "", "lookup lists file (.yaml)")
	cmd.Flags().StringVar(&opts.Source, "source", "", "data source for default display fields")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "save named queries to the store")
	cmd.Flags().StringVar(&opts.Store, "store", "", "saved query database")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write compiled queries as JSON to a file")
	cmd.Flags().StringArrayVar(&opts.Entries, "entry", nil, "text entry line (repeatable)")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.config()
	log := opts.logger()

	surface, data, err := readInput(opts, path, cmd.InOrStdin())
	if err != nil {
		code := ErrCodeReadFailed
		if os.IsNotExist(err) {
			code = ErrCodeNotFound
		}
		return formatter.CommandError(code, err, "")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return formatter.CommandError(ErrCodeNoInput,
			fmt.Errorf("no entries given: pass a file, - for stdin, or --entry"), surface)
	}

	catalogPath := firstNonEmpty(opts.Catalog, cfg.Catalog.Path)
	if catalogPath == "" {
		return formatter.CommandError(ErrCodeCatalog,
			fmt.Errorf("no field catalog: use --catalog or set catalog.path"), "")
	}
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return formatter.CommandError(ErrCodeCatalog, err, "")
	}
	formatter.VerboseLog("Loaded catalog %s: %s", catalogPath, cat)

	var lookups lookup.Provider = lookup.Static{}
	if lookupsPath := firstNonEmpty(opts.Lookups, cfg.Lookups.Path); lookupsPath != "" {
		static, err := lookup.LoadYAML(lookupsPath)
		if err != nil {
			return formatter.CommandError(ErrCodeCatalog, err, "")
		}
		lookups = static
	}

	groups, err := entry.NewParser(log).Parse(surface, data, path)
	if err != nil {
		return formatter.CommandError(ErrCodeMalformedEntry, err, surface)
	}
	formatter.VerboseLog("Parsed %d group(s) from %s input", len(groups), surface)

	source := firstNonEmpty(opts.Source, cfg.Catalog.Source, cat.DefaultSource())
	wz := wizard.New(cat, lookups,
		wizard.WithLogger(log),
		wizard.WithSource(source),
	)
	queries, err := wz.CompileGroups(groups)
	if err != nil {
		return formatter.CommandError(ErrCodeGeneric, err, surface)
	}

	result := CompileResult{Queries: queries}

	if opts.Output != "" {
		if err := writeQueries(opts.Output, queries); err != nil {
			return formatter.CommandError(ErrCodeWriteFailed, err, "")
		}
	}

	if opts.Save {
		saved, err := saveQueries(cmd, opts, queries)
		if err != nil {
			return formatter.CommandError(ErrCodeStoreFailed, err, surface)
		}
		result.Saved = saved
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// readInput picks the input bytes and surface. Inline entries are always
// text.
func readInput(opts *CompileOptions, path string, stdin io.Reader) (entry.Surface, []byte, error) {
	surface := entry.SurfaceText
	if path != "" && path != "-" {
		surface = entry.SurfaceFor(path)
	}
	if opts.Surface != "" {
		s, err := entry.ParseSurface(opts.Surface)
		if err != nil {
			return "", nil, err
		}
		surface = s
	}

	switch {
	case path == "" && len(opts.Entries) > 0:
		if opts.Surface != "" && surface != entry.SurfaceText {
			return "", nil, wizerr.New(wizerr.CodeInvalidInput, "--entry lines are always %s, not %s",
				entry.SurfaceText, surface)
		}
		return entry.SurfaceText, []byte(strings.Join(opts.Entries, "\n")), nil
	case path == "":
		return surface, nil, nil
	case len(opts.Entries) > 0:
		return "", nil, wizerr.New(wizerr.CodeInvalidInput, "use either an input file or --entry, not both")
	case path == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("reading stdin: %w", err)
		}
		return surface, data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	return surface, data, nil
}

func saveQueries(cmd *cobra.Command, opts *CompileOptions, queries []wizard.SavedQuery) ([]string, error) {
	for _, q := range queries {
		if q.Name == "" {
			return nil, wizerr.New(wizerr.CodeMalformedEntry,
				"only named queries can be saved: put a %s entry before the first filter", entry.TypeSavedQuery)
		}
	}

	s, err := store.Open(firstNonEmpty(opts.Store, opts.config().Store.Path))
	if err != nil {
		return nil, err
	}
	defer s.Close()

	ids := make([]string, 0, len(queries))
	for _, q := range queries {
		id, err := s.SaveQuery(cmd.Context(), q)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// writeQueries writes the compiled queries as indented JSON.
func writeQueries(filename string, queries []wizard.SavedQuery) error {
	data, err := wizard.Marshal(queries)
	if err != nil {
		return fmt.Errorf("marshaling queries: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// outputCompileSuccess prints the AQL of each compiled group. A lone
// unnamed group prints just its query so the output can be piped.
func outputCompileSuccess(formatter *OutputFormatter, result CompileResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if len(result.Queries) == 1 && result.Queries[0].Name == "" {
		fmt.Fprintln(w, result.Queries[0].Query.Query)
	} else {
		for _, q := range result.Queries {
			name := q.Name
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Fprintf(w, "%s:\n  %s\n", name, q.Query.Query)
		}
	}

	if len(result.Saved) > 0 {
		fmt.Fprintf(w, "Saved %d quer%s\n", len(result.Saved), plural(len(result.Saved), "y", "ies"))
	}
	if outputFile != "" {
		fmt.Fprintf(w, "Wrote compiled queries to %s\n", outputFile)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
