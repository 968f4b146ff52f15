package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/aqlwizard/internal/catalog"
	"github.com/roach88/aqlwizard/internal/operators"
)

// FieldView is the listing form of a catalog field.
type FieldView struct {
	Name      string      `json:"name"`
	Title     string      `json:"title,omitempty"`
	Profile   string      `json:"profile,omitempty"`
	Complex   bool        `json:"complex,omitempty"`
	SubFields []FieldView `json:"sub_fields,omitempty"`
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "fields [source]",
		Short: "List catalog fields and their operator profiles",
		Long: `List the fields of a data source with the type profile that decides
which operators they accept. Complex fields list their sub-fields.

The source defaults to the catalog's default_source.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(rootOpts, catalogPath, args, cmd)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "field catalog file (.yaml or .cue)")

	return cmd
}

func runFields(opts *RootOptions, catalogPath string, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.config()

	catalogPath = firstNonEmpty(catalogPath, cfg.Catalog.Path)
	if catalogPath == "" {
		return formatter.CommandError(ErrCodeCatalog,
			fmt.Errorf("no field catalog: use --catalog or set catalog.path"), "")
	}
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return formatter.CommandError(ErrCodeCatalog, err, "")
	}

	source := cat.DefaultSource()
	if len(args) == 1 {
		source = args[0]
	}
	fields, err := cat.Fields(source)
	if err != nil {
		return formatter.CommandError(ErrCodeUnknownTopic, err, "")
	}

	registry := operators.Default()
	views := make([]FieldView, 0, len(fields))
	for _, f := range fields {
		if f.IsAll {
			continue
		}
		v := fieldView(registry, f)
		for _, sub := range f.SubFields {
			v.SubFields = append(v.SubFields, fieldView(registry, sub))
		}
		views = append(views, v)
	}

	if formatter.Format == "json" {
		return formatter.Success(views)
	}

	var rows [][]string
	for _, v := range views {
		rows = append(rows, []string{v.Name, orDash(v.Profile), v.Title})
		for _, sub := range v.SubFields {
			rows = append(rows, []string{"  // " + sub.Name, orDash(sub.Profile), sub.Title})
		}
	}
	return writeTable(formatter.Writer, nil, rows)
}

func fieldView(registry *operators.Registry, f catalog.FieldSchema) FieldView {
	v := FieldView{Name: f.Name, Title: f.Title, Complex: f.IsComplex}
	if p, err := registry.ProfileFor(f); err == nil {
		v.Profile = p.Name
	}
	return v
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
