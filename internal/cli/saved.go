package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/aqlwizard/internal/store"
)

// SavedOptions holds flags for the saved commands.
type SavedOptions struct {
	*RootOptions
	Store string // sqlite file, overrides store.path
}

// NewSavedCommand creates the saved command and its subcommands.
func NewSavedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SavedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage stored saved queries",
		Long: `List, show and delete saved queries stored by "compile --save".

Queries are referenced by id or by name; names match case-insensitively.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Store, "store", "", "saved query database")

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List saved queries",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSavedList(opts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "show <id|name>",
		Short:         "Show a saved query",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSavedShow(opts, args[0], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "delete <id|name>",
		Short:         "Delete a saved query",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSavedDelete(opts, args[0], cmd)
		},
	})

	return cmd
}

func (o *SavedOptions) open() (*store.Store, error) {
	return store.Open(firstNonEmpty(o.Store, o.config().Store.Path))
}

// storeError reports a store failure, using E005 for unknown references.
func storeError(formatter *OutputFormatter, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return formatter.CommandError(ErrCodeNotFound, err, "")
	}
	return formatter.CommandError(ErrCodeStoreFailed, err, "")
}

func runSavedList(opts *SavedOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	s, err := opts.open()
	if err != nil {
		return storeError(formatter, err)
	}
	defer s.Close()

	records, err := s.ListQueries(cmd.Context())
	if err != nil {
		return storeError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(records)
	}
	if len(records) == 0 {
		fmt.Fprintln(formatter.Writer, "No saved queries.")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Name, r.ID, strconv.Itoa(r.Revision), strings.Join(r.Tags, ",")})
	}
	return writeTable(formatter.Writer, []string{"NAME", "ID", "REVISION", "TAGS"}, rows)
}

func runSavedShow(opts *SavedOptions, ref string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	s, err := opts.open()
	if err != nil {
		return storeError(formatter, err)
	}
	defer s.Close()

	r, err := s.GetQuery(cmd.Context(), ref)
	if err != nil {
		return storeError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(r)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Name:        %s\n", r.Name)
	fmt.Fprintf(w, "ID:          %s\n", r.ID)
	fmt.Fprintf(w, "Revision:    %d\n", r.Revision)
	if r.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", r.Description)
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(w, "Tags:        %s\n", strings.Join(r.Tags, ", "))
	}
	fmt.Fprintf(w, "Fields:      %s\n", strings.Join(r.Fields, ", "))
	fmt.Fprintf(w, "Private:     %t\n", r.Private)
	fmt.Fprintf(w, "Cached:      %t\n", r.AlwaysCached)
	fmt.Fprintf(w, "Query:\n  %s\n", r.Query.Query)
	return nil
}

func runSavedDelete(opts *SavedOptions, ref string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	s, err := opts.open()
	if err != nil {
		return storeError(formatter, err)
	}
	defer s.Close()

	if err := s.DeleteQuery(cmd.Context(), ref); err != nil {
		return storeError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"deleted": ref})
	}
	fmt.Fprintf(formatter.Writer, "✓ Deleted %s\n", ref)
	return nil
}
