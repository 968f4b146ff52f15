package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/aqlwizard/internal/operators"
)

// ProfileView is the listing form of a type profile.
type ProfileView struct {
	Name       string                   `json:"name"`
	Type       string                   `json:"type"`
	Format     string                   `json:"format,omitempty"`
	ItemType   string                   `json:"item_type,omitempty"`
	ItemFormat string                   `json:"item_format,omitempty"`
	Operators  []operators.OperatorSpec `json:"operators"`
}

func newProfileView(p operators.Profile) ProfileView {
	return ProfileView{
		Name:       p.Name,
		Type:       p.Key.Type,
		Format:     p.Key.Format,
		ItemType:   p.Key.ItemType,
		ItemFormat: p.Key.ItemFormat,
		Operators:  p.Operators,
	}
}

// NewOperatorsCommand creates the operators command.
func NewOperatorsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "operators [profile]",
		Short: "List type profiles and their operators",
		Long: `List the operator whitelist of every type profile.

A profile is picked by a field's type, format, item type and item
format. With a profile name, its operators are shown with their AQL
templates.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperators(rootOpts, args, cmd)
		},
	}
}

func runOperators(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	registry := operators.Default()

	if len(args) == 1 {
		p, ok := registry.Profile(args[0])
		if !ok {
			names := make([]string, 0, len(registry.Profiles()))
			for _, p := range registry.Profiles() {
				names = append(names, p.Name)
			}
			_ = formatter.Error(ErrCodeUnknownTopic, fmt.Sprintf("unknown profile %q", args[0]), names)
			return NewExitError(ExitCommandError, fmt.Sprintf("%s: unknown profile %q", ErrCodeUnknownTopic, args[0]))
		}
		if formatter.Format == "json" {
			return formatter.Success(newProfileView(p))
		}

		fmt.Fprintln(formatter.Writer, p.Describe())
		rows := make([][]string, 0, len(p.Operators))
		for _, op := range p.Operators {
			rows = append(rows, []string{"  " + op.Name, op.Template})
		}
		return writeTable(formatter.Writer, nil, rows)
	}

	profiles := registry.Profiles()
	if formatter.Format == "json" {
		views := make([]ProfileView, len(profiles))
		for i, p := range profiles {
			views[i] = newProfileView(p)
		}
		return formatter.Success(views)
	}

	for _, p := range profiles {
		fmt.Fprintf(formatter.Writer, "%s\n  %s\n", p.Describe(), joinNames(p.Names()))
	}
	return nil
}

// joinNames joins operator names, skipping repeats.
func joinNames(names []string) string {
	seen := make(map[string]bool, len(names))
	out := ""
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		if out != "" {
			out += ", "
		}
		out += n
	}
	return out
}
