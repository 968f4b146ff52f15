package wizard

import (
	"strings"

	"github.com/roach88/aqlwizard/internal/catalog"
	"github.com/roach88/aqlwizard/internal/entry"
	"github.com/roach88/aqlwizard/internal/wizerr"
)

// CompileGroups compiles every group into a SavedQuery. Errors name the
// group they came from.
func (w *Wizard) CompileGroups(groups []entry.Group) ([]SavedQuery, error) {
	out := make([]SavedQuery, 0, len(groups))
	for _, g := range groups {
		sq, err := w.compileGroup(g)
		if err != nil {
			if we, ok := wizerr.As(err); ok {
				return nil, we.In(g.Name)
			}
			return nil, err
		}
		out = append(out, sq)
	}
	return out, nil
}

func (w *Wizard) compileGroup(g entry.Group) (SavedQuery, error) {
	source := g.Source
	if source == "" {
		source = entry.SourceRecords
	}
	q, err := w.Compile(g.Entries, source)
	if err != nil {
		return SavedQuery{}, err
	}

	fields, err := w.displayFields(g.Fields)
	if err != nil {
		return SavedQuery{}, wizerr.Locate(err, g.Source, g.Name)
	}

	sq := SavedQuery{
		ID:           w.ids.NewID(),
		Name:         g.Name,
		Description:  g.Description,
		Tags:         nonNil(g.Tags),
		Fields:       fields,
		Private:      g.Private,
		AlwaysCached: g.AlwaysCached,
		Query:        *q,
	}
	w.log.Info("compiled saved query", "name", sq.Name, "id", sq.ID, "expressions", len(q.Expressions))
	return sq, nil
}

// displayFields expands the "default" token into the data source's default
// fields at the position of its first occurrence and validates the rest.
// No fields at all means the defaults.
func (w *Wizard) displayFields(fields []string) ([]string, error) {
	if len(fields) == 0 {
		fields = []string{entry.DefaultFieldsToken}
	}

	var (
		out      []string
		seen     = make(map[string]bool)
		expanded bool
	)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	for _, name := range fields {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.EqualFold(name, entry.DefaultFieldsToken) {
			if !expanded {
				expanded = true
				for _, d := range w.catalog.DefaultFields(w.source) {
					add(d)
				}
			}
			continue
		}
		f, err := w.catalog.Resolve(name)
		if err != nil {
			return nil, err
		}
		if f.Source != w.catalog.DefaultSource() {
			add(f.Source + catalog.SourceSep + f.Name)
			continue
		}
		add(f.Name)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
