package encode

import (
	"golang.org/x/text/cases"

	"github.com/roach88/aqlwizard/internal/catalog"
	"github.com/roach88/aqlwizard/internal/wizerr"
)

// candidateList names the external list an encoder validates against.
type candidateList int

const (
	listNone candidateList = iota
	listTags
	listDataSources
	listConnectionLabels
)

func (l candidateList) String() string {
	switch l {
	case listTags:
		return "tags"
	case listDataSources:
		return "data sources"
	case listConnectionLabels:
		return "connection labels"
	}
	return "none"
}

// candidates is the set a value must belong to. An empty set accepts any
// value. When raw is set, a match yields the raw value at the same index
// instead of the display name.
type candidates struct {
	names []string
	raw   []string
}

func (c candidates) match(value string) (string, error) {
	if len(c.names) == 0 {
		return value, nil
	}

	fold := cases.Fold()
	want := fold.String(value)
	for i, name := range c.names {
		if fold.String(name) == want {
			if c.raw != nil {
				return c.raw[i], nil
			}
			return name, nil
		}
	}
	return "", wizerr.New(wizerr.CodeInvalidChoice, "invalid choice %q, valid choices:", value).
		WithHints(c.names...)
}

// candidates picks the enum for f: item enum, then field enum, then the
// external list. A required external list that is empty is an error.
func (e *Encoder) candidates(f catalog.FieldSchema, list candidateList) (candidates, error) {
	if enum := f.ItemEnum(); len(enum) > 0 {
		return candidates{names: enum}, nil
	}
	if len(f.Enum) > 0 {
		return candidates{names: f.Enum}, nil
	}
	if list == listNone {
		return candidates{}, nil
	}

	var (
		c   candidates
		err error
	)
	switch list {
	case listTags:
		c.names, err = e.tags()
	case listConnectionLabels:
		c.names, err = e.connectionLabels()
	case listDataSources:
		c.names, c.raw, err = e.dataSources()
	}
	if err != nil {
		return candidates{}, wizerr.Wrap(wizerr.CodeNoCandidates, err, "fetching %s", list)
	}
	if len(c.names) == 0 {
		return candidates{}, wizerr.New(wizerr.CodeNoCandidates, "no %s available to validate %q against", list, f.Name)
	}
	return c, nil
}

// choose validates v against the field's own enums.
func (e *Encoder) choose(f catalog.FieldSchema, v string, list candidateList) (string, error) {
	c, err := e.candidates(f, list)
	if err != nil {
		return "", err
	}
	return c.match(v)
}

func (e *Encoder) tags() ([]string, error) {
	if e.Lookups == nil {
		return nil, nil
	}
	return e.Lookups.Tags()
}

func (e *Encoder) connectionLabels() ([]string, error) {
	if e.Lookups == nil {
		return nil, nil
	}
	return e.Lookups.ConnectionLabels()
}

func (e *Encoder) dataSources() ([]string, []string, error) {
	if e.Lookups == nil {
		return nil, nil, nil
	}
	choices, err := e.Lookups.DataSources()
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, len(choices))
	raw := make([]string, len(choices))
	for i, c := range choices {
		names[i] = c.Name
		raw[i] = c.Raw
	}
	return names, raw, nil
}
