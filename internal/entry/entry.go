// Package entry normalizes the wizard's input surfaces into ordered entries.
//
// Three surfaces are supported: line-oriented key=value text, structured
// records (JSON), and CSV rows. Each parses into a list of Groups. Inputs
// without saved_query markers produce a single unnamed Group.
package entry

import (
	"fmt"
	"strings"

	"github.com/roach88/aqlwizard/internal/wizerr"
)

// Type is the kind of an entry.
type Type string

const (
	// TypeSimple is a single field/operator/value condition.
	TypeSimple Type = "simple"

	// TypeComplex is a match over sub-fields of a complex field.
	TypeComplex Type = "complex"

	// TypeComplexSub adds one sub-field condition to the preceding complex entry.
	TypeComplexSub Type = "complex_sub"

	// TypeSavedQuery starts a named group.
	TypeSavedQuery Type = "saved_query"

	// TypeBracket opens a bracket before the next entry or closes it after
	// the previous one.
	TypeBracket Type = "bracket"
)

// Types lists every entry type in display order.
var Types = []Type{TypeSimple, TypeComplex, TypeComplexSub, TypeSavedQuery, TypeBracket}

// ParseType validates an entry type name.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Types {
		if t == valid {
			return t, nil
		}
	}
	names := make([]string, len(Types))
	for i, valid := range Types {
		names[i] = string(valid)
	}
	return "", wizerr.New(wizerr.CodeMalformedEntry, "invalid type %q, valid types:", s).
		WithHints(names...)
}

// Flag is a logical or bracket marker on an entry.
type Flag string

const (
	FlagAnd   Flag = "&"
	FlagOr    Flag = "|"
	FlagNot   Flag = "!"
	FlagLeft  Flag = "("
	FlagRight Flag = ")"
)

// Flags lists the flags in the order they are scanned off the front of values.
var Flags = []Flag{FlagAnd, FlagOr, FlagNot, FlagLeft, FlagRight}

var flagWords = map[string]Flag{
	"&":             FlagAnd,
	"and":           FlagAnd,
	"|":             FlagOr,
	"or":            FlagOr,
	"!":             FlagNot,
	"not":           FlagNot,
	"(":             FlagLeft,
	"bracket_left":  FlagLeft,
	")":             FlagRight,
	"bracket_right": FlagRight,
}

// ParseFlag accepts a flag symbol or its word form.
func ParseFlag(s string) (Flag, error) {
	f, ok := flagWords[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", wizerr.New(wizerr.CodeMalformedEntry,
			"invalid flag %q, valid flags: not, and, or, bracket_left, bracket_right, !, &, |, (, )", s)
	}
	return f, nil
}

// ParseFlags splits s on spaces and commas and parses every flag.
func ParseFlags(s string) ([]Flag, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	var flags []Flag
	for _, field := range fields {
		f, err := ParseFlag(field)
		if err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, nil
}

// Entry is one normalized input entry.
type Entry struct {
	Type   Type   `json:"type"`
	Value  string `json:"value"`
	Flags  []Flag `json:"flags,omitempty"`
	Source string `json:"source,omitempty"`
}

// HasFlag reports whether f was supplied explicitly.
func (e Entry) HasFlag(f Flag) bool {
	for _, have := range e.Flags {
		if have == f {
			return true
		}
	}
	return false
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %q", e.Type, e.Value)
}

// ComplexSep separates a complex field from its sub-field conditions.
const ComplexSep = " // "

// DefaultFieldsToken in a group's display fields expands to the data
// source's default fields.
const DefaultFieldsToken = "default"

// Group is a named saved query and its filter entries. The unnamed group
// holds entries that precede any saved_query marker.
type Group struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Fields       []string `json:"fields,omitempty"`
	Private      bool     `json:"private,omitempty"`
	AlwaysCached bool     `json:"always_cached,omitempty"`
	Entries      []Entry  `json:"entries"`
	Source       string   `json:"source,omitempty"`
}

// Entries flattens groups into one entry list, dropping group metadata.
func Entries(groups []Group) []Entry {
	var all []Entry
	for _, g := range groups {
		all = append(all, g.Entries...)
	}
	return all
}

// grouper assembles entries into groups, folding bracket and complex_sub
// entries into their neighbours.
type grouper struct {
	groups  []Group
	pending string
}

func (g *grouper) current() *Group {
	if len(g.groups) == 0 {
		g.groups = append(g.groups, Group{})
	}
	return &g.groups[len(g.groups)-1]
}

func (g *grouper) start(grp Group) error {
	if err := g.checkPending(); err != nil {
		return err
	}
	g.groups = append(g.groups, grp)
	return nil
}

func (g *grouper) add(e Entry) error {
	switch e.Type {
	case TypeSavedQuery:
		return g.start(Group{Name: strings.TrimSpace(e.Value), Source: e.Source})
	case TypeBracket:
		return g.bracket(e)
	case TypeComplexSub:
		return g.sub(e)
	}

	if g.pending != "" {
		e.Flags = append([]Flag{FlagLeft}, e.Flags...)
		g.pending = ""
	}
	cur := g.current()
	cur.Entries = append(cur.Entries, e)
	return nil
}

func (g *grouper) bracket(e Entry) error {
	switch strings.TrimSpace(e.Value) {
	case string(FlagLeft):
		if g.pending != "" {
			return wizerr.New(wizerr.CodeMalformedEntry, "bracket opened twice with no entry in between")
		}
		g.pending = e.Source
		return nil
	case string(FlagRight):
		if g.pending != "" {
			return wizerr.New(wizerr.CodeMalformedEntry, "bracket closed right after it was opened")
		}
		cur := g.current()
		if len(cur.Entries) == 0 {
			return wizerr.New(wizerr.CodeMalformedEntry, "bracket closed with no entry before it")
		}
		last := &cur.Entries[len(cur.Entries)-1]
		last.Flags = append(last.Flags, FlagRight)
		return nil
	}
	return wizerr.New(wizerr.CodeMalformedEntry, "bracket value must be %q or %q, not %q",
		FlagLeft, FlagRight, e.Value)
}

func (g *grouper) sub(e Entry) error {
	if len(e.Flags) > 0 {
		return wizerr.New(wizerr.CodeMalformedEntry, "flags are not allowed on %s entries", TypeComplexSub)
	}
	value := strings.TrimSpace(e.Value)
	if value == "" {
		return wizerr.New(wizerr.CodeMalformedEntry, "empty value for %s entry", TypeComplexSub)
	}

	cur := g.current()
	for i := len(cur.Entries) - 1; i >= 0; i-- {
		if cur.Entries[i].Type == TypeComplex {
			cur.Entries[i].Value = strings.TrimRight(cur.Entries[i].Value, " ") + ComplexSep + value
			return nil
		}
	}
	return wizerr.New(wizerr.CodeMalformedEntry, "%s entry has no %s entry before it", TypeComplexSub, TypeComplex)
}

func (g *grouper) checkPending() error {
	if g.pending == "" {
		return nil
	}
	return wizerr.New(wizerr.CodeMalformedEntry, "bracket opened with no entry after it").At(g.pending)
}

func (g *grouper) finish() ([]Group, error) {
	if err := g.checkPending(); err != nil {
		return nil, err
	}
	groups := g.groups[:0:0]
	for _, grp := range g.groups {
		if grp.Name == "" && len(grp.Entries) == 0 {
			continue
		}
		groups = append(groups, grp)
	}
	return groups, nil
}
