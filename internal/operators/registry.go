package operators

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/roach88/aqlwizard/internal/catalog"
	"github.com/roach88/aqlwizard/internal/wizerr"
)

// Registry maps schema shapes to TypeProfiles. It is immutable after
// NewRegistry returns.
type Registry struct {
	profiles []Profile
	byKey    map[Key]int
}

// NewRegistry builds a registry. Profiles are matched by exact Key; duplicate
// keys or names are rejected.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{
		profiles: make([]Profile, 0, len(profiles)),
		byKey:    make(map[Key]int, len(profiles)),
	}
	names := make(map[string]bool, len(profiles))

	for _, p := range profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("profile with key %s has no name", p.Key)
		}
		if names[p.Name] {
			return nil, fmt.Errorf("duplicate profile name %q", p.Name)
		}
		if other, dup := r.byKey[p.Key]; dup {
			return nil, fmt.Errorf("profiles %q and %q share key %s", r.profiles[other].Name, p.Name, p.Key)
		}
		if len(p.Operators) == 0 {
			return nil, fmt.Errorf("profile %q has no operators", p.Name)
		}
		for _, op := range p.Operators {
			if op.Encoder < 0 || op.Encoder >= EncoderKindCount {
				return nil, fmt.Errorf("operator %q of profile %q has unknown encoder %d", op.Name, p.Name, op.Encoder)
			}
		}

		names[p.Name] = true
		r.byKey[p.Key] = len(r.profiles)
		p.Operators = append([]OperatorSpec(nil), p.Operators...)
		r.profiles = append(r.profiles, p)
	}
	return r, nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(DefaultProfiles()...)
	if err != nil {
		panic("operators: invalid default profiles: " + err.Error())
	}
	return r
})

// Default returns the built-in registry.
func Default() *Registry {
	return defaultRegistry()
}

// Profiles returns every profile in lookup order.
func (r *Registry) Profiles() []Profile {
	return append([]Profile(nil), r.profiles...)
}

// Profile returns the profile with the given name.
func (r *Registry) Profile(name string) (Profile, bool) {
	for _, p := range r.profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// KeyFor computes the lookup key of a field. The dynamic_field format is
// treated as absent.
func KeyFor(f catalog.FieldSchema) Key {
	return Key{
		Type:       f.Type,
		Format:     normalizeFormat(f.Format),
		ItemType:   f.ItemType(),
		ItemFormat: normalizeFormat(f.ItemFormat()),
	}
}

func normalizeFormat(format string) string {
	if format == FormatDynamicField {
		return ""
	}
	return format
}

// ProfileFor returns the profile matching the field's schema shape.
func (r *Registry) ProfileFor(f catalog.FieldSchema) (Profile, error) {
	key := KeyFor(f)
	if i, ok := r.byKey[key]; ok {
		return r.profiles[i], nil
	}

	known := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		known[i] = p.Describe()
	}
	return Profile{}, wizerr.New(wizerr.CodeUnmappedFieldType,
		"no operator profile for field %q with %s, known profiles:", displayName(f), key).
		WithHints(known...)
}

// Resolve finds the operator named op in the field's profile. Matching is
// case-insensitive and ignores surrounding space.
func (r *Registry) Resolve(f catalog.FieldSchema, op string) (OperatorSpec, error) {
	p, err := r.ProfileFor(f)
	if err != nil {
		return OperatorSpec{}, err
	}

	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(op))
	for _, spec := range p.Operators {
		if fold.String(spec.Name) == want {
			return spec, nil
		}
	}

	return OperatorSpec{}, wizerr.New(wizerr.CodeInvalidOperator,
		"invalid operator %q for field %q with type %q, valid operators:", strings.TrimSpace(op), displayName(f), p.Name).
		WithHints(uniqueNames(p)...)
}

func displayName(f catalog.FieldSchema) string {
	if f.IsSub() {
		return fmt.Sprintf("%s (sub field of %s)", f.Name, f.Parent)
	}
	return f.Name
}

func uniqueNames(p Profile) []string {
	seen := make(map[string]bool, len(p.Operators))
	var names []string
	for _, name := range p.Names() {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
