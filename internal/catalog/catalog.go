package catalog

import (
	"fmt"
	"strings"

	"github.com/roach88/aqlwizard/internal/wizerr"
)

// Catalog maps data source names to their field schemas.
// It is built once per wizard session and only read afterwards.
type Catalog struct {
	defaultSource string
	order         []string
	sources       map[string]*Source
	index         map[string]map[string]int
}

// New builds a Catalog from sources. defaultSource names the source used for
// unqualified field references; empty means AggSource.
func New(defaultSource string, sources ...Source) (*Catalog, error) {
	if defaultSource == "" {
		defaultSource = AggSource
	}

	c := &Catalog{
		defaultSource: defaultSource,
		sources:       make(map[string]*Source, len(sources)),
		index:         make(map[string]map[string]int, len(sources)),
	}

	for _, src := range sources {
		if src.Name == "" {
			return nil, wizerr.New(wizerr.CodeInvalidInput, "data source with empty name")
		}
		if _, dup := c.sources[src.Name]; dup {
			return nil, wizerr.New(wizerr.CodeInvalidInput, "duplicate data source %q", src.Name)
		}

		s := &Source{
			Name:          src.Name,
			DefaultFields: append([]string(nil), src.DefaultFields...),
			Fields:        make([]FieldSchema, len(src.Fields)),
		}
		idx := make(map[string]int, len(src.Fields)*3)

		for i, f := range src.Fields {
			if f.Name == "" {
				return nil, wizerr.New(wizerr.CodeInvalidInput, "field #%d of data source %q has no name", i+1, src.Name)
			}
			f = normalizeField(f, src.Name, "")
			if _, dup := idx[f.Name]; dup {
				return nil, wizerr.New(wizerr.CodeInvalidInput, "duplicate field %q in data source %q", f.Name, src.Name)
			}
			s.Fields[i] = f

			for _, key := range []string{f.Name, f.QualifiedName, src.Name + SourceSep + f.Name} {
				if _, taken := idx[key]; key != "" && !taken {
					idx[key] = i
				}
			}
		}

		c.sources[src.Name] = s
		c.index[src.Name] = idx
		c.order = append(c.order, src.Name)
	}

	return c, nil
}

// normalizeField fills in derived attributes and recurses into sub-fields.
func normalizeField(f FieldSchema, source, parent string) FieldSchema {
	f.Source = source
	f.Parent = parent
	if f.QualifiedName == "" {
		f.QualifiedName = f.Name
	}
	if f.ExprType == "" {
		if source == AggSource {
			f.ExprType = AggExprType
		} else {
			f.ExprType = source
		}
	}
	if len(f.SubFields) > 0 {
		subs := make([]FieldSchema, len(f.SubFields))
		for i, sub := range f.SubFields {
			subs[i] = normalizeField(sub, source, f.Name)
		}
		f.SubFields = subs
	}
	return f
}

// DefaultSource returns the source used for unqualified references.
func (c *Catalog) DefaultSource() string {
	return c.defaultSource
}

// Sources returns the data source names in declaration order.
func (c *Catalog) Sources() []string {
	return append([]string(nil), c.order...)
}

// Fields returns the fields of a data source.
func (c *Catalog) Fields(source string) ([]FieldSchema, error) {
	s, ok := c.sources[source]
	if !ok {
		return nil, c.unknownSource(source)
	}
	return append([]FieldSchema(nil), s.Fields...), nil
}

// DefaultFields returns the default display fields of a data source.
func (c *Catalog) DefaultFields(source string) []string {
	s, ok := c.sources[source]
	if !ok {
		return nil
	}
	return append([]string(nil), s.DefaultFields...)
}

// Resolve looks up a field reference. References may be prefixed with a data
// source name ("aws:aws_device_type"); otherwise the default source is used.
func (c *Catalog) Resolve(ref string) (FieldSchema, error) {
	source, name := c.split(strings.TrimSpace(ref))

	if name == AllName {
		return FieldSchema{}, reserved(name)
	}

	s, ok := c.sources[source]
	if !ok {
		return FieldSchema{}, c.unknownSource(source)
	}

	i, ok := c.index[source][name]
	if !ok {
		return FieldSchema{}, wizerr.New(wizerr.CodeFieldNotFound,
			"no field named %q in data source %q, valid fields:", name, source).
			WithHints(fieldNames(s.Fields)...)
	}

	f := s.Fields[i]
	if f.isReserved() {
		return FieldSchema{}, reserved(f.Name)
	}
	return f, nil
}

// ResolveComplex resolves ref and requires the field to be complex.
func (c *Catalog) ResolveComplex(ref string) (FieldSchema, error) {
	f, err := c.Resolve(ref)
	if err != nil {
		return FieldSchema{}, err
	}
	if f.IsComplex {
		return f, nil
	}

	var valid []string
	for _, cf := range c.sources[f.Source].Fields {
		if cf.IsComplex && !cf.isReserved() && !strings.HasSuffix(cf.Name, detailsSuffix) {
			valid = append(valid, cf.Name)
		}
	}
	return FieldSchema{}, wizerr.New(wizerr.CodeNotComplex,
		"field %q of data source %q is not a complex field, valid complex fields:", f.Name, f.Source).
		WithHints(valid...)
}

// ResolveSub looks up a sub-field among the declared sub-fields of parent.
func (c *Catalog) ResolveSub(parent FieldSchema, name string) (FieldSchema, error) {
	name = strings.TrimSpace(name)
	for _, sub := range parent.SubFields {
		if sub.Name == name {
			return sub, nil
		}
	}
	return FieldSchema{}, wizerr.New(wizerr.CodeSubFieldNotFound,
		"no sub-field named %q in complex field %q, valid sub-fields:", name, parent.Name).
		WithHints(fieldNames(parent.SubFields)...)
}

// split separates an optional data source prefix from a field name.
// A prefix that names no known source is kept as part of the name so that
// qualified names containing the separator still resolve.
func (c *Catalog) split(ref string) (string, string) {
	prefix, rest, found := strings.Cut(ref, SourceSep)
	if !found {
		return c.defaultSource, ref
	}
	if _, ok := c.sources[prefix]; ok {
		return prefix, rest
	}
	if _, ok := c.index[c.defaultSource][ref]; ok {
		return c.defaultSource, ref
	}
	return prefix, rest
}

func (c *Catalog) unknownSource(source string) error {
	return wizerr.New(wizerr.CodeFieldNotFound, "no data source named %q, valid data sources:", source).
		WithHints(c.order...)
}

func reserved(name string) error {
	return wizerr.New(wizerr.CodeReservedField, "can not use field %q in queries", name)
}

func fieldNames(fields []FieldSchema) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if !f.isReserved() {
			names = append(names, f.Name)
		}
	}
	return names
}

// String renders a short summary, mostly for logging.
func (c *Catalog) String() string {
	parts := make([]string, len(c.order))
	for i, name := range c.order {
		parts[i] = fmt.Sprintf("%s(%d)", name, len(c.sources[name].Fields))
	}
	return "catalog[" + strings.Join(parts, ", ") + "]"
}
