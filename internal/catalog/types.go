package catalog

import "strings"

const (
	// AllName is the reserved "match everything" field name.
	AllName = "all"

	// AggSource is the aggregated data source used for unqualified names.
	AggSource = "agg"

	// AggExprType is the expression field type tag of aggregated fields.
	AggExprType = "axonius"

	// SourceSep separates a data source prefix from a field name ("aws:aws_device_type").
	SourceSep = ":"

	detailsSuffix = "_details"
)

// ItemSchema describes the items of a list-valued field.
type ItemSchema struct {
	Type   string   `yaml:"type" json:"type"`
	Format string   `yaml:"format,omitempty" json:"format,omitempty"`
	Enum   []string `yaml:"enum,omitempty" json:"enum,omitempty"`
}

// FieldSchema is the metadata of one queryable field.
//
// Schemas are immutable once a Catalog has been built from them.
type FieldSchema struct {
	Name          string        `yaml:"name" json:"name"`
	QualifiedName string        `yaml:"name_qual,omitempty" json:"name_qual,omitempty"`
	Title         string        `yaml:"title,omitempty" json:"title,omitempty"`
	Source        string        `yaml:"source,omitempty" json:"source,omitempty"`
	Type          string        `yaml:"type" json:"type"`
	Format        string        `yaml:"format,omitempty" json:"format,omitempty"`
	Items         *ItemSchema   `yaml:"items,omitempty" json:"items,omitempty"`
	Enum          []string      `yaml:"enum,omitempty" json:"enum,omitempty"`
	IsComplex     bool          `yaml:"is_complex,omitempty" json:"is_complex,omitempty"`
	SubFields     []FieldSchema `yaml:"sub_fields,omitempty" json:"sub_fields,omitempty"`
	IsAll         bool          `yaml:"is_all,omitempty" json:"is_all,omitempty"`
	ExprType      string        `yaml:"expr_field_type,omitempty" json:"expr_field_type,omitempty"`

	// Parent is the name of the complex field owning this sub-field.
	Parent string `yaml:"-" json:"parent,omitempty"`
}

// ItemType returns the item type, or "" for scalar fields.
func (f FieldSchema) ItemType() string {
	if f.Items == nil {
		return ""
	}
	return f.Items.Type
}

// ItemFormat returns the item format, or "" for scalar fields.
func (f FieldSchema) ItemFormat() string {
	if f.Items == nil {
		return ""
	}
	return f.Items.Format
}

// ItemEnum returns the item-level enum, if any.
func (f FieldSchema) ItemEnum() []string {
	if f.Items == nil {
		return nil
	}
	return f.Items.Enum
}

// IsSub reports whether the field is a sub-field of a complex field.
func (f FieldSchema) IsSub() bool {
	return f.Parent != ""
}

// isReserved reports whether the field is the all-fields sentinel.
func (f FieldSchema) isReserved() bool {
	return f.IsAll || f.Name == AllName
}

// Describe renders "name (type/format)" for listings.
func (f FieldSchema) Describe() string {
	parts := []string{f.Type}
	if f.Format != "" {
		parts = append(parts, f.Format)
	}
	if f.Items != nil {
		parts = append(parts, "items:"+f.Items.Type)
		if f.Items.Format != "" {
			parts = append(parts, f.Items.Format)
		}
	}
	return f.Name + " (" + strings.Join(parts, "/") + ")"
}

// Source is one data source's set of fields.
type Source struct {
	Name          string        `yaml:"name" json:"name"`
	DefaultFields []string      `yaml:"default_fields,omitempty" json:"default_fields,omitempty"`
	Fields        []FieldSchema `yaml:"fields" json:"fields"`
}

// Document is the on-disk shape of a field catalog (YAML or CUE).
type Document struct {
	DefaultSource string   `yaml:"default_source,omitempty" json:"default_source,omitempty"`
	Sources       []Source `yaml:"sources" json:"sources"`
}
