// Package operators holds the immutable operator registry: every AQL
// operator the wizard can render, grouped into TypeProfiles keyed by the
// shape of a field schema.
//
// The registry is built once and only read afterwards, so concurrent
// lookups need no locking.
package operators

import "fmt"

// EncoderKind names the value encoder an operator feeds its raw value
// through. The set is closed; encode keeps a function for every kind.
type EncoderKind int

const (
	EncodeStr EncoderKind = iota
	EncodeInt
	EncodeNone
	EncodeRawVersion
	EncodeDate
	EncodeIP
	EncodeSubnet
	EncodeInSubnet
	EncodeEscapedRegex
	EncodeTags
	EncodeAdapters
	EncodeCnxLabel
	EncodeCSVStr
	EncodeCSVInt
	EncodeCSVIP
	EncodeCSVSubnet
	EncodeCSVTags
	EncodeCSVAdapters
	EncodeCSVCnxLabel
	EncodeSavedQuery
	EncodeDataScope

	// EncoderKindCount is the number of encoder kinds. Keep it last.
	EncoderKindCount
)

var encoderKindNames = [...]string{
	EncodeStr:          "str",
	EncodeInt:          "int",
	EncodeNone:         "none",
	EncodeRawVersion:   "raw_version",
	EncodeDate:         "dt",
	EncodeIP:           "ip",
	EncodeSubnet:       "subnet",
	EncodeInSubnet:     "in_subnet",
	EncodeEscapedRegex: "str_escaped_regex",
	EncodeTags:         "tags",
	EncodeAdapters:     "adapters",
	EncodeCnxLabel:     "cnx_label",
	EncodeCSVStr:       "csv_str",
	EncodeCSVInt:       "csv_int",
	EncodeCSVIP:        "csv_ip",
	EncodeCSVSubnet:    "csv_subnet",
	EncodeCSVTags:      "csv_tags",
	EncodeCSVAdapters:  "csv_adapters",
	EncodeCSVCnxLabel:  "csv_cnx_label",
	EncodeSavedQuery:   "sq",
	EncodeDataScope:    "data_scope",
}

// Adding a kind without a name breaks the build here.
var _ = [1]struct{}{}[len(encoderKindNames)-int(EncoderKindCount)]

func (k EncoderKind) String() string {
	if k < 0 || k >= EncoderKindCount {
		return fmt.Sprintf("EncoderKind(%d)", int(k))
	}
	return encoderKindNames[k]
}

// IsCSV reports whether the encoder splits its raw value into a list.
func (k EncoderKind) IsCSV() bool {
	switch k {
	case EncodeCSVStr, EncodeCSVInt, EncodeCSVIP, EncodeCSVSubnet,
		EncodeCSVTags, EncodeCSVAdapters, EncodeCSVCnxLabel:
		return true
	}
	return false
}

// Template placeholders.
const (
	PlaceholderField = "{field}"
	PlaceholderValue = "{value}"
	PlaceholderStart = "{start}"
	PlaceholderEnd   = "{end}"
)

// OperatorSpec is one operator as a user names it, how it renders, and
// which encoder prepares its value.
type OperatorSpec struct {
	// Name is what users type ("contains", "equals", ...).
	Name string `json:"name"`

	// CompOp is the comparison code the GUI query builder expects.
	CompOp string `json:"compOp"`

	// Template is the AQL fragment with {field}, {value}, {start} and {end}
	// placeholders.
	Template string `json:"template"`

	Encoder EncoderKind `json:"-"`

	// FieldOverride replaces the field name in the expression tree when set.
	FieldOverride string `json:"fieldOverride,omitempty"`
}

// ExprField returns the field name recorded in expressions.
func (o OperatorSpec) ExprField(field string) string {
	if o.FieldOverride != "" {
		return o.FieldOverride
	}
	return field
}

// Key identifies the schema shape a TypeProfile applies to. Empty strings
// stand for "not set".
type Key struct {
	Type       string
	Format     string
	ItemType   string
	ItemFormat string
}

func (k Key) String() string {
	return fmt.Sprintf("type=%q, format=%q, items type=%q, items format=%q",
		k.Type, k.Format, k.ItemType, k.ItemFormat)
}

// Profile is the ordered operator whitelist for one schema shape.
type Profile struct {
	Name      string
	Key       Key
	Operators []OperatorSpec
}

// Names returns the operator names in whitelist order.
func (p Profile) Names() []string {
	names := make([]string, len(p.Operators))
	for i, op := range p.Operators {
		names[i] = op.Name
	}
	return names
}

// Describe renders "name (type/format/items type/items format)".
func (p Profile) Describe() string {
	return fmt.Sprintf("%s (%s/%s/%s/%s)", p.Name,
		orNone(p.Key.Type), orNone(p.Key.Format), orNone(p.Key.ItemType), orNone(p.Key.ItemFormat))
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
