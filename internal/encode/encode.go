// Package encode turns raw textual values into the literal an operator
// template embeds and the structured value recorded in expressions.
//
// Every operators.EncoderKind has exactly one function in a fixed table;
// a kind without a function fails the build or, for holes in the middle of
// the table, panics at init.
package encode

import (
	"fmt"
	"strings"

	"github.com/roach88/aqlwizard/internal/catalog"
	"github.com/roach88/aqlwizard/internal/lookup"
	"github.com/roach88/aqlwizard/internal/operators"
	"github.com/roach88/aqlwizard/internal/wizerr"
)

// Result is an encoded value.
type Result struct {
	// Literal is substituted for {value} in the operator template.
	Literal string

	// Start and End are substituted for {start} and {end}. Only subnet range
	// operators set them.
	Start string
	End   string

	// Value is the structured value recorded in the expression tree.
	Value any
}

// Encoder encodes values, validating against field enums and the lookup
// candidate lists.
type Encoder struct {
	// Lookups supplies tag, data source and connection label candidates.
	// Nil behaves like a provider with empty lists.
	Lookups lookup.Provider
}

// New returns an Encoder backed by lookups.
func New(lookups lookup.Provider) *Encoder {
	return &Encoder{Lookups: lookups}
}

type encodeFunc func(e *Encoder, f catalog.FieldSchema, raw string) (Result, error)

var encoders = [...]encodeFunc{
	operators.EncodeStr:          (*Encoder).encodeStr,
	operators.EncodeInt:          (*Encoder).encodeInt,
	operators.EncodeNone:         (*Encoder).encodeNone,
	operators.EncodeRawVersion:   (*Encoder).encodeRawVersion,
	operators.EncodeDate:         (*Encoder).encodeDate,
	operators.EncodeIP:           (*Encoder).encodeIP,
	operators.EncodeSubnet:       (*Encoder).encodeSubnet,
	operators.EncodeInSubnet:     (*Encoder).encodeInSubnet,
	operators.EncodeEscapedRegex: (*Encoder).encodeEscapedRegex,
	operators.EncodeTags:         (*Encoder).encodeTags,
	operators.EncodeAdapters:     (*Encoder).encodeAdapters,
	operators.EncodeCnxLabel:     (*Encoder).encodeCnxLabel,
	operators.EncodeCSVStr:       (*Encoder).encodeCSVStr,
	operators.EncodeCSVInt:       (*Encoder).encodeCSVInt,
	operators.EncodeCSVIP:        (*Encoder).encodeCSVIP,
	operators.EncodeCSVSubnet:    (*Encoder).encodeCSVSubnet,
	operators.EncodeCSVTags:      (*Encoder).encodeCSVTags,
	operators.EncodeCSVAdapters:  (*Encoder).encodeCSVAdapters,
	operators.EncodeCSVCnxLabel:  (*Encoder).encodeCSVCnxLabel,
	operators.EncodeSavedQuery:   (*Encoder).encodeIdentifier,
	operators.EncodeDataScope:    (*Encoder).encodeIdentifier,
}

// One function per kind: the table may be neither shorter nor longer.
var _ = [1]struct{}{}[len(encoders)-int(operators.EncoderKindCount)]

func init() {
	for kind, fn := range encoders {
		if fn == nil {
			panic(fmt.Sprintf("encode: no encoder registered for %s", operators.EncoderKind(kind)))
		}
	}
}

// Registered reports whether kind has an encoder function.
func Registered(kind operators.EncoderKind) bool {
	return kind >= 0 && int(kind) < len(encoders) && encoders[kind] != nil
}

// Encode runs the encoder for kind over raw.
func (e *Encoder) Encode(kind operators.EncoderKind, f catalog.FieldSchema, raw string) (Result, error) {
	if !Registered(kind) {
		return Result{}, wizerr.New(wizerr.CodeInvalidValue, "no encoder for %s", kind)
	}
	return encoders[kind](e, f, raw)
}

// Op encodes raw for the operator op.
func (e *Encoder) Op(op operators.OperatorSpec, f catalog.FieldSchema, raw string) (Result, error) {
	return e.Encode(op.Encoder, f, raw)
}

func same(v string) Result {
	return Result{Literal: v, Value: v}
}

func requireValue(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return wizerr.New(wizerr.CodeInvalidValue, "value must not be empty")
	}
	return nil
}

func (e *Encoder) encodeNone(catalog.FieldSchema, string) (Result, error) {
	return Result{}, nil
}

func (e *Encoder) encodeStr(f catalog.FieldSchema, raw string) (Result, error) {
	if err := requireValue(raw); err != nil {
		return Result{}, err
	}
	v, err := e.choose(f, raw, listNone)
	if err != nil {
		return Result{}, err
	}
	return same(v), nil
}

func (e *Encoder) encodeEscapedRegex(_ catalog.FieldSchema, raw string) (Result, error) {
	if err := requireValue(raw); err != nil {
		return Result{}, err
	}
	return Result{Literal: escapeRegex(raw), Value: raw}, nil
}

func (e *Encoder) encodeInt(f catalog.FieldSchema, raw string) (Result, error) {
	n, text, err := parseNumber(raw)
	if err != nil {
		return Result{}, err
	}
	if _, err := e.choose(f, text, listNone); err != nil {
		return Result{}, err
	}
	return Result{Literal: text, Value: n}, nil
}

func (e *Encoder) encodeRawVersion(_ catalog.FieldSchema, raw string) (Result, error) {
	ordinal, err := rawVersion(raw)
	if err != nil {
		return Result{}, err
	}
	return Result{Literal: ordinal, Value: raw}, nil
}

func (e *Encoder) encodeDate(_ catalog.FieldSchema, raw string) (Result, error) {
	v, err := parseDate(raw)
	if err != nil {
		return Result{}, err
	}
	return same(v), nil
}

func (e *Encoder) encodeIP(_ catalog.FieldSchema, raw string) (Result, error) {
	v, err := parseIP(raw)
	if err != nil {
		return Result{}, err
	}
	return same(v), nil
}

func (e *Encoder) encodeSubnet(_ catalog.FieldSchema, raw string) (Result, error) {
	v, err := parseSubnet(raw)
	if err != nil {
		return Result{}, err
	}
	return same(v), nil
}

func (e *Encoder) encodeInSubnet(_ catalog.FieldSchema, raw string) (Result, error) {
	cidr, start, end, err := subnetRange(raw)
	if err != nil {
		return Result{}, err
	}
	return Result{Literal: cidr, Start: start, End: end, Value: cidr}, nil
}

func (e *Encoder) encodeIdentifier(_ catalog.FieldSchema, raw string) (Result, error) {
	if err := requireValue(raw); err != nil {
		return Result{}, err
	}
	return same(strings.TrimSpace(raw)), nil
}

func (e *Encoder) encodeTags(f catalog.FieldSchema, raw string) (Result, error) {
	return e.encodeChoice(f, raw, listTags)
}

func (e *Encoder) encodeAdapters(f catalog.FieldSchema, raw string) (Result, error) {
	return e.encodeChoice(f, raw, listDataSources)
}

func (e *Encoder) encodeCnxLabel(f catalog.FieldSchema, raw string) (Result, error) {
	return e.encodeChoice(f, raw, listConnectionLabels)
}

// encodeChoice fetches the candidates before looking at the value so an
// empty candidate list is always reported as such.
func (e *Encoder) encodeChoice(f catalog.FieldSchema, raw string, list candidateList) (Result, error) {
	cands, err := e.candidates(f, list)
	if err != nil {
		return Result{}, err
	}
	if err := requireValue(raw); err != nil {
		return Result{}, err
	}
	v, err := cands.match(raw)
	if err != nil {
		return Result{}, err
	}
	return same(v), nil
}

func (e *Encoder) encodeCSVStr(f catalog.FieldSchema, raw string) (Result, error) {
	return e.encodeCSV(f, raw, nil, listNone, true)
}

func (e *Encoder) encodeCSVInt(f catalog.FieldSchema, raw string) (Result, error) {
	convert := func(item string) (string, error) {
		_, text, err := parseNumber(item)
		return text, err
	}
	return e.encodeCSV(f, raw, convert, listNone, false)
}

func (e *Encoder) encodeCSVIP(f catalog.FieldSchema, raw string) (Result, error) {
	return e.encodeCSV(f, raw, parseIP, listNone, true)
}

func (e *Encoder) encodeCSVSubnet(f catalog.FieldSchema, raw string) (Result, error) {
	return e.encodeCSV(f, raw, parseSubnet, listNone, true)
}

func (e *Encoder) encodeCSVTags(f catalog.FieldSchema, raw string) (Result, error) {
	return e.encodeCSV(f, raw, nil, listTags, true)
}

func (e *Encoder) encodeCSVAdapters(f catalog.FieldSchema, raw string) (Result, error) {
	return e.encodeCSV(f, raw, nil, listDataSources, true)
}

func (e *Encoder) encodeCSVCnxLabel(f catalog.FieldSchema, raw string) (Result, error) {
	return e.encodeCSV(f, raw, nil, listConnectionLabels, true)
}

// encodeCSV splits raw on commas and encodes every item. The first failing
// item aborts the whole value.
func (e *Encoder) encodeCSV(f catalog.FieldSchema, raw string, convert func(string) (string, error), list candidateList, quote bool) (Result, error) {
	cands, err := e.candidates(f, list)
	if err != nil {
		return Result{}, err
	}

	items := SplitCSV(raw)
	if len(items) == 0 {
		return Result{}, wizerr.New(wizerr.CodeInvalidValue, "no items found in %q", raw)
	}

	encoded := make([]string, len(items))
	for i, item := range items {
		v, err := encodeItem(item, convert, cands)
		if err != nil {
			return Result{}, itemError(err, i+1, len(items))
		}
		encoded[i] = v
	}

	literals := make([]string, len(encoded))
	for i, v := range encoded {
		if quote {
			literals[i] = `"` + v + `"`
		} else {
			literals[i] = v
		}
	}
	return Result{
		Literal: strings.Join(literals, ", "),
		Value:   strings.Join(encoded, ","),
	}, nil
}

func encodeItem(item string, convert func(string) (string, error), cands candidates) (string, error) {
	if convert != nil {
		v, err := convert(item)
		if err != nil {
			return "", err
		}
		item = v
	}
	return cands.match(item)
}

func itemError(err error, n, total int) error {
	we, ok := wizerr.As(err)
	if !ok {
		return wizerr.Wrap(wizerr.CodeInvalidValue, err, "Error in item #%d of %d", n, total)
	}
	return &wizerr.Error{
		Code:    we.Code,
		Message: fmt.Sprintf("Error in item #%d of %d: %s", n, total, we.Message),
		Hints:   we.Hints,
		Err:     we.Err,
	}
}

// SplitCSV splits s on commas, trimming items and dropping empty ones.
func SplitCSV(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
