// Package wizard compiles normalized entries into AQL and expression trees.
//
// The pipeline for each entry stream is:
//
//	tracker.Track -> catalog resolve -> operators.Resolve -> encode -> aql render
//
// Tracking runs over the whole stream before anything is resolved, since a
// later entry may close an earlier entry's bracket. Any failure aborts the
// whole compilation; there are no partial results.
package wizard

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/aqlwizard/internal/aql"
	"github.com/roach88/aqlwizard/internal/catalog"
	"github.com/roach88/aqlwizard/internal/encode"
	"github.com/roach88/aqlwizard/internal/entry"
	"github.com/roach88/aqlwizard/internal/lookup"
	"github.com/roach88/aqlwizard/internal/operators"
	"github.com/roach88/aqlwizard/internal/tracker"
	"github.com/roach88/aqlwizard/internal/wizerr"
)

// IDGenerator hands out saved query identifiers.
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}

// Wizard compiles entries against one catalog snapshot. Lookup lists are
// fetched at most once per Wizard.
type Wizard struct {
	catalog  *catalog.Catalog
	registry *operators.Registry
	encoder  *encode.Encoder
	ids      IDGenerator
	source   string
	log      *slog.Logger
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithLogger sets the logger. Entries are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		w.log = logger
	}
}

// WithRegistry replaces the default operator registry.
func WithRegistry(r *operators.Registry) Option {
	return func(w *Wizard) {
		w.registry = r
	}
}

// WithSource sets the data source whose default display fields replace the
// "default" token in saved queries. It defaults to the catalog's default
// source.
func WithSource(name string) Option {
	return func(w *Wizard) {
		w.source = name
	}
}

// WithIDs sets the saved query ID generator. The default generates random
// UUIDs.
func WithIDs(ids IDGenerator) Option {
	return func(w *Wizard) {
		w.ids = ids
	}
}

// New creates a Wizard. A nil lookups behaves like empty candidate lists.
func New(cat *catalog.Catalog, lookups lookup.Provider, opts ...Option) *Wizard {
	w := &Wizard{
		catalog:  cat,
		registry: operators.Default(),
		ids:      uuidGenerator{},
		source:   cat.DefaultSource(),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	if lookups == nil {
		lookups = lookup.Static{}
	}
	w.encoder = encode.New(lookup.Memoize(lookups, lookup.WithLogger(w.log)))
	return w
}

// Compile tracks and compiles entries. Entries without a source locator are
// located as "<source> entry #i/n".
func (w *Wizard) Compile(entries []entry.Entry, source string) (*Query, error) {
	if source == "" {
		source = entry.SourceRecords
	}
	if len(entries) == 0 {
		return nil, wizerr.New(wizerr.CodeMalformedEntry, "no entries to compile").At(source)
	}

	located := make([]entry.Entry, len(entries))
	for i, e := range entries {
		if e.Source == "" {
			e.Source = fmt.Sprintf("%s entry #%d/%d", source, i+1, len(entries))
		}
		switch e.Type {
		case entry.TypeSimple, entry.TypeComplex:
		default:
			return nil, wizerr.New(wizerr.CodeMalformedEntry,
				"entry type %q can not be compiled, valid types: %s, %s",
				e.Type, entry.TypeSimple, entry.TypeComplex).At(e.Source)
		}
		located[i] = e
	}

	tracked, _, err := tracker.Track(located, w.log)
	if err != nil {
		return nil, err
	}

	q := &Query{Expressions: make([]Expression, 0, len(tracked))}
	filters := make([]string, 0, len(tracked))
	for idx, t := range tracked {
		var expr Expression
		if t.Type == entry.TypeComplex {
			expr, err = w.complex(t, idx)
		} else {
			expr, err = w.simple(t, idx)
		}
		if err != nil {
			return nil, wizerr.Locate(err, t.Source, "")
		}
		q.Expressions = append(q.Expressions, expr)
		filters = append(filters, expr.Filter)
	}
	q.Query = aql.Join(filters)

	w.log.Debug("compiled query", "source", source, "entries", len(tracked), "query", q.Query)
	return q, nil
}

// condition is one resolved, encoded and rendered field comparison.
type condition struct {
	field    catalog.FieldSchema
	op       operators.OperatorSpec
	value    encode.Result
	rendered string
}

func (c condition) child(i int) Child {
	return Child{
		Condition: c.rendered,
		Expression: ChildExpression{
			CompOp: c.op.CompOp,
			Field:  c.op.ExprField(c.field.Name),
			Value:  c.value.Value,
		},
		I: i,
	}
}

// condition resolves op against f and encodes the value.
func (w *Wizard) condition(f catalog.FieldSchema, op, value string) (condition, error) {
	spec, err := w.registry.Resolve(f, op)
	if err != nil {
		return condition{}, err
	}
	res, err := w.encoder.Op(spec, f, value)
	if err != nil {
		return condition{}, err
	}

	w.log.Debug("resolved condition",
		"field", f.Name,
		"operator", spec.Name,
		"encoder", spec.Encoder.String(),
	)
	return condition{
		field:    f,
		op:       spec,
		value:    res,
		rendered: aql.Render(spec.Template, aqlName(f), res),
	}, nil
}

func (w *Wizard) simple(t tracker.Tracked, idx int) (Expression, error) {
	name, op, value, err := splitSimple(t.Value)
	if err != nil {
		return Expression{}, err
	}
	f, err := w.catalog.Resolve(name)
	if err != nil {
		return Expression{}, err
	}
	c, err := w.condition(f, op, value)
	if err != nil {
		return Expression{}, err
	}

	expr := w.expression(t, idx, f, aql.Decorate(c.rendered, t.Not, t.Left, t.Right, t.Join))
	expr.Field = c.op.ExprField(f.Name)
	expr.CompOp = c.op.CompOp
	expr.Value = c.value.Value
	expr.Children = []Child{c.child(0)}
	return expr, nil
}

func (w *Wizard) complex(t tracker.Tracked, idx int) (Expression, error) {
	name, subs, err := splitComplex(t.Value)
	if err != nil {
		return Expression{}, err
	}
	f, err := w.catalog.ResolveComplex(name)
	if err != nil {
		return Expression{}, err
	}
	if len(subs) == 0 {
		return Expression{}, wizerr.New(wizerr.CodeEmptyComplex,
			"complex field %q needs at least one sub-field filter, as in %q",
			f.Name, f.Name+entry.ComplexSep+"SUB-FIELD OPERATOR VALUE")
	}

	children := make([]Child, 0, len(subs))
	rendered := make([]string, 0, len(subs))
	for i, raw := range subs {
		c, err := w.sub(f, raw)
		if err != nil {
			return Expression{}, subError(err, i, len(subs), raw)
		}
		children = append(children, c.child(i))
		rendered = append(rendered, c.rendered)
	}

	expr := w.expression(t, idx, f, aql.Decorate(aql.Complex(aqlName(f), rendered), t.Not, t.Left, t.Right, t.Join))
	expr.Field = f.Name
	expr.Children = children
	expr.Context = ContextObject
	return expr, nil
}

func (w *Wizard) sub(parent catalog.FieldSchema, raw string) (condition, error) {
	name, op, value, err := splitSimple(raw)
	if err != nil {
		return condition{}, err
	}
	f, err := w.catalog.ResolveSub(parent, name)
	if err != nil {
		return condition{}, err
	}
	return w.condition(f, op, value)
}

// aqlName is the name a field is queried by. Sub-fields are matched inside
// their parent's match([...]) and keep their short names.
func aqlName(f catalog.FieldSchema) string {
	if f.IsSub() || f.QualifiedName == "" {
		return f.Name
	}
	return f.QualifiedName
}

// expression fills the parts every expression shares.
func (w *Wizard) expression(t tracker.Tracked, idx int, f catalog.FieldSchema, filter string) Expression {
	return Expression{
		BracketWeight: t.Weight,
		FieldType:     f.ExprType,
		Filter:        filter,
		LeftBracket:   t.Left,
		LogicOp:       t.Join,
		Not:           t.Not,
		RightBracket:  t.Right,
		I:             idx,
	}
}

func subError(err error, i, n int, raw string) error {
	we, ok := wizerr.As(err)
	if !ok {
		return err
	}
	we.Message = fmt.Sprintf("sub-field filter #%d/%d %q: %s", i+1, n, raw, we.Message)
	return we
}
