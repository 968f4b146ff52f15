// Package aql renders AQL filter fragments.
package aql

import (
	"strings"

	"github.com/roach88/aqlwizard/internal/encode"
)

// Logical join codes.
const (
	LogicNone = ""
	LogicAnd  = "and"
	LogicOr   = "or"
)

// Fragment decoration templates; %s is the fragment being wrapped.
const (
	TemplateLeft  = "(%s"
	TemplateRight = "%s)"
	TemplateNot   = "not %s"
	TemplateOr    = "or %s"
	TemplateAnd   = "and %s"
)

// TemplateComplex matches items of a complex field against sub-field filters.
const TemplateComplex = "({field} == match([{subs}]))"

// SubJoiner joins sub-field filters inside match([...]).
const SubJoiner = " and "

// Render substitutes {field}, {value}, {start} and {end} in an operator
// template.
func Render(template, field string, r encode.Result) string {
	return strings.NewReplacer(
		"{field}", field,
		"{value}", r.Literal,
		"{start}", r.Start,
		"{end}", r.End,
	).Replace(template)
}

// Decorate applies negation, brackets and the logical join to a fragment,
// in that order.
func Decorate(fragment string, not, left, right bool, join string) string {
	if not {
		fragment = wrap(TemplateNot, fragment)
	}
	if right {
		fragment = wrap(TemplateRight, fragment)
	}
	if left {
		fragment = wrap(TemplateLeft, fragment)
	}
	switch join {
	case LogicOr:
		fragment = wrap(TemplateOr, fragment)
	case LogicAnd:
		fragment = wrap(TemplateAnd, fragment)
	}
	return fragment
}

func wrap(template, fragment string) string {
	return strings.Replace(template, "%s", fragment, 1)
}

// Complex renders the match over a complex field's sub-field filters.
func Complex(field string, subs []string) string {
	return strings.NewReplacer(
		"{field}", field,
		"{subs}", strings.Join(subs, SubJoiner),
	).Replace(TemplateComplex)
}

// Join concatenates decorated fragments into a query.
func Join(fragments []string) string {
	return strings.Join(fragments, " ")
}
