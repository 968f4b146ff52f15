package wizard

import (
	"bytes"
	"encoding/json"
)

// ContextObject marks expressions over complex fields.
const ContextObject = "OBJ"

// Expression is one top-level filter in the shape graphical query builders
// consume. Filter is the fully decorated AQL fragment; the fragments of all
// expressions joined by spaces form the query.
type Expression struct {
	BracketWeight    int      `json:"bracketWeight"`
	Children         []Child  `json:"children"`
	CompOp           string   `json:"compOp"`
	Field            string   `json:"field"`
	FieldType        string   `json:"fieldType"`
	Filter           string   `json:"filter"`
	FilteredAdapters []string `json:"filteredAdapters"`
	LeftBracket      bool     `json:"leftBracket"`
	LogicOp          string   `json:"logicOp"`
	Not              bool     `json:"not"`
	RightBracket     bool     `json:"rightBracket"`
	Value            any      `json:"value"`
	I                int      `json:"i,omitempty"`
	Context          string   `json:"context,omitempty"`
}

// Child is a sub-condition of an Expression. Complex expressions have one
// child per sub-field filter; simple expressions have a single child
// holding the undecorated condition.
type Child struct {
	Condition  string          `json:"condition"`
	Expression ChildExpression `json:"expression"`
	I          int             `json:"i"`
}

// ChildExpression is the comparison inside a Child.
type ChildExpression struct {
	CompOp           string   `json:"compOp"`
	Field            string   `json:"field"`
	FilteredAdapters []string `json:"filteredAdapters"`
	Value            any      `json:"value"`
}

// Query is a compiled entry stream.
type Query struct {
	Expressions []Expression `json:"expressions"`
	Query       string       `json:"query"`
}

// SavedQuery is a compiled, named group ready to be persisted.
type SavedQuery struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	Fields       []string `json:"fields"`
	Private      bool     `json:"private"`
	AlwaysCached bool     `json:"always_cached"`
	Query        Query    `json:"query"`
}

// Marshal renders v as indented JSON without HTML escaping, so AQL
// operators like "<" stay readable. The output ends with a newline.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
