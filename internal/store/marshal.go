package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/aqlwizard/internal/wizard"
)

// marshalList converts a string list to JSON TEXT. Nil is stored as [].
func marshalList(name string, values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	return marshalText(name, values)
}

// marshalExpressions converts the expression tree to JSON TEXT.
func marshalExpressions(exprs []wizard.Expression) (string, error) {
	if exprs == nil {
		exprs = []wizard.Expression{}
	}
	return marshalText("expressions", exprs)
}

// marshalText encodes v with HTML escaping disabled so stored AQL
// fragments stay readable in the database.
func marshalText(name string, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

func unmarshalList(name, data string) ([]string, error) {
	values := []string{}
	if data == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return values, nil
}

// unmarshalExpressions decodes numbers as json.Number so integer values
// survive the round trip unchanged.
func unmarshalExpressions(data string) ([]wizard.Expression, error) {
	exprs := []wizard.Expression{}
	if data == "" {
		return exprs, nil
	}
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&exprs); err != nil {
		return nil, fmt.Errorf("unmarshal expressions: %w", err)
	}
	return exprs, nil
}
