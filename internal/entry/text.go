package entry

import (
	"fmt"
	"strings"

	"github.com/roach88/aqlwizard/internal/wizerr"
)

// Text line keys.
const (
	keyType         = "type"
	keyField        = "field"
	keySub          = "sub"
	keyOperator     = "operator"
	keyValue        = "value"
	keyFlags        = "flags"
	keyDescription  = "description"
	keyTags         = "tags"
	keyFields       = "fields"
	keyPrivate      = "private"
	keyAlwaysCached = "always_cached"
)

var textKeys = []string{
	keyType, keyField, keySub, keyOperator, keyValue, keyFlags,
	keyDescription, keyTags, keyFields, keyPrivate, keyAlwaysCached,
}

var groupKeys = []string{keyDescription, keyTags, keyFields, keyPrivate, keyAlwaysCached}

// Text parses newline-delimited key=value lines. Blank lines and lines
// starting with # are skipped.
func (p *Parser) Text(content, source string) ([]Group, error) {
	if source == "" {
		source = SourceTextString
	}
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	p.log.Info("parsing lines", "count", len(lines), "source", source)

	var g grouper
	for idx, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		src := fmt.Sprintf("%s line #%d: %s", source, idx+1, trimmed)
		e, grp, err := lineToEntry(trimmed)
		if err == nil {
			e.Source = src
			if e.Type == TypeSavedQuery {
				grp.Source = src
				err = g.start(grp)
			} else {
				err = g.add(e)
			}
		}
		if err != nil {
			return nil, wizerr.Locate(err, src, "")
		}
		p.log.Debug("parsed line", "entry", e.String(), "flags", e.Flags, "source", src)
	}
	return g.finish()
}

// lineToEntry converts one line into an entry. For saved_query lines the
// group metadata is returned as well.
func lineToEntry(line string) (Entry, Group, error) {
	kv, err := splitPairs(line)
	if err != nil {
		return Entry{}, Group{}, err
	}

	etype := TypeSimple
	if v, ok := kv[keyType]; ok {
		if etype, err = ParseType(v); err != nil {
			return Entry{}, Group{}, err
		}
	}

	flags, err := ParseFlags(kv[keyFlags])
	if err != nil {
		return Entry{}, Group{}, err
	}

	if etype != TypeSavedQuery {
		for _, k := range groupKeys {
			if _, ok := kv[k]; ok {
				return Entry{}, Group{}, wizerr.New(wizerr.CodeMalformedEntry,
					"key %q is only valid with type=%s", k, TypeSavedQuery)
			}
		}
	}

	field, operator, value := kv[keyField], kv[keyOperator], kv[keyValue]

	switch etype {
	case TypeSavedQuery, TypeBracket:
		if field != "" || operator != "" || len(flags) > 0 {
			return Entry{}, Group{}, wizerr.New(wizerr.CodeMalformedEntry,
				"type=%s only takes a value", etype)
		}
		if value == "" {
			return Entry{}, Group{}, wizerr.New(wizerr.CodeMalformedEntry, "empty value for type=%s", etype)
		}
		e := Entry{Type: etype, Value: value}
		if etype == TypeBracket {
			return e, Group{}, nil
		}
		grp, err := groupFromKeys(value, kv)
		return e, grp, err
	}

	raw, err := composeValue(etype, field, operator, value)
	if err != nil {
		return Entry{}, Group{}, err
	}
	return Entry{Type: etype, Value: raw, Flags: flags}, Group{}, nil
}

// composeValue builds the raw entry value from field/operator/value keys.
func composeValue(etype Type, field, operator, value string) (string, error) {
	if field == "" {
		if operator != "" {
			return "", wizerr.New(wizerr.CodeMalformedEntry, "operator given without a field")
		}
		if value == "" {
			return "", wizerr.New(wizerr.CodeMalformedEntry, "must supply a value or a field and operator")
		}
		return value, nil
	}

	if etype == TypeComplex {
		if operator != "" {
			return "", wizerr.New(wizerr.CodeMalformedEntry,
				"operator is not valid on a complex field, add %s lines instead", TypeComplexSub)
		}
		if value == "" {
			return field, nil
		}
		return field + ComplexSep + value, nil
	}

	if operator == "" {
		return "", wizerr.New(wizerr.CodeMalformedEntry, "must supply an operator for field %q", field)
	}
	raw := field + " " + operator
	if value != "" {
		raw += " " + value
	}
	return raw, nil
}

func groupFromKeys(name string, kv map[string]string) (Group, error) {
	grp := Group{
		Name:        name,
		Description: kv[keyDescription],
		Tags:        splitList(kv[keyTags]),
		Fields:      splitFields(kv[keyFields]),
	}
	var err error
	if grp.Private, err = parseBool(kv[keyPrivate]); err != nil {
		return Group{}, wizerr.Wrap(wizerr.CodeMalformedEntry, err, "key %q", keyPrivate)
	}
	if grp.AlwaysCached, err = parseBool(kv[keyAlwaysCached]); err != nil {
		return Group{}, wizerr.Wrap(wizerr.CodeMalformedEntry, err, "key %q", keyAlwaysCached)
	}
	return grp, nil
}

// splitPairs splits a line into key=value pairs. Commas inside double
// quotes do not split, and surrounding quotes are removed from values.
func splitPairs(line string) (map[string]string, error) {
	var (
		parts  []string
		b      strings.Builder
		quoted bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			b.WriteRune(r)
		case r == ',' && !quoted:
			parts = append(parts, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	if quoted {
		return nil, wizerr.New(wizerr.CodeMalformedEntry, "unterminated quote")
	}
	parts = append(parts, b.String())

	kv := make(map[string]string, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, wizerr.New(wizerr.CodeMalformedEntry, "empty key=value pair")
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return nil, wizerr.New(wizerr.CodeMalformedEntry, "no '=' found in %q", part)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return nil, wizerr.New(wizerr.CodeMalformedEntry, "empty key in %q", part)
		}
		if !validKey(key) {
			return nil, wizerr.New(wizerr.CodeMalformedEntry, "unknown key %q, valid keys:", key).
				WithHints(textKeys...)
		}
		if key == keySub {
			key = keyField
		}
		if _, dup := kv[key]; dup {
			return nil, wizerr.New(wizerr.CodeMalformedEntry, "duplicate key %q", key)
		}
		kv[key] = unquote(strings.TrimSpace(value))
	}
	return kv, nil
}

func validKey(key string) bool {
	for _, k := range textKeys {
		if k == key {
			return true
		}
	}
	return false
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
