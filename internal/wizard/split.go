package wizard

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/roach88/aqlwizard/internal/entry"
	"github.com/roach88/aqlwizard/internal/wizerr"
)

var (
	invalidFieldChars    = regexp.MustCompile(`(?i)[^a-z0-9:._\-]`)
	invalidOperatorChars = regexp.MustCompile(`(?i)[^a-z0-9_\-]`)
)

// splitSimple splits "FIELD OPERATOR [VALUE]". The value keeps inner and
// trailing spaces.
func splitSimple(raw string) (field, op, value string, err error) {
	parts := strings.SplitN(raw, " ", 3)

	field = strings.TrimSpace(parts[0])
	if err = checkField(field, raw); err != nil {
		return "", "", "", err
	}

	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return "", "", "", wizerr.New(wizerr.CodeMalformedEntry,
			"empty required OPERATOR in %q, expected FIELD OPERATOR VALUE", raw)
	}
	op = strings.ToLower(strings.TrimSpace(parts[1]))
	if invalidOperatorChars.MatchString(op) {
		return "", "", "", wizerr.New(wizerr.CodeMalformedEntry,
			"invalid OPERATOR %q in %q, operators may only contain letters, digits, '_' and '-'", op, raw)
	}

	if len(parts) == 3 {
		value = strings.TrimLeftFunc(parts[2], unicode.IsSpace)
	}
	return field, op, value, nil
}

// splitComplex splits "FIELD // SUB OP VALUE // ...". Empty sub-field
// filters are dropped.
func splitComplex(raw string) (field string, subs []string, err error) {
	parts := strings.Split(raw, entry.ComplexSep)

	field = strings.TrimSpace(parts[0])
	if len(parts) == 1 && strings.ContainsAny(field, " /") {
		return "", nil, wizerr.New(wizerr.CodeMalformedEntry,
			"no %q found in value %q, expected FIELD%sSUB-FIELD OPERATOR VALUE", entry.ComplexSep, raw, entry.ComplexSep)
	}
	if err := checkField(field, raw); err != nil {
		return "", nil, err
	}

	for _, part := range parts[1:] {
		part = strings.TrimLeftFunc(part, unicode.IsSpace)
		if strings.TrimSpace(part) != "" {
			subs = append(subs, part)
		}
	}
	return field, subs, nil
}

func checkField(field, raw string) error {
	if field == "" {
		return wizerr.New(wizerr.CodeMalformedEntry, "empty required FIELD in %q", raw)
	}
	if invalidFieldChars.MatchString(field) {
		return wizerr.New(wizerr.CodeMalformedEntry,
			"invalid FIELD %q in %q, fields may only contain letters, digits, ':', '.', '_' and '-'", field, raw)
	}
	if r := rune(field[0]); !unicode.IsLetter(r) {
		return wizerr.New(wizerr.CodeMalformedEntry, "FIELD %q must start with a letter", field)
	}
	return nil
}
