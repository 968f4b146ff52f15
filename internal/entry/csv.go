package entry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/aqlwizard/internal/wizerr"
)

const bom = "\ufeff"

var (
	csvRequired = []string{keyType, keyValue}
	csvOptional = []string{keyDescription, keyTags, keyFields, keyFlags, keyPrivate, keyAlwaysCached}
)

// CSV parses CSV rows. The first content row must be a saved_query row;
// the rows under it belong to that saved query until the next one.
func (p *Parser) CSV(content, source string) ([]Group, error) {
	if source == "" {
		source = SourceCSVString
	}
	content = strings.TrimSpace(strings.TrimPrefix(content, bom))

	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, wizerr.New(wizerr.CodeMalformedEntry, "no columns found").At(source)
	}
	if err != nil {
		return nil, wizerr.Wrap(wizerr.CodeMalformedEntry, err, "invalid CSV").At(source)
	}

	columns := make(map[string]int, len(header))
	found := make([]string, 0, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, dup := columns[name]; !dup {
			columns[name] = i
			found = append(found, name)
		}
	}

	var missing []string
	for _, name := range csvRequired {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, wizerr.New(wizerr.CodeMalformedEntry, "missing required columns %s, found columns:",
			strings.Join(missing, ", ")).WithHints(found...).At(source)
	}
	for _, name := range csvOptional {
		if _, ok := columns[name]; !ok {
			p.log.Info("optional column not supplied", "column", name, "source", source)
		}
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, wizerr.Wrap(wizerr.CodeMalformedEntry, err, "invalid CSV").At(source)
	}
	p.log.Debug("read csv", "columns", found, "rows", len(rows), "source", source)

	var (
		g       grouper
		started bool
	)
	for idx, row := range rows {
		src := fmt.Sprintf("%s row #%d", source, idx+1)
		cell := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		rawType := strings.TrimSpace(cell(keyType))
		if rawType == "" || strings.HasPrefix(rawType, "#") {
			p.log.Debug("skipping row", "type", rawType, "source", src)
			continue
		}

		if err := p.addRow(&g, rawType, cell, src, &started); err != nil {
			return nil, wizerr.Locate(err, src, "")
		}
	}

	if !started {
		return nil, wizerr.New(wizerr.CodeMalformedEntry, "no rows found").At(source)
	}
	return g.finish()
}

func (p *Parser) addRow(g *grouper, rawType string, cell func(string) string, src string, started *bool) error {
	etype, err := ParseType(rawType)
	if err != nil {
		return err
	}
	if !*started && etype != TypeSavedQuery {
		return wizerr.New(wizerr.CodeMalformedEntry, "first row must be type %q, not %q", TypeSavedQuery, etype)
	}
	*started = true

	value := cell(keyValue)
	if strings.TrimSpace(value) == "" {
		return wizerr.New(wizerr.CodeMalformedEntry, "empty value for column %q", keyValue)
	}
	value = strings.TrimLeft(value, " \t")

	if etype == TypeSavedQuery {
		grp := Group{
			Name:        strings.TrimSpace(value),
			Description: strings.TrimSpace(cell(keyDescription)),
			Tags:        splitList(cell(keyTags)),
			Fields:      splitFields(cell(keyFields)),
			Source:      src,
		}
		if grp.Private, err = parseBool(cell(keyPrivate)); err != nil {
			return wizerr.Wrap(wizerr.CodeMalformedEntry, err, "column %q", keyPrivate)
		}
		if grp.AlwaysCached, err = parseBool(cell(keyAlwaysCached)); err != nil {
			return wizerr.Wrap(wizerr.CodeMalformedEntry, err, "column %q", keyAlwaysCached)
		}
		p.log.Debug("new saved query", "name", grp.Name, "source", src)
		return g.start(grp)
	}

	flags, err := ParseFlags(cell(keyFlags))
	if err != nil {
		return err
	}
	return g.add(Entry{Type: etype, Value: value, Flags: flags, Source: src})
}
