package entry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/aqlwizard/internal/wizerr"
)

// Record is the structured-record form of an entry. Saved query records may
// also carry group metadata.
type Record struct {
	Type  string   `json:"type"`
	Value string   `json:"value"`
	Flags FlagList `json:"flags,omitempty"`

	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Fields       []string `json:"fields,omitempty"`
	Private      bool     `json:"private,omitempty"`
	AlwaysCached bool     `json:"always_cached,omitempty"`
}

// FlagList decodes from either a JSON list of flags or a single string of
// space or comma separated flags.
type FlagList []Flag

// UnmarshalJSON implements json.Unmarshaler.
func (l *FlagList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		flags, err := ParseFlags(s)
		if err != nil {
			return err
		}
		*l = flags
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("flags must be a string or a list of strings")
	}
	flags := make([]Flag, 0, len(items))
	for _, item := range items {
		f, err := ParseFlag(item)
		if err != nil {
			return err
		}
		flags = append(flags, f)
	}
	*l = flags
	return nil
}

var recordTypes = []Type{TypeSimple, TypeComplex, TypeComplexSub, TypeSavedQuery}

// Records parses structured records.
func (p *Parser) Records(records []Record, source string) ([]Group, error) {
	if source == "" {
		source = SourceRecords
	}
	p.log.Info("parsing records", "count", len(records), "source", source)

	var g grouper
	for idx, r := range records {
		src := fmt.Sprintf("%s entry #%d/%d", source, idx+1, len(records))
		if err := p.addRecord(&g, r, src); err != nil {
			return nil, wizerr.Locate(err, src, "")
		}
	}
	return g.finish()
}

func (p *Parser) addRecord(g *grouper, r Record, src string) error {
	etype, err := ParseType(r.Type)
	if err != nil {
		return err
	}
	if !recordType(etype) {
		return wizerr.New(wizerr.CodeMalformedEntry, "type %q is not valid in records", etype)
	}
	if strings.TrimSpace(r.Value) == "" {
		return wizerr.New(wizerr.CodeMalformedEntry, "empty value for type %q", etype)
	}

	if etype == TypeSavedQuery {
		return g.start(Group{
			Name:         strings.TrimSpace(r.Value),
			Description:  strings.TrimSpace(r.Description),
			Tags:         trimAll(r.Tags),
			Fields:       splitFields(strings.Join(r.Fields, ",")),
			Private:      r.Private,
			AlwaysCached: r.AlwaysCached,
			Source:       src,
		})
	}

	e := Entry{Type: etype, Value: strings.TrimLeft(r.Value, " \t"), Flags: []Flag(r.Flags), Source: src}
	p.log.Debug("parsed record", "entry", e.String(), "flags", e.Flags, "source", src)
	return g.add(e)
}

func recordType(t Type) bool {
	for _, valid := range recordTypes {
		if t == valid {
			return true
		}
	}
	return false
}

func trimAll(items []string) []string {
	return splitList(strings.Join(items, ","))
}

// JSON parses a JSON array of records. Unknown keys are rejected.
func (p *Parser) JSON(data []byte, source string) ([]Group, error) {
	if source == "" {
		source = SourceJSONString
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, wizerr.Wrap(wizerr.CodeMalformedEntry, err, "invalid JSON records").At(source)
	}
	if len(records) == 0 {
		return nil, wizerr.New(wizerr.CodeMalformedEntry, "no records found").At(source)
	}
	return p.Records(records, source)
}
