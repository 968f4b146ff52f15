package entry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Parser parses the input surfaces. The zero value is not usable; use
// NewParser.
type Parser struct {
	log *slog.Logger
}

// NewParser creates a Parser. A nil logger discards output.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Parser{log: logger}
}

var defaultParser = NewParser(nil)

// ParseText parses key=value text lines.
func ParseText(content, source string) ([]Group, error) {
	return defaultParser.Text(content, source)
}

// ParseRecords parses structured records.
func ParseRecords(records []Record, source string) ([]Group, error) {
	return defaultParser.Records(records, source)
}

// ParseJSON parses a JSON array of records.
func ParseJSON(data []byte, source string) ([]Group, error) {
	return defaultParser.JSON(data, source)
}

// ParseCSV parses CSV rows.
func ParseCSV(content, source string) ([]Group, error) {
	return defaultParser.CSV(content, source)
}

// ParseFile reads path and parses it with the surface its extension implies.
func ParseFile(path string) ([]Group, Surface, error) {
	return defaultParser.File(path)
}

// SurfaceFor picks a surface from a file extension: .csv, .json, anything
// else is text.
func SurfaceFor(path string) Surface {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return SurfaceCSV
	case ".json":
		return SurfaceJSON
	}
	return SurfaceText
}

// File reads path and parses it with the surface its extension implies.
func (p *Parser) File(path string) ([]Group, Surface, error) {
	surface := SurfaceFor(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, surface, fmt.Errorf("read %s: %w", path, err)
	}
	groups, err := p.Parse(surface, data, path)
	return groups, surface, err
}

// Parse parses data read from path (empty for stdin or inline input) using
// surface.
func (p *Parser) Parse(surface Surface, data []byte, path string) ([]Group, error) {
	switch surface {
	case SurfaceCSV:
		return p.CSV(string(data), sourceName(SourceCSVString, SourceCSVFile, path))
	case SurfaceJSON:
		return p.JSON(data, sourceName(SourceJSONString, SourceJSONFile, path))
	default:
		return p.Text(string(data), sourceName(SourceTextString, SourceTextFile, path))
	}
}

func sourceName(inline, file, path string) string {
	if path == "" || path == "-" {
		return inline
	}
	return fmt.Sprintf(file, path)
}

// parseBool accepts the usual yes/no spellings. Empty is false.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "f", "no", "n", "off":
		return false, nil
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	}
	return false, fmt.Errorf("invalid boolean %q, use yes/no, true/false, 1/0", s)
}

// splitList splits a comma-separated list, trimming and dropping empty items.
func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func splitFields(s string) []string {
	items := splitList(s)
	for i, item := range items {
		items[i] = strings.ToLower(item)
	}
	return items
}
