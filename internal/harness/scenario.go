package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/aqlwizard/internal/entry"
	"github.com/roach88/aqlwizard/internal/wizerr"
)

// Scenario defines a compiler conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is the path to a YAML or CUE field catalog, relative to the
	// scenario file.
	Catalog string `yaml:"catalog"`

	// Lookups is an optional path to YAML candidate lists.
	Lookups string `yaml:"lookups,omitempty"`

	// Source is the data source for default display fields. Empty means
	// the catalog's default source.
	Source string `yaml:"source,omitempty"`

	// Surface is text, json or csv. Defaults to text.
	Surface string `yaml:"surface,omitempty"`

	// Input is the inline entry text.
	Input string `yaml:"input"`

	Expect Expect `yaml:"expect"`
}

// Expect states the outcome a scenario requires. Exactly one of Query,
// Queries and Error is set.
type Expect struct {
	// Query is the AQL of the only saved query.
	Query string `yaml:"query,omitempty"`

	// Queries lists the expected saved queries in input order.
	Queries []ExpectedQuery `yaml:"queries,omitempty"`

	Error *ExpectedError `yaml:"error,omitempty"`
}

// ExpectedQuery is one expected saved query.
type ExpectedQuery struct {
	Name  string `yaml:"name"`
	Query string `yaml:"query"`

	// Fields, when set, must equal the expanded display fields.
	Fields []string `yaml:"fields,omitempty"`
}

// ExpectedError describes a required compile failure.
type ExpectedError struct {
	Code string `yaml:"code"`

	// Contains must be a substring of the rendered error.
	Contains string `yaml:"contains,omitempty"`

	// Group, when set, must equal the failing group's name.
	Group string `yaml:"group,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Catalog and lookups paths are resolved relative to the file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "expected:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	scenario.Catalog = resolvePath(base, scenario.Catalog)
	scenario.Lookups = resolvePath(base, scenario.Lookups)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

func resolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Catalog == "" {
		return fmt.Errorf("catalog is required")
	}
	if _, err := os.Stat(s.Catalog); os.IsNotExist(err) {
		return fmt.Errorf("catalog file not found: %s", s.Catalog)
	}
	if s.Lookups != "" {
		if _, err := os.Stat(s.Lookups); os.IsNotExist(err) {
			return fmt.Errorf("lookups file not found: %s", s.Lookups)
		}
	}

	if s.Surface == "" {
		s.Surface = string(entry.SurfaceText)
	}
	if _, err := entry.ParseSurface(s.Surface); err != nil {
		return err
	}

	set := 0
	if s.Expect.Query != "" {
		set++
	}
	if len(s.Expect.Queries) > 0 {
		set++
	}
	if s.Expect.Error != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("expect needs exactly one of query, queries or error")
	}

	if e := s.Expect.Error; e != nil {
		if e.Code == "" {
			return fmt.Errorf("expect.error: code is required")
		}
		if !wizerr.Code(e.Code).Known() {
			return fmt.Errorf("expect.error: unknown code %q", e.Code)
		}
	}

	for i, q := range s.Expect.Queries {
		if q.Query == "" {
			return fmt.Errorf("expect.queries[%d]: query is required", i)
		}
	}

	return nil
}
