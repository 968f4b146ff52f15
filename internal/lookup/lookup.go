// Package lookup supplies the externally sourced candidate lists used to
// validate tag, data source and connection label values.
//
// The wizard never fetches these itself. Callers inject a Provider; Memoize
// guarantees each list is fetched at most once per wizard invocation.
package lookup

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/roach88/aqlwizard/internal/wizerr"
)

// Choice maps a display name to the raw value used in queries
// (e.g. "aws" -> "aws_adapter").
type Choice struct {
	Name string `yaml:"name" json:"name"`
	Raw  string `yaml:"raw" json:"raw"`
}

// Provider returns the current candidate lists.
// Implementations must be safe to call repeatedly and must not mutate the
// returned slices after returning them.
type Provider interface {
	Tags() ([]string, error)
	DataSources() ([]Choice, error)
	ConnectionLabels() ([]string, error)
}

// Funcs adapts three accessor functions into a Provider.
// A nil function yields an empty list.
type Funcs struct {
	TagsFunc             func() ([]string, error)
	DataSourcesFunc      func() ([]Choice, error)
	ConnectionLabelsFunc func() ([]string, error)
}

// Tags implements Provider.
func (f Funcs) Tags() ([]string, error) {
	if f.TagsFunc == nil {
		return nil, nil
	}
	return f.TagsFunc()
}

// DataSources implements Provider.
func (f Funcs) DataSources() ([]Choice, error) {
	if f.DataSourcesFunc == nil {
		return nil, nil
	}
	return f.DataSourcesFunc()
}

// ConnectionLabels implements Provider.
func (f Funcs) ConnectionLabels() ([]string, error) {
	if f.ConnectionLabelsFunc == nil {
		return nil, nil
	}
	return f.ConnectionLabelsFunc()
}

// Static is a Provider over fixed lists, typically loaded from YAML.
type Static struct {
	TagList             []string `yaml:"tags"`
	DataSourceList      []Choice `yaml:"data_sources"`
	ConnectionLabelList []string `yaml:"connection_labels"`
}

// Tags implements Provider.
func (s Static) Tags() ([]string, error) {
	return append([]string(nil), s.TagList...), nil
}

// DataSources implements Provider.
func (s Static) DataSources() ([]Choice, error) {
	return append([]Choice(nil), s.DataSourceList...), nil
}

// ConnectionLabels implements Provider. Empty and repeated labels are dropped.
func (s Static) ConnectionLabels() ([]string, error) {
	return dedupe(s.ConnectionLabelList), nil
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// ParseYAML decodes a lookups document:
//
//	tags: [Production, Staging]
//	data_sources:
//	  - {name: aws, raw: aws_adapter}
//	connection_labels: [corp-aws]
func ParseYAML(data []byte) (Static, error) {
	var s Static
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Static{}, wizerr.Wrap(wizerr.CodeInvalidInput, err, "parsing lookups")
	}
	for i, c := range s.DataSourceList {
		if c.Name == "" || c.Raw == "" {
			return Static{}, wizerr.New(wizerr.CodeInvalidInput, "data source #%d needs both name and raw", i+1)
		}
	}
	return s, nil
}

// LoadYAML reads a lookups document from path. A missing file yields an
// empty Static so operators that need candidates fail with NO_CANDIDATES.
func LoadYAML(path string) (Static, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Static{}, nil
	}
	if err != nil {
		return Static{}, wizerr.Wrap(wizerr.CodeInvalidInput, err, "reading lookups %s", path)
	}
	return ParseYAML(data)
}

// Memo memoizes a Provider. Each list is fetched at most once; errors are
// memoized too, since the wizard never retries.
type Memo struct {
	tags   func() ([]string, error)
	srcs   func() ([]Choice, error)
	labels func() ([]string, error)
}

// MemoOption configures a Memo.
type MemoOption func(*memoConfig)

type memoConfig struct {
	logger *slog.Logger
}

// WithLogger logs each underlying fetch at debug level.
func WithLogger(logger *slog.Logger) MemoOption {
	return func(c *memoConfig) {
		c.logger = logger
	}
}

// Memoize wraps p so each list is fetched at most once.
func Memoize(p Provider, opts ...MemoOption) *Memo {
	cfg := memoConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger

	return &Memo{
		tags: sync.OnceValues(func() ([]string, error) {
			v, err := p.Tags()
			log.Debug("fetched lookup", "list", "tags", "count", len(v), "error", err)
			return v, err
		}),
		srcs: sync.OnceValues(func() ([]Choice, error) {
			v, err := p.DataSources()
			log.Debug("fetched lookup", "list", "data_sources", "count", len(v), "error", err)
			return v, err
		}),
		labels: sync.OnceValues(func() ([]string, error) {
			v, err := p.ConnectionLabels()
			log.Debug("fetched lookup", "list", "connection_labels", "count", len(v), "error", err)
			return dedupe(v), err
		}),
	}
}

// Tags implements Provider.
func (m *Memo) Tags() ([]string, error) {
	return m.tags()
}

// DataSources implements Provider.
func (m *Memo) DataSources() ([]Choice, error) {
	return m.srcs()
}

// ConnectionLabels implements Provider.
func (m *Memo) ConnectionLabels() ([]string, error) {
	return m.labels()
}
