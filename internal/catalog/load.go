package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/aqlwizard/internal/wizerr"
)

// documentSchema constrains CUE catalogs before they are decoded.
const documentSchema = `
default_source?: string
sources: [...{
	name:            string & !=""
	default_fields?: [...string]
	fields: [...{
		name: string & !=""
		type: string & !=""
		...
	}]
}]
`

// Load reads a catalog file, choosing the decoder by extension.
// ".cue" files are decoded as CUE; everything else as YAML.
func Load(path string) (*Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return LoadCUE(path)
	default:
		return LoadYAML(path)
	}
}

// LoadYAML reads a YAML catalog document from path.
func LoadYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wizerr.Wrap(wizerr.CodeInvalidInput, err, "reading catalog %s", path)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a YAML catalog document. Unknown keys are rejected.
func ParseYAML(data []byte) (*Catalog, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, wizerr.Wrap(wizerr.CodeInvalidInput, err, "parsing YAML catalog")
	}
	return FromDocument(doc)
}

// LoadCUE reads a CUE catalog document from path.
func LoadCUE(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wizerr.Wrap(wizerr.CodeInvalidInput, err, "reading catalog %s", path)
	}
	return ParseCUE(data, path)
}

// ParseCUE compiles a CUE catalog document, validates it against the
// catalog schema and decodes it. filename is used in error positions.
func ParseCUE(data []byte, filename string) (*Catalog, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(documentSchema, cue.Filename("catalog-schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var doc Document
	if err := unified.Decode(&doc); err != nil {
		return nil, formatCUEError(err)
	}
	return FromDocument(doc)
}

// FromDocument builds a Catalog from a decoded document.
func FromDocument(doc Document) (*Catalog, error) {
	if len(doc.Sources) == 0 {
		return nil, wizerr.New(wizerr.CodeInvalidInput, "catalog declares no data sources")
	}
	return New(doc.DefaultSource, doc.Sources...)
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return wizerr.Wrap(wizerr.CodeInvalidInput, err, "invalid CUE catalog")
	}

	first := errs[0]
	positions := cueerrors.Positions(first)
	if len(positions) > 0 && positions[0].IsValid() {
		pos := positions[0]
		return wizerr.Wrap(wizerr.CodeInvalidInput, first, "invalid CUE catalog").
			At(fmt.Sprintf("%s:%d:%d", pos.Filename(), pos.Line(), pos.Column()))
	}
	return wizerr.Wrap(wizerr.CodeInvalidInput, first, "invalid CUE catalog")
}
