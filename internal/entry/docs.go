package entry

import (
	"fmt"
	"strings"

	"github.com/roach88/aqlwizard/internal/wizerr"
)

// Surface is an input syntax.
type Surface string

const (
	SurfaceText Surface = "text"
	SurfaceJSON Surface = "json"
	SurfaceCSV  Surface = "csv"
)

// ParseSurface validates a surface name.
func ParseSurface(s string) (Surface, error) {
	switch Surface(strings.ToLower(strings.TrimSpace(s))) {
	case SurfaceText:
		return SurfaceText, nil
	case SurfaceJSON:
		return SurfaceJSON, nil
	case SurfaceCSV:
		return SurfaceCSV, nil
	}
	return "", wizerr.New(wizerr.CodeInvalidInput, "invalid surface %q, valid surfaces:", s).
		WithHints(string(SurfaceText), string(SurfaceJSON), string(SurfaceCSV))
}

// Source locators for the built-in surfaces.
const (
	SourceTextString = "text string"
	SourceTextFile   = "text file %s"
	SourceJSONString = "json string"
	SourceJSONFile   = "json file %s"
	SourceCSVString  = "csv text string"
	SourceCSVFile    = "csv file %s"
	SourceRecords    = "list of records"
)

const (
	exSimple1  = "( hostname contains test"
	exSimple2  = "! hostname contains internal )"
	exSimple3  = "( os.type equals windows"
	exSimple4  = "| os.type equals os x )"
	exComplex1 = "installed_software // name contains chrome // version earlier_than 82"

	fmtSimple  = "[& | ! ( )] FIELD OPERATOR VALUE [)]"
	fmtComplex = "[& | ! ( )] COMPLEX-FIELD // SUB-FIELD OPERATOR VALUE[ // ...] [)]"

	flagHelp = `# Flags, leading the value or listed in flags=:
#   ! or not            negate the entry
#   & or and            join with the previous entry using "and" (default)
#   | or or             join with the previous entry using "or"
#   ( or bracket_left   open a bracket before the entry
#   ) or bracket_right  close a bracket after the entry (may also trail the value)`
)

var examples = map[Surface]string{
	SurfaceText: `# Example:
type=simple, value=` + exSimple1 + `
type=simple, value=` + exSimple2 + `
type=simple, field=os.type, operator=equals, value=windows, flags=(
type=simple, field=os.type, operator=equals, value=os x, flags=or )
type=complex, value=` + exComplex1 + `
type=complex, field=installed_software
type=complex_sub, sub=name, operator=contains, value=chrome

# Format, [] represents optional items:
type=simple, value=` + fmtSimple + `
type=complex, value=` + fmtComplex + `
type=saved_query, value=NAME[, description=TEXT][, tags="a,b"][, fields="default,os.type"]
type=bracket, value=( or )

` + flagHelp,

	SurfaceJSON: `# Example:
[
  {"type": "simple", "value": "` + exSimple1 + `"},
  {"type": "simple", "value": "` + exSimple2 + `"},
  {"type": "simple", "value": "os.type equals windows", "flags": ["("]},
  {"type": "simple", "value": "os.type equals os x", "flags": "or, )"},
  {"type": "complex", "value": "` + exComplex1 + `"}
]

` + flagHelp,

	SurfaceCSV: `# Example:
type,value,description,tags,fields,flags,private,always_cached
"# rows with an empty type or a type starting with # are ignored",,,,,,,
saved_query,example 1,"Filters, default fields, custom fields","example,tag1,tag2","default,os.type",,no,no
simple,` + exSimple1 + `,,,,,,
simple,` + exSimple2 + `,,,,,,
simple,os.type equals windows,,,,(,,
simple,os.type equals os x,,,,or ),,
saved_query,example 2,"Complex filter, default fields",example,,,,
complex,` + exComplex1 + `,,,,,,

# Format, [] represents optional items:
simple,` + fmtSimple + `
complex,` + fmtComplex + `

` + flagHelp,
}

// Example returns the worked usage example for a surface.
func Example(s Surface) string {
	if ex, ok := examples[s]; ok {
		return ex
	}
	return examples[SurfaceText]
}

// WithExample appends the usage example for s to err's message.
func WithExample(err error, s Surface) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w\n\n%s", err, Example(s))
}
