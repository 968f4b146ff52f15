package harness

import (
	"fmt"

	"github.com/roach88/aqlwizard/internal/wizard"
	"github.com/roach88/aqlwizard/internal/wizerr"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if the compile outcome matched the scenario's expect
	// clause.
	Pass bool `json:"pass"`

	// Errors contains mismatch messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Queries holds the compiled saved queries when compilation succeeded.
	Queries []wizard.SavedQuery `json:"queries,omitempty"`

	// Err is the compile failure, if any.
	Err *wizerr.Error `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a mismatch message and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}
