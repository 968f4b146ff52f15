package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/aqlwizard/internal/wizard"
)

// Snapshot is the golden representation of a run.
type Snapshot struct {
	ScenarioName string              `json:"scenario_name"`
	Queries      []wizard.SavedQuery `json:"queries,omitempty"`
	Error        *ErrorSnapshot      `json:"error,omitempty"`
}

// ErrorSnapshot is the golden representation of a compile failure.
type ErrorSnapshot struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Source  string   `json:"source,omitempty"`
	Group   string   `json:"group,omitempty"`
	Hints   []string `json:"hints,omitempty"`
}

// MarshalSnapshot renders the golden bytes for a run.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	snap := Snapshot{ScenarioName: name, Queries: result.Queries}
	if e := result.Err; e != nil {
		snap.Error = &ErrorSnapshot{
			Code:    string(e.Code),
			Message: e.Message,
			Source:  e.Source,
			Group:   e.Group,
			Hints:   e.Hints,
		}
	}
	return wizard.Marshal(snap)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
