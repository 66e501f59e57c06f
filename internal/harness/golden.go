package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares the exported timeline
// document against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails or an assertion does not hold.
// Test failure (via goldie) occurs if the document doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	AssertGolden(t, scenario.Name, result)

	if !result.Pass {
		return fmt.Errorf("scenario %s: %d assertion(s) failed: %v", scenario.Name, len(result.Errors), result.Errors)
	}
	return nil
}

// AssertGolden compares an already executed result's document against
// the golden file for name.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, result.Document)
}
