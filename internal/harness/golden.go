package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares every output against
// its golden file under testdata/golden: {name}.{target}.golden for
// emitted source and {name}.ir.golden for the canonical IR snapshot.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Scenarios with expect_error set are validated by Run alone and touch
// no golden files.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if scenario.ExpectError != "" {
		return nil
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name+".ir", result.IR)
	for _, key := range scenario.Targets() {
		g.Assert(t, scenario.Name+"."+key, []byte(result.Outputs[key]))
	}
	return nil
}
