package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetsExpandSQLDialects(t *testing.T) {
	s := &Scenario{
		Backends: []string{"rust", "sql"},
		Dialects: []string{"postgres", "sqlite"},
	}
	assert.Equal(t, []string{"rust", "sql.postgres", "sql.sqlite"}, s.Targets())

	s = &Scenario{Backends: []string{"sql"}}
	assert.Equal(t, []string{"sql.postgres"}, s.Targets())
}

func TestRunCollectsAllTargets(t *testing.T) {
	s := &Scenario{
		Name:        "inline",
		Description: "inline scenario",
		Source:      "sum(i for i in range(4))",
		Backends:    []string{"rust", "julia", "sql"},
		Dialects:    []string{"sqlite"},
	}
	result, err := Run(s)
	require.NoError(t, err)
	assert.Len(t, result.Outputs, 3)
	assert.Contains(t, result.Outputs["rust"], "fn program()")
	assert.Contains(t, result.Outputs["julia"], "function program()")
	assert.Contains(t, result.Outputs["sql.sqlite"], "WITH RECURSIVE")
	assert.NotEmpty(t, result.IR)
}

func TestRunExpectedError(t *testing.T) {
	s := &Scenario{
		Name:        "bad",
		Description: "rejects assignment",
		Source:      "x = [i for i in range(3)]",
		Backends:    []string{"rust"},
		ExpectError: "assignment",
	}
	result, err := Run(s)
	require.NoError(t, err)
	assert.Error(t, result.MatchedErr)
	assert.Nil(t, result.IR)
}

func TestRunExpectedErrorMismatch(t *testing.T) {
	s := &Scenario{
		Name:        "bad",
		Description: "error text does not match",
		Source:      "sum(i for i in range(4))",
		Backends:    []string{"rust"},
		ExpectError: "assignment",
	}
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got success")
}

func TestSuiteGolden(t *testing.T) {
	suite, err := LoadSuite("testdata/cases")
	require.NoError(t, err)
	require.NotEmpty(t, suite)

	for _, scenario := range suite {
		t.Run(scenario.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}
