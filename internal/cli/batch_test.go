package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runBatchCommand(t *testing.T, manifest, outDir string) BatchSummary {
	t.Helper()
	opts := &BatchOptions{
		RootOptions: &RootOptions{Format: "json"},
		RunIDs:      NewFixedGenerator("run-001"),
	}
	stdout, _, err := executeWith(newBatchCommand(opts), manifest, "--output", outDir)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var summary BatchSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	return summary
}

func TestBatchCommandRendersAllJobs(t *testing.T) {
	manifest := writeManifest(t, `
job: odd_square_sum: {
	source:    "sum(i * i for i in range(1, 6) if i % 2 == 1)"
	targets:   ["rust", "sql"]
	func_name: "odd_square_sum"
}
job: squares: {
	source:  "[i * i for i in range(4)]"
	targets: ["go"]
}
`)
	outDir := filepath.Join(t.TempDir(), "out")

	summary := runBatchCommand(t, manifest, outDir)
	assert.Equal(t, "run-001", summary.RunID)
	assert.Equal(t, 2, summary.Jobs)
	require.Len(t, summary.Artifacts, 3)

	rust, err := os.ReadFile(filepath.Join(outDir, "odd_square_sum.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(rust), "fn odd_square_sum() -> i64 {")

	sqlOut, err := os.ReadFile(filepath.Join(outDir, "odd_square_sum.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(sqlOut), "generate_series")

	goOut, err := os.ReadFile(filepath.Join(outDir, "squares.go"))
	require.NoError(t, err)
	assert.Contains(t, string(goOut), "func program() []int64 {")
}

func TestBatchCommandFailsOnBadJob(t *testing.T) {
	manifest := writeManifest(t, `
job: broken: {
	source:  "prod(i for i in range(3))"
	targets: ["sql"]
}
`)
	opts := &BatchOptions{
		RootOptions: &RootOptions{Format: "text"},
		RunIDs:      NewFixedGenerator("run-002"),
	}
	stdout, _, err := executeWith(newBatchCommand(opts), manifest, "--output", filepath.Join(t.TempDir(), "out"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, ErrCodeUnsupported)
}

func TestBatchCommandFailsOnManifestErrors(t *testing.T) {
	manifest := writeManifest(t, `
job: bad: {
	targets: ["go"]
}
`)
	opts := &BatchOptions{
		RootOptions: &RootOptions{Format: "text"},
		RunIDs:      NewFixedGenerator("run-003"),
	}
	_, _, err := executeWith(newBatchCommand(opts), manifest, "--output", filepath.Join(t.TempDir(), "out"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
