package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRCommandEmitsCanonicalJSON(t *testing.T) {
	path := writeSourceFile(t, "sum(i * i for i in range(1, 6) if i % 2 == 1)")

	stdout, _, err := executeCommand("ir", path)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, `"ir_version":"1.0.0"`)
	assert.Contains(t, stdout, `"kind":"generator"`)
}

func TestIRCommandIsByteStableAcrossWhitespace(t *testing.T) {
	a := writeSourceFile(t, "sum(i*i for i in range(1,6) if i%2==1)")
	b := writeSourceFile(t, "sum( i * i   for i in range( 1, 6 ) if i % 2 == 1 )")

	outA, _, err := executeCommand("ir", a)
	require.NoError(t, err)
	outB, _, err := executeCommand("ir", b)
	require.NoError(t, err)
	assert.Equal(t, outA, outB)
}

func TestIRCommandOptimizeFlag(t *testing.T) {
	path := writeSourceFile(t, "sum(i for i in range(5, 0))")

	plain, _, err := executeCommand("ir", path)
	require.NoError(t, err)
	assert.NotContains(t, plain, `"empty":true`)

	optimized, _, err := executeCommand("ir", path, "--optimize")
	require.NoError(t, err)
	assert.Contains(t, optimized, `"empty":true`)
}

func TestIRCommandWritesSnapshotFile(t *testing.T) {
	path := writeSourceFile(t, "[i for i in range(3)]")
	out := filepath.Join(t.TempDir(), "snapshot.json")

	_, _, err := executeCommand("ir", path, "--output", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	assert.Contains(t, string(data), `"kind":"list"`)
}

func TestIRCommandStrictTypes(t *testing.T) {
	path := writeSourceFile(t, "[x for x in xs]")

	stdout, _, err := executeCommand("ir", path, "--strict-types")
	require.Error(t, err)
	assert.Contains(t, stdout, ErrCodeType)
}
