package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSourceFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "comp.txt")
	require.NoError(t, os.WriteFile(path, []byte(content+"\n"), 0o644))
	return path
}

func TestRenderCommandTextOutput(t *testing.T) {
	path := writeSourceFile(t, "sum(i * i for i in range(1, 6) if i % 2 == 1)")

	stdout, _, err := executeCommand("render", path, "--target", "rust")
	require.NoError(t, err)
	assert.Equal(t, `fn program() -> i64 {
    (1..6)
        .filter(|&i| i % 2 == 1)
        .map(|i| i * i)
        .sum()
}
`, stdout)
}

func TestRenderCommandJSONOutput(t *testing.T) {
	path := writeSourceFile(t, "sum(i for i in range(10))")

	stdout, _, err := executeCommand("--format", "json", "render", path, "--target", "go", "--func-name", "total")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "go", data["target"])
	assert.Contains(t, data["output"], "func total() int64 {")
}

func TestRenderCommandFromStdin(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetIn(strings.NewReader("any(i > 2 for i in range(5))\n"))

	stdout, _, err := executeWith(cmd, "render", "-", "--target", "julia")
	require.NoError(t, err)
	assert.Contains(t, stdout, "function program()")
	assert.Contains(t, stdout, "any(")
}

func TestRenderCommandUnsupportedConstruct(t *testing.T) {
	path := writeSourceFile(t, "sum(i ** 2 for i in range(10))")

	stdout, _, err := executeCommand("render", path, "--target", "rust")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, ErrCodeUnsupported)
	assert.Contains(t, stdout, "power operator")
}

func TestRenderCommandMissingFile(t *testing.T) {
	_, _, err := executeCommand("render", filepath.Join(t.TempDir(), "nope.txt"), "--target", "rust")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRenderCommandWritesOutputFile(t *testing.T) {
	path := writeSourceFile(t, "[i for i in range(3)]")
	out := filepath.Join(t.TempDir(), "prog.ts")

	_, _, err := executeCommand("render", path, "--target", "ts", "--output", out)
	require.NoError(t, err)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(written), "export function program()")
}

func TestRenderCommandSQLDialect(t *testing.T) {
	path := writeSourceFile(t, "sum(i for i in range(5))")

	var postgres, sqlite bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&postgres)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"render", path, "--target", "sql"})
	require.NoError(t, cmd.Execute())

	cmd = NewRootCommand()
	cmd.SetOut(&sqlite)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"render", path, "--target", "sql", "--dialect", "sqlite"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, postgres.String(), "generate_series")
	assert.Contains(t, sqlite.String(), "WITH RECURSIVE")
}
