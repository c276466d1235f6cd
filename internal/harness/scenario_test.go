package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "case.yaml", `
name: squares
description: "Squares of a range"
source: "[i * i for i in range(10)]"
backends: [rust, ts]
options:
  func_name: squares
  int_width: 32
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "squares", s.Name)
	assert.Equal(t, "[i * i for i in range(10)]", s.Source)
	assert.Equal(t, []string{"rust", "ts"}, s.Backends)
	assert.Equal(t, "squares", s.Options.FuncName)
	assert.Equal(t, 32, s.Options.IntWidth)
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "case.yaml", `
name: typo
description: "A typo in a field name"
source: "[i for i in range(3)]"
backends: [rust]
expected_error: "nope"
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected_error")
}

func TestLoadScenarioValidation(t *testing.T) {
	cases := map[string]struct {
		yaml    string
		wantErr string
	}{
		"missing name": {
			yaml:    "description: d\nsource: \"[i for i in range(3)]\"\nbackends: [rust]\n",
			wantErr: "name is required",
		},
		"missing source": {
			yaml:    "name: n\ndescription: d\nbackends: [rust]\n",
			wantErr: "source is required",
		},
		"no backends": {
			yaml:    "name: n\ndescription: d\nsource: \"[i for i in range(3)]\"\n",
			wantErr: "backends list is required",
		},
		"unknown backend": {
			yaml:    "name: n\ndescription: d\nsource: \"[i for i in range(3)]\"\nbackends: [cobol]\n",
			wantErr: `unknown backend "cobol"`,
		},
		"unknown dialect": {
			yaml:    "name: n\ndescription: d\nsource: \"[i for i in range(3)]\"\nbackends: [sql]\ndialects: [oracle]\n",
			wantErr: `unknown dialect "oracle"`,
		},
		"dialects without sql": {
			yaml:    "name: n\ndescription: d\nsource: \"[i for i in range(3)]\"\nbackends: [rust]\ndialects: [postgres]\n",
			wantErr: "dialects given without the sql backend",
		},
		"bad int width": {
			yaml:    "name: n\ndescription: d\nsource: \"[i for i in range(3)]\"\nbackends: [rust]\noptions: { int_width: 16 }\n",
			wantErr: "int_width must be 32 or 64",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), "case.yaml", tc.yaml)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadSuite(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "b.yaml", "name: beta\ndescription: d\nsource: \"[i for i in range(3)]\"\nbackends: [rust]\n")
	writeScenario(t, dir, "a.yaml", "name: alpha\ndescription: d\nsource: \"[i for i in range(3)]\"\nbackends: [go]\n")
	writeScenario(t, dir, "notes.txt", "not a scenario")

	suite, err := LoadSuite(dir)
	require.NoError(t, err)
	require.Len(t, suite, 2)
	assert.Equal(t, "alpha", suite[0].Name)
	assert.Equal(t, "beta", suite[1].Name)
}

func TestLoadSuiteRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", "name: same\ndescription: d\nsource: \"[i for i in range(3)]\"\nbackends: [rust]\n")
	writeScenario(t, dir, "b.yaml", "name: same\ndescription: d\nsource: \"[i for i in range(3)]\"\nbackends: [go]\n")

	_, err := LoadSuite(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate scenario name")
}
