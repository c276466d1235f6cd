package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pcc/internal/render"
)

// Scenario defines one conformance case: a comprehension source, the
// backends to render it for, and either golden comparison or an
// expected failure.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden files.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Source is the comprehension text fed to the pipeline.
	Source string `yaml:"source"`

	// Backends lists the target backends to render.
	Backends []string `yaml:"backends"`

	// Dialects lists SQL dialects to render when Backends contains sql.
	// Empty defaults to postgres.
	Dialects []string `yaml:"dialects,omitempty"`

	// Options tune the compilation.
	Options ScenarioOptions `yaml:"options,omitempty"`

	// ExpectError, when set, asserts the pipeline fails with an error
	// containing this substring. No golden files are involved.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// ScenarioOptions mirrors the pipeline options a scenario may set.
type ScenarioOptions struct {
	FuncName    string `yaml:"func_name,omitempty"`
	Parallel    bool   `yaml:"parallel,omitempty"`
	IntWidth    int    `yaml:"int_width,omitempty"`
	StrictTypes bool   `yaml:"strict_types,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so typos surface as load errors rather than silently
// ignored configuration.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadSuite loads every .yaml scenario under dir, sorted by file name
// so suite iteration order is stable.
func LoadSuite(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite dir: %w", err)
	}

	var scenarios []*Scenario
	names := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		s, err := LoadScenario(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		if prev, dup := names[s.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate scenario name %q (also in %s)", entry.Name(), s.Name, prev)
		}
		names[s.Name] = entry.Name()
		scenarios = append(scenarios, s)
	}
	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i].Name < scenarios[j].Name })
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Source == "" {
		return fmt.Errorf("source is required")
	}
	if len(s.Backends) == 0 {
		return fmt.Errorf("backends list is required and must be non-empty")
	}
	for _, b := range s.Backends {
		if !slices.Contains(render.ValidBackends, render.BackendID(b)) {
			return fmt.Errorf("unknown backend %q", b)
		}
	}
	for _, d := range s.Dialects {
		if d != string(render.DialectPostgres) && d != string(render.DialectSQLite) {
			return fmt.Errorf("unknown dialect %q", d)
		}
	}
	if len(s.Dialects) > 0 && !slices.Contains(s.Backends, string(render.BackendSQL)) {
		return fmt.Errorf("dialects given without the sql backend")
	}
	if w := s.Options.IntWidth; w != 0 && w != 32 && w != 64 {
		return fmt.Errorf("int_width must be 32 or 64, got %d", w)
	}
	return nil
}
