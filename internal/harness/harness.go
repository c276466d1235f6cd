package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/pcc/internal/pipeline"
	"github.com/roach88/pcc/internal/render"
)

// Result holds everything a scenario produced: the canonical IR
// snapshot and one output per rendered target.
type Result struct {
	// IR is the canonical JSON snapshot of the annotated tree. Nil when
	// the scenario expects an error.
	IR []byte

	// Outputs maps target keys to emitted source. Keys follow golden
	// file naming: the backend name, with sql expanded to
	// "sql.{dialect}".
	Outputs map[string]string

	// MatchedErr is the pipeline error that satisfied ExpectError.
	MatchedErr error
}

// Targets expands a scenario's backends and dialects to the ordered
// list of output keys it produces.
func (s *Scenario) Targets() []string {
	dialects := s.Dialects
	if len(dialects) == 0 {
		dialects = []string{string(render.DialectPostgres)}
	}
	var keys []string
	for _, b := range s.Backends {
		if b == string(render.BackendSQL) {
			for _, d := range dialects {
				keys = append(keys, "sql."+d)
			}
			continue
		}
		keys = append(keys, b)
	}
	return keys
}

func (s *Scenario) options(dialect string) pipeline.Options {
	return pipeline.Options{
		FuncName:    s.Options.FuncName,
		Parallel:    s.Options.Parallel,
		IntWidth:    s.Options.IntWidth,
		StrictTypes: s.Options.StrictTypes,
		Dialect:     render.Dialect(dialect),
	}
}

// Run executes a scenario through the full pipeline. A scenario with
// ExpectError succeeds only if every requested target fails with an
// error containing the expected substring; otherwise every target must
// render and the outputs are collected for golden comparison.
func Run(s *Scenario) (*Result, error) {
	result := &Result{Outputs: make(map[string]string)}

	for _, key := range s.Targets() {
		backend, dialect := splitTarget(key)
		opts := s.options(dialect)
		opts.Backend = render.BackendID(backend)

		out, err := pipeline.Render(s.Source, opts)
		if s.ExpectError != "" {
			if err == nil {
				return nil, fmt.Errorf("target %s: expected error containing %q, got success", key, s.ExpectError)
			}
			if !strings.Contains(err.Error(), s.ExpectError) {
				return nil, fmt.Errorf("target %s: expected error containing %q, got: %w", key, s.ExpectError, err)
			}
			result.MatchedErr = err
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", key, err)
		}
		result.Outputs[key] = out
	}

	if s.ExpectError == "" {
		ir, err := pipeline.EmitIR(s.Source, s.options(""))
		if err != nil {
			return nil, fmt.Errorf("ir snapshot: %w", err)
		}
		result.IR = ir
	}
	return result, nil
}

func splitTarget(key string) (backend, dialect string) {
	if rest, ok := strings.CutPrefix(key, "sql."); ok {
		return string(render.BackendSQL), rest
	}
	return key, ""
}
