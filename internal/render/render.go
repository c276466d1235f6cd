// Package render turns annotated comprehension IR into source text for
// six target ecosystems.
//
// Every renderer is a pure function over (ir, options): deterministic,
// stateless across calls, trailing newline always present. Renderers are
// dispatched through an exhaustive switch over BackendID so a missing
// backend is a compile-time error, not a runtime lookup miss.
//
// Parallel codegen policy: when Parallel is set and the comprehension is
// a reduction over exactly one statically-known unit-step range, each
// backend emits its native chunked-parallel form, combining per-chunk
// partials in chunk order with the reduction's associative operator.
// Anything else falls back silently to the sequential nested-loop form:
// coordinating parallel iteration across nested generators without
// deeper dependency analysis is unsafe, and correctness wins over speed.
package render

import (
	"errors"
	"fmt"

	"github.com/roach88/pcc/internal/ir"
)

// BackendID identifies a target ecosystem.
type BackendID string

const (
	BackendRust   BackendID = "rust"   // parallel iterator chains (rayon)
	BackendTS     BackendID = "ts"     // worker-thread chunking
	BackendGo     BackendID = "go"     // goroutine/channel fan-out
	BackendCSharp BackendID = "csharp" // data-parallel LINQ (PLINQ)
	BackendJulia  BackendID = "julia"  // native thread parallelism
	BackendSQL    BackendID = "sql"    // two relational dialects
)

// ValidBackends lists every supported backend identifier.
var ValidBackends = []BackendID{
	BackendRust, BackendTS, BackendGo, BackendCSharp, BackendJulia, BackendSQL,
}

// Dialect selects the SQL range-materialization strategy.
type Dialect string

const (
	// DialectPostgres expresses ranges via generate_series.
	DialectPostgres Dialect = "postgres"

	// DialectSQLite expresses ranges via recursive CTEs.
	DialectSQLite Dialect = "sqlite"
)

// Options configures a single render invocation.
type Options struct {
	// FuncName names the emitted function (or labels the emitted query).
	// Empty defaults to "program".
	FuncName string

	// Parallel requests the chunked-parallel form where the policy
	// allows it; otherwise the sequential form is emitted silently.
	Parallel bool

	// IntWidth is the integer width for emitted types, 32 or 64.
	// Zero defaults to 64.
	IntWidth int

	// Dialect applies to the sql backend only.
	// Empty defaults to DialectPostgres.
	Dialect Dialect
}

func (o Options) funcName() string {
	if o.FuncName == "" {
		return "program"
	}
	return o.FuncName
}

func (o Options) intWidth() int {
	if o.IntWidth == 0 {
		return 64
	}
	return o.IntWidth
}

// UnsupportedError reports an IR/backend combination the target cannot
// express (e.g. opaque iterables or product reductions on SQL).
type UnsupportedError struct {
	Backend BackendID
	Detail  string
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("backend %s: %s", e.Backend, e.Detail)
}

// IsUnsupportedError returns true if err reports an IR/backend mismatch.
func IsUnsupportedError(err error) bool {
	var ue *UnsupportedError
	return errors.As(err, &ue)
}

// Render emits source text for the given backend. The IR must be parsed
// and annotated; it is consumed read-only.
func Render(c *ir.Comp, backend BackendID, opts Options) (string, error) {
	if w := opts.intWidth(); w != 32 && w != 64 {
		return "", fmt.Errorf("invalid int width %d: must be 32 or 64", w)
	}
	switch backend {
	case BackendRust:
		return renderRust(c, opts)
	case BackendTS:
		return renderTS(c, opts)
	case BackendGo:
		return renderGo(c, opts)
	case BackendCSharp:
		return renderCSharp(c, opts)
	case BackendJulia:
		return renderJulia(c, opts)
	case BackendSQL:
		return renderSQL(c, opts)
	default:
		return "", fmt.Errorf("unknown backend %q: known backends %v", backend, ValidBackends)
	}
}
