// Package pipeline composes the compiler stages: parse, infer, the SQL
// rewrite pass when targeting SQL, then rendering. It is the single
// entry point the CLI and the harness drive.
package pipeline

import (
	"github.com/roach88/pcc/internal/infer"
	"github.com/roach88/pcc/internal/ir"
	"github.com/roach88/pcc/internal/parser"
	"github.com/roach88/pcc/internal/render"
	"github.com/roach88/pcc/internal/sqlopt"
)

// Options configures one compilation.
type Options struct {
	// Backend selects the target ecosystem.
	Backend render.BackendID

	// FuncName names the emitted function. Empty defaults to "program".
	FuncName string

	// Parallel requests the chunked-parallel form where the backend's
	// policy allows it.
	Parallel bool

	// IntWidth is 32 or 64; zero defaults to 64.
	IntWidth int

	// StrictTypes turns inference fallbacks into errors.
	StrictTypes bool

	// Dialect applies to the sql backend only.
	Dialect render.Dialect

	// Optimize runs the SQL rewrite pass before snapshotting IR. The
	// pass always runs when rendering to SQL; this flag exposes its
	// output through EmitIR as well.
	Optimize bool
}

func (o Options) renderOptions() render.Options {
	return render.Options{
		FuncName: o.FuncName,
		Parallel: o.Parallel,
		IntWidth: o.IntWidth,
		Dialect:  o.Dialect,
	}
}

// Compile parses and annotates source, applying the SQL rewrite pass
// when the target is SQL.
func Compile(source string, opts Options) (*ir.Comp, error) {
	c, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	c, err = infer.Infer(c, infer.Config{IntWidth: opts.IntWidth, Strict: opts.StrictTypes})
	if err != nil {
		return nil, err
	}
	if opts.Backend == render.BackendSQL || opts.Optimize {
		c = sqlopt.Optimize(c)
	}
	return c, nil
}

// Render compiles source and emits target text for opts.Backend.
func Render(source string, opts Options) (string, error) {
	c, err := Compile(source, opts)
	if err != nil {
		return "", err
	}
	return render.Render(c, opts.Backend, opts.renderOptions())
}

// EmitIR compiles source and returns the canonical JSON snapshot of the
// annotated IR. Two sources that parse and annotate to the same tree
// produce byte-identical snapshots.
func EmitIR(source string, opts Options) ([]byte, error) {
	c, err := Compile(source, opts)
	if err != nil {
		return nil, err
	}
	return ir.Snapshot(c)
}
