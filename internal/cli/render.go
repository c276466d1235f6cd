package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pcc/internal/pipeline"
	"github.com/roach88/pcc/internal/render"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Target      string
	FuncName    string
	Parallel    bool
	IntWidth    int
	StrictTypes bool
	Dialect     string
	Output      string
}

func (o *RenderOptions) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Backend:     render.BackendID(o.Target),
		FuncName:    o.FuncName,
		Parallel:    o.Parallel,
		IntWidth:    o.IntWidth,
		StrictTypes: o.StrictTypes,
		Dialect:     render.Dialect(o.Dialect),
	}
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <source-file>",
		Short: "Compile a comprehension to one target",
		Long: `Compile a comprehension source file to the selected target language.

The source file holds a single comprehension or reduction expression.
Use "-" to read the source from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", "", "target backend (rust|ts|go|csharp|julia|sql)")
	cmd.Flags().StringVar(&opts.FuncName, "func-name", "", "name of the emitted function")
	cmd.Flags().BoolVar(&opts.Parallel, "parallel", false, "emit the chunked-parallel form where possible")
	cmd.Flags().IntVar(&opts.IntWidth, "int-width", 64, "integer width for emitted types (32|64)")
	cmd.Flags().BoolVar(&opts.StrictTypes, "strict-types", false, "fail instead of falling back to int")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "postgres", "SQL dialect (postgres|sqlite)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.MarkFlagRequired("target")

	return cmd
}

func runRender(opts *RenderOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	source, err := readSource(cmd, path)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeReadFailed, err.Error())
	}
	formatter.VerboseLog("Compiling %d bytes for target %s", len(source), opts.Target)

	out, err := pipeline.Render(source, opts.pipelineOptions())
	if err != nil {
		return fail(formatter, ExitFailure, errorCode(err), err.Error())
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(out), 0o644); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
	}

	return formatter.Raw(map[string]string{
		"target": opts.Target,
		"output": out,
	}, out)
}
