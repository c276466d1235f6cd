package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pcc/internal/pipeline"
)

// IROptions holds flags for the ir command.
type IROptions struct {
	*RootOptions
	IntWidth    int
	StrictTypes bool
	Optimize    bool
	Output      string
}

// NewIRCommand creates the ir command.
func NewIRCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IROptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ir <source-file>",
		Short: "Emit the canonical IR snapshot",
		Long: `Parse and annotate a comprehension and print its canonical JSON IR.

The snapshot is byte-stable: the same source always produces identical
bytes, which makes the output suitable for golden files and diffing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIR(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.IntWidth, "int-width", 64, "integer width for annotations (32|64)")
	cmd.Flags().BoolVar(&opts.StrictTypes, "strict-types", false, "fail instead of falling back to int")
	cmd.Flags().BoolVar(&opts.Optimize, "optimize", false, "apply the SQL rewrite pass before snapshotting")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runIR(opts *IROptions, path string, cmd *cobra.Command) error {
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

	snapshot, err := pipeline.EmitIR(source, pipeline.Options{
		IntWidth:    opts.IntWidth,
		StrictTypes: opts.StrictTypes,
		Optimize:    opts.Optimize,
	})
	if err != nil {
		return fail(formatter, ExitFailure, errorCode(err), err.Error())
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, snapshot, 0o644); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return formatter.Raw(map[string]json.RawMessage{
		"ir": json.RawMessage(snapshot),
	}, string(snapshot)+"\n")
}
