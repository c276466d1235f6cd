package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pcc/internal/pipeline"
	"github.com/roach88/pcc/internal/render"
	"github.com/roach88/pcc/internal/sqlexec"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Targets     []string
	IntWidth    int
	StrictTypes bool
	Execute     bool
}

// TargetReport is one line of a check result.
type TargetReport struct {
	Target string `json:"target"`
	Status string `json:"status"` // "ok" | "unsupported" | "error"
	Detail string `json:"detail,omitempty"`
}

// CheckResult summarizes a check run across targets.
type CheckResult struct {
	Targets []TargetReport `json:"targets"`
	Passed  int            `json:"passed"`
	Failed  int            `json:"failed"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <source-file>",
		Short: "Compile against every target and report per-target status",
		Long: `Compile a comprehension for each requested target without writing output.

SQL is checked once per dialect. With --execute, the sqlite output is
additionally prepared against an in-memory database so emitted SQL that
SQLite would reject fails the check.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Targets, "target", "t", nil, "targets to check (default: all)")
	cmd.Flags().IntVar(&opts.IntWidth, "int-width", 64, "integer width for emitted types (32|64)")
	cmd.Flags().BoolVar(&opts.StrictTypes, "strict-types", false, "fail instead of falling back to int")
	cmd.Flags().BoolVar(&opts.Execute, "execute", false, "prepare sqlite output against an in-memory database")

	return cmd
}

func checkTargets(requested []string) ([]string, error) {
	if len(requested) == 0 {
		requested = make([]string, len(render.ValidBackends))
		for i, b := range render.ValidBackends {
			requested[i] = string(b)
		}
	}
	var targets []string
	for _, t := range requested {
		switch t {
		case string(render.BackendSQL):
			targets = append(targets, "sql.postgres", "sql.sqlite")
		case string(render.BackendRust), string(render.BackendTS), string(render.BackendGo),
			string(render.BackendCSharp), string(render.BackendJulia):
			targets = append(targets, t)
		default:
			return nil, fmt.Errorf("unknown target %q", t)
		}
	}
	return targets, nil
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	targets, err := checkTargets(opts.Targets)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error())
	}

	source, err := readSource(cmd, path)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeReadFailed, err.Error())
	}

	result := &CheckResult{}
	for _, target := range targets {
		report := checkOneTarget(cmd, opts, source, target)
		result.Targets = append(result.Targets, report)
		if report.Status == "ok" {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, r := range result.Targets {
			if r.Detail != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s: %s\n", r.Target, r.Status, r.Detail)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", r.Target, r.Status)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d passed, %d failed\n", result.Passed, result.Failed)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d target(s) failed", result.Failed))
	}
	return nil
}

func checkOneTarget(cmd *cobra.Command, opts *CheckOptions, source, target string) TargetReport {
	backend, dialect := target, ""
	if rest, ok := strings.CutPrefix(target, "sql."); ok {
		backend, dialect = string(render.BackendSQL), rest
	}

	out, err := pipeline.Render(source, pipeline.Options{
		Backend:     render.BackendID(backend),
		IntWidth:    opts.IntWidth,
		StrictTypes: opts.StrictTypes,
		Dialect:     render.Dialect(dialect),
	})
	if err != nil {
		status := "error"
		if render.IsUnsupportedError(err) {
			status = "unsupported"
		}
		return TargetReport{Target: target, Status: status, Detail: err.Error()}
	}

	if opts.Execute && dialect == string(render.DialectSQLite) {
		if err := executeSQLite(cmd, out); err != nil {
			return TargetReport{Target: target, Status: "error", Detail: err.Error()}
		}
	}
	return TargetReport{Target: target, Status: "ok"}
}

func executeSQLite(cmd *cobra.Command, query string) error {
	e, err := sqlexec.Open()
	if err != nil {
		return err
	}
	defer e.Close()
	return e.Validate(cmd.Context(), query)
}
