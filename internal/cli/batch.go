package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/pcc/internal/pipeline"
	"github.com/roach88/pcc/internal/render"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	OutputDir string
	RunIDs    RunIDGenerator
}

// BatchArtifact records one file a batch run wrote.
type BatchArtifact struct {
	Job    string `json:"job"`
	Target string `json:"target"`
	Path   string `json:"path"`
}

// BatchSummary is the batch command's result payload.
type BatchSummary struct {
	RunID     string          `json:"run_id"`
	Jobs      int             `json:"jobs"`
	Artifacts []BatchArtifact `json:"artifacts"`
}

// batchExtensions maps backends to emitted file extensions.
var batchExtensions = map[render.BackendID]string{
	render.BackendRust:   ".rs",
	render.BackendTS:     ".ts",
	render.BackendGo:     ".go",
	render.BackendCSharp: ".cs",
	render.BackendJulia:  ".jl",
	render.BackendSQL:    ".sql",
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts, RunIDs: UUIDv7Generator{}}
	return newBatchCommand(opts)
}

func newBatchCommand(opts *BatchOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <manifest-dir>",
		Short: "Render every job of a CUE batch manifest",
		Long: `Load a CUE batch manifest and render each job for each of its targets.

Artifacts are written to the output directory as {job}{ext}, with SQL
named {job}.sql. Every run is labeled with a fresh run ID so artifacts
can be correlated with the invocation that produced them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "directory for emitted artifacts")
	cmd.MarkFlagRequired("output")

	return cmd
}

func runBatch(opts *BatchOptions, manifestDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	jobs, loadErrs := LoadJobs(manifestDir)
	if len(loadErrs) > 0 {
		return fail(formatter, ExitFailure, ErrCodeManifest, loadErrs[0].Error())
	}
	formatter.VerboseLog("Loaded %d job(s) from %s", len(jobs), manifestDir)

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("creating output directory: %v", err))
	}

	summary := &BatchSummary{RunID: opts.RunIDs.Generate(), Jobs: len(jobs)}
	for _, job := range jobs {
		for _, target := range job.Targets {
			artifact, err := renderJobTarget(opts.OutputDir, job, render.BackendID(target))
			if err != nil {
				return fail(formatter, ExitFailure, errorCode(err),
					fmt.Sprintf("job %s, target %s: %v", job.Name, target, err))
			}
			formatter.VerboseLog("Wrote %s", artifact.Path)
			summary.Artifacts = append(summary.Artifacts, artifact)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d job(s), %d artifact(s) written to %s\n",
		summary.RunID, summary.Jobs, len(summary.Artifacts), opts.OutputDir)
	return nil
}

func renderJobTarget(outDir string, job Job, backend render.BackendID) (BatchArtifact, error) {
	out, err := pipeline.Render(job.Source, pipeline.Options{
		Backend:     backend,
		FuncName:    job.FuncName,
		Parallel:    job.Parallel,
		IntWidth:    job.IntWidth,
		StrictTypes: job.StrictTypes,
		Dialect:     render.Dialect(job.Dialect),
	})
	if err != nil {
		return BatchArtifact{}, err
	}

	path := filepath.Join(outDir, job.Name+batchExtensions[backend])
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return BatchArtifact{}, fmt.Errorf("writing artifact: %w", err)
	}
	return BatchArtifact{Job: job.Name, Target: string(backend), Path: path}, nil
}
