package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/pcc/internal/render"
)

// Job is one entry of a batch manifest: a comprehension plus the
// targets to render it for.
type Job struct {
	Name        string   `json:"-"`
	Source      string   `json:"source"`
	Targets     []string `json:"targets"`
	FuncName    string   `json:"func_name,omitempty"`
	Parallel    bool     `json:"parallel,omitempty"`
	IntWidth    int      `json:"int_width,omitempty"`
	StrictTypes bool     `json:"strict_types,omitempty"`
	Dialect     string   `json:"dialect,omitempty"`
}

// LoadError represents an error that occurred during manifest loading.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadJobs loads a CUE batch manifest directory. Manifests declare jobs
// under a top-level "job" struct:
//
//	job: odd_square_sum: {
//		source:    "sum(i * i for i in range(1, 6) if i % 2 == 1)"
//		targets:   ["rust", "go", "sql"]
//		func_name: "odd_square_sum"
//	}
//
// Jobs are returned sorted by name so batch runs are deterministic.
// All job-level errors are collected rather than failing on the first.
func LoadJobs(dir string) ([]Job, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeManifest, Message: fmt.Sprintf("manifest directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeManifest, Message: fmt.Sprintf("error accessing manifest directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeManifest, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeManifest, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeManifest, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeManifest, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeManifest, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeManifest, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	jobsVal := value.LookupPath(cue.ParsePath("job"))
	if !jobsVal.Exists() {
		return nil, []error{&LoadError{Code: ErrCodeManifest, Message: "no jobs found in manifest (expected top-level \"job\" struct)"}}
	}
	iter, err := jobsVal.Fields()
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeManifest, Message: fmt.Sprintf("iterating jobs: %v", err)}}
	}

	var jobs []Job
	var errs []error
	for iter.Next() {
		var job Job
		if err := iter.Value().Decode(&job); err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeManifest, Message: fmt.Sprintf("job.%s: %v", iter.Label(), err)})
			continue
		}
		job.Name = iter.Label()
		if err := validateJob(&job); err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeManifest, Message: fmt.Sprintf("job.%s: %v", job.Name, err)})
			continue
		}
		jobs = append(jobs, job)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs, errs
}

func validateJob(j *Job) error {
	if j.Source == "" {
		return fmt.Errorf("source is required")
	}
	if len(j.Targets) == 0 {
		return fmt.Errorf("targets list is required and must be non-empty")
	}
	for _, t := range j.Targets {
		if !slices.Contains(render.ValidBackends, render.BackendID(t)) {
			return fmt.Errorf("unknown target %q", t)
		}
	}
	if j.Dialect != "" && j.Dialect != string(render.DialectPostgres) && j.Dialect != string(render.DialectSQLite) {
		return fmt.Errorf("unknown dialect %q", j.Dialect)
	}
	if j.IntWidth != 0 && j.IntWidth != 32 && j.IntWidth != 64 {
		return fmt.Errorf("int_width must be 32 or 64, got %d", j.IntWidth)
	}
	return nil
}

func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
