// Package submit writes job scripts to disk and hands them to sbatch or qsub.
package submit

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gregdeon/cluster-utils/internal/config"
	"github.com/gregdeon/cluster-utils/internal/scheduler"
	"github.com/gregdeon/cluster-utils/internal/utils"
	shellquote "github.com/kballard/go-shellquote"
	uuid "github.com/nu7hatch/gouuid"
)

// Request describes one job to write and, unless DryRun, submit.
type Request struct {
	// File is where the script is written. Empty means
	// <JobDir>/<job name>/jobs/<uuid>.<ext>.
	File   string
	DryRun bool
	Job    scheduler.Job
}

// Result reports where the script went and what the submit command printed.
type Result struct {
	File      string
	OutputDir string
	Submitted bool
	Output    string
}

// Runner writes and submits jobs using the settings in Config.
type Runner struct {
	Config   config.Config
	Launcher Launcher
}

// NewRunner returns a Runner that launches real submit commands.
func NewRunner(cfg config.Config) *Runner {
	return &Runner{Config: cfg, Launcher: ExecLauncher{}}
}

// Run resolves the script and log paths, creates their directories, writes
// the script and launches the submit command once.
//
// Job.Resources.Scheduler defaults to Config.Platform and
// Job.Resources.OutputDir defaults to <dir of File>/../output/<uuid>.
// Filesystem errors are returned unwrapped. A submit command that fails or
// exits non-zero yields a *scheduler.SubmissionError alongside the Result.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	job := req.Job
	res := job.Resources
	if res.Scheduler == scheduler.SchedulerUnknown {
		res.Scheduler = r.Config.Platform
	}
	sched, err := scheduler.For(res.Scheduler)
	if err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate job id: %w", err)
	}

	file := req.File
	if file == "" {
		if r.Config.JobDir == "" {
			return nil, scheduler.NewMissingConfig("submit", "job directory is not configured")
		}
		file = filepath.Join(r.Config.JobDir, res.JobName, "jobs", id.String()+"."+sched.ScriptExt())
	}
	if res.OutputDir == "" {
		res = res.WithOutputDir(filepath.Join(filepath.Dir(filepath.Dir(file)), "output", id.String()))
	}
	job.Resources = res

	text, err := scheduler.JobString(job)
	if err != nil {
		return nil, err
	}

	if err := utils.EnsureDir(filepath.Dir(file)); err != nil {
		return nil, err
	}
	if err := utils.EnsureDir(res.OutputDir); err != nil {
		return nil, err
	}
	if err := utils.WriteFileAtomic(file, []byte(utils.NormalizeNewlines(text)), utils.PermFile); err != nil {
		return nil, err
	}
	utils.PrintMessage("Wrote job to %s", utils.StylePath(file))

	result := &Result{File: file, OutputDir: res.OutputDir}
	if req.DryRun {
		utils.PrintNote("Dry run; not running job")
		return result, nil
	}

	launcher := r.Launcher
	if launcher == nil {
		launcher = ExecLauncher{}
	}
	bin := sched.SubmitCommand()
	utils.PrintDebug("Executing: %s", utils.StyleCommand(shellquote.Join(bin, file)))

	output, exitCode, err := launcher.Launch(ctx, bin, file)
	result.Output = output
	if err == nil && exitCode != 0 {
		err = fmt.Errorf("exit status %d", exitCode)
	}
	if err != nil {
		return result, scheduler.NewSubmissionError(string(sched.Type()), file, exitCode, strings.TrimSpace(output), err)
	}

	result.Submitted = true
	utils.PrintSuccess("Submitted job %s with %s", utils.StyleName(res.JobName), bin)
	return result, nil
}
