// Package farm lays out META-Farm directories: template files, worker and
// resubmission scripts, the case table and an optional final script.
package farm

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gregdeon/cluster-utils/internal/scheduler"
	"github.com/gregdeon/cluster-utils/internal/utils"
	"github.com/imdario/mergo"
)

//go:embed farm_files/config.h farm_files/single_case.sh
var farmFiles embed.FS

// File names inside a farm directory
const (
	ConfigFile     = "config.h"
	SingleCaseFile = "single_case.sh"
	JobScriptFile  = "job_script.sh"
	ResubmitFile   = "resubmit_script.sh"
	TableFile      = "table.dat"
	FinalFile      = "final.sh"
)

// META-Farm entry points run by the worker and resubmission scripts
const (
	workerCommand   = "task.run"
	resubmitCommand = "autojob.run"
)

// Options describes a farm to create.
type Options struct {
	Dir       string              // Farm directory, must not exist
	Cases     []string            // One command per case, case i is Cases[i-1]
	Prefix    string              // Setup commands for the worker scripts
	Resources scheduler.Resources // Worker job resources

	FinalScript *string // Command run once all cases finish (nil = no final.sh)
	// FinalResources for final.sh. Zero or nil fields are taken from Resources.
	FinalResources *scheduler.Resources
}

// Builder creates farms. A zero Builder writes with utils.WriteFileAtomic.
type Builder struct {
	WriteFile func(path string, data []byte, perm os.FileMode) error
}

// Build creates a farm with the default Builder.
func Build(opts Options) error {
	return Builder{}.Build(opts)
}

type farmFile struct {
	name string
	data []byte
	perm os.FileMode
}

// Build renders every file first, then creates opts.Dir and writes them in order:
// config.h, single_case.sh, job_script.sh, resubmit_script.sh, table.dat, final.sh.
// An existing opts.Dir fails with an already-exists error. A write failure
// leaves the files written so far in place.
func (b Builder) Build(opts Options) error {
	const op = "farm"
	if opts.Dir == "" {
		return scheduler.NewInvalidArgument(op, "farm directory is required")
	}

	files, err := render(opts)
	if err != nil {
		return err
	}

	if err := os.Mkdir(opts.Dir, utils.PermDir); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return scheduler.NewAlreadyExists(op, opts.Dir, err)
		}
		return err
	}

	write := b.WriteFile
	if write == nil {
		write = utils.WriteFileAtomic
	}
	for _, f := range files {
		path := filepath.Join(opts.Dir, f.name)
		if err := write(path, f.data, f.perm); err != nil {
			return err
		}
		utils.PrintDebug("Wrote %s", utils.StylePath(path))
	}

	utils.PrintSuccess("Created farm in %s with %s cases", utils.StylePath(opts.Dir), utils.StyleNumber(len(opts.Cases)))
	return nil
}

func render(opts Options) ([]farmFile, error) {
	var files []farmFile
	for _, name := range []string{ConfigFile, SingleCaseFile} {
		data, err := farmFiles.ReadFile("farm_files/" + name)
		if err != nil {
			return nil, err
		}
		files = append(files, farmFile{name, data, utils.PermFile})
	}

	for _, s := range []struct{ name, command string }{
		{JobScriptFile, workerCommand},
		{ResubmitFile, resubmitCommand},
	} {
		command := s.command
		text, err := scheduler.JobString(scheduler.Job{Command: &command, Prefix: opts.Prefix, Resources: opts.Resources})
		if err != nil {
			return nil, err
		}
		files = append(files, farmFile{s.name, []byte(utils.NormalizeNewlines(text)), utils.PermExec})
	}

	table, err := Table(opts.Cases)
	if err != nil {
		return nil, err
	}
	files = append(files, farmFile{TableFile, []byte(table), utils.PermFile})

	if opts.FinalScript != nil {
		res, err := FinalResources(opts.Resources, opts.FinalResources)
		if err != nil {
			return nil, err
		}
		text, err := scheduler.JobString(scheduler.Job{Command: opts.FinalScript, Resources: res})
		if err != nil {
			return nil, err
		}
		files = append(files, farmFile{FinalFile, []byte(utils.NormalizeNewlines(text)), utils.PermExec})
	}
	return files, nil
}

// Table returns the table.dat contents: "<i> <case>\n" for each case, 1-based.
func Table(cases []string) (string, error) {
	var b strings.Builder
	for i, c := range cases {
		c = strings.TrimRight(utils.NormalizeNewlines(c), "\n")
		if strings.Contains(c, "\n") {
			return "", scheduler.NewInvalidArgument("farm", "case %d spans several lines", i+1)
		}
		fmt.Fprintf(&b, "%d %s\n", i+1, c)
	}
	return b.String(), nil
}

// FinalResources fills the unset fields of final from worker.
// A nil final yields a copy of worker.
func FinalResources(worker scheduler.Resources, final *scheduler.Resources) (scheduler.Resources, error) {
	if final == nil {
		return worker, nil
	}
	merged := *final
	if err := mergo.Merge(&merged, worker); err != nil {
		return scheduler.Resources{}, fmt.Errorf("failed to merge final resources: %w", err)
	}
	return merged, nil
}
