package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gregdeon/cluster-utils/internal/config"
	"github.com/gregdeon/cluster-utils/internal/scheduler"
	"github.com/gregdeon/cluster-utils/internal/utils"
	shellquote "github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
)

// ResourceFlags holds the resource flags shared by header, script, run and farm
type ResourceFlags struct {
	Name      string
	Account   string
	Time      string
	Nodes     int
	CPUs      int
	Mem       string
	GPUs      int
	GPUMem    string
	OutputDir string
}

// RegisterResourceFlags registers resource flags on a cobra command
func RegisterResourceFlags(cmd *cobra.Command, flags *ResourceFlags) {
	defaults := scheduler.DefaultResources()
	cmd.Flags().StringVarP(&flags.Name, "name", "n", "", "job name (required)")
	cmd.Flags().StringVarP(&flags.Account, "account", "A", "", "allocation/account to charge (required)")
	cmd.Flags().StringVarP(&flags.Time, "time", "t", strconv.Itoa(defaults.WalltimeMins), "walltime as minutes, HH:MM (hours:minutes, not Slurm's MM:SS), HH:MM:SS, D-HH or D-HH:MM:SS")
	cmd.Flags().IntVarP(&flags.Nodes, "nodes", "N", defaults.Nodes, "number of nodes")
	cmd.Flags().IntVarP(&flags.CPUs, "cpus", "c", defaults.CPUs, "CPUs per node")
	cmd.Flags().StringVarP(&flags.Mem, "mem", "m", strconv.Itoa(defaults.MemGB), "memory per node (e.g. 16, 32G, 1T)")
	cmd.Flags().IntVarP(&flags.GPUs, "gpus", "g", defaults.GPUs, "GPUs per node")
	cmd.Flags().StringVar(&flags.GPUMem, "gpu-mem", "", "memory per GPU (e.g. 16G); unset leaves it to the scheduler")
	cmd.Flags().StringVarP(&flags.OutputDir, "output-dir", "o", "", "directory for scheduler log files")

	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("account")
}

// Resources converts the flags into a Resources for cfg's platform.
func (f *ResourceFlags) Resources(cfg config.Config) (scheduler.Resources, error) {
	r := scheduler.DefaultResources()
	r.JobName = f.Name
	r.Allocation = f.Account
	r.Nodes = f.Nodes
	r.CPUs = f.CPUs
	r.GPUs = f.GPUs
	r = r.WithOutputDir(utils.ExpandHome(f.OutputDir))
	r.Scheduler = cfg.Platform

	mins, err := scheduler.ParseWalltime(f.Time)
	if err != nil {
		return r, err
	}
	r.WalltimeMins = mins

	if r.MemGB, err = parseMem("--mem", f.Mem); err != nil {
		return r, err
	}
	if f.GPUMem != "" {
		gpuMem, err := parseMem("--gpu-mem", f.GPUMem)
		if err != nil {
			return r, err
		}
		r.GPUMemGB = &gpuMem
	}
	return r, r.Validate()
}

func parseMem(flag, value string) (int, error) {
	gb, err := utils.ParseSizeToGB(value)
	if err != nil {
		return 0, scheduler.NewInvalidArgument("flags", "%s: %v", flag, err)
	}
	return gb, nil
}

// BodyFlags selects the job body: positional command args or an array file
type BodyFlags struct {
	Prefix     string
	PrefixFile string
	ArrayFile  string
	Parallel   bool
}

// RegisterBodyFlags registers --prefix, --prefix-file, --array-file and --parallel
func RegisterBodyFlags(cmd *cobra.Command, flags *BodyFlags) {
	cmd.Flags().StringVarP(&flags.Prefix, "prefix", "p", "", "setup commands run before the job body")
	cmd.Flags().StringVar(&flags.PrefixFile, "prefix-file", "", "read setup commands from a file")
	cmd.Flags().StringVarP(&flags.ArrayFile, "array-file", "a", "", "one command per line; submitted as an array job")
	cmd.Flags().BoolVar(&flags.Parallel, "parallel", false, "with --array-file, run all lines concurrently in a single job")

	cmd.MarkFlagsMutuallyExclusive("prefix", "prefix-file")

	// Everything after the first positional argument belongs to the job command
	cmd.Flags().SetInterspersed(false)
}

// Job builds a scheduler.Job from the body flags and positional args.
func (f *BodyFlags) Job(args []string, res scheduler.Resources) (scheduler.Job, error) {
	job := scheduler.Job{Prefix: f.Prefix, Resources: res}
	if f.PrefixFile != "" {
		data, err := os.ReadFile(f.PrefixFile)
		if err != nil {
			return job, err
		}
		job.Prefix = strings.TrimRight(string(data), "\n")
	}

	if f.Parallel && f.ArrayFile == "" {
		return job, scheduler.NewInvalidArgument("flags", "--parallel requires --array-file")
	}
	if f.ArrayFile != "" {
		if len(args) > 0 {
			return job, scheduler.NewInvalidArgument("flags", "cannot combine --array-file with a command")
		}
		cmds, err := utils.ReadCommandLines(f.ArrayFile)
		if err != nil {
			return job, err
		}
		if len(cmds) == 0 {
			return job, scheduler.NewInvalidArgument("flags", "no commands found in %s", f.ArrayFile)
		}
		if f.Parallel {
			command := scheduler.Parallel(cmds)
			job.Command = &command
		} else {
			job.Array = cmds
		}
		return job, nil
	}

	if len(args) > 0 {
		command := joinCommand(args)
		job.Command = &command
	}
	return job, nil
}

// joinCommand keeps a single argument verbatim so shell syntax passes through,
// and quotes multiple arguments so each stays one word.
func joinCommand(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return shellquote.Join(args...)
}

// splitCases reads a cases file where each non-comment line is one case.
func splitCases(path string) ([]string, error) {
	cases, err := utils.ReadCommandLines(path)
	if err != nil {
		return nil, err
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("no cases found in %s", path)
	}
	return cases, nil
}
