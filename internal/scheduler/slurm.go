package scheduler

import (
	"fmt"
)

// SlurmScheduler writes #SBATCH directives and submits with sbatch
type SlurmScheduler struct{}

func (SlurmScheduler) Type() SchedulerType   { return SchedulerSLURM }
func (SlurmScheduler) ArrayIndexVar() string { return "$SLURM_ARRAY_TASK_ID" }
func (SlurmScheduler) SubmitCommand() string { return "sbatch" }
func (SlurmScheduler) ScriptExt() string     { return "sh" }

// Directives returns one #SBATCH line per setting.
// The output path uses Slurm's own placeholders: %x job name, %j job id, %a array index.
// Without an output directory the --output line is left out and Slurm uses its default.
func (s SlurmScheduler) Directives(r Resources) ([]string, error) {
	walltime, err := FormatWalltime(r.WalltimeMins)
	if err != nil {
		return nil, err
	}

	gresLine := ""
	if r.GPUs > 0 {
		gresLine = fmt.Sprintf("#SBATCH --gres=gpu:%d", r.GPUs)
	}
	gpuMemLine := ""
	if r.GPUMemGB != nil {
		gpuMemLine = fmt.Sprintf("#SBATCH --mem-per-gpu=%dgb", *r.GPUMemGB)
	}
	outputLine := ""
	if r.OutputDir != "" {
		if r.IsArray() {
			outputLine = fmt.Sprintf("#SBATCH --output=%s/%%x-%%j-%%a.txt", r.OutputDir)
		} else {
			outputLine = fmt.Sprintf("#SBATCH --output=%s/%%x-%%j.txt", r.OutputDir)
		}
	}
	arrayLine := ""
	if r.IsArray() {
		arrayLine = fmt.Sprintf("#SBATCH --array=1-%d", *r.ArrayLen)
	}

	lines := []string{
		fmt.Sprintf("#SBATCH --time=%s", walltime),
		fmt.Sprintf("#SBATCH --nodes=%d", r.Nodes),
		"#SBATCH --ntasks-per-node=1",
		fmt.Sprintf("#SBATCH --cpus-per-task=%d", r.CPUs),
		fmt.Sprintf("#SBATCH --mem=%dgb", r.MemGB),
		fmt.Sprintf("#SBATCH --job-name=%s", r.JobName),
		fmt.Sprintf("#SBATCH --account=%s", r.Allocation),
		gresLine,
		gpuMemLine,
		outputLine,
		arrayLine,
	}
	return nonEmpty(lines), nil
}

func nonEmpty(lines []string) []string {
	out := lines[:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
