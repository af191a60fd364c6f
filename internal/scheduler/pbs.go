package scheduler

import (
	"fmt"
	"strings"
)

// PbsScheduler writes #PBS directives and submits with qsub
type PbsScheduler struct{}

func (PbsScheduler) Type() SchedulerType   { return SchedulerPBS }
func (PbsScheduler) ArrayIndexVar() string { return "$PBS_ARRAY_INDEX" }
func (PbsScheduler) SubmitCommand() string { return "qsub" }
func (PbsScheduler) ScriptExt() string     { return "pbs" }

// Directives returns the #PBS lines for r.
// PBS has no default log location here, so an unset output directory is an error.
// $PBS_JOBNAME, $PBS_JOBID and ^array_index^ are expanded by PBS at run time.
func (p PbsScheduler) Directives(r Resources) ([]string, error) {
	if r.OutputDir == "" {
		return nil, NewMissingConfig("header", "PBS jobs require an output directory")
	}
	walltime, err := FormatWalltime(r.WalltimeMins)
	if err != nil {
		return nil, err
	}

	// select=N:ncpus=M:mem=Xgb[:ngpus=G][:gpu_mem=Ygb]
	selectParts := []string{
		fmt.Sprintf("select=%d", r.Nodes),
		fmt.Sprintf("ncpus=%d", r.CPUs),
		fmt.Sprintf("mem=%dgb", r.MemGB),
	}
	if r.GPUs > 0 {
		selectParts = append(selectParts, fmt.Sprintf("ngpus=%d", r.GPUs))
	}
	if r.GPUMemGB != nil {
		selectParts = append(selectParts, fmt.Sprintf("gpu_mem=%dgb", *r.GPUMemGB))
	}

	outputPath := fmt.Sprintf("%s/$PBS_JOBNAME-$PBS_JOBID.txt", r.OutputDir)
	if r.IsArray() {
		outputPath = fmt.Sprintf("%s/$PBS_JOBNAME-$PBS_JOBID-^array_index^.txt", r.OutputDir)
	}

	lines := []string{
		fmt.Sprintf("#PBS -l walltime=%s,%s", walltime, strings.Join(selectParts, ":")),
		fmt.Sprintf("#PBS -N %s", r.JobName),
		fmt.Sprintf("#PBS -A %s", r.Allocation),
		fmt.Sprintf("#PBS -j oe -o %s", outputPath),
	}
	if r.IsArray() {
		lines = append(lines, fmt.Sprintf("#PBS -J 1-%d", *r.ArrayLen))
	}
	return lines, nil
}
