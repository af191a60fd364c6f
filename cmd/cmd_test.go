package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gregdeon/cluster-utils/internal/scheduler"
	"github.com/gregdeon/cluster-utils/internal/submit"
	"github.com/gregdeon/cluster-utils/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so tests do not leak state
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args in an isolated environment
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeEnv(t, nil, args...)
	return out, err
}

// executeEnv is execute with extra environment variables applied over the
// defaults. It also returns what was logged through utils.Stdout.
func executeEnv(t *testing.T, env map[string]string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("CLUSTER_UTILS_JOB_DIR", filepath.Join(home, "jobs"))
	t.Setenv("CLUSTER_UTILS_PLATFORM", "slurm")
	for k, v := range env {
		t.Setenv(k, v)
	}

	var log bytes.Buffer
	oldOut, oldErr := utils.Stdout, utils.Stderr
	utils.Stdout, utils.Stderr = &log, io.Discard
	t.Cleanup(func() {
		utils.Stdout, utils.Stderr = oldOut, oldErr
		utils.QuietMode, utils.DebugMode = false, false
		resetFlags(rootCmd)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), log.String(), err
}

type recordingLauncher struct {
	mu    sync.Mutex
	calls [][2]string
}

func (l *recordingLauncher) Launch(ctx context.Context, bin, script string) (string, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, [2]string{bin, script})
	return "Submitted batch job 7\n", 0, nil
}

func TestWalltimeCommand(t *testing.T) {
	out, err := execute(t, "walltime", "1500")
	require.NoError(t, err)
	assert.Equal(t, "1-01:00:00\n", out)
}

func TestWalltimeParse(t *testing.T) {
	out, err := execute(t, "walltime", "--parse", "1-12:00:00")
	require.NoError(t, err)
	assert.Equal(t, "2160\n", out)
}

func TestWalltimeRejectsNegative(t *testing.T) {
	_, err := execute(t, "walltime", "--", "-5")
	assert.True(t, scheduler.IsInvalidArgument(err), "got %v", err)
}

func TestHeaderCommandSlurm(t *testing.T) {
	out, err := execute(t, "header", "-n", "train", "-A", "def-lab", "-t", "2:00:00", "-c", "8", "-m", "32G", "-g", "1")
	require.NoError(t, err)

	want := `#!/bin/bash
#SBATCH --time=02:00:00
#SBATCH --nodes=1
#SBATCH --ntasks-per-node=1
#SBATCH --cpus-per-task=8
#SBATCH --mem=32gb
#SBATCH --job-name=train
#SBATCH --account=def-lab
#SBATCH --gres=gpu:1
`
	assert.Equal(t, want, out)
}

func TestHeaderCommandPbsFlagOverridesEnv(t *testing.T) {
	out, err := execute(t, "header", "--platform", "pbs", "-n", "example_job", "-A", "allocation_name",
		"-t", "60", "-o", "output_dir", "--array-len", "10")
	require.NoError(t, err)

	want := `#!/bin/bash
#PBS -l walltime=01:00:00,select=1:ncpus=1:mem=16gb
#PBS -N example_job
#PBS -A allocation_name
#PBS -j oe -o output_dir/$PBS_JOBNAME-$PBS_JOBID-^array_index^.txt
#PBS -J 1-10
`
	assert.Equal(t, want, out)
}

func TestHeaderCommandExpandsOutputDir(t *testing.T) {
	out, err := execute(t, "header", "--platform", "pbs", "-n", "job", "-A", "acct", "-o", "~/logs")
	require.NoError(t, err)
	logs := filepath.Join(os.Getenv("HOME"), "logs")
	assert.Contains(t, out, "#PBS -j oe -o "+logs+"/$PBS_JOBNAME-$PBS_JOBID.txt\n")
}

func TestHeaderCommandPbsNeedsOutputDir(t *testing.T) {
	_, err := execute(t, "header", "--platform", "pbs", "-n", "job", "-A", "acct")
	assert.True(t, scheduler.IsMissingConfig(err), "got %v", err)
}

func TestHeaderCommandRequiresName(t *testing.T) {
	_, err := execute(t, "header", "-A", "acct")
	assert.Error(t, err)
}

func TestScriptCommandJoinsArgs(t *testing.T) {
	out, err := execute(t, "script", "-n", "train", "-A", "def-lab", "-p", "module load python",
		"python", "train.py", "--msg", "hello world")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "\nmodule load python\npython train.py --msg 'hello world'\n"), out)
}

func TestScriptCommandSingleArgVerbatim(t *testing.T) {
	out, err := execute(t, "script", "-n", "train", "-A", "def-lab", "python a.py && python b.py")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "\n\npython a.py && python b.py\n"), out)
}

func TestScriptCommandArrayFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cmds.txt")
	require.NoError(t, os.WriteFile(file, []byte("# sweep\npython run.py 1\n\npython run.py 2\n"), 0o644))

	out, err := execute(t, "script", "-n", "sweep", "-A", "def-lab", "-a", file)
	require.NoError(t, err)
	assert.Contains(t, out, "#SBATCH --array=1-2\n")
	assert.Contains(t, out, "case $SLURM_ARRAY_TASK_ID in\n1)\npython run.py 1\n;;\n2)\npython run.py 2\n;;\n\nesac\n")
}

func TestScriptCommandParallel(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cmds.txt")
	require.NoError(t, os.WriteFile(file, []byte("python fold.py 1\npython fold.py 2\n"), 0o644))

	out, err := execute(t, "script", "-n", "folds", "-A", "def-lab", "-a", file, "--parallel")
	require.NoError(t, err)
	assert.NotContains(t, out, "--array")
	assert.Contains(t, out, "\npython fold.py 1 & python fold.py 2 & wait\n")
}

func TestScriptCommandNoBody(t *testing.T) {
	_, err := execute(t, "script", "-n", "x", "-A", "y")
	assert.True(t, scheduler.IsInvalidArgument(err), "got %v", err)
}

func TestScriptCommandArrayAndCommand(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cmds.txt")
	require.NoError(t, os.WriteFile(file, []byte("a\n"), 0o644))
	_, err := execute(t, "script", "-n", "x", "-A", "y", "-a", file, "echo")
	assert.True(t, scheduler.IsInvalidArgument(err), "got %v", err)
}

func TestRunCommandDryRun(t *testing.T) {
	launcher := &recordingLauncher{}
	orig := newLauncher
	newLauncher = func() submit.Launcher { return launcher }
	t.Cleanup(func() { newLauncher = orig })

	file := filepath.Join(t.TempDir(), "job.sh")
	_, err := execute(t, "run", "-n", "train", "-A", "def-lab", "--dry-run", "--file", file, "python train.py")
	require.NoError(t, err)

	assert.FileExists(t, file)
	assert.Empty(t, launcher.calls)
}

func TestRunCommandSubmits(t *testing.T) {
	launcher := &recordingLauncher{}
	orig := newLauncher
	newLauncher = func() submit.Launcher { return launcher }
	t.Cleanup(func() { newLauncher = orig })

	out, err := execute(t, "run", "-n", "train", "-A", "def-lab", "python train.py")
	require.NoError(t, err)

	require.Len(t, launcher.calls, 1)
	assert.Equal(t, "sbatch", launcher.calls[0][0])
	assert.True(t, strings.HasSuffix(launcher.calls[0][1], ".sh"))
	assert.Contains(t, filepath.ToSlash(launcher.calls[0][1]), "/jobs/train/jobs/")
	assert.Equal(t, "Submitted batch job 7\n", out)
}

func TestFarmCommand(t *testing.T) {
	dir := t.TempDir()
	cases := filepath.Join(dir, "cases.txt")
	require.NoError(t, os.WriteFile(cases, []byte("python run.py --a 1\npython run.py --a 2\n"), 0o644))
	farmDir := filepath.Join(dir, "farm")

	_, err := execute(t, "farm", farmDir, "--cases-file", cases, "-n", "sweep", "-A", "def-lab",
		"--final-script", "python collect.py", "--final-mem", "64G")
	require.NoError(t, err)

	table, err := os.ReadFile(filepath.Join(farmDir, "table.dat"))
	require.NoError(t, err)
	assert.Equal(t, "1 python run.py --a 1\n2 python run.py --a 2\n", string(table))

	final, err := os.ReadFile(filepath.Join(farmDir, "final.sh"))
	require.NoError(t, err)
	assert.Contains(t, string(final), "#SBATCH --mem=64gb\n")
	assert.Contains(t, string(final), "#SBATCH --job-name=sweep\n")
	assert.Contains(t, string(final), "\npython collect.py\n")
}

func TestFarmCommandExistingDir(t *testing.T) {
	dir := t.TempDir()
	cases := filepath.Join(dir, "cases.txt")
	require.NoError(t, os.WriteFile(cases, []byte("echo 1\n"), 0o644))

	_, err := execute(t, "farm", dir, "--cases-file", cases, "-n", "sweep", "-A", "def-lab")
	assert.True(t, scheduler.IsAlreadyExists(err), "got %v", err)
}

func TestConfigShow(t *testing.T) {
	out, err := execute(t, "config", "show", "--platform", "pbs", "--job-dir", "/data/jobs")
	require.NoError(t, err)
	assert.Equal(t, "job_dir: /data/jobs\nplatform: pbs\n", out)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := execute(t, "config", "init", "--config", path, "--platform", "pbs", "--job-dir", "/data/jobs")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "platform: pbs")
	assert.Contains(t, string(data), "job_dir: /data/jobs")

	_, err = execute(t, "config", "init", "--config", path, "--platform", "pbs")
	assert.True(t, scheduler.IsAlreadyExists(err), "got %v", err)
}

func TestConfigInitReadsEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	env := map[string]string{
		"CLUSTER_UTILS_PLATFORM": "pbs",
		"CLUSTER_UTILS_JOB_DIR":  "/env/jobs",
	}
	_, log, err := executeEnv(t, env, "config", "init", "--config", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "platform: pbs")
	assert.Contains(t, string(data), "job_dir: /env/jobs")
	assert.Contains(t, log, "[HINT]")
	assert.Contains(t, log, "cluster-utils config show")
}

func TestConfigInitFlagOverridesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	env := map[string]string{"CLUSTER_UTILS_PLATFORM": "pbs"}
	_, _, err := executeEnv(t, env, "config", "init", "--config", path, "--platform", "slurm", "--job-dir", "/flag/jobs")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "platform: slurm")
	assert.Contains(t, string(data), "job_dir: /flag/jobs")
}

func TestConfigInitQuietSkipsHint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, log, err := executeEnv(t, nil, "config", "init", "--config", path, "-q")
	require.NoError(t, err)
	assert.NotContains(t, log, "[HINT]")
}

func TestConfigPaths(t *testing.T) {
	out, err := execute(t, "config", "paths")
	require.NoError(t, err)
	assert.Contains(t, out, "Config File Search Paths:")
	assert.Contains(t, out, "  1. ")
}

func TestTimeFlagHelp(t *testing.T) {
	usage := scriptCmd.Flags().Lookup("time").Usage
	assert.Contains(t, usage, "HH:MM (hours:minutes")
	assert.Contains(t, usage, "D-HH")
}

func TestFarmFinalFlagHelp(t *testing.T) {
	for _, name := range []string{"final-time", "final-mem", "final-cpus"} {
		f := farmCmd.Flags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Contains(t, f.Usage, "0 keeps the worker's", name)
	}
	assert.Contains(t, farmCmd.Long, "--final-cpus 0 keeps the worker's CPUs")
}

func TestFarmCommandZeroFinalCPUs(t *testing.T) {
	dir := t.TempDir()
	cases := filepath.Join(dir, "cases.txt")
	require.NoError(t, os.WriteFile(cases, []byte("echo 1\n"), 0o644))
	farmDir := filepath.Join(dir, "farm")

	_, err := execute(t, "farm", farmDir, "--cases-file", cases, "-n", "sweep", "-A", "def-lab",
		"-c", "4", "--final-script", "echo done", "--final-cpus", "0")
	require.NoError(t, err)

	final, err := os.ReadFile(filepath.Join(farmDir, "final.sh"))
	require.NoError(t, err)
	assert.Contains(t, string(final), "#SBATCH --cpus-per-task=4\n")
}

func TestJoinCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"echo hi; echo bye"}, "echo hi; echo bye"},
		{[]string{"python", "x.py"}, "python x.py"},
		{[]string{"echo", "a b"}, "echo 'a b'"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, joinCommand(tt.args))
	}
}
