package cmd

import (
	"fmt"

	"github.com/gregdeon/cluster-utils/internal/submit"
	"github.com/gregdeon/cluster-utils/internal/utils"
	"github.com/spf13/cobra"
)

var (
	runResources ResourceFlags
	runBody      BodyFlags
	runFile      string
	runDryRun    bool
)

// newLauncher is swapped out by tests
var newLauncher = func() submit.Launcher { return submit.ExecLauncher{} }

var runCmd = &cobra.Command{
	Use:     "run [flags] [command...]",
	Aliases: []string{"submit"},
	Short:   "Write a job script and submit it with sbatch or qsub",
	Long: `Write a job script and submit it.

Without --file the script goes to <job-dir>/<name>/jobs/<uuid>.sh (.pbs for PBS)
and scheduler logs go to <job-dir>/<name>/output/<uuid>/ unless --output-dir is given.`,
	Example: `  cluster-utils run -n train -A def-lab -t 1-00:00:00 -g 1 python train.py
  cluster-utils run -n sweep -A def-lab -a commands.txt --dry-run
  cluster-utils run -n train -A def-lab --file ./train.sh "python a.py && python b.py"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := runResources.Resources(cfg)
		if err != nil {
			return err
		}
		job, err := runBody.Job(args, res)
		if err != nil {
			return err
		}

		runner := submit.NewRunner(cfg)
		runner.Launcher = newLauncher()
		result, err := runner.Run(cmd.Context(), submit.Request{
			File:   utils.ExpandHome(runFile),
			DryRun: runDryRun,
			Job:    job,
		})
		if err != nil {
			return err
		}
		if result.Output != "" {
			fmt.Fprint(cmd.OutOrStdout(), result.Output)
		}
		utils.PrintDebug("Scheduler logs: %s", utils.StylePath(result.OutputDir))
		return nil
	},
}

func init() {
	RegisterResourceFlags(runCmd, &runResources)
	RegisterBodyFlags(runCmd, &runBody)
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "write the script here instead of an auto-named file")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "write the script but do not submit it")
	rootCmd.AddCommand(runCmd)
}
