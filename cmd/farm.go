package cmd

import (
	"os"
	"strings"

	"github.com/gregdeon/cluster-utils/internal/farm"
	"github.com/gregdeon/cluster-utils/internal/scheduler"
	"github.com/gregdeon/cluster-utils/internal/utils"
	"github.com/spf13/cobra"
)

var (
	farmResources ResourceFlags
	farmCasesFile string
	farmPrefix    string

	farmFinalScript string
	farmFinalName   string
	farmFinalTime   string
	farmFinalMem    string
	farmFinalCPUs   int
)

var farmCmd = &cobra.Command{
	Use:   "farm <dir>",
	Short: "Create a META-Farm directory for a parameter sweep",
	Long: `Create a META-Farm directory: config.h, single_case.sh, job_script.sh,
resubmit_script.sh and table.dat, plus final.sh when --final-script is given.

<dir> must not exist. Each non-comment line of --cases-file becomes one case.
Unset --final-* flags take the worker's values. A zero value counts as unset,
so --final-cpus 0 keeps the worker's CPUs, and the final job always requests
the worker's GPUs.`,
	Example: `  cluster-utils farm ~/farms/sweep1 --cases-file cases.txt -n sweep -A def-lab -t 3:00:00
  cluster-utils farm ./sweep2 --cases-file cases.txt -n sweep -A def-lab --final-script "python collect.py" --final-mem 64G`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := farmResources.Resources(cfg)
		if err != nil {
			return err
		}
		cases, err := splitCases(farmCasesFile)
		if err != nil {
			return err
		}

		opts := farm.Options{
			Dir:       utils.ExpandHome(args[0]),
			Cases:     cases,
			Prefix:    farmPrefix,
			Resources: res,
		}
		if farmFinalScript != "" {
			script := farmFinalScript
			if data, err := os.ReadFile(farmFinalScript); err == nil {
				script = strings.TrimRight(string(data), "\n")
			}
			opts.FinalScript = &script

			final, err := finalResources(cmd)
			if err != nil {
				return err
			}
			opts.FinalResources = final
		}
		return farm.Build(opts)
	},
}

// finalResources collects only the --final-* flags that were set.
// Zero values are filled from the worker's resources by farm.FinalResources.
func finalResources(cmd *cobra.Command) (*scheduler.Resources, error) {
	final := &scheduler.Resources{JobName: farmFinalName}
	if cmd.Flags().Changed("final-time") {
		mins, err := scheduler.ParseWalltime(farmFinalTime)
		if err != nil {
			return nil, err
		}
		final.WalltimeMins = mins
	}
	if cmd.Flags().Changed("final-mem") {
		gb, err := parseMem("--final-mem", farmFinalMem)
		if err != nil {
			return nil, err
		}
		final.MemGB = gb
	}
	if cmd.Flags().Changed("final-cpus") {
		final.CPUs = farmFinalCPUs
	}
	return final, nil
}

func init() {
	RegisterResourceFlags(farmCmd, &farmResources)
	farmCmd.Flags().StringVar(&farmCasesFile, "cases-file", "", "file with one case command per line (required)")
	farmCmd.Flags().StringVarP(&farmPrefix, "prefix", "p", "", "setup commands for the worker scripts")
	farmCmd.Flags().StringVar(&farmFinalScript, "final-script", "", "command, or file holding commands, run after all cases finish")
	farmCmd.Flags().StringVar(&farmFinalName, "final-name", "", "job name of the final script (default: worker name)")
	farmCmd.Flags().StringVar(&farmFinalTime, "final-time", "", "walltime of the final script (unset or 0 keeps the worker's)")
	farmCmd.Flags().StringVar(&farmFinalMem, "final-mem", "", "memory of the final script (unset or 0 keeps the worker's)")
	farmCmd.Flags().IntVar(&farmFinalCPUs, "final-cpus", 0, "CPUs of the final script (unset or 0 keeps the worker's)")
	farmCmd.MarkFlagRequired("cases-file")
	rootCmd.AddCommand(farmCmd)
}
