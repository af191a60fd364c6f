package cmd

import (
	"fmt"

	"github.com/gregdeon/cluster-utils/internal/scheduler"
	"github.com/spf13/cobra"
)

var (
	scriptResources ResourceFlags
	scriptBody      BodyFlags
)

var scriptCmd = &cobra.Command{
	Use:   "script [flags] [command...]",
	Short: "Print a complete job script without writing or submitting it",
	Long: `Print a complete job script: directives, prefix and body.

The body is either the command given after the flags, or a case statement
over the lines of --array-file with one array task per line.`,
	Example: `  cluster-utils script -n train -A def-lab -p "module load python" python train.py --lr 0.1
  cluster-utils script -n sweep -A def-lab -a commands.txt
  cluster-utils script -n folds -A def-lab -a folds.txt --parallel`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := scriptResources.Resources(cfg)
		if err != nil {
			return err
		}
		job, err := scriptBody.Job(args, res)
		if err != nil {
			return err
		}
		text, err := scheduler.JobString(job)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	RegisterResourceFlags(scriptCmd, &scriptResources)
	RegisterBodyFlags(scriptCmd, &scriptBody)
	rootCmd.AddCommand(scriptCmd)
}
