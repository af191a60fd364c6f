package cmd

import (
	"fmt"
	"strconv"

	"github.com/gregdeon/cluster-utils/internal/scheduler"
	"github.com/spf13/cobra"
)

var walltimeParse bool

var walltimeCmd = &cobra.Command{
	Use:   "walltime <minutes>",
	Short: "Format a walltime in minutes as [D-]HH:MM:SS",
	Example: `  cluster-utils walltime 90            # 01:30:00
  cluster-utils walltime 2880          # 2-00:00:00
  cluster-utils walltime --parse 1-12:00:00   # 2160`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if walltimeParse {
			mins, err := scheduler.ParseWalltime(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mins)
			return nil
		}

		mins, err := strconv.Atoi(args[0])
		if err != nil {
			return scheduler.NewInvalidArgument("walltime", "%q is not a whole number of minutes", args[0])
		}
		s, err := scheduler.FormatWalltime(mins)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	},
}

func init() {
	walltimeCmd.Flags().BoolVar(&walltimeParse, "parse", false, "parse a walltime string back into minutes")
	rootCmd.AddCommand(walltimeCmd)
}
