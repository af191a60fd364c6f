package cmd

import (
	"fmt"

	"github.com/gregdeon/cluster-utils/internal/scheduler"
	"github.com/spf13/cobra"
)

var (
	headerResources ResourceFlags
	headerArrayLen  int
)

var headerCmd = &cobra.Command{
	Use:   "header",
	Short: "Print the scheduler directive block for a job",
	Example: `  cluster-utils header -n train -A def-lab -t 2:00:00 -c 8 -m 32G
  cluster-utils header -n sweep -A def-lab --platform pbs -o ~/logs --array-len 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := headerResources.Resources(cfg)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("array-len") {
			res = res.WithArrayLen(headerArrayLen)
		}
		header, err := scheduler.Header(res)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), header)
		return nil
	},
}

func init() {
	RegisterResourceFlags(headerCmd, &headerResources)
	headerCmd.Flags().IntVar(&headerArrayLen, "array-len", 0, "number of array tasks")
	rootCmd.AddCommand(headerCmd)
}
