package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gregdeon/cluster-utils/internal/config"
	"github.com/gregdeon/cluster-utils/internal/scheduler"
	"github.com/gregdeon/cluster-utils/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	debugMode  bool
	quietMode  bool
	configFile string
	jobDirFlag string
	platform   string
)

var rootCmd = &cobra.Command{
	Use:   "cluster-utils",
	Short: "Generate and submit Slurm and PBS job scripts",
	Long: `cluster-utils writes batch job scripts for Slurm and PBS from a few
resource flags, and optionally submits them with sbatch or qsub.

Settings (highest priority first):
  1. Command-line flags (--job-dir, --platform)
  2. Environment variables (CLUSTER_UTILS_JOB_DIR, CLUSTER_UTILS_PLATFORM)
  3. Config file (--config, or ~/.config/cluster-utils/config.yaml)
  4. Defaults (~/scratch/jobs, slurm)`,
	Version:       config.VERSION,
	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.QuietMode = quietMode
		if debugMode {
			utils.DebugMode = true
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("cluster-utils Version: %s", utils.StyleNumber(config.VERSION))
		}
	},
}

// loadConfig builds the effective configuration for commands that need it.
// Flags take precedence over environment variables and the config file.
func loadConfig() (config.Config, error) {
	v, err := config.NewViper(configFile)
	if err != nil {
		return config.Config{}, err
	}
	if err := bindFlags(v); err != nil {
		return config.Config{}, err
	}
	return config.Load(v)
}

// bindFlags lets --job-dir and --platform override the other sources in v.
func bindFlags(v *viper.Viper) error {
	flags := rootCmd.PersistentFlags()
	if err := v.BindPFlag(config.KeyJobDir, flags.Lookup("job-dir")); err != nil {
		return err
	}
	return v.BindPFlag(config.KeyPlatform, flags.Lookup("platform"))
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// For failed submissions print what the scheduler said before the error itself.
		var se *scheduler.SubmissionError
		if errors.As(err, &se) {
			if out := strings.TrimSpace(se.Output); out != "" {
				utils.PrintError("%s", out)
			}
			utils.PrintError("%s exited with status %d for %s", se.Scheduler, se.ExitCode, utils.StylePath(se.Script))
			stop()
			os.Exit(1)
		}
		utils.PrintError("%v", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress informational messages")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ~/.config/cluster-utils/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&jobDirFlag, "job-dir", "", "Directory for auto-named job scripts (env CLUSTER_UTILS_JOB_DIR)")
	rootCmd.PersistentFlags().StringVar(&platform, "platform", "", "Scheduler: slurm or pbs (env CLUSTER_UTILS_PLATFORM)")

	rootCmd.RegisterFlagCompletionFunc("platform", platformCompletion)
}

func platformCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, t := range scheduler.Types() {
		names = append(names, t.String())
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
