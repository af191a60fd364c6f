package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/gregdeon/cluster-utils/internal/config"
	"github.com/gregdeon/cluster-utils/internal/scheduler"
	"github.com/gregdeon/cluster-utils/internal/utils"
	"github.com/spf13/cobra"
)

var (
	showPath  bool
	initForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cluster-utils configuration",
	Long: `Manage cluster-utils configuration settings.

Configuration priority (highest to lowest):
  1. Command-line flags (--job-dir, --platform)
  2. Environment variables (CLUSTER_UTILS_JOB_DIR, CLUSTER_UTILS_PLATFORM)
  3. Config file (--config, ~/.config/cluster-utils, ~/.cluster-utils, /etc/cluster-utils)
  4. Defaults (~/scratch/jobs, slurm)`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showPath {
			configPath, err := config.GetUserConfigPath()
			if err != nil {
				return fmt.Errorf("failed to get config path: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), configPath)
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a user config file with detected settings",
	Long: `Create ~/.config/cluster-utils/config.yaml.

The platform is taken from --platform or CLUSTER_UTILS_PLATFORM, or detected
by looking for sbatch and then qsub on PATH. The job directory is taken from
--job-dir or CLUSTER_UTILS_JOB_DIR and defaults to ~/scratch/jobs.
An existing config file is not read; use --force to replace it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetUserConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		if configFile != "" {
			path = utils.ExpandHome(configFile)
		}
		if utils.FileExists(path) && !initForce {
			return scheduler.NewAlreadyExists("config init", path, nil)
		}

		v, err := config.NewEnvViper()
		if err != nil {
			return err
		}
		if err := bindFlags(v); err != nil {
			return err
		}

		cfg := config.Config{JobDir: utils.ExpandHome(strings.TrimSpace(v.GetString(config.KeyJobDir)))}
		if cfg.JobDir == "" {
			if cfg.JobDir, err = config.DefaultJobDir(); err != nil {
				return err
			}
		}

		if name := strings.TrimSpace(v.GetString(config.KeyPlatform)); name != "" {
			if cfg.Platform, err = scheduler.ParseType(name); err != nil {
				return err
			}
		} else if detected, bin := config.DetectPlatform(); detected != scheduler.SchedulerUnknown {
			utils.PrintMessage("Detected %s at %s", utils.StyleName(detected.String()), utils.StylePath(bin))
			cfg.Platform = detected
		} else {
			utils.PrintWarning("Neither sbatch nor qsub found on PATH; using %s", utils.StyleName(config.DefaultPlatform))
			cfg.Platform = scheduler.SchedulerSLURM
		}

		if err := config.SaveConfig(cfg, path); err != nil {
			return err
		}
		utils.PrintSuccess("Config written to %s", utils.StylePath(path))
		utils.PrintHint("Run %s to check the effective settings", utils.StyleCommand("cluster-utils config show"))
		return nil
	},
}

var configPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show config file search paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, utils.StyleTitle("Config File Search Paths:"))
		for i, dir := range config.SearchPaths() {
			path := filepath.Join(dir, config.ConfigFilename+"."+config.ConfigType)
			status := ""
			if utils.FileExists(path) {
				status = " (exists)"
			}
			fmt.Fprintf(out, "  %d. %s%s\n", i+1, path, status)
		}
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&showPath, "path", false, "Show only the user config file path")
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathsCmd)
	rootCmd.AddCommand(configCmd)
}
