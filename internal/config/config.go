package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gregdeon/cluster-utils/internal/scheduler"
	"github.com/gregdeon/cluster-utils/internal/utils"
	"github.com/spf13/viper"
)

const VERSION = "0.3.0"

// Config keys
const (
	KeyJobDir   = "job_dir"
	KeyPlatform = "platform"
)

// DefaultPlatform is used when no platform is configured
const DefaultPlatform = "slurm"

// Config holds the settings the runner and farm builder need.
// It is built once by Load and passed down explicitly.
type Config struct {
	JobDir     string                  `json:"job_dir"`
	Platform   scheduler.SchedulerType `json:"platform"`
	ConfigFile string                  `json:"config_file,omitempty"`
}

// DefaultJobDir returns ~/scratch/jobs, the job directory used when none is configured.
func DefaultJobDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, "scratch", "jobs"), nil
}

// Load reads job_dir and platform from v.
// A key set nowhere (flag, env, config file) falls back to its default with a warning.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{ConfigFile: v.ConfigFileUsed()}

	jobDir := strings.TrimSpace(v.GetString(KeyJobDir))
	if jobDir == "" {
		fallback, err := DefaultJobDir()
		if err != nil {
			return Config{}, err
		}
		utils.PrintWarning("%s not set; using %s", EnvName(KeyJobDir), utils.StylePath(fallback))
		jobDir = fallback
	}
	cfg.JobDir = utils.ExpandHome(jobDir)

	platform := strings.TrimSpace(v.GetString(KeyPlatform))
	if platform == "" {
		utils.PrintWarning("%s not set; using %s", EnvName(KeyPlatform), utils.StyleName(DefaultPlatform))
		platform = DefaultPlatform
	}
	t, err := scheduler.ParseType(platform)
	if err != nil {
		return Config{}, err
	}
	cfg.Platform = t

	utils.PrintDebug("Config: job_dir=%s platform=%s file=%q", cfg.JobDir, cfg.Platform, cfg.ConfigFile)
	return cfg, nil
}

// EnvName returns the environment variable that sets key, e.g. CLUSTER_UTILS_JOB_DIR
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
