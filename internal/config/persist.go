package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/gregdeon/cluster-utils/internal/scheduler"
	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// EnvPrefix is the prefix of environment overrides (CLUSTER_UTILS_JOB_DIR, ...)
const EnvPrefix = "CLUSTER_UTILS"

// appName is the directory name used under the config search paths
const appName = "cluster-utils"

// NewViper returns a viper instance reading, highest priority first:
// 1. Command-line flags (bound by cobra)
// 2. Environment variables (CLUSTER_UTILS_*)
// 3. configFile if given, else the first config.yaml found in
//    ~/.config/cluster-utils, ~/.cluster-utils, /etc/cluster-utils
//
// A missing config file is not an error.
func NewViper(configFile string) (*viper.Viper, error) {
	v, err := NewEnvViper()
	if err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		return v, nil
	}

	v.SetConfigName(ConfigFilename)
	v.SetConfigType(ConfigType)
	for _, dir := range SearchPaths() {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return v, nil
}

// NewEnvViper returns a viper instance reading only CLUSTER_UTILS_* environment
// variables, for callers that must not read an existing config file.
func NewEnvViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for _, key := range []string{KeyJobDir, KeyPlatform} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// SearchPaths lists the directories searched for config.yaml, in order.
func SearchPaths() []string {
	var dirs []string
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userConfigDir, appName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "."+appName))
	}
	return append(dirs, filepath.Join("/etc", appName))
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "."+appName, ConfigFilename+"."+ConfigType), nil
	}
	return filepath.Join(userConfigDir, appName, ConfigFilename+"."+ConfigType), nil
}

// SaveConfig writes cfg's job_dir and platform to path, creating its directory.
func SaveConfig(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	v := viper.New()
	v.SetConfigType(ConfigType)
	v.Set(KeyJobDir, cfg.JobDir)
	v.Set(KeyPlatform, cfg.Platform.String())
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// lookPath is swapped out by tests
var lookPath = exec.LookPath

// DetectPlatform looks for sbatch, then qsub, on PATH.
// Returns the scheduler type and the binary path, or SchedulerUnknown if neither is found.
func DetectPlatform() (scheduler.SchedulerType, string) {
	for _, t := range scheduler.Types() {
		sched, err := scheduler.For(t)
		if err != nil {
			continue
		}
		if path, err := lookPath(sched.SubmitCommand()); err == nil {
			return t, path
		}
	}
	return scheduler.SchedulerUnknown, ""
}
