package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"autojudge/pkg/utils/logger"

	"github.com/joho/godotenv"
	"github.com/koding/multiconfig"
	"gopkg.in/yaml.v3"
)

const (
	AppDirName       = "AutoJudge"
	SettingsFileName = "settings.yaml"
	EnvFileName      = ".env"
	EnvPrefix        = "AUTOJUDGE"
	// HomeEnv overrides the per-user application data directory.
	HomeEnv = EnvPrefix + "_HOME"
)

// Settings holds the tool's ambient knobs. The inbox and user name live in
// the configuration store, not here.
type Settings struct {
	JudgeProcess   string        `yaml:"judgeProcess" default:"Themis"`
	Timeout        time.Duration `yaml:"timeout" default:"600s"`
	PollInterval   time.Duration `yaml:"pollInterval" default:"250ms"`
	SettleInterval time.Duration `yaml:"settleInterval" default:"200ms"`
	Quiet          bool          `yaml:"quiet"`
	Logger         logger.Config `yaml:"logger"`
}

// AppDir returns the per-user application data directory.
func AppDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir failed: %w", err)
	}
	return filepath.Join(base, AppDirName), nil
}

// Load layers tag defaults, <appDir>/settings.yaml, <appDir>/.env and
// AUTOJUDGE_* environment variables, later sources winning.
func Load(appDir string) (Settings, error) {
	cfg := Settings{}
	if err := (&multiconfig.TagLoader{}).Load(&cfg); err != nil {
		return cfg, fmt.Errorf("apply default settings failed: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(appDir, SettingsFileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse settings file failed: %w", err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return cfg, fmt.Errorf("read settings file failed: %w", err)
	}

	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(filepath.Join(appDir, EnvFileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load env file failed: %w", err)
	}
	env := &multiconfig.EnvironmentLoader{Prefix: EnvPrefix, CamelCase: true}
	if err := env.Load(&cfg); err != nil {
		return cfg, fmt.Errorf("load settings from environment failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (s Settings) Validate() error {
	if s.JudgeProcess == "" {
		return errors.New("judgeProcess must not be empty")
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("pollInterval must be positive, got %s", s.PollInterval)
	}
	if s.SettleInterval < 0 {
		return fmt.Errorf("settleInterval must not be negative, got %s", s.SettleInterval)
	}
	return nil
}
