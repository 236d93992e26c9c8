package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration, resolved by viper:
// flags > environment (CLUSTERMAP_*) > config file > defaults.
type Config struct {
	Vault         string            `mapstructure:"vault"`
	Threshold     float64           `mapstructure:"threshold"`
	FPS           int               `mapstructure:"fps"`
	Confirmations bool              `mapstructure:"confirmations"`
	LogDir        string            `mapstructure:"log_dir"`
	LogRotation   LogRotationConfig `mapstructure:"log_rotation"`
	Verbose       bool              `mapstructure:"verbose"`
}

// LogRotationConfig bounds the rotating debug log.
type LogRotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("threshold", 0.5)
	v.SetDefault("fps", defaultFPS)
	v.SetDefault("confirmations", true)
	v.SetDefault("log_dir", defaultLogDir())
	v.SetDefault("log_rotation.max_size_mb", 10)
	v.SetDefault("log_rotation.max_backups", 3)
	v.SetDefault("log_rotation.max_age_days", 14)
	v.SetDefault("log_rotation.compress", true)
}

// loadConfig reads the optional config file and unmarshals the resolved
// settings. An explicit config path that cannot be read is an error; the
// default location is best-effort.
func loadConfig(v *viper.Viper, configPath string) (*Config, error) {
	setConfigDefaults(v)
	v.SetEnvPrefix("clustermap")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "clustermap"))
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("threshold %.2f out of range [0,1]", cfg.Threshold)
	}
	if cfg.FPS < 1 {
		cfg.FPS = defaultFPS
	}
	return &cfg, nil
}

func defaultLogDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "clustermap")
	}
	return "."
}
