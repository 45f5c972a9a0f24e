// Package config loads qubectl's configuration from a file and the
// environment, grounded on flarego's root.go initConfig: viper with an
// explicit config file flag, a conventional $HOME search path, and a
// QUBED_ environment prefix.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the settings qubectl commands read after Load.
type Config struct {
	LogJSON       bool   `mapstructure:"log_json"`
	DefaultFormat string `mapstructure:"default_format"`
	FetchTimeoutS int    `mapstructure:"fetch_timeout_seconds"`
	FetchRetries  int    `mapstructure:"fetch_retries"`
}

func defaults() Config {
	return Config{
		LogJSON:       false,
		DefaultFormat: "json",
		FetchTimeoutS: 30,
		FetchRetries:  5,
	}
}

// Load reads configuration from cfgFile if set, otherwise searches
// $HOME/.config/qubed/config.{yaml,toml,json}, then overlays any
// QUBED_-prefixed environment variables.
func Load(cfgFile string) (Config, error) {
	cfg := defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "qubed"))
		}
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("QUBED")
	viper.AutomaticEnv()
	viper.SetDefault("log_json", cfg.LogJSON)
	viper.SetDefault("default_format", cfg.DefaultFormat)
	viper.SetDefault("fetch_timeout_seconds", cfg.FetchTimeoutS)
	viper.SetDefault("fetch_retries", cfg.FetchRetries)

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return cfg, err
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
