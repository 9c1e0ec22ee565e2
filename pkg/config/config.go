// Package config provides configuration management for the interpreter.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the interpreter.
type Config struct {
	Heap   HeapConfig   `mapstructure:"heap"`
	Interp InterpConfig `mapstructure:"interp"`
}

// HeapConfig holds collector configuration.
type HeapConfig struct {
	// Capacity is the live-object cap; the collector runs when an
	// allocation would exceed it.
	Capacity int `mapstructure:"capacity"`
}

// InterpConfig holds evaluator configuration.
type InterpConfig struct {
	// StepLimit bounds trampoline steps per evaluation; 0 means
	// unlimited.
	StepLimit int `mapstructure:"step_limit"`
}

// Load reads configuration from the specified file path. An empty path
// searches the standard locations; a missing file yields the defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("gcl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/gcl")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config file: defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Heap.Capacity < 0 {
		return nil, fmt.Errorf("heap.capacity must not be negative")
	}
	if cfg.Interp.StepLimit < 0 {
		return nil, fmt.Errorf("interp.step_limit must not be negative")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("heap.capacity", 10000)
	v.SetDefault("interp.step_limit", 0)
}
