package app

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Options locate the configuration sources. Command line flags override them.
type Options struct {
	ConfigPath string `env:"MAILINATOR_CONFIG"`
	EnvFile    string `env:"MAILINATOR_ENV_FILE" envDefault:".env"`
}

// LoadOptions reads Options from the process environment.
func LoadOptions() (Options, error) {
	opts, err := env.ParseAs[Options]()
	if err != nil {
		return Options{}, err
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = DefaultConfigPath()
	}
	return opts, nil
}

// DefaultConfigPath is config.toml under the user config directory, or in the
// working directory when that cannot be determined.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, serviceName, "config.toml")
}
