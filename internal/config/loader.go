package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Load reads the user configuration over the defaults. A missing file is
// not an error; the defaults stand.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path := Path()
	if path == "" {
		return cfg, nil
	}

	if err := loadFile(path, cfg); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

// Path returns the user config file location.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".goal-tracker", "config.yaml")
}
