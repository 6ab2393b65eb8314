package config

import (
	"os"
	"path/filepath"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Storage: StorageConfig{
			DBPath: "~/.goal-tracker/goals.db",
		},
		Analysis: AnalysisConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxEmails: 20,
		},
		Notify: NotifyConfig{
			Enabled: true,
		},
		Web: WebConfig{
			Addr: ":8484",
		},
	}
}

// WriteDefault writes a commented starter configuration file.
func WriteDefault(path string) error {
	content := `# goal-tracker configuration
version: "1"

storage:
  db_path: ~/.goal-tracker/goals.db

analysis:
  # Anthropic model used for email analysis
  model: claude-sonnet-4-20250514
  # How many recent emails to fetch per run
  max_emails: 20

notify:
  # Send a summary email after each successful run
  enabled: true

web:
  # Address for the local viewer (goal-tracker serve)
  addr: ":8484"
`

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
