package config

// Config is the full goal-tracker configuration. Credentials are not part
// of it; they live in the store's settings entry (see the auth command).
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Notify   NotifyConfig   `yaml:"notify" mapstructure:"notify"`
	Web      WebConfig      `yaml:"web" mapstructure:"web"`
}

// StorageConfig locates the local database.
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
}

// AnalysisConfig tunes the extraction run.
type AnalysisConfig struct {
	Model     string `yaml:"model" mapstructure:"model"`
	MaxEmails int    `yaml:"max_emails" mapstructure:"max_emails"`
}

// NotifyConfig controls the post-run summary email.
type NotifyConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// WebConfig configures the local viewer server.
type WebConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}
