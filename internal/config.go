package internal

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the run configuration loaded from YAML
type Config struct {
	// CalendarID is the single calendar the pipeline may write to.
	CalendarID string `yaml:"calendar_id"`
	// CredentialsFile is the Google service-account credentials path.
	CredentialsFile string `yaml:"credentials_file"`

	EventsFile string `yaml:"events_file"` // system event export (CSV)
	CommitsDir string `yaml:"commits_dir"` // directory of per-repo commit exports

	LedgerPath string `yaml:"ledger_path"` // sqlite sync ledger
	ReportDir  string `yaml:"report_dir"`  // run reports are written here

	BatchSize     int     `yaml:"batch_size"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	UploadWorkers int     `yaml:"upload_workers"`
	MaxAttempts   int     `yaml:"max_attempts"`

	// TargetHours, when non-zero, is compared against verified hours in the
	// run report.
	TargetHours float64 `yaml:"target_hours"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		LedgerPath:    "worklog-sync.db",
		ReportDir:     "reports",
		BatchSize:     50,
		RatePerSecond: 2,
		UploadWorkers: 4,
		MaxAttempts:   3,
	}
}

// LoadConfig reads the YAML config at path over the defaults and validates
// the result
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and bounds
func (c *Config) Validate() error {
	if c.CalendarID == "" {
		return &ConfigError{Field: "calendar_id", Err: errors.New("required")}
	}
	if c.EventsFile == "" {
		return &ConfigError{Field: "events_file", Err: errors.New("required")}
	}
	if c.CommitsDir == "" {
		return &ConfigError{Field: "commits_dir", Err: errors.New("required")}
	}
	if c.BatchSize <= 0 {
		return &ConfigError{Field: "batch_size", Err: errors.New("must be positive")}
	}
	if c.RatePerSecond <= 0 {
		return &ConfigError{Field: "rate_per_second", Err: errors.New("must be positive")}
	}
	if c.UploadWorkers <= 0 {
		return &ConfigError{Field: "upload_workers", Err: errors.New("must be positive")}
	}
	if c.MaxAttempts <= 0 {
		return &ConfigError{Field: "max_attempts", Err: errors.New("must be positive")}
	}
	return nil
}
