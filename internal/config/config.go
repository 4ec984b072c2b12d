package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"codemod/internal/paths"
)

// CurrentVersion is the config schema version this build reads and writes.
const CurrentVersion = 1

// Config represents the complete codemod configuration (v1 schema)
type Config struct {
	Version       int    `json:"version" mapstructure:"version"`
	WorkspaceRoot string `json:"workspaceRoot" mapstructure:"workspaceRoot"`

	Backup  BackupConfig  `json:"backup" mapstructure:"backup"`
	Journal JournalConfig `json:"journal" mapstructure:"journal"`
	History HistoryConfig `json:"history" mapstructure:"history"`
	Scan    ScanConfig    `json:"scan" mapstructure:"scan"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// BackupConfig controls the stage-time file backups
type BackupConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// Dir relocates backups; empty keeps them next to the edited file
	Dir string `json:"dir,omitempty" mapstructure:"dir"`
}

// JournalConfig controls the persistent audit journal
type JournalConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// HistoryConfig controls change-history reporting
type HistoryConfig struct {
	DefaultLimit int `json:"defaultLimit" mapstructure:"defaultLimit"`
}

// ScanConfig controls workspace analysis and pattern search
type ScanConfig struct {
	MaxFileSizeBytes int    `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
	PolicyPath       string `json:"policyPath" mapstructure:"policyPath"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
	// File redirects logs; empty means stderr
	File string `json:"file,omitempty" mapstructure:"file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:       CurrentVersion,
		WorkspaceRoot: ".",
		Backup: BackupConfig{
			Enabled: true,
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    filepath.Join(paths.CodemodDirName, paths.JournalFileName),
		},
		History: HistoryConfig{
			DefaultLimit: 10,
		},
		Scan: ScanConfig{
			MaxFileSizeBytes: 1000000,
			PolicyPath:       filepath.Join(paths.CodemodDirName, "scan.toml"),
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .codemod/config.json
func LoadConfig(workspaceRoot string) (*Config, error) {
	v := viper.New()

	// Seed every key so a sparse config.json only overrides what it names.
	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("workspaceRoot", def.WorkspaceRoot)
	v.SetDefault("backup.enabled", def.Backup.Enabled)
	v.SetDefault("backup.dir", def.Backup.Dir)
	v.SetDefault("journal.enabled", def.Journal.Enabled)
	v.SetDefault("journal.path", def.Journal.Path)
	v.SetDefault("history.defaultLimit", def.History.DefaultLimit)
	v.SetDefault("scan.maxFileSizeBytes", def.Scan.MaxFileSizeBytes)
	v.SetDefault("scan.policyPath", def.Scan.PolicyPath)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.file", def.Logging.File)

	// Configure viper
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(paths.GetCodemodDir(workspaceRoot))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, return default config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to .codemod/config.json
func (c *Config) Save(workspaceRoot string) error {
	if _, err := paths.EnsureCodemodDir(workspaceRoot); err != nil {
		return err
	}

	// Marshal to JSON with indentation
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(paths.GetConfigPath(workspaceRoot), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.History.DefaultLimit < 1 {
		return &ConfigError{Field: "history.defaultLimit", Message: "must be at least 1"}
	}
	if c.Scan.MaxFileSizeBytes < 0 {
		return &ConfigError{Field: "scan.maxFileSizeBytes", Message: "must not be negative"}
	}
	switch c.Logging.Format {
	case "", "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be \"human\" or \"json\""}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
