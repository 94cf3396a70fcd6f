package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const (
	ModeShell  = "shell"
	ModeNative = "native"
)

var (
	compressors = []string{"", "none", "gzip", "bzip2"}
	modes       = []string{ModeShell, ModeNative}
	targetTypes = []string{"s3", "gdrive", "telegram"}
)

type Config struct {
	App       AppConfig        `mapstructure:"app"`
	Databases []DatabaseConfig `mapstructure:"databases"`
	Backup    BackupConfig     `mapstructure:"backup"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// DatabaseConfig describes one SQLite file to dump.
type DatabaseConfig struct {
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
	// Directory holding the sqlite3 executable, empty to use $PATH.
	BinaryPath    string   `mapstructure:"binary_path"`
	IncludeTables []string `mapstructure:"include_tables"`
	ExcludeTables []string `mapstructure:"exclude_tables"`
	Compressor    string   `mapstructure:"compressor"`
	Mode          string   `mapstructure:"mode"`
	Enabled       bool     `mapstructure:"enabled"`
}

type BackupConfig struct {
	LocalPath     string         `mapstructure:"local_path"`
	RetentionDays int            `mapstructure:"retention_days"`
	Cleanup       bool           `mapstructure:"cleanup"`
	UploadTargets []UploadTarget `mapstructure:"upload_targets"`
}

type UploadTarget struct {
	Type    string `mapstructure:"type"`
	Enabled bool   `mapstructure:"enabled"`

	// Google Drive
	CredentialsFile string `mapstructure:"credentials_file"`
	FolderID        string `mapstructure:"folder_id"`

	// AWS S3
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`

	// Telegram
	BotToken   string `mapstructure:"bot_token"`
	ChatID     int64  `mapstructure:"chat_id"`
	SendFile   bool   `mapstructure:"send_file"`
	NotifyOnly bool   `mapstructure:"notify_only"`
}

// Load reads the YAML file at path. Scalar settings can be overridden with
// LITEDUMP_ prefixed environment variables, e.g. LITEDUMP_BACKUP_LOCAL_PATH.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("litedump")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.name", "litedump")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("backup.retention_days", 7)
	v.SetDefault("backup.cleanup", false)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	for i := range c.Databases {
		if c.Databases[i].Mode == "" {
			c.Databases[i].Mode = ModeShell
		}
	}
}

func (c *Config) Validate() error {
	if len(c.Databases) == 0 {
		return errors.New("at least one database configuration is required")
	}

	var errs error

	for i, db := range c.Databases {
		if err := db.Validate(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("database[%d]: %w", i, err))
		}
	}

	if c.Backup.LocalPath == "" {
		errs = errors.Join(errs, errors.New("backup.local_path is required"))
	}

	if c.Backup.RetentionDays < 0 {
		errs = errors.Join(errs, errors.New("backup.retention_days cannot be negative"))
	}

	for i, target := range c.Backup.UploadTargets {
		if !slices.Contains(targetTypes, target.Type) {
			errs = errors.Join(errs, fmt.Errorf("backup.upload_targets[%d]: unknown type %q", i, target.Type))
		}
	}

	return errs
}

func (db DatabaseConfig) Validate() error {
	if strings.TrimSpace(db.Name) == "" {
		return errors.New("name is required")
	}

	if strings.TrimSpace(db.Path) == "" {
		return errors.New("path is required")
	}

	if len(db.IncludeTables) > 0 && len(db.ExcludeTables) > 0 {
		return errors.New("include_tables and exclude_tables cannot be used together")
	}

	if !slices.Contains(compressors, strings.ToLower(db.Compressor)) {
		return fmt.Errorf("unknown compressor %q", db.Compressor)
	}

	if db.Mode != "" && !slices.Contains(modes, db.Mode) {
		return fmt.Errorf("unknown mode %q", db.Mode)
	}

	return nil
}

func (c *Config) GetEnabledDatabases() []DatabaseConfig {
	var enabled []DatabaseConfig
	for _, db := range c.Databases {
		if db.Enabled {
			enabled = append(enabled, db)
		}
	}
	return enabled
}

// GetDatabase returns the database configured under name.
func (c *Config) GetDatabase(name string) (DatabaseConfig, bool) {
	for _, db := range c.Databases {
		if db.Name == name {
			return db, true
		}
	}
	return DatabaseConfig{}, false
}

func (c *Config) GetEnabledUploadTargets() []UploadTarget {
	var enabled []UploadTarget
	for _, target := range c.Backup.UploadTargets {
		if target.Enabled {
			enabled = append(enabled, target)
		}
	}
	return enabled
}
