// Package config provides Viper-based configuration loading for Skirmish.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Postcondition: Returns a postgres:// URL.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// StorageConfig selects the roster and history backend.
type StorageConfig struct {
	// Driver is "memory" (process-local roster) or "postgres".
	Driver string `mapstructure:"driver"`
}

// EncounterConfig holds encounter engine settings.
type EncounterConfig struct {
	// CampaignID is the active campaign whose party is pulled into combat.
	CampaignID int64 `mapstructure:"campaign_id"`
	// HistoryLimit caps the in-memory encounter history; 0 means unbounded.
	HistoryLimit int `mapstructure:"history_limit"`
	// DefaultRollMode is used by batch adds that do not name a mode.
	DefaultRollMode string `mapstructure:"default_roll_mode"`
	// Seed, when non-zero, makes dice rolls reproducible.
	Seed uint64 `mapstructure:"seed"`
}

// ContentConfig points at the YAML content directories.
type ContentConfig struct {
	ConditionsDir string `mapstructure:"conditions_dir"`
	BestiaryDir   string `mapstructure:"bestiary_dir"`
	// PartyFile seeds the in-memory roster; ignored by the postgres driver.
	PartyFile string `mapstructure:"party_file"`
}

// TelemetryConfig toggles OpenTelemetry tracing. Exporter settings come from
// the standard OTEL_* environment variables.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Encounter EncounterConfig `mapstructure:"encounter"`
	Content   ContentConfig   `mapstructure:"content"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, err := range []error{
		validateLogging(c.Logging),
		validateStorage(c.Storage),
		validateEncounter(c.Encounter),
		validateTelemetry(c.Telemetry),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	// The database section only matters when it is used.
	if c.Storage.Driver == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	validDrivers := map[string]bool{"memory": true, "postgres": true}
	if !validDrivers[s.Driver] {
		return fmt.Errorf("storage.driver must be one of [memory, postgres], got %q", s.Driver)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateEncounter(e EncounterConfig) error {
	var errs []string
	if e.CampaignID < 1 {
		errs = append(errs, fmt.Sprintf("encounter.campaign_id must be >= 1, got %d", e.CampaignID))
	}
	if e.HistoryLimit < 0 {
		errs = append(errs, fmt.Sprintf("encounter.history_limit must be >= 0, got %d", e.HistoryLimit))
	}
	validModes := map[string]bool{"individual": true, "group": true}
	if !validModes[e.DefaultRollMode] {
		errs = append(errs, fmt.Sprintf("encounter.default_roll_mode must be one of [individual, group], got %q", e.DefaultRollMode))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateTelemetry(t TelemetryConfig) error {
	if t.Enabled && t.ServiceName == "" {
		return errors.New("telemetry.service_name must not be empty when telemetry is enabled")
	}
	return nil
}

// Load reads configuration from the given file path, applies SKIRMISH_
// environment variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance pre-populated with every default value.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("storage.driver", "memory")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "skirmish")
	v.SetDefault("database.password", "skirmish")
	v.SetDefault("database.name", "skirmish")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("encounter.campaign_id", 1)
	v.SetDefault("encounter.history_limit", 50)
	v.SetDefault("encounter.default_roll_mode", "group")
	v.SetDefault("encounter.seed", 0)

	v.SetDefault("content.conditions_dir", "content/conditions")
	v.SetDefault("content.bestiary_dir", "content/bestiary")
	v.SetDefault("content.party_file", "content/party.yaml")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "skirmish")
}
