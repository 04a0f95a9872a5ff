// Package config holds the sync tool settings. The file format is
// plain JSON; flag and environment resolution lives in the command
// layer on top of this.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	// zone data ships with the binary so the configured timezone
	// resolves on hosts without system tzdata
	_ "time/tzdata"

	"sheetsync/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigPath = filepath.Join(home, ".sheetsync", "config.json")
)

const (
	DefaultDomain       = "forum-info.ru"
	DefaultFirstTab     = "Май 2025"
	DefaultSourceTab    = DefaultFirstTab
	DefaultURLColumn    = 9
	DefaultMetadataCell = "A1"
	DefaultInterval     = time.Hour
	DefaultTimezone     = "Europe/Moscow"
	DefaultLocale       = "ru"
)

var (
	ErrNoSourceSpreadsheet = errors.New("config: source_spreadsheet_id is required")
	ErrNoDestSpreadsheet   = errors.New("config: dest_spreadsheet_id is required")
	ErrNoCredentials       = errors.New("config: credentials_file is required")
	ErrNoSourceTab         = errors.New("config: source_tab is required")
	ErrNoDomain            = errors.New("config: domain is required")
	ErrBadURLColumn        = errors.New("config: url_column must be zero or positive")
	ErrBadInterval         = errors.New("config: interval must be positive")
)

// Duration unmarshals from duration strings like "1h30m" and from bare
// numbers, which are taken as seconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value) * time.Second)
	case string:
		parsed, err := ParseInterval(value)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("config: invalid interval %s", string(data))
	}
	return nil
}

// ParseInterval parses "1h30m" style durations, falling back to bare
// numbers taken as seconds.
func ParseInterval(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, fmt.Errorf("config: invalid interval %q", s)
}

type Config struct {
	SourceSpreadsheetID string   `json:"source_spreadsheet_id"`
	DestSpreadsheetID   string   `json:"dest_spreadsheet_id"`
	CredentialsFile     string   `json:"credentials_file"`
	SourceTab           string   `json:"source_tab"`
	FirstTab            string   `json:"first_tab"`
	Domain              string   `json:"domain"`
	URLColumn           int      `json:"url_column"`
	MetadataCell        string   `json:"metadata_cell"`
	Interval            Duration `json:"interval"`
	Timezone            string   `json:"timezone"`
	Locale              string   `json:"locale"`
	Path                string   `json:"-"`
}

// Default returns a config pre-filled with every optional setting, so
// loading over it only overrides what the file names.
func Default() *Config {
	return &Config{
		SourceTab:    DefaultSourceTab,
		FirstTab:     DefaultFirstTab,
		Domain:       DefaultDomain,
		URLColumn:    DefaultURLColumn,
		MetadataCell: DefaultMetadataCell,
		Interval:     Duration(DefaultInterval),
		Timezone:     DefaultTimezone,
		Locale:       DefaultLocale,
	}
}

// Load reads a JSON config file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config parse %q: %w", path, err)
	}

	cfg.Path = path
	return cfg, nil
}

// Validate checks required fields and resolves the credentials path.
func (c *Config) Validate() error {
	if c.SourceSpreadsheetID == "" {
		return ErrNoSourceSpreadsheet
	}
	if c.DestSpreadsheetID == "" {
		return ErrNoDestSpreadsheet
	}
	if c.CredentialsFile == "" {
		return ErrNoCredentials
	}
	if c.SourceTab == "" {
		return ErrNoSourceTab
	}
	if c.Domain == "" {
		return ErrNoDomain
	}
	if c.URLColumn < 0 {
		return ErrBadURLColumn
	}
	if time.Duration(c.Interval) <= 0 {
		return ErrBadInterval
	}

	resolved, err := utils.ResolvePath(c.CredentialsFile)
	if err != nil {
		return fmt.Errorf("config: credentials_file: %w", err)
	}
	c.CredentialsFile = resolved
	if !utils.FileExists(c.CredentialsFile) {
		return fmt.Errorf("config: credentials file %q: %w", c.CredentialsFile, os.ErrNotExist)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("config: invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Save writes the config as JSON, creating parent directories.
func (c *Config) Save(path string) error {
	if err := utils.EnsureParent(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
