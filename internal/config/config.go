// Package config loads hymnal run settings from an optional JSON-with-comments
// file and merges them with command line overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/tailscale/hujson"

	herrors "github.com/FocuswithJustin/JuniperHymnal/core/errors"
	"github.com/FocuswithJustin/JuniperHymnal/internal/logging"
)

// FileName is the config file looked up in the working directory.
const FileName = ".hymnal.json"

// Config holds all run settings.
type Config struct {
	Workers       int    `json:"workers"`
	Out           string `json:"out"`
	Diagnostics   string `json:"diagnostics"`
	SQLite        string `json:"sqlite"`
	WarningsFatal bool   `json:"warnings_fatal"`
	LogLevel      string `json:"log_level"`
	LogFormat     string `json:"log_format"`

	// Source is the config file that was loaded, empty if none.
	Source string `json:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Workers:       runtime.NumCPU(),
		WarningsFatal: true,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// fileConfig distinguishes keys that were absent from keys set to zero.
type fileConfig struct {
	Workers       *int    `json:"workers"`
	Out           *string `json:"out"`
	Diagnostics   *string `json:"diagnostics"`
	SQLite        *string `json:"sqlite"`
	WarningsFatal *bool   `json:"warnings_fatal"`
	LogLevel      *string `json:"log_level"`
	LogFormat     *string `json:"log_format"`
}

// Overrides are values given on the command line. Nil and empty values
// leave the loaded setting untouched.
type Overrides struct {
	Workers       int
	Out           string
	Diagnostics   string
	SQLite        string
	WarningsFatal *bool
	LogLevel      string
	LogFormat     string
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDir    string // if empty, os.Getwd() is used
	ConfigPath string // --config flag value; the file must exist
	Overrides  Overrides
}

// Load resolves settings with the following precedence (highest wins):
// 1. Defaults
// 2. The explicit config file, or FileName in the working directory if present
// 3. Command line overrides
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	path := input.ConfigPath
	mustExist := path != ""
	if path == "" {
		path = FileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	fc, loaded, err := loadFile(path, mustExist)
	if err != nil {
		return Config{}, err
	}
	if loaded {
		cfg = merge(cfg, fc)
		cfg.Source = path
	}

	cfg = apply(cfg, input.Overrides)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return fileConfig{}, false, herrors.NewNotFound("config file", path)
			}
			return fileConfig{}, false, nil
		}
		return fileConfig{}, false, herrors.NewIO("read", path, err)
	}

	fc, err := parseFile(data)
	if err != nil {
		return fileConfig{}, false, herrors.NewParse("config", path, err)
	}
	return fc, true, nil
}

// parseFile decodes a JSONC config document.
func parseFile(data []byte) (fileConfig, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}
	var fc fileConfig
	if err := json.Unmarshal(standardized, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return fc, nil
}

func merge(base Config, fc fileConfig) Config {
	if fc.Workers != nil {
		base.Workers = *fc.Workers
	}
	if fc.Out != nil {
		base.Out = *fc.Out
	}
	if fc.Diagnostics != nil {
		base.Diagnostics = *fc.Diagnostics
	}
	if fc.SQLite != nil {
		base.SQLite = *fc.SQLite
	}
	if fc.WarningsFatal != nil {
		base.WarningsFatal = *fc.WarningsFatal
	}
	if fc.LogLevel != nil {
		base.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		base.LogFormat = *fc.LogFormat
	}
	return base
}

func apply(base Config, o Overrides) Config {
	if o.Workers != 0 {
		base.Workers = o.Workers
	}
	if o.Out != "" {
		base.Out = o.Out
	}
	if o.Diagnostics != "" {
		base.Diagnostics = o.Diagnostics
	}
	if o.SQLite != "" {
		base.SQLite = o.SQLite
	}
	if o.WarningsFatal != nil {
		base.WarningsFatal = *o.WarningsFatal
	}
	if o.LogLevel != "" {
		base.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		base.LogFormat = o.LogFormat
	}
	return base
}

// Validate checks value ranges and names.
func Validate(cfg Config) error {
	if cfg.Workers < 1 {
		return herrors.NewValidation("workers", fmt.Sprint(cfg.Workers), "must be at least 1")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return herrors.NewValidation("log_level", cfg.LogLevel, "expected debug, info, warn or error")
	}
	if _, err := logging.ParseFormat(cfg.LogFormat); err != nil {
		return herrors.NewValidation("log_format", cfg.LogFormat, "expected json or text")
	}
	return nil
}
