package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	herrors "github.com/FocuswithJustin/JuniperHymnal/core/errors"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func boolPtr(b bool) *bool { return &b }

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(LoadInput{WorkDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	want := Config{Workers: runtime.NumCPU(), WarningsFatal: true, LogLevel: "info", LogFormat: "text"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ProjectFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, FileName, `{
		// trailing commas and comments are fine
		"workers": 3,
		"out": "data/songs.json",
		"warnings_fatal": false,
		"log_format": "json",
	}`)

	cfg, err := Load(LoadInput{WorkDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		Workers:       3,
		Out:           "data/songs.json",
		WarningsFatal: false,
		LogLevel:      "info",
		LogFormat:     "json",
		Source:        path,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "custom.json", `{"workers": 2, "out": "file.json", "warnings_fatal": false, "sqlite": "lib.db"}`)

	cfg, err := Load(LoadInput{
		WorkDir:    dir,
		ConfigPath: "custom.json",
		Overrides: Overrides{
			Workers:       8,
			WarningsFatal: boolPtr(true),
			LogLevel:      "debug",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 8 || !cfg.WarningsFatal || cfg.LogLevel != "debug" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Out != "file.json" || cfg.SQLite != "lib.db" {
		t.Errorf("file values lost: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "broken.json", `{"workers": `)
	writeConfig(t, dir, "level.json", `{"log_level": "loud"}`)
	writeConfig(t, dir, "workers.json", `{"workers": 0}`)

	tests := []struct {
		name   string
		input  LoadInput
		target error
	}{
		{"missing explicit file", LoadInput{WorkDir: dir, ConfigPath: "nope.json"}, herrors.ErrNotFound},
		{"bad level", LoadInput{WorkDir: dir, ConfigPath: "level.json"}, herrors.ErrInvalidInput},
		{"zero workers", LoadInput{WorkDir: dir, ConfigPath: "workers.json"}, herrors.ErrInvalidInput},
		{"bad format override", LoadInput{WorkDir: dir, Overrides: Overrides{LogFormat: "xml"}}, herrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.input)
			if !errors.Is(err, tt.target) {
				t.Errorf("Load() error = %v, want %v", err, tt.target)
			}
		})
	}

	_, err := Load(LoadInput{WorkDir: dir, ConfigPath: "broken.json"})
	var perr *herrors.ParseError
	if !errors.As(err, &perr) || perr.Format != "config" {
		t.Errorf("Load(broken) error = %v, want config ParseError", err)
	}
}
