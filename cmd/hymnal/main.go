// Command hymnal extracts songs from hymnal manuscripts.
//
// It reads word-processing documents (and zip or tar archives of them),
// parses every song and writes the song library as JSON. When any document
// is malformed the diagnostics are written instead and the exit status is 1.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/natefinch/atomic"

	"github.com/FocuswithJustin/JuniperHymnal/core/batch"
	"github.com/FocuswithJustin/JuniperHymnal/core/doctext"
	herrors "github.com/FocuswithJustin/JuniperHymnal/core/errors"
	"github.com/FocuswithJustin/JuniperHymnal/core/library"
	"github.com/FocuswithJustin/JuniperHymnal/core/sqlite"
	"github.com/FocuswithJustin/JuniperHymnal/internal/config"
	"github.com/FocuswithJustin/JuniperHymnal/internal/logging"
	"github.com/FocuswithJustin/JuniperHymnal/internal/validation"
)

const version = "0.1.0"

// errRunFailed marks a run whose diagnostics have already been reported.
var errRunFailed = errors.New("run failed")

// Globals are flags shared by every command.
type Globals struct {
	Config    string `help:"Config file (JSON with comments); defaults to .hymnal.json if present" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level: debug, info, warn or error"`
	LogFormat string `name:"log-format" help:"Log format: text or json"`

	Stdout io.Writer `kong:"-"`
	Stderr io.Writer `kong:"-"`
}

// CLI defines the command-line interface for hymnal.
type CLI struct {
	Globals

	Parse   ParseCmd   `cmd:"" help:"Parse hymnal documents into a song library"`
	Lines   LinesCmd   `cmd:"" help:"Print the text lines extracted from a document"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// ParseCmd parses documents and writes songs or diagnostics.
type ParseCmd struct {
	Patterns        []string `arg:"" name:"pattern" help:"Documents, archives or glob patterns"`
	Out             string   `short:"o" help:"Write songs JSON here instead of stdout" type:"path"`
	Diagnostics     string   `help:"Write diagnostics JSON here instead of stderr" type:"path"`
	SQLite          string   `name:"sqlite" help:"Also export the library to this SQLite database" type:"path"`
	Workers         int      `short:"j" help:"Documents parsed at once (default: number of CPUs)"`
	WarningsFatal   bool     `name:"warnings-fatal" xor:"warnings" help:"Fail the run on warnings (default)"`
	NoWarningsFatal bool     `name:"no-warnings-fatal" xor:"warnings" help:"Emit songs when only warnings were reported"`
}

func (c *ParseCmd) Run(g *Globals) error {
	overrides := config.Overrides{
		Workers:     c.Workers,
		Out:         c.Out,
		Diagnostics: c.Diagnostics,
		SQLite:      c.SQLite,
		LogLevel:    g.LogLevel,
		LogFormat:   g.LogFormat,
	}
	switch {
	case c.WarningsFatal:
		overrides.WarningsFatal = boolPtr(true)
	case c.NoWarningsFatal:
		overrides.WarningsFatal = boolPtr(false)
	}

	cfg, err := g.load(overrides)
	if err != nil {
		return err
	}
	for _, p := range []string{cfg.Out, cfg.Diagnostics, cfg.SQLite} {
		if p == "" {
			continue
		}
		if err := validation.ValidatePath(p); err != nil {
			return fmt.Errorf("output path %q: %w", p, err)
		}
	}

	ctx := logging.WithRunID(context.Background(), logging.NewRunID())
	if cfg.Source != "" {
		logging.DebugContext(ctx, "loaded config", "path", cfg.Source)
	}

	inputs, err := expandPatterns(ctx, c.Patterns)
	if err != nil {
		return err
	}

	report := (&batch.Runner{Workers: cfg.Workers}).Run(ctx, inputs)

	if report.Failed(cfg.WarningsFatal) {
		if err := writeJSON(cfg.Diagnostics, g.Stderr, report.Diagnostics); err != nil {
			return err
		}
		return errRunFailed
	}

	if err := writeJSON(cfg.Out, g.Stdout, report.Songs); err != nil {
		return err
	}
	if len(report.Diagnostics) > 0 {
		if err := writeJSON(cfg.Diagnostics, g.Stderr, report.Diagnostics); err != nil {
			return err
		}
	}
	if cfg.SQLite != "" {
		if err := library.ExportFile(ctx, cfg.SQLite, report); err != nil {
			return err
		}
		logging.InfoContext(ctx, "exported library", "path", cfg.SQLite, "driver", sqlite.DriverType())
	}
	return nil
}

// LinesCmd prints the extracted lines of one document, numbered as the
// parser numbers them in diagnostics.
type LinesCmd struct {
	Document string `arg:"" help:"Document to read" type:"existingfile"`
}

func (c *LinesCmd) Run(g *Globals) error {
	if _, err := g.load(config.Overrides{LogLevel: g.LogLevel, LogFormat: g.LogFormat}); err != nil {
		return err
	}
	data, err := os.ReadFile(c.Document)
	if err != nil {
		return herrors.NewIO("read", c.Document, err)
	}
	lines, err := doctext.Extract(c.Document, data)
	if err != nil {
		return err
	}
	for i, line := range lines {
		fmt.Fprintf(g.Stdout, "%5d  %s\n", i+1, line)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	info := sqlite.GetInfo()
	fmt.Fprintf(g.Stdout, "hymnal version %s\n", version)
	fmt.Fprintf(g.Stdout, "sqlite: %s driver %q from %s (cgo=%t)\n", info.DriverType, info.DriverName, info.Package, info.IsCGO)
	return nil
}

// load resolves the config and points logging at stderr.
func (g *Globals) load(o config.Overrides) (config.Config, error) {
	cfg, err := config.Load(config.LoadInput{ConfigPath: g.Config, Overrides: o})
	if err != nil {
		return config.Config{}, err
	}
	level, _ := logging.ParseLevel(cfg.LogLevel)
	format, _ := logging.ParseFormat(cfg.LogFormat)
	logging.InitLogger(level, format, g.Stderr)
	return cfg, nil
}

// expandPatterns resolves glob patterns in order. A pattern that matches
// nothing is used literally when it names an existing file.
func expandPatterns(ctx context.Context, patterns []string) ([]string, error) {
	var inputs []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, herrors.NewValidation("pattern", pattern, err.Error())
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				logging.WarnContext(ctx, "pattern matched no documents", "pattern", pattern)
				continue
			}
			matches = []string{pattern}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				inputs = append(inputs, m)
			}
		}
	}
	return inputs, nil
}

// writeJSON writes v indented to path, or to fallback when path is empty.
func writeJSON(path string, fallback io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	if path == "" {
		_, err := fallback.Write(buf.Bytes())
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return herrors.NewIO("create directory", dir, err)
		}
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return herrors.NewIO("write", path, err)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

func run(args []string, stdout, stderr io.Writer) int {
	cli := CLI{Globals: Globals{Stdout: stdout, Stderr: stderr}}
	parser, err := kong.New(&cli,
		kong.Name("hymnal"),
		kong.Description("JuniperHymnal - hymnal manuscript parser"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		fmt.Fprintf(stderr, "hymnal: %v\n", err)
		return 2
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "hymnal: error: %v\n", err)
		return 2
	}
	if err := ctx.Run(&cli.Globals); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintf(stderr, "hymnal: error: %v\n", err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
