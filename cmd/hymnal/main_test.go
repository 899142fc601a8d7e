package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/JuniperHymnal/core/song"
	"github.com/FocuswithJustin/JuniperHymnal/core/sqlite"
)

const goodDoc = `#1 Amazing Grace
Amazing grace – Romans 1:1
By John Newton, 1725-1807
Tune: NEW BRITAIN

1. Amazing grace! how sweet the sound
That saved a wretch like me!

© Copyright Public Domain
`

const warnDoc = `#2 A Mighty Fortress
God is our refuge - Psalm 46:1
By Martin Luther, 1483-1546; tr. Frederick Hedge, 1805-1890
Translated by Frederick Hedge, 1805-1890
Tune: EIN FESTE BURG
1. A mighty fortress
© Copyright Public Domain
`

const badDoc = `Not a title
`

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func decodeSongs(t *testing.T, data []byte) []*song.Song {
	t.Helper()
	var songs []*song.Song
	if err := json.Unmarshal(data, &songs); err != nil {
		t.Fatalf("invalid songs JSON: %v\n%s", err, data)
	}
	return songs
}

func decodeDiagnostics(t *testing.T, data []byte) []song.Diagnostic {
	t.Helper()
	var diags []song.Diagnostic
	if err := json.Unmarshal(data, &diags); err != nil {
		t.Fatalf("invalid diagnostics JSON: %v\n%s", err, data)
	}
	return diags
}

func TestParse_Stdout(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", goodDoc)

	code, stdout, _ := runCLI(t, "parse", "--log-level", "error", filepath.Join(dir, "*.txt"))
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	songs := decodeSongs(t, []byte(stdout))
	if len(songs) != 1 || songs[0].ID != 1 || songs[0].Title != "Amazing Grace" {
		t.Fatalf("songs = %+v", songs)
	}
	if diff := cmp.Diff([]string{"Amazing grace! how sweet the sound", "That saved a wretch like me!"}, songs[0].Stanzas[0].Lines); diff != "" {
		t.Errorf("stanza lines mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(stdout, "[\n  {\n    \"id\": 1,") {
		t.Errorf("output not indented with two spaces:\n%s", stdout)
	}
	if strings.Contains(stdout, `<`) || !strings.Contains(stdout, "©") {
		t.Errorf("output escaped unexpectedly:\n%s", stdout)
	}
}

func TestParse_OutAndSQLite(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "a.txt", goodDoc)
	out := filepath.Join(dir, "data", "songs.json")
	db := filepath.Join(dir, "library.db")

	code, stdout, _ := runCLI(t, "parse", "--out", out, "--sqlite", db, doc)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty when --out is set", stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if songs := decodeSongs(t, data); len(songs) != 1 {
		t.Errorf("songs = %d, want 1", len(songs))
	}

	conn, err := sqlite.OpenReadOnly(db)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM songs`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("exported songs = %d, want 1", n)
	}
}

func TestParse_Failure(t *testing.T) {
	dir := t.TempDir()
	good := writeDoc(t, dir, "a.txt", goodDoc)
	bad := writeDoc(t, dir, "b.txt", badDoc)
	diagPath := filepath.Join(dir, "errors.json")

	code, stdout, _ := runCLI(t, "parse", "--diagnostics", diagPath, good, bad)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if stdout != "" {
		t.Errorf("songs must not be written on failure, got %q", stdout)
	}
	data, err := os.ReadFile(diagPath)
	if err != nil {
		t.Fatal(err)
	}
	want := []song.Diagnostic{{Path: bad, LineNum: 1, Message: "Expected the title of a song, but found: Not a title"}}
	if diff := cmp.Diff(want, decodeDiagnostics(t, data)); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_FailureToStderr(t *testing.T) {
	dir := t.TempDir()
	bad := writeDoc(t, dir, "b.txt", badDoc)

	code, _, stderr := runCLI(t, "parse", "--log-level", "error", "--log-format", "json", bad)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, `"message": "Expected the title of a song, but found: Not a title"`) {
		t.Errorf("stderr missing diagnostics:\n%s", stderr)
	}
}

func TestParse_WarningsFatal(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "w.txt", warnDoc)

	code, stdout, _ := runCLI(t, "parse", doc)
	if code != 1 || stdout != "" {
		t.Errorf("default run: exit = %d, stdout = %q; want failure", code, stdout)
	}

	diagPath := filepath.Join(dir, "warnings.json")
	code, stdout, _ = runCLI(t, "parse", "--no-warnings-fatal", "--diagnostics", diagPath, doc)
	if code != 0 {
		t.Fatalf("lenient run: exit = %d, want 0", code)
	}
	if songs := decodeSongs(t, []byte(stdout)); len(songs) != 1 {
		t.Errorf("songs = %d, want 1", len(songs))
	}
	data, err := os.ReadFile(diagPath)
	if err != nil {
		t.Fatal(err)
	}
	diags := decodeDiagnostics(t, data)
	if len(diags) != 1 || !diags[0].Warning {
		t.Errorf("diagnostics = %+v, want one warning", diags)
	}
}

func TestParse_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "w.txt", warnDoc)
	out := filepath.Join(dir, "songs.json")
	cfg := writeDoc(t, dir, "hymnal.json", `{
		// warnings are advisory for this hymnal
		"warnings_fatal": false,
		"out": "`+out+`",
		"log_level": "error",
	}`)

	code, stdout, _ := runCLI(t, "--config", cfg, "parse", doc)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want songs in config out file", stdout)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("config out file not written: %v", err)
	}

	// The flag wins over the file.
	code, _, _ = runCLI(t, "--config", cfg, "parse", "--warnings-fatal", doc)
	if code != 1 {
		t.Errorf("exit code with --warnings-fatal = %d, want 1", code)
	}
}

func TestParse_InvalidSettings(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), "a.txt", goodDoc)

	code, _, stderr := runCLI(t, "parse", "--log-level", "loud", doc)
	if code != 1 || !strings.Contains(stderr, "invalid log_level") {
		t.Errorf("exit = %d, stderr = %q", code, stderr)
	}
	code, _, _ = runCLI(t, "parse", "--warnings-fatal", "--no-warnings-fatal", doc)
	if code != 2 {
		t.Errorf("conflicting flags: exit = %d, want 2", code)
	}
}

func TestParse_NoMatches(t *testing.T) {
	code, stdout, _ := runCLI(t, "parse", "--log-level", "error", filepath.Join(t.TempDir(), "*.docx"))
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if strings.TrimSpace(stdout) != "[]" {
		t.Errorf("stdout = %q, want []", stdout)
	}
}

func TestLines(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), "a.txt", "#1 Title\n\n1. Line")
	code, stdout, _ := runCLI(t, "lines", doc)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	want := "    1  #1 Title\n    2  \n    3  1. Line\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	if code != 0 || !strings.HasPrefix(stdout, "hymnal version "+version) {
		t.Errorf("exit = %d, stdout = %q", code, stdout)
	}

	info := sqlite.GetInfo()
	for _, want := range []string{info.Package, info.DriverName, "cgo=" + strconv.FormatBool(info.IsCGO)} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout = %q, missing %q", stdout, want)
		}
	}
}
