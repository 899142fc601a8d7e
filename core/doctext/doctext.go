// Package doctext extracts plain text lines from word-processing documents.
//
// Every paragraph becomes one line; soft line breaks inside a paragraph start
// a new line. Tabs are kept as '\t'. Formatting is discarded.
package doctext

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"sort"
	"strings"

	herrors "github.com/FocuswithJustin/JuniperHymnal/core/errors"
)

// Extractor turns the raw bytes of one document into text lines.
type Extractor func(data []byte) ([]string, error)

var extractors = map[string]Extractor{
	".docx": ExtractDOCX,
	".odt":  ExtractODT,
	".txt":  ExtractText,
}

// Supported reports whether name has an extension Extract understands.
func Supported(name string) bool {
	_, ok := extractors[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Extensions lists the supported document extensions.
func Extensions() []string {
	exts := make([]string, 0, len(extractors))
	for ext := range extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract selects an extractor by the extension of name.
func Extract(name string, data []byte) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	fn, ok := extractors[ext]
	if !ok {
		return nil, herrors.NewUnsupported("document type", ext)
	}
	return fn(data)
}

// ExtractText splits a plain text document into lines. A UTF-8 byte order
// mark and CR line endings are removed.
func ExtractText(data []byte) ([]string, error) {
	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{}, nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}

// readPart returns the named member of a zip based document package.
func readPart(format string, data []byte, part string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, herrors.NewParse(format, "", err)
	}
	for _, f := range zr.File {
		if f.Name != part {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, herrors.NewParse(format, part, err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, herrors.NewParse(format, part, err)
		}
		return content, nil
	}
	return nil, herrors.NewNotFound("document part", part)
}

// lineBuilder accumulates the lines of one paragraph.
type lineBuilder struct {
	lines []string
	cur   strings.Builder
}

func (b *lineBuilder) text(s string) {
	b.cur.WriteString(s)
}

func (b *lineBuilder) newline() {
	b.lines = append(b.lines, b.cur.String())
	b.cur.Reset()
}

func (b *lineBuilder) finish() []string {
	b.newline()
	return b.lines
}
