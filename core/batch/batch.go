// Package batch runs the hymnal parser over a set of documents and archives
// and merges the per-document results into one report.
package batch

import (
	"context"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/FocuswithJustin/JuniperHymnal/core/cas"
	"github.com/FocuswithJustin/JuniperHymnal/core/doctext"
	herrors "github.com/FocuswithJustin/JuniperHymnal/core/errors"
	"github.com/FocuswithJustin/JuniperHymnal/core/hymnparse"
	"github.com/FocuswithJustin/JuniperHymnal/core/song"
	"github.com/FocuswithJustin/JuniperHymnal/internal/archive"
	"github.com/FocuswithJustin/JuniperHymnal/internal/logging"
	"github.com/FocuswithJustin/JuniperHymnal/internal/validation"
)

// ExtractFunc turns the bytes of a named document into text lines.
type ExtractFunc func(name string, data []byte) ([]string, error)

// Runner parses documents concurrently.
type Runner struct {
	// Workers bounds the number of documents processed at once.
	// Zero means runtime.NumCPU().
	Workers int

	// Extract defaults to doctext.Extract.
	Extract ExtractFunc
}

// DocumentInfo describes one document that was parsed.
type DocumentInfo struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
	Lines  int    `json:"lines"`
	Songs  int    `json:"songs"`
}

// Report is the merged outcome of a run.
type Report struct {
	Songs       []*song.Song      `json:"songs"`
	Diagnostics []song.Diagnostic `json:"diagnostics"`
	Documents   []DocumentInfo    `json:"documents"`
}

// Failed reports whether the run should be treated as a failure. With
// warningsFatal any diagnostic fails the run; otherwise only errors do.
func (r *Report) Failed(warningsFatal bool) bool {
	if warningsFatal {
		return len(r.Diagnostics) > 0
	}
	return len(r.Errors()) > 0
}

// Errors returns the non-warning diagnostics.
func (r *Report) Errors() []song.Diagnostic {
	var out []song.Diagnostic
	for _, d := range r.Diagnostics {
		if !d.IsWarning() {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns the warning diagnostics.
func (r *Report) Warnings() []song.Diagnostic {
	var out []song.Diagnostic
	for _, d := range r.Diagnostics {
		if d.IsWarning() {
			out = append(out, d)
		}
	}
	return out
}

// orderKey places a document's results in dispatch order: inputs in the
// order given, archive members in archive order after the archive itself.
type orderKey struct {
	input  int
	member int
}

func (k orderKey) less(o orderKey) bool {
	if k.input != o.input {
		return k.input < o.input
	}
	return k.member < o.member
}

type docResult struct {
	key    orderKey
	info   *DocumentInfo
	result *hymnparse.Result
	err    *herrors.DocumentError
}

// Run parses every input and waits for all of them. Load failures become
// document-level diagnostics and never stop sibling documents. Song ids are
// renumbered 1..N in dispatch order and trailing blank stanza lines removed.
func (r *Runner) Run(ctx context.Context, inputs []string) *Report {
	start := time.Now()
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	extract := r.Extract
	if extract == nil {
		extract = doctext.Extract
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	results := make(chan docResult)

	parse := func(key orderKey, path string, data []byte) {
		defer wg.Done()
		sem <- struct{}{}        // Acquire
		defer func() { <-sem }() // Release
		results <- parseDocument(ctx, extract, key, path, data)
	}

	for i, path := range inputs {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			key := orderKey{input: i}
			info, err := os.Stat(path)
			if err != nil {
				results <- failure(ctx, key, path, herrors.NewIO("stat", path, err))
				return
			}
			if info.Size() == 0 {
				logging.DebugContext(ctx, "skipping empty document", "path", path)
				return
			}

			if archive.IsArchive(path) {
				members, err := archive.Members(path, doctext.Supported)
				if err != nil {
					results <- failure(ctx, key, path, err)
					return
				}
				// Member tasks are scheduled, not awaited; the WaitGroup
				// covers them before this task releases its own count.
				for j, m := range members {
					wg.Add(1)
					go parse(orderKey{input: i, member: j + 1}, archive.MemberPath(path, m.Name), m.Data)
				}
				return
			}

			data, err := os.ReadFile(path)
			if err != nil {
				results <- failure(ctx, key, path, herrors.NewIO("read", path, err))
				return
			}
			results <- parseDocument(ctx, extract, key, path, data)
		}(i, path)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var collected []docResult
	for res := range results {
		collected = append(collected, res)
	}

	report := assemble(collected)
	logging.RunSummary(ctx, len(report.Documents), len(report.Songs),
		len(report.Errors()), len(report.Warnings()), time.Since(start))
	return report
}

func parseDocument(ctx context.Context, extract ExtractFunc, key orderKey, path string, data []byte) docResult {
	if _, err := validation.ValidateFileType(data, path); err != nil {
		return failure(ctx, key, path, err)
	}
	lines, err := extract(path, data)
	if err != nil {
		return failure(ctx, key, path, err)
	}
	logging.DocumentLoaded(ctx, path, len(lines))

	res := hymnparse.Parse(path, lines)
	fp := cas.Fingerprint(data)

	warnings := 0
	for _, d := range res.Diagnostics {
		if d.IsWarning() {
			warnings++
		}
	}
	logging.DocumentParsed(ctx, path, len(res.Songs), len(res.Diagnostics)-warnings, warnings)

	return docResult{
		key: key,
		info: &DocumentInfo{
			Path:   path,
			SHA256: fp.SHA256,
			BLAKE3: fp.BLAKE3,
			Lines:  res.Lines,
			Songs:  len(res.Songs),
		},
		result: res,
	}
}

func failure(ctx context.Context, key orderKey, path string, err error) docResult {
	logging.DocumentFailed(ctx, path, err)
	return docResult{key: key, err: herrors.NewDocument(path, err)}
}

// assemble merges results in dispatch order.
func assemble(collected []docResult) *Report {
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].key.less(collected[j].key)
	})

	report := &Report{
		Songs:       []*song.Song{},
		Diagnostics: []song.Diagnostic{},
		Documents:   []DocumentInfo{},
	}
	for _, res := range collected {
		if res.err != nil {
			report.Diagnostics = append(report.Diagnostics, documentDiagnostic(res.err))
			continue
		}
		report.Documents = append(report.Documents, *res.info)
		report.Songs = append(report.Songs, res.result.Songs...)
		report.Diagnostics = append(report.Diagnostics, res.result.Diagnostics...)
	}

	for i, s := range report.Songs {
		s.ID = i + 1
	}
	song.TrimStanzas(report.Songs)
	return report
}

// documentDiagnostic converts a load failure to its diagnostic record. The
// message omits the path, which the record already carries.
func documentDiagnostic(err *herrors.DocumentError) song.Diagnostic {
	msg := err.Error()
	if err.Err != nil {
		msg = err.Err.Error()
	}
	return song.Diagnostic{Path: err.Path, Message: msg}
}
