package hymnparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/FocuswithJustin/JuniperHymnal/core/song"
)

const (
	noScriptureMark  = "(no scripture reference)"
	copyrightPrefix  = "© Copyright"
	scriptureMarker  = "SS:"
	nonMajestyMarker = "#0"
)

var (
	titleRe        = regexp.MustCompile(`^(SS:|#(\d+)) (.+)$`)
	scriptureRefRe = regexp.MustCompile(`^- ?(\w.+)$`)
	quotationRe    = regexp.MustCompile(`^(.+?) [–-] ?(\w.+)$`)
	stanzaHeaderRe = regexp.MustCompile(`^(\d+)\. (.+)$`)
)

type titleMarker struct {
	kind   songKind
	number *int
	title  string
}

func matchTitle(line string) (titleMarker, bool) {
	m := titleRe.FindStringSubmatch(line)
	if m == nil {
		return titleMarker{}, false
	}
	switch m[1] {
	case scriptureMarker:
		return titleMarker{kind: scriptureSong, title: m[3]}, true
	case nonMajestyMarker:
		return titleMarker{kind: nonMajestySong, title: m[3]}, true
	}
	t := titleMarker{kind: numberedSong, title: m[3]}
	// A number too large for an int still marks a title; it is just unknown.
	if n, err := strconv.Atoi(m[2]); err == nil {
		t.number = &n
	}
	return t, true
}

// Parse scans the lines of one document. Line numbers in diagnostics are
// 1-based indexes into lines. Songs carry document-local ids starting at 1.
//
// A song abandoned because of an error stays in Result.Songs as far as it was
// parsed.
func Parse(path string, lines []string) *Result {
	pc := newParseContext(path)
	for i, line := range lines {
		pc.lineNum = i + 1
		pc.step(strings.TrimRightFunc(line, unicode.IsSpace))
	}
	pc.result.Lines = len(lines)
	return pc.result
}

func (pc *parseContext) step(line string) {
	if pc.location <= Before && line == "" {
		return
	}

	title, isTitle := matchTitle(line)
	switch {
	case pc.location == Before || (isTitle && pc.location >= InStanzas):
		if !isTitle {
			pc.reportLineError("Expected the title of a song, but found: " + line)
			return
		}
		pc.startSong(title)

	case pc.location == SkipToNextSong:

	case isTitle:
		pc.reportSongError("Found unexpected title of a song: " + line)

	case pc.location == AfterTitle:
		pc.scriptureLine(line)

	case pc.location == AfterScripture || pc.location == AfterFirstAuthor:
		pc.attributionLine(strings.TrimSpace(line))

	case pc.location == AfterHeader && line == "":

	default:
		pc.stanzaLine(line)
	}
}

func (pc *parseContext) scriptureLine(line string) {
	trimmed := strings.TrimSpace(line)

	if pc.kind == scriptureSong {
		m := scriptureRefRe.FindStringSubmatch(trimmed)
		if m == nil {
			pc.reportSongError("Expected scripture song reference, but found: " + line)
			return
		}
		pc.current.Author = &song.Author{Kind: song.AuthorScriptureRef, Text: m[1]}
		// Scripture readings carry no attribution or tune.
		pc.location = AfterHeader
		return
	}

	if m := quotationRe.FindStringSubmatch(trimmed); m != nil {
		pc.current.MajestyScripture = &song.Scripture{Reference: m[2], Text: m[1]}
	} else if !strings.Contains(strings.ToLower(line), noScriptureMark) {
		pc.reportSongError("Expected scripture quotation, but found: " + line)
		return
	}
	pc.location = AfterScripture
}

func (pc *parseContext) attributionLine(line string) {
	if warning, hit := prescan(line); hit {
		pc.location = AfterFirstAuthor
		pc.reportWarning(warning)
	}

	var author *song.Author
	if m, ok := MatchAuthor(line); ok {
		author = m.Author
		pc.location = AfterFirstAuthor
	} else if pc.location == AfterScripture {
		if line != "" {
			author = &song.Author{Kind: song.AuthorRaw, Text: line}
		}
		pc.location = AfterFirstAuthor
		pc.reportWarning("Expected author info, but found: " + line)
	} else if m, ok := MatchRole(line); ok {
		pc.applyRole(m)
	} else if line == "" && pc.kind == nonMajestySong {
		pc.location = AfterHeader
	} else {
		pc.reportSongError("Expected a tune, but found: " + line)
	}

	if author != nil && !pc.current.AddAuthor(author) {
		pc.reportWarning("Ignoring 3rd author that was found: " + author.String())
	}
}

func (pc *parseContext) stanzaLine(line string) {
	trimmed := strings.TrimSpace(line)

	if m := stanzaHeaderRe.FindStringSubmatch(trimmed); m != nil {
		verse, err := strconv.Atoi(m[1])
		if pc.stanza != nil && (err != nil || verse != pc.stanza.MajestyVerse+1) {
			pc.reportSongError(fmt.Sprintf("Expected stanza #%d, but found: %s", pc.stanza.MajestyVerse+1, line))
			return
		}
		if err != nil {
			pc.reportSongError("Expected the beginning of a stanza, but found: " + line)
			return
		}
		pc.startStanza(verse, m[2])
		return
	}

	switch {
	case pc.stanza == nil:
		pc.reportSongError("Expected the beginning of a stanza, but found: " + line)
	case strings.HasPrefix(trimmed, copyrightPrefix):
		pc.closeSong(trimmed)
	default:
		pc.stanza.Lines = append(pc.stanza.Lines, line)
	}
}
