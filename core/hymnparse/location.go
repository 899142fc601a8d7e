// Package hymnparse turns the text lines of a hymnal manuscript into song
// records.
//
// A manuscript is a loose sequence of songs. Each song starts with a title
// marker ("#12 Title", "#0 Title" or "SS: Title"), continues with a scripture
// line, attribution lines and a tune line, and then numbered stanzas until a
// "© Copyright" line closes it. The parser is a line-at-a-time state machine
// that never aborts: malformed input is recorded as a diagnostic and the
// parser skips ahead to the next title marker.
package hymnparse

import "strconv"

// Location is the parser's position within the current song. The values are
// ordered; comparisons such as "at or past InStanzas" are meaningful.
type Location int

const (
	// Before means no song is open.
	Before Location = iota
	// AfterTitle expects the scripture line.
	AfterTitle
	// AfterScripture expects the first attribution line.
	AfterScripture
	// AfterFirstAuthor accepts further attribution lines until the tune.
	AfterFirstAuthor
	// AfterHeader expects the first stanza.
	AfterHeader
	// InStanzas accumulates stanza lines until the copyright.
	InStanzas
	// SkipToNextSong discards lines until the next title marker.
	SkipToNextSong
)

var locationNames = [...]string{
	Before:           "before",
	AfterTitle:       "after-title",
	AfterScripture:   "after-scripture",
	AfterFirstAuthor: "after-first-author",
	AfterHeader:      "after-header",
	InStanzas:        "in-stanzas",
	SkipToNextSong:   "skip-to-next-song",
}

func (l Location) String() string {
	if l >= 0 && int(l) < len(locationNames) {
		return locationNames[l]
	}
	return "Location(" + strconv.Itoa(int(l)) + ")"
}

// songKind classifies a song by its title marker.
type songKind int

const (
	numberedSong songKind = iota
	nonMajestySong
	scriptureSong
)
