package hymnparse

import (
	"github.com/FocuswithJustin/JuniperHymnal/core/song"
)

// Result is the outcome of parsing one document.
type Result struct {
	Path        string
	Songs       []*song.Song
	Diagnostics []song.Diagnostic

	// Lines is the number of input lines scanned.
	Lines int
}

// parseContext is the per-document parser state.
type parseContext struct {
	result *Result

	location Location
	lineNum  int
	nextID   int

	current *song.Song
	stanza  *song.Stanza
	kind    songKind
}

func newParseContext(path string) *parseContext {
	return &parseContext{
		result:   &Result{Path: path, Songs: []*song.Song{}},
		location: Before,
	}
}

func (pc *parseContext) majestyNumber() *int {
	if pc.current == nil || pc.current.MajestyNumber == nil {
		return nil
	}
	n := *pc.current.MajestyNumber
	return &n
}

// reportLineError records an error outside any song and skips to the next
// title.
func (pc *parseContext) reportLineError(message string) {
	pc.result.Diagnostics = append(pc.result.Diagnostics, song.Diagnostic{
		Path:    pc.result.Path,
		LineNum: pc.lineNum,
		Message: message,
	})
	pc.location = SkipToNextSong
}

// reportSongError records an error in the current song and abandons it.
func (pc *parseContext) reportSongError(message string) {
	pc.result.Diagnostics = append(pc.result.Diagnostics, song.Diagnostic{
		Path:          pc.result.Path,
		LineNum:       pc.lineNum,
		MajestyNumber: pc.majestyNumber(),
		Message:       message,
	})
	pc.location = SkipToNextSong
}

// reportWarning records a recoverable oddity; the state is unchanged.
func (pc *parseContext) reportWarning(message string) {
	pc.result.Diagnostics = append(pc.result.Diagnostics, song.Diagnostic{
		Path:          pc.result.Path,
		LineNum:       pc.lineNum,
		MajestyNumber: pc.majestyNumber(),
		Message:       message,
		Warning:       true,
	})
}

func (pc *parseContext) startSong(t titleMarker) {
	pc.nextID++
	s := song.New(pc.nextID, t.title)
	if t.kind == numberedSong {
		s.MajestyNumber = t.number
	}

	pc.current = s
	pc.stanza = nil
	pc.kind = t.kind
	if t.kind == nonMajestySong {
		pc.location = AfterScripture
	} else {
		pc.location = AfterTitle
	}
	pc.result.Songs = append(pc.result.Songs, s)
}

func (pc *parseContext) startStanza(verse int, first string) {
	st := &song.Stanza{MajestyVerse: verse, Lines: []string{first}}
	pc.current.Stanzas = append(pc.current.Stanzas, st)
	pc.stanza = st
	pc.location = InStanzas
}

func (pc *parseContext) closeSong(copyright string) {
	pc.current.Copyright = copyright
	pc.current = nil
	pc.stanza = nil
	pc.location = Before
}

func (pc *parseContext) applyRole(m Match) {
	s := pc.current
	switch m.Role {
	case RoleTune:
		s.Tune = m.Tune
		pc.location = AfterHeader
	case RoleArrangedBy:
		s.ArrangedBy = m.Attribution
	case RoleAdaptedBy:
		s.AdaptedBy = m.Attribution
	case RoleTranslatedBy:
		s.TranslatedBy = m.Attribution
	case RoleVersifiedBy:
		s.VersifiedBy = m.Attribution
	case RoleAlteredBy:
		s.AlteredBy = m.Attribution
	}
}
