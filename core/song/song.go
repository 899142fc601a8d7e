// Package song defines the song library records produced by the hymnal
// document parser and consumed by the presentation front end.
//
// The JSON encoding of these types is the library format: field names and
// shapes are stable and mirror what songs.json has always contained.
package song

// Song is one hymnal entry: a numbered hymn, a non-majesty supplemental song,
// or a scripture reading.
type Song struct {
	// ID is the sequential position of the song in the run's output.
	ID int `json:"id"`

	// Title is the text following the title marker.
	Title string `json:"title"`

	// MajestyNumber is the hymnal number. Absent for scripture readings and
	// non-majesty songs, and when the title's number does not fit an int.
	MajestyNumber *int `json:"majestyNumber,omitempty"`

	Tune string `json:"tune,omitempty"`

	Author  *Author `json:"author,omitempty"`
	Author2 *Author `json:"author2,omitempty"`

	ArrangedBy   *Attribution `json:"arrangedBy,omitempty"`
	AdaptedBy    *Attribution `json:"adaptedBy,omitempty"`
	TranslatedBy *Attribution `json:"translatedBy,omitempty"`
	VersifiedBy  *Attribution `json:"versifiedBy,omitempty"`
	AlteredBy    *Attribution `json:"alteredBy,omitempty"`

	// MajestyScripture is the quotation printed under the title.
	MajestyScripture *Scripture `json:"majestyScripture,omitempty"`

	// Copyright closes the song. No stanza is appended once it is set.
	Copyright string `json:"copyright,omitempty"`

	Stanzas []*Stanza `json:"stanzas"`
}

// New returns a song with the given id and title and an empty stanza list.
func New(id int, title string) *Song {
	return &Song{
		ID:      id,
		Title:   title,
		Stanzas: []*Stanza{},
	}
}

// Closed reports whether the song has been terminated by its copyright line.
func (s *Song) Closed() bool {
	return s.Copyright != ""
}

// IsScriptureReading reports whether the song is an SS: scripture reading.
func (s *Song) IsScriptureReading() bool {
	return s.Author != nil && s.Author.Kind == AuthorScriptureRef
}

// AddAuthor stores a in the first free author slot. It returns false when
// both slots are already taken and a was discarded.
func (s *Song) AddAuthor(a *Author) bool {
	switch {
	case s.Author == nil:
		s.Author = a
	case s.Author2 == nil:
		s.Author2 = a
	default:
		return false
	}
	return true
}

// Scripture is the quotation and reference printed beneath a hymn title.
type Scripture struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// Stanza is one numbered verse block.
type Stanza struct {
	// MajestyVerse is the printed verse number.
	MajestyVerse int      `json:"majestyVerse"`
	Lines        []string `json:"lines"`
}

// Attribution names a secondary contributor: arranger, adapter, translator,
// versifier or alterer.
type Attribution struct {
	Name      string `json:"name"`
	BirthYear int    `json:"birthYear"`
	DeathYear *int   `json:"deathYear"`

	// AndOthers is only recorded for translators.
	AndOthers *bool `json:"andOthers,omitempty"`
}
