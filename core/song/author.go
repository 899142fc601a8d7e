package song

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AuthorKind selects which shape an Author value takes.
type AuthorKind int

const (
	// AuthorRaw is unrecognised author text, encoded as a bare string.
	AuthorRaw AuthorKind = iota
	// AuthorNamed is a name with optional birth and death years.
	AuthorNamed
	// AuthorNamedOthers is a name with a year range and an "and others" flag.
	AuthorNamedOthers
	// AuthorCentury is a name dated only by century.
	AuthorCentury
	// AuthorCirca is a name with an approximate year range.
	AuthorCirca
	// AuthorBorn is a living author with only a birth year.
	AuthorBorn
	// AuthorStanzas credits a name with specific stanzas.
	AuthorStanzas
	// AuthorTraditional marks a traditional text.
	AuthorTraditional
	// AuthorBasedOn credits an earlier work and its year.
	AuthorBasedOn
	// AuthorScriptureRef is the reference of an SS: scripture reading.
	AuthorScriptureRef
	// AuthorScripture credits a scripture passage as the text source.
	AuthorScripture
	// AuthorByWork credits a named work with a single year.
	AuthorByWork
	// AuthorSource credits a free-form source.
	AuthorSource
)

var authorKindNames = map[AuthorKind]string{
	AuthorRaw:          "raw",
	AuthorNamed:        "named",
	AuthorNamedOthers:  "named-others",
	AuthorCentury:      "century",
	AuthorCirca:        "circa",
	AuthorBorn:         "born",
	AuthorStanzas:      "stanzas",
	AuthorTraditional:  "traditional",
	AuthorBasedOn:      "based-on",
	AuthorScriptureRef: "scripture-ref",
	AuthorScripture:    "scripture",
	AuthorByWork:       "by-work",
	AuthorSource:       "source",
}

func (k AuthorKind) String() string {
	if name, ok := authorKindNames[k]; ok {
		return name
	}
	return "AuthorKind(" + strconv.Itoa(int(k)) + ")"
}

// Author is the primary credit of a song. Exactly one shape applies per
// value, selected by Kind; fields that do not belong to the shape are ignored
// when encoding.
type Author struct {
	Kind AuthorKind

	Name      string
	BirthYear *int
	DeathYear *int
	AndOthers bool
	Century   int
	Stanzas   []int

	// Year belongs to AuthorBasedOn and AuthorByWork.
	Year int

	// Text carries the single string of the raw, based-on, scripture-ref,
	// scripture, by-work and source shapes.
	Text string
}

// Years returns a pointer to y, for filling optional year fields.
func Years(y int) *int {
	return &y
}

type namedJSON struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birthYear"`
	DeathYear *int   `json:"deathYear"`
}

// MarshalJSON encodes the shape selected by Kind.
func (a Author) MarshalJSON() ([]byte, error) {
	var v any
	switch a.Kind {
	case AuthorRaw:
		v = a.Text
	case AuthorNamed:
		v = namedJSON{a.Name, a.BirthYear, a.DeathYear}
	case AuthorNamedOthers:
		v = struct {
			namedJSON
			AndOthers bool `json:"andOthers"`
		}{namedJSON{a.Name, a.BirthYear, a.DeathYear}, a.AndOthers}
	case AuthorCentury:
		v = struct {
			Name    string `json:"name"`
			Century int    `json:"century"`
		}{a.Name, a.Century}
	case AuthorCirca:
		v = struct {
			namedJSON
			CircaYears bool `json:"circaYears"`
		}{namedJSON{a.Name, a.BirthYear, a.DeathYear}, true}
	case AuthorBorn:
		v = struct {
			Name      string `json:"name"`
			BirthYear *int   `json:"birthYear"`
		}{a.Name, a.BirthYear}
	case AuthorStanzas:
		v = struct {
			namedJSON
			Stanzas []int `json:"stanzas"`
		}{namedJSON{a.Name, a.BirthYear, a.DeathYear}, a.Stanzas}
	case AuthorTraditional:
		v = struct {
			Traditional bool `json:"traditional"`
		}{true}
	case AuthorBasedOn:
		v = struct {
			BasedOn string `json:"basedOn"`
			Year    int    `json:"year"`
		}{a.Text, a.Year}
	case AuthorScriptureRef:
		v = struct {
			ScriptureRef string `json:"scriptureRef"`
		}{a.Text}
	case AuthorScripture:
		v = struct {
			Scripture string `json:"scripture"`
		}{a.Text}
	case AuthorByWork:
		v = struct {
			ByWork string `json:"byWork"`
			Year   int    `json:"year"`
		}{a.Text, a.Year}
	case AuthorSource:
		v = struct {
			Source string `json:"source"`
		}{a.Text}
	default:
		return nil, fmt.Errorf("song: cannot encode author of kind %s", a.Kind)
	}
	return json.Marshal(v)
}

// UnmarshalJSON recognises the shape from the keys present.
func (a *Author) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*a = Author{Kind: AuthorRaw, Text: text}
		return nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	var w struct {
		Name         string `json:"name"`
		BirthYear    *int   `json:"birthYear"`
		DeathYear    *int   `json:"deathYear"`
		AndOthers    bool   `json:"andOthers"`
		Century      int    `json:"century"`
		Stanzas      []int  `json:"stanzas"`
		BasedOn      string `json:"basedOn"`
		Year         int    `json:"year"`
		ScriptureRef string `json:"scriptureRef"`
		Scripture    string `json:"scripture"`
		ByWork       string `json:"byWork"`
		Source       string `json:"source"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	has := func(k string) bool {
		_, ok := keys[k]
		return ok
	}

	named := Author{Name: w.Name, BirthYear: w.BirthYear, DeathYear: w.DeathYear}
	switch {
	case has("traditional"):
		*a = Author{Kind: AuthorTraditional}
	case has("basedOn"):
		*a = Author{Kind: AuthorBasedOn, Text: w.BasedOn, Year: w.Year}
	case has("scriptureRef"):
		*a = Author{Kind: AuthorScriptureRef, Text: w.ScriptureRef}
	case has("scripture"):
		*a = Author{Kind: AuthorScripture, Text: w.Scripture}
	case has("byWork"):
		*a = Author{Kind: AuthorByWork, Text: w.ByWork, Year: w.Year}
	case has("source"):
		*a = Author{Kind: AuthorSource, Text: w.Source}
	case has("century"):
		*a = Author{Kind: AuthorCentury, Name: w.Name, Century: w.Century}
	case has("circaYears"):
		named.Kind = AuthorCirca
		*a = named
	case has("stanzas"):
		named.Kind = AuthorStanzas
		named.Stanzas = w.Stanzas
		*a = named
	case has("andOthers"):
		named.Kind = AuthorNamedOthers
		named.AndOthers = w.AndOthers
		*a = named
	case has("deathYear"):
		named.Kind = AuthorNamed
		*a = named
	case has("name"):
		*a = Author{Kind: AuthorBorn, Name: w.Name, BirthYear: w.BirthYear}
	default:
		return fmt.Errorf("song: unrecognised author shape: %s", data)
	}
	return nil
}

// String renders the author roughly as it appears on a manuscript line.
func (a Author) String() string {
	switch a.Kind {
	case AuthorRaw:
		return a.Text
	case AuthorTraditional:
		return "Traditional"
	case AuthorBasedOn:
		return fmt.Sprintf("Based on %s, %d", a.Text, a.Year)
	case AuthorScriptureRef:
		return "-" + a.Text
	case AuthorScripture:
		return "Scripture: " + a.Text
	case AuthorByWork:
		return fmt.Sprintf("By %s, %d", a.Text, a.Year)
	case AuthorSource:
		return "Source: " + a.Text
	case AuthorCentury:
		return fmt.Sprintf("By %s, %dth century", a.Name, a.Century)
	case AuthorBorn:
		return fmt.Sprintf("By %s, b. %s", a.Name, yearString(a.BirthYear))
	}

	var b strings.Builder
	if a.Kind == AuthorStanzas {
		parts := make([]string, len(a.Stanzas))
		for i, n := range a.Stanzas {
			parts[i] = strconv.Itoa(n)
		}
		b.WriteString("St. " + strings.Join(parts, ",") + " ")
	} else {
		b.WriteString("By ")
	}
	b.WriteString(a.Name)
	if a.BirthYear != nil {
		b.WriteString(", ")
		if a.Kind == AuthorCirca {
			b.WriteString("c. ")
		}
		b.WriteString(yearString(a.BirthYear) + "-" + yearString(a.DeathYear))
	}
	if a.AndOthers {
		b.WriteString(" (and others)")
	}
	return b.String()
}

func yearString(y *int) string {
	if y == nil {
		return ""
	}
	return strconv.Itoa(*y)
}
