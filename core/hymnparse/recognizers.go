package hymnparse

import (
	"regexp"
	"strconv"

	"github.com/FocuswithJustin/JuniperHymnal/core/song"
)

// Role identifies which song field an attribution line fills.
type Role int

const (
	RoleAuthor Role = iota
	RoleTune
	RoleArrangedBy
	RoleAdaptedBy
	RoleTranslatedBy
	RoleVersifiedBy
	RoleAlteredBy
)

// Match is the result of recognizing one attribution line.
type Match struct {
	// Recognizer is the name of the pattern that matched.
	Recognizer string
	Role       Role

	// Author is set for RoleAuthor.
	Author *song.Author

	// Attribution is set for the secondary contributor roles.
	Attribution *song.Attribution

	// Tune is set for RoleTune.
	Tune string
}

type recognizer struct {
	name    string
	pattern *regexp.Regexp
	build   func(m []string) Match
}

func (r recognizer) match(line string) (Match, bool) {
	m := r.pattern.FindStringSubmatch(line)
	if m == nil {
		return Match{}, false
	}
	match := r.build(m)
	match.Recognizer = r.name
	return match, true
}

// authorRecognizers are tried in order; the first match wins.
var authorRecognizers = []recognizer{
	{
		name:    "author-years",
		pattern: regexp.MustCompile(`^By ([^,]+)(, (\d{4})-(\d{4})?)?$`),
		build: func(m []string) Match {
			return authorMatch(song.Author{Kind: song.AuthorNamed, Name: m[1], BirthYear: optYear(m[3]), DeathYear: optYear(m[4])})
		},
	},
	{
		name:    "author-century",
		pattern: regexp.MustCompile(`^By ([^,]+), (18|19|20)th [cC]entury$`),
		build: func(m []string) Match {
			return authorMatch(song.Author{Kind: song.AuthorCentury, Name: m[1], Century: year(m[2])})
		},
	},
	{
		name:    "author-comma-name",
		pattern: regexp.MustCompile(`^By (.+?), (\d{4})-(\d{4})( \(and others\))?$`),
		build: func(m []string) Match {
			return authorMatch(song.Author{
				Kind:      song.AuthorNamedOthers,
				Name:      m[1],
				BirthYear: optYear(m[2]),
				DeathYear: optYear(m[3]),
				AndOthers: m[4] != "",
			})
		},
	},
	{
		name:    "author-circa",
		pattern: regexp.MustCompile(`^By (.+?), c. (\d{4})-(\d{4})$`),
		build: func(m []string) Match {
			return authorMatch(song.Author{Kind: song.AuthorCirca, Name: m[1], BirthYear: optYear(m[2]), DeathYear: optYear(m[3])})
		},
	},
	{
		name:    "author-born",
		pattern: regexp.MustCompile(`^By (.+?), b\. (\d{4})$`),
		build: func(m []string) Match {
			return authorMatch(song.Author{Kind: song.AuthorBorn, Name: m[1], BirthYear: optYear(m[2])})
		},
	},
	{
		name:    "author-stanzas",
		pattern: regexp.MustCompile(`^St. (\d(,\d)*) ([^,]+)(, (\d{4})-(\d{4})?)?$`),
		build: func(m []string) Match {
			return authorMatch(song.Author{
				Kind:      song.AuthorStanzas,
				Name:      m[3],
				BirthYear: optYear(m[5]),
				DeathYear: optYear(m[6]),
				Stanzas:   stanzaList(m[1]),
			})
		},
	},
	{
		name:    "traditional",
		pattern: regexp.MustCompile(`^Traditional$`),
		build: func([]string) Match {
			return authorMatch(song.Author{Kind: song.AuthorTraditional})
		},
	},
	{
		name:    "based-on",
		pattern: regexp.MustCompile(`^Based on (.+), (\d{4})$`),
		build: func(m []string) Match {
			return authorMatch(song.Author{Kind: song.AuthorBasedOn, Text: m[1], Year: year(m[2])})
		},
	},
	{
		name:    "scripture",
		pattern: regexp.MustCompile(`^Scripture: (.+)$`),
		build: func(m []string) Match {
			return authorMatch(song.Author{Kind: song.AuthorScripture, Text: m[1]})
		},
	},
	{
		name:    "by-work",
		pattern: regexp.MustCompile(`^By (.+?), (\d{4})$`),
		build: func(m []string) Match {
			return authorMatch(song.Author{Kind: song.AuthorByWork, Text: m[1], Year: year(m[2])})
		},
	},
	{
		name:    "source",
		pattern: regexp.MustCompile(`^Source: (.+)$`),
		build: func(m []string) Match {
			return authorMatch(song.Author{Kind: song.AuthorSource, Text: m[1]})
		},
	},
}

// roleRecognizers cover the tune line and the secondary contributors. They
// are consulted after the author table and after the raw-author fallback.
var roleRecognizers = []recognizer{
	{
		name:    "tune",
		pattern: regexp.MustCompile(`^Tune: (.+)$`),
		build: func(m []string) Match {
			return Match{Role: RoleTune, Tune: m[1]}
		},
	},
	attributionRecognizer("arranged-by", RoleArrangedBy, `^Arr\. (.+?), (\d{4})-(\d{4})?$`),
	attributionRecognizer("adapted-by", RoleAdaptedBy, `^Adapted by (.+?), (\d{4})-(\d{4})?$`),
	{
		name:    "translated-by",
		pattern: regexp.MustCompile(`^Translated by (.+?), (\d{4})-(\d{4})?( and others)?$`),
		build: func(m []string) Match {
			others := m[4] != ""
			return Match{Role: RoleTranslatedBy, Attribution: &song.Attribution{
				Name:      m[1],
				BirthYear: year(m[2]),
				DeathYear: optYear(m[3]),
				AndOthers: &others,
			}}
		},
	},
	attributionRecognizer("versified-by", RoleVersifiedBy, `^Versified by (.+?), (\d{4})-(\d{4})?$`),
	attributionRecognizer("altered-by", RoleAlteredBy, `^Altered by (.+?), (\d{4})-(\d{4})?$`),
}

func attributionRecognizer(name string, role Role, pattern string) recognizer {
	return recognizer{
		name:    name,
		pattern: regexp.MustCompile(pattern),
		build: func(m []string) Match {
			return Match{Role: role, Attribution: &song.Attribution{
				Name:      m[1],
				BirthYear: year(m[2]),
				DeathYear: optYear(m[3]),
			}}
		},
	}
}

func authorMatch(a song.Author) Match {
	return Match{Role: RoleAuthor, Author: &a}
}

func matchFirst(table []recognizer, line string) (Match, bool) {
	for _, r := range table {
		if m, ok := r.match(line); ok {
			return m, true
		}
	}
	return Match{}, false
}

// MatchAuthor runs the author table against a trimmed line.
func MatchAuthor(line string) (Match, bool) {
	return matchFirst(authorRecognizers, line)
}

// MatchRole runs the tune and contributor table against a trimmed line.
func MatchRole(line string) (Match, bool) {
	return matchFirst(roleRecognizers, line)
}

// Recognize classifies an attribution line without any parser state: author
// patterns first, then roles.
func Recognize(line string) (Match, bool) {
	if m, ok := MatchAuthor(line); ok {
		return m, true
	}
	return MatchRole(line)
}

// RecognizerNames lists every recognizer in precedence order.
func RecognizerNames() []string {
	names := make([]string, 0, len(authorRecognizers)+len(roleRecognizers))
	for _, r := range authorRecognizers {
		names = append(names, r.name)
	}
	for _, r := range roleRecognizers {
		names = append(names, r.name)
	}
	return names
}

// year converts a group that the pattern guarantees to be digits.
func year(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func optYear(s string) *int {
	if s == "" {
		return nil
	}
	return song.Years(year(s))
}

func stanzaList(s string) []int {
	var out []int
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, int(r-'0'))
		}
	}
	return out
}
