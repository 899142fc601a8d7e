package hymnparse

import "regexp"

// softCheck flags an attribution line that probably packs several fields
// together. A hit is only a warning; the line is still offered to the
// recognizer tables.
type softCheck struct {
	name    string
	hit     func(line string) bool
	message string
}

var (
	inlineTranslatedRe = regexp.MustCompile(`(?i)[,;] tr. `)
	inlineArrangedRe   = regexp.MustCompile(`(?i)[,;] arr. `)
	inlineAdaptedRe    = regexp.MustCompile(`(?i)[,;] adapted by `)
	multipleAuthorsRe  = regexp.MustCompile(`(?i)By.*?;`)
	andOthersSuffixRe  = regexp.MustCompile(` \(?and others\)?$`)
	extraYearRe        = regexp.MustCompile(`\d{4}[^-]`)
)

var softChecks = []softCheck{
	{
		name:    "inline-translated",
		hit:     inlineTranslatedRe.MatchString,
		message: "Expected translated by info on separate line from author, but found: ",
	},
	{
		name:    "inline-arranged",
		hit:     inlineArrangedRe.MatchString,
		message: "Expected arranged by info on separate line from author, but found: ",
	},
	{
		name:    "inline-adapted",
		hit:     inlineAdaptedRe.MatchString,
		message: "Expected adapted by info on separate line from author, but found: ",
	},
	{
		name:    "multiple-authors",
		hit:     multipleAuthorsRe.MatchString,
		message: "Expected multiple authors on separate lines, but found: ",
	},
	{
		name: "multiple-years",
		hit: func(line string) bool {
			return extraYearRe.MatchString(andOthersSuffixRe.ReplaceAllString(line, ""))
		},
		message: "Expected only one year or year range on an author line, but found: ",
	},
}

// prescan returns the warning for the first soft check that hits line.
func prescan(line string) (string, bool) {
	for _, c := range softChecks {
		if c.hit(line) {
			return c.message + line, true
		}
	}
	return "", false
}
