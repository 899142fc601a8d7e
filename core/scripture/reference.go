// Package scripture parses the Bible references that head scripture songs
// and majesty quotations, such as "Romans 1:1" or "Psalm 23:1-6".
package scripture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Reference is a parsed scripture reference that may span a range.
type Reference struct {
	Book         string `@Book`
	ChapterStart *int   `( @Number`
	VerseStart   *int   `( ":" @Number )?`
	ChapterEnd   *int   `( "-" ( @Number`
	VerseEnd     *int   `    ( ":" @Number )? )? )? )?`
}

var referenceLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Examples: Romans, Rom., 1 John, 1John, Song of Solomon
	{Name: "Book", Pattern: `(?:\d\s*)?[A-Za-z]+(?:\s+(?:of\s+)?[A-Za-z]+)*\.?`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var referenceParser = participle.MustBuild[Reference](
	participle.Lexer(referenceLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a reference. En dashes are accepted as range separators and
// a trailing translation tag like "(KJV)" is ignored.
//
// Supported forms:
//   - "Romans 1:1" (book chapter:verse)
//   - "Psalm 23:1-6" (verse range within chapter)
//   - "John 3:16-4:2" (range across chapters)
//   - "Psalm 23" or "Psalms 1-2" (whole chapters)
func Parse(input string) (*Reference, error) {
	normalized := strings.TrimSpace(input)
	if i := strings.IndexByte(normalized, '('); i > 0 {
		normalized = strings.TrimSpace(normalized[:i])
	}
	normalized = strings.NewReplacer("–", "-", "—", "-").Replace(normalized)
	normalized = strings.TrimSuffix(normalized, ".")

	ref, err := referenceParser.ParseString("", normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reference %q: %w", input, err)
	}
	ref.Book = strings.TrimSpace(strings.TrimSuffix(ref.Book, "."))

	// "1:1-5" is a verse range, not a chapter range.
	if ref.VerseStart != nil && ref.ChapterEnd != nil && ref.VerseEnd == nil {
		ref.VerseEnd = ref.ChapterEnd
		ref.ChapterEnd = nil
	}
	return ref, nil
}

// String renders the reference in canonical form.
func (r *Reference) String() string {
	var b strings.Builder
	b.WriteString(r.Book)
	if r.ChapterStart == nil {
		return b.String()
	}
	b.WriteString(" ")
	b.WriteString(strconv.Itoa(*r.ChapterStart))
	if r.VerseStart != nil {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(*r.VerseStart))
	}
	switch {
	case r.ChapterEnd != nil:
		b.WriteString("-")
		b.WriteString(strconv.Itoa(*r.ChapterEnd))
		if r.VerseEnd != nil {
			b.WriteString(":")
			b.WriteString(strconv.Itoa(*r.VerseEnd))
		}
	case r.VerseEnd != nil:
		b.WriteString("-")
		b.WriteString(strconv.Itoa(*r.VerseEnd))
	}
	return b.String()
}

// Chapter returns the first chapter, or 0 for a whole book reference.
func (r *Reference) Chapter() int {
	if r.ChapterStart == nil {
		return 0
	}
	return *r.ChapterStart
}

// Verse returns the first verse, or 0 when none was given.
func (r *Reference) Verse() int {
	if r.VerseStart == nil {
		return 0
	}
	return *r.VerseStart
}
