package doctext

import (
	"strconv"
	"strings"

	herrors "github.com/FocuswithJustin/JuniperHymnal/core/errors"
	"github.com/FocuswithJustin/JuniperHymnal/core/xml"
)

const odtContentPart = "content.xml"

// ExtractODT reads the text body of an OpenDocument text file. Headings and
// paragraphs each yield a line; list items are flattened in order.
func ExtractODT(data []byte) ([]string, error) {
	part, err := readPart("odt", data, odtContentPart)
	if err != nil {
		return nil, err
	}
	doc, err := xml.Parse(part)
	if err != nil {
		return nil, herrors.NewParse("odt", odtContentPart, err)
	}
	bodies, err := doc.XPath("//*[local-name()='body']/*[local-name()='text']")
	if err != nil {
		return nil, err
	}
	if len(bodies) == 0 {
		return nil, &herrors.ParseError{Format: "odt", Path: odtContentPart, Message: "no text body"}
	}

	lines := []string{}
	bodies[0].Walk(func(n *xml.Node) bool {
		if !n.IsElement() {
			return false
		}
		switch n.Name() {
		case "p", "h":
			lines = append(lines, odtParagraph(n)...)
			return false
		case "sequence-decls", "tracked-changes":
			return false
		}
		return true
	})
	return lines, nil
}

func odtParagraph(p *xml.Node) []string {
	var b lineBuilder
	for _, child := range p.Children() {
		child.Walk(func(n *xml.Node) bool {
			if n.IsText() {
				b.text(n.Text())
				return false
			}
			switch n.Name() {
			case "tab":
				b.text("\t")
			case "line-break":
				b.newline()
			case "s":
				count := 1
				if c, err := strconv.Atoi(n.Attr("c")); err == nil && c > 0 {
					count = c
				}
				b.text(strings.Repeat(" ", count))
			case "note", "annotation":
				return false
			}
			return true
		})
	}
	return b.finish()
}
