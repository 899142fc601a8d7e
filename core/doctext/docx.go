package doctext

import (
	herrors "github.com/FocuswithJustin/JuniperHymnal/core/errors"
	"github.com/FocuswithJustin/JuniperHymnal/core/xml"
)

const docxMainPart = "word/document.xml"

// ExtractDOCX reads the main document part of a WordprocessingML package.
// Paragraphs in tables are included in reading order; text boxes, deleted
// text and field instructions are skipped.
func ExtractDOCX(data []byte) ([]string, error) {
	part, err := readPart("docx", data, docxMainPart)
	if err != nil {
		return nil, err
	}
	doc, err := xml.Parse(part)
	if err != nil {
		return nil, herrors.NewParse("docx", docxMainPart, err)
	}
	bodies, err := doc.ElementsByLocalName("body")
	if err != nil {
		return nil, err
	}
	if len(bodies) == 0 {
		return nil, &herrors.ParseError{Format: "docx", Path: docxMainPart, Message: "no document body"}
	}

	lines := []string{}
	bodies[0].Walk(func(n *xml.Node) bool {
		if !n.IsElement() {
			return false
		}
		if n.Name() == "p" {
			lines = append(lines, docxParagraph(n)...)
			return false
		}
		return true
	})
	return lines, nil
}

func docxParagraph(p *xml.Node) []string {
	var b lineBuilder
	for _, child := range p.Children() {
		child.Walk(func(n *xml.Node) bool {
			if !n.IsElement() {
				return false
			}
			switch n.Name() {
			case "t":
				b.text(n.Text())
				return false
			case "tab", "ptab":
				b.text("\t")
			case "br", "cr":
				if n.Attr("type") == "page" {
					return false
				}
				b.newline()
			case "noBreakHyphen":
				b.text("-")
			case "txbxContent", "delText", "instrText", "pPr", "rPr":
				return false
			}
			return true
		})
	}
	return b.finish()
}
