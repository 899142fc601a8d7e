// Package xml is a small namespace-agnostic view over XML documents, used to
// read the markup parts of word-processing files.
//
// Security Notes:
//   - XXE (External Entity) attacks are mitigated because the xmlquery
//     library parses with Go's encoding/xml, which never fetches external
//     entities.
package xml

import (
	"bytes"
	"fmt"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node represents an XML element or text node.
type Node struct {
	node *xmlquery.Node
}

// Parse parses XML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// Root returns the root element of the document.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// ElementsByLocalName returns every element whose local name is one of names,
// in document order, regardless of namespace prefix. Elements nested inside
// an already selected element are also returned.
func (d *Document) ElementsByLocalName(names ...string) ([]*Node, error) {
	if len(names) == 0 {
		return nil, nil
	}
	expr := "//*["
	for i, name := range names {
		if i > 0 {
			expr += " or "
		}
		expr += fmt.Sprintf("local-name()='%s'", name)
	}
	expr += "]"
	return d.XPath(expr)
}

// XPath executes an XPath query and returns matching nodes.
func (d *Document) XPath(expr string) ([]*Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	nodes := xmlquery.QuerySelectorAll(d.root, compiled)
	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// Name returns the local element name.
func (n *Node) Name() string {
	if n.node == nil {
		return ""
	}
	return n.node.Data
}

// Prefix returns the namespace prefix of the element.
func (n *Node) Prefix() string {
	if n.node == nil {
		return ""
	}
	return n.node.Prefix
}

// IsText reports whether the node holds character data.
func (n *Node) IsText() bool {
	return n.node != nil && (n.node.Type == xmlquery.TextNode || n.node.Type == xmlquery.CharDataNode)
}

// IsElement reports whether the node is an element.
func (n *Node) IsElement() bool {
	return n.node != nil && n.node.Type == xmlquery.ElementNode
}

// Text returns the character data of a text node.
func (n *Node) Text() string {
	if n.node == nil {
		return ""
	}
	if n.IsText() {
		return n.node.Data
	}
	return n.node.InnerText()
}

// Attr returns the value of the attribute with the given local name,
// ignoring its prefix.
func (n *Node) Attr(local string) string {
	if n.node == nil {
		return ""
	}
	for _, attr := range n.node.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

// Children returns the child element and text nodes.
func (n *Node) Children() []*Node {
	if n.node == nil {
		return nil
	}
	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode || child.Type == xmlquery.TextNode || child.Type == xmlquery.CharDataNode {
			children = append(children, &Node{node: child})
		}
	}
	return children
}

// Walk visits n and its descendants depth-first in document order. When fn
// returns false the node's children are skipped.
func (n *Node) Walk(fn func(*Node) bool) {
	if n.node == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children() {
		child.Walk(fn)
	}
}
