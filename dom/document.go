package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed editable page. Slot wrappers are indexed by their
// slot identifier at parse time; the index tracks the live tree, so
// structural mutations that add or remove wrappers require a reparse.
type Document struct {
	root  *html.Node
	index map[string]Element
}

// ParseDocument parses page markup and indexes slot wrappers.
func ParseDocument(markup string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	d := &Document{root: root, index: make(map[string]Element)}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			el := Element{Node: n}
			if id := el.SlotID(); id != "" {
				if _, dup := d.index[id]; !dup {
					d.index[id] = el
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return d, nil
}

// Slot returns the wrapper element carrying the given slot identifier.
func (d *Document) Slot(id string) (Element, bool) {
	el, ok := d.index[id]
	return el, ok
}

// SlotIDs returns the indexed slot identifiers (order unspecified).
func (d *Document) SlotIDs() []string {
	out := make([]string, 0, len(d.index))
	for id := range d.index {
		out = append(out, id)
	}
	return out
}

// Body returns the body element.
func (d *Document) Body() Element {
	var body Element
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = Element{Node: n}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(d.root)
	return body
}

// Render serializes the document back to markup.
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", err
	}
	return buf.String(), nil
}
