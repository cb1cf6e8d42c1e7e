// Package dom is the server-side element model for editable pages. It wraps
// golang.org/x/net/html nodes with the attribute, class-token, and
// inline-style operations the style engine needs, plus the slot resolution
// rules that map a clicked wrapper to its styleable content element.
package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Attribute names the editor stamps onto served markup.
const (
	AttrSlotID    = "data-slot-id"
	AttrEditable  = "data-editable"
	AttrCell      = "data-cell"
	AttrContainer = "data-container"
)

// Element wraps an html.Node. The zero value is "no element"; all methods
// are safe to call on it and behave as reads of an empty node.
type Element struct {
	Node *html.Node
}

// IsZero reports whether the element is absent.
func (e Element) IsZero() bool { return e.Node == nil }

// Tag returns the lower-case tag name, or "" for a non-element node.
func (e Element) Tag() string {
	if e.Node == nil || e.Node.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(e.Node.Data)
}

// Attr returns the value of the named attribute, or "".
func (e Element) Attr(key string) string {
	if e.Node == nil {
		return ""
	}
	for _, a := range e.Node.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether the named attribute exists.
func (e Element) HasAttr(key string) bool {
	if e.Node == nil {
		return false
	}
	for _, a := range e.Node.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets or replaces the named attribute. Setting an empty value
// removes the attribute, mirroring how the style writer clears emptied
// class/style state.
func (e Element) SetAttr(key, value string) {
	if e.Node == nil {
		return
	}
	if value == "" {
		kept := e.Node.Attr[:0]
		for _, a := range e.Node.Attr {
			if a.Key != key {
				kept = append(kept, a)
			}
		}
		e.Node.Attr = kept
		return
	}
	for i, a := range e.Node.Attr {
		if a.Key == key {
			e.Node.Attr[i].Val = value
			return
		}
	}
	e.Node.Attr = append(e.Node.Attr, html.Attribute{Key: key, Val: value})
}

// SlotID returns the slot identifier carried by the element, or "".
func (e Element) SlotID() string { return e.Attr(AttrSlotID) }

// IsEditable reports whether the element carries the editable marker.
func (e Element) IsEditable() bool { return e.HasAttr(AttrEditable) }

// Classes parses the class attribute into a ClassList.
func (e Element) Classes() ClassList { return ParseClassList(e.Attr("class")) }

// SetClasses writes the class attribute from a ClassList.
func (e Element) SetClasses(cl ClassList) { e.SetAttr("class", cl.String()) }

// Styles parses the style attribute into ordered declarations.
func (e Element) Styles() StyleDecls { return ParseStyle(e.Attr("style")) }

// SetStyles writes the style attribute from declarations.
func (e Element) SetStyles(sd StyleDecls) { e.SetAttr("style", sd.String()) }

// SetStyle sets a single inline declaration, preserving the others.
func (e Element) SetStyle(prop, value string) {
	sd := e.Styles()
	sd.Set(prop, value)
	e.SetStyles(sd)
}

// Parent returns the parent element, skipping non-element nodes.
func (e Element) Parent() Element {
	if e.Node == nil {
		return Element{}
	}
	for p := e.Node.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return Element{Node: p}
		}
	}
	return Element{}
}

// Ancestor walks up and returns the first ancestor (excluding e itself)
// for which pred is true.
func (e Element) Ancestor(pred func(Element) bool) Element {
	for p := e.Parent(); !p.IsZero(); p = p.Parent() {
		if pred(p) {
			return p
		}
	}
	return Element{}
}

// FirstChildByTag returns the first direct child element with the given tag.
func (e Element) FirstChildByTag(tag string) Element {
	if e.Node == nil {
		return Element{}
	}
	for c := e.Node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && strings.EqualFold(c.Data, tag) {
			return Element{Node: c}
		}
	}
	return Element{}
}

// FindDescendant returns the first descendant element (depth-first,
// excluding e itself) for which pred is true.
func (e Element) FindDescendant(pred func(Element) bool) Element {
	if e.Node == nil {
		return Element{}
	}
	var found Element
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				el := Element{Node: c}
				if pred(el) {
					found = el
					return true
				}
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(e.Node)
	return found
}

// Text collects the trimmed visible text of the subtree, space-joined.
func (e Element) Text() string {
	if e.Node == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			t := strings.TrimSpace(n.Data)
			if t != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.Node)
	return sb.String()
}

// SetText replaces the element's children with a single text node.
func (e Element) SetText(text string) {
	if e.Node == nil {
		return
	}
	for e.Node.FirstChild != nil {
		e.Node.RemoveChild(e.Node.FirstChild)
	}
	e.Node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// SetInnerHTML replaces the element's children with the parsed fragment.
// The markup must already be sanitized; this performs no filtering.
func (e Element) SetInnerHTML(markup string) error {
	if e.Node == nil {
		return nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.Node)
	if err != nil {
		return fmt.Errorf("dom: parse fragment: %w", err)
	}
	for e.Node.FirstChild != nil {
		e.Node.RemoveChild(e.Node.FirstChild)
	}
	for _, n := range nodes {
		e.Node.AppendChild(n)
	}
	return nil
}

// isHeadingOrInline reports whether the tag is one of the text-bearing
// elements the resolver looks for (headings, paragraph, span).
func isHeadingOrInline(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6", "p", "span":
		return true
	}
	return false
}
