// Package slot defines the persisted content-block records of a storefront
// page and the closed set of slot variants the editor understands.
//
// A Slot is owned by the page configuration: created by page provisioning,
// mutated by editor saves, never deleted during an editing session (only
// replaced). Repeated instances (product cards) follow the "<base>_<index>"
// naming convention; the base slot stays the canonical template and instances
// are overrides on top of it.
package slot

import (
	"strconv"
	"strings"
)

// Kind is the slot variant. The set is closed: every Kind declares its own
// styleable-target resolution rule in the dom package.
type Kind string

const (
	KindContainer Kind = "container"
	KindGrid      Kind = "grid"
	KindFlex      Kind = "flex"
	KindButton    Kind = "button"
	KindLink      Kind = "link"
	KindText      Kind = "text"
	KindDiv       Kind = "div"
)

// Valid reports whether k is one of the declared kinds. Boundaries that
// accept caller-supplied types check this instead of relying on the
// ParseKind fallback, so bogus types are rejected rather than silently
// stored as div.
func (k Kind) Valid() bool {
	switch k {
	case KindContainer, KindGrid, KindFlex, KindButton, KindLink, KindText, KindDiv:
		return true
	}
	return false
}

// ParseKind maps a stored type string to a Kind. Unknown strings fall back
// to KindDiv so that a record written by a newer schema still resolves.
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindContainer:
		return KindContainer
	case KindGrid:
		return KindGrid
	case KindFlex:
		return KindFlex
	case KindButton:
		return KindButton
	case KindLink:
		return KindLink
	case KindText:
		return KindText
	default:
		return KindDiv
	}
}

// IsLayout reports whether the kind is a pure layout wrapper whose styleable
// content lives on a child element.
func (k Kind) IsLayout() bool {
	return k == KindContainer || k == KindGrid || k == KindFlex
}

// Metadata carries the free-form slot attributes that are persisted alongside
// class and style state.
type Metadata struct {
	HTMLTag        string            `json:"htmlTag,omitempty"`
	HTMLAttributes map[string]string `json:"htmlAttributes,omitempty"`
	EditorSidebar  string            `json:"editorSidebar,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// Slot is a persisted content block of a page.
type Slot struct {
	ID        string            `json:"id"`
	Type      Kind              `json:"type"`
	ClassName string            `json:"className"`
	Styles    map[string]string `json:"styles,omitempty"`
	Content   string            `json:"content,omitempty"`
	Metadata  Metadata          `json:"metadata,omitempty"`
	ParentID  string            `json:"parentId,omitempty"`
}

// Clone returns a deep copy. Editor code mutates snapshots freely; the
// store hands out clones so callers never alias persisted state.
func (s *Slot) Clone() *Slot {
	if s == nil {
		return nil
	}
	c := *s
	if s.Styles != nil {
		c.Styles = make(map[string]string, len(s.Styles))
		for k, v := range s.Styles {
			c.Styles[k] = v
		}
	}
	if s.Metadata.HTMLAttributes != nil {
		c.Metadata.HTMLAttributes = make(map[string]string, len(s.Metadata.HTMLAttributes))
		for k, v := range s.Metadata.HTMLAttributes {
			c.Metadata.HTMLAttributes[k] = v
		}
	}
	if s.Metadata.Extra != nil {
		c.Metadata.Extra = make(map[string]string, len(s.Metadata.Extra))
		for k, v := range s.Metadata.Extra {
			c.Metadata.Extra[k] = v
		}
	}
	return &c
}

// BaseID returns the template identifier for an instance slot. For
// "product_card_2" it returns "product_card"; for a non-instance ID it
// returns the ID unchanged.
func BaseID(id string) string {
	idx := strings.LastIndexByte(id, '_')
	if idx <= 0 || idx == len(id)-1 {
		return id
	}
	if _, err := strconv.Atoi(id[idx+1:]); err != nil {
		return id
	}
	return id[:idx]
}

// IsInstance reports whether id follows the "<base>_<index>" instance
// convention.
func IsInstance(id string) bool {
	return BaseID(id) != id
}
