package style

import (
	"fmt"
	"regexp"

	"slotforge/dom"
)

// DefaultDenyPatterns are the wrapper/editor class patterns stripped before
// any class string is displayed or persisted. These classes belong to the
// editor's visual affordances or the grid layout, never to the user's
// content styling. The set is configuration, not code: deployments extend
// it via the denylist section of the editor config.
var DefaultDenyPatterns = []string{
	`^border(-[a-z0-9-]+)?$`,
	`^shadow(-[a-z0-9]+)?$`,
	`^ring(-[a-z0-9-]+)?$`,
	`^hover:`,
	`^focus:`,
	`^cursor-`,
	`^transition(-[a-z]+)?$`,
	`^p[trblxy]?-[0-9.]+$`,
	`^col-span-([0-9]+|full)$`,
}

// Denylist filters editor-owned classes out of class strings. Filtering is
// idempotent: a filtered string passes through unchanged.
type Denylist struct {
	patterns []*regexp.Regexp
}

// NewDenylist compiles the pattern set. An invalid pattern fails the whole
// construction so misconfiguration surfaces at startup, not at save time.
func NewDenylist(patterns []string) (*Denylist, error) {
	d := &Denylist{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("style: denylist pattern %q: %w", p, err)
		}
		d.patterns = append(d.patterns, re)
	}
	return d, nil
}

// DefaultDenylist returns a denylist compiled from DefaultDenyPatterns.
func DefaultDenylist() *Denylist {
	d, err := NewDenylist(DefaultDenyPatterns)
	if err != nil {
		panic("style: default denylist does not compile: " + err.Error())
	}
	return d
}

// Denied reports whether a class token is editor-owned.
func (d *Denylist) Denied(token string) bool {
	for _, re := range d.patterns {
		if re.MatchString(token) {
			return true
		}
	}
	return false
}

// Filter returns the class list with denied tokens removed.
func (d *Denylist) Filter(cl dom.ClassList) dom.ClassList {
	return cl.Filter(func(tok string) bool { return !d.Denied(tok) })
}

// FilterString filters a raw class string.
func (d *Denylist) FilterString(s string) string {
	cl := dom.ParseClassList(s)
	filtered := d.Filter(cl)
	return filtered.String()
}
