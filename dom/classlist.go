package dom

import "strings"

// ClassList is an ordered set of class tokens. It replaces space-joined
// string surgery with typed add/remove/replace operations while keeping the
// original token order stable, so saved class strings stay diff-friendly.
type ClassList struct {
	tokens []string
}

// ParseClassList splits a class attribute value into tokens, dropping
// duplicates while keeping first-occurrence order.
func ParseClassList(s string) ClassList {
	fields := strings.Fields(s)
	cl := ClassList{tokens: make([]string, 0, len(fields))}
	for _, f := range fields {
		cl.Add(f)
	}
	return cl
}

// Has reports whether the token is present.
func (cl ClassList) Has(token string) bool {
	for _, t := range cl.tokens {
		if t == token {
			return true
		}
	}
	return false
}

// Add appends the token if absent.
func (cl *ClassList) Add(token string) {
	if token == "" || cl.Has(token) {
		return
	}
	cl.tokens = append(cl.tokens, token)
}

// Remove deletes the token if present.
func (cl *ClassList) Remove(token string) {
	cl.RemoveFunc(func(t string) bool { return t == token })
}

// RemoveFunc deletes every token matching pred. Returns the number removed.
func (cl *ClassList) RemoveFunc(pred func(string) bool) int {
	kept := cl.tokens[:0]
	removed := 0
	for _, t := range cl.tokens {
		if pred(t) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	cl.tokens = kept
	return removed
}

// Replace removes every token matching pred and appends repl. This is the
// surgical-replace primitive: all non-matching tokens survive untouched.
func (cl *ClassList) Replace(pred func(string) bool, repl string) {
	cl.RemoveFunc(pred)
	cl.Add(repl)
}

// Filter returns a new ClassList holding only tokens for which keep is true.
func (cl ClassList) Filter(keep func(string) bool) ClassList {
	out := ClassList{tokens: make([]string, 0, len(cl.tokens))}
	for _, t := range cl.tokens {
		if keep(t) {
			out.tokens = append(out.tokens, t)
		}
	}
	return out
}

// Tokens returns the tokens in order. The slice is a copy.
func (cl ClassList) Tokens() []string {
	out := make([]string, len(cl.tokens))
	copy(out, cl.tokens)
	return out
}

// Intersects reports whether any token is shared with other.
func (cl ClassList) Intersects(other ClassList) bool {
	for _, t := range other.tokens {
		if cl.Has(t) {
			return true
		}
	}
	return false
}

// Len returns the token count.
func (cl ClassList) Len() int { return len(cl.tokens) }

// String joins the tokens with single spaces.
func (cl ClassList) String() string { return strings.Join(cl.tokens, " ") }
