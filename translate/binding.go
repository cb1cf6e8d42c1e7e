// Package translate detects and manages translation bindings for slot
// content. A binding associates a slot's content with a translation key;
// it is detected heuristically on selection and handed to the external
// translation service on "make translatable". Bindings are never
// persisted here.
package translate

import (
	"regexp"
	"strings"
)

// Binding associates slot content with a translation key.
type Binding struct {
	Key    string `json:"key"`
	Source string `json:"source"` // "pattern" or "dictionary"
}

// keyRe matches dotted translation keys like "checkout.cta.label".
var keyRe = regexp.MustCompile(`^[a-z0-9]+(\.[a-z0-9_]+)+$`)

// IsKey reports whether content itself looks like a translation key.
func IsKey(content string) bool {
	return keyRe.MatchString(strings.TrimSpace(content))
}

// Detect finds the binding for slot content: content that is itself a key
// binds directly; otherwise a reverse lookup against the label dictionary
// finds the key whose label matches the content. Returns false when
// neither heuristic fires.
func Detect(content string, labels map[string]string) (Binding, bool) {
	c := strings.TrimSpace(content)
	if c == "" {
		return Binding{}, false
	}
	if IsKey(c) {
		return Binding{Key: c, Source: "pattern"}, true
	}
	for key, label := range labels {
		if strings.EqualFold(strings.TrimSpace(label), c) {
			return Binding{Key: key, Source: "dictionary"}, true
		}
	}
	return Binding{}, false
}
