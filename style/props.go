// Package style implements the property extraction and write paths of the
// slot editor: reading a normalized snapshot out of the live element tree
// merged with the stored record, and applying single property changes with
// the exact class-delta semantics the saved records rely on.
package style

import (
	"regexp"
	"strings"
)

// The class-based properties. Each maps to a fixed utility-class
// enumeration; writes replace the whole enumeration with one new token.
const (
	PropFontSize   = "fontSize"
	PropFontWeight = "fontWeight"
	PropFontStyle  = "fontStyle"
	PropTextAlign  = "textAlign"
)

var (
	fontSizeRe   = regexp.MustCompile(`^text-(xs|sm|base|lg|xl|[2-9]xl)$`)
	fontWeightRe = regexp.MustCompile(`^font-(thin|extralight|light|normal|medium|semibold|bold|extrabold|black)$`)
	fontStyleRe  = regexp.MustCompile(`^(italic|not-italic)$`)
	alignRe      = regexp.MustCompile(`^text-(left|center|right|justify)$`)
)

// IsClassProperty reports whether the property is written as a utility
// class rather than an inline style.
func IsClassProperty(prop string) bool {
	switch prop {
	case PropFontSize, PropFontWeight, PropFontStyle:
		return true
	}
	return false
}

// classPattern returns the removal pattern for a class property.
func classPattern(prop string) *regexp.Regexp {
	switch prop {
	case PropFontSize:
		return fontSizeRe
	case PropFontWeight:
		return fontWeightRe
	case PropFontStyle:
		return fontStyleRe
	case PropTextAlign:
		return alignRe
	}
	return nil
}

// ClassForValue computes the single utility class a class-property value
// implies. Accepts both bare values ("lg", "bold", "italic") and
// already-prefixed classes ("text-lg"). Returns ok=false for values
// outside the property's enumeration.
func ClassForValue(prop, value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	pat := classPattern(prop)
	if pat == nil {
		return "", false
	}
	if pat.MatchString(value) {
		return value, true
	}

	var candidate string
	switch prop {
	case PropFontSize, PropTextAlign:
		candidate = "text-" + value
	case PropFontWeight:
		candidate = "font-" + value
	case PropFontStyle:
		if value == "normal" {
			candidate = "not-italic"
		} else {
			candidate = value
		}
	}
	if pat.MatchString(candidate) {
		return candidate, true
	}
	return "", false
}

// ValueForClass inverts ClassForValue for snapshot display: "text-lg" →
// ("fontSize", "lg").
func ValueForClass(class string) (prop, value string, ok bool) {
	switch {
	case fontSizeRe.MatchString(class):
		return PropFontSize, strings.TrimPrefix(class, "text-"), true
	case fontWeightRe.MatchString(class):
		return PropFontWeight, strings.TrimPrefix(class, "font-"), true
	case fontStyleRe.MatchString(class):
		if class == "not-italic" {
			return PropFontStyle, "normal", true
		}
		return PropFontStyle, class, true
	case alignRe.MatchString(class):
		return PropTextAlign, strings.TrimPrefix(class, "text-"), true
	}
	return "", "", false
}

// pixelProps are the inline properties whose bare numeric values get a px
// suffix on write.
var pixelProps = map[string]bool{
	"width":         true,
	"height":        true,
	"minWidth":      true,
	"minHeight":     true,
	"maxWidth":      true,
	"maxHeight":     true,
	"margin":        true,
	"marginTop":     true,
	"marginRight":   true,
	"marginBottom":  true,
	"marginLeft":    true,
	"padding":       true,
	"paddingTop":    true,
	"paddingRight":  true,
	"paddingBottom": true,
	"paddingLeft":   true,
	"borderWidth":   true,
	"borderRadius":  true,
	"gap":           true,
	"rowGap":        true,
	"columnGap":     true,
	"top":           true,
	"right":         true,
	"bottom":        true,
	"left":          true,
	"letterSpacing": true,
}

// IsPixelProperty reports whether bare numerics for prop get a px suffix.
func IsPixelProperty(prop string) bool { return pixelProps[prop] }

var camelRe = regexp.MustCompile(`[A-Z]`)

// CSSName converts a camelCase property key to its CSS name:
// "borderColor" → "border-color".
func CSSName(prop string) string {
	return camelRe.ReplaceAllStringFunc(prop, func(m string) string {
		return "-" + strings.ToLower(m)
	})
}

var kebabRe = regexp.MustCompile(`-([a-z])`)

// PropName converts a CSS name to the camelCase property key:
// "border-color" → "borderColor".
func PropName(css string) string {
	return kebabRe.ReplaceAllStringFunc(css, func(m string) string {
		return strings.ToUpper(m[1:])
	})
}

var validPropRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*$`)

// ValidProperty reports whether prop is a well-formed camelCase property
// key. Malformed keys are skipped (and logged) rather than written.
func ValidProperty(prop string) bool { return validPropRe.MatchString(prop) }

// IsPlaceholder reports whether a value is an unexpanded template
// placeholder; placeholders are always treated as unset.
func IsPlaceholder(v string) bool { return strings.Contains(v, "{{") }
