package style

import (
	"fmt"
	"strconv"
	"strings"
)

// classColors maps the utility color classes the editor resolves directly.
// Everything else is left to the computed-style source: the table stays
// deliberately small because computed values already carry class-implied
// colors for the common case.
var classColors = map[string]string{
	"text-white":    "#ffffff",
	"text-black":    "#000000",
	"text-gray-600": "#4b5563",
}

// ColorForClass returns the hex color a utility class implies, if the class
// is in the explicit table.
func ColorForClass(class string) (string, bool) {
	hex, ok := classColors[class]
	return hex, ok
}

// NormalizeColor converts a CSS color value to a 6-digit hex string.
// Returns ok=false for unset values: empty strings, "transparent", and
// fully transparent rgba(). Values that are neither rgb()/rgba() nor hex
// (named colors, css variables) pass through unchanged.
func NormalizeColor(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "transparent") {
		return "", false
	}
	lower := strings.ToLower(v)

	if strings.HasPrefix(lower, "rgb(") || strings.HasPrefix(lower, "rgba(") {
		return rgbToHex(lower)
	}

	if strings.HasPrefix(v, "#") {
		hex := strings.ToLower(v[1:])
		switch len(hex) {
		case 3:
			// #abc → #aabbcc
			return fmt.Sprintf("#%c%c%c%c%c%c", hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]), true
		case 6:
			return "#" + hex, true
		case 8:
			// drop the alpha channel; 00 alpha is unset
			if hex[6:] == "00" {
				return "", false
			}
			return "#" + hex[:6], true
		}
		return v, true
	}

	return v, true
}

// rgbToHex parses "rgb(r, g, b)" / "rgba(r, g, b, a)". A zero alpha is
// treated as unset.
func rgbToHex(v string) (string, bool) {
	open := strings.IndexByte(v, '(')
	close := strings.IndexByte(v, ')')
	if open < 0 || close < open {
		return "", false
	}
	parts := strings.Split(v[open+1:close], ",")
	if len(parts) < 3 {
		return "", false
	}
	var rgb [3]int
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return "", false
		}
		rgb[i] = n
	}
	if len(parts) >= 4 {
		alpha, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err == nil && alpha == 0 {
			return "", false
		}
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]), true
}

// colorProps are the snapshot properties whose values go through color
// normalization and may be recovered from computed styles.
var colorProps = map[string]bool{
	"color":           true,
	"backgroundColor": true,
	"borderColor":     true,
}

// IsColorProperty reports whether the property holds a color value.
func IsColorProperty(prop string) bool { return colorProps[prop] }
