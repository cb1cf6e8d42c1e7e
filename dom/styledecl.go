package dom

import "strings"

// Declaration is a single inline CSS declaration.
type Declaration struct {
	Property string
	Value    string
}

// StyleDecls is an ordered inline-style list. Order is preserved on
// serialization so repeated parse/serialize cycles are stable.
type StyleDecls struct {
	decls []Declaration
}

// ParseStyle parses a style attribute value. Malformed segments (no colon)
// are dropped silently, matching browser behaviour.
func ParseStyle(s string) StyleDecls {
	var sd StyleDecls
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.IndexByte(part, ':')
		if idx <= 0 {
			continue
		}
		prop := strings.TrimSpace(part[:idx])
		val := strings.TrimSpace(part[idx+1:])
		if prop == "" || val == "" {
			continue
		}
		sd.Set(prop, val)
	}
	return sd
}

// Get returns the value for prop and whether it is set.
func (sd StyleDecls) Get(prop string) (string, bool) {
	for _, d := range sd.decls {
		if d.Property == prop {
			return d.Value, true
		}
	}
	return "", false
}

// Set updates prop in place or appends it.
func (sd *StyleDecls) Set(prop, value string) {
	for i, d := range sd.decls {
		if d.Property == prop {
			sd.decls[i].Value = value
			return
		}
	}
	sd.decls = append(sd.decls, Declaration{Property: prop, Value: value})
}

// Remove deletes prop if present.
func (sd *StyleDecls) Remove(prop string) {
	kept := sd.decls[:0]
	for _, d := range sd.decls {
		if d.Property != prop {
			kept = append(kept, d)
		}
	}
	sd.decls = kept
}

// Map returns the declarations as a property → value map.
func (sd StyleDecls) Map() map[string]string {
	m := make(map[string]string, len(sd.decls))
	for _, d := range sd.decls {
		m[d.Property] = d.Value
	}
	return m
}

// Len returns the declaration count.
func (sd StyleDecls) Len() int { return len(sd.decls) }

// String serializes back to a style attribute value.
func (sd StyleDecls) String() string {
	if len(sd.decls) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, d := range sd.decls {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(d.Property)
		sb.WriteString(": ")
		sb.WriteString(d.Value)
	}
	return sb.String()
}
