// Package sanitize validates and cleans free-form HTML pasted into the
// editor before it is parsed back into structured class/style/content
// fields. Script content and event handlers never survive; when markup is
// beyond saving, a plain-text rendition is returned so user content is
// never silently dropped.
package sanitize

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Result is the sanitizer contract with the editor: a WasModified result
// means "apply the sanitized version and surface a warning"; IsValid=false
// with empty SanitizedHTML means "fall back to saving TextContent".
type Result struct {
	SanitizedHTML string `json:"sanitizedHtml"`
	TextContent   string `json:"textContent"`
	IsValid       bool   `json:"isValid"`
	WasModified   bool   `json:"wasModified"`
	Err           string `json:"error,omitempty"`
}

// MaxInputBytes caps the HTML the sanitizer accepts.
const MaxInputBytes = 256 * 1024

// Sanitizer cleans editor HTML submissions. Construct once and share; the
// underlying policy and converter are safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
	md     *converter.Converter
}

// New returns a Sanitizer with a UGC policy: common formatting elements
// survive, scripts, iframes, and event handlers do not. Class and style
// attributes are kept so pasted markup round-trips through the style
// engine.
func New() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "style").Globally()
	p.AllowAttrs("data-slot-id", "data-editable").Globally()
	return &Sanitizer{
		policy: p,
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

// Clean sanitizes raw editor HTML.
func (s *Sanitizer) Clean(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{IsValid: false, Err: "empty submission"}
	}
	if len(trimmed) > MaxInputBytes {
		return Result{IsValid: false, Err: "submission too large"}
	}

	sanitized := strings.TrimSpace(s.policy.Sanitize(trimmed))
	text := s.textContent(sanitized, trimmed)

	if sanitized == "" {
		// Nothing structural survived; the caller saves plain text.
		return Result{
			TextContent: text,
			IsValid:     false,
			WasModified: true,
			Err:         "no valid markup after sanitization",
		}
	}

	return Result{
		SanitizedHTML: sanitized,
		TextContent:   text,
		IsValid:       true,
		WasModified:   !equivalentMarkup(trimmed, sanitized),
	}
}

// textContent renders the best plain-text fallback: a markdown rendition
// of the sanitized markup so lists and emphasis survive, with a raw text
// walk as the last resort.
func (s *Sanitizer) textContent(sanitized, original string) string {
	src := sanitized
	if src == "" {
		src = original
	}
	if md, err := s.md.ConvertString(src); err == nil {
		if t := strings.TrimSpace(md); t != "" {
			return t
		}
	}
	return collectText(src)
}

// equivalentMarkup compares input and sanitizer output modulo whitespace,
// so formatting-only rewrites do not count as modifications.
func equivalentMarkup(a, b string) bool {
	return squashSpace(a) == squashSpace(b)
}

func squashSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// collectText walks parsed markup and joins trimmed text nodes.
func collectText(markup string) string {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return strings.TrimSpace(markup)
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
	walk(root)
	return sb.String()
}
