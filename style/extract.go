package style

import (
	"log/slog"

	"slotforge/dom"
	"slotforge/slot"
)

// Snapshot is the transient per-selection view model shown in the editor
// sidebar. It is recomputed on every selection change and discarded on
// deselect; nothing in it is persisted directly.
type Snapshot struct {
	Width     string            `json:"width,omitempty"`
	Height    string            `json:"height,omitempty"`
	ClassName string            `json:"className"`
	Styles    map[string]string `json:"styles"`
}

// Extractor builds Snapshots by merging the live element state with the
// stored record. It is strictly read-only: no Extract call mutates the
// tree.
type Extractor struct {
	Denylist *Denylist
	Logger   *slog.Logger
}

// NewExtractor returns an Extractor with the given denylist. A nil
// denylist gets the default set.
func NewExtractor(d *Denylist, logger *slog.Logger) *Extractor {
	if d == nil {
		d = DefaultDenylist()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{Denylist: d, Logger: logger}
}

// Extract merges three sources in priority order — live inline styles,
// computed styles (color properties only), then the stored record — into a
// normalized Snapshot. Placeholder values ("{{…}}") are unset at every
// level. Colors are normalized to 6-digit hex; transparent values are
// unset.
func (x *Extractor) Extract(wrapper dom.Element, rec *slot.Slot, computed map[string]string) Snapshot {
	content := dom.ResolveContent(wrapper, rec)

	styles := make(map[string]string)

	// Lowest priority: the stored record.
	if rec != nil {
		for prop, v := range rec.Styles {
			x.mergeValue(styles, prop, v)
		}
		// Class-implied typography from the stored class string.
		stored := dom.ParseClassList(rec.ClassName)
		for _, tok := range stored.Tokens() {
			if prop, val, ok := ValueForClass(tok); ok && prop != PropTextAlign {
				styles[prop] = val
			}
			if hex, ok := ColorForClass(tok); ok {
				styles["color"] = hex
			}
		}
	}

	// Computed styles recover values implied by CSS classes; the editor
	// trusts them for color properties only.
	for prop, v := range computed {
		if !IsColorProperty(prop) {
			continue
		}
		x.mergeValue(styles, prop, v)
	}

	// Highest priority: live inline styles on the content element.
	inline := content.Styles()
	for prop, v := range inline.Map() {
		x.mergeValue(styles, PropName(prop), v)
	}

	// Class-implied values from the live element, for anything inline and
	// computed left unset.
	live := content.Classes()
	for _, tok := range live.Tokens() {
		if hex, ok := ColorForClass(tok); ok {
			if _, set := styles["color"]; !set {
				styles["color"] = hex
			}
		}
		if prop, val, ok := ValueForClass(tok); ok && prop != PropTextAlign {
			if _, set := styles[prop]; !set {
				styles[prop] = val
			}
		}
	}

	// Alignment lives at a different DOM level than typography.
	if align := x.extractAlignment(wrapper, rec); align != "" {
		styles[PropTextAlign] = align
	}

	snap := Snapshot{
		ClassName: x.Denylist.Filter(live).String(),
		Styles:    styles,
	}
	snap.Width = styles["width"]
	snap.Height = styles["height"]
	return snap
}

// extractAlignment reads the alignment from the ancestor grid cell (or the
// named container for buttons), checking classes first, inline text-align
// second.
func (x *Extractor) extractAlignment(wrapper dom.Element, rec *slot.Slot) string {
	kind := slot.KindDiv
	if rec != nil {
		kind = rec.Type
	}
	target := dom.AlignTarget(wrapper, kind)
	if target.IsZero() {
		return ""
	}
	for _, tok := range target.Classes().Tokens() {
		if alignRe.MatchString(tok) {
			return tok[len("text-"):]
		}
	}
	if v, ok := target.Styles().Get("text-align"); ok {
		return v
	}
	return ""
}

// mergeValue writes prop=v into styles applying the unset rules: empty and
// placeholder values are skipped, color values are normalized and dropped
// when transparent.
func (x *Extractor) mergeValue(styles map[string]string, prop, v string) {
	if v == "" || IsPlaceholder(v) {
		return
	}
	if IsColorProperty(prop) {
		hex, ok := NormalizeColor(v)
		if !ok {
			return
		}
		v = hex
	}
	styles[prop] = v
}
