package style

import (
	"log/slog"
	"strconv"
	"strings"

	"slotforge/dom"
	"slotforge/slot"
)

// DefaultBorderColor is auto-set when a borderWidth write finds no border
// color anywhere.
const DefaultBorderColor = "#000000"

// Change is the persistence delta a single Apply produced. ClassName is
// non-nil only when the class path ran; Styles holds every inline property
// written, side effects included, so the flush payload captures the full
// DOM effect.
type Change struct {
	ClassName *string
	Styles    map[string]string
}

// Writer applies one property change to the element tree and computes the
// exact stored-record delta. Contract with the Extractor: a read after a
// write reproduces the written value, modulo hex/rgb rounding.
type Writer struct {
	Denylist *Denylist
	Logger   *slog.Logger
}

// NewWriter returns a Writer. A nil denylist gets the default set.
func NewWriter(d *Denylist, logger *slog.Logger) *Writer {
	if d == nil {
		d = DefaultDenylist()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{Denylist: d, Logger: logger}
}

// Apply routes the property to its write path. An unresolvable target or
// an out-of-enumeration value is a no-op (ok=false); nothing here is fatal
// to the caller's batch.
func (w *Writer) Apply(wrapper dom.Element, rec *slot.Slot, property, value string) (Change, bool) {
	if wrapper.IsZero() || rec == nil {
		return Change{}, false
	}
	if !ValidProperty(property) {
		w.Logger.Warn("style: skipping malformed property", "property", property, "slot", rec.ID)
		return Change{}, false
	}

	switch {
	case property == PropTextAlign:
		return w.applyAlignment(wrapper, rec, value)
	case IsClassProperty(property):
		return w.applyClass(wrapper, rec, property, value)
	default:
		return w.applyInline(wrapper, rec, property, value)
	}
}

// applyClass handles the class-based properties: compute the new utility
// class, strip the property's full enumeration, append, and reassign the
// content element's class attribute from the stored class string — never
// the live DOM string, which may carry transient wrapper classes.
func (w *Writer) applyClass(wrapper dom.Element, rec *slot.Slot, property, value string) (Change, bool) {
	newClass, ok := ClassForValue(property, value)
	if !ok {
		w.Logger.Warn("style: value outside enumeration", "property", property, "value", value, "slot", rec.ID)
		return Change{}, false
	}
	content := dom.ResolveContent(wrapper, rec)
	if content.IsZero() {
		return Change{}, false
	}

	pat := classPattern(property)
	stored := dom.ParseClassList(rec.ClassName)
	stored.Replace(pat.MatchString, newClass)

	content.SetClasses(stored)

	name := stored.String()
	return Change{ClassName: &name}, true
}

// applyAlignment is the surgical third path: it targets the ancestor cell
// (or button container), removes only the alignment enumeration from the
// stored class string, and preserves every other class and all inline
// styles on the target.
func (w *Writer) applyAlignment(wrapper dom.Element, rec *slot.Slot, value string) (Change, bool) {
	newClass, ok := ClassForValue(PropTextAlign, value)
	if !ok {
		w.Logger.Warn("style: bad alignment value", "value", value, "slot", rec.ID)
		return Change{}, false
	}
	target := dom.AlignTarget(wrapper, rec.Type)
	if target.IsZero() {
		return Change{}, false
	}

	// Live target: replace only the alignment token among its own classes.
	live := target.Classes()
	live.Replace(alignRe.MatchString, newClass)
	target.SetClasses(live)

	// Stored record: same surgical replace on the stored string.
	stored := dom.ParseClassList(rec.ClassName)
	stored.Replace(alignRe.MatchString, newClass)
	name := stored.String()
	return Change{ClassName: &name}, true
}

// applyInline writes an inline declaration on the resolved content
// element. Bare numerics for pixel properties get a px suffix; a non-zero
// borderWidth auto-sets borderStyle and a default borderColor when neither
// is already set.
func (w *Writer) applyInline(wrapper dom.Element, rec *slot.Slot, property, value string) (Change, bool) {
	content := dom.ResolveContent(wrapper, rec)
	if content.IsZero() {
		return Change{}, false
	}

	v := value
	if IsPixelProperty(property) && isBareNumber(v) {
		v += "px"
	}

	changed := map[string]string{property: v}
	content.SetStyle(CSSName(property), v)

	if property == "borderWidth" && !isZeroLength(v) {
		inline := content.Styles()
		if _, set := inline.Get("border-style"); !set && rec.Styles["borderStyle"] == "" {
			content.SetStyle("border-style", "solid")
			changed["borderStyle"] = "solid"
		}
		if _, set := inline.Get("border-color"); !set && rec.Styles["borderColor"] == "" {
			content.SetStyle("border-color", DefaultBorderColor)
			changed["borderColor"] = DefaultBorderColor
		}
	}

	return Change{Styles: changed}, true
}

func isBareNumber(v string) bool {
	if v == "" {
		return false
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

func isZeroLength(v string) bool {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	n, err := strconv.ParseFloat(v, 64)
	return err == nil && n == 0
}
