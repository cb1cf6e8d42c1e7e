package dom

import (
	"slotforge/slot"
)

// ResolveContent maps a slot wrapper to the element that actually carries
// the user-visible class/style state. Class attributes frequently live on a
// nested child (a heading inside a grid cell) rather than the wrapper
// itself; each slot kind declares its own rule.
//
// Resolution is deterministic for a given subtree and stored class string
// and never fails: the worst case returns the wrapper unchanged.
func ResolveContent(wrapper Element, rec *slot.Slot) Element {
	if wrapper.IsZero() {
		return wrapper
	}
	kind := slot.KindDiv
	if rec != nil {
		kind = rec.Type
	}

	if kind.IsLayout() {
		// Layout wrappers style their first child div.
		if child := wrapper.FirstChildByTag("div"); !child.IsZero() {
			return child
		}
		return wrapper
	}

	// A wrapper that is itself the editable content element.
	if wrapper.SlotID() != "" && wrapper.IsEditable() {
		return wrapper
	}

	// A child whose class list intersects the stored classes is the one the
	// saved record describes.
	if rec != nil && rec.ClassName != "" {
		stored := ParseClassList(rec.ClassName)
		if match := wrapper.FindDescendant(func(e Element) bool {
			cl := e.Classes()
			return cl.Intersects(stored)
		}); !match.IsZero() {
			return match
		}
	}

	if btn := wrapper.FindDescendant(func(e Element) bool {
		return e.Tag() == "button"
	}); !btn.IsZero() {
		return btn
	}

	if txt := wrapper.FindDescendant(func(e Element) bool {
		return isHeadingOrInline(e.Tag()) && e.SlotID() != ""
	}); !txt.IsZero() {
		return txt
	}

	return wrapper
}

// AlignTarget returns the element alignment classes are written to.
// Alignment lives at a different DOM level than typography: the nearest
// ancestor grid cell, or for buttons the nearest named container. Falls
// back to the wrapper itself so writes always have a target.
func AlignTarget(wrapper Element, kind slot.Kind) Element {
	if wrapper.IsZero() {
		return wrapper
	}
	if kind == slot.KindButton {
		if c := nearestCell(wrapper, AttrContainer); !c.IsZero() {
			return c
		}
	}
	if c := nearestCell(wrapper, AttrCell); !c.IsZero() {
		return c
	}
	return wrapper
}

func nearestCell(e Element, attr string) Element {
	if e.HasAttr(attr) {
		return e
	}
	return e.Ancestor(func(a Element) bool { return a.HasAttr(attr) })
}
