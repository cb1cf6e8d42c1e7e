package dom

import (
	"strings"
	"testing"

	"slotforge/slot"
)

func mustParse(t *testing.T, markup string) *Document {
	t.Helper()
	d, err := ParseDocument(markup)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	return d
}

func wrapperFor(t *testing.T, d *Document, id string) Element {
	t.Helper()
	el, ok := d.Slot(id)
	if !ok {
		t.Fatalf("slot %q not indexed", id)
	}
	return el
}

func TestResolveContent_LayoutFirstChildDiv(t *testing.T) {
	d := mustParse(t, `<div data-slot-id="row1"><div class="inner"><h2>x</h2></div></div>`)
	w := wrapperFor(t, d, "row1")

	got := ResolveContent(w, &slot.Slot{ID: "row1", Type: slot.KindGrid})
	if got.Tag() != "div" || !got.Classes().Has("inner") {
		t.Errorf("grid slot: resolved %q class=%q, want inner div", got.Tag(), got.Attr("class"))
	}
}

func TestResolveContent_EditableWrapper(t *testing.T) {
	d := mustParse(t, `<h1 data-slot-id="title" data-editable class="text-2xl">Shop</h1>`)
	w := wrapperFor(t, d, "title")

	got := ResolveContent(w, &slot.Slot{ID: "title", Type: slot.KindText})
	if got.Node != w.Node {
		t.Error("editable wrapper should resolve to itself")
	}
}

func TestResolveContent_StoredClassIntersection(t *testing.T) {
	d := mustParse(t, `
		<div data-slot-id="hero">
			<span class="decoration"></span>
			<h2 class="text-3xl font-bold">Sale</h2>
		</div>`)
	w := wrapperFor(t, d, "hero")

	got := ResolveContent(w, &slot.Slot{ID: "hero", Type: slot.KindText, ClassName: "text-3xl text-left"})
	if got.Tag() != "h2" {
		t.Errorf("resolved %q, want h2 (class intersection)", got.Tag())
	}
}

func TestResolveContent_ButtonDescendant(t *testing.T) {
	d := mustParse(t, `<div data-slot-id="cta"><div><button class="btn">Buy</button></div></div>`)
	w := wrapperFor(t, d, "cta")

	got := ResolveContent(w, &slot.Slot{ID: "cta", Type: slot.KindButton})
	if got.Tag() != "button" {
		t.Errorf("resolved %q, want button", got.Tag())
	}
}

func TestResolveContent_HeadingWithSlotID(t *testing.T) {
	d := mustParse(t, `<div data-slot-id="blurb"><p data-slot-id="blurb">text</p></div>`)
	w := wrapperFor(t, d, "blurb")

	got := ResolveContent(w, &slot.Slot{ID: "blurb", Type: slot.KindText})
	if got.Tag() != "p" {
		t.Errorf("resolved %q, want p", got.Tag())
	}
}

func TestResolveContent_FallbackToWrapper(t *testing.T) {
	d := mustParse(t, `<div data-slot-id="empty"></div>`)
	w := wrapperFor(t, d, "empty")

	got := ResolveContent(w, &slot.Slot{ID: "empty", Type: slot.KindText})
	if got.Node != w.Node {
		t.Error("empty subtree should fall back to the wrapper")
	}
}

func TestResolveContent_NilRecord(t *testing.T) {
	d := mustParse(t, `<div data-slot-id="x"><button>b</button></div>`)
	w := wrapperFor(t, d, "x")

	got := ResolveContent(w, nil)
	if got.Tag() != "button" {
		t.Errorf("nil record: resolved %q, want button", got.Tag())
	}
}

func TestAlignTarget_GridCellAncestor(t *testing.T) {
	d := mustParse(t, `
		<div data-cell class="col-span-2">
			<div data-slot-id="txt"><p>hi</p></div>
		</div>`)
	w := wrapperFor(t, d, "txt")

	got := AlignTarget(w, slot.KindText)
	if !got.HasAttr(AttrCell) {
		t.Error("align target should be the data-cell ancestor")
	}
}

func TestAlignTarget_ButtonContainer(t *testing.T) {
	d := mustParse(t, `
		<div data-cell>
			<div data-container>
				<div data-slot-id="cta"><button>Buy</button></div>
			</div>
		</div>`)
	w := wrapperFor(t, d, "cta")

	got := AlignTarget(w, slot.KindButton)
	if !got.HasAttr(AttrContainer) {
		t.Error("button align target should be the named container, not the cell")
	}
}

func TestAlignTarget_FallbackWrapper(t *testing.T) {
	d := mustParse(t, `<div data-slot-id="solo"><p>x</p></div>`)
	w := wrapperFor(t, d, "solo")

	got := AlignTarget(w, slot.KindText)
	if got.Node != w.Node {
		t.Error("no cell ancestor: align target should be the wrapper")
	}
}

func TestDocument_RenderPreservesMutation(t *testing.T) {
	d := mustParse(t, `<div data-slot-id="a" class="text-sm">x</div>`)
	w := wrapperFor(t, d, "a")
	cl := w.Classes()
	cl.Add("font-bold")
	w.SetClasses(cl)

	out, err := d.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if want := `class="text-sm font-bold"`; !strings.Contains(out, want) {
		t.Errorf("Render: %q missing from output", want)
	}
}
