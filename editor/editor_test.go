package editor

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"slotforge/tracker"

	_ "modernc.org/sqlite"
)

const landingLayout = `<div data-slot-id="hero" data-slot-type="container" class="hero-wrap">
  <div class="bg-white">
    <h1 data-slot-id="hero_title" class="text-xl font-normal">Welcome</h1>
  </div>
</div>
<div data-cell>
  <div data-slot-id="cta" data-slot-type="button"><button class="bg-blue-500 font-normal">Buy now</button></div>
  <div data-slot-id="cta_2" data-slot-type="button"><button class="bg-blue-500 font-normal">Buy now</button></div>
</div>`

func testEditor(t *testing.T) (*Editor, *tracker.ManualScheduler) {
	t.Helper()
	sched := tracker.NewManualScheduler()
	cfg := &Config{DBPath: filepath.Join(t.TempDir(), "editor.db")}
	ed, err := New(cfg, slog.Default(),
		WithSchedulerFactory(func() tracker.Scheduler { return sched }),
	)
	if err != nil {
		t.Fatalf("new editor: %v", err)
	}
	t.Cleanup(func() { ed.Close() })
	return ed, sched
}

func provisionLanding(t *testing.T, ed *Editor) string {
	t.Helper()
	pageID, err := ed.ProvisionPage(context.Background(), "shop1", "Landing", landingLayout)
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	return pageID
}

func TestProvisionPage_CreatesSlotRecords(t *testing.T) {
	ed, _ := testEditor(t)
	ctx := context.Background()
	pageID := provisionLanding(t, ed)

	if !strings.HasPrefix(pageID, "page_") {
		t.Errorf("page id: got %q", pageID)
	}

	recs, err := ed.ListSlots(ctx, pageID)
	if err != nil {
		t.Fatalf("list slots: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("slots: got %d, want 4", len(recs))
	}

	title, err := ed.GetSlot(ctx, pageID, "hero_title")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if title == nil {
		t.Fatal("hero_title not provisioned")
	}
	if title.ClassName != "text-xl font-normal" {
		t.Errorf("ClassName: got %q", title.ClassName)
	}
	if title.Content != "Welcome" {
		t.Errorf("Content: got %q", title.Content)
	}
	if title.ParentID != "hero" {
		t.Errorf("ParentID: got %q", title.ParentID)
	}
	if title.Metadata.HTMLTag != "h1" {
		t.Errorf("HTMLTag: got %q", title.Metadata.HTMLTag)
	}
}

func TestSelect_Snapshot(t *testing.T) {
	ed, _ := testEditor(t)
	ctx := context.Background()
	pageID := provisionLanding(t, ed)

	sel, err := ed.Select(ctx, pageID, "hero_title", map[string]string{"color": "rgb(17, 24, 39)"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sel.Snapshot.Styles["fontSize"] != "xl" {
		t.Errorf("fontSize: got %q", sel.Snapshot.Styles["fontSize"])
	}
	if sel.Snapshot.Styles["color"] != "#111827" {
		t.Errorf("color: got %q", sel.Snapshot.Styles["color"])
	}
	if sel.Content != "Welcome" {
		t.Errorf("content: got %q", sel.Content)
	}
	if sel.Binding != nil {
		t.Errorf("binding: got %+v without translator", sel.Binding)
	}
}

func TestSelect_UnknownSlot(t *testing.T) {
	ed, _ := testEditor(t)
	pageID := provisionLanding(t, ed)

	_, err := ed.Select(context.Background(), pageID, "ghost", nil)
	if err == nil || !strings.Contains(err.Error(), "slot not found") {
		t.Errorf("error: got %v", err)
	}
}

func TestSelect_UnknownPage(t *testing.T) {
	ed, _ := testEditor(t)
	_, err := ed.Select(context.Background(), "page_ghost", "hero", nil)
	if err == nil || !strings.Contains(err.Error(), "page not found") {
		t.Errorf("error: got %v", err)
	}
}

func TestApplyStyle_FlushPersists(t *testing.T) {
	ed, sched := testEditor(t)
	ctx := context.Background()
	pageID := provisionLanding(t, ed)

	applied, err := ed.ApplyStyle(ctx, pageID, "hero_title", "fontSize", "2xl")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !applied {
		t.Fatal("apply: not applied")
	}
	if _, err := ed.ApplyStyle(ctx, pageID, "hero_title", "backgroundColor", "#ff0000"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	// Nothing hits the store until the quiet window fires.
	rec, _ := ed.GetSlot(ctx, pageID, "hero_title")
	if strings.Contains(rec.ClassName, "text-2xl") {
		t.Error("class persisted before flush")
	}

	if !sched.Fire() {
		t.Fatal("no scheduled flush")
	}

	rec, err = ed.GetSlot(ctx, pageID, "hero_title")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(rec.ClassName, "text-2xl") {
		t.Errorf("ClassName after flush: got %q", rec.ClassName)
	}
	if strings.Contains(rec.ClassName, "text-xl ") || rec.ClassName == "text-xl" {
		t.Errorf("stale class survived: %q", rec.ClassName)
	}
	if rec.Styles["backgroundColor"] != "#ff0000" {
		t.Errorf("Styles after flush: got %v", rec.Styles)
	}

	// The rendered markup is persisted alongside the records.
	p, _ := ed.Store().GetPage(ctx, pageID)
	if !strings.Contains(p.HTML, "text-2xl") {
		t.Error("page html not re-rendered on flush")
	}

	// Confirmed save clears the layout cache.
	st, _ := ed.Stats(ctx)
	if st.CachedPages != 0 {
		t.Errorf("cached pages after save: got %d", st.CachedPages)
	}
}

func TestApplyStyle_TemplateMirroring(t *testing.T) {
	ed, sched := testEditor(t)
	ctx := context.Background()
	pageID := provisionLanding(t, ed)

	if _, err := ed.ApplyStyle(ctx, pageID, "cta_2", "fontWeight", "bold"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if n, _ := ed.Pending(ctx, pageID); n != 2 {
		t.Fatalf("pending: got %d, want base and instance", n)
	}
	sched.Fire()

	for _, id := range []string{"cta", "cta_2"} {
		rec, _ := ed.GetSlot(ctx, pageID, id)
		if !strings.Contains(rec.ClassName, "font-bold") {
			t.Errorf("%s ClassName: got %q", id, rec.ClassName)
		}
	}
}

func TestApplyStyle_UnknownSlotNoop(t *testing.T) {
	ed, _ := testEditor(t)
	pageID := provisionLanding(t, ed)

	applied, err := ed.ApplyStyle(context.Background(), pageID, "ghost", "fontSize", "xl")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied {
		t.Error("apply to unknown slot: want no-op")
	}
}

func TestSetContent_Sanitizes(t *testing.T) {
	ed, _ := testEditor(t)
	ctx := context.Background()
	pageID := provisionLanding(t, ed)

	res, err := ed.SetContent(ctx, pageID, "hero_title", `<script>alert(1)</script><em>Hi</em>`)
	if err != nil {
		t.Fatalf("set content: %v", err)
	}
	if !res.WasModified {
		t.Error("wasModified: got false")
	}
	if strings.Contains(res.SanitizedHTML, "script") {
		t.Errorf("script survived: %q", res.SanitizedHTML)
	}

	rec, _ := ed.GetSlot(ctx, pageID, "hero_title")
	if !strings.Contains(rec.Content, "<em>Hi</em>") {
		t.Errorf("stored content: got %q", rec.Content)
	}

	markup, _ := ed.RenderPage(ctx, pageID)
	if !strings.Contains(markup, "<em>Hi</em>") {
		t.Error("content not in live DOM")
	}
	if strings.Contains(markup, "script") {
		t.Error("script reached the DOM")
	}

	p, _ := ed.Store().GetPage(ctx, pageID)
	if !strings.Contains(p.HTML, "<em>Hi</em>") {
		t.Error("content not in persisted html")
	}
}

func TestSetContent_InvalidFallsBackToText(t *testing.T) {
	ed, _ := testEditor(t)
	ctx := context.Background()
	pageID := provisionLanding(t, ed)

	res, err := ed.SetContent(ctx, pageID, "hero_title", `<script>alert(1)</script>`)
	if err != nil {
		t.Fatalf("set content: %v", err)
	}
	if res.IsValid {
		t.Error("valid: got true for script-only input")
	}

	rec, _ := ed.GetSlot(ctx, pageID, "hero_title")
	if strings.Contains(rec.Content, "<") {
		t.Errorf("fallback content is not plain text: %q", rec.Content)
	}
}

func TestClearPending(t *testing.T) {
	ed, _ := testEditor(t)
	ctx := context.Background()
	pageID := provisionLanding(t, ed)

	ed.ApplyStyle(ctx, pageID, "hero_title", "fontSize", "2xl")
	if err := ed.ClearPending(ctx, pageID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n, _ := ed.Pending(ctx, pageID); n != 0 {
		t.Errorf("pending after clear: got %d", n)
	}

	// Nothing was persisted.
	rec, _ := ed.GetSlot(ctx, pageID, "hero_title")
	if strings.Contains(rec.ClassName, "text-2xl") {
		t.Error("cleared change reached the store")
	}
}

func TestApplySaved_ReplaysCachedBatch(t *testing.T) {
	ed, sched := testEditor(t)
	ctx := context.Background()
	pageID := provisionLanding(t, ed)

	// A failing save callback leaves the batch in the layout cache.
	ed.SetSaveCallback(ctx, pageID, func(context.Context, tracker.Batch) error {
		return context.DeadlineExceeded
	})
	ed.ApplyStyle(ctx, pageID, "hero_title", "backgroundColor", "#00ff00")
	sched.Fire()

	st, _ := ed.Stats(ctx)
	if st.CachedPages != 1 {
		t.Fatalf("cached pages: got %d, want 1", st.CachedPages)
	}

	// Reload the page from its (unchanged) stored markup and replay.
	if err := ed.LoadPage(ctx, pageID); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if err := ed.ApplySaved(ctx, pageID); err != nil {
		t.Fatalf("apply saved: %v", err)
	}

	markup, _ := ed.RenderPage(ctx, pageID)
	if !strings.Contains(markup, "background-color: #00ff00") {
		t.Errorf("replayed style missing from DOM:\n%s", markup)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.defaults()
	if cfg.DBPath != "slotforge.db" {
		t.Errorf("DBPath: got %q", cfg.DBPath)
	}
	if cfg.Debounce.Seconds() != 1 {
		t.Errorf("Debounce: got %v", cfg.Debounce)
	}
	if len(cfg.Denylist) == 0 {
		t.Error("Denylist: empty")
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("Addr: got %q", cfg.HTTP.Addr)
	}
}

func TestConcurrentStyleAndRender(t *testing.T) {
	ed, sched := testEditor(t)
	ctx := context.Background()
	pageID := provisionLanding(t, ed)

	// Style writes, renders, and debounce flushes all touch the same DOM;
	// run them together so the race detector can see any unlocked access.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			if _, err := ed.ApplyStyle(ctx, pageID, "hero_title", "fontSize", "2xl"); err != nil {
				t.Errorf("apply: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := ed.RenderPage(ctx, pageID); err != nil {
				t.Errorf("render: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			sched.Fire()
		}()
	}
	wg.Wait()

	html, err := ed.RenderPage(ctx, pageID)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "text-2xl") {
		t.Errorf("rendered page missing text-2xl:\n%s", html)
	}
}
