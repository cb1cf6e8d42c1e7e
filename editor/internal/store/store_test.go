package store

import (
	"context"
	"testing"

	_ "modernc.org/sqlite"

	"slotforge/dbopen"
	"slotforge/slot"
	"slotforge/tracker"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	return &Store{DB: db}
}

func testPage(t *testing.T, s *Store, id string) {
	t.Helper()
	if err := s.UpsertPage(context.Background(), &Page{ID: id, Name: "Landing", HTML: "<div></div>"}); err != nil {
		t.Fatalf("upsert page: %v", err)
	}
}

func TestPageCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := &Page{ID: "page_1", TenantID: "shop1", Name: "Landing", HTML: `<div data-slot-id="hero"></div>`}
	if err := s.UpsertPage(ctx, p); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if p.CreatedAt == 0 || p.UpdatedAt == 0 {
		t.Error("timestamps not set")
	}

	got, err := s.GetPage(ctx, "page_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("get: got nil")
	}
	if got.TenantID != "shop1" {
		t.Errorf("TenantID: got %q", got.TenantID)
	}

	if err := s.UpdatePageHTML(ctx, "page_1", "<main></main>"); err != nil {
		t.Fatalf("update html: %v", err)
	}
	got, _ = s.GetPage(ctx, "page_1")
	if got.HTML != "<main></main>" {
		t.Errorf("HTML: got %q", got.HTML)
	}

	pages, err := s.ListPages(ctx, "shop1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pages) != 1 {
		t.Errorf("list: got %d pages", len(pages))
	}
	pages, _ = s.ListPages(ctx, "other")
	if len(pages) != 0 {
		t.Errorf("list other tenant: got %d pages", len(pages))
	}
}

func TestGetPage_Absent(t *testing.T) {
	s := testStore(t)
	got, err := s.GetPage(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("get absent: got %+v, want nil", got)
	}
}

func TestSlotCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	testPage(t, s, "page_1")

	rec := &slot.Slot{
		ID:        "hero_title",
		Type:      slot.KindText,
		ClassName: "text-xl font-bold",
		Styles:    map[string]string{"color": "#111827"},
		Content:   "Welcome",
		Metadata:  slot.Metadata{HTMLTag: "h1", EditorSidebar: "typography"},
	}
	if err := s.UpsertSlot(ctx, "page_1", rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.GetSlot(ctx, "page_1", "hero_title")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("get: got nil")
	}
	if got.Type != slot.KindText {
		t.Errorf("Type: got %q", got.Type)
	}
	if got.Styles["color"] != "#111827" {
		t.Errorf("Styles: got %v", got.Styles)
	}
	if got.Metadata.HTMLTag != "h1" {
		t.Errorf("Metadata: got %+v", got.Metadata)
	}

	// Upsert replaces.
	rec.Content = "Hello"
	if err := s.UpsertSlot(ctx, "page_1", rec); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	got, _ = s.GetSlot(ctx, "page_1", "hero_title")
	if got.Content != "Hello" {
		t.Errorf("Content after upsert: got %q", got.Content)
	}

	recs, err := s.ListSlots(ctx, "page_1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("list: got %d", len(recs))
	}

	if err := s.DeleteSlot(ctx, "page_1", "hero_title"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = s.GetSlot(ctx, "page_1", "hero_title")
	if got != nil {
		t.Error("slot survived delete")
	}
}

func TestApplySlotUpdate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	testPage(t, s, "page_1")

	if err := s.UpsertSlot(ctx, "page_1", &slot.Slot{ID: "cta", Type: slot.KindButton}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	err := s.ApplySlotUpdate(ctx, "page_1", "cta", "font-bold",
		map[string]string{"backgroundColor": "#2563eb"}, slot.Metadata{HTMLTag: "button"})
	if err != nil {
		t.Fatalf("apply update: %v", err)
	}

	got, _ := s.GetSlot(ctx, "page_1", "cta")
	if got.ClassName != "font-bold" {
		t.Errorf("ClassName: got %q", got.ClassName)
	}
	if got.Styles["backgroundColor"] != "#2563eb" {
		t.Errorf("Styles: got %v", got.Styles)
	}
}

func TestCascadeDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	testPage(t, s, "page_1")

	s.UpsertSlot(ctx, "page_1", &slot.Slot{ID: "hero", Type: slot.KindContainer})
	cache := NewLayoutCache(s, "page_1")
	cache.SaveBatch(ctx, tracker.Batch{"hero": {ClassName: "bg-white"}})

	if err := s.DeletePage(ctx, "page_1"); err != nil {
		t.Fatalf("delete page: %v", err)
	}
	recs, _ := s.ListSlots(ctx, "page_1")
	if len(recs) != 0 {
		t.Errorf("slots survived page delete: %d", len(recs))
	}
	b, err := cache.LoadBatch(ctx)
	if err != nil {
		t.Fatalf("load cache: %v", err)
	}
	if len(b) != 0 {
		t.Errorf("cache survived page delete: %d entries", len(b))
	}
}

func TestLayoutCache_MergeAndClear(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	testPage(t, s, "page_1")
	cache := NewLayoutCache(s, "page_1")

	err := cache.SaveBatch(ctx, tracker.Batch{
		"hero": {ClassName: "bg-white", Styles: map[string]string{"color": "#111111"}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// Second save merges new keys and overwrites existing ones.
	err = cache.SaveBatch(ctx, tracker.Batch{
		"hero": {ClassName: "bg-black"},
		"cta":  {Styles: map[string]string{"fontSize": "18px"}},
	})
	if err != nil {
		t.Fatalf("merge save: %v", err)
	}

	b, err := cache.LoadBatch(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(b) != 2 {
		t.Fatalf("entries: got %d, want 2", len(b))
	}
	if b["hero"].ClassName != "bg-black" {
		t.Errorf("hero: got %q", b["hero"].ClassName)
	}
	if b["cta"].Styles["fontSize"] != "18px" {
		t.Errorf("cta: got %v", b["cta"].Styles)
	}

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	b, _ = cache.LoadBatch(ctx)
	if len(b) != 0 {
		t.Errorf("after clear: got %d entries", len(b))
	}
}

func TestStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	testPage(t, s, "page_1")
	testPage(t, s, "page_2")
	s.UpsertSlot(ctx, "page_1", &slot.Slot{ID: "hero", Type: slot.KindContainer})

	st, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Pages != 2 || st.Slots != 1 || st.CachedPages != 0 {
		t.Errorf("stats: got %+v", st)
	}
}
