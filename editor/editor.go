// Package editor is the server-side reconciliation engine for editable
// storefront pages.
//
// It holds the parsed DOM and the slot records per page, and keeps the two
// converged through the selection → extraction → write → debounced flush
// cycle:
//
//	select → style.Extractor (merged snapshot for the sidebar)
//	apply  → style.Writer + tracker (DOM mutation, debounced persistence)
//	flush  → layout cache first, then the slots table and rendered HTML
//
// Usage:
//
//	ed, err := editor.New(cfg, logger)
//	defer ed.Close()
//	ed.RegisterRoutes(router)
//	ed.RegisterMCP(mcpServer)
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"slotforge/dom"
	"slotforge/editor/internal/store"
	"slotforge/idgen"
	"slotforge/kit"
	"slotforge/sanitize"
	"slotforge/slot"
	"slotforge/style"
	"slotforge/tracker"
	"slotforge/translate"
)

// Editor is the main orchestrator. One instance serves all pages of a
// deployment; page state is loaded lazily and kept in memory.
type Editor struct {
	store      *store.Store
	denylist   *style.Denylist
	extractor  *style.Extractor
	writer     *style.Writer
	sanitizer  *sanitize.Sanitizer
	translator *translate.Client
	logger     *slog.Logger
	config     *Config

	newPageID idgen.Generator
	newSched  func() tracker.Scheduler

	mu         sync.Mutex
	pages      map[string]*pageState
	labels     map[string]string
	labelFetch bool
}

// pageState is the in-memory view of one loaded page: the live DOM, the
// slot records, and the tracker debouncing its style changes. The DOM and
// the slot records are shared with the tracker's flush goroutine, so every
// read or write of them goes through the tracker's lock.
type pageState struct {
	id    string
	doc   *dom.Document
	slots map[string]*slot.Slot
	tr    *tracker.Tracker
}

// ElementFor implements tracker.Source over the loaded page.
func (p *pageState) ElementFor(slotID string) (dom.Element, *slot.Slot, bool) {
	el, ok := p.doc.Slot(slotID)
	if !ok {
		return dom.Element{}, nil, false
	}
	rec, ok := p.slots[slotID]
	if !ok {
		return dom.Element{}, nil, false
	}
	return el, rec, true
}

// Option customises an Editor.
type Option func(*Editor)

// WithSchedulerFactory replaces the per-page debounce scheduler
// constructor (tests inject ManualScheduler).
func WithSchedulerFactory(f func() tracker.Scheduler) Option {
	return func(e *Editor) { e.newSched = f }
}

// WithPageIDGenerator replaces the page ID generator.
func WithPageIDGenerator(g idgen.Generator) Option {
	return func(e *Editor) { e.newPageID = g }
}

// New creates an Editor. Opens the SQLite database, compiles the denylist,
// and constructs the extractor, writer, and sanitizer. The translation
// client is only built when a base URL is configured.
func New(cfg *Config, logger *slog.Logger, opts ...Option) (*Editor, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	deny, err := style.NewDenylist(cfg.Denylist)
	if err != nil {
		return nil, fmt.Errorf("editor: denylist: %w", err)
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("editor: open store: %w", err)
	}

	e := &Editor{
		store:     s,
		denylist:  deny,
		extractor: style.NewExtractor(deny, logger),
		writer:    style.NewWriter(deny, logger),
		sanitizer: sanitize.New(),
		logger:    logger,
		config:    cfg,
		newPageID: idgen.Prefixed("page_", idgen.NanoID(12)),
		newSched:  func() tracker.Scheduler { return tracker.NewTimerScheduler() },
		pages:     make(map[string]*pageState),
		labels:    make(map[string]string),
	}
	for _, o := range opts {
		o(e)
	}

	if cfg.Translate.BaseURL != "" {
		tc, err := translate.NewClient(cfg.Translate.BaseURL, logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("editor: translate client: %w", err)
		}
		e.translator = tc
	}
	return e, nil
}

// Close flushes every loaded page's pending changes and closes the store.
func (e *Editor) Close() error {
	e.mu.Lock()
	pages := make([]*pageState, 0, len(e.pages))
	for _, ps := range e.pages {
		pages = append(pages, ps)
	}
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, ps := range pages {
		if err := ps.tr.Flush(ctx); err != nil {
			e.logger.Error("editor: flush on close", "page", ps.id, "error", err)
		}
	}
	return e.store.Close()
}

// Store returns the underlying store for direct access (testing, admin).
func (e *Editor) Store() *store.Store {
	return e.store
}

// LoadPage parses the stored page HTML into a live DOM, loads its slot
// records, and wires a tracker whose save callback persists flushed
// batches to the slots table and re-renders the page markup. Loading an
// already-loaded page replaces the in-memory state.
func (e *Editor) LoadPage(ctx context.Context, pageID string) error {
	p, err := e.store.GetPage(ctx, pageID)
	if err != nil {
		return fmt.Errorf("editor: load page %s: %w", pageID, err)
	}
	if p == nil {
		return fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
	}

	doc, err := dom.ParseDocument(p.HTML)
	if err != nil {
		return fmt.Errorf("editor: parse page %s: %w", pageID, err)
	}

	recs, err := e.store.ListSlots(ctx, pageID)
	if err != nil {
		return fmt.Errorf("editor: load slots for %s: %w", pageID, err)
	}
	slots := make(map[string]*slot.Slot, len(recs))
	for _, r := range recs {
		slots[r.ID] = r
	}

	ps := &pageState{id: pageID, doc: doc, slots: slots}
	ps.tr = tracker.New(ps, store.NewLayoutCache(e.store, pageID),
		tracker.WithWriter(e.writer),
		tracker.WithQuietWindow(e.config.Debounce),
		tracker.WithScheduler(e.newSched()),
		tracker.WithLogger(e.logger.With("page", pageID)),
	)
	ps.tr.SetSaveCallback(e.saveBatch(ps))

	e.mu.Lock()
	e.pages[pageID] = ps
	e.mu.Unlock()

	e.logger.Info("editor: page loaded", "page", pageID, "slots", len(slots))
	return nil
}

// saveBatch returns the tracker save callback for one page: persist each
// flushed record, re-render the page markup, and clear the layout cache
// once everything is durable in the slots table.
func (e *Editor) saveBatch(ps *pageState) tracker.SaveFunc {
	return func(ctx context.Context, b tracker.Batch) error {
		for id, u := range b {
			if err := e.store.ApplySlotUpdate(ctx, ps.id, id, u.ClassName, u.Styles, u.Metadata); err != nil {
				return fmt.Errorf("editor: save slot %s: %w", id, err)
			}
		}
		var markup string
		var renderErr error
		ps.tr.WithLock(func() { markup, renderErr = ps.doc.Render() })
		if renderErr != nil {
			return fmt.Errorf("editor: render page %s: %w", ps.id, renderErr)
		}
		if err := e.store.UpdatePageHTML(ctx, ps.id, markup); err != nil {
			return fmt.Errorf("editor: save page html: %w", err)
		}
		if err := store.NewLayoutCache(e.store, ps.id).Clear(ctx); err != nil {
			e.logger.Warn("editor: clear layout cache", "page", ps.id, "error", err)
		}
		return nil
	}
}

// page returns the loaded state for pageID, loading it on first use.
func (e *Editor) page(ctx context.Context, pageID string) (*pageState, error) {
	e.mu.Lock()
	ps, ok := e.pages[pageID]
	e.mu.Unlock()
	if ok {
		return ps, nil
	}
	if err := e.LoadPage(ctx, pageID); err != nil {
		return nil, err
	}
	e.mu.Lock()
	ps = e.pages[pageID]
	e.mu.Unlock()
	return ps, nil
}

// Select resolves a clicked slot into the sidebar view: merged style
// snapshot plus translation binding detection. computed carries the
// client's getComputedStyle color values; it may be nil.
func (e *Editor) Select(ctx context.Context, pageID, slotID string, computed map[string]string) (*Selection, error) {
	ps, err := e.page(ctx, pageID)
	if err != nil {
		return nil, err
	}
	var sel *Selection
	ps.tr.WithLock(func() {
		el, rec, ok := ps.ElementFor(slotID)
		if !ok {
			return
		}
		snap := e.extractor.Extract(el, rec, computed)
		sel = &Selection{SlotID: slotID, Snapshot: snap, Content: rec.Content}
	})
	if sel == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrSlotNotFound, pageID, slotID)
	}

	if e.translator != nil {
		if b, ok := translate.Detect(sel.Content, e.labelsSnapshot(ctx)); ok {
			sel.Binding = &b
		}
	}
	return sel, nil
}

// labelsSnapshot returns the current label dictionary and kicks off a
// background fetch the first time it is consulted, in the caller's locale
// when the request context carries one. Detection runs against whatever is
// available; an empty dictionary only disables reverse lookup.
func (e *Editor) labelsSnapshot(ctx context.Context) map[string]string {
	locale := kit.GetLocale(ctx)
	if locale == "" {
		locale = e.config.Translate.DefaultLocale
	}

	e.mu.Lock()
	labels := e.labels
	fetch := !e.labelFetch
	if fetch {
		e.labelFetch = true
	}
	e.mu.Unlock()

	if fetch {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			fetched, err := e.translator.FetchLabels(ctx, locale)
			if err != nil {
				e.logger.Warn("editor: fetch labels", "error", err)
				return
			}
			e.mu.Lock()
			e.labels = fetched
			e.mu.Unlock()
		}()
	}
	return labels
}

// ApplyStyle performs one style change on a slot. Instances of a template
// slot mirror the change to the base slot first, so the template and all
// its copies stay converged. A slot or property that cannot be applied is
// a logged no-op; the returned bool reports whether the instance change
// landed.
func (e *Editor) ApplyStyle(ctx context.Context, pageID, slotID, property, value string) (bool, error) {
	ps, err := e.page(ctx, pageID)
	if err != nil {
		return false, err
	}

	if base := slot.BaseID(slotID); base != slotID {
		if _, _, ok := ps.ElementFor(base); ok {
			ps.tr.Apply(base, property, value)
		}
	}
	return ps.tr.Apply(slotID, property, value), nil
}

// SetContent sanitizes raw HTML and writes it into the slot's content
// element. Unsalvageable input falls back to the plain-text rendition so
// content is never silently dropped. The sanitize result is returned so
// callers can surface the wasModified warning.
func (e *Editor) SetContent(ctx context.Context, pageID, slotID, rawHTML string) (sanitize.Result, error) {
	ps, err := e.page(ctx, pageID)
	if err != nil {
		return sanitize.Result{}, err
	}
	res := e.sanitizer.Clean(rawHTML)

	var (
		saved, markup string
		found         bool
		applyErr      error
	)
	ps.tr.WithLock(func() {
		el, rec, ok := ps.ElementFor(slotID)
		if !ok {
			return
		}
		found = true
		content := dom.ResolveContent(el, rec)
		if res.IsValid {
			if err := content.SetInnerHTML(res.SanitizedHTML); err != nil {
				applyErr = fmt.Errorf("editor: set content %s: %w", slotID, err)
				return
			}
			saved = res.SanitizedHTML
		} else {
			content.SetText(res.TextContent)
			saved = res.TextContent
		}
		rec.Content = saved
		if markup, applyErr = ps.doc.Render(); applyErr != nil {
			applyErr = fmt.Errorf("editor: render page %s: %w", pageID, applyErr)
		}
	})
	if !found {
		return sanitize.Result{}, fmt.Errorf("%w: %s/%s", ErrSlotNotFound, pageID, slotID)
	}
	if applyErr != nil {
		return res, applyErr
	}
	if res.WasModified {
		e.logger.Warn("editor: content modified by sanitizer", "page", pageID, "slot", slotID)
	}

	if err := e.store.UpdateSlotContent(ctx, pageID, slotID, saved); err != nil {
		return res, fmt.Errorf("editor: persist content %s: %w", slotID, err)
	}
	if err := e.store.UpdatePageHTML(ctx, pageID, markup); err != nil {
		return res, fmt.Errorf("editor: save page html: %w", err)
	}
	return res, nil
}

// MakeTranslatable binds a slot's content to a translation key: the key is
// registered with the translation service with the current content as its
// source text, the slot content becomes the key, and auto-translation for
// the configured locales is kicked off in the background.
func (e *Editor) MakeTranslatable(ctx context.Context, pageID, slotID, key string) error {
	if e.translator == nil {
		return fmt.Errorf("editor: translation service not configured")
	}
	if !translate.IsKey(key) {
		return fmt.Errorf("editor: %q is not a valid translation key", key)
	}

	ps, err := e.page(ctx, pageID)
	if err != nil {
		return err
	}
	var (
		source string
		found  bool
	)
	ps.tr.WithLock(func() {
		if _, rec, ok := ps.ElementFor(slotID); ok {
			source = rec.Content
			found = true
		}
	})
	if !found {
		return fmt.Errorf("%w: %s/%s", ErrSlotNotFound, pageID, slotID)
	}

	if err := e.translator.MakeTranslatable(ctx, key, source); err != nil {
		return fmt.Errorf("editor: register key: %w", err)
	}

	ps.tr.WithLock(func() {
		if el, rec, ok := ps.ElementFor(slotID); ok {
			dom.ResolveContent(el, rec).SetText(key)
			rec.Content = key
		}
	})
	if err := e.store.UpdateSlotContent(ctx, pageID, slotID, key); err != nil {
		return fmt.Errorf("editor: persist key: %w", err)
	}

	e.translator.AutoTranslate(key, e.config.Translate.Locales)
	return nil
}

// Flush forces the page's pending style changes out immediately.
func (e *Editor) Flush(ctx context.Context, pageID string) error {
	ps, err := e.page(ctx, pageID)
	if err != nil {
		return err
	}
	return ps.tr.Flush(ctx)
}

// ApplySaved replays the page's cached batch through the style writer.
// Called on startup before authoritative state has been re-rendered.
func (e *Editor) ApplySaved(ctx context.Context, pageID string) error {
	ps, err := e.page(ctx, pageID)
	if err != nil {
		return err
	}
	return ps.tr.ApplySaved(ctx)
}

// ClearPending drops the page's pending changes and cancels its timer.
func (e *Editor) ClearPending(ctx context.Context, pageID string) error {
	ps, err := e.page(ctx, pageID)
	if err != nil {
		return err
	}
	ps.tr.Clear()
	return nil
}

// Pending reports how many slots have unflushed changes.
func (e *Editor) Pending(ctx context.Context, pageID string) (int, error) {
	ps, err := e.page(ctx, pageID)
	if err != nil {
		return 0, err
	}
	return ps.tr.Pending(), nil
}

// SetSaveCallback replaces the page's flush persistence callback. The
// default writes to the local store; hosts forwarding batches to an
// upstream CMS override it.
func (e *Editor) SetSaveCallback(ctx context.Context, pageID string, fn tracker.SaveFunc) error {
	ps, err := e.page(ctx, pageID)
	if err != nil {
		return err
	}
	ps.tr.SetSaveCallback(fn)
	return nil
}

// RenderPage serializes the page's current live DOM.
func (e *Editor) RenderPage(ctx context.Context, pageID string) (string, error) {
	ps, err := e.page(ctx, pageID)
	if err != nil {
		return "", err
	}
	var markup string
	var renderErr error
	ps.tr.WithLock(func() { markup, renderErr = ps.doc.Render() })
	return markup, renderErr
}

// ProvisionPage creates a page from layout markup: one page row plus one
// slot record per data-slot-id wrapper found in the layout. The slot kind
// comes from the wrapper's data-slot-type attribute (missing or unknown
// types become div). Returns the generated page ID.
func (e *Editor) ProvisionPage(ctx context.Context, tenantID, name, layout string) (string, error) {
	doc, err := dom.ParseDocument(layout)
	if err != nil {
		return "", fmt.Errorf("editor: parse layout: %w", err)
	}

	pageID := e.newPageID()
	if err := e.store.UpsertPage(ctx, &store.Page{
		ID:       pageID,
		TenantID: tenantID,
		Name:     name,
		HTML:     layout,
	}); err != nil {
		return "", fmt.Errorf("editor: create page: %w", err)
	}

	for _, id := range doc.SlotIDs() {
		wrapper, _ := doc.Slot(id)
		kind := slot.ParseKind(wrapper.Attr("data-slot-type"))
		rec := &slot.Slot{ID: id, Type: kind}
		content := dom.ResolveContent(wrapper, rec)
		rec.ClassName = e.denylist.Filter(content.Classes()).String()
		rec.Content = content.Text()
		rec.Metadata = slot.Metadata{HTMLTag: content.Tag()}
		if parent := wrapper.Ancestor(func(a dom.Element) bool { return a.SlotID() != "" }); !parent.IsZero() {
			rec.ParentID = parent.SlotID()
		}
		if err := e.store.UpsertSlot(ctx, pageID, rec); err != nil {
			return "", fmt.Errorf("editor: create slot %s: %w", id, err)
		}
	}

	e.logger.Info("editor: page provisioned", "page", pageID, "tenant", tenantID, "slots", len(doc.SlotIDs()))
	return pageID, nil
}

// GetSlot returns the stored record for a slot, nil when absent.
func (e *Editor) GetSlot(ctx context.Context, pageID, slotID string) (*slot.Slot, error) {
	return e.store.GetSlot(ctx, pageID, slotID)
}

// ListSlots returns all stored slot records for a page.
func (e *Editor) ListSlots(ctx context.Context, pageID string) ([]*slot.Slot, error) {
	return e.store.ListSlots(ctx, pageID)
}

// UpsertSlot writes a slot record directly. In-memory page state, if
// loaded, is updated to match.
func (e *Editor) UpsertSlot(ctx context.Context, pageID string, rec *slot.Slot) error {
	if err := e.store.UpsertSlot(ctx, pageID, rec); err != nil {
		return err
	}
	e.mu.Lock()
	ps := e.pages[pageID]
	e.mu.Unlock()
	if ps != nil {
		// ps.slots is read by the tracker under its own lock.
		ps.tr.WithLock(func() { ps.slots[rec.ID] = rec.Clone() })
	}
	return nil
}

// Pages lists stored pages, optionally filtered by tenant.
func (e *Editor) Pages(ctx context.Context, tenantID string) ([]*store.Page, error) {
	return e.store.ListPages(ctx, tenantID)
}

// Stats reports store counts.
func (e *Editor) Stats(ctx context.Context) (*store.Stats, error) {
	return e.store.GetStats(ctx)
}
