// Package tracker is the debounced change tracker between the style writer
// and persistence. It batches per-element mutations behind a single shared
// quiet window and flushes them to a local durable cache plus an optional
// host-registered save callback.
//
// Pipeline:
//
//	editor.ApplyStyle → tracker.Apply (DOM mutation + record) → quiet window
//	→ Flush (re-read DOM) → cache.SaveBatch → save callback
//
// The tracker is an explicit instance owned by its editor; there is no
// package-level singleton, so tests construct as many independent trackers
// as they need.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"slotforge/dom"
	"slotforge/slot"
	"slotforge/style"
)

// DefaultQuietWindow is the debounce period between the last tracked
// change and the flush.
const DefaultQuietWindow = time.Second

// Update is the per-element flush record: the denylist-filtered class
// string, the current inline styles, and the slot metadata.
type Update struct {
	ClassName string            `json:"className"`
	Styles    map[string]string `json:"styles"`
	Metadata  slot.Metadata     `json:"metadata"`
}

// Batch maps slot identifiers to their flush records.
type Batch map[string]Update

// Source supplies the live wrapper element and stored record for a slot.
// The editor implements it over its loaded pages.
type Source interface {
	ElementFor(slotID string) (dom.Element, *slot.Slot, bool)
}

// Cache is the local durable store for flushed batches. Writes always land
// here before the save callback runs, so a failed save never loses the
// in-session change.
type Cache interface {
	SaveBatch(ctx context.Context, b Batch) error
	LoadBatch(ctx context.Context) (Batch, error)
	Clear(ctx context.Context) error
}

// SaveFunc is the host-supplied database persistence callback. Invoked at
// most once per flush cycle.
type SaveFunc func(ctx context.Context, b Batch) error

// pendingChange is the tracked change set for one element.
type pendingChange struct {
	props        map[string]string
	lastModified time.Time
}

// Tracker accumulates style changes and flushes them after the quiet
// window. Safe for concurrent use; DOM mutation happens under the
// tracker's lock, matching the single-writer model of the editor.
type Tracker struct {
	mu      sync.Mutex
	pending map[string]*pendingChange
	saveCb  SaveFunc

	source Source
	cache  Cache
	writer *style.Writer
	sched  Scheduler
	quiet  time.Duration
	logger *slog.Logger
}

// Option customises a Tracker.
type Option func(*Tracker)

// WithScheduler replaces the real-time scheduler (tests use
// ManualScheduler).
func WithScheduler(s Scheduler) Option { return func(t *Tracker) { t.sched = s } }

// WithQuietWindow overrides DefaultQuietWindow.
func WithQuietWindow(d time.Duration) Option { return func(t *Tracker) { t.quiet = d } }

// WithWriter injects a configured style writer (custom denylist).
func WithWriter(w *style.Writer) Option { return func(t *Tracker) { t.writer = w } }

// WithLogger injects the logger.
func WithLogger(l *slog.Logger) Option { return func(t *Tracker) { t.logger = l } }

// New creates a Tracker over the given element source and cache.
func New(source Source, cache Cache, opts ...Option) *Tracker {
	t := &Tracker{
		pending: make(map[string]*pendingChange),
		source:  source,
		cache:   cache,
		quiet:   DefaultQuietWindow,
	}
	for _, o := range opts {
		o(t)
	}
	if t.sched == nil {
		t.sched = NewTimerScheduler()
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.writer == nil {
		t.writer = style.NewWriter(nil, t.logger)
	}
	return t
}

// WithLock runs fn under the tracker's mutex. The host serializes its own
// reads and writes of the shared DOM through this, so a debounce flush
// never walks the tree mid-mutation.
func (t *Tracker) WithLock(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn()
}

// SetSaveCallback registers the database persistence callback. Absence of
// a callback is not an error: local-cache-only persistence is the valid
// degraded mode during initial load.
func (t *Tracker) SetSaveCallback(fn SaveFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.saveCb = fn
}

// Apply performs one style change: resolve the true target, mutate the
// DOM via the style writer, record the change, and reset the shared quiet
// window. An unknown slot or rejected property is a no-op.
func (t *Tracker) Apply(slotID, property, value string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.applyLocked(slotID, property, value)
}

func (t *Tracker) applyLocked(slotID, property, value string) bool {
	el, rec, ok := t.source.ElementFor(slotID)
	if !ok {
		t.logger.Debug("tracker: unknown slot", "slot", slotID)
		return false
	}

	change, ok := t.writer.Apply(el, rec, property, value)
	if !ok {
		return false
	}

	pc := t.pending[slotID]
	if pc == nil {
		pc = &pendingChange{props: make(map[string]string)}
		t.pending[slotID] = pc
	}
	pc.props[property] = value
	for prop, v := range change.Styles {
		pc.props[prop] = v
	}
	if change.ClassName != nil {
		rec.ClassName = *change.ClassName
	}
	pc.lastModified = time.Now()

	// One shared timer for all elements; every change resets it.
	t.sched.Schedule(t.quiet, func() {
		if err := t.Flush(context.Background()); err != nil {
			t.logger.Error("tracker: flush", "error", err)
		}
	})
	return true
}

// Pending returns the number of elements with unflushed changes.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Flush emits one Update per tracked element and resets the pending set.
// Values are re-read from the live tree — not from the recorded change
// values — so side effects the writer applied (auto border style/color)
// are captured. The cache write happens first and independently; a save
// callback failure is logged and left for the next cycle.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	tracked := t.pending
	t.pending = make(map[string]*pendingChange)
	saveCb := t.saveCb
	t.sched.Cancel()

	batch := make(Batch, len(tracked))
	for slotID := range tracked {
		el, rec, ok := t.source.ElementFor(slotID)
		if !ok {
			continue
		}
		batch[slotID] = t.readElement(el, rec)
	}
	t.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	if err := t.cache.SaveBatch(ctx, batch); err != nil {
		t.logger.Error("tracker: cache save", "error", err)
	}

	if saveCb != nil {
		if err := saveCb(ctx, batch); err != nil {
			t.logger.Error("tracker: save callback", "error", err, "elements", len(batch))
		}
	}
	return nil
}

// readElement builds the Update for one element from its current DOM
// state: inline styles as property keys, classes filtered through the
// wrapper denylist.
func (t *Tracker) readElement(el dom.Element, rec *slot.Slot) Update {
	content := dom.ResolveContent(el, rec)

	styles := make(map[string]string)
	for cssProp, v := range content.Styles().Map() {
		styles[style.PropName(cssProp)] = v
	}

	filtered := t.writer.Denylist.Filter(content.Classes())

	u := Update{
		ClassName: filtered.String(),
		Styles:    styles,
	}
	if rec != nil {
		u.Metadata = rec.Metadata
	}
	return u
}

// ApplySaved replays the cached batch onto the DOM, property by property,
// restoring editor state after a reload before the authoritative database
// state is fetched.
func (t *Tracker) ApplySaved(ctx context.Context) error {
	batch, err := t.cache.LoadBatch(ctx)
	if err != nil {
		return err
	}
	for slotID, u := range batch {
		for prop, v := range u.Styles {
			t.Apply(slotID, prop, v)
		}
		if u.ClassName != "" {
			t.mu.Lock()
			if el, rec, ok := t.source.ElementFor(slotID); ok {
				content := dom.ResolveContent(el, rec)
				content.SetClasses(dom.ParseClassList(u.ClassName))
				rec.ClassName = u.ClassName
			}
			t.mu.Unlock()
		}
	}
	return nil
}

// Clear drops all pending changes and disarms the quiet window. The cache
// is untouched; ResetCache clears it explicitly.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = make(map[string]*pendingChange)
	t.sched.Cancel()
}

// ResetCache empties the local durable cache.
func (t *Tracker) ResetCache(ctx context.Context) error {
	return t.cache.Clear(ctx)
}
