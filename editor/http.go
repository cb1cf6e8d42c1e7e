package editor

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"slotforge/kit"
	"slotforge/safeweb"
	"slotforge/slot"
)

// RequestScope resolves the caller's tenant (X-Tenant-ID header, ?tenant=
// fallback) and locale (X-Locale header, ?locale= fallback) and plants them
// in the request context for the handlers and the editor underneath.
func RequestScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tenant := r.Header.Get("X-Tenant-ID")
		if tenant == "" {
			tenant = r.URL.Query().Get("tenant")
		}
		if tenant != "" {
			ctx = kit.WithTenantID(ctx, tenant)
		}
		locale := r.Header.Get("X-Locale")
		if locale == "" {
			locale = r.URL.Query().Get("locale")
		}
		if locale != "" {
			ctx = kit.WithLocale(ctx, locale)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RegisterRoutes mounts the REST API the browser editor talks to.
//
//	GET    /api/pages                                   list pages (?tenant=)
//	POST   /api/pages                                   provision a page
//	GET    /api/pages/{pageID}                          rendered markup
//	GET    /api/pages/{pageID}/slots                    slot records
//	GET    /api/pages/{pageID}/slots/{slotID}           one slot record
//	PUT    /api/pages/{pageID}/slots/{slotID}           upsert a slot record
//	POST   /api/pages/{pageID}/slots/{slotID}/select    selection snapshot
//	POST   /api/pages/{pageID}/slots/{slotID}/style     apply a style change
//	POST   /api/pages/{pageID}/slots/{slotID}/content   set sanitized content
//	POST   /api/pages/{pageID}/slots/{slotID}/translatable  bind to a key
//	POST   /api/pages/{pageID}/flush                    force a flush
//	POST   /api/pages/{pageID}/restore                  replay cached batch
//	DELETE /api/pages/{pageID}/pending                  drop pending changes
//	GET    /api/stats                                   store counts
//	GET    /healthz
func (e *Editor) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/api/stats", e.handleStats)

	r.Route("/api/pages", func(r chi.Router) {
		r.Use(RequestScope)
		r.Get("/", e.handleListPages)
		r.Post("/", e.handleProvisionPage)
		r.Route("/{pageID}", func(r chi.Router) {
			r.Get("/", e.handleRenderPage)
			r.Post("/flush", e.handleFlush)
			r.Post("/restore", e.handleRestore)
			r.Delete("/pending", e.handleClearPending)
			r.Route("/slots", func(r chi.Router) {
				r.Get("/", e.handleListSlots)
				r.Route("/{slotID}", func(r chi.Router) {
					r.Get("/", e.handleGetSlot)
					r.Put("/", e.handleUpsertSlot)
					r.Post("/select", e.handleSelect)
					r.Post("/style", e.handleStyle)
					r.Post("/content", e.handleContent)
					r.Post("/translatable", e.handleTranslatable)
				})
			})
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrPageNotFound), errors.Is(err, ErrSlotNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// pathIDs validates the page (and optionally slot) identifiers from the
// URL. Rejecting bad identifiers here keeps them out of every handler.
func pathIDs(w http.ResponseWriter, r *http.Request, wantSlot bool) (pageID, slotID string, ok bool) {
	pageID = chi.URLParam(r, "pageID")
	if err := safeweb.CheckID(pageID); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid page id"})
		return "", "", false
	}
	if !wantSlot {
		return pageID, "", true
	}
	slotID = chi.URLParam(r, "slotID")
	if err := safeweb.CheckID(slotID); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid slot id"})
		return "", "", false
	}
	return pageID, slotID, true
}

func (e *Editor) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := e.Stats(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (e *Editor) handleListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := e.Pages(r.Context(), kit.GetTenantID(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

func (e *Editor) handleProvisionPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TenantID string `json:"tenant_id"`
		Name     string `json:"name"`
		HTML     string `json:"html"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if req.TenantID == "" {
		req.TenantID = kit.GetTenantID(r.Context())
	}
	pageID, err := e.ProvisionPage(r.Context(), req.TenantID, req.Name, req.HTML)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": pageID})
}

func (e *Editor) handleRenderPage(w http.ResponseWriter, r *http.Request) {
	pageID, _, ok := pathIDs(w, r, false)
	if !ok {
		return
	}
	markup, err := e.RenderPage(r.Context(), pageID)
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(markup))
}

func (e *Editor) handleListSlots(w http.ResponseWriter, r *http.Request) {
	pageID, _, ok := pathIDs(w, r, false)
	if !ok {
		return
	}
	recs, err := e.ListSlots(r.Context(), pageID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (e *Editor) handleGetSlot(w http.ResponseWriter, r *http.Request) {
	pageID, slotID, ok := pathIDs(w, r, true)
	if !ok {
		return
	}
	rec, err := e.GetSlot(r.Context(), pageID, slotID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if rec == nil {
		writeErr(w, ErrSlotNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (e *Editor) handleUpsertSlot(w http.ResponseWriter, r *http.Request) {
	pageID, slotID, ok := pathIDs(w, r, true)
	if !ok {
		return
	}
	var rec slot.Slot
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	rec.ID = slotID
	if rec.Type == "" {
		rec.Type = slot.KindDiv
	}
	if !rec.Type.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown slot type"})
		return
	}
	if err := e.UpsertSlot(r.Context(), pageID, &rec); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &rec)
}

func (e *Editor) handleSelect(w http.ResponseWriter, r *http.Request) {
	pageID, slotID, ok := pathIDs(w, r, true)
	if !ok {
		return
	}
	var req struct {
		Computed map[string]string `json:"computed"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
			return
		}
	}
	sel, err := e.Select(r.Context(), pageID, slotID, req.Computed)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (e *Editor) handleStyle(w http.ResponseWriter, r *http.Request) {
	pageID, slotID, ok := pathIDs(w, r, true)
	if !ok {
		return
	}
	var req struct {
		Property string `json:"property"`
		Value    string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	applied, err := e.ApplyStyle(r.Context(), pageID, slotID, req.Property, req.Value)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

func (e *Editor) handleContent(w http.ResponseWriter, r *http.Request) {
	pageID, slotID, ok := pathIDs(w, r, true)
	if !ok {
		return
	}
	var req struct {
		HTML string `json:"html"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	res, err := e.SetContent(r.Context(), pageID, slotID, req.HTML)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"content":     res.SanitizedHTML,
		"text":        res.TextContent,
		"valid":       res.IsValid,
		"wasModified": res.WasModified,
	})
}

func (e *Editor) handleTranslatable(w http.ResponseWriter, r *http.Request) {
	pageID, slotID, ok := pathIDs(w, r, true)
	if !ok {
		return
	}
	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := e.MakeTranslatable(r.Context(), pageID, slotID, req.Key); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": req.Key})
}

func (e *Editor) handleFlush(w http.ResponseWriter, r *http.Request) {
	pageID, _, ok := pathIDs(w, r, false)
	if !ok {
		return
	}
	if err := e.Flush(r.Context(), pageID); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *Editor) handleRestore(w http.ResponseWriter, r *http.Request) {
	pageID, _, ok := pathIDs(w, r, false)
	if !ok {
		return
	}
	if err := e.ApplySaved(r.Context(), pageID); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *Editor) handleClearPending(w http.ResponseWriter, r *http.Request) {
	pageID, _, ok := pathIDs(w, r, false)
	if !ok {
		return
	}
	if err := e.ClearPending(r.Context(), pageID); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
