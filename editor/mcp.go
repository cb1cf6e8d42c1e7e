package editor

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"slotforge/kit"
)

// RegisterMCP registers editor tools on an MCP server.
//
// Registered tools:
//
//	slotforge_select       — selection snapshot for a slot
//	slotforge_apply_style  — apply one style change
//	slotforge_set_content  — sanitize and set slot content
//	slotforge_list_slots   — list a page's slot records
//	slotforge_flush        — force the debounced flush
//	slotforge_stats        — store counts
func (e *Editor) RegisterMCP(srv *mcp.Server) {
	e.registerSelectTool(srv)
	e.registerApplyStyleTool(srv)
	e.registerSetContentTool(srv)
	e.registerListSlotsTool(srv)
	e.registerFlushTool(srv)
	e.registerStatsTool(srv)
}

// toolLog is the endpoint middleware wrapping every registered tool: failed
// invocations are logged with the tool name, transport, and page scope.
func (e *Editor) toolLog(name string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			resp, err := next(ctx, req)
			if err != nil {
				e.logger.Warn("editor: tool call failed", "tool", name,
					"transport", kit.GetTransport(ctx), "page", kit.GetPageID(ctx), "error", err)
			}
			return resp, err
		}
	}
}

// pageScope plants the request's page ID in the context for the middleware
// chain.
func pageScope(pageID string) func(context.Context) context.Context {
	return func(ctx context.Context) context.Context {
		return kit.WithPageID(ctx, pageID)
	}
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- select ---

type selectRequest struct {
	PageID   string            `json:"page_id"`
	SlotID   string            `json:"slot_id"`
	Computed map[string]string `json:"computed,omitempty"`
}

func (e *Editor) registerSelectTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "slotforge_select",
		Description: "Select a slot and return its merged style snapshot, content, and translation binding.",
		InputSchema: inputSchema(map[string]any{
			"page_id":  map[string]any{"type": "string", "description": "Page identifier"},
			"slot_id":  map[string]any{"type": "string", "description": "Slot identifier"},
			"computed": map[string]any{"type": "object", "description": "Client-supplied computed color values"},
		}, []string{"page_id", "slot_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*selectRequest)
		return e.Select(ctx, r.PageID, r.SlotID, r.Computed)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r selectRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: pageScope(r.PageID)}, nil
	}

	kit.RegisterMCPTool(srv, tool, kit.Chain(e.toolLog(tool.Name))(endpoint), decode)
}

// --- apply_style ---

type applyStyleRequest struct {
	PageID   string `json:"page_id"`
	SlotID   string `json:"slot_id"`
	Property string `json:"property"`
	Value    string `json:"value"`
}

func (e *Editor) registerApplyStyleTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "slotforge_apply_style",
		Description: "Apply one style change to a slot. Template instances mirror the change to their base slot.",
		InputSchema: inputSchema(map[string]any{
			"page_id":  map[string]any{"type": "string", "description": "Page identifier"},
			"slot_id":  map[string]any{"type": "string", "description": "Slot identifier"},
			"property": map[string]any{"type": "string", "description": "camelCase CSS property (e.g. fontSize, backgroundColor)"},
			"value":    map[string]any{"type": "string", "description": "Property value"},
		}, []string{"page_id", "slot_id", "property", "value"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*applyStyleRequest)
		applied, err := e.ApplyStyle(ctx, r.PageID, r.SlotID, r.Property, r.Value)
		if err != nil {
			return nil, err
		}
		return map[string]bool{"applied": applied}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r applyStyleRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: pageScope(r.PageID)}, nil
	}

	kit.RegisterMCPTool(srv, tool, kit.Chain(e.toolLog(tool.Name))(endpoint), decode)
}

// --- set_content ---

type setContentRequest struct {
	PageID string `json:"page_id"`
	SlotID string `json:"slot_id"`
	HTML   string `json:"html"`
}

func (e *Editor) registerSetContentTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "slotforge_set_content",
		Description: "Sanitize raw HTML and write it into a slot's content element.",
		InputSchema: inputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Page identifier"},
			"slot_id": map[string]any{"type": "string", "description": "Slot identifier"},
			"html":    map[string]any{"type": "string", "description": "Raw HTML content"},
		}, []string{"page_id", "slot_id", "html"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*setContentRequest)
		res, err := e.SetContent(ctx, r.PageID, r.SlotID, r.HTML)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"content":     res.SanitizedHTML,
			"text":        res.TextContent,
			"valid":       res.IsValid,
			"wasModified": res.WasModified,
		}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r setContentRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: pageScope(r.PageID)}, nil
	}

	kit.RegisterMCPTool(srv, tool, kit.Chain(e.toolLog(tool.Name))(endpoint), decode)
}

// --- list_slots ---

type listSlotsRequest struct {
	PageID string `json:"page_id"`
}

func (e *Editor) registerListSlotsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "slotforge_list_slots",
		Description: "List the stored slot records for a page.",
		InputSchema: inputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Page identifier"},
		}, []string{"page_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*listSlotsRequest)
		return e.ListSlots(ctx, r.PageID)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r listSlotsRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: pageScope(r.PageID)}, nil
	}

	kit.RegisterMCPTool(srv, tool, kit.Chain(e.toolLog(tool.Name))(endpoint), decode)
}

// --- flush ---

type flushRequest struct {
	PageID string `json:"page_id"`
}

func (e *Editor) registerFlushTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "slotforge_flush",
		Description: "Flush a page's pending style changes immediately instead of waiting for the quiet window.",
		InputSchema: inputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Page identifier"},
		}, []string{"page_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*flushRequest)
		if err := e.Flush(ctx, r.PageID); err != nil {
			return nil, err
		}
		return map[string]string{"status": "flushed"}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r flushRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: pageScope(r.PageID)}, nil
	}

	kit.RegisterMCPTool(srv, tool, kit.Chain(e.toolLog(tool.Name))(endpoint), decode)
}

// --- stats ---

func (e *Editor) registerStatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "slotforge_stats",
		Description: "Report page, slot, and cached-batch counts.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return e.Stats(ctx)
	}

	decode := func(*mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: struct{}{}}, nil
	}

	kit.RegisterMCPTool(srv, tool, kit.Chain(e.toolLog(tool.Name))(endpoint), decode)
}
