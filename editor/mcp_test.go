package editor

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"slotforge/slot"
	"slotforge/tracker"
)

var testImpl = &mcp.Implementation{Name: "slotforge-test", Version: "0.1.0"}

// mcpSession creates an Editor, registers its tools, and returns a connected
// client session that can call them end-to-end.
func mcpSession(t *testing.T) (*Editor, *tracker.ManualScheduler, *mcp.ClientSession) {
	t.Helper()
	ed, sched := testEditor(t)

	srv := mcp.NewServer(testImpl, nil)
	ed.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()

	go func() {
		_ = srv.Run(ctx, serverT)
	}()

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })

	return ed, sched, session
}

// callTool invokes a tool and returns the JSON text from the first TextContent.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("CallTool(%s) tool error: %v", name, err)
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%s): empty content", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, result.Content[0])
	}
	return tc.Text
}

func TestMCP_Select(t *testing.T) {
	ed, _, session := mcpSession(t)
	pageID := provisionLanding(t, ed)

	text := callTool(t, session, "slotforge_select", map[string]any{
		"page_id": pageID,
		"slot_id": "hero_title",
	})

	var sel Selection
	if err := json.Unmarshal([]byte(text), &sel); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sel.Snapshot.Styles["fontSize"] != "xl" {
		t.Errorf("fontSize: got %q, want %q", sel.Snapshot.Styles["fontSize"], "xl")
	}
	if sel.Content != "Welcome" {
		t.Errorf("content: got %q, want %q", sel.Content, "Welcome")
	}
}

func TestMCP_ApplyStyleAndFlush(t *testing.T) {
	ed, _, session := mcpSession(t)
	ctx := context.Background()
	pageID := provisionLanding(t, ed)

	text := callTool(t, session, "slotforge_apply_style", map[string]any{
		"page_id":  pageID,
		"slot_id":  "hero_title",
		"property": "fontSize",
		"value":    "2xl",
	})
	var res map[string]bool
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !res["applied"] {
		t.Fatal("applied: got false")
	}

	callTool(t, session, "slotforge_flush", map[string]any{"page_id": pageID})

	rec, err := ed.GetSlot(ctx, pageID, "hero_title")
	if err != nil {
		t.Fatalf("get slot: %v", err)
	}
	if !strings.Contains(rec.ClassName, "text-2xl") {
		t.Errorf("ClassName after flush: got %q, want text-2xl", rec.ClassName)
	}
}

func TestMCP_ListSlots(t *testing.T) {
	ed, _, session := mcpSession(t)
	pageID := provisionLanding(t, ed)

	text := callTool(t, session, "slotforge_list_slots", map[string]any{"page_id": pageID})
	var recs []*slot.Slot
	if err := json.Unmarshal([]byte(text), &recs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(recs))
	}
}

func TestMCP_UnknownSlotError(t *testing.T) {
	ed, _, session := mcpSession(t)
	pageID := provisionLanding(t, ed)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "slotforge_select",
		Arguments: map[string]any{"page_id": pageID, "slot_id": "nope"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for unknown slot")
	}
}
