package editor

import (
	"errors"

	"slotforge/style"
	"slotforge/translate"
)

// Sentinel errors HTTP and MCP handlers branch on.
var (
	ErrPageNotFound = errors.New("editor: page not found")
	ErrSlotNotFound = errors.New("editor: slot not found")
)

// Selection is what the sidebar sees after a click: the merged style
// snapshot, the stored content, and the translation binding if the content
// is (or maps to) a translation key.
type Selection struct {
	SlotID   string             `json:"slotId"`
	Snapshot style.Snapshot     `json:"snapshot"`
	Content  string             `json:"content"`
	Binding  *translate.Binding `json:"binding,omitempty"`
}
