package editor

import (
	"strings"

	"github.com/dshills/botflow/pkg/flow"
)

// PaletteEntry describes a node type in the add-node menu.
type PaletteEntry struct {
	Type        flow.NodeType
	Title       string
	Description string
	Icon        string
}

// Palette is the add-node menu with search filtering.
type Palette struct {
	entries       []PaletteEntry
	selectedIndex int
	filterText    string
	visible       bool
}

// NewPalette creates a palette listing every node type.
func NewPalette() *Palette {
	entries := make([]PaletteEntry, 0, len(flow.NodeTypes()))
	for _, t := range flow.NodeTypes() {
		title, _ := t.Defaults()
		entries = append(entries, PaletteEntry{
			Type:        t,
			Title:       title,
			Description: paletteDescription(t),
			Icon:        paletteIcon(t),
		})
	}
	return &Palette{entries: entries}
}

func paletteDescription(t flow.NodeType) string {
	switch t {
	case flow.NodeHello:
		return "Greeting message"
	case flow.NodeWhatsApp:
		return "Hand the conversation over to WhatsApp"
	case flow.NodeVideoCall:
		return "Start a video call"
	case flow.NodeVoicebot:
		return "Voice assistant step"
	case flow.NodeChatbot:
		return "Chatbot reply"
	}
	return ""
}

func paletteIcon(t flow.NodeType) string {
	switch t {
	case flow.NodeHello:
		return "💬"
	case flow.NodeWhatsApp:
		return "🟢"
	case flow.NodeVideoCall:
		return "🎥"
	case flow.NodeVoicebot:
		return "🤖"
	case flow.NodeChatbot:
		return "🗨"
	}
	return "•"
}

// Show opens the palette with the filter cleared.
func (p *Palette) Show() {
	p.visible = true
	p.selectedIndex = 0
	p.filterText = ""
}

// Hide closes the palette.
func (p *Palette) Hide() {
	p.visible = false
}

// IsVisible returns whether the palette is open.
func (p *Palette) IsVisible() bool {
	return p.visible
}

// Entries returns the entries matching the current filter.
func (p *Palette) Entries() []PaletteEntry {
	return p.Filter(p.filterText)
}

// Filter sets the search text and returns the matching entries, using a
// case-insensitive substring match on the title.
func (p *Palette) Filter(text string) []PaletteEntry {
	p.filterText = text
	if text == "" {
		return p.entries
	}

	lower := strings.ToLower(text)
	var filtered []PaletteEntry
	for _, e := range p.entries {
		if strings.Contains(strings.ToLower(e.Title), lower) || strings.Contains(string(e.Type), lower) {
			filtered = append(filtered, e)
		}
	}
	if p.selectedIndex >= len(filtered) {
		p.selectedIndex = 0
	}
	return filtered
}

// Next moves the selection down with wrap-around.
func (p *Palette) Next() {
	n := len(p.Entries())
	if n == 0 {
		return
	}
	p.selectedIndex = (p.selectedIndex + 1) % n
}

// Previous moves the selection up with wrap-around.
func (p *Palette) Previous() {
	n := len(p.Entries())
	if n == 0 {
		return
	}
	p.selectedIndex = (p.selectedIndex - 1 + n) % n
}

// SelectedIndex returns the highlighted row.
func (p *Palette) SelectedIndex() int {
	return p.selectedIndex
}

// Selected returns the highlighted entry.
func (p *Palette) Selected() (PaletteEntry, bool) {
	entries := p.Entries()
	if len(entries) == 0 {
		return PaletteEntry{}, false
	}
	if p.selectedIndex >= len(entries) {
		p.selectedIndex = 0
	}
	return entries[p.selectedIndex], true
}
