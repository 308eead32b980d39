package flow

import (
	"fmt"
	"slices"
)

// NodeType identifies the kind of dialog step a node represents.
type NodeType string

const (
	NodeHello     NodeType = "hello"
	NodeWhatsApp  NodeType = "wa"
	NodeVideoCall NodeType = "videocall"
	NodeVoicebot  NodeType = "voicebot"
	NodeChatbot   NodeType = "chatbot"
)

// fallbackContent is used for node types outside the known set.
const fallbackContent = "Masukkan konten pesan di sini..."

// NodeTypes returns every node type in menu order.
func NodeTypes() []NodeType {
	return []NodeType{NodeHello, NodeWhatsApp, NodeVideoCall, NodeVoicebot, NodeChatbot}
}

// ParseNodeType converts a raw string into a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown node type: %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	return slices.Contains(NodeTypes(), t)
}

// Defaults returns the title and content a freshly added node of this
// type starts with.
func (t NodeType) Defaults() (title, content string) {
	switch t {
	case NodeHello:
		return "Hello", "Halo! Terima kasih telah mengunjungi kami.\nAda yang bisa kami bantu hari ini?"
	case NodeWhatsApp:
		return "WhatsApp", "Anda akan diarahkan ke WhatsApp untuk melanjutkan percakapan."
	case NodeVideoCall:
		return "Video Call", "Memulai panggilan video...\nSilakan tunggu sebentar."
	case NodeVoicebot:
		return "Voicebot", "Voicebot siap membantu Anda.\nSilakan berbicara setelah nada."
	case NodeChatbot:
		return "Chatbot", "Chatbot siap membantu Anda.\nKetik pesan Anda di bawah ini."
	}
	// Only reachable for graphs decoded without ParseNodeType.
	return string(t), fallbackContent
}

// Position is a point in canvas coordinates.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p translated by o.
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p - o.
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// NodeData is the user-editable content of a node.
type NodeData struct {
	Title        string   `json:"title" yaml:"title"`
	Content      string   `json:"content" yaml:"content"`
	Buttons      []Button `json:"buttons,omitempty" yaml:"buttons,omitempty"`
	QuickActions []string `json:"quickActions,omitempty" yaml:"quick_actions,omitempty"`
}

// Node is a single dialog step placed on the canvas.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Type     NodeType `json:"type" yaml:"type"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
}

// NewNode builds a node of the given type with its default title and
// content and an empty button list.
func NewNode(id string, t NodeType, pos Position) Node {
	title, content := t.Defaults()
	return Node{
		ID:       id,
		Type:     t,
		Position: pos,
		Data: NodeData{
			Title:   title,
			Content: content,
			Buttons: []Button{},
		},
	}
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := n
	out.Data.Buttons = slices.Clone(n.Data.Buttons)
	out.Data.QuickActions = slices.Clone(n.Data.QuickActions)
	return out
}

// Button returns the button with the given id.
func (n Node) Button(id string) (Button, bool) {
	for _, b := range n.Data.Buttons {
		if b.ID == id {
			return b, true
		}
	}
	return Button{}, false
}
