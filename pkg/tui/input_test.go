package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput_Keys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want KeyEvent
	}{
		{"letter", "a", KeyEvent{Key: 'a'}},
		{"upper", "Q", KeyEvent{Key: 'Q', Shift: true}},
		{"ctrl-s", "\x13", KeyEvent{Key: 's', Ctrl: true}},
		{"enter", "\r", KeyEvent{IsSpecial: true, Special: "Enter"}},
		{"tab", "\t", KeyEvent{IsSpecial: true, Special: "Tab"}},
		{"backspace", "\x7f", KeyEvent{IsSpecial: true, Special: "Backspace"}},
		{"escape", "\x1b", KeyEvent{IsSpecial: true, Special: "Escape"}},
		{"up", "\x1b[A", KeyEvent{IsSpecial: true, Special: "Up"}},
		{"left", "\x1b[D", KeyEvent{IsSpecial: true, Special: "Left"}},
		{"delete", "\x1b[3~", KeyEvent{IsSpecial: true, Special: "Delete"}},
		{"page down", "\x1b[6~", KeyEvent{IsSpecial: true, Special: "PageDown"}},
		{"alt-x", "\x1bx", KeyEvent{Key: 'x', Alt: true}},
		{"utf8", "é", KeyEvent{Key: 'é'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseInput([]byte(tt.in))
			require.Len(t, got, 1)
			require.NotNil(t, got[0].Key)
			assert.Equal(t, tt.want, *got[0].Key)
		})
	}
}

func TestParseInput_SGRMouse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want MouseEvent
	}{
		{"left press", "\x1b[<0;10;5M", MouseEvent{X: 9, Y: 4, Button: 0, Action: MousePress}},
		{"left release", "\x1b[<0;10;5m", MouseEvent{X: 9, Y: 4, Button: 0, Action: MouseRelease}},
		{"drag motion", "\x1b[<32;12;6M", MouseEvent{X: 11, Y: 5, Button: 0, Action: MouseMotion}},
		{"right press", "\x1b[<2;1;1M", MouseEvent{X: 0, Y: 0, Button: 2, Action: MousePress}},
		{"wheel up", "\x1b[<64;3;3M", MouseEvent{X: 2, Y: 2, Action: MouseWheelUp}},
		{"wheel down", "\x1b[<65;3;3M", MouseEvent{X: 2, Y: 2, Action: MouseWheelDown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseInput([]byte(tt.in))
			require.Len(t, got, 1)
			require.NotNil(t, got[0].Mouse)
			assert.Equal(t, tt.want, *got[0].Mouse)
		})
	}
}

func TestParseInput_Burst(t *testing.T) {
	got := ParseInput([]byte("\x1b[<0;5;5M\x1b[<32;6;5M\x1b[<32;7;5M\x1b[<0;7;5mq"))
	require.Len(t, got, 5)

	assert.Equal(t, MousePress, got[0].Mouse.Action)
	assert.Equal(t, MouseMotion, got[1].Mouse.Action)
	assert.Equal(t, 6, got[2].Mouse.X)
	assert.Equal(t, MouseRelease, got[3].Mouse.Action)
	assert.Equal(t, 'q', got[4].Key.Key)
}

func TestParseInput_Malformed(t *testing.T) {
	assert.Empty(t, ParseInput([]byte("\x1b[<0;x;5M")))
	assert.Empty(t, ParseInput(nil))
}
