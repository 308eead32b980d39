package tui

import (
	"testing"

	"github.com/dshills/goterm"
	"github.com/stretchr/testify/assert"
)

func TestRect(t *testing.T) {
	r := Rect{X: 2, Y: 3, Width: 4, Height: 2}
	assert.True(t, r.Contains(2, 3))
	assert.True(t, r.Contains(5, 4))
	assert.False(t, r.Contains(6, 4))
	assert.False(t, r.Contains(2, 5))

	assert.True(t, r.Intersects(Rect{X: 5, Y: 4, Width: 3, Height: 3}))
	assert.False(t, r.Intersects(Rect{X: 6, Y: 3, Width: 1, Height: 1}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 5))
	assert.Equal(t, "hel…", truncate("hello", 4))
	assert.Equal(t, "h", truncate("hello", 1))
	assert.Equal(t, "", truncate("hello", 0))
	assert.Equal(t, "héll…", truncate("héllo world", 5))
}

func TestDrawBoxAndClip(t *testing.T) {
	s := NewMockScreen(10, 5)
	th := DefaultTheme()

	drawBox(s, Rect{X: 0, Y: 0, Width: 4, Height: 3}, th.Border, th.Bg, goterm.StyleNone)
	assert.Equal(t, "┌──┐", s.Line(0)[:len("┌──┐")])
	assert.Equal(t, '│', s.Rune(0, 1))
	assert.Equal(t, '┘', s.Rune(3, 2))

	c := clipped{Screen: s, r: Rect{X: 5, Y: 0, Width: 2, Height: 1}}
	drawText(c, 4, 0, 10, "abcd", th.Fg, th.Bg, goterm.StyleNone)
	assert.Equal(t, ' ', s.Rune(4, 0))
	assert.Equal(t, 'b', s.Rune(5, 0))
	assert.Equal(t, 'c', s.Rune(6, 0))
	assert.Equal(t, ' ', s.Rune(7, 0))
}

func TestStatus(t *testing.T) {
	var s Status
	s.Info("saved")
	text, isErr := s.Text()
	assert.Equal(t, "saved", text)
	assert.False(t, isErr)

	s.Error(nil)
	text, _ = s.Text()
	assert.Equal(t, "saved", text)

	s.Clear()
	text, _ = s.Text()
	assert.Empty(t, text)
}
