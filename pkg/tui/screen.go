package tui

import (
	"github.com/dshills/goterm"
)

// Screen is the subset of *goterm.Screen the views draw on.
type Screen interface {
	Size() (width, height int)
	Clear()
	Show() error
	SetCell(x, y int, cell goterm.Cell)
	DrawText(x, y int, text string, fg, bg goterm.Color, style goterm.Style)
}

// Rect is a rectangular region of terminal cells.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains checks if a cell is within the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width &&
		y >= r.Y && y < r.Y+r.Height
}

// Intersects checks if two rectangles overlap.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// Theme holds the colors used across views.
type Theme struct {
	Fg         goterm.Color
	Bg         goterm.Color
	Muted      goterm.Color
	Accent     goterm.Color
	SelectedFg goterm.Color
	SelectedBg goterm.Color
	Border     goterm.Color
	Curve      goterm.Color
	Error      goterm.Color
	OK         goterm.Color
}

// DefaultTheme returns the standard color scheme.
func DefaultTheme() Theme {
	return Theme{
		Fg:         goterm.ColorRGB(220, 220, 220),
		Bg:         goterm.ColorDefault(),
		Muted:      goterm.ColorRGB(120, 120, 120),
		Accent:     goterm.ColorRGB(100, 200, 255),
		SelectedFg: goterm.ColorRGB(0, 0, 0),
		SelectedBg: goterm.ColorRGB(100, 200, 255),
		Border:     goterm.ColorRGB(90, 90, 110),
		Curve:      goterm.ColorRGB(150, 150, 200),
		Error:      goterm.ColorRGB(255, 90, 90),
		OK:         goterm.ColorRGB(90, 200, 120),
	}
}

// drawText writes text clipped to width cells. It returns the number of
// cells written.
func drawText(s Screen, x, y, width int, text string, fg, bg goterm.Color, style goterm.Style) int {
	if width <= 0 {
		return 0
	}
	n := 0
	for _, ch := range text {
		if n >= width {
			break
		}
		if ch == '\n' || ch == '\t' {
			ch = ' '
		}
		s.SetCell(x+n, y, goterm.NewCell(ch, fg, bg, style))
		n++
	}
	return n
}

// fill paints every cell of r with ch.
func fill(s Screen, r Rect, ch rune, fg, bg goterm.Color) {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			s.SetCell(x, y, goterm.NewCell(ch, fg, bg, goterm.StyleNone))
		}
	}
}

// drawBox draws a single-line border around r.
func drawBox(s Screen, r Rect, fg, bg goterm.Color, style goterm.Style) {
	if r.Width < 2 || r.Height < 2 {
		return
	}
	right := r.X + r.Width - 1
	bottom := r.Y + r.Height - 1

	s.SetCell(r.X, r.Y, goterm.NewCell('┌', fg, bg, style))
	s.SetCell(right, r.Y, goterm.NewCell('┐', fg, bg, style))
	s.SetCell(r.X, bottom, goterm.NewCell('└', fg, bg, style))
	s.SetCell(right, bottom, goterm.NewCell('┘', fg, bg, style))

	for x := r.X + 1; x < right; x++ {
		s.SetCell(x, r.Y, goterm.NewCell('─', fg, bg, style))
		s.SetCell(x, bottom, goterm.NewCell('─', fg, bg, style))
	}
	for y := r.Y + 1; y < bottom; y++ {
		s.SetCell(r.X, y, goterm.NewCell('│', fg, bg, style))
		s.SetCell(right, y, goterm.NewCell('│', fg, bg, style))
	}
}

// truncate shortens text to width runes, marking the cut with an ellipsis.
func truncate(text string, width int) string {
	r := []rune(text)
	if len(r) <= width {
		return text
	}
	if width <= 1 {
		return string(r[:max(width, 0)])
	}
	return string(r[:width-1]) + "…"
}

// firstLine returns text up to the first newline.
func firstLine(text string) string {
	for i, ch := range text {
		if ch == '\n' {
			return text[:i]
		}
	}
	return text
}
