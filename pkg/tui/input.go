package tui

import (
	"strconv"
	"unicode/utf8"
)

// KeyEvent represents a keyboard input event
type KeyEvent struct {
	Key       rune   // The character pressed
	Ctrl      bool   // Ctrl modifier
	Shift     bool   // Shift modifier
	Alt       bool   // Alt modifier
	IsSpecial bool   // Whether this is a special key
	Special   string // Special key name (Enter, Escape, Tab, etc.)
}

// Is reports whether the event is the named special key.
func (k KeyEvent) Is(special string) bool {
	return k.IsSpecial && k.Special == special
}

// MouseAction is what a mouse report describes.
type MouseAction int

const (
	MousePress MouseAction = iota
	MouseRelease
	MouseMotion
	MouseWheelUp
	MouseWheelDown
)

// MouseEvent is a decoded SGR mouse report. X and Y are zero-based cells.
type MouseEvent struct {
	X      int
	Y      int
	Button int // 0 left, 1 middle, 2 right
	Action MouseAction
}

// Input is one decoded terminal input: either a key or a mouse report.
type Input struct {
	Key   *KeyEvent
	Mouse *MouseEvent
}

// Escape sequences that switch SGR mouse reporting with drag motion on
// and off.
const (
	mouseOn  = "\x1b[?1002h\x1b[?1006h"
	mouseOff = "\x1b[?1006l\x1b[?1002l"
)

// ParseInput decodes a raw read from the terminal. A single read may carry
// several events, e.g. a burst of mouse motion reports.
func ParseInput(buf []byte) []Input {
	var out []Input
	for len(buf) > 0 {
		in, n := parseOne(buf)
		if n <= 0 {
			n = 1
		}
		buf = buf[n:]
		if in.Key != nil || in.Mouse != nil {
			out = append(out, in)
		}
	}
	return out
}

func key(k KeyEvent) Input { return Input{Key: &k} }

func special(name string) Input { return key(KeyEvent{IsSpecial: true, Special: name}) }

func parseOne(buf []byte) (Input, int) {
	if buf[0] == 27 {
		return parseEscape(buf)
	}

	switch buf[0] {
	case 9:
		return special("Tab"), 1
	case 13, 10:
		return special("Enter"), 1
	case 127, 8:
		return special("Backspace"), 1
	}

	if buf[0] < 32 {
		return key(KeyEvent{Key: rune(buf[0] + 'a' - 1), Ctrl: true}), 1
	}

	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError && size <= 1 {
		return Input{}, 1
	}
	return key(KeyEvent{Key: r, Shift: r >= 'A' && r <= 'Z'}), size
}

func parseEscape(buf []byte) (Input, int) {
	if len(buf) == 1 {
		return special("Escape"), 1
	}
	if buf[1] != '[' {
		// Alt+key arrives as ESC followed by the key.
		r, size := utf8.DecodeRune(buf[1:])
		if r == utf8.RuneError || r == 27 {
			return special("Escape"), 1
		}
		return key(KeyEvent{Key: r, Alt: true}), 1 + size
	}
	if len(buf) < 3 {
		return special("Escape"), len(buf)
	}

	if buf[2] == '<' {
		if ev, n, ok := parseSGRMouse(buf); ok {
			return Input{Mouse: &ev}, n
		}
		return Input{}, len(buf)
	}

	switch buf[2] {
	case 'A':
		return special("Up"), 3
	case 'B':
		return special("Down"), 3
	case 'C':
		return special("Right"), 3
	case 'D':
		return special("Left"), 3
	case 'H':
		return special("Home"), 3
	case 'F':
		return special("End"), 3
	case 'Z':
		return special("BackTab"), 3
	}

	// ESC [ n ~
	end := 2
	for end < len(buf) && buf[end] >= '0' && buf[end] <= '9' {
		end++
	}
	if end < len(buf) && buf[end] == '~' {
		switch string(buf[2:end]) {
		case "3":
			return special("Delete"), end + 1
		case "5":
			return special("PageUp"), end + 1
		case "6":
			return special("PageDown"), end + 1
		}
		return Input{}, end + 1
	}
	return special("Escape"), 1
}

// parseSGRMouse decodes ESC [ < b ; x ; y (M|m).
func parseSGRMouse(buf []byte) (MouseEvent, int, bool) {
	var fields [3]int
	field := 0
	start := 3
	for i := 3; i < len(buf); i++ {
		c := buf[i]
		switch {
		case c >= '0' && c <= '9':
			continue
		case c == ';' || c == 'M' || c == 'm':
			if field > 2 {
				return MouseEvent{}, 0, false
			}
			v, err := strconv.Atoi(string(buf[start:i]))
			if err != nil {
				return MouseEvent{}, 0, false
			}
			fields[field] = v
			field++
			start = i + 1
			if c == ';' {
				continue
			}
			if field != 3 {
				return MouseEvent{}, 0, false
			}
			return decodeMouse(fields[0], fields[1], fields[2], c == 'm'), i + 1, true
		default:
			return MouseEvent{}, 0, false
		}
	}
	return MouseEvent{}, 0, false
}

func decodeMouse(b, x, y int, release bool) MouseEvent {
	ev := MouseEvent{X: x - 1, Y: y - 1, Button: b & 3}
	switch {
	case b&64 != 0:
		ev.Button = 0
		if b&1 == 0 {
			ev.Action = MouseWheelUp
		} else {
			ev.Action = MouseWheelDown
		}
	case release:
		ev.Action = MouseRelease
	case b&32 != 0:
		ev.Action = MouseMotion
	default:
		ev.Action = MousePress
	}
	return ev
}
