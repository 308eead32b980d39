package tui

import (
	"errors"
	"log/slog"

	"github.com/dshills/botflow/pkg/api"
	boterrors "github.com/dshills/botflow/pkg/errors"
	"github.com/dshills/goterm"
)

// Status is the one-line message shown at the bottom of every view.
type Status struct {
	text  string
	isErr bool
}

// Info shows a plain message.
func (s *Status) Info(text string) {
	s.text, s.isErr = text, false
}

// Error shows err. API errors show the server's message only.
func (s *Status) Error(err error) {
	if err == nil {
		return
	}
	var re *api.ResponseError
	if errors.As(err, &re) {
		s.text = re.Message
	} else {
		s.text = err.Error()
	}
	s.isErr = true
}

// Clear removes the message.
func (s *Status) Clear() {
	s.text, s.isErr = "", false
}

// Text returns the message and whether it is an error.
func (s *Status) Text() (string, bool) {
	return s.text, s.isErr
}

func (s *Status) render(screen Screen, y, width int, theme Theme, help string) {
	fill(screen, Rect{X: 0, Y: y, Width: width, Height: 1}, ' ', theme.Fg, theme.Bg)
	if s.text != "" {
		fg := theme.OK
		if s.isErr {
			fg = theme.Error
		}
		drawText(screen, 1, y, width-2, s.text, fg, theme.Bg, goterm.StyleBold)
		return
	}
	drawText(screen, 1, y, width-2, help, theme.Muted, theme.Bg, goterm.StyleDim)
}

// logFailure logs err at warn level, spreading operational context into
// separate attributes when the error carries it.
func logFailure(logger *slog.Logger, msg string, err error) {
	var oe *boterrors.OperationalError
	if errors.As(err, &oe) {
		logger.Warn(msg, append(oe.LogAttrs(), "err", oe.Cause)...)
		return
	}
	logger.Warn(msg, "err", err)
}
