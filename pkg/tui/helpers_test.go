package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/botflow/pkg/api"
	"github.com/dshills/botflow/pkg/flow"
	"github.com/dshills/botflow/pkg/storage"
	"github.com/dshills/goterm"
)

// MockScreen records cells in memory.
type MockScreen struct {
	width, height int
	cells         map[[2]int]goterm.Cell
}

func NewMockScreen(width, height int) *MockScreen {
	return &MockScreen{width: width, height: height, cells: make(map[[2]int]goterm.Cell)}
}

func (m *MockScreen) Size() (int, int) { return m.width, m.height }

func (m *MockScreen) Clear() { m.cells = make(map[[2]int]goterm.Cell) }

func (m *MockScreen) Show() error { return nil }

func (m *MockScreen) SetCell(x, y int, cell goterm.Cell) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	m.cells[[2]int{x, y}] = cell
}

func (m *MockScreen) DrawText(x, y int, text string, fg, bg goterm.Color, style goterm.Style) {
	i := 0
	for _, ch := range text {
		m.SetCell(x+i, y, goterm.NewCell(ch, fg, bg, style))
		i++
	}
}

// Rune returns the character at a cell, or a space.
func (m *MockScreen) Rune(x, y int) rune {
	if c, ok := m.cells[[2]int{x, y}]; ok && c.Ch != 0 {
		return c.Ch
	}
	return ' '
}

// Line returns row y as a string.
func (m *MockScreen) Line(y int) string {
	var sb strings.Builder
	for x := 0; x < m.width; x++ {
		sb.WriteRune(m.Rune(x, y))
	}
	return sb.String()
}

// Text returns the whole screen.
func (m *MockScreen) Text() string {
	lines := make([]string, m.height)
	for y := range lines {
		lines[y] = m.Line(y)
	}
	return strings.Join(lines, "\n")
}

// taskQueue stands in for the event loop: background work posts into it
// and the test runs the callbacks.
type taskQueue chan func()

func newTaskQueue() taskQueue { return make(taskQueue, 32) }

func (q taskQueue) post(f func()) { q <- f }

// drain runs n posted callbacks, failing if they do not arrive in time.
func (q taskQueue) drain(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case f := <-q:
			f()
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for task %d of %d", i+1, n)
		}
	}
}

type fakeTemplates struct {
	mu        sync.Mutex
	pages     map[int]api.TemplatePage
	gates     map[int]chan struct{}
	templates map[string]api.Template
	// opens holds GetTemplate until closed, like a slow server that
	// ignores cancellation.
	opens     map[string]chan struct{}
	flows     map[string][]api.BotFlow
	flowsErr  error
	listErr   error
	updateErr error
	published map[string]bool
	active    map[string]bool
	calls     []int
}

func newFakeTemplates() *fakeTemplates {
	return &fakeTemplates{
		pages:     make(map[int]api.TemplatePage),
		gates:     make(map[int]chan struct{}),
		templates: make(map[string]api.Template),
		opens:     make(map[string]chan struct{}),
		flows:     make(map[string][]api.BotFlow),
		published: make(map[string]bool),
		active:    make(map[string]bool),
	}
}

func (f *fakeTemplates) ListTemplates(_ context.Context, page, limit int) (api.TemplatePage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, page)
	gate := f.gates[page]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return api.TemplatePage{}, f.listErr
	}
	p, ok := f.pages[page]
	if !ok {
		return api.TemplatePage{Page: page, Limit: limit}, nil
	}
	return p, nil
}

func (f *fakeTemplates) GetTemplate(_ context.Context, id string) (api.Template, error) {
	f.mu.Lock()
	gate := f.opens[id]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.templates[id]
	if !ok {
		return api.Template{}, &api.ResponseError{Code: 404, Message: "Template not found"}
	}
	return t, nil
}

func (f *fakeTemplates) ListBotFlows(_ context.Context, templateID string) ([]api.BotFlow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flowsErr != nil {
		return nil, f.flowsErr
	}
	return f.flows[templateID], nil
}

func (f *fakeTemplates) SetPublished(_ context.Context, id string, published bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.published[id] = published
	return nil
}

func (f *fakeTemplates) SetActive(_ context.Context, id string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.active[id] = active
	return nil
}

// samplePage builds page n with count templates numbered from start.
func samplePage(n, start, count, total int) api.TemplatePage {
	p := api.TemplatePage{Page: n, Limit: api.DefaultPageSize, Total: total}
	for i := 0; i < count; i++ {
		id := int64(start + i)
		p.Templates = append(p.Templates, api.Template{
			ID:      id,
			Name:    fmt.Sprintf("Template %d", id),
			MediaID: 4,
		})
	}
	return p
}

type fakeDrafts struct {
	mu     sync.Mutex
	drafts map[string]storage.Draft
	err    error
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{drafts: make(map[string]storage.Draft)}
}

func (f *fakeDrafts) Save(_ context.Context, id string, g flow.Graph) (storage.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return storage.Draft{}, f.err
	}
	d := storage.Draft{TemplateID: id, Graph: g, SavedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	f.drafts[id] = d
	return d, nil
}

func (f *fakeDrafts) Load(_ context.Context, id string) (storage.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[id]
	if !ok {
		return storage.Draft{}, storage.ErrNotFound
	}
	return d, nil
}

func (f *fakeDrafts) saved(id string) (storage.Draft, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[id]
	return d, ok
}

func keyRune(r rune) KeyEvent { return KeyEvent{Key: r} }

func keySpecial(name string) KeyEvent { return KeyEvent{IsSpecial: true, Special: name} }

func press(x, y int) MouseEvent { return MouseEvent{X: x, Y: y, Action: MousePress} }

func rightPress(x, y int) MouseEvent {
	return MouseEvent{X: x, Y: y, Button: 2, Action: MousePress}
}

func motion(x, y int) MouseEvent { return MouseEvent{X: x, Y: y, Action: MouseMotion} }

func release(x, y int) MouseEvent { return MouseEvent{X: x, Y: y, Action: MouseRelease} }
