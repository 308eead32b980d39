package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/botflow/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBrowser(t *testing.T, svc *fakeTemplates) (*TemplateBrowser, taskQueue, *[]api.Template) {
	t.Helper()
	q := newTaskQueue()
	var opened []api.Template
	b := NewTemplateBrowser(context.Background(), svc, q.post, api.DefaultPageSize, func(tpl api.Template) {
		opened = append(opened, tpl)
	})
	return b, q, &opened
}

func TestTemplateBrowser_LoadAppliesPage(t *testing.T) {
	svc := newFakeTemplates()
	svc.pages[1] = samplePage(1, 1, 8, 10)
	b, q, _ := newTestBrowser(t, svc)

	require.NoError(t, b.Init())
	assert.True(t, b.Loading())
	q.drain(t, 1)

	assert.False(t, b.Loading())
	assert.Len(t, b.Rows(), 8)
	assert.Equal(t, 2, b.Page().Pages())
}

func TestTemplateBrowser_StaleResponseIsDropped(t *testing.T) {
	svc := newFakeTemplates()
	svc.pages[1] = samplePage(1, 1, 8, 10)
	svc.pages[2] = samplePage(2, 9, 2, 10)
	gate := make(chan struct{})
	svc.gates[1] = gate
	b, q, _ := newTestBrowser(t, svc)

	b.Load(1)
	b.Load(2)

	// Page 2 answers first.
	q.drain(t, 1)
	assert.Equal(t, 2, b.Page().Page)
	assert.False(t, b.Loading())

	// The late page 1 response must not overwrite it.
	close(gate)
	q.drain(t, 1)
	assert.Equal(t, 2, b.Page().Page)
	require.Len(t, b.Rows(), 2)
	assert.Equal(t, int64(9), b.Rows()[0].ID)
}

func TestTemplateBrowser_ErrorShowsServerMessage(t *testing.T) {
	svc := newFakeTemplates()
	svc.pages[1] = samplePage(1, 1, 3, 3)
	b, q, _ := newTestBrowser(t, svc)
	b.Load(1)
	q.drain(t, 1)

	svc.listErr = &api.ResponseError{Code: 500, Message: "Server is down"}
	b.Load(1)
	q.drain(t, 1)

	text, isErr := b.Status().Text()
	assert.True(t, isErr)
	assert.Equal(t, "Server is down", text)
	assert.Len(t, b.Rows(), 3, "previous page stays on screen")
}

func TestTemplateBrowser_Paging(t *testing.T) {
	svc := newFakeTemplates()
	svc.pages[1] = samplePage(1, 1, 8, 10)
	svc.pages[2] = samplePage(2, 9, 2, 10)
	b, q, _ := newTestBrowser(t, svc)
	b.Load(1)
	q.drain(t, 1)

	require.NoError(t, b.HandleKey(keySpecial("Right")))
	q.drain(t, 1)
	assert.Equal(t, 2, b.Page().Page)

	// Already on the last page.
	require.NoError(t, b.HandleKey(keySpecial("Right")))
	assert.False(t, b.Loading())

	require.NoError(t, b.HandleKey(keySpecial("Left")))
	q.drain(t, 1)
	assert.Equal(t, 1, b.Page().Page)
	assert.Equal(t, []int{1, 2, 1}, svc.calls)
}

func TestTemplateBrowser_SelectionAndOpen(t *testing.T) {
	svc := newFakeTemplates()
	svc.pages[1] = samplePage(1, 1, 3, 3)
	b, q, opened := newTestBrowser(t, svc)
	b.Load(1)
	q.drain(t, 1)

	require.NoError(t, b.HandleKey(keySpecial("Down")))
	require.NoError(t, b.HandleKey(keyRune('j')))
	require.NoError(t, b.HandleKey(keyRune('j')))
	sel, ok := b.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(3), sel.ID, "cursor stops at the last row")

	require.NoError(t, b.HandleMouse(press(5, tableTop)))
	require.NoError(t, b.HandleKey(keySpecial("Enter")))
	require.Len(t, *opened, 1)
	assert.Equal(t, int64(1), (*opened)[0].ID)
}

func TestTemplateBrowser_TogglePublished(t *testing.T) {
	svc := newFakeTemplates()
	svc.pages[1] = samplePage(1, 1, 2, 2)
	b, q, _ := newTestBrowser(t, svc)
	b.Load(1)
	q.drain(t, 1)

	require.NoError(t, b.HandleKey(keyRune('p')))
	q.drain(t, 1)
	assert.True(t, b.Rows()[0].Published)
	assert.True(t, svc.published["1"])

	svc.updateErr = errors.New("network unreachable")
	require.NoError(t, b.HandleKey(keyRune('p')))
	q.drain(t, 1)
	assert.True(t, b.Rows()[0].Published, "failed update leaves the row unchanged")
	text, isErr := b.Status().Text()
	assert.True(t, isErr)
	assert.Equal(t, "network unreachable", text)
}

func TestTemplateBrowser_ToggleActive(t *testing.T) {
	svc := newFakeTemplates()
	svc.pages[1] = samplePage(1, 1, 1, 1)
	b, q, _ := newTestBrowser(t, svc)
	b.Load(1)
	q.drain(t, 1)

	require.NoError(t, b.HandleKey(keyRune('a')))
	q.drain(t, 1)
	assert.True(t, b.Rows()[0].Active())
	assert.True(t, svc.active["1"])
}

func TestTemplateBrowser_Filter(t *testing.T) {
	svc := newFakeTemplates()
	svc.pages[1] = samplePage(1, 1, 5, 5)
	b, q, _ := newTestBrowser(t, svc)
	b.Load(1)
	q.drain(t, 1)

	require.NoError(t, b.HandleKey(keyRune('/')))
	for _, r := range "id > 3" {
		require.NoError(t, b.HandleKey(keyRune(r)))
	}
	require.NoError(t, b.HandleKey(keySpecial("Enter")))

	rows := b.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, int64(4), rows[0].ID)

	assert.Error(t, b.SetFilter("id >"))
	assert.Len(t, b.Rows(), 2, "invalid expression keeps the old filter")

	require.NoError(t, b.SetFilter(""))
	assert.Len(t, b.Rows(), 5)
}

func TestTemplateBrowser_Render(t *testing.T) {
	svc := newFakeTemplates()
	svc.pages[1] = samplePage(1, 1, 2, 2)
	b, q, _ := newTestBrowser(t, svc)
	b.Load(1)
	q.drain(t, 1)

	screen := NewMockScreen(120, 20)
	require.NoError(t, b.Render(screen))

	assert.Contains(t, screen.Line(0), "Bot Templates")
	assert.Contains(t, screen.Line(tableTop), "Template 1")
	assert.Contains(t, screen.Line(tableTop), "WhatsApp")
	assert.Contains(t, screen.Line(tableTop+1), "Template 2")
	assert.Contains(t, screen.Line(18), "Page 1 of 1")
}
