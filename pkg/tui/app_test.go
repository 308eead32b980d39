package tui

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/dshills/botflow/pkg/api"
	"github.com/dshills/botflow/pkg/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, svc *fakeTemplates, drafts *fakeDrafts) (*App, *io.PipeWriter) {
	t.Helper()
	r, w := io.Pipe()
	cfg := Config{Templates: svc}
	if drafts != nil {
		cfg.Drafts = drafts
	}
	a, err := newApp(NewMockScreen(120, 40), r, nil, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = w.Close()
		_ = a.Close()
	})
	return a, w
}

// runTasks executes n callbacks posted to the app's event loop.
func runTasks(t *testing.T, a *App, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case f := <-a.tasks:
			f()
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for task %d of %d", i+1, n)
		}
	}
}

func welcomeTemplate() api.Template {
	g := welcomeGraph()
	return api.Template{ID: 1, Name: "Welcome flow", MediaID: 4, Nodes: g.Nodes, Connections: g.Connections}
}

func TestNewApp_RequiresTemplateService(t *testing.T) {
	_, err := newApp(NewMockScreen(80, 24), nil, nil, Config{})
	assert.Error(t, err)
}

func TestApp_OpenTemplate(t *testing.T) {
	svc := newFakeTemplates()
	svc.templates["1"] = welcomeTemplate()
	a, _ := newTestApp(t, svc, newFakeDrafts())

	require.NoError(t, a.viewManager.SwitchTo("templates"))
	runTasks(t, a, 1)

	a.OpenTemplate("1")
	runTasks(t, a, 1)

	assert.Equal(t, "builder", a.viewManager.GetCurrentView().Name())
	g := a.builder.Builder().Graph()
	assert.Len(t, g.Nodes, 2)
	assert.Len(t, g.Connections, 1)
}

func TestApp_OpenTemplatePrefersDraft(t *testing.T) {
	svc := newFakeTemplates()
	svc.templates["1"] = welcomeTemplate()
	drafts := newFakeDrafts()
	_, err := drafts.Save(context.Background(), "1", flow.Graph{
		Nodes: []flow.Node{flow.NewNode("draft", flow.NodeChatbot, flow.Position{})},
	})
	require.NoError(t, err)
	a, _ := newTestApp(t, svc, drafts)

	a.OpenTemplate("1")
	runTasks(t, a, 1)

	g := a.builder.Builder().Graph()
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "draft", g.Nodes[0].ID)
	text, _ := a.builder.Status().Text()
	assert.Contains(t, text, "Loaded draft")
}

func TestApp_OpenTemplateNotFound(t *testing.T) {
	a, _ := newTestApp(t, newFakeTemplates(), nil)
	require.NoError(t, a.viewManager.SwitchTo("templates"))
	runTasks(t, a, 1)

	a.OpenTemplate("42")
	runTasks(t, a, 1)

	assert.Equal(t, "templates", a.viewManager.GetCurrentView().Name())
	text, isErr := a.browser.Status().Text()
	assert.True(t, isErr)
	assert.Equal(t, "Template not found", text)
}

func TestApp_SupersededOpenIsDropped(t *testing.T) {
	svc := newFakeTemplates()
	svc.templates["1"] = welcomeTemplate()
	svc.templates["2"] = api.Template{ID: 2, Name: "Support flow", Nodes: []flow.Node{
		flow.NewNode("support", flow.NodeChatbot, flow.Position{X: 50, Y: 50}),
	}}
	slow := make(chan struct{})
	svc.opens["1"] = slow
	a, _ := newTestApp(t, svc, nil)

	a.OpenTemplate("1")
	a.OpenTemplate("2")
	runTasks(t, a, 1)
	require.Equal(t, "2", a.builder.templateID)

	a.builder.Builder().AddNode(flow.NodeHello, flow.Position{X: 200, Y: 200})

	close(slow)
	runTasks(t, a, 1)

	assert.Equal(t, "2", a.builder.templateID)
	assert.Equal(t, "Support flow", a.builder.templateName)
	g := a.builder.Builder().Graph()
	require.Len(t, g.Nodes, 2, "the edit survives the late response")
	assert.Equal(t, "support", g.Nodes[0].ID)
}

func TestApp_OpenTemplateLoadsBotFlows(t *testing.T) {
	svc := newFakeTemplates()
	svc.templates["1"] = welcomeTemplate()
	svc.flows["1"] = []api.BotFlow{
		{ID: 11, BotTemplateID: 1, BotFlowType: "greeting", IsInitial: 1, IsActive: 1, TotalBotDialogs: 3},
		{ID: 12, BotTemplateID: 1, BotFlowType: "handoff", IsActive: 1},
	}
	a, _ := newTestApp(t, svc, nil)

	a.OpenTemplate("1")
	runTasks(t, a, 1)

	assert.True(t, a.builder.flowsLoaded)
	assert.NoError(t, a.builder.flowsErr)
	require.Len(t, a.builder.flows, 2)
	assert.Equal(t, "greeting", a.builder.flows[0].BotFlowType)
}

func TestApp_BotFlowFailureStillOpens(t *testing.T) {
	svc := newFakeTemplates()
	svc.templates["1"] = welcomeTemplate()
	svc.flowsErr = &api.ResponseError{Code: 500, Message: "boom"}
	a, _ := newTestApp(t, svc, nil)

	a.OpenTemplate("1")
	runTasks(t, a, 1)

	assert.Equal(t, "builder", a.viewManager.GetCurrentView().Name())
	assert.Error(t, a.builder.flowsErr)
	assert.Len(t, a.builder.Builder().Graph().Nodes, 2)
}

func TestApp_BackReturnsToTemplates(t *testing.T) {
	svc := newFakeTemplates()
	svc.templates["1"] = welcomeTemplate()
	a, _ := newTestApp(t, svc, nil)
	require.NoError(t, a.viewManager.SwitchTo("templates"))
	runTasks(t, a, 1)
	a.OpenTemplate("1")
	runTasks(t, a, 1)

	require.NoError(t, a.handleInput(Input{Key: &KeyEvent{Key: 'b'}}))
	assert.Equal(t, "templates", a.viewManager.GetCurrentView().Name())
}

func TestApp_CtrlCQuits(t *testing.T) {
	a, _ := newTestApp(t, newFakeTemplates(), nil)
	require.NoError(t, a.handleInput(Input{Key: &KeyEvent{Key: 'c', Ctrl: true}}))
	assert.Error(t, a.ctx.Err())
}

func TestApp_RunQuitsOnQ(t *testing.T) {
	svc := newFakeTemplates()
	svc.pages[1] = samplePage(1, 1, 3, 3)
	a, w := newTestApp(t, svc, nil)

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background(), "") }()

	_, err := w.Write([]byte("q"))
	require.NoError(t, err)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after q")
	}
}

func TestApp_RunStopsWithContext(t *testing.T) {
	a, _ := newTestApp(t, newFakeTemplates(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, "") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
