package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dshills/botflow/internal/logging"
	"github.com/dshills/botflow/pkg/api"
	"github.com/dshills/botflow/pkg/flow"
	"github.com/dshills/botflow/pkg/storage"
	"github.com/dshills/goterm"
)

// Config wires the application to its services.
type Config struct {
	Templates TemplateService
	Drafts    DraftStore // optional
	PageSize  int
	Logger    *slog.Logger
}

// App represents the TUI application root
type App struct {
	screen      Screen
	closeScreen func() error
	in          io.Reader
	out         io.Writer

	viewManager *ViewManager
	browser     *TemplateBrowser
	builder     *BuilderView
	svc         TemplateService
	drafts      DraftStore
	logger      *slog.Logger
	// opens orders template opens so a slow response cannot replace the
	// template opened after it.
	opens api.Latest

	ctx       context.Context
	cancel    context.CancelFunc
	inputChan chan Input
	tasks     chan func()
}

// NewApp initializes the terminal and creates the application.
func NewApp(cfg Config) (*App, error) {
	screen, err := goterm.Init()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	app, err := newApp(screen, os.Stdin, os.Stdout, cfg)
	if err != nil {
		_ = screen.Close()
		return nil, err
	}
	app.closeScreen = screen.Close
	return app, nil
}

func newApp(screen Screen, in io.Reader, out io.Writer, cfg Config) (*App, error) {
	if cfg.Templates == nil {
		return nil, errors.New("tui: no template service")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		screen:      screen,
		in:          in,
		out:         out,
		viewManager: NewViewManager(),
		svc:         cfg.Templates,
		drafts:      cfg.Drafts,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		inputChan:   make(chan Input, 100),
		tasks:       make(chan func(), 100),
	}

	a.browser = NewTemplateBrowser(ctx, cfg.Templates, a.post, cfg.PageSize, func(t api.Template) {
		a.OpenTemplate(strconv.FormatInt(t.ID, 10))
	})
	a.browser.logger = logger

	opts := []BuilderOption{WithBuilderLogger(logger)}
	if cfg.Drafts != nil {
		opts = append(opts, WithDrafts(cfg.Drafts))
	}
	a.builder = NewBuilderView(ctx, a.post, a.backToTemplates, opts...)

	for _, v := range []View{a.browser, a.builder} {
		if err := a.viewManager.RegisterView(v); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to register views: %w", err)
		}
	}
	return a, nil
}

// post queues f for the event loop. It gives up once the app is closing.
func (a *App) post(f func()) {
	select {
	case a.tasks <- f:
	case <-a.ctx.Done():
	}
}

func (a *App) backToTemplates() {
	if err := a.viewManager.SwitchTo(a.browser.Name()); err != nil {
		a.logger.Error("switching to template list", "err", err)
	}
}

// OpenTemplate fetches a template and its bot flows and opens it in the
// builder. A locally saved draft replaces the server's graph. Opening
// another template before the response arrives discards this one.
func (a *App) OpenTemplate(id string) {
	a.browser.Status().Info("Opening template " + id + "…")
	ticket := a.opens.Begin(a.ctx)
	go func() {
		ctx := ticket.Context()
		t, err := a.svc.GetTemplate(ctx, id)
		var (
			draft    *storage.Draft
			flows    []api.BotFlow
			flowsErr error
		)
		if err == nil {
			if a.drafts != nil {
				d, derr := a.drafts.Load(ctx, id)
				switch {
				case derr == nil:
					draft = &d
				case !errors.Is(derr, storage.ErrNotFound):
					logFailure(a.logger, "loading draft failed", derr)
				}
			}
			flows, flowsErr = a.svc.ListBotFlows(ctx, id)
			if flowsErr != nil {
				a.logger.Warn("loading bot flows failed", "template", id, "err", flowsErr)
			}
		}
		a.post(func() {
			if !ticket.Done() {
				a.logger.Debug("dropping superseded template", "template", id)
				return
			}
			if err != nil {
				a.browser.Status().Error(err)
				return
			}
			a.browser.Status().Clear()

			var g *flow.Graph
			if draft != nil {
				g = &draft.Graph
			}
			a.builder.Open(id, t.Name, templateGraph(t, g))
			a.builder.SetFlows(flows, flowsErr)
			if draft != nil {
				a.builder.Status().Info("Loaded draft saved " + draft.SavedAt.Local().Format(time.DateTime))
			}
			if err := a.viewManager.SwitchTo(a.builder.Name()); err != nil {
				a.browser.Status().Error(err)
			}
		})
	}()
}

// Run starts the event loop on the template list, or directly in the
// builder when templateID is set. It returns when the user quits or ctx
// is cancelled.
func (a *App) Run(ctx context.Context, templateID string) error {
	stop := context.AfterFunc(ctx, a.cancel)
	defer stop()

	if err := a.viewManager.SwitchTo(a.browser.Name()); err != nil {
		return err
	}
	if templateID != "" {
		a.OpenTemplate(templateID)
	}

	if a.out != nil {
		_, _ = io.WriteString(a.out, mouseOn)
		defer func() { _, _ = io.WriteString(a.out, mouseOff) }()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go a.readInput()

	// Render loop targeting 60 FPS (16ms frame time)
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	if err := a.render(); err != nil {
		return fmt.Errorf("initial render failed: %w", err)
	}

	for {
		select {
		case <-a.ctx.Done():
			return nil
		case <-sigChan:
			a.cancel()
			return nil
		case in := <-a.inputChan:
			if err := a.handleInput(in); err != nil {
				return err
			}
		case f := <-a.tasks:
			f()
		case <-ticker.C:
			if err := a.render(); err != nil {
				return err
			}
		}
	}
}

// handleInput routes one input to the active view. Ctrl+C quits from
// anywhere; q quits from the template list.
func (a *App) handleInput(in Input) error {
	view := a.viewManager.GetCurrentView()
	if in.Key != nil {
		k := *in.Key
		if k.Ctrl && k.Key == 'c' {
			a.cancel()
			return nil
		}
		if view == a.browser && k.Key == 'q' && !a.browser.filterEdit {
			a.cancel()
			return nil
		}
		if view != nil {
			if err := view.HandleKey(k); err != nil {
				return fmt.Errorf("view key handler error: %w", err)
			}
		}
	}
	if in.Mouse != nil && view != nil {
		if err := view.HandleMouse(*in.Mouse); err != nil {
			return fmt.Errorf("view mouse handler error: %w", err)
		}
	}
	return nil
}

func (a *App) render() error {
	a.screen.Clear()
	if view := a.viewManager.GetCurrentView(); view != nil {
		if err := view.Render(a.screen); err != nil {
			return fmt.Errorf("view render failed: %w", err)
		}
	}
	if err := a.screen.Show(); err != nil {
		return fmt.Errorf("screen show failed: %w", err)
	}
	return nil
}

// readInput reads raw terminal input in a background goroutine.
func (a *App) readInput() {
	buf := make([]byte, 256)
	for {
		n, err := a.in.Read(buf)
		if n > 0 {
			for _, in := range ParseInput(buf[:n]) {
				select {
				case a.inputChan <- in:
				case <-a.ctx.Done():
					return
				}
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				a.logger.Debug("input read failed", "err", err)
			}
			return
		}
		if a.ctx.Err() != nil {
			return
		}
	}
}

// Close performs cleanup and restores terminal state
func (a *App) Close() error {
	a.cancel()
	if err := a.viewManager.Shutdown(); err != nil {
		a.logger.Warn("view shutdown", "err", err)
	}
	if a.closeScreen != nil {
		if err := a.closeScreen(); err != nil {
			return fmt.Errorf("failed to close screen: %w", err)
		}
	}
	return nil
}
