package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dshills/botflow/internal/logging"
	"github.com/dshills/botflow/pkg/api"
	"github.com/dshills/botflow/pkg/flow"
	"github.com/dshills/goterm"
)

// TemplateService is the slice of the API client the views use.
type TemplateService interface {
	ListTemplates(ctx context.Context, page, limit int) (api.TemplatePage, error)
	GetTemplate(ctx context.Context, id string) (api.Template, error)
	ListBotFlows(ctx context.Context, templateID string) ([]api.BotFlow, error)
	SetPublished(ctx context.Context, id string, published bool) error
	SetActive(ctx context.Context, id string, active bool) error
}

// Post runs f on the UI goroutine. Background requests hand their results
// back through it so view state is only touched from the event loop.
type Post func(f func())

const browserHelp = "↑/↓ select  ←/→ page  enter edit  p publish  a active  / filter  r reload  q quit"

// TemplateBrowser lists bot templates page by page.
type TemplateBrowser struct {
	svc    TemplateService
	post   Post
	ctx    context.Context
	logger *slog.Logger
	theme  Theme

	latest  api.Latest
	limit   int
	page    api.TemplatePage
	loading bool
	cursor  int

	filter     string
	filtered   []api.Template
	filterEdit bool
	filterBuf  []rune

	status Status
	onOpen func(api.Template)
}

// NewTemplateBrowser creates the browser. onOpen runs when the user
// picks a template to edit.
func NewTemplateBrowser(ctx context.Context, svc TemplateService, post Post, limit int, onOpen func(api.Template)) *TemplateBrowser {
	if limit <= 0 {
		limit = api.DefaultPageSize
	}
	return &TemplateBrowser{
		svc:    svc,
		post:   post,
		ctx:    ctx,
		logger: logging.NewNop(),
		theme:  DefaultTheme(),
		limit:  limit,
		page:   api.TemplatePage{Page: 1, Limit: limit},
		onOpen: onOpen,
	}
}

// Name implements View.
func (b *TemplateBrowser) Name() string { return "templates" }

// Init reloads the current page.
func (b *TemplateBrowser) Init() error {
	b.Load(max(b.page.Page, 1))
	return nil
}

// Cleanup implements View.
func (b *TemplateBrowser) Cleanup() error { return nil }

// Status returns the browser's status line.
func (b *TemplateBrowser) Status() *Status { return &b.status }

// Page returns the page currently shown.
func (b *TemplateBrowser) Page() api.TemplatePage { return b.page }

// Loading reports whether a page request is in flight.
func (b *TemplateBrowser) Loading() bool { return b.loading }

// Load requests a page. A newer Load supersedes any request still in
// flight, whose response is then dropped when it arrives.
func (b *TemplateBrowser) Load(page int) {
	ticket := b.latest.Begin(b.ctx)
	b.loading = true
	limit := b.limit

	go func() {
		result, err := b.svc.ListTemplates(ticket.Context(), page, limit)
		b.post(func() {
			if !ticket.Done() {
				b.logger.Debug("dropping stale template page", "page", page)
				return
			}
			b.loading = false
			if err != nil {
				b.status.Error(err)
				return
			}
			b.page = result
			b.applyFilter()
		})
	}()
}

// Rows returns the templates on screen after filtering.
func (b *TemplateBrowser) Rows() []api.Template {
	if b.filter == "" {
		return b.page.Templates
	}
	return b.filtered
}

// Selected returns the highlighted template.
func (b *TemplateBrowser) Selected() (api.Template, bool) {
	rows := b.Rows()
	if b.cursor < 0 || b.cursor >= len(rows) {
		return api.Template{}, false
	}
	return rows[b.cursor], true
}

// SetFilter restricts the rows to templates matching an expr expression.
// An invalid expression leaves the current filter in place.
func (b *TemplateBrowser) SetFilter(where string) error {
	if where != "" {
		if _, err := api.CompileFilter(where); err != nil {
			return err
		}
	}
	b.filter = where
	b.applyFilter()
	return nil
}

func (b *TemplateBrowser) applyFilter() {
	b.filtered = nil
	if b.filter != "" {
		rows, err := api.FilterTemplates(b.page.Templates, b.filter)
		if err != nil {
			b.status.Error(err)
		}
		b.filtered = rows
	}
	b.cursor = min(b.cursor, max(len(b.Rows())-1, 0))
}

// TogglePublished flips the published flag of the selected template. The
// row changes only once the server has accepted the update.
func (b *TemplateBrowser) TogglePublished() {
	t, ok := b.Selected()
	if !ok {
		return
	}
	id := strconv.FormatInt(t.ID, 10)
	want := !t.Published
	go func() {
		err := b.svc.SetPublished(b.ctx, id, want)
		b.post(func() {
			if err != nil {
				b.status.Error(err)
				return
			}
			b.updateRow(t.ID, func(t *api.Template) { t.Published = want })
			if want {
				b.status.Info(fmt.Sprintf("%s published", t.Name))
			} else {
				b.status.Info(fmt.Sprintf("%s unpublished", t.Name))
			}
		})
	}()
}

// ToggleActive switches the selected template on or off.
func (b *TemplateBrowser) ToggleActive() {
	t, ok := b.Selected()
	if !ok {
		return
	}
	id := strconv.FormatInt(t.ID, 10)
	want := !t.Active()
	go func() {
		err := b.svc.SetActive(b.ctx, id, want)
		b.post(func() {
			if err != nil {
				b.status.Error(err)
				return
			}
			b.updateRow(t.ID, func(t *api.Template) {
				t.IsActive = 0
				if want {
					t.IsActive = 1
				}
			})
		})
	}()
}

func (b *TemplateBrowser) updateRow(id int64, f func(*api.Template)) {
	for i := range b.page.Templates {
		if b.page.Templates[i].ID == id {
			f(&b.page.Templates[i])
		}
	}
	b.applyFilter()
}

// HandleKey implements View.
func (b *TemplateBrowser) HandleKey(ev KeyEvent) error {
	if b.filterEdit {
		b.handleFilterKey(ev)
		return nil
	}

	switch {
	case ev.Is("Up") || ev.Key == 'k':
		b.cursor = max(b.cursor-1, 0)
	case ev.Is("Down") || ev.Key == 'j':
		b.cursor = min(b.cursor+1, max(len(b.Rows())-1, 0))
	case ev.Is("Right") || ev.Is("PageDown") || ev.Key == 'n':
		if b.page.Page < b.page.Pages() {
			b.Load(b.page.Page + 1)
		}
	case ev.Is("Left") || ev.Is("PageUp") || ev.Key == 'N':
		if b.page.Page > 1 {
			b.Load(b.page.Page - 1)
		}
	case ev.Is("Enter"):
		if t, ok := b.Selected(); ok && b.onOpen != nil {
			b.onOpen(t)
		}
	case ev.Key == 'p':
		b.TogglePublished()
	case ev.Key == 'a':
		b.ToggleActive()
	case ev.Key == 'r':
		b.Load(max(b.page.Page, 1))
	case ev.Key == '/':
		b.filterEdit = true
		b.filterBuf = []rune(b.filter)
	}
	return nil
}

func (b *TemplateBrowser) handleFilterKey(ev KeyEvent) {
	switch {
	case ev.Is("Escape"):
		b.filterEdit = false
	case ev.Is("Enter"):
		b.filterEdit = false
		if err := b.SetFilter(string(b.filterBuf)); err != nil {
			b.status.Error(err)
			return
		}
		b.status.Clear()
	case ev.Is("Backspace"):
		if len(b.filterBuf) > 0 {
			b.filterBuf = b.filterBuf[:len(b.filterBuf)-1]
		}
	case !ev.IsSpecial && !ev.Ctrl && ev.Key != 0:
		b.filterBuf = append(b.filterBuf, ev.Key)
	}
}

// HandleMouse selects the clicked row; the wheel moves the selection.
func (b *TemplateBrowser) HandleMouse(ev MouseEvent) error {
	switch ev.Action {
	case MouseWheelUp:
		b.cursor = max(b.cursor-1, 0)
	case MouseWheelDown:
		b.cursor = min(b.cursor+1, max(len(b.Rows())-1, 0))
	case MousePress:
		row := ev.Y - tableTop
		if row >= 0 && row < len(b.Rows()) {
			b.cursor = row
		}
	}
	return nil
}

// First table row, below the title and the header line.
const tableTop = 3

// Render implements View.
func (b *TemplateBrowser) Render(screen Screen) error {
	width, height := screen.Size()
	th := b.theme

	drawText(screen, 1, 0, width-2, "Bot Templates", th.Accent, th.Bg, goterm.StyleBold)
	if b.loading {
		drawText(screen, width-12, 0, 11, "loading…", th.Muted, th.Bg, goterm.StyleDim)
	}

	cols := []struct {
		title string
		width int
	}{
		{"ID", 6}, {"Name", 28}, {"Media", 10}, {"Active", 8}, {"Published", 10}, {"Nodes", 6}, {"Updated", 20},
	}
	x := 1
	for _, c := range cols {
		drawText(screen, x, 2, c.width, c.title, th.Muted, th.Bg, goterm.StyleBold)
		x += c.width + 1
	}

	for i, t := range b.Rows() {
		y := tableTop + i
		if y >= height-2 {
			break
		}
		fg, bg, style := th.Fg, th.Bg, goterm.StyleNone
		if i == b.cursor {
			fg, bg = th.SelectedFg, th.SelectedBg
			fill(screen, Rect{X: 0, Y: y, Width: width, Height: 1}, ' ', fg, bg)
		}
		cells := []string{
			strconv.FormatInt(t.ID, 10),
			truncate(t.Name, 28),
			t.Media(),
			yesNo(t.Active()),
			yesNo(t.Published),
			strconv.Itoa(len(t.Nodes)),
			t.Updated,
		}
		x := 1
		for j, c := range cols {
			drawText(screen, x, y, c.width, cells[j], fg, bg, style)
			x += c.width + 1
		}
	}

	footer := fmt.Sprintf("Page %d of %d · %d templates", max(b.page.Page, 1), b.page.Pages(), b.page.Total)
	if b.filter != "" {
		footer += " · where " + b.filter
	}
	drawText(screen, 1, height-2, width-2, footer, th.Muted, th.Bg, goterm.StyleNone)

	if b.filterEdit {
		fill(screen, Rect{X: 0, Y: height - 1, Width: width, Height: 1}, ' ', th.Fg, th.Bg)
		drawText(screen, 1, height-1, width-2, "where: "+string(b.filterBuf)+"_", th.Accent, th.Bg, goterm.StyleNone)
		return nil
	}
	b.status.render(screen, height-1, width, th, browserHelp)
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// templateGraph picks the graph to edit: a saved draft wins over the
// server copy.
func templateGraph(t api.Template, draft *flow.Graph) flow.Graph {
	if draft != nil {
		return draft.Clone()
	}
	return t.Graph()
}
