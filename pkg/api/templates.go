package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dshills/botflow/pkg/flow"
	"github.com/tidwall/gjson"
)

// DefaultPageSize is the number of templates per page in the browser.
const DefaultPageSize = 8

var mediaNames = map[int]string{
	4:  "WhatsApp",
	18: "Livechat",
}

// Template is a bot template as returned by the API.
type Template struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	MediaID     int               `json:"media_id"`
	IsActive    int               `json:"is_active"`
	Created     string            `json:"created"`
	Updated     string            `json:"updated"`
	Description string            `json:"description,omitempty"`
	CreatedAt   string            `json:"createdAt,omitempty"`
	UpdatedAt   string            `json:"updatedAt,omitempty"`
	Published   bool              `json:"published,omitempty"`
	Nodes       []flow.Node       `json:"nodes,omitempty"`
	Connections []flow.Connection `json:"connections,omitempty"`
}

// Media returns the channel name for the template's media id.
func (t Template) Media() string {
	if name, ok := mediaNames[t.MediaID]; ok {
		return name
	}
	return "Media " + strconv.Itoa(t.MediaID)
}

// Active reports whether the template is switched on.
func (t Template) Active() bool {
	return t.IsActive == 1
}

// Graph returns the template's nodes and connections as an editable graph.
func (t Template) Graph() flow.Graph {
	g := flow.Graph{Nodes: t.Nodes, Connections: t.Connections}.Clone()
	for i := range g.Nodes {
		if g.Nodes[i].Data.Buttons == nil {
			g.Nodes[i].Data.Buttons = []flow.Button{}
		}
	}
	return g
}

// TemplatePage is one page of the template list.
type TemplatePage struct {
	Templates []Template
	Total     int
	Page      int
	Limit     int
}

// Pages returns the number of pages needed for Total templates.
func (p TemplatePage) Pages() int {
	if p.Limit <= 0 {
		return 1
	}
	return max(1, (p.Total+p.Limit-1)/p.Limit)
}

// ListTemplates fetches one page of templates. The API answers either with
// an array in data (total in total_data) or with an object holding
// templates and total.
func (c *Client) ListTemplates(ctx context.Context, page, limit int) (TemplatePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	env, err := c.Do(ctx, http.MethodGet, "bot_templates?"+q.Encode(), nil)
	if err != nil {
		return TemplatePage{}, err
	}

	out := TemplatePage{Templates: []Template{}, Page: page, Limit: limit}
	data := gjson.ParseBytes(env.Data)
	switch {
	case data.IsArray():
		if err := json.Unmarshal([]byte(data.Raw), &out.Templates); err != nil {
			return TemplatePage{}, fmt.Errorf("failed to decode templates: %w", err)
		}
		out.Total = len(out.Templates)
		if env.TotalData != nil {
			out.Total = *env.TotalData
		}
	case data.Get("templates").IsArray():
		list := data.Get("templates")
		if err := json.Unmarshal([]byte(list.Raw), &out.Templates); err != nil {
			return TemplatePage{}, fmt.Errorf("failed to decode templates: %w", err)
		}
		out.Total = int(data.Get("total").Int())
		if out.Total == 0 {
			out.Total = len(out.Templates)
		}
	}
	return out, nil
}

// GetTemplate fetches one template with its graph.
func (c *Client) GetTemplate(ctx context.Context, id string) (Template, error) {
	env, err := c.Do(ctx, http.MethodGet, "templates/"+url.PathEscape(id), nil)
	if err != nil {
		return Template{}, err
	}
	if !gjson.ParseBytes(env.Data).IsObject() {
		return Template{}, &ResponseError{Code: http.StatusNotFound, Message: "template " + id + " not found"}
	}
	var t Template
	if err := json.Unmarshal(env.Data, &t); err != nil {
		return Template{}, fmt.Errorf("failed to decode template: %w", err)
	}
	return t, nil
}

// SetPublished publishes or unpublishes a template.
func (c *Client) SetPublished(ctx context.Context, id string, published bool) error {
	_, err := c.Do(ctx, http.MethodPut, "templates/"+url.PathEscape(id)+"/publish",
		map[string]any{"published": published})
	return err
}

// SetActive switches a template on or off.
func (c *Client) SetActive(ctx context.Context, id string, active bool) error {
	v := 0
	if active {
		v = 1
	}
	_, err := c.Do(ctx, http.MethodPut, "bot_templates/"+url.PathEscape(id),
		map[string]any{"is_active": v})
	return err
}

// BotFlow is one flow of a template.
type BotFlow struct {
	ID              int64  `json:"id"`
	BotTemplateID   int64  `json:"bot_template_id"`
	BotFlowTypeID   int64  `json:"bot_flow_type_id"`
	NextFlowID      int64  `json:"next_flow_id"`
	TimeoutDuration int    `json:"timeout_duration"`
	IsInitial       int    `json:"is_initial"`
	IsActive        int    `json:"is_active"`
	CreatedAt       string `json:"created_at"`
	UpdateAt        string `json:"update_at"`
	BotFlowType     string `json:"bot_flow_type,omitempty"`
	TotalBotDialogs int    `json:"total_bot_dialogs,omitempty"`
}

// ListBotFlows fetches the flows of a template.
func (c *Client) ListBotFlows(ctx context.Context, templateID string) ([]BotFlow, error) {
	q := url.Values{}
	q.Set("bot_template_id", templateID)
	env, err := c.Do(ctx, http.MethodGet, "bot_flows?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	flows := []BotFlow{}
	data := gjson.ParseBytes(env.Data)
	if !data.IsArray() {
		data = data.Get("flows")
	}
	if data.IsArray() {
		if err := json.Unmarshal([]byte(data.Raw), &flows); err != nil {
			return nil, fmt.Errorf("failed to decode bot flows: %w", err)
		}
	}
	return flows, nil
}
