// Package mockapi is an in-memory stand-in for the bot template API. It
// serves the same envelopes and endpoints as the real service and is used
// by client tests and by `botflow mock-api` for local development.
package mockapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dshills/botflow/pkg/flow"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Default login accepted by a new server.
const (
	DefaultUsername = "admin"
	DefaultPassword = "admin123"
)

// Template mirrors the API's template object.
type Template struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	MediaID     int               `json:"media_id"`
	IsActive    int               `json:"is_active"`
	Created     string            `json:"created"`
	Updated     string            `json:"updated"`
	Description string            `json:"description,omitempty"`
	Published   bool              `json:"published"`
	Nodes       []flow.Node       `json:"nodes"`
	Connections []flow.Connection `json:"connections"`
}

// BotFlow mirrors the API's bot flow object.
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
}

// Request is a request the server received.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

// Server holds the fake API state.
type Server struct {
	mu          sync.Mutex
	users       map[string]string
	templates   []Template
	flows       []BotFlow
	access      map[string]bool
	refresh     map[string]bool
	issued      int
	refreshes   int
	objectPages bool
	requests    []Request
	logger      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithUser adds an accepted login.
func WithUser(username, password string) Option {
	return func(s *Server) { s.users[username] = password }
}

// WithTemplates replaces the seeded templates.
func WithTemplates(ts ...Template) Option {
	return func(s *Server) { s.templates = slices.Clone(ts) }
}

// WithFlows replaces the seeded bot flows.
func WithFlows(fs ...BotFlow) Option {
	return func(s *Server) { s.flows = slices.Clone(fs) }
}

// WithObjectPages makes the template list answer with
// {"templates": [...], "total": n} instead of a bare array.
func WithObjectPages() Option {
	return func(s *Server) { s.objectPages = true }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server seeded with sample data.
func New(opts ...Option) *Server {
	s := &Server{
		users:     map[string]string{DefaultUsername: DefaultPassword},
		templates: SampleTemplates(),
		flows:     SampleFlows(),
		access:    make(map[string]bool),
		refresh:   make(map[string]bool),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Post("/token", s.login)
	r.Get("/token/refresh", s.refreshToken)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/bot_templates", s.listTemplates)
		r.Put("/bot_templates/{id}", s.setActive)
		r.Get("/templates/{id}", s.getTemplate)
		r.Put("/templates/{id}/publish", s.setPublished)
		r.Get("/bot_flows", s.listFlows)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, nil, nil, "Endpoint not found")
	})
	return r
}

// ExpireTokens invalidates every issued access token. Refresh tokens stay
// valid.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.access)
}

// Refreshes returns how many token refreshes succeeded.
func (s *Server) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// Template returns the stored template with the given id.
func (s *Server) Template(id int64) (Template, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return Template{}, false
	}
	return s.templates[i], true
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		s.mu.Unlock()
		s.logger.Info("request", "method", r.Method, "path", r.URL.RequestURI(), "request_id", r.Header.Get("X-Request-ID"))
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		ok := s.access[bearer(r)]
		s.mu.Unlock()
		if !ok {
			writeEnvelope(w, http.StatusUnauthorized, nil, nil, "Token expired")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// issue creates a new token pair. Caller holds s.mu.
func (s *Server) issue(username string) map[string]any {
	s.issued++
	access := fmt.Sprintf("access-%d", s.issued)
	refresh := fmt.Sprintf("refresh-%d", s.issued)
	s.access[access] = true
	s.refresh[refresh] = true
	return map[string]any{
		"id":            1,
		"username":      username,
		"fullname":      "Administrator",
		"department_id": 1,
		"user_level_id": 1,
		"token":         access,
		"refresh_token": refresh,
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, nil, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if pw, ok := s.users[body.Username]; !ok || pw != body.Password {
		writeEnvelope(w, http.StatusUnauthorized, nil, nil, "Invalid username or password")
		return
	}
	writeEnvelope(w, http.StatusOK, s.issue(body.Username), nil, "Login successful")
}

func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := bearer(r)
	if !s.refresh[token] {
		writeEnvelope(w, http.StatusUnauthorized, nil, nil, "Invalid refresh token")
		return
	}
	delete(s.refresh, token)
	s.refreshes++
	writeEnvelope(w, http.StatusOK, s.issue(DefaultUsername), nil, "Token refreshed")
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 8)

	s.mu.Lock()
	total := len(s.templates)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	items := slices.Clone(s.templates[start:end])
	objectPages := s.objectPages
	s.mu.Unlock()

	if objectPages {
		writeEnvelope(w, http.StatusOK, map[string]any{"templates": items, "total": total}, nil, "")
		return
	}
	writeEnvelope(w, http.StatusOK, items, &total, "")
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	t, ok := s.Template(pathID(r))
	if !ok {
		writeEnvelope(w, http.StatusNotFound, nil, nil, "Template not found")
		return
	}
	writeEnvelope(w, http.StatusOK, t, nil, "")
}

func (s *Server) setPublished(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Published bool `json:"published"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, nil, "Invalid request body")
		return
	}
	s.update(w, pathID(r), func(t *Template) { t.Published = body.Published })
}

func (s *Server) setActive(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsActive int `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, nil, "Invalid request body")
		return
	}
	s.update(w, pathID(r), func(t *Template) { t.IsActive = body.IsActive })
}

func (s *Server) update(w http.ResponseWriter, id int64, f func(*Template)) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		writeEnvelope(w, http.StatusNotFound, nil, nil, "Template not found")
		return
	}
	f(&s.templates[i])
	s.templates[i].Updated = time.Now().UTC().Format(time.DateTime)
	t := s.templates[i]
	s.mu.Unlock()
	writeEnvelope(w, http.StatusOK, t, nil, "Template updated")
}

func (s *Server) listFlows(w http.ResponseWriter, r *http.Request) {
	id := int64(queryInt(r, "bot_template_id", 0))

	s.mu.Lock()
	out := []BotFlow{}
	for _, f := range s.flows {
		if f.BotTemplateID == id {
			out = append(out, f)
		}
	}
	s.mu.Unlock()

	total := len(out)
	writeEnvelope(w, http.StatusOK, out, &total, "")
}

// indexOf finds a template. Caller holds s.mu.
func (s *Server) indexOf(id int64) int {
	return slices.IndexFunc(s.templates, func(t Template) bool { return t.ID == id })
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func writeEnvelope(w http.ResponseWriter, code int, data any, total *int, message string) {
	env := map[string]any{
		"request_time":  time.Now().UnixMilli(),
		"response_code": code,
		"success":       code == http.StatusOK || code == http.StatusCreated,
	}
	if data != nil {
		env["data"] = data
	}
	if total != nil {
		env["total_data"] = *total
	}
	if message != "" {
		env["message"] = message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(env)
}
