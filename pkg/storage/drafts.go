package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	boterrors "github.com/dshills/botflow/pkg/errors"
	"github.com/dshills/botflow/pkg/flow"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Draft is a locally saved graph for a template.
type Draft struct {
	TemplateID string
	Graph      flow.Graph
	SavedAt    time.Time
}

// DraftSummary describes a draft without decoding its graph.
type DraftSummary struct {
	TemplateID  string
	Nodes       int
	Connections int
	SavedAt     time.Time
}

// SQLiteDraftRepository stores drafts in a SQLite database.
type SQLiteDraftRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteDraftRepository opens (creating if needed) the database at
// dbPath and applies pending migrations.
func NewSQLiteDraftRepository(ctx context.Context, dbPath string) (*SQLiteDraftRepository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := InitializeDatabase(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &SQLiteDraftRepository{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (r *SQLiteDraftRepository) Close() error {
	return r.db.Close()
}

// Save stores g as the draft for templateID, replacing any earlier draft.
func (r *SQLiteDraftRepository) Save(ctx context.Context, templateID string, g flow.Graph) (Draft, error) {
	if templateID == "" {
		return Draft{}, fmt.Errorf("template ID cannot be empty")
	}

	g = g.Clone()
	data, err := json.Marshal(g)
	if err != nil {
		return Draft{}, fmt.Errorf("failed to marshal graph: %w", err)
	}

	savedAt := r.now().UTC().Truncate(time.Millisecond)
	query := `
		INSERT INTO drafts (template_id, graph_json, node_count, connection_count, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(template_id) DO UPDATE SET
			graph_json = excluded.graph_json,
			node_count = excluded.node_count,
			connection_count = excluded.connection_count,
			saved_at = excluded.saved_at
	`
	_, err = r.db.ExecContext(ctx, query, templateID, string(data), len(g.Nodes), len(g.Connections), savedAt)
	if err != nil {
		return Draft{}, boterrors.NewOperationalErrorWithAttrs("saving draft", templateID, "", err,
			map[string]any{"nodes": len(g.Nodes), "connections": len(g.Connections)})
	}

	return Draft{TemplateID: templateID, Graph: g, SavedAt: savedAt}, nil
}

// Load returns the draft for templateID, or ErrNotFound.
func (r *SQLiteDraftRepository) Load(ctx context.Context, templateID string) (Draft, error) {
	if templateID == "" {
		return Draft{}, fmt.Errorf("template ID cannot be empty")
	}

	var raw string
	d := Draft{TemplateID: templateID}
	err := r.db.QueryRowContext(ctx,
		"SELECT graph_json, saved_at FROM drafts WHERE template_id = ?", templateID,
	).Scan(&raw, &d.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{}, fmt.Errorf("draft for template %s: %w", templateID, ErrNotFound)
	}
	if err != nil {
		return Draft{}, boterrors.NewOperationalError("loading draft", templateID, "", err)
	}

	g, err := flow.Decode([]byte(raw), flow.FormatJSON)
	if err != nil {
		return Draft{}, fmt.Errorf("stored draft for template %s is corrupt: %w", templateID, err)
	}
	d.Graph = g
	return d, nil
}

// List returns a summary of every draft, most recently saved first.
func (r *SQLiteDraftRepository) List(ctx context.Context) ([]DraftSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT template_id, node_count, connection_count, saved_at
		FROM drafts
		ORDER BY saved_at DESC, template_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]DraftSummary, 0)
	for rows.Next() {
		var s DraftSummary
		if err := rows.Scan(&s.TemplateID, &s.Nodes, &s.Connections, &s.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return out, nil
}

// Delete removes the draft for templateID, or returns ErrNotFound.
func (r *SQLiteDraftRepository) Delete(ctx context.Context, templateID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM drafts WHERE template_id = ?", templateID)
	if err != nil {
		return boterrors.NewOperationalError("deleting draft", templateID, "", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("draft for template %s: %w", templateID, ErrNotFound)
	}
	return nil
}
