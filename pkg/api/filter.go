package api

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// templateEnv is the environment a --where expression sees.
func templateEnv(t Template) map[string]any {
	return map[string]any{
		"id":          t.ID,
		"name":        t.Name,
		"description": t.Description,
		"media_id":    t.MediaID,
		"media":       t.Media(),
		"active":      t.Active(),
		"published":   t.Published,
		"created":     t.Created,
		"updated":     t.Updated,
		"nodes":       len(t.Nodes),
		"connections": len(t.Connections),
	}
}

// CompileFilter compiles a boolean template filter such as
// `active && media == "WhatsApp"` or `name contains "promo"`.
func CompileFilter(where string) (*vm.Program, error) {
	program, err := expr.Compile(where, expr.Env(templateEnv(Template{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", where, err)
	}
	return program, nil
}

// FilterTemplates returns the templates for which where evaluates to true.
// An empty expression keeps every template.
func FilterTemplates(templates []Template, where string) ([]Template, error) {
	if strings.TrimSpace(where) == "" {
		return templates, nil
	}
	program, err := CompileFilter(where)
	if err != nil {
		return nil, err
	}

	out := make([]Template, 0, len(templates))
	for _, t := range templates {
		res, err := expr.Run(program, templateEnv(t))
		if err != nil {
			return nil, fmt.Errorf("evaluating filter on template %d: %w", t.ID, err)
		}
		if keep, _ := res.(bool); keep {
			out = append(out, t)
		}
	}
	return out, nil
}
