package mockapi

import (
	"fmt"

	"github.com/dshills/botflow/pkg/flow"
)

// SampleTemplates returns ten templates. The first one carries a small
// greeting flow; the rest are empty.
func SampleTemplates() []Template {
	hello := flow.NewNode("1700000000000", flow.NodeHello, flow.Position{X: 100, Y: 100})
	hello.Data.Buttons = []flow.Button{
		{ID: "1700000000100", Text: "Chat on WhatsApp", Action: flow.ActionGoto, Target: "1700000000001"},
		{ID: "1700000000101", Text: "Visit website", Action: flow.ActionURL, Target: "https://example.com"},
	}
	wa := flow.NewNode("1700000000001", flow.NodeWhatsApp, flow.Position{X: 100, Y: 300})

	out := make([]Template, 0, 10)
	for i := 1; i <= 10; i++ {
		media := 4
		if i%3 == 0 {
			media = 18
		}
		t := Template{
			ID:          int64(i),
			Name:        fmt.Sprintf("Template %02d", i),
			MediaID:     media,
			IsActive:    i % 2,
			Created:     fmt.Sprintf("2025-01-%02d 09:00:00", i),
			Updated:     fmt.Sprintf("2025-02-%02d 09:00:00", i),
			Description: "Sample bot template",
			Nodes:       []flow.Node{},
			Connections: []flow.Connection{},
		}
		if i == 1 {
			t.Name = "Welcome flow"
			t.Nodes = []flow.Node{hello, wa}
			t.Connections = []flow.Connection{{ID: "conn-0001", SourceID: hello.ID, TargetID: wa.ID}}
		}
		out = append(out, t)
	}
	return out
}

// SampleFlows returns the bot flows of the first sample template.
func SampleFlows() []BotFlow {
	return []BotFlow{
		{ID: 1, BotTemplateID: 1, BotFlowTypeID: 1, NextFlowID: 2, TimeoutDuration: 300,
			IsInitial: 1, IsActive: 1, CreatedAt: "2025-01-01 09:00:00", UpdateAt: "2025-01-01 09:00:00",
			BotFlowType: "greeting"},
		{ID: 2, BotTemplateID: 1, BotFlowTypeID: 2, TimeoutDuration: 300,
			IsActive: 1, CreatedAt: "2025-01-01 09:00:00", UpdateAt: "2025-01-01 09:00:00",
			BotFlowType: "handoff"},
	}
}
