package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() Graph {
	return Graph{
		Nodes: []Node{
			NewNode("n1", NodeHello, Position{X: 100, Y: 100}),
			NewNode("n2", NodeWhatsApp, Position{X: 100, Y: 300}),
		},
		Connections: []Connection{
			{ID: "c1", SourceID: "n1", TargetID: "n2"},
			{ID: "c2", SourceID: "n2", TargetID: "gone"},
		},
	}
}

func TestGraphDangling(t *testing.T) {
	d := sampleGraph().Dangling()
	require.Len(t, d, 1)
	assert.Equal(t, "c2", d[0].ID)
}

func TestGraphCloneIsDeep(t *testing.T) {
	g := sampleGraph()
	g.Nodes[0].Data.Buttons = []Button{{ID: "b1", Text: "Hi", Action: ActionGoto}}

	c := g.Clone()
	c.Nodes[0].Data.Buttons[0].Text = "changed"
	c.Connections[0].TargetID = "x"

	assert.Equal(t, "Hi", g.Nodes[0].Data.Buttons[0].Text)
	assert.Equal(t, "n2", g.Connections[0].TargetID)
}

func TestGraphCheck(t *testing.T) {
	g := sampleGraph()
	assert.NoError(t, g.Check())

	g.Nodes = append(g.Nodes, Node{ID: "n1", Type: "sms"})
	err := g.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate node id n1")
	assert.Contains(t, err.Error(), `unknown type "sms"`)
}

func TestConnectionTouches(t *testing.T) {
	c := Connection{SourceID: "a", TargetID: "b"}
	assert.True(t, c.Touches("a"))
	assert.True(t, c.Touches("b"))
	assert.False(t, c.Touches("c"))
}

func TestTimestampIDsAreUnique(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	gen := &TimestampIDs{Now: func() time.Time { return fixed }}

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := gen.NewID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.True(t, seen["1700000000000"])
	assert.True(t, seen["1700000000049"])
}

func TestNewConnectionID(t *testing.T) {
	a, b := NewConnectionID(), NewConnectionID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, len("conn-")+8)
}
