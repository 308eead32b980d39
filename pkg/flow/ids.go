package flow

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator issues ids for new nodes and buttons.
type IDGenerator interface {
	NewID() string
}

// TimestampIDs derives ids from the current time in Unix milliseconds.
// Two calls within the same millisecond still get distinct ids: the
// counter is bumped past the last issued value.
type TimestampIDs struct {
	Now func() time.Time

	mu   sync.Mutex
	last int64
}

// NewTimestampIDs returns a generator backed by the wall clock.
func NewTimestampIDs() *TimestampIDs {
	return &TimestampIDs{Now: time.Now}
}

// NewID implements IDGenerator.
func (g *TimestampIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	v := now().UnixMilli()
	if v <= g.last {
		v = g.last + 1
	}
	g.last = v
	return strconv.FormatInt(v, 10)
}

// NewConnectionID returns a random id for a connection.
func NewConnectionID() string {
	return "conn-" + uuid.New().String()[:8]
}
