package editor

import (
	"strconv"

	"github.com/dshills/botflow/pkg/flow"
)

// seqIDs issues prefix+"1", prefix+"2", ... in order.
type seqIDs struct {
	prefix string
	n      int
}

func (s *seqIDs) NewID() string {
	s.n++
	return s.prefix + strconv.Itoa(s.n)
}

func newTestBuilder(opts ...Option) *Builder {
	conn := 0
	base := []Option{
		WithIDs(&seqIDs{}),
		WithConnectionIDs(func() string {
			conn++
			return "c" + strconv.Itoa(conn)
		}),
		WithRandom(func() float64 { return 0.5 }),
	}
	return NewBuilder(append(base, opts...)...)
}

// recorder collects dispatched intents.
type recorder struct {
	intents []Intent
}

func (r *recorder) Dispatch(i Intent) {
	r.intents = append(r.intents, i)
}

func (r *recorder) last() Intent {
	if len(r.intents) == 0 {
		return nil
	}
	return r.intents[len(r.intents)-1]
}

func pos(x, y float64) flow.Position {
	return flow.Position{X: x, Y: y}
}
