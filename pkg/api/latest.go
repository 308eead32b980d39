package api

import (
	"context"
	"sync"
)

// Latest orders overlapping requests of the same kind, such as template
// pages fetched while the user keeps paging. Each Begin supersedes the
// previous request: its context is cancelled and its ticket goes stale,
// so a late response can be recognised and dropped.
type Latest struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Ticket identifies one request started through Latest.
type Ticket struct {
	l   *Latest
	gen uint64
	ctx context.Context
}

// Begin starts a new request generation derived from parent.
func (l *Latest) Begin(parent context.Context) Ticket {
	ctx, cancel := context.WithCancel(parent)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	l.cancel = cancel
	return Ticket{l: l, gen: l.gen, ctx: ctx}
}

// Context returns the request's context. It is cancelled when a newer
// request begins.
func (t Ticket) Context() context.Context {
	return t.ctx
}

// Current reports whether no newer request has begun.
func (t Ticket) Current() bool {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	return t.gen == t.l.gen
}

// Done releases the ticket's context. It reports whether the ticket was
// still current, i.e. whether its result should be applied.
func (t Ticket) Done() bool {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	current := t.gen == t.l.gen
	if current && t.l.cancel != nil {
		t.l.cancel()
		t.l.cancel = nil
	}
	return current
}
