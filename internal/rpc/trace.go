package rpc

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// TraceEntry is one request/response exchange.
type TraceEntry struct {
	ID         uint64
	Method     string
	Request    string
	Response   string
	StatusCode int
	Err        string
}

// Trace records the exchanges of the calls made with a context carrying it.
// It is safe for concurrent use.
type Trace struct {
	mu      sync.Mutex
	entries []TraceEntry
}

func NewTrace() *Trace {
	return &Trace{}
}

type traceKey struct{}

// WithTrace returns a context that makes Client.Call record into t.
func WithTrace(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

// TraceFromContext returns the trace attached by WithTrace, or nil.
func TraceFromContext(ctx context.Context) *Trace {
	t, _ := ctx.Value(traceKey{}).(*Trace)
	return t
}

func (t *Trace) record(entry TraceEntry) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry)
}

// Entries returns a copy of the recorded exchanges in call order.
func (t *Trace) Entries() []TraceEntry {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]TraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Trace) String() string {
	var b strings.Builder
	for _, e := range t.Entries() {
		fmt.Fprintf(&b, "--> #%d %s %s\n", e.ID, e.Method, e.Request)
		if e.StatusCode != 0 {
			fmt.Fprintf(&b, "<-- http %d %s\n", e.StatusCode, e.Response)
		}
		if e.Err != "" {
			fmt.Fprintf(&b, "!!! %s\n", e.Err)
		}
	}
	return b.String()
}
