package testenv

import (
	"context"
	"sync"

	"github.com/Skotchmaster/marketplace/services/order/internal/events"
)

// Recorder is an in-memory events.Publisher.
type Recorder struct {
	mu     sync.Mutex
	Events []events.OrderEvent
	Err    error
}

func (r *Recorder) PublishEvent(_ context.Context, _, _ string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev, ok := event.(events.OrderEvent); ok {
		r.Events = append(r.Events, ev)
	}
	return r.Err
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, ev := range r.Events {
		out[i] = ev.Type
	}
	return out
}
