package events

import (
	"sync"

	"github.com/WillShirley13/testudo-bonds/core/types"
)

// Event represents a structured state change emitted by the ledger.
type Event interface {
	EventType() string
}

// Payload is implemented by events that can render themselves into the
// broadcastable attribute form.
type Payload interface {
	Event
	Event() *types.Event
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Buffer collects events emitted during an operation so they can be published
// once the operation commits, or dropped when it fails.
type Buffer struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements the Emitter interface.
func (b *Buffer) Emit(evt Event) {
	if b == nil || evt == nil {
		return
	}
	b.mu.Lock()
	b.events = append(b.events, evt)
	b.mu.Unlock()
}

// Events returns a copy of the buffered events.
func (b *Buffer) Events() []Event {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.events...)
}

// Flush forwards every buffered event to target in emission order and resets
// the buffer.
func (b *Buffer) Flush(target Emitter) {
	if b == nil {
		return
	}
	b.mu.Lock()
	pending := b.events
	b.events = nil
	b.mu.Unlock()
	if target == nil {
		return
	}
	for _, evt := range pending {
		target.Emit(evt)
	}
}

// Reset drops every buffered event.
func (b *Buffer) Reset() {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.events = nil
	b.mu.Unlock()
}

// Recorder keeps every event it receives. Nodes use it to serve recent
// activity and tests use it to assert on emissions.
type Recorder struct {
	mu     sync.Mutex
	limit  int
	events []*types.Event
}

// NewRecorder returns a recorder retaining at most limit events. A
// non-positive limit keeps everything.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Emit implements the Emitter interface. Events that cannot render a payload
// are recorded with only their type.
func (r *Recorder) Emit(evt Event) {
	if r == nil || evt == nil {
		return
	}
	var rendered *types.Event
	if payload, ok := evt.(Payload); ok {
		rendered = payload.Event()
	}
	if rendered == nil {
		rendered = &types.Event{Type: evt.EventType(), Attributes: map[string]string{}}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, rendered)
	if r.limit > 0 && len(r.events) > r.limit {
		r.events = append([]*types.Event(nil), r.events[len(r.events)-r.limit:]...)
	}
}

// Events returns the recorded events, oldest first.
func (r *Recorder) Events() []*types.Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*types.Event(nil), r.events...)
}
