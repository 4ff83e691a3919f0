package client

import (
	"sync"

	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/transport"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/wire"
)

// EventType names a subscribable client event.
type EventType string

const (
	// EventOpen fires when a connection is established.
	EventOpen EventType = "open"

	// EventClose fires when a connection ends, carrying the close info.
	EventClose EventType = "close"

	// EventError surfaces transport errors. Errors do not change state by
	// themselves; the close event that follows drives the transition.
	EventError EventType = "error"

	// EventMessage delivers inbound envelopes that matched no pending
	// request.
	EventMessage EventType = "message"

	// EventReconnecting fires when a reconnect attempt is scheduled.
	EventReconnecting EventType = "reconnecting"

	// EventReconnected fires when a connection is re-established after one
	// or more reconnect attempts.
	EventReconnected EventType = "reconnected"

	// EventStateChanged fires on every state transition.
	EventStateChanged EventType = "stateChanged"
)

// Event is delivered to subscribers. Only the fields relevant to its type
// are populated.
type Event struct {
	Type     EventType
	Envelope wire.Envelope       // message
	Err      error               // error
	State    State               // stateChanged
	Close    transport.CloseInfo // close
	Attempt  int                 // reconnecting
}

// Handler receives events. Handlers run synchronously on the emitting
// goroutine and must not block.
type Handler func(Event)

// Token identifies a subscription for Unsubscribe.
type Token struct {
	event EventType
	id    int
}

// dispatcher maintains per-event subscriber lists. Explicit tokens keep
// handlers from leaking across reconnect cycles.
type dispatcher struct {
	mu     sync.RWMutex
	nextID int
	subs   map[EventType]map[int]Handler
}

func newDispatcher() *dispatcher {
	return &dispatcher{subs: make(map[EventType]map[int]Handler)}
}

func (d *dispatcher) subscribe(ev EventType, h Handler) Token {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	if d.subs[ev] == nil {
		d.subs[ev] = make(map[int]Handler)
	}
	d.subs[ev][d.nextID] = h

	return Token{event: ev, id: d.nextID}
}

func (d *dispatcher) unsubscribe(tok Token) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if handlers, ok := d.subs[tok.event]; ok {
		delete(handlers, tok.id)
	}
}

func (d *dispatcher) emit(e Event) {
	d.mu.RLock()
	handlers := make([]Handler, 0, len(d.subs[e.Type]))
	for _, h := range d.subs[e.Type] {
		handlers = append(handlers, h)
	}
	d.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
