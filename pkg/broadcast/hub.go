// Package broadcast fans out encoded OSC bundles to every connected
// subscriber. It generalizes the teacher's shared_video_source.go
// client state machine down to the two states this protocol needs
// (live, closed) and replaces its slow-client disconnection policy
// with lag tolerance: a subscriber that falls behind is told how many
// frames it missed and resumed from the newest one, never dropped by
// the hub itself.
package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

const subscriberCapacity = 100

// Event is what a Subscriber receives: either a Frame payload or a
// Lagged notice when the hub had to drop buffered frames to keep up.
type Event struct {
	Frame  []byte
	Lagged int
}

// Subscriber is a single hub client's receive side. mu pairs every
// send to eventCh with its close: a publish and an unsubscribe racing
// on the same subscriber must never let a send land on an already-
// closed channel.
type Subscriber struct {
	id      uint64
	eventCh chan Event

	mu     sync.RWMutex
	closed bool

	hub *Hub
}

// Events returns the channel to read broadcast events from. The
// channel is closed once the subscriber is unsubscribed or the hub is
// closed.
func (s *Subscriber) Events() <-chan Event {
	return s.eventCh
}

// Unsubscribe detaches the subscriber from the hub and closes its
// channel. Safe to call more than once.
func (s *Subscriber) Unsubscribe() {
	s.hub.unsubscribe(s)
}

// Hub is the broadcast fan-out point. One Hub backs one running
// server instance; it is recreated on every Start.
type Hub struct {
	subscribers *xsync.MapOf[uint64, *Subscriber]
	nextID      atomic.Uint64
	closed      atomic.Bool
	closeOnce   sync.Once
}

// NewHub returns a hub with no subscribers.
func NewHub() *Hub {
	return &Hub{subscribers: xsync.NewMapOf[uint64, *Subscriber]()}
}

// Subscribe registers a new subscriber and returns it. Returns false
// if the hub is already closed.
func (h *Hub) Subscribe() (*Subscriber, bool) {
	if h.closed.Load() {
		return nil, false
	}
	sub := &Subscriber{
		id:      h.nextID.Add(1),
		eventCh: make(chan Event, subscriberCapacity),
		hub:     h,
	}
	h.subscribers.Store(sub.id, sub)
	return sub, true
}

// Count returns the number of currently attached subscribers.
func (h *Hub) Count() int {
	return h.subscribers.Size()
}

// Publish sends frame to every live subscriber. A subscriber whose
// buffer is full is not disconnected: its backlog is drained, a
// Lagged event reporting the drop count is queued, and frame is
// queued immediately after it, so the subscriber's next read reports
// how far behind it fell and then resumes from current state.
func (h *Hub) Publish(frame []byte) {
	h.subscribers.Range(func(_ uint64, sub *Subscriber) bool {
		h.deliver(sub, frame)
		return true
	})
}

// deliver holds sub's read lock for the whole send (including the
// drain-and-resend path) so unsubscribe's write lock can never close
// sub.eventCh while a send against it is in flight.
func (h *Hub) deliver(sub *Subscriber, frame []byte) {
	sub.mu.RLock()
	defer sub.mu.RUnlock()

	if sub.closed {
		return
	}

	select {
	case sub.eventCh <- Event{Frame: frame}:
		return
	default:
	}

	// Buffer full: the subscriber is behind. Drain its entire backlog,
	// counting how many buffered frames are discarded, then queue a
	// single Lagged notice ahead of the newest frame so the subscriber
	// resumes from current state instead of replaying a stale backlog.
	dropped := 0
drain:
	for {
		select {
		case ev := <-sub.eventCh:
			if ev.Lagged > 0 {
				dropped += ev.Lagged
			} else {
				dropped++
			}
		default:
			break drain
		}
	}

	select {
	case sub.eventCh <- Event{Lagged: dropped}:
	default:
		// Channel capacity is never 0, so this cannot happen after a
		// full drain; fall through and still attempt the frame.
	}

	select {
	case sub.eventCh <- Event{Frame: frame}:
	default:
	}
}

// unsubscribe detaches sub from the hub and closes its channel under
// the write lock, so it can never race a concurrent deliver.
func (h *Hub) unsubscribe(sub *Subscriber) {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	if sub.closed {
		return
	}
	sub.closed = true
	h.subscribers.Delete(sub.id)
	close(sub.eventCh)
}

// Close detaches and closes every subscriber. Safe to call more than
// once; subsequent Subscribe calls fail until a new Hub is created.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		h.subscribers.Range(func(_ uint64, sub *Subscriber) bool {
			h.unsubscribe(sub)
			return true
		})
	})
}
