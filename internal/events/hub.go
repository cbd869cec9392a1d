package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thenoetrevino/quadro/internal/metrics"
)

var (
	ErrHubFull   = errors.New("broadcast channel full")
	ErrHubClosed = errors.New("hub is shut down")
)

const (
	defaultBroadcastBuffer = 100
	defaultClientBuffer    = 10
	defaultPingInterval    = 30 * time.Second
)

// Subscription is one live listener on a board's change feed
type Subscription struct {
	boardID   string
	send      chan Message
	closeOnce sync.Once
}

// C returns the message channel. It is closed when the subscription ends.
func (s *Subscription) C() <-chan Message { return s.send }

// BoardID returns the board this subscription listens to
func (s *Subscription) BoardID() string { return s.boardID }

// Hub fans committed board changes out to subscribers in-process.
// Slow subscribers miss events rather than stalling mutations.
type Hub struct {
	subs             map[*Subscription]bool
	mu               sync.RWMutex
	broadcast        chan Event
	done             chan struct{}
	sequenceCounter  atomic.Int64
	clientBufferSize int
	pingInterval     time.Duration
	metrics          *metrics.Metrics
	logger           *slog.Logger
	shutdownOnce     sync.Once
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithHubMetrics records delivery and subscriber counts
func WithHubMetrics(m *metrics.Metrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// WithHubLogger sets the hub logger
func WithHubLogger(l *slog.Logger) HubOption {
	return func(h *Hub) { h.logger = l }
}

// WithBufferSizes sets the broadcast queue and per-subscriber queue sizes
func WithBufferSizes(broadcast, client int) HubOption {
	return func(h *Hub) {
		if broadcast > 0 {
			h.broadcast = make(chan Event, broadcast)
		}
		if client > 0 {
			h.clientBufferSize = client
		}
	}
}

// WithPingInterval sets how often subscribers receive a ping message. Zero disables pings.
func WithPingInterval(d time.Duration) HubOption {
	return func(h *Hub) { h.pingInterval = d }
}

// NewHub creates a hub. Call Run to start delivering.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subs:             make(map[*Subscription]bool),
		broadcast:        make(chan Event, defaultBroadcastBuffer),
		done:             make(chan struct{}),
		clientBufferSize: defaultClientBuffer,
		pingInterval:     defaultPingInterval,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run delivers events until ctx is cancelled, then shuts the hub down
func (h *Hub) Run(ctx context.Context) error {
	var ping <-chan time.Time
	if h.pingInterval > 0 {
		ticker := time.NewTicker(h.pingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			h.Shutdown()
			return nil

		case <-h.done:
			return nil

		case event := <-h.broadcast:
			event.SequenceID = h.sequenceCounter.Add(1)
			h.deliver(Message{Type: "event", Event: &event}, event.BoardID)

		case <-ping:
			h.deliver(Message{Type: "ping", Event: &Event{Type: EventPing, Timestamp: time.Now().UTC()}}, "")
		}
	}
}

// deliver sends msg to every subscriber of boardID, or to all when boardID is empty
func (h *Hub) deliver(msg Message, boardID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs {
		if boardID != "" && s.boardID != boardID {
			continue
		}
		if !sendToSubscriber(s, msg) {
			h.metrics.IncEventsDropped()
			h.logger.Warn("subscriber queue full, message dropped", "board_id", s.boardID, "type", msg.Type)
			continue
		}
		if msg.Type == "event" {
			h.metrics.IncEventsPublished()
		}
	}
}

// sendToSubscriber is a non-blocking send. Callers hold h.mu, which keeps
// the channel from being closed underneath the send.
func sendToSubscriber(s *Subscription, msg Message) bool {
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

// Publish queues an event for delivery (non-blocking)
func (h *Hub) Publish(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}

	select {
	case h.broadcast <- event:
		return nil
	default:
		h.metrics.IncEventsDropped()
		return ErrHubFull
	}
}

// Subscribe registers a listener for boardID
func (h *Hub) Subscribe(boardID string) *Subscription {
	s := &Subscription{
		boardID: boardID,
		send:    make(chan Message, h.clientBufferSize),
	}

	h.mu.Lock()
	select {
	case <-h.done:
		s.closeOnce.Do(func() { close(s.send) })
	default:
		h.subs[s] = true
	}
	count := len(h.subs)
	h.mu.Unlock()

	h.metrics.SetSubscribers(count)
	h.logger.Debug("subscriber added", "board_id", boardID, "subscribers", count)
	return s
}

// Unsubscribe removes s and closes its channel. Safe to call more than once.
func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	s.closeOnce.Do(func() { close(s.send) })
	count := len(h.subs)
	h.mu.Unlock()

	h.metrics.SetSubscribers(count)
}

// SubscriberCount returns the number of live subscriptions
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Shutdown closes every subscription and rejects further events
func (h *Hub) Shutdown() {
	h.shutdownOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		for s := range h.subs {
			s.closeOnce.Do(func() { close(s.send) })
		}
		h.subs = make(map[*Subscription]bool)
		h.mu.Unlock()

		h.metrics.SetSubscribers(0)
		h.logger.Info("event hub stopped")
	})
}
