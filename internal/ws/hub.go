// Package ws pushes feed events to browsers over websockets.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sujalbistaa/whisphaven/internal/events"
	"github.com/sujalbistaa/whisphaven/internal/logging"
)

// ErrClosed is returned by Publish after Stop.
var ErrClosed = errors.New("hub closed")

// Hub tracks connected clients and broadcasts to all of them. Client
// bookkeeping happens only on the Run goroutine.
type Hub struct {
	Broadcast chan []byte

	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	count      atomic.Int64

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	log      *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		Broadcast:  make(chan []byte, 256),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		log:        logging.OrNop(log),
	}
}

// Run serves the hub until Stop is called.
func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			h.log.Debug("websocket client registered", zap.Int("clients", len(h.clients)))

		case c := <-h.unregister:
			h.drop(c)
			h.log.Debug("websocket client unregistered", zap.Int("clients", len(h.clients)))

		case msg := <-h.Broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow consumer
					h.drop(c)
				}
			}

		case <-h.done:
			for c := range h.clients {
				h.drop(c)
			}
			return
		}
	}
}

func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int64(len(h.clients)))
}

// Stop disconnects every client and waits for Run to return.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
	<-h.stopped
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Publish encodes ev and queues it for every client.
func (h *Hub) Publish(ctx context.Context, ev events.Event) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	select {
	case h.Broadcast <- msg:
		return nil
	case <-h.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
