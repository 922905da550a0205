// Package feed pushes canvas change notifications to websocket clients.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/venkeey/viscanvas-sub000/internal/history"
)

// SyncFunc returns the current canvas snapshot as JSON.
type SyncFunc func() (json.RawMessage, error)

type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client // clientID -> client
	seq        int64
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	sync       SyncFunc
}

func NewHub(syncFn SyncFunc) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		sync:       syncFn,
	}
}

// Run serves registrations until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Register adds client. It reports false if the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ClientID] = client
	seq := h.seq
	h.mu.Unlock()

	welcome, _ := json.Marshal(WelcomePayload{ClientID: client.ClientID, Seq: seq})
	h.deliver(client, &Message{Type: TypeWelcome, ClientID: client.ClientID, Payload: welcome})
	h.sendSync(client)

	slog.Info("client joined", "client", client.ClientID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ClientID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.ClientID)
	close(client.outbox)
	h.mu.Unlock()

	slog.Info("client left", "client", client.ClientID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.outbox)
		delete(h.clients, id)
	}
}

func (h *Hub) sendSync(client *Client) {
	if h.sync == nil {
		return
	}
	doc, err := h.sync()
	if err != nil {
		slog.Error("sync snapshot", "error", err, "client", client.ClientID)
		payload, _ := json.Marshal(ErrorPayload{Message: "snapshot unavailable"})
		h.deliver(client, &Message{Type: TypeError, Payload: payload})
		return
	}
	h.deliver(client, &Message{Type: TypeDocSync, Payload: doc})
}

// deliver sends to client only while it is registered; its outbox is
// closed on removal.
func (h *Hub) deliver(client *Client, msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.clients[client.ClientID] == client {
		client.Send(msg)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeSyncRequest:
		h.sendSync(sender)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
	}
}

// Publish broadcasts a history change. It never blocks, so it can be used
// directly as a history subscriber.
func (h *Hub) Publish(c history.Change) {
	payload, err := json.Marshal(ChangePayload{Op: string(c.Op), Command: c.Command, IDs: c.IDs})
	if err != nil {
		slog.Error("marshal change", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	msg := &Message{Type: TypeObjectsChanged, Seq: h.seq, Payload: payload}
	for _, c := range h.clients {
		c.Send(msg)
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
