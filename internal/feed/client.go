package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait    = 10 * time.Second
	pingPeriod   = 30 * time.Second
	maxFrameSize = 64 * 1024
	outboxSize   = 256
)

// Client is one websocket subscriber. Messages are queued in a bounded
// outbox; a client that lets it fill up is disconnected and must reconnect
// for a fresh doc.sync.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	outbox   chan []byte
	lagged   atomic.Bool
	ClientID string
}

func NewClient(hub *Hub, conn *websocket.Conn, clientID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		outbox:   make(chan []byte, outboxSize),
		ClientID: clientID,
	}
}

// Serve runs the client until the connection drops or ctx is done. The
// client must already be registered with the hub.
func (c *Client) Serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writeLoop(ctx, cancel)
	c.readLoop(ctx)
}

func (c *Client) readLoop(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxFrameSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					slog.Debug("feed read failed", "error", err, "client", c.ClientID)
				}
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("feed message rejected", "error", err, "client", c.ClientID)
			continue
		}
		msg.ClientID = c.ClientID
		c.hub.handleMessage(c, &msg)
	}
}

// writeLoop drains the outbox and keeps the connection alive with pings.
// stop ends the read side when writing can no longer continue.
func (c *Client) writeLoop(ctx context.Context, stop context.CancelFunc) {
	keepalive := time.NewTicker(pingPeriod)
	defer keepalive.Stop()
	defer stop()

	for {
		select {
		case data, open := <-c.outbox:
			if !open {
				c.conn.Close(websocket.StatusGoingAway, "feed closed")
				return
			}
			if err := c.write(ctx, data); err != nil {
				slog.Debug("feed write failed", "error", err, "client", c.ClientID)
				return
			}
			if c.lagged.Load() {
				slog.Warn("feed client too slow, disconnecting", "client", c.ClientID)
				c.conn.Close(websocket.StatusPolicyViolation, "too slow, reconnect to resync")
				return
			}

		case <-keepalive.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// Send queues msg without blocking. The hub calls it with its lock held.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal feed message", "error", err)
		return
	}

	select {
	case c.outbox <- data:
	default:
		c.lagged.Store(true)
	}
}
