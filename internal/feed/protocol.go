package feed

import "encoding/json"

type Message struct {
	Type     string          `json:"type"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Canvas sync
	TypeDocSync        = "doc.sync"
	TypeObjectsChanged = "objects.changed"

	// Client requests
	TypeSyncRequest = "sync.request"
)

// WelcomePayload is sent once when a client connects.
type WelcomePayload struct {
	ClientID string `json:"clientId"`
	Seq      int64  `json:"seq"`
}

// ChangePayload mirrors one history change.
type ChangePayload struct {
	Op      string   `json:"op"`
	Command string   `json:"command,omitempty"`
	IDs     []string `json:"ids,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
