package ws

import "encoding/json"

// MessageType constants for WebSocket protocol.
const (
	// Client -> Server
	TypeAction      = "action"
	TypeRequestView = "request_view"
	TypePing        = "ping"

	// Server -> Client
	TypeView         = "view"
	TypeBankReloaded = "bank_reloaded"
	TypeError        = "error"
	TypePong         = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals payload into a typed message.
func NewMessage(msgType string, payload interface{}) (Message, error) {
	if payload == nil {
		return Message{Type: msgType}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Payload: raw}, nil
}

// Client Messages (incoming)

type ActionPayload struct {
	Type    string `json:"type"`
	Subject string `json:"subject,omitempty"`
	Index   *int   `json:"index,omitempty"`
	Choice  *int   `json:"choice,omitempty"`
}

// Server Messages (outgoing)

type BankReloadedPayload struct {
	Version int64  `json:"version"`
	Notice  string `json:"notice,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
