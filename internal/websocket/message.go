package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	// Server to Client
	MessageTypeSessionStarted  MessageType = "SESSION_STARTED"
	MessageTypeSessionEnded    MessageType = "SESSION_ENDED"
	MessageTypePasswordChanged MessageType = "PASSWORD_CHANGED"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// SessionEventPayload is sent with every session lifecycle event when the
// caller supplies no payload of its own.
type SessionEventPayload struct {
	UserID string `json:"userId"`
}
