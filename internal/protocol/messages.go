package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	return NewMessageAt(messageType, data, time.Now())
}

// NewMessageAt creates a new message stamped with the given time
func NewMessageAt(messageType MessageType, data any, at time.Time) (*Message, error) {
	msg := &Message{Type: messageType, Timestamp: at}
	if data == nil {
		return msg, nil
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", messageType, err)
	}
	msg.Data = dataBytes
	return msg, nil
}

// Decode unmarshals the message data into v. A message without data leaves
// v untouched.
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", m.Type, err)
	}
	return nil
}

// Client → Server Messages

type RoomCodeData struct {
	Code string `json:"code"`
}

type PlayCardData struct {
	Code          string `json:"code"`
	CardIndex     int    `json:"cardIndex"`
	SelectedColor string `json:"selectedColor,omitempty"`
}

type SetNameData struct {
	Name string `json:"name"`
}

// Server → Client Messages

type WelcomeData struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RoomJoinedData struct {
	Code         string        `json:"code"`
	Participants []Participant `json:"participants"`
}

type PlayerJoinedData struct {
	Participants []Participant `json:"participants"`
}

type GameOverData struct {
	Winner   string `json:"winner"`
	WinnerID string `json:"winnerId"`
}

type PlayerDisconnectedData struct {
	Message string `json:"message"`
}

type ErrorData struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
