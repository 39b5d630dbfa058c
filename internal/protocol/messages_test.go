package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageAtEncodesData(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := NewMessageAt(MessageTypePlayCard, PlayCardData{Code: "ABCDE", CardIndex: 3, SelectedColor: "blue"}, at)
	require.NoError(t, err)

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"playCard","data":{"code":"ABCDE","cardIndex":3,"selectedColor":"blue"},"timestamp":"2024-01-02T03:04:05Z"}`,
		string(raw))
}

func TestMessageWithoutData(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(MessageTypeCreateRoom, nil)
	require.NoError(t, err)
	assert.Nil(t, msg.Data)
	assert.False(t, msg.Timestamp.IsZero())

	var data RoomCodeData
	require.NoError(t, msg.Decode(&data))
	assert.Empty(t, data.Code)
}

func TestDecodeFromWire(t *testing.T) {
	t.Parallel()

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"type":"joinRoom","data":{"code":"Q1W2E"}}`), &msg))
	assert.Equal(t, MessageTypeJoinRoom, msg.Type)

	var data RoomCodeData
	require.NoError(t, msg.Decode(&data))
	assert.Equal(t, "Q1W2E", data.Code)

	var bad PlayCardData
	msg.Data = json.RawMessage(`{"cardIndex":"nope"}`)
	assert.Error(t, msg.Decode(&bad))
}

func TestNewMessageRejectsUnencodable(t *testing.T) {
	t.Parallel()

	_, err := NewMessage(MessageTypeError, map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}
