package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unoduel/internal/protocol"
	"github.com/lox/unoduel/internal/randutil"
	"github.com/lox/unoduel/internal/view"
)

// startTestServer serves on a loopback port until the test ends.
func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(DefaultServerConfig(), log.New(io.Discard), WithRNG(randutil.New(42)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})

	baseURL := "http://" + ln.Addr().String()
	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	require.NoError(t, WaitForHealthy(waitCtx, baseURL))

	return srv, ln.Addr().String()
}

func dial(t *testing.T, addr, name string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws?name="+name, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType protocol.MessageType, data any) {
	t.Helper()
	msg, err := protocol.NewMessage(msgType, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

// expect reads the next message and checks its type.
func expect(t *testing.T, conn *websocket.Conn, msgType protocol.MessageType) *protocol.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg protocol.Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, msgType, msg.Type, "unexpected message: %s", string(msg.Data))
	return &msg
}

func TestHealthAndStats(t *testing.T) {
	t.Parallel()
	srv, addr := startTestServer(t)

	resp, err := http.Get("http://" + addr + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, Stats{}, stats)

	alice := dial(t, addr, "Alice")
	expect(t, alice, protocol.MessageTypeWelcome)
	send(t, alice, protocol.MessageTypeCreateRoom, nil)
	expect(t, alice, protocol.MessageTypeRoomCreated)

	got, err := srv.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Connections: 1, Rooms: 1}, got)
}

func TestWebSocketGameFlow(t *testing.T) {
	t.Parallel()
	srv, addr := startTestServer(t)

	alice := dial(t, addr, "Alice")
	var welcome protocol.WelcomeData
	require.NoError(t, expect(t, alice, protocol.MessageTypeWelcome).Decode(&welcome))
	assert.Equal(t, "Alice", welcome.Name)
	assert.NotEmpty(t, welcome.PlayerID)

	bob := dial(t, addr, "Bob")
	expect(t, bob, protocol.MessageTypeWelcome)

	send(t, alice, protocol.MessageTypeCreateRoom, nil)
	var created protocol.RoomCodeData
	require.NoError(t, expect(t, alice, protocol.MessageTypeRoomCreated).Decode(&created))

	send(t, bob, protocol.MessageTypeJoinRoom, protocol.RoomCodeData{Code: created.Code})
	expect(t, bob, protocol.MessageTypeRoomJoined)
	expect(t, alice, protocol.MessageTypePlayerJoined)

	send(t, alice, protocol.MessageTypeStartGame, protocol.RoomCodeData{Code: created.Code})
	var start view.Start
	require.NoError(t, expect(t, alice, protocol.MessageTypeGameStarted).Decode(&start))
	assert.True(t, start.IsMyTurn)
	assert.Equal(t, "Bob", start.Player2Name)
	expect(t, bob, protocol.MessageTypeGameStarted)

	send(t, bob, protocol.MessageTypeDrawCard, protocol.RoomCodeData{Code: created.Code})
	expect(t, bob, protocol.MessageTypeError)

	send(t, alice, protocol.MessageTypeDrawCard, protocol.RoomCodeData{Code: created.Code})
	update := expect(t, alice, protocol.MessageTypeGameUpdate)
	var g view.Game
	require.NoError(t, update.Decode(&g))
	assert.True(t, g.CanEndTurn)
	expect(t, bob, protocol.MessageTypeGameUpdate)

	require.NoError(t, bob.Close())

	var notice protocol.PlayerDisconnectedData
	require.NoError(t, expect(t, alice, protocol.MessageTypePlayerDisconnected).Decode(&notice))
	assert.Equal(t, "Bob disconnected", notice.Message)

	require.Eventually(t, func() bool {
		stats, err := srv.Stats(context.Background())
		return err == nil && stats == Stats{Connections: 1}
	}, 5*time.Second, 20*time.Millisecond)

	send(t, alice, protocol.MessageTypeEndTurn, protocol.RoomCodeData{Code: created.Code})
	send(t, alice, protocol.MessageTypeCreateRoom, nil)
	// The ignored end turn produced nothing, so the next message is the new room.
	expect(t, alice, protocol.MessageTypeRoomCreated)
}

func TestMalformedFrameGetsError(t *testing.T) {
	t.Parallel()
	_, addr := startTestServer(t)

	conn := dial(t, addr, "")
	var welcome protocol.WelcomeData
	require.NoError(t, expect(t, conn, protocol.MessageTypeWelcome).Decode(&welcome))
	assert.Contains(t, welcome.Name, "Player-")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var data protocol.ErrorData
	require.NoError(t, expect(t, conn, protocol.MessageTypeError).Decode(&data))
	assert.Equal(t, "invalid_message", data.Code)

	// The connection survives a bad frame.
	send(t, conn, protocol.MessageTypeCreateRoom, nil)
	expect(t, conn, protocol.MessageTypeRoomCreated)
}
