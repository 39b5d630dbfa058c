package tui

import (
	"fmt"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/protocol"
	"github.com/lox/unoduel/internal/view"
)

func init() {
	DisableColor()
}

// fakeConn records intents instead of sending them.
type fakeConn struct {
	messages     chan *protocol.Message
	calls        []string
	room         string
	disconnected bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{messages: make(chan *protocol.Message, 8)}
}

func (f *fakeConn) Messages() <-chan *protocol.Message { return f.messages }
func (f *fakeConn) PlayerID() string                   { return "me" }
func (f *fakeConn) RoomCode() string                   { return f.room }
func (f *fakeConn) CreateRoom() error                  { return f.record("create") }
func (f *fakeConn) JoinRoom(code string) error         { return f.record("join " + code) }
func (f *fakeConn) StartGame() error                   { return f.record("start") }
func (f *fakeConn) DrawCard() error                    { return f.record("draw") }
func (f *fakeConn) EndTurn() error                     { return f.record("end") }
func (f *fakeConn) SetName(name string) error          { return f.record("name " + name) }
func (f *fakeConn) Disconnect() error                  { f.disconnected = true; return nil }

func (f *fakeConn) PlayCard(index int, color deck.Color) error {
	return f.record(fmt.Sprintf("play %d %s", index, color))
}

func (f *fakeConn) record(call string) error {
	f.calls = append(f.calls, call)
	return nil
}

func newModel(t *testing.T) (*TUIModel, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	return NewTUIModel(conn, logger), conn
}

func receive(t *testing.T, m *TUIModel, msgType protocol.MessageType, data any) {
	t.Helper()
	msg, err := protocol.NewMessage(msgType, data)
	require.NoError(t, err)
	_, cmd := m.Update(serverMsg{msg: msg})
	assert.NotNil(t, cmd, "should keep listening")
}

func lastLog(m *TUIModel) string {
	if len(m.gameLog) == 0 {
		return ""
	}
	return m.gameLog[len(m.gameLog)-1]
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want Command
	}{
		{"create", Command{Kind: CmdCreate}},
		{"JOIN ab12c", Command{Kind: CmdJoin, Code: "ab12c"}},
		{"start", Command{Kind: CmdStart}},
		{"play 3", Command{Kind: CmdPlay, Index: 2}},
		{"p 1 Yellow", Command{Kind: CmdPlay, Index: 0, Color: deck.Yellow}},
		{"draw", Command{Kind: CmdDraw}},
		{"pass", Command{Kind: CmdEnd}},
		{"name  Ada Lovelace ", Command{Kind: CmdName, Name: "Ada Lovelace"}},
		{"quit", Command{Kind: CmdQuit}},
	}
	for _, tt := range tests {
		got, err := ParseCommand(tt.line)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}

	for _, bad := range []string{"", "join", "play", "play 0", "play x", "play 1 purple", "name", "fold"} {
		_, err := ParseCommand(bad)
		assert.Error(t, err, bad)
	}
}

func TestCommandsReachConnection(t *testing.T) {
	t.Parallel()
	m, conn := newModel(t)

	for _, line := range []string{"create", "join XY7Z9", "start", "draw", "end", "name Bob", "play 2"} {
		assert.Nil(t, m.submit(line))
	}
	assert.Equal(t, []string{"create", "join XY7Z9", "start", "draw", "end", "name Bob", "play 1 "}, conn.calls)
}

func TestWildNeedsColor(t *testing.T) {
	t.Parallel()
	m, conn := newModel(t)

	receive(t, m, protocol.MessageTypeGameUpdate, view.Game{
		Hand:         []deck.Card{deck.NewNumber(deck.Red, 4), deck.NewWild(deck.WildFour)},
		DiscardTop:   deck.NewNumber(deck.Red, 9),
		CurrentColor: deck.Red,
		CurrentValue: "9",
		IsMyTurn:     true,
	})

	m.submit("play 2")
	assert.Empty(t, conn.calls)
	assert.Contains(t, lastLog(m), "name a color")

	m.submit("play 5")
	assert.Empty(t, conn.calls)
	assert.Contains(t, lastLog(m), "only hold 2 cards")

	m.submit("play 2 green")
	assert.Equal(t, []string{"play 1 green"}, conn.calls)
}

func TestGameFlowUpdatesState(t *testing.T) {
	t.Parallel()
	m, _ := newModel(t)

	receive(t, m, protocol.MessageTypeWelcome, protocol.WelcomeData{PlayerID: "me", Name: "Ada"})
	assert.Equal(t, "Ada", m.name)
	assert.Contains(t, lastLog(m), "Connected as Ada")

	receive(t, m, protocol.MessageTypeRoomCreated, protocol.RoomCodeData{Code: "AB12C"})
	assert.Contains(t, lastLog(m), "AB12C")
	require.Len(t, m.participants, 1)

	receive(t, m, protocol.MessageTypePlayerJoined, protocol.PlayerJoinedData{
		Participants: []protocol.Participant{{ID: "me", Name: "Ada"}, {ID: "them", Name: "Bob"}},
	})
	assert.Len(t, m.participants, 2)

	receive(t, m, protocol.MessageTypeGameStarted, view.Start{
		Game: view.Game{
			Hand:              []deck.Card{deck.NewNumber(deck.Blue, 1)},
			OpponentCardCount: 7,
			DiscardTop:        deck.NewNumber(deck.Blue, 5),
			CurrentColor:      deck.Blue,
			CurrentValue:      "5",
			IsMyTurn:          true,
		},
		Player1Name: "Ada",
		Player2Name: "Bob",
		MyPosition:  1,
	})
	require.NotNil(t, m.game)
	assert.Equal(t, [2]string{"Ada", "Bob"}, m.players)
	assert.Equal(t, "Your turn.", lastLog(m))

	receive(t, m, protocol.MessageTypeError, protocol.ErrorData{Message: "Not your turn", Code: "state_conflict"})
	assert.Equal(t, "Not your turn", lastLog(m))

	receive(t, m, protocol.MessageTypeGameOver, protocol.GameOverData{Winner: "Ada", WinnerID: "me"})
	assert.Nil(t, m.game)
	assert.Contains(t, strings.Join(m.gameLog, "\n"), "You win!")
}

func TestOpponentLeaving(t *testing.T) {
	t.Parallel()
	m, _ := newModel(t)

	m.game = &view.Game{}
	receive(t, m, protocol.MessageTypePlayerDisconnected, protocol.PlayerDisconnectedData{Message: "Bob disconnected"})
	assert.Nil(t, m.game)
	assert.Contains(t, lastLog(m), "Bob disconnected")
}

func TestConnectionLost(t *testing.T) {
	t.Parallel()
	m, conn := newModel(t)

	_, cmd := m.Update(disconnectedMsg{})
	assert.Nil(t, cmd)
	assert.False(t, m.connected)

	m.submit("create")
	assert.Empty(t, conn.calls)
	assert.Equal(t, "Not connected", lastLog(m))
}

func TestQuitDisconnects(t *testing.T) {
	t.Parallel()
	m, conn := newModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.True(t, conn.disconnected)
	assert.Empty(t, m.View())
}

func TestListenReportsClosedConnection(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	close(conn.messages)
	assert.Equal(t, disconnectedMsg{}, listen(conn.Messages())())
}

func TestViewShowsHandAndPile(t *testing.T) {
	t.Parallel()
	m, conn := newModel(t)
	conn.room = "AB12C"

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.players = [2]string{"Ada", "Bob"}
	m.game = &view.Game{
		Hand:              []deck.Card{deck.NewNumber(deck.Red, 3), deck.NewAction(deck.Red, deck.Skip)},
		OpponentCardCount: 4,
		DiscardTop:        deck.NewNumber(deck.Red, 9),
		CurrentColor:      deck.Red,
		CurrentValue:      "9",
		IsMyTurn:          true,
	}

	out := m.View()
	assert.Contains(t, out, "Room AB12C")
	assert.Contains(t, out, "1:red 3")
	assert.Contains(t, out, "2:red skip")
	assert.Contains(t, out, "Opponent: 4 cards")
}
