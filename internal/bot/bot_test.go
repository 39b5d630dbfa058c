package bot

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/protocol"
	"github.com/lox/unoduel/internal/view"
)

// fakeConn feeds scripted server messages to a bot and records its intents.
type fakeConn struct {
	in    chan *protocol.Message
	calls chan string
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:    make(chan *protocol.Message, 16),
		calls: make(chan string, 16),
	}
}

func (f *fakeConn) Messages() <-chan *protocol.Message { return f.in }
func (f *fakeConn) PlayerID() string                   { return "me" }
func (f *fakeConn) CreateRoom() error                  { f.calls <- "create"; return nil }
func (f *fakeConn) JoinRoom(code string) error         { f.calls <- "join " + code; return nil }
func (f *fakeConn) StartGame() error                   { f.calls <- "start"; return nil }
func (f *fakeConn) DrawCard() error                    { f.calls <- "draw"; return nil }
func (f *fakeConn) EndTurn() error                     { f.calls <- "end"; return nil }

func (f *fakeConn) PlayCard(index int, color deck.Color) error {
	f.calls <- "play " + string(rune('0'+index)) + " " + color.String()
	return nil
}

func (f *fakeConn) push(t *testing.T, msgType protocol.MessageType, data any) {
	t.Helper()
	msg, err := protocol.NewMessage(msgType, data)
	require.NoError(t, err)
	f.in <- msg
}

func (f *fakeConn) expect(t *testing.T, call string) {
	t.Helper()
	select {
	case got := <-f.calls:
		assert.Equal(t, call, got)
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %q", call)
	}
}

type outcome struct {
	result Result
	err    error
}

func runBot(t *testing.T, conn *fakeConn, cfg Config, clock quartz.Clock) <-chan outcome {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	b := New(conn, GreedyStrategy{}, cfg, clock, log.New(io.Discard))
	done := make(chan outcome, 1)
	go func() {
		result, err := b.Run(ctx)
		done <- outcome{result, err}
	}()
	return done
}

func wait(t *testing.T, done <-chan outcome) outcome {
	t.Helper()
	select {
	case out := <-done:
		return out
	case <-time.After(5 * time.Second):
		t.Fatal("bot did not finish")
		return outcome{}
	}
}

func TestHostPlaysToWin(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()

	var hosted string
	done := runBot(t, conn, Config{OnRoomCreated: func(code string) { hosted = code }}, quartz.NewReal())

	conn.push(t, protocol.MessageTypeWelcome, protocol.WelcomeData{PlayerID: "me", Name: "Bot"})
	conn.expect(t, "create")

	conn.push(t, protocol.MessageTypeRoomCreated, protocol.RoomCodeData{Code: "AB12C"})
	conn.push(t, protocol.MessageTypePlayerJoined, protocol.PlayerJoinedData{})
	conn.expect(t, "start")
	assert.Equal(t, "AB12C", hosted)

	conn.push(t, protocol.MessageTypeGameStarted, view.Start{
		Game:       turn(red(7), blue(1), red(2)),
		MyPosition: 1,
	})
	conn.expect(t, "play 1 ")

	// Nothing fits, so draw and then pass.
	conn.push(t, protocol.MessageTypeGameUpdate, turn(red(2), blue(1), green(5)))
	conn.expect(t, "draw")
	g := turn(red(2), blue(1), green(5), green(6))
	g.CanEndTurn = true
	conn.push(t, protocol.MessageTypeGameUpdate, g)
	conn.expect(t, "end")

	// The opponent's turn needs nothing from us.
	conn.push(t, protocol.MessageTypeGameUpdate, view.Game{Hand: []deck.Card{blue(1)}, CurrentColor: deck.Blue, CurrentValue: "9"})
	conn.push(t, protocol.MessageTypeGameUpdate, turn(blue(9), blue(1)))
	conn.expect(t, "play 0 ")

	conn.push(t, protocol.MessageTypeGameOver, protocol.GameOverData{Winner: "Bot", WinnerID: "me"})

	out := wait(t, done)
	require.NoError(t, out.err)
	assert.True(t, out.result.Won)
	assert.Equal(t, 4, out.result.Moves)
	assert.Empty(t, conn.calls)
}

func TestGuestJoinsAndLoses(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	done := runBot(t, conn, Config{JoinCode: "ZZ9ZZ"}, quartz.NewReal())

	conn.push(t, protocol.MessageTypeWelcome, protocol.WelcomeData{PlayerID: "me"})
	conn.expect(t, "join ZZ9ZZ")
	conn.push(t, protocol.MessageTypeRoomJoined, protocol.RoomJoinedData{Code: "ZZ9ZZ"})
	conn.push(t, protocol.MessageTypeGameOver, protocol.GameOverData{Winner: "Other", WinnerID: "them"})

	out := wait(t, done)
	require.NoError(t, out.err)
	assert.False(t, out.result.Won)
	assert.Equal(t, "Other", out.result.Winner)
}

func TestJoinFailureStopsBot(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	done := runBot(t, conn, Config{JoinCode: "NOPE1"}, quartz.NewReal())

	conn.push(t, protocol.MessageTypeWelcome, protocol.WelcomeData{PlayerID: "me"})
	conn.expect(t, "join NOPE1")
	conn.push(t, protocol.MessageTypeError, protocol.ErrorData{Message: "Room not found", Code: "not_found"})

	out := wait(t, done)
	assert.ErrorContains(t, out.err, "Room not found")
}

func TestOpponentLeaving(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	done := runBot(t, conn, Config{}, quartz.NewReal())

	conn.push(t, protocol.MessageTypePlayerDisconnected, protocol.PlayerDisconnectedData{Message: "Bob disconnected"})
	assert.ErrorIs(t, wait(t, done).err, ErrOpponentLeft)
}

func TestConnectionLost(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	done := runBot(t, conn, Config{}, quartz.NewReal())

	close(conn.in)
	assert.ErrorIs(t, wait(t, done).err, ErrConnectionLost)
}

func TestRejectedMoveFallsBackToDraw(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	done := runBot(t, conn, Config{}, quartz.NewReal())

	conn.push(t, protocol.MessageTypeGameUpdate, turn(red(7), red(1)))
	conn.expect(t, "play 0 ")
	conn.push(t, protocol.MessageTypeError, protocol.ErrorData{Message: "Card must match"})
	conn.expect(t, "draw")
	conn.push(t, protocol.MessageTypeError, protocol.ErrorData{Message: "nope"})
	conn.expect(t, "draw")
	conn.push(t, protocol.MessageTypeError, protocol.ErrorData{Message: "still nope"})

	out := wait(t, done)
	assert.ErrorContains(t, out.err, "giving up after 3 rejected moves")
}

func TestThinkTimeUsesClock(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	conn := newFakeConn()
	runBot(t, conn, Config{ThinkTime: 2 * time.Second}, clock)

	conn.push(t, protocol.MessageTypeGameUpdate, turn(red(7), red(1)))

	select {
	case call := <-conn.calls:
		t.Fatalf("moved before thinking: %s", call)
	case <-time.After(50 * time.Millisecond):
	}

	require.Eventually(t, func() bool {
		clock.Advance(time.Second).MustWait(ctx)
		return len(conn.calls) > 0
	}, 5*time.Second, 10*time.Millisecond)
	conn.expect(t, "play 0 ")
}
