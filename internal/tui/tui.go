package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/protocol"
	"github.com/lox/unoduel/internal/view"
)

// Conn is the game connection the TUI drives.
type Conn interface {
	Messages() <-chan *protocol.Message
	PlayerID() string
	RoomCode() string
	CreateRoom() error
	JoinRoom(code string) error
	StartGame() error
	PlayCard(index int, color deck.Color) error
	DrawCard() error
	EndTurn() error
	SetName(name string) error
	Disconnect() error
}

// serverMsg carries one server message into the update loop.
type serverMsg struct{ msg *protocol.Message }

// disconnectedMsg signals that the server connection has closed.
type disconnectedMsg struct{}

// TUIModel is the Bubble Tea model for an interactive player.
type TUIModel struct {
	conn   Conn
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	gameLog     []string
	focusedPane int // 0 = log, 1 = input
	quitting    bool
	connected   bool

	// Session state, all of it taken from server messages
	name         string
	participants []protocol.Participant
	players      [2]string
	game         *view.Game

	width       int
	height      int
	initialized bool
}

// NewTUIModel creates a TUI for conn. conn must already be connected.
func NewTUIModel(conn Conn, logger *log.Logger) *TUIModel {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Type a command, 'help' for the list"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(focusColor).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &TUIModel{
		conn:        conn,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
		connected:   true,
	}
}

// Run shows the TUI until the player quits, the server goes away or ctx is
// cancelled.
func Run(ctx context.Context, conn Conn, logger *log.Logger) error {
	p := tea.NewProgram(NewTUIModel(conn, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init starts listening for server messages
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, listen(m.conn.Messages()))
}

// listen waits for the next server message.
func listen(messages <-chan *protocol.Message) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-messages
		if !ok {
			return disconnectedMsg{}
		}
		return serverMsg{msg: msg}
	}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case serverMsg:
		m.handleServerMessage(msg.msg)
		return m, listen(m.conn.Messages())

	case disconnectedMsg:
		m.connected = false
		m.game = nil
		m.addLog(ErrorStyle.Render("Connection to server lost. Press Esc to exit."))
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, m.quit()
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				line := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if cmd := m.submit(line); cmd != nil {
					return m, cmd
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *TUIModel) quit() tea.Cmd {
	m.quitting = true
	if err := m.conn.Disconnect(); err != nil {
		m.logger.Debug("Disconnect failed", "error", err)
	}
	return tea.Sequence(tea.ClearScreen, tea.Quit)
}

// submit runs a prompt line and returns a command only when the TUI should
// exit.
func (m *TUIModel) submit(line string) tea.Cmd {
	if line == "" {
		return nil
	}

	cmd, err := ParseCommand(line)
	if err != nil {
		m.addLog(ErrorStyle.Render(err.Error()))
		return nil
	}
	if cmd.Kind == CmdQuit {
		return m.quit()
	}
	if cmd.Kind == CmdHelp {
		m.addLog(InfoStyle.Render(helpText))
		return nil
	}
	if !m.connected {
		m.addLog(ErrorStyle.Render("Not connected"))
		return nil
	}

	if err := m.execute(cmd); err != nil {
		m.addLog(ErrorStyle.Render(err.Error()))
	}
	return nil
}

// execute sends the intent behind cmd. Legality is the server's call; this
// only catches what the player could not have meant.
func (m *TUIModel) execute(cmd Command) error {
	switch cmd.Kind {
	case CmdCreate:
		return m.conn.CreateRoom()
	case CmdJoin:
		return m.conn.JoinRoom(cmd.Code)
	case CmdStart:
		return m.conn.StartGame()
	case CmdPlay:
		if m.game != nil {
			if cmd.Index >= len(m.game.Hand) {
				return fmt.Errorf("you only hold %d cards", len(m.game.Hand))
			}
			if m.game.Hand[cmd.Index].IsWild() && cmd.Color == "" {
				return fmt.Errorf("name a color for the wild: play %d red|blue|green|yellow", cmd.Index+1)
			}
		}
		return m.conn.PlayCard(cmd.Index, cmd.Color)
	case CmdDraw:
		return m.conn.DrawCard()
	case CmdEnd:
		return m.conn.EndTurn()
	case CmdName:
		return m.conn.SetName(cmd.Name)
	default:
		return fmt.Errorf("unsupported command %d", cmd.Kind)
	}
}

// handleServerMessage folds a server message into the log and the session
// state.
func (m *TUIModel) handleServerMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MessageTypeWelcome, protocol.MessageTypeNameSet:
		var data protocol.WelcomeData
		if m.decode(msg, &data) {
			m.name = data.Name
			if msg.Type == protocol.MessageTypeWelcome {
				m.addLog(SuccessStyle.Render(fmt.Sprintf("Connected as %s. Type 'create' or 'join CODE'.", data.Name)))
			} else {
				m.addLog(SuccessStyle.Render("You are now " + data.Name))
			}
		}

	case protocol.MessageTypeRoomCreated:
		var data protocol.RoomCodeData
		if m.decode(msg, &data) {
			m.participants = []protocol.Participant{{ID: m.conn.PlayerID(), Name: m.name}}
			m.addLog(SuccessStyle.Render(fmt.Sprintf("Room %s created. Share the code and wait for an opponent.", data.Code)))
		}

	case protocol.MessageTypeRoomJoined:
		var data protocol.RoomJoinedData
		if m.decode(msg, &data) {
			m.participants = data.Participants
			m.addLog(SuccessStyle.Render(fmt.Sprintf("Joined room %s. Waiting for the host to start.", data.Code)))
		}

	case protocol.MessageTypePlayerJoined:
		var data protocol.PlayerJoinedData
		if m.decode(msg, &data) {
			m.participants = data.Participants
			m.addLog(SuccessStyle.Render("An opponent joined. Type 'start' to deal."))
		}

	case protocol.MessageTypeGameStarted:
		var data view.Start
		if m.decode(msg, &data) {
			m.players = [2]string{data.Player1Name, data.Player2Name}
			m.game = &data.Game
			m.addLog(HeaderStyle.Render(fmt.Sprintf(" %s vs %s ", data.Player1Name, data.Player2Name)))
			m.addLog("Starting card: " + RenderCard(data.DiscardTop))
			m.addTurnPrompt()
		}

	case protocol.MessageTypeGameUpdate:
		var data view.Game
		if m.decode(msg, &data) {
			m.game = &data
			if data.LastAction != "" {
				m.addLog(data.LastAction)
			}
			m.addTurnPrompt()
		}

	case protocol.MessageTypeGameOver:
		var data protocol.GameOverData
		if m.decode(msg, &data) {
			m.game = nil
			m.participants = nil
			if data.WinnerID == m.conn.PlayerID() {
				m.addLog(SuccessStyle.Render("You win!"))
			} else {
				m.addLog(WarningStyle.Render(data.Winner + " wins."))
			}
			m.addLog(InfoStyle.Render("Type 'create' or 'join CODE' to play again."))
		}

	case protocol.MessageTypePlayerDisconnected:
		var data protocol.PlayerDisconnectedData
		if m.decode(msg, &data) {
			m.game = nil
			m.participants = nil
			m.addLog(WarningStyle.Render(data.Message + ". The room is closed."))
		}

	case protocol.MessageTypeError:
		var data protocol.ErrorData
		if m.decode(msg, &data) {
			m.addLog(ErrorStyle.Render(data.Message))
		}

	default:
		m.logger.Debug("Ignoring message", "type", msg.Type)
	}
}

func (m *TUIModel) decode(msg *protocol.Message, v any) bool {
	if err := msg.Decode(v); err != nil {
		m.logger.Warn("Bad server message", "type", msg.Type, "error", err)
		return false
	}
	return true
}

func (m *TUIModel) addTurnPrompt() {
	if m.game != nil && m.game.IsMyTurn {
		m.addLog(HandInfoStyle.Render("Your turn."))
	}
}

// addLog appends a line to the game log and keeps the view at the bottom.
func (m *TUIModel) addLog(line string) {
	m.gameLog = append(m.gameLog, line)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.GotoBottom()
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent) + 2

	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderFor(1)).
		Width(max(m.width-2, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-actionHeight-2, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight
	if !m.initialized && m.logViewport.Width > 1 && m.logViewport.Height > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderFor(0)).
		Width(m.logViewport.Width).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *TUIModel) borderFor(pane int) lipgloss.TerminalColor {
	if m.focusedPane == pane {
		return focusColor
	}
	return borderColor
}

// renderSidebarPane shows the room and the public pile state.
func (m *TUIModel) renderSidebarPane() string {
	var b strings.Builder

	if code := m.conn.RoomCode(); code != "" {
		b.WriteString(WarningStyle.Render("Room " + code))
		b.WriteString("\n\n")
	}

	if m.game == nil {
		if len(m.participants) > 0 {
			b.WriteString(InfoStyle.Render("Players:"))
			b.WriteString("\n")
			for _, p := range m.participants {
				b.WriteString("  " + p.Name + "\n")
			}
		}
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%s vs %s\n\n", m.players[0], m.players[1]))
	b.WriteString("Top:      " + RenderCard(m.game.DiscardTop) + "\n")
	b.WriteString("Color:    " + ColorStyle(m.game.CurrentColor).Render(m.game.CurrentColor.String()) + "\n")
	b.WriteString(fmt.Sprintf("Opponent: %d cards\n", m.game.OpponentCardCount))
	return b.String()
}

// renderActionPane shows the hand, the prompt and key help.
func (m *TUIModel) renderActionPane() string {
	var b strings.Builder

	switch {
	case m.game == nil:
		b.WriteString(InfoStyle.Render("No game in progress"))
	case m.game.IsMyTurn:
		b.WriteString(HandInfoStyle.Render("Your hand: ") + renderHand(m.game.Hand))
		b.WriteString("\n")
		if m.game.CanEndTurn {
			b.WriteString(InfoStyle.Render("play N, or end to pass"))
		} else {
			b.WriteString(InfoStyle.Render("play N [color], or draw"))
		}
	default:
		b.WriteString(HandInfoStyle.Render("Your hand: ") + renderHand(m.game.Hand))
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render("Waiting for opponent..."))
	}
	b.WriteString("\n")

	b.WriteString(m.actionInput.View())
	b.WriteString("\n")

	if m.focusedPane == 0 {
		b.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, Home/End, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Esc to quit"))
	}
	return b.String()
}

// renderHand numbers cards from 1 to match the play command.
func renderHand(hand []deck.Card) string {
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = fmt.Sprintf("%d:%s", i+1, RenderCard(c))
	}
	return strings.Join(parts, "  ")
}
