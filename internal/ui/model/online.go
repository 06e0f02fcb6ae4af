package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const (
	maxLogLines  = 200
	errorTimeout = 3 * time.Second
)

var errNotInRoom = errors.New("尚未加入房间")

// OnlineModel is the terminal client model.
type OnlineModel struct {
	conn   Conn
	logger *zap.Logger
	phase  GamePhase
	error  string

	// Session info
	sessionID string
	roomID    string
	color     string
	players   []string

	// Network state
	latency int64

	// Event log
	lines    []string
	viewport viewport.Model

	// UI components
	input  textinput.Model
	width  int
	height int
}

// NewOnlineModel creates a new OnlineModel.
func NewOnlineModel(conn Conn, logger *zap.Logger) *OnlineModel {
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "输入命令，如 /create abc 2"
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()

	return &OnlineModel{
		conn:     conn,
		logger:   logger,
		phase:    PhaseConnecting,
		input:    ti,
		viewport: viewport.New(60, 12),
	}
}

func (m *OnlineModel) Init() tea.Cmd {
	return tea.Batch(
		m.connectToServer(),
		textinput.Blink,
	)
}

func (m *OnlineModel) connectToServer() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.conn.Connect(ctx); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

func (m *OnlineModel) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.conn.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

// --- Accessors ---

func (m *OnlineModel) Phase() GamePhase  { return m.phase }
func (m *OnlineModel) SessionID() string { return m.sessionID }
func (m *OnlineModel) RoomID() string    { return m.roomID }
func (m *OnlineModel) Color() string     { return m.color }
func (m *OnlineModel) Players() []string { return m.players }
func (m *OnlineModel) Latency() int64    { return m.latency }
func (m *OnlineModel) Error() string     { return m.error }
func (m *OnlineModel) Lines() []string   { return m.lines }

// Update handles tea messages.
func (m *OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.conn.Close()
			return m, tea.Quit
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			return m, m.handleInput(line)
		}

	case ConnectedMsg:
		m.phase = PhaseLobby
		m.conn.StartHeartbeat()
		m.appendLine("✅ 已连接服务器，输入 /help 查看命令")
		return m, m.listenForMessages()

	case ConnectionErrorMsg:
		if m.phase == PhaseConnecting {
			m.error = fmt.Sprintf("无法连接到服务器: %v，按 ESC 退出", msg.Err)
		} else {
			m.phase = PhaseDisconnected
			m.error = "连接已断开，按 ESC 退出"
		}
		m.logger.Warn("连接错误", zap.Error(msg.Err))
		return m, nil

	case ServerMessage:
		cmd := m.handleServerMessage(msg.Msg)
		return m, tea.Batch(cmd, m.listenForMessages())

	case ClearErrorMsg:
		m.error = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *OnlineModel) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	// 标题、状态、输入框与边框约占 10 行
	m.viewport.Width = max(msg.Width-6, 20)
	m.viewport.Height = max(msg.Height-10, 5)
	m.viewport.GotoBottom()
}

// handleInput 执行一行输入命令
func (m *OnlineModel) handleInput(line string) tea.Cmd {
	if line == "" {
		return nil
	}

	cmd, err := ParseCommand(line)
	if err != nil {
		return m.showError(err.Error())
	}

	if cmd.Kind == CmdQuit {
		m.conn.Close()
		return tea.Quit
	}
	if cmd.Kind == CmdHelp {
		for _, l := range HelpLines {
			m.appendLine(l)
		}
		return nil
	}
	if m.phase == PhaseConnecting || m.phase == PhaseDisconnected {
		return m.showError("未连接到服务器")
	}

	if err := m.execute(cmd); err != nil {
		return m.showError(err.Error())
	}
	return nil
}

func (m *OnlineModel) execute(cmd Command) error {
	switch cmd.Kind {
	case CmdCreate:
		return m.conn.CreateRoom(cmd.RoomID, cmd.MaxPlayers)

	case CmdJoin:
		return m.conn.JoinRoom(cmd.RoomID)

	case CmdLeave:
		if m.roomID == "" {
			return errNotInRoom
		}
		if err := m.conn.LeaveRoom(); err != nil {
			return err
		}
		m.appendLine(fmt.Sprintf("👋 已离开房间 %s", m.roomID))
		m.leaveRoom()
		return nil

	case CmdRoll:
		if m.roomID == "" {
			return errNotInRoom
		}
		return m.conn.RollDice(m.roomID, m.color)

	case CmdMove:
		if m.roomID == "" {
			return errNotInRoom
		}
		return m.conn.MoveToken(m.roomID, m.color, cmd.Index, tokenData(cmd.Position))

	case CmdReset:
		if m.roomID == "" {
			return errNotInRoom
		}
		return m.conn.ResetToken(m.roomID, m.color, cmd.Index, tokenData(cmd.Position))
	}
	return nil
}

// tokenData 把可选位置编码为 {"position": n}
func tokenData(pos *int) json.RawMessage {
	if pos == nil {
		return nil
	}
	data, _ := json.Marshal(map[string]int{"position": *pos})
	return data
}

func (m *OnlineModel) leaveRoom() {
	m.roomID = ""
	m.color = ""
	m.players = nil
	m.phase = PhaseLobby
}

func (m *OnlineModel) showError(text string) tea.Cmd {
	m.error = text
	return tea.Tick(errorTimeout, func(time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}

// appendLine 追加一行事件日志，只保留最近 maxLogLines 行
func (m *OnlineModel) appendLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLogLines {
		m.lines = m.lines[len(m.lines)-maxLogLines:]
	}
	m.viewport.SetContent(joinLines(m.lines))
	m.viewport.GotoBottom()
}
