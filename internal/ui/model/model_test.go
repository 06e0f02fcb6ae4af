package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/ludo-rooms/internal/protocol"
	"github.com/palemoky/ludo-rooms/internal/protocol/codec"
)

// fakeConn 记录模型发出的请求
type fakeConn struct {
	mu         sync.Mutex
	calls      []string
	connectErr error
	closed     bool
	heartbeat  bool
	incoming   chan *protocol.Message
}

func newFakeConn() *fakeConn {
	return &fakeConn{incoming: make(chan *protocol.Message, 8)}
}

func (f *fakeConn) record(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return nil
}

func (f *fakeConn) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeConn) Connect(context.Context) error { return f.connectErr }
func (f *fakeConn) Receive() (*protocol.Message, error) {
	msg, ok := <-f.incoming
	if !ok {
		return nil, errors.New("closed")
	}
	return msg, nil
}
func (f *fakeConn) StartHeartbeat() { f.heartbeat = true }
func (f *fakeConn) Close()          { f.closed = true }

func (f *fakeConn) CreateRoom(roomID string, maxPlayers int) error {
	return f.record("create %s %d", roomID, maxPlayers)
}
func (f *fakeConn) JoinRoom(roomID string) error { return f.record("join %s", roomID) }
func (f *fakeConn) LeaveRoom() error             { return f.record("leave") }
func (f *fakeConn) RollDice(roomID, color string) error {
	return f.record("roll %s %s", roomID, color)
}
func (f *fakeConn) MoveToken(roomID, color string, index int, data json.RawMessage) error {
	return f.record("move %s %s %d %s", roomID, color, index, string(data))
}
func (f *fakeConn) ResetToken(roomID, color string, index int, data json.RawMessage) error {
	return f.record("reset %s %s %d %s", roomID, color, index, string(data))
}

func newConnectedModel(t *testing.T) (*OnlineModel, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	m := NewOnlineModel(conn, nil)
	m.Update(ConnectedMsg{})
	require.Equal(t, PhaseLobby, m.Phase())
	return m, conn
}

func typeLine(m *OnlineModel, line string) tea.Cmd {
	m.input.SetValue(line)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func serverMsg(m *OnlineModel, msgType protocol.MessageType, payload any) {
	m.Update(ServerMessage{Msg: codec.MustNewMessage(msgType, payload)})
}

func TestOnlineModel_Connect(t *testing.T) {
	t.Parallel()

	m, conn := newConnectedModel(t)
	assert.True(t, conn.heartbeat)
	assert.NotEmpty(t, m.Lines())

	serverMsg(m, protocol.MsgConnected, protocol.ConnectedPayload{SessionID: "s-1"})
	assert.Equal(t, "s-1", m.SessionID())
}

func TestOnlineModel_ConnectError(t *testing.T) {
	t.Parallel()

	conn := newFakeConn()
	conn.connectErr = errors.New("refused")
	m := NewOnlineModel(conn, nil)

	msg := m.connectToServer()()
	m.Update(msg)

	assert.Equal(t, PhaseConnecting, m.Phase())
	assert.Contains(t, m.Error(), "refused")

	typeLine(m, "/join abc")
	assert.Empty(t, conn.Calls())
	assert.Equal(t, "未连接到服务器", m.Error())
}

func TestOnlineModel_Disconnected(t *testing.T) {
	t.Parallel()

	m, _ := newConnectedModel(t)
	m.Update(ConnectionErrorMsg{Err: errors.New("eof")})

	assert.Equal(t, PhaseDisconnected, m.Phase())
	assert.Contains(t, m.Error(), "连接已断开")
}

func TestOnlineModel_RoomFlow(t *testing.T) {
	t.Parallel()

	m, conn := newConnectedModel(t)

	typeLine(m, "/create abc 2")
	assert.Equal(t, []string{"create abc 2"}, conn.Calls())
	assert.Empty(t, m.input.Value())

	serverMsg(m, protocol.MsgRoomCreated, protocol.RoomCreatedPayload{RoomID: "abc", Color: "red"})
	assert.Equal(t, PhaseWaiting, m.Phase())
	assert.Equal(t, "abc", m.RoomID())
	assert.Equal(t, "red", m.Color())
	assert.Equal(t, []string{"red"}, m.Players())

	serverMsg(m, protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{Players: []string{"red", "blue"}})
	serverMsg(m, protocol.MsgStartGame, protocol.StartGamePayload{Players: []string{"red", "blue"}})
	assert.Equal(t, PhasePlaying, m.Phase())
	assert.Equal(t, []string{"red", "blue"}, m.Players())

	typeLine(m, "/roll")
	typeLine(m, "/move 1 7")
	typeLine(m, "/reset 2")
	assert.Equal(t, []string{
		"create abc 2",
		"roll abc red",
		`move abc red 1 {"position":7}`,
		"reset abc red 2 ",
	}, conn.Calls())

	serverMsg(m, protocol.MsgDiceRolled, protocol.DiceRolledPayload{Value: 4, Color: "red"})
	last := m.Lines()[len(m.Lines())-1]
	assert.Contains(t, last, "4")

	serverMsg(m, protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{Color: "blue"})
	assert.Equal(t, []string{"red"}, m.Players())

	typeLine(m, "/leave")
	assert.Equal(t, PhaseLobby, m.Phase())
	assert.Empty(t, m.RoomID())
	assert.Empty(t, m.Color())
	assert.Nil(t, m.Players())
}

func TestOnlineModel_Join(t *testing.T) {
	t.Parallel()

	m, conn := newConnectedModel(t)

	typeLine(m, "/join abc")
	assert.Equal(t, []string{"join abc"}, conn.Calls())

	serverMsg(m, protocol.MsgRoomJoined, protocol.RoomJoinedPayload{RoomID: "abc", Color: "blue"})
	assert.Equal(t, PhaseWaiting, m.Phase())
	assert.Equal(t, "blue", m.Color())
}

func TestOnlineModel_RequiresRoom(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"/roll", "/move 1", "/reset 1", "/leave"} {
		t.Run(line, func(t *testing.T) {
			t.Parallel()
			m, conn := newConnectedModel(t)
			cmd := typeLine(m, line)
			assert.NotNil(t, cmd)
			assert.Empty(t, conn.Calls())
			assert.Equal(t, errNotInRoom.Error(), m.Error())
		})
	}
}

func TestOnlineModel_InputErrors(t *testing.T) {
	t.Parallel()

	m, conn := newConnectedModel(t)

	assert.Nil(t, typeLine(m, ""))
	assert.Empty(t, m.Error())

	typeLine(m, "hello")
	assert.Equal(t, ErrNotCommand.Error(), m.Error())

	typeLine(m, "/create abc")
	assert.Contains(t, m.Error(), "用法")
	assert.Empty(t, conn.Calls())

	m.Update(ClearErrorMsg{})
	assert.Empty(t, m.Error())
}

func TestOnlineModel_ServerError(t *testing.T) {
	t.Parallel()

	m, _ := newConnectedModel(t)
	serverMsg(m, protocol.MsgError, protocol.ErrorPayload{Code: 1003, Message: "Room abc is full"})

	assert.Equal(t, "Room abc is full", m.Error())
	assert.Contains(t, m.Lines()[len(m.Lines())-1], "Room abc is full")
}

func TestOnlineModel_Latency(t *testing.T) {
	t.Parallel()

	m, _ := newConnectedModel(t)
	serverMsg(m, protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: time.Now().Add(-50 * time.Millisecond).UnixMilli(),
		ServerTimestamp: time.Now().UnixMilli(),
	})
	assert.GreaterOrEqual(t, m.Latency(), int64(50))
	assert.Contains(t, m.View(), "ms")
}

func TestOnlineModel_HelpAndQuit(t *testing.T) {
	t.Parallel()

	m, conn := newConnectedModel(t)
	before := len(m.Lines())
	typeLine(m, "/help")
	assert.Len(t, m.Lines(), before+len(HelpLines))

	cmd := typeLine(m, "/quit")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, conn.closed)
}

func TestOnlineModel_EscQuits(t *testing.T) {
	t.Parallel()

	m, conn := newConnectedModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, conn.closed)
}

func TestOnlineModel_LogCapped(t *testing.T) {
	t.Parallel()

	m, _ := newConnectedModel(t)
	for i := range maxLogLines + 10 {
		m.appendLine(fmt.Sprintf("line %d", i))
	}
	assert.Len(t, m.Lines(), maxLogLines)
	assert.Equal(t, fmt.Sprintf("line %d", maxLogLines+9), m.Lines()[maxLogLines-1])
}

func TestOnlineModel_View(t *testing.T) {
	t.Parallel()

	m, _ := newConnectedModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	serverMsg(m, protocol.MsgRoomCreated, protocol.RoomCreatedPayload{RoomID: "abc", Color: "red"})

	view := m.View()
	assert.Contains(t, view, "Ludo")
	assert.Contains(t, view, "abc")
	assert.Contains(t, view, "red")
	assert.True(t, strings.Contains(view, PhaseWaiting.String()))
}
