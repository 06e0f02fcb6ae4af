// Package model contains the terminal client model.
package model

import (
	"context"
	"encoding/json"

	"github.com/palemoky/ludo-rooms/internal/protocol"
)

// GamePhase represents the current client phase.
type GamePhase int

const (
	PhaseConnecting   GamePhase = iota
	PhaseLobby                  // 已连接，未在房间中
	PhaseWaiting                // 在房间中，等待满员
	PhasePlaying                // 游戏已开始
	PhaseDisconnected           // 连接已断开
)

// String 阶段名称
func (p GamePhase) String() string {
	switch p {
	case PhaseConnecting:
		return "连接中"
	case PhaseLobby:
		return "大厅"
	case PhaseWaiting:
		return "等待玩家"
	case PhasePlaying:
		return "游戏中"
	case PhaseDisconnected:
		return "已断开"
	default:
		return "未知"
	}
}

// Conn 模型依赖的服务器连接
type Conn interface {
	Connect(ctx context.Context) error
	Receive() (*protocol.Message, error)
	StartHeartbeat()
	Close()

	CreateRoom(roomID string, maxPlayers int) error
	JoinRoom(roomID string) error
	LeaveRoom() error
	RollDice(roomID, color string) error
	MoveToken(roomID, color string, index int, tokenData json.RawMessage) error
	ResetToken(roomID, color string, index int, tokenData json.RawMessage) error
}

// --- Tea Messages ---

// ServerMessage wraps a protocol message for tea.Msg.
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg indicates successful connection.
type ConnectedMsg struct{}

// ConnectionErrorMsg indicates a connection error.
type ConnectionErrorMsg struct {
	Err error
}

// ClearErrorMsg clears error message.
type ClearErrorMsg struct{}
