package model

import (
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/palemoky/ludo-rooms/internal/protocol"
	"github.com/palemoky/ludo-rooms/internal/protocol/codec"
	"github.com/palemoky/ludo-rooms/internal/ui/common"
)

// handleServerMessage 根据服务器消息更新状态
func (m *OnlineModel) handleServerMessage(msg *protocol.Message) tea.Cmd {
	switch msg.Type {
	case protocol.MsgConnected:
		if p, err := codec.ParsePayload[protocol.ConnectedPayload](msg); err == nil {
			m.sessionID = p.SessionID
		}

	case protocol.MsgPong:
		if p, err := codec.ParsePayload[protocol.PongPayload](msg); err == nil {
			m.latency = time.Now().UnixMilli() - p.ClientTimestamp
		}

	case protocol.MsgRoomCreated:
		if p, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg); err == nil {
			m.enterRoom(p.RoomID, p.Color)
			m.players = []string{p.Color}
			m.appendLine(fmt.Sprintf("🏠 已创建房间 %s，你的颜色 %s", p.RoomID, common.RenderColor(p.Color)))
		}

	case protocol.MsgRoomJoined:
		if p, err := codec.ParsePayload[protocol.RoomJoinedPayload](msg); err == nil {
			m.enterRoom(p.RoomID, p.Color)
			m.appendLine(fmt.Sprintf("🚪 已加入房间 %s，你的颜色 %s", p.RoomID, common.RenderColor(p.Color)))
		}

	case protocol.MsgPlayerJoined:
		if p, err := codec.ParsePayload[protocol.PlayerJoinedPayload](msg); err == nil {
			m.players = p.Players
			m.appendLine(fmt.Sprintf("👤 房间玩家: %s", common.JoinColors(p.Players)))
		}

	case protocol.MsgStartGame:
		if p, err := codec.ParsePayload[protocol.StartGamePayload](msg); err == nil {
			m.players = p.Players
			m.phase = PhasePlaying
			m.appendLine(fmt.Sprintf("🎮 游戏开始: %s", common.JoinColors(p.Players)))
		}

	case protocol.MsgPlayerLeft:
		if p, err := codec.ParsePayload[protocol.PlayerLeftPayload](msg); err == nil {
			m.players = slices.DeleteFunc(slices.Clone(m.players), func(c string) bool { return c == p.Color })
			m.appendLine(fmt.Sprintf("👋 %s 离开了房间", common.RenderColor(p.Color)))
		}

	case protocol.MsgDiceRolled:
		if p, err := codec.ParsePayload[protocol.DiceRolledPayload](msg); err == nil {
			m.appendLine(fmt.Sprintf("%s %s 掷出了 %d", common.DiceIcon, common.RenderColor(p.Color), p.Value))
		}

	case protocol.MsgTokenMoved:
		if p, err := codec.ParsePayload[protocol.TokenMovedEventPayload](msg); err == nil {
			m.appendLine(fmt.Sprintf("➡️  %s 移动棋子 %d %s", common.RenderColor(p.Color), p.Index, string(p.TokenData)))
		}

	case protocol.MsgTokenReset:
		if p, err := codec.ParsePayload[protocol.TokenResetEventPayload](msg); err == nil {
			m.appendLine(fmt.Sprintf("↩️  %s 的棋子 %d 回到起点 %s", common.RenderColor(p.Color), p.Index, string(p.TokenData)))
		}

	case protocol.MsgError:
		if p, err := codec.ParsePayload[protocol.ErrorPayload](msg); err == nil {
			m.appendLine(common.ErrorStyle.Render("❌ " + p.Message))
			return m.showError(p.Message)
		}

	default:
		m.logger.Debug("忽略未知消息", zap.String("type", string(msg.Type)))
	}
	return nil
}

func (m *OnlineModel) enterRoom(roomID, color string) {
	m.roomID = roomID
	m.color = color
	m.phase = PhaseWaiting
}
