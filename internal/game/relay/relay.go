// Package relay 转发对局事件（掷骰、棋子移动、棋子重置）
package relay

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/palemoky/ludo-rooms/internal/game/dice"
	"github.com/palemoky/ludo-rooms/internal/game/room"
	"github.com/palemoky/ludo-rooms/internal/protocol"
	"github.com/palemoky/ludo-rooms/internal/protocol/codec"
	"github.com/palemoky/ludo-rooms/internal/types"
)

// Broadcaster 校验发送者身份后向房间广播
type Broadcaster interface {
	BroadcastAsOwner(roomID, sessionID string, color room.Color, msg *protocol.Message) error
}

// Relay 对局事件转发器
// 房间不存在、发送者不在房间或颜色不符时静默丢弃
type Relay struct {
	rooms    Broadcaster
	dice     dice.Source
	recorder types.Recorder
	logger   *zap.Logger
}

// New 创建 Relay，src 为 nil 时使用默认随机源，recorder 可以为 nil
func New(rooms Broadcaster, src dice.Source, recorder types.Recorder, logger *zap.Logger) *Relay {
	if src == nil {
		src = dice.NewSource()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		rooms:    rooms,
		dice:     src,
		recorder: recorder,
		logger:   logger,
	}
}

// RollDice 掷骰子并广播结果，返回点数；被丢弃时返回 0
func (r *Relay) RollDice(client types.ClientInterface, roomID string, color room.Color) int {
	value := dice.Roll(r.dice)
	msg := codec.MustNewMessage(protocol.MsgDiceRolled, protocol.DiceRolledPayload{
		Value: value,
		Color: string(color),
	})

	if !r.send(client, roomID, color, msg) {
		return 0
	}
	if r.recorder != nil {
		r.recorder.DiceRolled(value)
	}
	r.logger.Debug("🎲 掷骰子",
		zap.String("room", roomID),
		zap.String("color", string(color)),
		zap.Int("value", value),
	)
	return value
}

// MoveToken 广播棋子移动，tokenData 原样转发
func (r *Relay) MoveToken(client types.ClientInterface, roomID string, color room.Color, index int, tokenData json.RawMessage) bool {
	msg := codec.MustNewMessage(protocol.MsgTokenMoved, protocol.TokenMovedEventPayload{
		Index:     index,
		Color:     string(color),
		TokenData: tokenData,
	})
	return r.send(client, roomID, color, msg)
}

// ResetToken 广播棋子被吃回起点
func (r *Relay) ResetToken(client types.ClientInterface, roomID string, color room.Color, index int, tokenData json.RawMessage) bool {
	msg := codec.MustNewMessage(protocol.MsgTokenReset, protocol.TokenResetEventPayload{
		Color:     string(color),
		Index:     index,
		TokenData: tokenData,
	})
	return r.send(client, roomID, color, msg)
}

func (r *Relay) send(client types.ClientInterface, roomID string, color room.Color, msg *protocol.Message) bool {
	if err := r.rooms.BroadcastAsOwner(roomID, client.GetID(), color, msg); err != nil {
		r.logger.Debug("事件已丢弃",
			zap.String("type", string(msg.Type)),
			zap.String("room", roomID),
			zap.String("session", client.GetID()),
			zap.String("color", string(color)),
			zap.Error(err),
		)
		return false
	}
	return true
}
