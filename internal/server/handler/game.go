package handler

import (
	"go.uber.org/zap"

	"github.com/palemoky/ludo-rooms/internal/game/room"
	"github.com/palemoky/ludo-rooms/internal/protocol"
	"github.com/palemoky/ludo-rooms/internal/protocol/codec"
	"github.com/palemoky/ludo-rooms/internal/types"
)

// 对局事件解析失败时静默丢弃，与校验失败一致

// handleRollDice 处理掷骰子
func (h *Handler) handleRollDice(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.RollDicePayload](msg)
	if err != nil {
		h.dropMalformed(client, msg, err)
		return
	}
	h.relay.RollDice(client, payload.RoomID, room.Color(payload.Color))
}

// handleTokenMoved 处理棋子移动
func (h *Handler) handleTokenMoved(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.TokenMovedPayload](msg)
	if err != nil {
		h.dropMalformed(client, msg, err)
		return
	}
	h.relay.MoveToken(client, payload.RoomID, room.Color(payload.Color), payload.Index, payload.TokenData)
}

// handleTokenReset 处理棋子重置
func (h *Handler) handleTokenReset(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.TokenResetPayload](msg)
	if err != nil {
		h.dropMalformed(client, msg, err)
		return
	}
	h.relay.ResetToken(client, payload.RoomID, room.Color(payload.Color), payload.Index, payload.TokenData)
}

func (h *Handler) dropMalformed(client types.ClientInterface, msg *protocol.Message, err error) {
	h.logger.Debug("对局事件格式错误，已丢弃",
		zap.String("type", string(msg.Type)),
		zap.String("session", client.GetID()),
		zap.Error(err),
	)
}
