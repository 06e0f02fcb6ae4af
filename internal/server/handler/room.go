package handler

import (
	"encoding/json"
	"errors"

	"github.com/palemoky/ludo-rooms/internal/apperrors"
	"github.com/palemoky/ludo-rooms/internal/protocol"
	"github.com/palemoky/ludo-rooms/internal/protocol/codec"
	"github.com/palemoky/ludo-rooms/internal/types"
)

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	// 维护模式检查
	if h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeServerMaintenance))
		return
	}

	roomID, maxPlayers, err := decodeCreateRoom(msg.Payload)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if _, err := h.roomManager.CreateRoom(client, roomID, maxPlayers); err != nil {
		h.sendError(client, err)
	}
}

// decodeCreateRoom 解析创建房间请求
// 字段缺失或类型不符时取零值，交给房间管理器按 InvalidRoomId → InvalidCapacity 的顺序校验
func decodeCreateRoom(raw json.RawMessage) (string, int, error) {
	var payload protocol.CreateRoomPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return "", 0, err
		}
	}
	return payload.RoomIDOrEmpty(), payload.MaxPlayersOrZero(), nil
}

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	// 维护模式检查
	if h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeServerMaintenance))
		return
	}

	// 缺失或不是字符串的房间号按空房间号查找
	var roomID string
	if payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg); err == nil {
		roomID = payload.RoomID
	}

	if _, err := h.roomManager.JoinRoom(client, roomID); err != nil {
		h.sendError(client, err)
	}
}

// handleLeaveRoom 处理离开房间，不在房间中时忽略
func (h *Handler) handleLeaveRoom(client types.ClientInterface) {
	if err := h.roomManager.LeaveRoom(client); err != nil && !errors.Is(err, apperrors.ErrNotInRoom) {
		h.sendError(client, err)
	}
}
