package client

import (
	"encoding/json"
	"time"

	"github.com/palemoky/ludo-rooms/internal/protocol"
	"github.com/palemoky/ludo-rooms/internal/protocol/codec"
)

// --- 便捷方法 ---

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}

// CreateRoom 创建房间
func (c *Client) CreateRoom(roomID string, maxPlayers int) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{
		RoomID:     &roomID,
		MaxPlayers: &maxPlayers,
	}))
}

// JoinRoom 加入房间
func (c *Client) JoinRoom(roomID string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomID: roomID,
	}))
}

// LeaveRoom 离开房间
func (c *Client) LeaveRoom() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgLeaveRoom, nil))
}

// RollDice 掷骰子
func (c *Client) RollDice(roomID, color string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgRollDice, protocol.RollDicePayload{
		RoomID: roomID,
		Color:  color,
	}))
}

// MoveToken 移动棋子，tokenData 原样转发给房间内其他玩家
func (c *Client) MoveToken(roomID, color string, index int, tokenData json.RawMessage) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgTokenMoved, protocol.TokenMovedPayload{
		RoomID:    roomID,
		Index:     index,
		Color:     color,
		TokenData: tokenData,
	}))
}

// ResetToken 棋子回到起点
func (c *Client) ResetToken(roomID, color string, index int, tokenData json.RawMessage) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgTokenReset, protocol.TokenResetPayload{
		RoomID:    roomID,
		Color:     color,
		Index:     index,
		TokenData: tokenData,
	}))
}
