package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgCreateRoom MessageType = "createRoom" // 创建房间
	MsgJoinRoom   MessageType = "joinRoom"   // 加入房间
	MsgLeaveRoom  MessageType = "leaveRoom"  // 离开房间

	// 游戏操作
	MsgRollDice   MessageType = "rollDice"   // 掷骰子
	MsgTokenMoved MessageType = "tokenMoved" // 移动棋子（服务端广播同名事件）
	MsgTokenReset MessageType = "tokenReset" // 棋子被撞回起点（服务端广播同名事件）
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong

	// 房间相关
	MsgRoomCreated  MessageType = "roomCreated"  // 房间创建成功（仅创建者）
	MsgRoomJoined   MessageType = "roomJoined"   // 加入房间成功（仅加入者）
	MsgPlayerJoined MessageType = "playerJoined" // 有玩家加入（全房间）
	MsgPlayerLeft   MessageType = "playerLeft"   // 有玩家离开（全房间）
	MsgStartGame    MessageType = "startGame"    // 房间满员，游戏开始

	// 游戏流程
	MsgDiceRolled MessageType = "diceRolled" // 骰子结果

	// 错误
	MsgError MessageType = "error" // 错误消息
)
