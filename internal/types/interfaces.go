package types

import (
	"github.com/palemoky/ludo-rooms/internal/protocol"
	"github.com/palemoky/ludo-rooms/internal/storage"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
}

// ClientInterface 定义客户端接口
type ClientInterface interface {
	GetID() string
	GetRoom() string
	SetRoom(roomID string)
	SendMessage(msg *protocol.Message)
	Close()
}

// Recorder 接收房间快照与统计事件，实现方不得阻塞调用方
type Recorder interface {
	RoomSaved(data *storage.RoomData)
	RoomDeleted(roomID string)
	GameStarted(roomID string)
	DiceRolled(value int)
}
