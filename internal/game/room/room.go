package room

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/ludo-rooms/internal/types"
)

// Player 房间中的玩家
type Player struct {
	Client types.ClientInterface
	Color  Color
}

// Room 游戏房间
// 所有字段由 RoomManager 的锁保护
type Room struct {
	ID         string    // 房间号
	MaxPlayers int       // 房间容量
	State      RoomState // 房间状态
	Players    []*Player // 按加入顺序
	CreatedAt  time.Time // 创建时间
}

// RoomManager 房间管理器
type RoomManager struct {
	recorder types.Recorder
	logger   *zap.Logger

	rooms    map[string]*Room
	sessions map[string]string // 会话 ID → 房间号
	mu       sync.Mutex
}

// NewRoomManager 创建房间管理器，recorder 可以为 nil
func NewRoomManager(recorder types.Recorder, logger *zap.Logger) *RoomManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomManager{
		recorder: recorder,
		logger:   logger,
		rooms:    make(map[string]*Room),
		sessions: make(map[string]string),
	}
}

// Snapshot 房间的只读副本
type Snapshot struct {
	ID         string
	MaxPlayers int
	State      RoomState
	Colors     []Color
	SessionIDs []string
}

// snapshot 拷贝房间状态，调用方需持有锁
func (r *Room) snapshot() Snapshot {
	s := Snapshot{
		ID:         r.ID,
		MaxPlayers: r.MaxPlayers,
		State:      r.State,
		Colors:     make([]Color, 0, len(r.Players)),
		SessionIDs: make([]string, 0, len(r.Players)),
	}
	for _, p := range r.Players {
		s.Colors = append(s.Colors, p.Color)
		s.SessionIDs = append(s.SessionIDs, p.Client.GetID())
	}
	return s
}
