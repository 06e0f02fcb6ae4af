package room

// RoomState 房间状态
type RoomState int

const (
	RoomStateFilling RoomState = iota // 等待玩家加入
	RoomStateActive                   // 满员，游戏进行中
)

func (s RoomState) String() string {
	switch s {
	case RoomStateFilling:
		return "filling"
	case RoomStateActive:
		return "active"
	default:
		return "unknown"
	}
}
