package room

import (
	"github.com/palemoky/ludo-rooms/internal/storage"
)

// ToRoomData 将 Room 转换为可序列化的 RoomData，调用方需持有锁
func (r *Room) ToRoomData() *storage.RoomData {
	data := &storage.RoomData{
		ID:         r.ID,
		State:      r.State.String(),
		MaxPlayers: r.MaxPlayers,
		Players:    make([]storage.PlayerData, 0, len(r.Players)),
		CreatedAt:  r.CreatedAt.Unix(),
	}

	for _, p := range r.Players {
		data.Players = append(data.Players, storage.PlayerData{
			SessionID: p.Client.GetID(),
			Color:     string(p.Color),
		})
	}

	return data
}
