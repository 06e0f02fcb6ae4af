package room

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/ludo-rooms/internal/apperrors"
	"github.com/palemoky/ludo-rooms/internal/protocol"
	"github.com/palemoky/ludo-rooms/internal/protocol/codec"
	"github.com/palemoky/ludo-rooms/internal/types"
)

// CreateRoom 创建房间，创建者获得第一个颜色
func (rm *RoomManager) CreateRoom(client types.ClientInterface, roomID string, maxPlayers int) (Color, error) {
	if err := ValidateRoomID(roomID); err != nil {
		return "", err
	}
	if err := ValidateCapacity(maxPlayers); err != nil {
		return "", err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, in := rm.sessions[client.GetID()]; in {
		return "", apperrors.ErrAlreadyInRoom
	}
	if _, exists := rm.rooms[roomID]; exists {
		return "", apperrors.ErrRoomExists
	}

	color := Palette[0]
	room := &Room{
		ID:         roomID,
		MaxPlayers: maxPlayers,
		State:      RoomStateFilling,
		Players:    make([]*Player, 0, maxPlayers),
		CreatedAt:  time.Now(),
	}
	room.Players = append(room.Players, &Player{Client: client, Color: color})

	rm.rooms[roomID] = room
	rm.sessions[client.GetID()] = roomID
	client.SetRoom(roomID)

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomID: roomID,
		Color:  string(color),
	}))

	rm.saveLocked(room)

	rm.logger.Info("🏠 房间已创建",
		zap.String("room", roomID),
		zap.String("session", client.GetID()),
		zap.Int("max_players", maxPlayers),
	)

	return color, nil
}

// JoinRoom 加入房间
// 依次发送 roomJoined（仅加入者）、playerJoined（全房间），满员时再广播一次 startGame
// 房间号不做格式校验，不存在即 RoomNotFound
func (rm *RoomManager) JoinRoom(client types.ClientInterface, roomID string) (Color, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, in := rm.sessions[client.GetID()]; in {
		return "", apperrors.ErrAlreadyInRoom
	}

	room, exists := rm.rooms[roomID]
	if !exists {
		return "", apperrors.ErrRoomNotFound
	}
	if room.isFull() {
		return "", apperrors.ErrRoomFull
	}
	if room.State != RoomStateFilling {
		return "", apperrors.ErrGameStarted
	}

	color, ok := room.nextColor()
	if !ok {
		return "", apperrors.ErrPaletteExhausted
	}

	room.Players = append(room.Players, &Player{Client: client, Color: color})
	rm.sessions[client.GetID()] = roomID
	client.SetRoom(roomID)

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		RoomID: roomID,
		Color:  string(color),
	}))

	// 通知房间内所有玩家（包括加入者）
	room.broadcast(codec.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Players: room.colors(),
	}))

	rm.logger.Info("👤 玩家加入房间",
		zap.String("room", roomID),
		zap.String("session", client.GetID()),
		zap.String("color", string(color)),
	)

	if room.isFull() {
		room.State = RoomStateActive
		room.broadcast(codec.MustNewMessage(protocol.MsgStartGame, protocol.StartGamePayload{
			Players: room.colors(),
		}))
		if rm.recorder != nil {
			rm.recorder.GameStarted(roomID)
		}
		rm.logger.Info("🎮 游戏开始", zap.String("room", roomID), zap.Strings("players", room.colors()))
	}

	rm.saveLocked(room)

	return color, nil
}

// LeaveRoom 主动离开房间，不在房间中时返回 ErrNotInRoom
func (rm *RoomManager) LeaveRoom(client types.ClientInterface) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if !rm.removeLocked(client.GetID()) {
		return apperrors.ErrNotInRoom
	}
	client.SetRoom("")
	return nil
}

// HandleDisconnect 连接断开时移除玩家
func (rm *RoomManager) HandleDisconnect(client types.ClientInterface) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.removeLocked(client.GetID()) {
		client.SetRoom("")
	}
}

// removeLocked 从所在房间移除会话，通知剩余玩家，房间为空时删除
func (rm *RoomManager) removeLocked(sessionID string) bool {
	roomID, ok := rm.sessions[sessionID]
	if !ok {
		return false
	}
	delete(rm.sessions, sessionID)

	room, exists := rm.rooms[roomID]
	if !exists {
		return false
	}

	idx, player := room.findPlayer(sessionID)
	if player == nil {
		return false
	}
	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)

	room.broadcast(codec.MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
		Color: string(player.Color),
	}))

	rm.logger.Info("👋 玩家离开房间",
		zap.String("room", roomID),
		zap.String("session", sessionID),
		zap.String("color", string(player.Color)),
	)

	if len(room.Players) == 0 {
		delete(rm.rooms, roomID)
		if rm.recorder != nil {
			rm.recorder.RoomDeleted(roomID)
		}
		rm.logger.Info("🏠 房间已解散", zap.String("room", roomID))
	} else {
		rm.saveLocked(room)
	}
	return true
}

// BroadcastAsOwner 校验 sessionID 属于房间且持有 color 后广播消息
func (rm *RoomManager) BroadcastAsOwner(roomID, sessionID string, color Color, msg *protocol.Message) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, exists := rm.rooms[roomID]
	if !exists {
		return apperrors.ErrRoomNotFound
	}

	_, player := room.findPlayer(sessionID)
	if player == nil {
		return apperrors.ErrNotInRoom
	}
	if player.Color != color {
		return apperrors.ErrColorMismatch
	}

	room.broadcast(msg)
	return nil
}

// GetRoom 获取房间快照
func (rm *RoomManager) GetRoom(roomID string) (Snapshot, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, exists := rm.rooms[roomID]
	if !exists {
		return Snapshot{}, false
	}
	return room.snapshot(), true
}

// RoomOf 返回会话所在的房间号
func (rm *RoomManager) RoomOf(sessionID string) (string, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	roomID, ok := rm.sessions[sessionID]
	return roomID, ok
}

// RoomCount 当前房间数
func (rm *RoomManager) RoomCount() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.rooms)
}

// GetActiveGamesCount 获取进行中的游戏数量
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	count := 0
	for _, room := range rm.rooms {
		if room.State == RoomStateActive {
			count++
		}
	}
	return count
}

// GetRoomList 获取房间列表，按房间号排序
func (rm *RoomManager) GetRoomList() []protocol.RoomListItem {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rooms := make([]protocol.RoomListItem, 0, len(rm.rooms))
	for id, room := range rm.rooms {
		rooms = append(rooms, protocol.RoomListItem{
			RoomID:      id,
			PlayerCount: len(room.Players),
			MaxPlayers:  room.MaxPlayers,
			Started:     room.State == RoomStateActive,
			Players:     room.colors(),
		})
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].RoomID < rooms[j].RoomID })
	return rooms
}

// saveLocked 把房间快照交给 recorder，调用方需持有锁
func (rm *RoomManager) saveLocked(room *Room) {
	if rm.recorder == nil {
		return
	}
	rm.recorder.RoomSaved(room.ToRoomData())
}
