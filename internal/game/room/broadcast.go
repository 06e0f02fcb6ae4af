package room

import "github.com/palemoky/ludo-rooms/internal/protocol"

// broadcast 广播消息给房间内所有玩家
func (r *Room) broadcast(msg *protocol.Message) {
	for _, p := range r.Players {
		p.Client.SendMessage(msg)
	}
}

// colors 按加入顺序返回颜色列表
func (r *Room) colors() []string {
	out := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, string(p.Color))
	}
	return out
}

// findPlayer 查找会话对应的玩家
func (r *Room) findPlayer(sessionID string) (int, *Player) {
	for i, p := range r.Players {
		if p.Client.GetID() == sessionID {
			return i, p
		}
	}
	return -1, nil
}

// nextColor 返回未被占用的第一个颜色
func (r *Room) nextColor() (Color, bool) {
	for _, c := range Palette {
		taken := false
		for _, p := range r.Players {
			if p.Color == c {
				taken = true
				break
			}
		}
		if !taken {
			return c, true
		}
	}
	return "", false
}

// isFull 是否满员
func (r *Room) isFull() bool {
	return len(r.Players) >= r.MaxPlayers
}
