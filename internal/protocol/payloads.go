package protocol

import (
	"bytes"
	"encoding/json"
)

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
// 字段使用指针以区分缺失与零值，类型不符的字段按缺失处理
type CreateRoomPayload struct {
	RoomID     *string `json:"roomId"`
	MaxPlayers *int    `json:"maxPlayers"`
}

// UnmarshalJSON 宽松解析创建房间请求，只有非对象的载荷才报错
func (p *CreateRoomPayload) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*p = CreateRoomPayload{}
	if v, ok := fields["roomId"]; ok {
		var id string
		if json.Unmarshal(v, &id) == nil && !isNull(v) {
			p.RoomID = &id
		}
	}
	if v, ok := fields["maxPlayers"]; ok {
		var n int
		if json.Unmarshal(v, &n) == nil && !isNull(v) {
			p.MaxPlayers = &n
		}
	}
	return nil
}

// RoomIDOrEmpty 返回房间号，缺失时为空串
func (p CreateRoomPayload) RoomIDOrEmpty() string {
	if p.RoomID == nil {
		return ""
	}
	return *p.RoomID
}

// MaxPlayersOrZero 返回人数上限，缺失时为 0
func (p CreateRoomPayload) MaxPlayersOrZero() int {
	if p.MaxPlayers == nil {
		return 0
	}
	return *p.MaxPlayers
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// JoinRoomPayload 加入房间请求
// 兼容两种形式：裸字符串 "abc" 或对象 {"roomId": "abc"}
type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

// UnmarshalJSON 解析加入房间请求
func (p *JoinRoomPayload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &p.RoomID)
	}

	type plain JoinRoomPayload
	var v plain
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*p = JoinRoomPayload(v)
	return nil
}

// RollDicePayload 掷骰子请求
type RollDicePayload struct {
	RoomID string `json:"roomId"`
	Color  string `json:"color"`
}

// TokenMovedPayload 移动棋子请求
type TokenMovedPayload struct {
	RoomID    string          `json:"roomId"`
	Index     int             `json:"index"`
	Color     string          `json:"color"`
	TokenData json.RawMessage `json:"tokenData"` // 客户端自定义数据，服务端不解析
}

// TokenResetPayload 棋子重置请求
type TokenResetPayload struct {
	RoomID    string          `json:"roomId"`
	Color     string          `json:"color"`
	Index     int             `json:"index"`
	TokenData json.RawMessage `json:"tokenData"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	SessionID string `json:"sessionId"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"serverTimestamp"` // 服务器时间戳（毫秒）
}

// RoomCreatedPayload 房间创建成功响应
type RoomCreatedPayload struct {
	RoomID string `json:"roomId"`
	Color  string `json:"color"`
}

// RoomJoinedPayload 加入房间成功响应
type RoomJoinedPayload struct {
	RoomID string `json:"roomId"`
	Color  string `json:"color"`
}

// PlayerJoinedPayload 玩家加入通知，按加入顺序列出房间内所有颜色
type PlayerJoinedPayload struct {
	Players []string `json:"players"`
}

// StartGamePayload 游戏开始通知
type StartGamePayload struct {
	Players []string `json:"players"`
}

// PlayerLeftPayload 玩家离开通知
type PlayerLeftPayload struct {
	Color string `json:"color"`
}

// DiceRolledPayload 骰子结果广播
type DiceRolledPayload struct {
	Value int    `json:"value"`
	Color string `json:"color"`
}

// TokenMovedEventPayload 棋子移动广播
type TokenMovedEventPayload struct {
	Index     int             `json:"index"`
	Color     string          `json:"color"`
	TokenData json.RawMessage `json:"tokenData"`
}

// TokenResetEventPayload 棋子重置广播
type TokenResetEventPayload struct {
	Color     string          `json:"color"`
	Index     int             `json:"index"`
	TokenData json.RawMessage `json:"tokenData"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- HTTP 接口 ---

// RoomListItem 房间列表项
type RoomListItem struct {
	RoomID      string   `json:"roomId"`
	PlayerCount int      `json:"playerCount"`
	MaxPlayers  int      `json:"maxPlayers"`
	Started     bool     `json:"started"`
	Players     []string `json:"players"`
}

// StatsPayload /stats 返回的服务器统计
type StatsPayload struct {
	OnlineCount  int              `json:"onlineCount"`
	RoomCount    int              `json:"roomCount"`
	ActiveRooms  int              `json:"activeRooms"`
	Rooms        []RoomListItem   `json:"rooms"`
	GamesStarted int64            `json:"gamesStarted,omitempty"`
	DiceRolls    map[string]int64 `json:"diceRolls,omitempty"` // 点数 → 次数
}
