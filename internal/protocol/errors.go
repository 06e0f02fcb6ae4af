package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002 // 速率限制
	ErrCodeRoomNotFound      = 2001
	ErrCodeRoomFull          = 2002
	ErrCodeNotInRoom         = 2003
	ErrCodeGameStarted       = 2004 // 游戏已开始
	ErrCodeRoomExists        = 2005
	ErrCodeInvalidRoomID     = 2006
	ErrCodeInvalidCapacity   = 2007
	ErrCodePaletteExhausted  = 2008
	ErrCodeAlreadyInRoom     = 2009
	ErrCodeColorMismatch     = 3001 // 颜色与玩家不符（仅服务端内部使用）
	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
// 客户端直接展示 message 字段，因此保持英文
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "Unknown error",
	ErrCodeInvalidMsg:        "Invalid message format",
	ErrCodeRateLimit:         "Too many requests",
	ErrCodeRoomNotFound:      "Room not found",
	ErrCodeRoomFull:          "Room is full",
	ErrCodeNotInRoom:         "You are not in a room",
	ErrCodeGameStarted:       "Game already started",
	ErrCodeRoomExists:        "Room already exists",
	ErrCodeInvalidRoomID:     "Invalid room ID",
	ErrCodeInvalidCapacity:   "Invalid maxPlayers (2-4)",
	ErrCodePaletteExhausted:  "Not enough colors defined",
	ErrCodeAlreadyInRoom:     "You are already in a room",
	ErrCodeColorMismatch:     "Color does not belong to you",
	ErrCodeServerMaintenance: "Server under maintenance",
}
