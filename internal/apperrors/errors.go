package apperrors

import (
	"errors"

	"github.com/palemoky/ludo-rooms/internal/protocol"
)

// GameError 游戏错误（房间管理与事件转发共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newGameError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrInvalidRoomID    = newGameError(protocol.ErrCodeInvalidRoomID)
	ErrInvalidCapacity  = newGameError(protocol.ErrCodeInvalidCapacity)
	ErrRoomExists       = newGameError(protocol.ErrCodeRoomExists)
	ErrRoomNotFound     = newGameError(protocol.ErrCodeRoomNotFound)
	ErrRoomFull         = newGameError(protocol.ErrCodeRoomFull)
	ErrPaletteExhausted = newGameError(protocol.ErrCodePaletteExhausted)
	ErrGameStarted      = newGameError(protocol.ErrCodeGameStarted)
	ErrAlreadyInRoom    = newGameError(protocol.ErrCodeAlreadyInRoom)
	ErrNotInRoom        = newGameError(protocol.ErrCodeNotInRoom)
	ErrColorMismatch    = newGameError(protocol.ErrCodeColorMismatch)
)

// CodeOf 返回错误对应的错误码，非 GameError 返回 ErrCodeUnknown
func CodeOf(err error) int {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.Code
	}
	return protocol.ErrCodeUnknown
}
