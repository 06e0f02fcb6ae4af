package room

import (
	"unicode/utf8"

	"github.com/palemoky/ludo-rooms/internal/apperrors"
)

// Color 玩家颜色
type Color string

const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
)

// Palette 按加入顺序分配的颜色
var Palette = []Color{ColorRed, ColorBlue, ColorYellow, ColorGreen}

const (
	maxRoomIDLength = 20 // 房间号最大长度（字符）
	minPlayers      = 2
)

// MaxPlayers 房间容量上限，等于调色板大小
func MaxPlayers() int {
	return len(Palette)
}

// ValidateRoomID 校验房间号
func ValidateRoomID(id string) error {
	if id == "" || utf8.RuneCountInString(id) > maxRoomIDLength {
		return apperrors.ErrInvalidRoomID
	}
	return nil
}

// ValidateCapacity 校验房间容量
func ValidateCapacity(n int) error {
	if n < minPlayers || n > MaxPlayers() {
		return apperrors.ErrInvalidCapacity
	}
	return nil
}

// IsPaletteColor 判断是否为合法颜色
func IsPaletteColor(c Color) bool {
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}
