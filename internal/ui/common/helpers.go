// Package common provides shared utilities for the UI.
package common

import "strings"

// TruncateName truncates a name to the specified maximum length.
func TruncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) > maxLen {
		return string(runes[:maxLen-1]) + "…"
	}
	return name
}

// JoinColors 渲染一组玩家颜色
func JoinColors(colors []string) string {
	if len(colors) == 0 {
		return MutedStyle.Render("-")
	}
	parts := make([]string, len(colors))
	for i, c := range colors {
		parts[i] = RenderColor(c)
	}
	return strings.Join(parts, "  ")
}
