// Package common provides shared styles and utilities for the UI.
package common

import (
	"github.com/charmbracelet/lipgloss"
)

// Icon constants
const (
	DiceIcon   = "🎲"
	TokenIcon  = "●"
	LatencyOK  = "🟢"
	LatencyBad = "🔴"
)

// Lipgloss Styles
var (
	DocStyle    = lipgloss.NewStyle().Margin(1, 2)
	TitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	PromptStyle = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	MutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	// 棋子颜色，与服务端调色板一致
	playerStyles = map[string]lipgloss.Style{
		"red":    lipgloss.NewStyle().Foreground(lipgloss.Color("#CD0000")).Bold(true),
		"blue":   lipgloss.NewStyle().Foreground(lipgloss.Color("#1E90FF")).Bold(true),
		"yellow": lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		"green":  lipgloss.NewStyle().Foreground(lipgloss.Color("#32CD32")).Bold(true),
	}
)

// ColorStyle 返回玩家颜色对应的样式，未知颜色使用灰色
func ColorStyle(color string) lipgloss.Style {
	if s, ok := playerStyles[color]; ok {
		return s
	}
	return MutedStyle
}

// RenderColor 用玩家颜色渲染颜色名
func RenderColor(color string) string {
	return ColorStyle(color).Render(TokenIcon + " " + color)
}
