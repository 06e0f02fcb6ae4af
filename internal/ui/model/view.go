package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/ludo-rooms/internal/ui/common"
)

// View renders the model.
func (m *OnlineModel) View() string {
	var b strings.Builder

	b.WriteString(common.TitleStyle(common.DiceIcon + " Ludo"))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(common.BoxStyle.Render(m.viewport.View()))
	b.WriteString("\n")

	if m.error != "" {
		b.WriteString(common.ErrorStyle.Render(m.error))
		b.WriteString("\n")
	}

	b.WriteString(common.PromptStyle.Render(m.input.View()))

	return common.DocStyle.Render(b.String())
}

func (m *OnlineModel) statusLine() string {
	parts := []string{m.phase.String()}

	if m.roomID != "" {
		parts = append(parts,
			"房间 "+common.TruncateName(m.roomID, 12),
			"你 "+common.RenderColor(m.color),
			"玩家 "+common.JoinColors(m.players),
		)
	}

	if m.phase != PhaseConnecting && m.phase != PhaseDisconnected {
		icon := common.LatencyOK
		if m.latency > 200 {
			icon = common.LatencyBad
		}
		parts = append(parts, fmt.Sprintf("%s %dms", icon, m.latency))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(parts, common.MutedStyle.Render(" | ")))
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
