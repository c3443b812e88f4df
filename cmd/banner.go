package cmd

import (
	"context"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"timefill/portal"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	readyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#2ECC71")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2ECC71")).
			Padding(0, 1)
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F5A623")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// bannerPrompter renders every operator prompt as a banner before waiting.
type bannerPrompter struct {
	next portal.Prompter
}

func (p bannerPrompter) Wait(ctx context.Context, message string) error {
	style := noticeStyle
	if strings.HasPrefix(message, "READY TO LODGE") {
		style = readyStyle
	}
	return p.next.Wait(ctx, style.Render(message))
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		String()
}
