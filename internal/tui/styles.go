package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Wiki parchment gold for branding.
const wikiGold = "#D4A542"

// Infinite Wiki ASCII art banner.
var bannerArt = []string{
	"  ██╗███╗   ██╗███████╗██╗███╗   ██╗██╗████████╗███████╗",
	"  ██║████╗  ██║██╔════╝██║████╗  ██║██║╚══██╔══╝██╔════╝",
	"  ██║██╔██╗ ██║█████╗  ██║██╔██╗ ██║██║   ██║   █████╗  ",
	"  ██║██║╚██╗██║██╔══╝  ██║██║╚██╗██║██║   ██║   ██╔══╝  ",
	"  ██║██║ ╚████║██║     ██║██║ ╚████║██║   ██║   ███████╗",
	"  ╚═╝╚═╝  ╚═══╝╚═╝     ╚═╝╚═╝  ╚═══╝╚═╝   ╚═╝   ╚══════╝",
	"                        W I K I                         ",
}

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Banner      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	Title       lipgloss.Style
	System      lipgloss.Style
	Tips        lipgloss.Style
	Error       lipgloss.Style
	Prompt      lipgloss.Style
	Source      lipgloss.Style
	Separator   lipgloss.Style
	StatusBar   lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Banner:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(wikiGold)),
		TabActive:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Padding(0, 1),
		TabInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1),
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(wikiGold)),
		System:      lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Tips:        lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Prompt:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Source:      lipgloss.NewStyle().Foreground(lipgloss.Color("109")),
		Separator:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		StatusBar:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}
}

// RenderBanner returns the ASCII art banner as a styled string.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range bannerArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// welcomeTips contains getting started tips displayed under the banner.
var welcomeTips = []string{
	"Tips for getting started:",
	"  • Type any topic and press Enter to explore it",
	"  • Paste a URL or YouTube link to read or summarize it",
	"  • /open a PDF to read and question it, /search to ground answers in the web",
	"  • /help lists every command; Ctrl+T opens a new tab",
}

// RenderWelcomeTips returns styled welcome tips.
func (s Styles) RenderWelcomeTips() string {
	var b strings.Builder
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.Tips.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
