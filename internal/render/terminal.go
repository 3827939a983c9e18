// Package render draws paging results as terminal cards.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"biblebot/internal/paging"
)

var errorColor = lipgloss.Color("#D7263D")

// Terminal renders results for a terminal of the given width.
type Terminal struct {
	Width int
}

func (t Terminal) Result(res paging.Result) string {
	if res.Level == paging.LevelError {
		return lipgloss.NewStyle().Foreground(errorColor).Bold(true).Render(res.Message)
	}
	pages := res.All()
	if len(pages) == 0 {
		return res.Message
	}

	cards := make([]string, 0, len(pages)+1)
	for _, p := range pages {
		cards = append(cards, t.Page(p))
	}
	if res.Truncated() {
		cards = append(cards, lipgloss.NewStyle().Faint(true).Render(
			fmt.Sprintf("%d more results not shown", res.Dropped)))
	}
	return strings.Join(cards, "\n")
}

func (t Terminal) Page(p paging.Page) string {
	accent := lipgloss.Color(Hex(p.Color))
	title := lipgloss.NewStyle().Bold(true).Foreground(accent)
	name := lipgloss.NewStyle().Underline(true)
	faint := lipgloss.NewStyle().Faint(true)

	var b strings.Builder
	b.WriteString(title.Render(p.Title))
	if p.Description != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(p.Description, "\n"))
	}
	for _, f := range p.Fields {
		b.WriteString("\n\n")
		b.WriteString(name.Render(f.Name))
		b.WriteString("\n")
		b.WriteString(f.Value)
	}
	if p.Footer.Text != "" {
		b.WriteString("\n\n")
		b.WriteString(faint.Render(p.Footer.Text))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	if t.Width > 4 {
		box = box.Width(t.Width - 2)
	}
	return box.Render(b.String())
}

// Hex formats an embed color as #RRGGBB.
func Hex(color int) string {
	return fmt.Sprintf("#%06X", color&0xFFFFFF)
}
