package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/monachat/internal/media"
	"github.com/diogo/monachat/internal/models"
	"github.com/diogo/monachat/internal/render"
)

// ViewOptions controls how a projected timeline is drawn
type ViewOptions struct {
	Width       int
	ContactName string
	// Markdown renders assistant bodies through glamour
	Markdown     bool
	MarkdownOpts render.Options
}

// RenderTimeline draws projected timeline items as chat bubbles.
// User messages are right-aligned, the contact's on the left; the sender
// label is shown once per group.
func RenderTimeline(items []render.Item, opts ViewOptions) string {
	width := opts.Width
	if width < 20 {
		width = 20
	}
	bubbleWidth := width * 7 / 10

	var sb strings.Builder
	for _, item := range items {
		switch item.Kind {
		case render.KindDateSeparator:
			label := dateSeparatorStyle.Render(item.Label)
			sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, label))
			sb.WriteString("\n\n")

		case render.KindMessage:
			sb.WriteString(renderMessage(item, opts, width, bubbleWidth))
			sb.WriteString("\n")
			if item.GroupEnd {
				sb.WriteString("\n")
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func renderMessage(item render.Item, opts ViewOptions, width, bubbleWidth int) string {
	isUser := item.Message.Role == models.RoleUser

	var lines []string
	if item.GroupStart {
		if isUser {
			lines = append(lines, userLabelStyle.Render("You"))
		} else {
			name := opts.ContactName
			if name == "" {
				name = "Them"
			}
			lines = append(lines, assistantLabelStyle.Render(name))
		}
	}

	body := messageBody(item, opts, bubbleWidth)
	bubble := assistantBubbleStyle
	if isUser {
		bubble = userBubbleStyle
	}
	if lipgloss.Width(body) > bubbleWidth {
		bubble = bubble.Width(bubbleWidth)
	}
	lines = append(lines, bubble.Render(body))

	meta := metaStyle.Render(item.Message.Time)
	if item.StatusLabel != "" {
		status := metaStyle.Render(item.StatusLabel)
		if item.Message.Status == models.StatusRead {
			status = statusReadStyle.Render(item.StatusLabel)
		}
		meta += metaStyle.Render(" · ") + status
	}
	lines = append(lines, meta)

	align := lipgloss.Left
	if isUser {
		align = lipgloss.Right
	}
	block := lipgloss.JoinVertical(align, lines...)
	return lipgloss.PlaceHorizontal(width, align, block)
}

func messageBody(item render.Item, opts ViewOptions, bubbleWidth int) string {
	if item.Message.IsImage() {
		body := imageStyle.Render("🖼  " + media.Describe(item.Image))
		if item.Caption != "" {
			body += "\n" + item.Caption
		}
		return body
	}

	if opts.Markdown && item.Message.Role == models.RoleAssistant {
		return render.MessageBody(item.Body, opts.MarkdownOpts.WithWidth(bubbleWidth-2))
	}
	return item.Body
}
