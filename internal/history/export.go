package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/diogo/monachat/internal/models"
	"github.com/diogo/monachat/internal/timeline"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ParseExportFormat accepts "markdown", "md" or "json"
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use markdown or json)", s)
	}
}

// Export renders a contact's timeline in the given format
func Export(tl *timeline.Store, id models.ContactID, format ExportFormat) ([]byte, error) {
	switch format {
	case ExportFormatJSON:
		return ExportToJSON(tl, id)
	default:
		md, err := ExportToMarkdown(tl, id)
		return []byte(md), err
	}
}

// ExportToMarkdown exports a contact's timeline to Markdown
func ExportToMarkdown(tl *timeline.Store, id models.ContactID) (string, error) {
	contact, err := tl.Contact(id)
	if err != nil {
		return "", err
	}
	msgs, err := tl.Messages(id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("# Chat with ")
	sb.WriteString(contact.Name)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n\n---\n", len(msgs)))

	lastDay := ""
	for _, msg := range msgs {
		if msg.DateKey != "" && msg.DateKey != lastDay {
			sb.WriteString("\n### ")
			sb.WriteString(msg.DateKey)
			sb.WriteString("\n")
			lastDay = msg.DateKey
		}

		name := "You"
		if msg.Role == models.RoleAssistant {
			name = contact.Name
		}

		sb.WriteString("\n**")
		sb.WriteString(name)
		sb.WriteString("**")
		if msg.Time != "" {
			sb.WriteString(" (")
			sb.WriteString(msg.Time)
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		if msg.IsImage() {
			sb.WriteString("[Image]")
			if msg.Content != "" {
				sb.WriteString(" ")
				sb.WriteString(msg.Content)
			}
		} else {
			sb.WriteString(msg.Content)
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// ExportToJSON exports a contact's timeline to JSON
func ExportToJSON(tl *timeline.Store, id models.ContactID) ([]byte, error) {
	contact, err := tl.Contact(id)
	if err != nil {
		return nil, err
	}
	msgs, err := tl.Messages(id)
	if err != nil {
		return nil, err
	}

	type ExportConversation struct {
		ContactID  models.ContactID `json:"contact_id"`
		Name       string           `json:"name"`
		Avatar     string           `json:"avatar"`
		ExportedAt time.Time        `json:"exported_at"`
		Messages   []models.Message `json:"messages"`
	}

	return json.MarshalIndent(ExportConversation{
		ContactID:  id,
		Name:       contact.Name,
		Avatar:     contact.Avatar,
		ExportedAt: time.Now(),
		Messages:   msgs,
	}, "", "  ")
}
