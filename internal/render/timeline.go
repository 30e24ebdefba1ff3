package render

import (
	"time"

	"github.com/diogo/monachat/internal/models"
	"github.com/diogo/monachat/internal/timeline"
)

// ItemKind distinguishes the render instructions produced by Project
type ItemKind int

const (
	KindDateSeparator ItemKind = iota
	KindMessage
)

const dateLabelLayout = "2 Jan 2006"

// Item is one display instruction of a projected timeline
type Item struct {
	Kind ItemKind

	// Date separator
	Label string

	// Message group item
	Message     models.Message
	GroupStart  bool
	GroupEnd    bool
	StatusLabel string // empty for assistant messages
	Body        string // text messages
	Image       string // image messages
	Caption     string // image messages, optional
}

// Project turns an ordered timeline into display instructions: a date
// separator whenever the calendar day changes, and one item per message
// with its grouping edges and status label. It never reorders, filters or
// mutates msgs, and repeated calls on the same input yield equal output.
func Project(msgs []models.Message, now time.Time) []Item {
	items := make([]Item, 0, len(msgs)+4)
	lastKey := ""
	emitted := false

	for i, msg := range msgs {
		key := dateKey(msg)
		if !emitted || key != lastKey {
			items = append(items, Item{
				Kind:  KindDateSeparator,
				Label: DateLabel(messageDate(msg, now), now),
			})
			lastKey = key
			emitted = true
		}

		item := Item{
			Kind:       KindMessage,
			Message:    msg,
			GroupStart: i == 0 || breaksGroup(msgs[i-1], msg),
			GroupEnd:   i == len(msgs)-1 || breaksGroup(msgs[i+1], msg),
		}
		if msg.Role == models.RoleUser {
			item.StatusLabel = StatusLabel(msg.Status)
		}
		if msg.IsImage() {
			item.Image = msg.ImageData
			item.Caption = msg.Content
		} else {
			item.Body = msg.Content
		}
		items = append(items, item)
	}

	return items
}

// StatusLabel returns the delivery label of a user message.
// Unknown or empty statuses read as sent.
func StatusLabel(status models.Status) string {
	switch status {
	case models.StatusRead:
		return models.LabelRead
	case models.StatusDelivered:
		return models.LabelDelivered
	default:
		return models.LabelSent
	}
}

// DateLabel returns "Today", "Yesterday" or a "2 Jan 2006" label for t
// relative to now, comparing local calendar dates.
func DateLabel(t, now time.Time) string {
	switch CalendarDaysBetween(t, now) {
	case 0:
		return "Today"
	case 1:
		return "Yesterday"
	default:
		return t.In(time.Local).Format(dateLabelLayout)
	}
}

// CalendarDaysBetween returns the number of local calendar days from a to b.
// Both dates are rebuilt as UTC midnights before subtracting, so a daylight
// saving change between them does not alter the count.
func CalendarDaysBetween(a, b time.Time) int {
	a, b = a.In(time.Local), b.In(time.Local)
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func breaksGroup(neighbor, msg models.Message) bool {
	return neighbor.Role != msg.Role || dateKey(neighbor) != dateKey(msg)
}

func dateKey(msg models.Message) string {
	if msg.DateKey != "" {
		return msg.DateKey
	}
	if !msg.Timestamp.IsZero() {
		return timeline.DateKeyOf(msg.Timestamp)
	}
	return ""
}

// messageDate recovers the calendar date of a message, preferring the
// absolute timestamp over the stored key
func messageDate(msg models.Message, now time.Time) time.Time {
	if !msg.Timestamp.IsZero() {
		return msg.Timestamp
	}
	if msg.DateKey != "" {
		if t, err := time.ParseInLocation("2006-01-02", msg.DateKey, time.Local); err == nil {
			return t
		}
	}
	return now
}
