package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageType distinguishes plain text from image messages
type MessageType string

const (
	TypeText  MessageType = "text"
	TypeImage MessageType = "image"
)

// Status is the delivery status of a user message.
// It only moves forward: sent -> delivered -> read.
type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

// rank returns the position of the status in the delivery order, or -1
func (s Status) rank() int {
	switch s {
	case StatusSent:
		return 0
	case StatusDelivered:
		return 1
	case StatusRead:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return s.rank() >= 0
}

// Next returns the status that follows s, if any
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusSent:
		return StatusDelivered, true
	case StatusDelivered:
		return StatusRead, true
	default:
		return "", false
	}
}

// CanAdvanceTo reports whether next is the immediate successor of s
func (s Status) CanAdvanceTo(next Status) bool {
	n, ok := s.Next()
	return ok && n == next
}

// Message is a single entry in a contact's timeline
type Message struct {
	ID        string      `json:"id"`
	Role      Role        `json:"role"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	ImageData string      `json:"imageData,omitempty"`
	Time      string      `json:"time"`
	DateKey   string      `json:"dateKey"`
	Status    Status      `json:"status,omitempty"` // user messages only
	Timestamp time.Time   `json:"timestamp"`
}

// IsImage reports whether the message carries an image payload
func (m Message) IsImage() bool {
	return m.Type == TypeImage
}

// NewMessageID returns a fresh message identifier
func NewMessageID() string {
	return uuid.NewString()
}
