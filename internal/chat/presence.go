package chat

import (
	"math/rand"
	"sync"
	"time"

	"github.com/diogo/monachat/internal/models"
	"github.com/diogo/monachat/internal/timeline"
)

// Header status texts
const (
	StatusOnline       = "Online"
	StatusSeenRecently = "Last seen recently"
	StatusTyping       = "Typing…"
)

// TypingText is the indicator shown while a contact composes a reply
func TypingText(name string) string {
	return name + " is typing..."
}

// IdleStatus returns the header status of a contact that is not composing.
// coin decides Elly's status and must return a value in [0, 1).
func IdleStatus(id models.ContactID, now time.Time, coin func() float64) string {
	switch id {
	case models.ContactAlex:
		return StatusOnline
	case models.ContactElly:
		if coin == nil {
			coin = rand.Float64
		}
		if coin() > 0.5 {
			return StatusOnline
		}
		return StatusSeenRecently
	default:
		return "Last seen " + timeline.FormatTime(now)
	}
}

// PresenceEvent is a change of a contact's composing state
type PresenceEvent struct {
	ContactID models.ContactID
	Name      string
	Composing bool
}

// Tracker is a Presence that remembers who is composing and forwards
// changes to an optional listener
type Tracker struct {
	mu        sync.RWMutex
	composing map[models.ContactID]string
	listener  func(PresenceEvent)
}

// Ensure Tracker implements Presence
var _ Presence = (*Tracker)(nil)

// NewTracker creates a Tracker. listener may be nil.
func NewTracker(listener func(PresenceEvent)) *Tracker {
	return &Tracker{
		composing: make(map[models.ContactID]string),
		listener:  listener,
	}
}

// Composing implements Presence
func (t *Tracker) Composing(id models.ContactID, name string) {
	t.mu.Lock()
	t.composing[id] = name
	listener := t.listener
	t.mu.Unlock()

	if listener != nil {
		listener(PresenceEvent{ContactID: id, Name: name, Composing: true})
	}
}

// Idle implements Presence
func (t *Tracker) Idle(id models.ContactID) {
	t.mu.Lock()
	name := t.composing[id]
	delete(t.composing, id)
	listener := t.listener
	t.mu.Unlock()

	if listener != nil {
		listener(PresenceEvent{ContactID: id, Name: name, Composing: false})
	}
}

// IsComposing reports whether id is composing a reply
func (t *Tracker) IsComposing(id models.ContactID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.composing[id]
	return ok
}

// Status returns the header status text for id
func (t *Tracker) Status(id models.ContactID, now time.Time) string {
	if t.IsComposing(id) {
		return StatusTyping
	}
	return IdleStatus(id, now, nil)
}
