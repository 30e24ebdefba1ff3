// Package timeline owns the per-contact message timelines and contact
// metadata of a chat session.
package timeline

import (
	"fmt"
	"strings"
	"sync"
	"time"

	apierrors "github.com/diogo/monachat/internal/errors"
	"github.com/diogo/monachat/internal/logging"
	"github.com/diogo/monachat/internal/models"
)

const (
	dateKeyLayout = "2006-01-02"
	clockLayout   = "3:04 PM"
	previewRunes  = 40
)

// Snapshot is a deep copy of both root structures
type Snapshot struct {
	Conversations map[models.ContactID][]models.Message
	Contacts      models.ContactSet
}

// Persister receives a full snapshot after every mutation
type Persister interface {
	Persist(Snapshot) error
}

// PersisterFunc adapts a function to the Persister interface
type PersisterFunc func(Snapshot) error

// Persist implements Persister
func (f PersisterFunc) Persist(s Snapshot) error { return f(s) }

// Store holds every contact's timeline. It is safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	conversations map[models.ContactID][]models.Message
	contacts      models.ContactSet
	persister     Persister
}

// Option configures a Store
type Option func(*Store)

// WithPersister sets the hook invoked after every mutation
func WithPersister(p Persister) Option {
	return func(s *Store) {
		s.persister = p
	}
}

// New creates a store with an empty timeline and default metadata for
// every registered contact
func New(opts ...Option) *Store {
	s := &Store{
		conversations: make(map[models.ContactID][]models.Message),
		contacts:      models.DefaultContacts(),
	}
	for _, id := range models.ContactIDs() {
		s.conversations[id] = []models.Message{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPersister replaces the persistence hook
func (s *Store) SetPersister(p Persister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persister = p
}

// DateKeyOf returns the local calendar day of t as YYYY-MM-DD
func DateKeyOf(t time.Time) string {
	return t.In(time.Local).Format(dateKeyLayout)
}

// FormatTime returns the 12-hour clock form of t, e.g. "9:05 PM"
func FormatTime(t time.Time) string {
	return t.In(time.Local).Format(clockLayout)
}

// Append adds msg to the end of the contact's timeline and returns its id.
// An id is assigned when msg has none.
func (s *Store) Append(id models.ContactID, msg models.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, ok := s.conversations[id]
	if !ok {
		return "", apierrors.NewUnknownContactError(string(id))
	}

	if msg.ID == "" {
		msg.ID = models.NewMessageID()
	}
	s.conversations[id] = append(msgs, msg)
	s.persistLocked()

	return msg.ID, nil
}

// LastUserMessage returns the most recently appended user message
func (s *Store) LastUserMessage(id models.ContactID) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.conversations[id]
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.RoleUser {
			return msgs[i], true
		}
	}
	return models.Message{}, false
}

// Advance moves the status of the identified user message to next.
// Only the immediate successor of the current status is accepted.
func (s *Store) Advance(id models.ContactID, messageID string, next models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, ok := s.conversations[id]
	if !ok {
		return apierrors.NewUnknownContactError(string(id))
	}

	idx := indexOf(msgs, messageID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", apierrors.ErrMessageNotFound, messageID)
	}

	current := msgs[idx].Status
	if msgs[idx].Role != models.RoleUser || !current.CanAdvanceTo(next) {
		return fmt.Errorf("%w: %s -> %s", apierrors.ErrInvalidTransition, current, next)
	}

	msgs[idx].Status = next
	s.persistLocked()
	return nil
}

// Message returns the identified message
func (s *Store) Message(id models.ContactID, messageID string) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.conversations[id]
	if idx := indexOf(msgs, messageID); idx >= 0 {
		return msgs[idx], true
	}
	return models.Message{}, false
}

// Messages returns a copy of the contact's timeline in insertion order
func (s *Store) Messages(id models.ContactID) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs, ok := s.conversations[id]
	if !ok {
		return nil, apierrors.NewUnknownContactError(string(id))
	}
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Len returns the number of messages in the contact's timeline
func (s *Store) Len(id models.ContactID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations[id])
}

// Contact returns the metadata of a contact
func (s *Store) Contact(id models.ContactID) (models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.contacts[id]; !ok {
		return models.Contact{}, apierrors.NewUnknownContactError(string(id))
	}
	return models.Contact{
		Name:   s.contacts.DisplayName(id),
		Avatar: s.contacts.AvatarOf(id),
	}, nil
}

// Contacts returns a copy of all contact metadata
func (s *Store) Contacts() models.ContactSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contacts.Clone()
}

// Rename sets a contact's display name. Blank names are ignored.
func (s *Store) Rename(id models.ContactID, name string) error {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[id]
	if !ok {
		return apierrors.NewUnknownContactError(string(id))
	}
	if name == "" {
		return nil
	}
	c.Name = name
	s.contacts[id] = c
	s.persistLocked()
	return nil
}

// SetAvatar sets a contact's avatar reference (URL or data URL)
func (s *Store) SetAvatar(id models.ContactID, avatar string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[id]
	if !ok {
		return apierrors.NewUnknownContactError(string(id))
	}
	c.Avatar = avatar
	s.contacts[id] = c
	s.persistLocked()
	return nil
}

// Preview returns the one-line summary shown in the contact list
func (s *Store) Preview(id models.ContactID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.conversations[id]
	if len(msgs) == 0 {
		switch id {
		case models.ContactAlex, models.ContactElly:
			return "Tap to chat with " + models.DefaultContacts()[id].Name
		default:
			return "Tap to chat"
		}
	}

	last := msgs[len(msgs)-1]
	prefix := ""
	if last.Role == models.RoleUser {
		prefix = "You: "
	}
	if last.IsImage() {
		return prefix + "[Image]"
	}
	content := []rune(last.Content)
	if len(content) > previewRunes {
		content = content[:previewRunes]
	}
	return prefix + string(content)
}

// SeedGreeting appends Alex's opening message when his timeline is empty.
// It reports whether a message was added.
func (s *Store) SeedGreeting(now time.Time) bool {
	if s.Len(models.ContactAlex) > 0 {
		return false
	}
	_, err := s.Append(models.ContactAlex, models.Message{
		Role:      models.RoleAssistant,
		Type:      models.TypeText,
		Content:   models.AlexGreeting,
		Time:      FormatTime(now),
		DateKey:   DateKeyOf(now),
		Timestamp: now,
	})
	return err == nil
}

// Snapshot returns a deep copy of both root structures
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Restore overlays loaded data onto the current state, per contact key.
// Contacts outside the registry are ignored. Restore does not persist.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, msgs := range snap.Conversations {
		if !models.IsKnownContact(id) {
			logging.WithContact(id).Debug("ignoring persisted timeline for unknown contact")
			continue
		}
		cp := make([]models.Message, len(msgs))
		copy(cp, msgs)
		s.conversations[id] = cp
	}
	for id, c := range snap.Contacts {
		if !models.IsKnownContact(id) {
			continue
		}
		s.contacts[id] = c
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Conversations: make(map[models.ContactID][]models.Message, len(s.conversations)),
		Contacts:      s.contacts.Clone(),
	}
	for id, msgs := range s.conversations {
		cp := make([]models.Message, len(msgs))
		copy(cp, msgs)
		snap.Conversations[id] = cp
	}
	return snap
}

// persistLocked hands a snapshot to the persister.
// MUST be called with s.mu held.
func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	if err := s.persister.Persist(s.snapshotLocked()); err != nil {
		logging.Logger().Warn("failed to persist chat state", "error", err)
	}
}

func indexOf(msgs []models.Message, messageID string) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].ID == messageID {
			return i
		}
	}
	return -1
}
