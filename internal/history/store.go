// Package history persists chat timelines and contact settings.
package history

import (
	"encoding/json"
	"fmt"
	"strings"

	apierrors "github.com/diogo/monachat/internal/errors"
	"github.com/diogo/monachat/internal/logging"
	"github.com/diogo/monachat/internal/models"
	"github.com/diogo/monachat/internal/timeline"
)

// Record keys
const (
	KeyConversations = "monachat_conversations_v3"
	KeyContacts      = "monachat_contacts_v3"
	KeyTheme         = "monachat_theme_v1"
)

// DefaultTheme is used when no theme has been saved
const DefaultTheme = "cute"

// Store reads and writes the two root records through a Backend
type Store struct {
	backend Backend
}

// Ensure Store can be installed as the timeline's persistence hook
var _ timeline.Persister = (*Store)(nil)

// NewStore creates a store over backend
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Open opens the configured backend kind in dir and wraps it in a Store
func Open(kind, dir string) (*Store, error) {
	backend, err := OpenBackend(kind, dir)
	if err != nil {
		return nil, err
	}
	return NewStore(backend), nil
}

// Close releases the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

// Persist implements timeline.Persister
func (s *Store) Persist(snap timeline.Snapshot) error {
	return s.Save(snap)
}

// Save overwrites both records with snap
func (s *Store) Save(snap timeline.Snapshot) error {
	conversations, err := json.Marshal(snap.Conversations)
	if err != nil {
		return fmt.Errorf("failed to marshal conversations: %w", err)
	}
	contacts, err := json.Marshal(snap.Contacts)
	if err != nil {
		return fmt.Errorf("failed to marshal contacts: %w", err)
	}

	if err := s.backend.Set(KeyConversations, conversations); err != nil {
		return err
	}
	return s.backend.Set(KeyContacts, contacts)
}

// Read decodes whatever durable state is readable. Missing records yield
// empty maps. Problems are returned as *errors.PersistenceReadError values
// alongside the part that could be recovered; a malformed entry for one
// contact does not discard the others.
func (s *Store) Read() (timeline.Snapshot, []error) {
	snap := timeline.Snapshot{
		Conversations: make(map[models.ContactID][]models.Message),
		Contacts:      make(models.ContactSet),
	}
	var problems []error

	if entries, err := s.readEntries(KeyConversations); err != nil {
		problems = append(problems, err)
	} else {
		for id, raw := range entries {
			var msgs []models.Message
			if err := json.Unmarshal(raw, &msgs); err != nil {
				problems = append(problems, apierrors.NewPersistenceReadError(KeyConversations+"."+id, err))
				continue
			}
			snap.Conversations[models.ContactID(id)] = normalizeMessages(msgs)
		}
	}

	if entries, err := s.readEntries(KeyContacts); err != nil {
		problems = append(problems, err)
	} else {
		for id, raw := range entries {
			var c models.Contact
			if err := json.Unmarshal(raw, &c); err != nil {
				problems = append(problems, apierrors.NewPersistenceReadError(KeyContacts+"."+id, err))
				continue
			}
			snap.Contacts[models.ContactID(id)] = c
		}
	}

	return snap, problems
}

// Load overlays the durable state onto tl per contact key. Unreadable data
// is logged and leaves the corresponding defaults in place.
func (s *Store) Load(tl *timeline.Store) {
	snap, problems := s.Read()
	for _, err := range problems {
		logging.Logger().Warn("ignoring unreadable chat state", "error", err)
	}
	tl.Restore(snap)
}

// LoadTheme returns the saved theme name, or DefaultTheme
func (s *Store) LoadTheme() string {
	data, ok, err := s.backend.Get(KeyTheme)
	if err != nil || !ok {
		return DefaultTheme
	}
	var theme string
	if err := json.Unmarshal(data, &theme); err != nil || strings.TrimSpace(theme) == "" {
		return DefaultTheme
	}
	return theme
}

// SaveTheme records the theme name
func (s *Store) SaveTheme(theme string) error {
	data, err := json.Marshal(theme)
	if err != nil {
		return err
	}
	return s.backend.Set(KeyTheme, data)
}

func (s *Store) readEntries(key string) (map[string]json.RawMessage, error) {
	data, ok, err := s.backend.Get(key)
	if err != nil {
		return nil, apierrors.NewPersistenceReadError(key, err)
	}
	if !ok {
		return nil, nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, apierrors.NewPersistenceReadError(key, err)
	}
	return entries, nil
}

// normalizeMessages fills fields older records may lack
func normalizeMessages(msgs []models.Message) []models.Message {
	if msgs == nil {
		return []models.Message{}
	}
	for i := range msgs {
		if msgs[i].ID == "" {
			msgs[i].ID = models.NewMessageID()
		}
		if msgs[i].Type == "" {
			msgs[i].Type = models.TypeText
		}
		if msgs[i].Role == models.RoleUser && !msgs[i].Status.Valid() {
			msgs[i].Status = models.StatusSent
		}
		if msgs[i].DateKey == "" && !msgs[i].Timestamp.IsZero() {
			msgs[i].DateKey = timeline.DateKeyOf(msgs[i].Timestamp)
		}
	}
	return msgs
}
