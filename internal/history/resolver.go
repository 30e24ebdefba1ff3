package history

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/diogo/monachat/internal/models"
	"github.com/diogo/monachat/internal/timeline"
)

// Resolver resolves user-friendly references to contact ids
type Resolver struct {
	tl *timeline.Store
}

// NewResolver creates a resolver over the live timelines
func NewResolver(tl *timeline.Store) *Resolver {
	return &Resolver{tl: tl}
}

// Resolve converts a user-friendly reference to a contact id
//
// Supported references:
//   - "@last" - contact with the most recent message
//   - "1", "2", "3" - by position in the contact list (1-based)
//   - "alex", "elly" - contact id
//   - "substring" - match on the current display name (error if ambiguous)
func (r *Resolver) Resolve(ref string) (models.ContactID, error) {
	ref = strings.TrimSpace(ref)

	if ref == "" {
		return "", fmt.Errorf("empty reference")
	}

	ids := models.ContactIDs()

	if strings.EqualFold(ref, "@last") {
		return r.lastActive(ids)
	}

	if index, err := strconv.Atoi(ref); err == nil {
		if index < 1 || index > len(ids) {
			return "", fmt.Errorf("index %d out of range (1-%d)", index, len(ids))
		}
		return ids[index-1], nil
	}

	if id, ok := models.ParseContactID(ref); ok {
		return id, nil
	}

	contacts := r.tl.Contacts()
	refLower := strings.ToLower(ref)
	var matches []models.ContactID
	for _, id := range ids {
		if strings.Contains(strings.ToLower(contacts.DisplayName(id)), refLower) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no contact matching '%s'", ref)
	case 1:
		return matches[0], nil
	default:
		var names []string
		for _, id := range matches {
			names = append(names, fmt.Sprintf("'%s'", contacts.DisplayName(id)))
		}
		return "", fmt.Errorf("multiple contacts match '%s': %s. Use the id or be more specific",
			ref, strings.Join(names, ", "))
	}
}

func (r *Resolver) lastActive(ids []models.ContactID) (models.ContactID, error) {
	var (
		best  models.ContactID
		found bool
		last  models.Message
	)
	for _, id := range ids {
		msgs, err := r.tl.Messages(id)
		if err != nil || len(msgs) == 0 {
			continue
		}
		m := msgs[len(msgs)-1]
		if !found || m.Timestamp.After(last.Timestamp) {
			best, last, found = id, m, true
		}
	}
	if !found {
		return "", fmt.Errorf("no conversations found")
	}
	return best, nil
}

// ListAliases returns information about supported references
func ListAliases() string {
	return `Supported references:
  @last          Contact with the most recent message
  1, 2, 3        By position in the contact list
  alex, elly     Contact id
  "text"         Search by display name`
}
