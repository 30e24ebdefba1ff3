package models

import "strings"

// ContactID is the stable key of a contact
type ContactID string

// Built-in contacts
const (
	ContactAlex   ContactID = "alex"
	ContactElly   ContactID = "elly"
	ContactOffice ContactID = "office"
	ContactFriend ContactID = "friend"
	ContactNotes  ContactID = "notes"
)

// Contact holds the display metadata of a contact
type Contact struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// ContactSet maps contact ids to their metadata
type ContactSet map[ContactID]Contact

// contactOrder is the fixed registry, in display order
var contactOrder = []ContactID{
	ContactAlex,
	ContactElly,
	ContactOffice,
	ContactFriend,
	ContactNotes,
}

var defaultAvatars = map[ContactID]string{
	ContactAlex:   "https://images.pexels.com/photos/614810/pexels-photo-614810.jpeg?auto=compress&cs=tinysrgb&w=200",
	ContactElly:   "https://images.pexels.com/photos/3760853/pexels-photo-3760853.jpeg?auto=compress&cs=tinysrgb&w=200",
	ContactOffice: "https://images.pexels.com/photos/1181675/pexels-photo-1181675.jpeg?auto=compress&cs=tinysrgb&w=200",
	ContactFriend: "https://images.pexels.com/photos/733872/pexels-photo-733872.jpeg?auto=compress&cs=tinysrgb&w=200",
	ContactNotes:  "https://images.pexels.com/photos/2246476/pexels-photo-2246476.jpeg?auto=compress&cs=tinysrgb&w=200",
}

var defaultNames = map[ContactID]string{
	ContactAlex:   "Alex",
	ContactElly:   "Elly",
	ContactOffice: "Office",
	ContactFriend: "Friend",
	ContactNotes:  "Notes",
}

// ContactIDs returns the registered contact ids in display order
func ContactIDs() []ContactID {
	ids := make([]ContactID, len(contactOrder))
	copy(ids, contactOrder)
	return ids
}

// IsKnownContact reports whether id belongs to the fixed registry
func IsKnownContact(id ContactID) bool {
	_, ok := defaultNames[id]
	return ok
}

// ParseContactID resolves a contact by id or display name (case-insensitive)
func ParseContactID(s string) (ContactID, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, id := range contactOrder {
		if string(id) == key || strings.ToLower(defaultNames[id]) == key {
			return id, true
		}
	}
	return "", false
}

// DefaultAvatar returns the stock avatar of a contact
func DefaultAvatar(id ContactID) string {
	return defaultAvatars[id]
}

// DefaultContacts returns a fresh copy of the built-in contact metadata
func DefaultContacts() ContactSet {
	set := make(ContactSet, len(contactOrder))
	for _, id := range contactOrder {
		set[id] = Contact{Name: defaultNames[id], Avatar: defaultAvatars[id]}
	}
	return set
}

// DisplayName returns the contact's name, falling back to its id
func (s ContactSet) DisplayName(id ContactID) string {
	if c, ok := s[id]; ok && c.Name != "" {
		return c.Name
	}
	return string(id)
}

// AvatarOf returns the contact's avatar, falling back to the stock one
func (s ContactSet) AvatarOf(id ContactID) string {
	if c, ok := s[id]; ok && c.Avatar != "" {
		return c.Avatar
	}
	return DefaultAvatar(id)
}

// Clone returns a copy of the set
func (s ContactSet) Clone() ContactSet {
	out := make(ContactSet, len(s))
	for id, c := range s {
		out[id] = c
	}
	return out
}

// AlexGreeting is the opening message Alex sends on an empty timeline
const AlexGreeting = "Hey love, it’s Alex. I’ve been thinking about you. How’s my favorite journalism student in India doing today?"

// ContactAbout returns the profile blurb of a contact
func ContactAbout(id ContactID) string {
	switch id {
	case ContactAlex:
		return "British businessman, travels a lot for work. Met Mona in India on a business trip and has been in a relationship with her for over 2 years. Very in love, a bit possessive and clingy, gets jealous easily but adores her. Calls her “love”, “babe”, and “sweetheart”."
	case ContactElly:
		return "American best friend, living in Australia with her boyfriend Leon. She has known Mona for around 10 years, knows all her drama with Alex, and talks in a casual, outspoken, and supportive way."
	case ContactOffice:
		return "A placeholder contact for work or projects. You can rename and customize this contact."
	case ContactFriend:
		return "A generic friend contact you can rename and use however you like."
	case ContactNotes:
		return "Use this chat as a space to drop random thoughts, to-dos, and ideas."
	default:
		return ""
	}
}
