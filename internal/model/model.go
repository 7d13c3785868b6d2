package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gitlab.com/dirk.krummacker/careteam-service/internal/emailaddress"
	"gitlab.com/dirk.krummacker/careteam-service/internal/phonenumber"
)

// namePattern allows letters plus the space, hyphen and apostrophe
// separators found in real-world names.
var namePattern = regexp.MustCompile(`^[a-zA-Z' -]+$`)

// Contact is the data structure for a person that we know. First and last
// name are required; everything else is optional. The optional fields
// carry no bson omitempty: an update writes all of them, so omitting a
// field in a PUT clears its stored value instead of keeping a stale one.
// CreatedAt is derived from the ID on single-contact lookups and never
// stored.
type Contact struct {
	Id                string            `json:"_id,omitempty"                bson:"_id,omitempty"`
	First             string            `json:"first"                        bson:"first"`
	Last              string            `json:"last"                         bson:"last"`
	Middle            string            `json:"middle,omitempty"             bson:"middle"`
	Email             []string          `json:"email"                        bson:"email"`
	Phone             []string          `json:"phone"                        bson:"phone"`
	Address           string            `json:"address,omitempty"            bson:"address"`
	SocialMedia       map[string]string `json:"social_media,omitempty"       bson:"social_media"`
	Notes             string            `json:"notes,omitempty"              bson:"notes"`
	Birthday          *time.Time        `json:"birthday,omitempty"           bson:"birthday"`
	PossibleDuplicate bool              `json:"possible_duplicate,omitempty" bson:"possible_duplicate"`
	CreatedAt         *time.Time        `json:"created_at,omitempty"         bson:"-"`
}

// Message is a record of an outbound message to a contact.
type Message struct {
	Id        string     `json:"_id,omitempty"        bson:"_id,omitempty"`
	ContactId string     `json:"contact_id,omitempty" bson:"contact_id,omitempty"`
	Recipient string     `json:"recipient"            bson:"recipient"`
	Subject   string     `json:"subject,omitempty"    bson:"subject,omitempty"`
	Body      string     `json:"body"                 bson:"body"`
	HTMLBody  string     `json:"html_body,omitempty"  bson:"html_body,omitempty"`
	Provider  string     `json:"provider"             bson:"provider"`
	Status    string     `json:"status"               bson:"status"`
	Error     string     `json:"error,omitempty"      bson:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"           bson:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"    bson:"sent_at,omitempty"`
}

// Message status values, set by the messaging handlers.
const (
	StatusDraft  = "draft"
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// FieldError describes a single validation failure on a contact field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate normalizes the contact in place and returns the list of
// validation failures. Names are trimmed; email and phone lists have
// their entries trimmed and empty entries dropped before each remaining
// entry is checked. An empty result means the contact is well-formed.
func (c *Contact) Validate() []FieldError {
	var failures []FieldError

	c.First = strings.TrimSpace(c.First)
	if msg := checkName(c.First); msg != "" {
		failures = append(failures, FieldError{Field: "first", Message: msg})
	}
	c.Last = strings.TrimSpace(c.Last)
	if msg := checkName(c.Last); msg != "" {
		failures = append(failures, FieldError{Field: "last", Message: msg})
	}
	c.Middle = strings.TrimSpace(c.Middle)
	if c.Middle != "" && !namePattern.MatchString(c.Middle) {
		failures = append(failures, FieldError{
			Field:   "middle",
			Message: "Name must only contain letters, spaces, hyphens, and apostrophes",
		})
	}

	c.Email = filterBlank(c.Email)
	for i, entry := range c.Email {
		normalized, err := emailaddress.New(entry)
		if err != nil {
			failures = append(failures, FieldError{
				Field:   fmt.Sprintf("email[%d]", i),
				Message: "Invalid email address: " + entry,
			})
			continue
		}
		c.Email[i] = normalized.Address()
	}

	c.Phone = filterBlank(c.Phone)
	for i, entry := range c.Phone {
		phone, err := phonenumber.New(entry)
		if err != nil {
			failures = append(failures, FieldError{
				Field:   fmt.Sprintf("phone[%d]", i),
				Message: "Phone number must only contain digits and separators",
			})
			continue
		}
		c.Phone[i] = phone.String()
	}

	c.Address = strings.TrimSpace(c.Address)
	c.Notes = strings.TrimSpace(c.Notes)
	return failures
}

// FullName joins the first and last name with a single space. Either part
// may be empty.
func (c *Contact) FullName() string {
	return strings.TrimSpace(c.First + " " + c.Last)
}

// checkName returns the validation failure message for a required name
// part, or the empty string if the name is acceptable.
func checkName(name string) string {
	if name == "" {
		return "Name cannot be empty"
	}
	if !namePattern.MatchString(name) {
		return "Name must only contain letters, spaces, hyphens, and apostrophes"
	}
	return ""
}

// filterBlank trims every entry and drops the ones that end up empty.
// A nil input stays usable as an empty list.
func filterBlank(entries []string) []string {
	kept := make([]string, 0, len(entries))
	for _, entry := range entries {
		trimmed := strings.TrimSpace(entry)
		if trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return kept
}
