// Package store is the document-store layer of the service. It exposes
// narrow interfaces so handlers can be tested against fakes, with MongoDB
// implementations behind them.
package store

import (
	"context"
	"errors"
	"time"

	"gitlab.com/dirk.krummacker/careteam-service/internal/model"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// listLimit caps how many documents a list or search operation returns.
const listLimit = 100

// ContactStore persists contact documents.
type ContactStore interface {
	// FindAll returns up to 100 contacts.
	FindAll(ctx context.Context) ([]model.Contact, error)
	// Search returns contacts whose first or last name matches the query,
	// case-insensitively. An empty query returns all contacts.
	Search(ctx context.Context, query string) ([]model.Contact, error)
	// FindByName returns contacts with exactly this first and last name.
	FindByName(ctx context.Context, first string, last string) ([]model.Contact, error)
	// FindByID returns the contact with the given ID or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Contact, error)
	// Insert stores a new contact, minting an ID when none is set, and
	// returns the ID.
	Insert(ctx context.Context, contact *model.Contact) (string, error)
	// Update replaces the stored fields of the contact with the given ID
	// and returns the number of matched documents.
	Update(ctx context.Context, id string, contact *model.Contact) (int64, error)
	// Delete removes the contact with the given ID and returns the number
	// of deleted documents.
	Delete(ctx context.Context, id string) (int64, error)
	// MarkDuplicate flags the contact with the given ID as a possible
	// duplicate.
	MarkDuplicate(ctx context.Context, id string) error
}

// MessageStore persists message records.
type MessageStore interface {
	// Insert stores a new message, minting an ID when none is set, and
	// returns the ID.
	Insert(ctx context.Context, message *model.Message) (string, error)
	// SetStatus updates status, error text and sent timestamp of the
	// message with the given ID.
	SetStatus(ctx context.Context, id string, status string, errText string, sentAt *time.Time) error
	// FindByID returns the message with the given ID or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Message, error)
}
