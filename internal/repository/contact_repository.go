package repository

import (
	"context"

	"github.com/noah-isme/coursehub-client/internal/models"
)

// ContactRepository talks to the contacts collection.
type ContactRepository struct {
	contacts *Collection[models.Contact]
}

// NewContactRepository wraps the contacts collection.
func NewContactRepository(contacts *Collection[models.Contact]) *ContactRepository {
	return &ContactRepository{contacts: contacts}
}

// List returns every message, or an empty slice on failure.
func (r *ContactRepository) List(ctx context.Context) []models.Contact {
	return r.contacts.List(ctx, nil)
}

// Create stores a new message.
func (r *ContactRepository) Create(ctx context.Context, contact models.Contact) (*models.Contact, error) {
	return r.contacts.Create(ctx, contact)
}

// UpdateStatus patches the status of a message.
func (r *ContactRepository) UpdateStatus(ctx context.Context, id models.ID, status models.ContactStatus) bool {
	return r.contacts.Update(ctx, id.String(), models.ContactStatusUpdate{Status: status})
}
