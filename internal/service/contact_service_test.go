package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-client/internal/models"
	appErrors "github.com/noah-isme/coursehub-client/pkg/errors"
)

type mockContactRepo struct {
	contacts  []models.Contact
	createErr error
	failPatch bool
}

func (m *mockContactRepo) List(ctx context.Context) []models.Contact {
	return append([]models.Contact(nil), m.contacts...)
}

func (m *mockContactRepo) Create(ctx context.Context, contact models.Contact) (*models.Contact, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	contact.ID = models.NewID("10")
	m.contacts = append(m.contacts, contact)
	return &contact, nil
}

func (m *mockContactRepo) UpdateStatus(ctx context.Context, id models.ID, status models.ContactStatus) bool {
	if m.failPatch {
		return false
	}
	for i := range m.contacts {
		if m.contacts[i].ID.Same(id) {
			m.contacts[i].Status = status
			return true
		}
	}
	return false
}

func TestContactSubmit(t *testing.T) {
	repo := &mockContactRepo{}
	svc := NewContactService(repo, nil, nil)
	svc.now = func() time.Time { return fixedNow }

	contact, err := svc.Submit(context.Background(), ContactRequest{Name: " Ada ", Email: "ada@example.com", Subject: "Billing", Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", contact.Name)
	assert.Equal(t, models.ContactStatusNew, contact.Status)
	assert.Equal(t, fixedNow.Truncate(time.Millisecond), contact.SubmittedAt)

	_, err = svc.Submit(context.Background(), ContactRequest{Name: "Ada", Email: "ada@", Subject: "x", Message: "y"})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	_, err = svc.Submit(context.Background(), ContactRequest{Name: "Ada", Email: "ada@example.com", Subject: "  ", Message: "y"})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	repo.createErr = errors.New("down")
	_, err = svc.Submit(context.Background(), ContactRequest{Name: "Ada", Email: "ada@example.com", Subject: "x", Message: "y"})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrTransport.Code))
}

func TestContactStatsAndSearch(t *testing.T) {
	repo := &mockContactRepo{contacts: []models.Contact{
		{ID: models.NewID("1"), Name: "Ada", Email: "ada@example.com", Subject: "Billing", Status: models.ContactStatusNew},
		{ID: models.NewID("2"), Name: "Bob", Email: "bob@example.com", Subject: "Course access", Status: models.ContactStatusInProgress},
		{ID: models.NewID("3"), Name: "Cy", Email: "cy@school.org", Subject: "billing again", Status: models.ContactStatusResolved},
		{ID: models.NewID("4"), Name: "Di", Email: "di@example.com", Subject: "Hi", Status: models.ContactStatusNew},
	}}
	svc := NewContactService(repo, nil, nil)
	ctx := context.Background()

	assert.Equal(t, models.ContactStats{Total: 4, New: 2, InProgress: 1, Resolved: 1}, svc.Stats(ctx))

	assert.Len(t, svc.Search(ctx, "BILLING"), 2)
	assert.Len(t, svc.Search(ctx, "school"), 1)
	assert.Len(t, svc.Search(ctx, "bob"), 1)
	assert.Len(t, svc.Search(ctx, ""), 4)
	assert.Empty(t, svc.Search(ctx, "nothing"))
}

func TestContactUpdateStatus(t *testing.T) {
	repo := &mockContactRepo{contacts: []models.Contact{{ID: models.NewID("1"), Status: models.ContactStatusNew}}}
	svc := NewContactService(repo, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.UpdateStatus(ctx, models.NewID("1"), models.ContactStatusResolved))
	assert.Equal(t, models.ContactStatusResolved, repo.contacts[0].Status)

	assert.True(t, appErrors.IsCode(svc.UpdateStatus(ctx, models.NewID("1"), "archived"), appErrors.ErrValidation.Code))

	repo.failPatch = true
	assert.True(t, appErrors.IsCode(svc.UpdateStatus(ctx, models.NewID("1"), models.ContactStatusNew), appErrors.ErrTransport.Code))
}
