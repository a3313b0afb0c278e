package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-client/internal/models"
	appErrors "github.com/noah-isme/coursehub-client/pkg/errors"
	"github.com/noah-isme/coursehub-client/pkg/validation"
)

type contactRepository interface {
	List(ctx context.Context) []models.Contact
	Create(ctx context.Context, contact models.Contact) (*models.Contact, error)
	UpdateStatus(ctx context.Context, id models.ID, status models.ContactStatus) bool
}

// ContactRequest is the contact form payload.
type ContactRequest struct {
	Name    string `json:"name" validate:"required_trim"`
	Email   string `json:"email" validate:"required_trim,site_email"`
	Subject string `json:"subject" validate:"required_trim"`
	Message string `json:"message" validate:"required_trim"`
}

// ContactService handles contact form submissions and their triage.
type ContactService struct {
	contacts  contactRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewContactService constructs ContactService.
func NewContactService(contacts contactRepository, validate *validator.Validate, logger *zap.Logger) *ContactService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{contacts: contacts, validator: validate, logger: logger, now: time.Now}
}

// Submit stores a new message with status "new".
func (s *ContactService) Submit(ctx context.Context, req ContactRequest) (*models.Contact, error) {
	req = ContactRequest{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid contact payload")
	}

	contact, err := s.contacts.Create(ctx, models.Contact{
		Name:        req.Name,
		Email:       req.Email,
		Subject:     req.Subject,
		Message:     req.Message,
		SubmittedAt: s.now().UTC().Truncate(time.Millisecond),
		Status:      models.ContactStatusNew,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "Failed to submit contact form")
	}
	return contact, nil
}

// List returns every message.
func (s *ContactService) List(ctx context.Context) []models.Contact {
	return s.contacts.List(ctx)
}

// UpdateStatus moves a message to status.
func (s *ContactService) UpdateStatus(ctx context.Context, id models.ID, status models.ContactStatus) error {
	switch status {
	case models.ContactStatusNew, models.ContactStatusInProgress, models.ContactStatusResolved:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown contact status "+string(status))
	}
	if !s.contacts.UpdateStatus(ctx, id, status) {
		return appErrors.Clone(appErrors.ErrTransport, "Failed to update contact status")
	}
	return nil
}

// Stats counts messages by status.
func (s *ContactService) Stats(ctx context.Context) models.ContactStats {
	contacts := s.contacts.List(ctx)
	stats := models.ContactStats{Total: len(contacts)}
	for _, c := range contacts {
		switch c.Status {
		case models.ContactStatusNew:
			stats.New++
		case models.ContactStatusInProgress:
			stats.InProgress++
		case models.ContactStatusResolved:
			stats.Resolved++
		}
	}
	return stats
}

// Search matches query case-insensitively against name, email, and subject.
func (s *ContactService) Search(ctx context.Context, query string) []models.Contact {
	contacts := s.contacts.List(ctx)
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return contacts
	}
	out := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		if strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Email), needle) ||
			strings.Contains(strings.ToLower(c.Subject), needle) {
			out = append(out, c)
		}
	}
	return out
}
