package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ContactStatus tracks the handling of a contact message.
type ContactStatus string

const (
	ContactStatusNew        ContactStatus = "new"
	ContactStatusInProgress ContactStatus = "in_progress"
	ContactStatusResolved   ContactStatus = "resolved"
)

// Contact is a message submitted through the contact form.
type Contact struct {
	ID          ID            `json:"id,omitempty"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Subject     string        `json:"subject"`
	Message     string        `json:"message"`
	SubmittedAt time.Time     `json:"submittedAt"`
	Status      ContactStatus `json:"status"`
}

type contactFields Contact

// MarshalJSON leaves the id out until the backend has assigned one.
func (c Contact) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID *ID `json:"id,omitempty"`
		contactFields
	}{assignedID(c.ID), contactFields(c)})
}

// UnmarshalJSON reads submittedAt as any ISO-8601 timestamp.
func (c *Contact) UnmarshalJSON(data []byte) error {
	var aux struct {
		contactFields
		SubmittedAt json.RawMessage `json:"submittedAt"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	submittedAt, err := decodeTimestamp(aux.SubmittedAt)
	if err != nil {
		return fmt.Errorf("submittedAt: %w", err)
	}
	*c = Contact(aux.contactFields)
	c.SubmittedAt = submittedAt
	return nil
}

// ContactStatusUpdate is the PATCH body for a status transition.
type ContactStatusUpdate struct {
	Status ContactStatus `json:"status"`
}

// ContactStats counts messages by status.
type ContactStats struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
}
