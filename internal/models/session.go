package models

import "time"

// SessionUser is the identity kept in the session. Sessions migrated from the
// email-only legacy marker carry no ID until it is resolved against the backend.
type SessionUser struct {
	ID    ID     `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Session is the single canonical record of who is logged in.
type Session struct {
	User      SessionUser `json:"user"`
	LoggedIn  bool        `json:"loggedIn"`
	CreatedAt time.Time   `json:"createdAt"`
}

// SessionUserFrom builds the session identity of u.
func SessionUserFrom(u User) SessionUser {
	return SessionUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
