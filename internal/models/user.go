package models

import "strings"

// User is a record of the users collection.
type User struct {
	ID           ID     `json:"id,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash,omitempty"`
	// LegacyPassword is only ever read, to recognise accounts created before hashing.
	LegacyPassword string `json:"password,omitempty"`
}

// NewUserRequest is the body of POST /users.
type NewUserRequest struct {
	Name         string `json:"name" validate:"required_trim"`
	Email        string `json:"email" validate:"required_trim,site_email"`
	PasswordHash string `json:"passwordHash" validate:"required"`
}

// Initials returns up to two upper-case initials of the user's name.
func (u User) Initials() string {
	return Initials(u.Name)
}

// Initials takes the first letter of each word of name, upper-cased, capped at two.
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		r := []rune(part)
		b.WriteRune(r[0])
	}
	out := []rune(strings.ToUpper(b.String()))
	if len(out) > 2 {
		out = out[:2]
	}
	return string(out)
}
