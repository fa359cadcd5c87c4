package models

import "github.com/google/uuid"

// User is the authenticated principal taken from a bearer token.
type User struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name,omitempty"`
	IsAdmin bool      `json:"isAdmin"`
}

// DisplayName is what gets stored as contributor_name.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
