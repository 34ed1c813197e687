package models

import "github.com/dmitrijs2005/whatthenote/internal/timex"

// User is the authenticated identity.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt timex.Time `json:"createdAt"`
}

// IsZero reports whether u carries no identity.
func (u User) IsZero() bool {
	return u.ID == "" && u.Email == ""
}
