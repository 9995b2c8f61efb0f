package user

import (
	"time"
)

// User is the domain model for an account. The password hash and the
// activation/reset tokens never appear in JSON responses.
type User struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	IsActive        bool      `json:"isActive"`
	ActivationToken *string   `json:"-"`
	ResetToken      *string   `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Projection is the reduced shape returned from profile updates
type Projection struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Project returns the reduced projection of the user
func (u *User) Project() *Projection {
	return &Projection{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}
