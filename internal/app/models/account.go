package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered student or administrator
type Account struct {
	ID                uuid.UUID   `db:"id"`
	Name              string      `db:"name"`
	Handle            string      `db:"handle"`
	Email             string      `db:"email"`
	PasswordHash      string      `db:"password_hash"`
	Phone             *string     `db:"phone"`
	University        *string     `db:"university"`
	Career            *string     `db:"career"`
	Bio               *string     `db:"bio"`
	Interests         []string    `db:"interests"`
	Avatar            *Media      `db:"-"`
	Role              RoleType    `db:"role"`
	Confirmed         bool        `db:"confirmed"`
	ConfirmationToken *string     `db:"confirmation_token"`
	Active            bool        `db:"active"`
	Friends           []uuid.UUID `db:"friends"`
	Communities       []uuid.UUID `db:"communities"`
	CreatedAt         time.Time   `db:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at"`
}

// IsAdministrator reports whether the account has the administrator role
func (a *Account) IsAdministrator() bool {
	return a.Role == RoleAdministrator
}

// HasFriend reports whether the account references other in its friend list
func (a *Account) HasFriend(other uuid.UUID) bool {
	return containsID(a.Friends, other)
}

// AvatarURL returns the avatar URL or an empty string
func (a *Account) AvatarURL() string {
	if a.Avatar.IsZero() {
		return ""
	}
	return a.Avatar.URL
}

// Projection returns the public author projection of the account
func (a *Account) Projection() AuthorProjection {
	return AuthorProjection{
		ID:     a.ID,
		Handle: a.Handle,
		Avatar: a.AvatarURL(),
	}
}
