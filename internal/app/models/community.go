package models

import (
	"time"

	"github.com/google/uuid"
)

// Community is a named group whose members may post and comment in it
type Community struct {
	ID          uuid.UUID   `db:"id"`
	Name        string      `db:"name"`
	Description *string     `db:"description"`
	Members     []uuid.UUID `db:"members"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

// HasMember reports whether accountID is in the member set
func (c *Community) HasMember(accountID uuid.UUID) bool {
	return containsID(c.Members, accountID)
}
