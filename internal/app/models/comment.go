package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment belongs to a publication; CommunityID always equals the publication's community.
type Comment struct {
	ID            uuid.UUID `db:"id"`
	PublicationID uuid.UUID `db:"publication_id"`
	CommunityID   uuid.UUID `db:"community_id"`
	AuthorID      uuid.UUID `db:"author_id"`
	Text          string    `db:"text"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`

	Author *AuthorProjection `db:"-"`
}
