package models

import (
	"time"

	"github.com/google/uuid"
)

// Publication is a post inside a community; it carries text, media or both.
type Publication struct {
	ID          uuid.UUID `db:"id"`
	AuthorID    uuid.UUID `db:"author_id"`
	CommunityID uuid.UUID `db:"community_id"`
	Text        *string   `db:"text"`
	Media       *Media    `db:"-"`
	CreatedAt   time.Time `db:"created_at"`

	// Filled by services, not stored
	Author *AuthorProjection `db:"-"`
}

// HasContent reports whether the publication has text or media
func (p *Publication) HasContent() bool {
	return (p.Text != nil && *p.Text != "") || !p.Media.IsZero()
}
