package repositories

import (
	"github.com/uniconnect/api/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	AccountRepository     *AccountRepository
	CommunityRepository   *CommunityRepository
	PublicationRepository *PublicationRepository
	CommentRepository     *CommentRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pg *db.PostgresDB) *Repositories {
	return &Repositories{
		AccountRepository:     NewAccountRepository(pg),
		CommunityRepository:   NewCommunityRepository(pg),
		PublicationRepository: NewPublicationRepository(pg),
		CommentRepository:     NewCommentRepository(pg),
	}
}
