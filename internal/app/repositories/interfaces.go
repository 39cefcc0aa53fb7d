package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uniconnect/api/internal/app/models"
)

// IAccountRepository stores accounts and their friend/community references
type IAccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	HandleExists(ctx context.Context, handle string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ConfirmByToken(ctx context.Context, token string) (uuid.UUID, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	UpdateProfile(ctx context.Context, account *models.Account) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	AddFriendPair(ctx context.Context, a, b uuid.UUID) error
	RemoveFriendPair(ctx context.Context, a, b uuid.UUID) error
	RemoveFriendRef(ctx context.Context, owner, friend uuid.UUID) error
}

// ICommunityRepository stores communities and their member sets
type ICommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Community, error)
	GetByName(ctx context.Context, name string) (*models.Community, error)
	List(ctx context.Context) ([]*models.Community, error)
	AddMember(ctx context.Context, communityID, accountID uuid.UUID) error
	RemoveMember(ctx context.Context, communityID, accountID uuid.UUID) error
}

// IPublicationRepository stores publications
type IPublicationRepository interface {
	Create(ctx context.Context, publication *models.Publication) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Publication, error)
	ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*models.Publication, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ICommentRepository stores comments
type ICommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListByPublication(ctx context.Context, publicationID uuid.UUID) ([]*models.Comment, error)
	UpdateText(ctx context.Context, id uuid.UUID, text string) (*models.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
