package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/uniconnect/api/internal/app/models"
	"github.com/uniconnect/api/internal/db"
	"github.com/uniconnect/api/internal/pkg/dberrors"
	"github.com/uniconnect/api/internal/pkg/logger"
)

var communityColumns = []string{"id", "name", "description", "members", "created_at", "updated_at"}

// CommunityRepository handles database operations for communities
type CommunityRepository struct {
	pg *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(pg *db.PostgresDB) *CommunityRepository {
	return &CommunityRepository{
		pg: pg,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanCommunity(row pgx.Row) (*models.Community, error) {
	c := &models.Community{}
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Members, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a community with an empty member set
func (r *CommunityRepository) Create(ctx context.Context, community *models.Community) error {
	sql, args, err := r.sb.Insert("communities").
		Columns("name", "description").
		Values(community.Name, community.Description).
		Suffix("RETURNING id, members, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create community SQL")
		return fmt.Errorf("failed to build create community query: %w", err)
	}

	err = r.pg.Pool.QueryRow(ctx, sql, args...).
		Scan(&community.ID, &community.Members, &community.CreatedAt, &community.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintCommunityName) {
			return ErrCommunityNameTaken
		}
		logger.Error().Err(err).Str("name", community.Name).Msg("Error executing create community query")
		return fmt.Errorf("error creating community: %w", err)
	}
	return nil
}

func (r *CommunityRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Community, error) {
	sql, args, err := r.sb.Select(communityColumns...).
		From("communities").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get community query: %w", err)
	}

	community, err := scanCommunity(r.pg.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommunityNotFound
		}
		logger.Error().Err(err).Msg("Error scanning community row")
		return nil, fmt.Errorf("error getting community: %w", err)
	}
	return community, nil
}

// GetByID retrieves a community by ID
func (r *CommunityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Community, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByName retrieves a community by its unique name
func (r *CommunityRepository) GetByName(ctx context.Context, name string) (*models.Community, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name})
}

// List returns every community ordered by name
func (r *CommunityRepository) List(ctx context.Context) ([]*models.Community, error) {
	sql, args, err := r.sb.Select(communityColumns...).
		From("communities").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list communities query: %w", err)
	}

	rows, err := r.pg.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list communities query")
		return nil, fmt.Errorf("error querying communities: %w", err)
	}
	defer rows.Close()

	communities := []*models.Community{}
	for rows.Next() {
		community, err := scanCommunity(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning community row: %w", err)
		}
		communities = append(communities, community)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating community rows: %w", err)
	}
	return communities, nil
}

// lockCommunity fails with ErrCommunityNotFound when the row does not exist
func (r *CommunityRepository) lockCommunity(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	sql, args, err := r.sb.Select("id").
		From("communities").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build lock community query: %w", err)
	}

	var locked uuid.UUID
	if err := tx.QueryRow(ctx, sql, args...).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCommunityNotFound
		}
		return fmt.Errorf("error locking community: %w", err)
	}
	return nil
}

func (r *CommunityRepository) exec(ctx context.Context, tx pgx.Tx, builder squirrel.UpdateBuilder) (int64, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build membership query: %w", err)
	}
	cmdTag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error updating membership: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// AddMember puts the account in the community's member set and the community
// in the account's list, both in one transaction. Joining twice is a no-op.
func (r *CommunityRepository) AddMember(ctx context.Context, communityID, accountID uuid.UUID) error {
	return r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := r.lockCommunity(ctx, tx, communityID); err != nil {
			return err
		}

		affected, err := r.exec(ctx, tx, r.sb.Update("accounts").
			Set("communities", squirrel.Expr("array_append(communities, ?)", communityID)).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": accountID}).
			Where(squirrel.Expr("NOT (? = ANY(communities))", communityID)))
		if err != nil {
			return err
		}
		if affected == 0 {
			if err := r.accountExists(ctx, tx, accountID); err != nil {
				return err
			}
		}

		_, err = r.exec(ctx, tx, r.sb.Update("communities").
			Set("members", squirrel.Expr("array_append(members, ?)", accountID)).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": communityID}).
			Where(squirrel.Expr("NOT (? = ANY(members))", accountID)))
		return err
	})
}

// RemoveMember is the inverse of AddMember
func (r *CommunityRepository) RemoveMember(ctx context.Context, communityID, accountID uuid.UUID) error {
	return r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := r.lockCommunity(ctx, tx, communityID); err != nil {
			return err
		}

		if _, err := r.exec(ctx, tx, r.sb.Update("accounts").
			Set("communities", squirrel.Expr("array_remove(communities, ?)", communityID)).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": accountID})); err != nil {
			return err
		}

		_, err := r.exec(ctx, tx, r.sb.Update("communities").
			Set("members", squirrel.Expr("array_remove(members, ?)", accountID)).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": communityID}))
		return err
	})
}

func (r *CommunityRepository) accountExists(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	sql, args, err := r.sb.Select("1").
		From("accounts").
		Where(squirrel.Eq{"id": id}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build account existence query: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return fmt.Errorf("error checking account existence: %w", err)
	}
	if !exists {
		return ErrAccountNotFound
	}
	return nil
}
