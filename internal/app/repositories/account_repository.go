package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/uniconnect/api/internal/app/models"
	"github.com/uniconnect/api/internal/db"
	"github.com/uniconnect/api/internal/pkg/dberrors"
	"github.com/uniconnect/api/internal/pkg/logger"
)

var accountColumns = []string{
	"id", "name", "handle", "email", "password_hash",
	"phone", "university", "career", "bio", "interests",
	"avatar_url", "avatar_asset_id",
	"role", "confirmed", "confirmation_token", "active",
	"friends", "communities", "created_at", "updated_at",
}

// AccountRepository handles account database operations
type AccountRepository struct {
	pg *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pg *db.PostgresDB) *AccountRepository {
	return &AccountRepository{
		pg: pg,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	a := &models.Account{}
	var avatarURL, avatarAssetID *string
	var role string

	err := row.Scan(
		&a.ID, &a.Name, &a.Handle, &a.Email, &a.PasswordHash,
		&a.Phone, &a.University, &a.Career, &a.Bio, &a.Interests,
		&avatarURL, &avatarAssetID,
		&role, &a.Confirmed, &a.ConfirmationToken, &a.Active,
		&a.Friends, &a.Communities, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Role = models.RoleType(role)
	if avatarAssetID != nil && *avatarAssetID != "" {
		a.Avatar = &models.Media{AssetID: *avatarAssetID}
		if avatarURL != nil {
			a.Avatar.URL = *avatarURL
		}
	}
	return a, nil
}

func mediaColumns(m *models.Media) (url, assetID *string) {
	if m.IsZero() {
		return nil, nil
	}
	return &m.URL, &m.AssetID
}

func accountConflict(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, constraintAccountEmail):
		return ErrEmailTaken
	case dberrors.IsDuplicateConstraintError(err, constraintAccountHandle):
		return ErrHandleTaken
	}
	return nil
}

// Create inserts the account and fills its ID and timestamps
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	avatarURL, avatarAssetID := mediaColumns(account.Avatar)
	interests := account.Interests
	if interests == nil {
		interests = []string{}
	}

	sql, args, err := r.sb.Insert("accounts").
		Columns(
			"name", "handle", "email", "password_hash",
			"phone", "university", "career", "bio", "interests",
			"avatar_url", "avatar_asset_id",
			"role", "confirmed", "confirmation_token", "active",
		).
		Values(
			account.Name, account.Handle, strings.ToLower(account.Email), account.PasswordHash,
			account.Phone, account.University, account.Career, account.Bio, interests,
			avatarURL, avatarAssetID,
			string(account.Role), account.Confirmed, account.ConfirmationToken, account.Active,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create account SQL")
		return fmt.Errorf("failed to build create account query: %w", err)
	}

	err = r.pg.Pool.QueryRow(ctx, sql, args...).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if conflict := accountConflict(err); conflict != nil {
			return conflict
		}
		logger.Error().Err(err).Str("email", account.Email).Msg("Error executing create account query")
		return fmt.Errorf("error creating account: %w", err)
	}

	account.Email = strings.ToLower(account.Email)
	return nil
}

func (r *AccountRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Account, error) {
	sql, args, err := r.sb.Select(accountColumns...).
		From("accounts").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get account SQL")
		return nil, fmt.Errorf("failed to build get account query: %w", err)
	}

	account, err := scanAccount(r.pg.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		logger.Error().Err(err).Msg("Error scanning account row")
		return nil, fmt.Errorf("error getting account: %w", err)
	}
	return account, nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves an account by its (case-insensitive) email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

// GetByIDs retrieves the accounts that exist among ids, in no particular order
func (r *AccountRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Account, error) {
	if len(ids) == 0 {
		return []*models.Account{}, nil
	}

	sql, args, err := r.sb.Select(accountColumns...).
		From("accounts").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get accounts SQL")
		return nil, fmt.Errorf("failed to build get accounts query: %w", err)
	}

	rows, err := r.pg.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get accounts query")
		return nil, fmt.Errorf("error querying accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning account row")
			return nil, fmt.Errorf("error scanning account row: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) exists(ctx context.Context, where squirrel.Sqlizer) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("accounts").
		Where(where).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build account existence query: %w", err)
	}

	var exists bool
	if err := r.pg.Pool.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Msg("Error checking account existence")
		return false, fmt.Errorf("error checking account existence: %w", err)
	}
	return exists, nil
}

// EmailExists checks whether an email is registered
func (r *AccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

// HandleExists checks whether a handle is taken
func (r *AccountRepository) HandleExists(ctx context.Context, handle string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"handle": handle})
}

// Delete removes the account row. Only the registration rollback hard-deletes.
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("accounts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete account query: %w", err)
	}

	cmdTag, err := r.pg.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("accountID", id.String()).Msg("Error executing delete account query")
		return fmt.Errorf("error deleting account: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ConfirmByToken confirms the account holding token and clears it in one statement
func (r *AccountRepository) ConfirmByToken(ctx context.Context, token string) (uuid.UUID, error) {
	sql, args, err := r.sb.Update("accounts").
		Set("confirmed", true).
		Set("confirmation_token", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"confirmation_token": token}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to build confirm account query: %w", err)
	}

	var id uuid.UUID
	if err := r.pg.Pool.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrTokenNotFound
		}
		logger.Error().Err(err).Msg("Error executing confirm account query")
		return uuid.Nil, fmt.Errorf("error confirming account: %w", err)
	}
	return id, nil
}

func (r *AccountRepository) update(ctx context.Context, id uuid.UUID, values map[string]interface{}) error {
	values["updated_at"] = squirrel.Expr("NOW()")

	sql, args, err := r.sb.Update("accounts").
		SetMap(values).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update account query: %w", err)
	}

	cmdTag, err := r.pg.Pool.Exec(ctx, sql, args...)
	if err != nil {
		if conflict := accountConflict(err); conflict != nil {
			return conflict
		}
		logger.Error().Err(err).Str("accountID", id.String()).Msg("Error executing update account query")
		return fmt.Errorf("error updating account: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// SetActive deactivates or reactivates an account
func (r *AccountRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.update(ctx, id, map[string]interface{}{"active": active})
}

// UpdatePassword stores a new password hash
func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(ctx, id, map[string]interface{}{"password_hash": passwordHash})
}

// UpdateProfile writes the mutable profile fields of account
func (r *AccountRepository) UpdateProfile(ctx context.Context, account *models.Account) error {
	avatarURL, avatarAssetID := mediaColumns(account.Avatar)
	interests := account.Interests
	if interests == nil {
		interests = []string{}
	}

	return r.update(ctx, account.ID, map[string]interface{}{
		"name":            account.Name,
		"handle":          account.Handle,
		"email":           strings.ToLower(account.Email),
		"phone":           account.Phone,
		"university":      account.University,
		"career":          account.Career,
		"bio":             account.Bio,
		"interests":       interests,
		"avatar_url":      avatarURL,
		"avatar_asset_id": avatarAssetID,
	})
}

// appendFriend adds friend to owner's list unless it is already there
func (r *AccountRepository) appendFriend(ctx context.Context, q querier, owner, friend uuid.UUID) error {
	sql, args, err := r.sb.Update("accounts").
		Set("friends", squirrel.Expr("array_append(friends, ?)", friend)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": owner}).
		Where(squirrel.Expr("NOT (? = ANY(friends))", friend)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build append friend query: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error appending friend: %w", err)
	}
	return nil
}

// removeFriend drops every occurrence of friend from owner's list
func (r *AccountRepository) removeFriend(ctx context.Context, q querier, owner, friend uuid.UUID) error {
	sql, args, err := r.sb.Update("accounts").
		Set("friends", squirrel.Expr("array_remove(friends, ?)", friend)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": owner}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build remove friend query: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error removing friend: %w", err)
	}
	return nil
}

// AddFriendPair links a and b in both directions inside one transaction
func (r *AccountRepository) AddFriendPair(ctx context.Context, a, b uuid.UUID) error {
	return r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := r.appendFriend(ctx, tx, a, b); err != nil {
			return err
		}
		return r.appendFriend(ctx, tx, b, a)
	})
}

// RemoveFriendPair unlinks a and b in both directions inside one transaction
func (r *AccountRepository) RemoveFriendPair(ctx context.Context, a, b uuid.UUID) error {
	return r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := r.removeFriend(ctx, tx, a, b); err != nil {
			return err
		}
		return r.removeFriend(ctx, tx, b, a)
	})
}

// RemoveFriendRef drops a single dangling reference from owner's list
func (r *AccountRepository) RemoveFriendRef(ctx context.Context, owner, friend uuid.UUID) error {
	return r.removeFriend(ctx, r.pg.Pool, owner, friend)
}
