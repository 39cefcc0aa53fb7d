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
	"github.com/uniconnect/api/internal/pkg/logger"
)

var commentColumns = []string{"id", "publication_id", "community_id", "author_id", "text", "created_at", "updated_at"}

// CommentRepository handles comment database operations
type CommentRepository struct {
	pg *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(pg *db.PostgresDB) *CommentRepository {
	return &CommentRepository{
		pg: pg,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanComment(row pgx.Row) (*models.Comment, error) {
	c := &models.Comment{}
	if err := row.Scan(&c.ID, &c.PublicationID, &c.CommunityID, &c.AuthorID, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts the comment and fills its ID and timestamps
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	sql, args, err := r.sb.Insert("comments").
		Columns("publication_id", "community_id", "author_id", "text").
		Values(comment.PublicationID, comment.CommunityID, comment.AuthorID, comment.Text).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create comment SQL")
		return fmt.Errorf("failed to build create comment query: %w", err)
	}

	err = r.pg.Pool.QueryRow(ctx, sql, args...).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		logger.Error().Err(err).Str("publicationID", comment.PublicationID.String()).Msg("Error executing create comment query")
		return fmt.Errorf("error creating comment: %w", err)
	}
	return nil
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	sql, args, err := r.sb.Select(commentColumns...).
		From("comments").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get comment query: %w", err)
	}

	comment, err := scanComment(r.pg.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		logger.Error().Err(err).Str("commentID", id.String()).Msg("Error scanning comment row")
		return nil, fmt.Errorf("error getting comment: %w", err)
	}
	return comment, nil
}

// ListByPublication returns the publication's comments in conversation order
func (r *CommentRepository) ListByPublication(ctx context.Context, publicationID uuid.UUID) ([]*models.Comment, error) {
	sql, args, err := r.sb.Select(commentColumns...).
		From("comments").
		Where(squirrel.Eq{"publication_id": publicationID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list comments query: %w", err)
	}

	rows, err := r.pg.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("publicationID", publicationID.String()).Msg("Error executing list comments query")
		return nil, fmt.Errorf("error querying comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning comment row: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}
	return comments, nil
}

// UpdateText replaces the text and returns the updated row
func (r *CommentRepository) UpdateText(ctx context.Context, id uuid.UUID, text string) (*models.Comment, error) {
	sql, args, err := r.sb.Update("comments").
		Set("text", text).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, publication_id, community_id, author_id, text, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update comment query: %w", err)
	}

	comment, err := scanComment(r.pg.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		logger.Error().Err(err).Str("commentID", id.String()).Msg("Error executing update comment query")
		return nil, fmt.Errorf("error updating comment: %w", err)
	}
	return comment, nil
}

// Delete removes a comment
func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("comments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete comment query: %w", err)
	}

	cmdTag, err := r.pg.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("commentID", id.String()).Msg("Error executing delete comment query")
		return fmt.Errorf("error deleting comment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}
