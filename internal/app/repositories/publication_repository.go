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

var publicationColumns = []string{"id", "author_id", "community_id", "text", "media_url", "media_asset_id", "created_at"}

// PublicationRepository handles publication database operations
type PublicationRepository struct {
	pg *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewPublicationRepository creates a new PublicationRepository
func NewPublicationRepository(pg *db.PostgresDB) *PublicationRepository {
	return &PublicationRepository{
		pg: pg,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanPublication(row pgx.Row) (*models.Publication, error) {
	p := &models.Publication{}
	var mediaURL, mediaAssetID *string
	if err := row.Scan(&p.ID, &p.AuthorID, &p.CommunityID, &p.Text, &mediaURL, &mediaAssetID, &p.CreatedAt); err != nil {
		return nil, err
	}
	if mediaAssetID != nil && *mediaAssetID != "" {
		p.Media = &models.Media{AssetID: *mediaAssetID}
		if mediaURL != nil {
			p.Media.URL = *mediaURL
		}
	}
	return p, nil
}

// Create inserts the publication and fills its ID and creation time
func (r *PublicationRepository) Create(ctx context.Context, publication *models.Publication) error {
	mediaURL, mediaAssetID := mediaColumns(publication.Media)

	sql, args, err := r.sb.Insert("publications").
		Columns("author_id", "community_id", "text", "media_url", "media_asset_id").
		Values(publication.AuthorID, publication.CommunityID, publication.Text, mediaURL, mediaAssetID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create publication SQL")
		return fmt.Errorf("failed to build create publication query: %w", err)
	}

	if err := r.pg.Pool.QueryRow(ctx, sql, args...).Scan(&publication.ID, &publication.CreatedAt); err != nil {
		logger.Error().Err(err).Str("communityID", publication.CommunityID.String()).Msg("Error executing create publication query")
		return fmt.Errorf("error creating publication: %w", err)
	}
	return nil
}

// GetByID retrieves a publication by ID
func (r *PublicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Publication, error) {
	sql, args, err := r.sb.Select(publicationColumns...).
		From("publications").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get publication query: %w", err)
	}

	publication, err := scanPublication(r.pg.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPublicationNotFound
		}
		logger.Error().Err(err).Str("publicationID", id.String()).Msg("Error scanning publication row")
		return nil, fmt.Errorf("error getting publication: %w", err)
	}
	return publication, nil
}

// ListByCommunity returns the community's publications, newest first
func (r *PublicationRepository) ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*models.Publication, error) {
	sql, args, err := r.sb.Select(publicationColumns...).
		From("publications").
		Where(squirrel.Eq{"community_id": communityID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list publications query: %w", err)
	}

	rows, err := r.pg.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("communityID", communityID.String()).Msg("Error executing list publications query")
		return nil, fmt.Errorf("error querying publications: %w", err)
	}
	defer rows.Close()

	publications := []*models.Publication{}
	for rows.Next() {
		publication, err := scanPublication(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning publication row: %w", err)
		}
		publications = append(publications, publication)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating publication rows: %w", err)
	}
	return publications, nil
}

// Delete removes a publication; its comments go with it (ON DELETE CASCADE)
func (r *PublicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("publications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete publication query: %w", err)
	}

	cmdTag, err := r.pg.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("publicationID", id.String()).Msg("Error executing delete publication query")
		return fmt.Errorf("error deleting publication: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrPublicationNotFound
	}
	return nil
}
