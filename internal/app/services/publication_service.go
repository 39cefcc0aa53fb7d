package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/uniconnect/api/internal/app/models"
	"github.com/uniconnect/api/internal/app/models/dto"
	"github.com/uniconnect/api/internal/app/repositories"
	"github.com/uniconnect/api/internal/pkg/apperrors"
	"github.com/uniconnect/api/internal/pkg/filestorage"
	"github.com/uniconnect/api/internal/pkg/websocket"
)

// PublicationService defines the interface for publication operations
type PublicationService interface {
	CreatePublication(ctx context.Context, callerID uuid.UUID, req *dto.CreatePublicationRequest, image *multipart.FileHeader) (*dto.PublicationResponse, error)
	ListByCommunity(ctx context.Context, communityID string) ([]dto.PublicationResponse, error)
	DeletePublication(ctx context.Context, callerID uuid.UUID, publicationID string) error
}

// publicationServiceImpl implements PublicationService
type publicationServiceImpl struct {
	publicationRepo repositories.IPublicationRepository
	accountRepo     repositories.IAccountRepository
	membership      MembershipOracle
	assets          filestorage.AssetStore
	publisher       EventPublisher
	logger          zerolog.Logger
}

// NewPublicationService creates a new PublicationService
func NewPublicationService(
	publicationRepo repositories.IPublicationRepository,
	accountRepo repositories.IAccountRepository,
	membership MembershipOracle,
	assets filestorage.AssetStore,
	publisher EventPublisher,
	logger zerolog.Logger,
) PublicationService {
	return &publicationServiceImpl{
		publicationRepo: publicationRepo,
		accountRepo:     accountRepo,
		membership:      membership,
		assets:          assets,
		publisher:       publisher,
		logger:          logger,
	}
}

// CreatePublication validates, stores, enriches and broadcasts a new publication
func (s *publicationServiceImpl) CreatePublication(ctx context.Context, callerID uuid.UUID, req *dto.CreatePublicationRequest, image *multipart.FileHeader) (*dto.PublicationResponse, error) {
	communityID, err := parseID("comunidad", req.CommunityID)
	if err != nil {
		return nil, err
	}

	if err := requireMember(ctx, s.membership, communityID, callerID); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Text)
	if text == "" && image == nil {
		return nil, apperrors.NewBadRequestError("a publication needs text or an image")
	}

	publication := &models.Publication{
		AuthorID:    callerID,
		CommunityID: communityID,
	}
	if text != "" {
		publication.Text = &text
	}

	if image != nil {
		if err := filestorage.ValidateImage(image); err != nil {
			return nil, imageError("imagen", err)
		}
		asset, err := s.assets.Upload(ctx, image, filestorage.FolderPublications)
		if err != nil {
			s.logger.Error().Err(err).Str("communityID", communityID.String()).Msg("Publication image upload failed")
			return nil, apperrors.NewUpstreamError("the image could not be uploaded", err)
		}
		publication.Media = &models.Media{URL: asset.URL, AssetID: asset.AssetID}
	}

	if err := s.publicationRepo.Create(ctx, publication); err != nil {
		if !publication.Media.IsZero() {
			s.discardAsset(publication.Media.AssetID)
		}
		return nil, fmt.Errorf("failed to save publication: %w", err)
	}

	// The row is committed; an author lookup failure only degrades the projection
	if authors, err := authorProjections(ctx, s.accountRepo, []uuid.UUID{callerID}); err != nil {
		s.logger.Warn().Err(err).
			Str("publicationID", publication.ID.String()).
			Msg("Failed to load publication author")
	} else {
		publication.Author = authors[callerID]
	}

	resp := dto.NewPublicationResponse(publication)
	s.publisher.Publish(websocket.Channel{CommunityID: communityID, Kind: websocket.KindNewPublication}, resp)

	s.logger.Info().
		Str("publicationID", publication.ID.String()).
		Str("communityID", communityID.String()).
		Msg("Publication created")

	return &resp, nil
}

// ListByCommunity returns the community's publications newest first
func (s *publicationServiceImpl) ListByCommunity(ctx context.Context, communityID string) ([]dto.PublicationResponse, error) {
	id, err := parseID("comunidadId", communityID)
	if err != nil {
		return nil, err
	}

	publications, err := s.publicationRepo.ListByCommunity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list publications: %w", err)
	}

	authorIDs := make([]uuid.UUID, 0, len(publications))
	for _, p := range publications {
		authorIDs = append(authorIDs, p.AuthorID)
	}
	authors, err := authorProjections(ctx, s.accountRepo, authorIDs)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.PublicationResponse, 0, len(publications))
	for _, p := range publications {
		p.Author = authors[p.AuthorID]
		resp = append(resp, dto.NewPublicationResponse(p))
	}
	return resp, nil
}

// DeletePublication removes the caller's publication and its image
func (s *publicationServiceImpl) DeletePublication(ctx context.Context, callerID uuid.UUID, publicationID string) error {
	id, err := parseID("id", publicationID)
	if err != nil {
		return err
	}

	publication, err := s.publicationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if publication.AuthorID != callerID {
		return apperrors.NewForbiddenError("you can only delete your own publications")
	}

	if err := s.publicationRepo.Delete(ctx, id); err != nil {
		return err
	}

	// The row is the source of truth; a leftover asset is only logged
	if !publication.Media.IsZero() {
		if err := s.assets.Delete(ctx, publication.Media.AssetID); err != nil {
			s.logger.Warn().Err(err).
				Str("publicationID", id.String()).
				Str("assetID", publication.Media.AssetID).
				Msg("Failed to delete publication image")
		}
	}

	s.publisher.Publish(
		websocket.Channel{CommunityID: publication.CommunityID, Kind: websocket.KindDeletePublication},
		dto.PublicationDeletedEvent{PublicationID: id, CommunityID: publication.CommunityID},
	)

	s.logger.Info().Str("publicationID", id.String()).Msg("Publication deleted")
	return nil
}

// discardAsset removes an upload whose record could not be saved
func (s *publicationServiceImpl) discardAsset(assetID string) {
	if err := s.assets.Delete(context.Background(), assetID); err != nil {
		s.logger.Warn().Err(err).Str("assetID", assetID).Msg("Failed to discard orphaned asset")
	}
}

// imageError maps image validation failures to InvalidInput on field
func imageError(field string, err error) error {
	switch {
	case errors.Is(err, filestorage.ErrFileTooLarge),
		errors.Is(err, filestorage.ErrUnsupportedFormat),
		errors.Is(err, filestorage.ErrUnreadableUpload):
		return apperrors.NewFieldError(field, err.Error())
	}
	return fmt.Errorf("image validation: %w", err)
}
