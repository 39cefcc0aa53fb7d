package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/uniconnect/api/internal/app/models"
	"github.com/uniconnect/api/internal/app/models/dto"
	"github.com/uniconnect/api/internal/app/repositories"
	"github.com/uniconnect/api/internal/pkg/apperrors"
)

// CommunityService defines the interface for community operations
type CommunityService interface {
	GetAllCommunities(ctx context.Context, viewerID uuid.UUID) ([]dto.CommunityResponse, error)
	GetCommunityByID(ctx context.Context, viewerID uuid.UUID, id string) (*dto.CommunityDetailResponse, error)
	CreateCommunity(ctx context.Context, req *dto.CreateCommunityRequest) (*dto.CommunityResponse, error)
	JoinCommunity(ctx context.Context, accountID uuid.UUID, communityID string) error
	LeaveCommunity(ctx context.Context, accountID uuid.UUID, communityID string) error
}

// communityServiceImpl implements CommunityService
type communityServiceImpl struct {
	communityRepo repositories.ICommunityRepository
	subscriptions SubscriptionRevoker
	logger        zerolog.Logger
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(communityRepo repositories.ICommunityRepository, subscriptions SubscriptionRevoker, logger zerolog.Logger) CommunityService {
	return &communityServiceImpl{
		communityRepo: communityRepo,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// GetAllCommunities lists every community as seen by the viewer
func (s *communityServiceImpl) GetAllCommunities(ctx context.Context, viewerID uuid.UUID) ([]dto.CommunityResponse, error) {
	communities, err := s.communityRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list communities: %w", err)
	}

	resp := make([]dto.CommunityResponse, 0, len(communities))
	for _, c := range communities {
		resp = append(resp, dto.NewCommunityResponse(c, viewerID))
	}
	return resp, nil
}

// GetCommunityByID returns a community with its member list
func (s *communityServiceImpl) GetCommunityByID(ctx context.Context, viewerID uuid.UUID, id string) (*dto.CommunityDetailResponse, error) {
	communityID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	resp := dto.NewCommunityDetailResponse(community, viewerID)
	return &resp, nil
}

// CreateCommunity creates a community with no members
func (s *communityServiceImpl) CreateCommunity(ctx context.Context, req *dto.CreateCommunityRequest) (*dto.CommunityResponse, error) {
	community := &models.Community{
		Name:        strings.TrimSpace(req.Name),
		Description: optional(req.Description),
	}
	if community.Name == "" {
		return nil, apperrors.NewFieldError("nombre", "nombre is required")
	}

	if err := s.communityRepo.Create(ctx, community); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("communityID", community.ID.String()).
		Str("name", community.Name).
		Msg("Community created")

	resp := dto.NewCommunityResponse(community, uuid.Nil)
	return &resp, nil
}

// JoinCommunity adds the account to the community's members
func (s *communityServiceImpl) JoinCommunity(ctx context.Context, accountID uuid.UUID, communityID string) error {
	id, err := parseID("id", communityID)
	if err != nil {
		return err
	}

	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if community.HasMember(accountID) {
		return apperrors.NewConflictError("you are already a member of this community")
	}

	if err := s.communityRepo.AddMember(ctx, id, accountID); err != nil {
		return err
	}

	s.logger.Info().
		Str("communityID", id.String()).
		Str("accountID", accountID.String()).
		Msg("Account joined community")
	return nil
}

// LeaveCommunity removes the account from the community's members and closes
// any event stream it still has open on that community
func (s *communityServiceImpl) LeaveCommunity(ctx context.Context, accountID uuid.UUID, communityID string) error {
	id, err := parseID("id", communityID)
	if err != nil {
		return err
	}

	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !community.HasMember(accountID) {
		return apperrors.NewBadRequestError("you are not a member of this community")
	}

	if err := s.communityRepo.RemoveMember(ctx, id, accountID); err != nil {
		return err
	}
	revoked := s.subscriptions.RevokeMember(id, accountID)

	s.logger.Info().
		Str("communityID", id.String()).
		Str("accountID", accountID.String()).
		Int("revokedSubscriptions", revoked).
		Msg("Account left community")
	return nil
}
