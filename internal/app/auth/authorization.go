package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uniconnect/api/internal/app/repositories"
	"github.com/uniconnect/api/internal/pkg/apperrors"
)

// AuthorizationService answers the membership and friendship questions that
// gate content mutation. Every answer is read fresh from the store.
type AuthorizationService struct {
	communityRepo repositories.ICommunityRepository
	accountRepo   repositories.IAccountRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(communityRepo repositories.ICommunityRepository, accountRepo repositories.IAccountRepository) *AuthorizationService {
	return &AuthorizationService{
		communityRepo: communityRepo,
		accountRepo:   accountRepo,
	}
}

// IsMember reports whether accountID is in the community's member set.
// A missing community has no members.
func (s *AuthorizationService) IsMember(ctx context.Context, communityID, accountID uuid.UUID) (bool, error) {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("membership lookup: %w", err)
	}
	return community.HasMember(accountID), nil
}

// AreMutualFriends reports whether a and b reference each other
func (s *AuthorizationService) AreMutualFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	if a == b {
		return false, nil
	}

	accounts, err := s.accountRepo.GetByIDs(ctx, []uuid.UUID{a, b})
	if err != nil {
		return false, fmt.Errorf("friendship lookup: %w", err)
	}
	if len(accounts) != 2 {
		return false, nil
	}

	first, second := accounts[0], accounts[1]
	return first.HasFriend(second.ID) && second.HasFriend(first.ID), nil
}
