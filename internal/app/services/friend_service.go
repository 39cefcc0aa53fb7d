package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/uniconnect/api/internal/app/models/dto"
	"github.com/uniconnect/api/internal/app/repositories"
	"github.com/uniconnect/api/internal/pkg/apperrors"
)

// FriendService defines the interface for friend-graph operations
type FriendService interface {
	AddFriend(ctx context.Context, requesterID uuid.UUID, targetID string) error
	RemoveFriend(ctx context.Context, requesterID uuid.UUID, targetID string) error
	ListFriends(ctx context.Context, accountID uuid.UUID) ([]dto.FriendResponse, error)
}

// friendServiceImpl keeps friendship symmetric: an account lists a friend only
// when that friend lists it back. Writes update both records in one
// transaction; ListFriends repairs any one-sided reference it finds.
type friendServiceImpl struct {
	accountRepo repositories.IAccountRepository
	oracle      MembershipOracle
	logger      zerolog.Logger
}

// NewFriendService creates a new FriendService
func NewFriendService(accountRepo repositories.IAccountRepository, oracle MembershipOracle, logger zerolog.Logger) FriendService {
	return &friendServiceImpl{
		accountRepo: accountRepo,
		oracle:      oracle,
		logger:      logger,
	}
}

// AddFriend links the requester and the target in both directions
func (s *friendServiceImpl) AddFriend(ctx context.Context, requesterID uuid.UUID, targetID string) error {
	target, err := parseID("id", targetID)
	if err != nil {
		return err
	}
	if target == requesterID {
		return apperrors.NewBadRequestError("you cannot add yourself as a friend")
	}

	requester, err := s.accountRepo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}
	other, err := s.accountRepo.GetByID(ctx, target)
	if err != nil {
		return err
	}

	mutual, err := s.oracle.AreMutualFriends(ctx, requester.ID, other.ID)
	if err != nil {
		return err
	}
	if mutual {
		return apperrors.NewConflictError("you are already friends")
	}

	// A half-edge left by an earlier failure is completed, not duplicated
	if err := s.accountRepo.AddFriendPair(ctx, requester.ID, other.ID); err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}

	s.logger.Info().
		Str("accountID", requester.ID.String()).
		Str("friendID", other.ID.String()).
		Msg("Friend added")
	return nil
}

// RemoveFriend unlinks the requester and the target in both directions
func (s *friendServiceImpl) RemoveFriend(ctx context.Context, requesterID uuid.UUID, targetID string) error {
	target, err := parseID("id", targetID)
	if err != nil {
		return err
	}

	requester, err := s.accountRepo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}
	other, err := s.accountRepo.GetByID(ctx, target)
	if err != nil {
		return err
	}

	if !requester.HasFriend(other.ID) && !other.HasFriend(requester.ID) {
		return apperrors.NewBadRequestError("you are not friends with this account")
	}

	if err := s.accountRepo.RemoveFriendPair(ctx, requester.ID, other.ID); err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}

	s.logger.Info().
		Str("accountID", requester.ID.String()).
		Str("friendID", other.ID.String()).
		Msg("Friend removed")
	return nil
}

// ListFriends returns the mutual friends of an account. References that are
// dangling or not reciprocated are dropped from the account's list.
func (s *friendServiceImpl) ListFriends(ctx context.Context, accountID uuid.UUID) ([]dto.FriendResponse, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	found, err := s.accountRepo.GetByIDs(ctx, account.Friends)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}
	byID := make(map[uuid.UUID]int, len(found))
	for i, f := range found {
		byID[f.ID] = i
	}

	friends := make([]dto.FriendResponse, 0, len(account.Friends))
	for _, ref := range account.Friends {
		i, ok := byID[ref]
		if ok && found[i].HasFriend(account.ID) {
			friends = append(friends, dto.NewFriendResponse(found[i]))
			continue
		}

		s.logger.Warn().
			Str("accountID", account.ID.String()).
			Str("friendID", ref.String()).
			Bool("missing", !ok).
			Msg("Repairing asymmetric friend reference")
		if err := s.accountRepo.RemoveFriendRef(ctx, account.ID, ref); err != nil {
			s.logger.Error().Err(err).
				Str("accountID", account.ID.String()).
				Str("friendID", ref.String()).
				Msg("Failed to repair friend reference")
		}
	}

	return friends, nil
}
