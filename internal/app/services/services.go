package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uniconnect/api/internal/app/models"
	"github.com/uniconnect/api/internal/app/repositories"
	"github.com/uniconnect/api/internal/pkg/apperrors"
	"github.com/uniconnect/api/internal/pkg/websocket"
)

// EventPublisher pushes one event to the subscribers of a community channel.
// Publish must not block and never reports failure to the caller.
type EventPublisher interface {
	Publish(channel websocket.Channel, payload interface{})
}

// SubscriptionRevoker cuts the live event streams an account holds on a community
type SubscriptionRevoker interface {
	RevokeMember(communityID, accountID uuid.UUID) int
}

// MembershipOracle answers the authorization questions of the content pipeline
type MembershipOracle interface {
	IsMember(ctx context.Context, communityID, accountID uuid.UUID) (bool, error)
	AreMutualFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
}

// parseID turns a request field into a reference; blank input is reported as missing
func parseID(field, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, apperrors.NewFieldError(field, field+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewFieldError(field, field+" is not a valid identifier")
	}
	return id, nil
}

// authorProjections loads the public projection of every distinct author
func authorProjections(ctx context.Context, accounts repositories.IAccountRepository, ids []uuid.UUID) (map[uuid.UUID]*models.AuthorProjection, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	found, err := accounts.GetByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}

	projections := make(map[uuid.UUID]*models.AuthorProjection, len(found))
	for _, a := range found {
		p := a.Projection()
		projections[a.ID] = &p
	}
	return projections, nil
}

// requireMember turns a negative membership answer into Forbidden
func requireMember(ctx context.Context, oracle MembershipOracle, communityID, accountID uuid.UUID) error {
	isMember, err := oracle.IsMember(ctx, communityID, accountID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperrors.NewForbiddenError("you are not a member of this community")
	}
	return nil
}
