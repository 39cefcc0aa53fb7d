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
	"github.com/uniconnect/api/internal/pkg/websocket"
)

// CommentService defines the interface for comment operations
type CommentService interface {
	CreateComment(ctx context.Context, callerID uuid.UUID, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	UpdateComment(ctx context.Context, callerID uuid.UUID, commentID string, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, callerID uuid.UUID, commentID string) error
	ListByPublication(ctx context.Context, publicationID string) ([]dto.CommentResponse, error)
}

// commentServiceImpl implements CommentService
type commentServiceImpl struct {
	commentRepo     repositories.ICommentRepository
	publicationRepo repositories.IPublicationRepository
	accountRepo     repositories.IAccountRepository
	membership      MembershipOracle
	publisher       EventPublisher
	logger          zerolog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(
	commentRepo repositories.ICommentRepository,
	publicationRepo repositories.IPublicationRepository,
	accountRepo repositories.IAccountRepository,
	membership MembershipOracle,
	publisher EventPublisher,
	logger zerolog.Logger,
) CommentService {
	return &commentServiceImpl{
		commentRepo:     commentRepo,
		publicationRepo: publicationRepo,
		accountRepo:     accountRepo,
		membership:      membership,
		publisher:       publisher,
		logger:          logger,
	}
}

// CreateComment runs the checks in a fixed order; the first failure wins
// and nothing is stored or broadcast.
func (s *commentServiceImpl) CreateComment(ctx context.Context, callerID uuid.UUID, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	text := strings.TrimSpace(req.Text)

	// 1. every field present
	for _, f := range []struct{ name, value string }{
		{"publicacion", req.PublicationID},
		{"comunidad", req.CommunityID},
		{"contenido", text},
	} {
		if strings.TrimSpace(f.value) == "" {
			return nil, apperrors.NewFieldError(f.name, f.name+" is required")
		}
	}

	// 2. well-formed references
	publicationID, err := parseID("publicacion", req.PublicationID)
	if err != nil {
		return nil, err
	}
	communityID, err := parseID("comunidad", req.CommunityID)
	if err != nil {
		return nil, err
	}

	// 3. publication exists
	publication, err := s.publicationRepo.GetByID(ctx, publicationID)
	if err != nil {
		return nil, err
	}

	// 4. same community as the publication
	if publication.CommunityID != communityID {
		return nil, apperrors.NewFieldError("comunidad", "the comment must belong to the publication's community")
	}

	// 5. caller is a member
	if err := requireMember(ctx, s.membership, communityID, callerID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PublicationID: publicationID,
		CommunityID:   communityID,
		AuthorID:      callerID,
		Text:          text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	s.enrich(ctx, comment)

	resp := dto.NewCommentResponse(comment)
	s.publisher.Publish(
		websocket.Channel{CommunityID: communityID, Kind: websocket.KindNewComment},
		dto.CommentCreatedEvent{CommentResponse: resp, PublicationRef: publicationID},
	)

	s.logger.Info().
		Str("commentID", comment.ID.String()).
		Str("publicationID", publicationID.String()).
		Msg("Comment created")

	return &resp, nil
}

// UpdateComment lets the author replace the text of a comment
func (s *commentServiceImpl) UpdateComment(ctx context.Context, callerID uuid.UUID, commentID string, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	id, err := parseID("id", commentID)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperrors.NewFieldError("contenido", "contenido is required")
	}

	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != callerID {
		return nil, apperrors.NewForbiddenError("you can only edit your own comments")
	}

	updated, err := s.commentRepo.UpdateText(ctx, id, text)
	if err != nil {
		return nil, err
	}
	s.enrich(ctx, updated)

	s.publisher.Publish(
		websocket.Channel{CommunityID: updated.CommunityID, Kind: websocket.KindUpdateComment},
		dto.CommentUpdatedEvent{
			ID:            updated.ID,
			Text:          updated.Text,
			Author:        updated.Author,
			PublicationID: updated.PublicationID,
			CommunityID:   updated.CommunityID,
		},
	)

	resp := dto.NewCommentResponse(updated)
	return &resp, nil
}

// DeleteComment lets the author remove a comment
func (s *commentServiceImpl) DeleteComment(ctx context.Context, callerID uuid.UUID, commentID string) error {
	id, err := parseID("id", commentID)
	if err != nil {
		return err
	}

	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.AuthorID != callerID {
		return apperrors.NewForbiddenError("you can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.publisher.Publish(
		websocket.Channel{CommunityID: comment.CommunityID, Kind: websocket.KindDeleteComment},
		dto.CommentDeletedEvent{
			CommentID:     id,
			PublicationID: comment.PublicationID,
			CommunityID:   comment.CommunityID,
		},
	)

	s.logger.Info().Str("commentID", id.String()).Msg("Comment deleted")
	return nil
}

// ListByPublication returns the comments of a publication oldest first
func (s *commentServiceImpl) ListByPublication(ctx context.Context, publicationID string) ([]dto.CommentResponse, error) {
	id, err := parseID("publicacionId", publicationID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPublication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	authorIDs := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	authors, err := authorProjections(ctx, s.accountRepo, authorIDs)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		c.Author = authors[c.AuthorID]
		resp = append(resp, dto.NewCommentResponse(c))
	}
	return resp, nil
}

// enrich attaches the author projection. It runs after the write has
// committed, so a failed lookup leaves the author empty instead of failing.
func (s *commentServiceImpl) enrich(ctx context.Context, comment *models.Comment) {
	authors, err := authorProjections(ctx, s.accountRepo, []uuid.UUID{comment.AuthorID})
	if err != nil {
		s.logger.Warn().Err(err).
			Str("commentID", comment.ID.String()).
			Str("authorID", comment.AuthorID.String()).
			Msg("Failed to load comment author")
		return
	}
	comment.Author = authors[comment.AuthorID]
}
