package repositories

import (
	"github.com/uniconnect/api/internal/pkg/apperrors"
)

// Repository errors; each wraps an apperrors category
var (
	ErrAccountNotFound     = apperrors.NewResourceNotFoundError("account not found")
	ErrCommunityNotFound   = apperrors.NewResourceNotFoundError("community not found")
	ErrPublicationNotFound = apperrors.NewResourceNotFoundError("publication not found")
	ErrCommentNotFound     = apperrors.NewResourceNotFoundError("comment not found")
	ErrTokenNotFound       = apperrors.NewResourceNotFoundError("confirmation token not found")

	ErrEmailTaken         = apperrors.NewConflictError("email is already registered")
	ErrHandleTaken        = apperrors.NewConflictError("username is already taken")
	ErrCommunityNameTaken = apperrors.NewConflictError("a community with this name already exists")
)

// Unique constraints declared in migrations/001_init.sql
const (
	constraintAccountEmail  = "accounts_email_key"
	constraintAccountHandle = "accounts_handle_key"
	constraintCommunityName = "communities_name_key"
)
