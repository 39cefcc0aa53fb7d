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
	"github.com/uniconnect/api/internal/pkg/auth"
	"github.com/uniconnect/api/internal/pkg/filestorage"
	"github.com/uniconnect/api/internal/pkg/validation"
)

// Caller is the authenticated identity performing an operation
type Caller struct {
	ID   uuid.UUID
	Role string
}

// IsAdministrator reports whether the caller has the administrator role
func (c Caller) IsAdministrator() bool {
	return c.Role == string(models.RoleAdministrator)
}

// TokenIssuer signs credentials for authenticated accounts
type TokenIssuer interface {
	Issue(accountID uuid.UUID, role string) (string, int, error)
}

// AccountService defines the interface for account operations
type AccountService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	GetProfile(ctx context.Context, accountID uuid.UUID) (*dto.AccountResponse, error)
	GetAccount(ctx context.Context, accountID string) (*dto.AccountResponse, error)
	UpdateProfile(ctx context.Context, caller Caller, accountID string, req *dto.UpdateProfileRequest, avatar *multipart.FileHeader) (*dto.AccountResponse, error)
	ChangePassword(ctx context.Context, accountID uuid.UUID, req *dto.ChangePasswordRequest) error
	Deactivate(ctx context.Context, caller Caller, accountID string) error
	Reactivate(ctx context.Context, accountID string) error
}

// accountServiceImpl implements AccountService
type accountServiceImpl struct {
	accountRepo    repositories.IAccountRepository
	hasher         auth.PasswordHasher
	tokens         TokenIssuer
	assets         filestorage.AssetStore
	allowedDomains []string
	logger         zerolog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(
	accountRepo repositories.IAccountRepository,
	hasher auth.PasswordHasher,
	tokens TokenIssuer,
	assets filestorage.AssetStore,
	allowedDomains []string,
	logger zerolog.Logger,
) AccountService {
	return &accountServiceImpl{
		accountRepo:    accountRepo,
		hasher:         hasher,
		tokens:         tokens,
		assets:         assets,
		allowedDomains: allowedDomains,
		logger:         logger,
	}
}

// Login checks the account state and the password, then issues a credential
func (s *accountServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	account, err := s.accountRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("this email is not registered")
		}
		return nil, err
	}

	if !account.Confirmed {
		return nil, &apperrors.CustomError{Err: apperrors.ErrEmailNotVerified, Message: "please confirm your email before logging in"}
	}
	if !account.Active {
		return nil, &apperrors.CustomError{Err: apperrors.ErrAccountDisabled, Message: "this account has been deactivated"}
	}
	if !s.hasher.Compare(account.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.tokens.Issue(account.ID, string(account.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	profile, err := s.profile(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("accountID", account.ID.String()).Msg("Account logged in")
	return &dto.LoginResponse{Token: token, ExpiresIn: expiresIn, Account: *profile}, nil
}

// GetProfile returns the caller's own profile
func (s *accountServiceImpl) GetProfile(ctx context.Context, accountID uuid.UUID) (*dto.AccountResponse, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, account)
}

// GetAccount returns any account's profile
func (s *accountServiceImpl) GetAccount(ctx context.Context, accountID string) (*dto.AccountResponse, error) {
	id, err := parseID("id", accountID)
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, id)
}

// UpdateProfile changes profile fields of an account. Only its owner or an
// administrator may do so; the password cannot be changed here.
func (s *accountServiceImpl) UpdateProfile(ctx context.Context, caller Caller, accountID string, req *dto.UpdateProfileRequest, avatar *multipart.FileHeader) (*dto.AccountResponse, error) {
	id, err := parseID("id", accountID)
	if err != nil {
		return nil, err
	}
	if caller.ID != id && !caller.IsAdministrator() {
		return nil, apperrors.NewForbiddenError("you can only update your own profile")
	}
	if req.Password != nil {
		return nil, apperrors.NewFieldError("password", "use the password endpoint to change the password")
	}

	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyProfile(account, req); err != nil {
		return nil, err
	}

	var oldAvatar *models.Media
	if avatar != nil {
		if err := filestorage.ValidateImage(avatar); err != nil {
			return nil, imageError("fotoPerfil", err)
		}
		asset, err := s.assets.Upload(ctx, avatar, filestorage.FolderAvatars)
		if err != nil {
			return nil, apperrors.NewUpstreamError("the profile picture could not be uploaded", err)
		}
		oldAvatar = account.Avatar
		account.Avatar = &models.Media{URL: asset.URL, AssetID: asset.AssetID}
	}

	if err := s.accountRepo.UpdateProfile(ctx, account); err != nil {
		if avatar != nil {
			s.deleteAsset(ctx, account.Avatar.AssetID)
		}
		return nil, err
	}
	if !oldAvatar.IsZero() {
		s.deleteAsset(ctx, oldAvatar.AssetID)
	}

	s.logger.Info().
		Str("accountID", account.ID.String()).
		Str("updatedBy", caller.ID.String()).
		Msg("Profile updated")

	return s.profile(ctx, account)
}

func (s *accountServiceImpl) applyProfile(account *models.Account, req *dto.UpdateProfileRequest) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < validation.NameMinLength || len(name) > validation.NameMaxLength {
			return apperrors.NewFieldError("nombre", fmt.Sprintf("nombre must be between %d and %d characters", validation.NameMinLength, validation.NameMaxLength))
		}
		account.Name = name
	}
	if req.Handle != nil {
		handle := strings.TrimSpace(*req.Handle)
		if !validation.IsValidHandle(handle) {
			return apperrors.NewFieldError("usuario", "usuario may only contain letters, digits, dots and underscores (3-30)")
		}
		account.Handle = handle
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !validation.IsValidEmail(email) {
			return apperrors.NewFieldError("email", "email must be a valid email address")
		}
		if !validation.HasAllowedDomain(email, s.allowedDomains) {
			return apperrors.NewFieldError("email", "only institutional emails are allowed: "+strings.Join(s.allowedDomains, ", "))
		}
		account.Email = email
	}
	if req.Phone != nil {
		account.Phone = optional(*req.Phone)
	}
	if req.University != nil {
		account.University = optional(*req.University)
	}
	if req.Career != nil {
		account.Career = optional(*req.Career)
	}
	if req.Bio != nil {
		account.Bio = optional(*req.Bio)
	}
	if req.Interests != nil {
		account.Interests = cleanInterests(req.Interests)
	}
	return nil
}

// ChangePassword replaces the caller's password after checking the current one
func (s *accountServiceImpl) ChangePassword(ctx context.Context, accountID uuid.UUID, req *dto.ChangePasswordRequest) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !s.hasher.Compare(account.PasswordHash, req.CurrentPassword) {
		return apperrors.NewFieldError("passwordActual", "the current password is not correct")
	}
	if !validation.IsStrongPassword(req.NewPassword) {
		return apperrors.NewFieldError("passwordNuevo", "password must have at least 8 characters including a letter and a digit")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.accountRepo.UpdatePassword(ctx, account.ID, hash); err != nil {
		return err
	}

	s.logger.Info().Str("accountID", account.ID.String()).Msg("Password changed")
	return nil
}

// Deactivate disables an account; the owner or an administrator may do it
func (s *accountServiceImpl) Deactivate(ctx context.Context, caller Caller, accountID string) error {
	id, err := parseID("id", accountID)
	if err != nil {
		return err
	}
	if caller.ID != id && !caller.IsAdministrator() {
		return apperrors.NewForbiddenError("you can only deactivate your own account")
	}

	if err := s.accountRepo.SetActive(ctx, id, false); err != nil {
		return err
	}

	s.logger.Info().Str("accountID", id.String()).Str("deactivatedBy", caller.ID.String()).Msg("Account deactivated")
	return nil
}

// Reactivate enables a deactivated account
func (s *accountServiceImpl) Reactivate(ctx context.Context, accountID string) error {
	id, err := parseID("id", accountID)
	if err != nil {
		return err
	}
	if err := s.accountRepo.SetActive(ctx, id, true); err != nil {
		return err
	}

	s.logger.Info().Str("accountID", id.String()).Msg("Account reactivated")
	return nil
}

// profile resolves the friend projections of account
func (s *accountServiceImpl) profile(ctx context.Context, account *models.Account) (*dto.AccountResponse, error) {
	friends, err := s.accountRepo.GetByIDs(ctx, account.Friends)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}

	mutual := friends[:0]
	for _, f := range friends {
		if f.HasFriend(account.ID) {
			mutual = append(mutual, f)
		}
	}

	resp := dto.NewAccountResponse(account, mutual)
	return &resp, nil
}

func (s *accountServiceImpl) deleteAsset(ctx context.Context, assetID string) {
	if err := s.assets.Delete(context.WithoutCancel(ctx), assetID); err != nil {
		s.logger.Warn().Err(err).Str("assetID", assetID).Msg("Failed to delete avatar")
	}
}
