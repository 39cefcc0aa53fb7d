package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/uniconnect/api/internal/app/models"
	"github.com/uniconnect/api/internal/app/models/dto"
	"github.com/uniconnect/api/internal/app/repositories"
	"github.com/uniconnect/api/internal/pkg/apperrors"
	"github.com/uniconnect/api/internal/pkg/auth"
	"github.com/uniconnect/api/internal/pkg/email"
	"github.com/uniconnect/api/internal/pkg/filestorage"
	"github.com/uniconnect/api/internal/pkg/validation"
)

// RegistrationService defines the interface for account registration
type RegistrationService interface {
	Register(ctx context.Context, req *dto.RegisterRequest, avatar *multipart.FileHeader) (*dto.RegisterResponse, error)
	ConfirmEmail(ctx context.Context, token string) error
}

// registrationServiceImpl runs registration as a saga: every step yields a
// stepResult, and a failed confirmation email triggers the compensation that
// removes the unconfirmed account again.
type registrationServiceImpl struct {
	accountRepo    repositories.IAccountRepository
	hasher         auth.PasswordHasher
	mailer         email.Mailer
	assets         filestorage.AssetStore
	allowedDomains []string
	newToken       func() (string, error)
	logger         zerolog.Logger
}

// NewRegistrationService creates a new RegistrationService
func NewRegistrationService(
	accountRepo repositories.IAccountRepository,
	hasher auth.PasswordHasher,
	mailer email.Mailer,
	assets filestorage.AssetStore,
	allowedDomains []string,
	logger zerolog.Logger,
) RegistrationService {
	return &registrationServiceImpl{
		accountRepo:    accountRepo,
		hasher:         hasher,
		mailer:         mailer,
		assets:         assets,
		allowedDomains: allowedDomains,
		newToken:       email.GenerateVerificationToken,
		logger:         logger,
	}
}

// Saga steps, in execution order
const (
	stepValidate   = "validate"
	stepUnique     = "unique"
	stepHash       = "hash"
	stepToken      = "token"
	stepUpload     = "upload"
	stepPersist    = "persist"
	stepDeliver    = "deliver"
	stepCompensate = "compensate"
)

// stepResult is the outcome of one saga step
type stepResult struct {
	step string
	err  error
}

func stepOK(step string) stepResult { return stepResult{step: step} }

func stepFailed(step string, err error) stepResult { return stepResult{step: step, err: err} }

func (r stepResult) failed() bool { return r.err != nil }

// registration is the state the saga accumulates
type registration struct {
	account *models.Account
	avatar  *filestorage.Asset
}

// Register creates an unconfirmed account and sends its confirmation email.
// If the email cannot be delivered the account is deleted again.
func (s *registrationServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest, avatar *multipart.FileHeader) (*dto.RegisterResponse, error) {
	reg := &registration{}

	steps := []func(context.Context, *dto.RegisterRequest, *multipart.FileHeader, *registration) stepResult{
		s.validate,
		s.checkUnique,
		s.hashPassword,
		s.issueToken,
		s.uploadAvatar,
		s.persist,
	}
	for _, step := range steps {
		if res := step(ctx, req, avatar, reg); res.failed() {
			s.logger.Debug().Str("step", res.step).Err(res.err).Msg("Registration aborted")
			return nil, res.err
		}
	}

	if res := s.deliver(ctx, reg); res.failed() {
		comp := s.compensate(ctx, reg)
		s.logger.Warn().
			Err(res.err).
			Str("email", reg.account.Email).
			Bool("compensated", !comp.failed()).
			Msg("Confirmation email not delivered, registration rolled back")

		upstream := apperrors.NewUpstreamError("the confirmation email could not be sent, please try again", res.err)
		if comp.failed() {
			return nil, errors.Join(upstream, comp.err)
		}
		return nil, upstream
	}

	s.logger.Info().
		Str("accountID", reg.account.ID.String()).
		Str("email", reg.account.Email).
		Msg("Account registered, confirmation pending")

	return &dto.RegisterResponse{ID: reg.account.ID, Email: reg.account.Email}, nil
}

func (s *registrationServiceImpl) validate(_ context.Context, req *dto.RegisterRequest, avatar *multipart.FileHeader, _ *registration) stepResult {
	required := []struct{ field, value string }{
		{"nombre", req.Name},
		{"usuario", req.Handle},
		{"email", req.Email},
		{"password", req.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return stepFailed(stepValidate, apperrors.NewFieldError(r.field, r.field+" is required"))
		}
	}

	name := strings.TrimSpace(req.Name)
	if len(name) < validation.NameMinLength || len(name) > validation.NameMaxLength {
		return stepFailed(stepValidate, apperrors.NewFieldError("nombre", fmt.Sprintf("nombre must be between %d and %d characters", validation.NameMinLength, validation.NameMaxLength)))
	}
	if !validation.IsValidHandle(strings.TrimSpace(req.Handle)) {
		return stepFailed(stepValidate, apperrors.NewFieldError("usuario", "usuario may only contain letters, digits, dots and underscores (3-30)"))
	}
	if !validation.IsValidEmail(strings.TrimSpace(req.Email)) {
		return stepFailed(stepValidate, apperrors.NewFieldError("email", "email must be a valid email address"))
	}
	if !validation.HasAllowedDomain(req.Email, s.allowedDomains) {
		return stepFailed(stepValidate, apperrors.NewFieldError("email", "only institutional emails are allowed: "+strings.Join(s.allowedDomains, ", ")))
	}
	if !validation.IsStrongPassword(req.Password) {
		return stepFailed(stepValidate, apperrors.NewFieldError("password", "password must have at least 8 characters including a letter and a digit"))
	}
	if avatar != nil {
		if err := filestorage.ValidateImage(avatar); err != nil {
			return stepFailed(stepValidate, imageError("fotoPerfil", err))
		}
	}
	return stepOK(stepValidate)
}

func (s *registrationServiceImpl) checkUnique(ctx context.Context, req *dto.RegisterRequest, _ *multipart.FileHeader, _ *registration) stepResult {
	exists, err := s.accountRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return stepFailed(stepUnique, fmt.Errorf("error checking if email exists: %w", err))
	}
	if exists {
		return stepFailed(stepUnique, repositories.ErrEmailTaken)
	}

	exists, err = s.accountRepo.HandleExists(ctx, strings.TrimSpace(req.Handle))
	if err != nil {
		return stepFailed(stepUnique, fmt.Errorf("error checking if username exists: %w", err))
	}
	if exists {
		return stepFailed(stepUnique, repositories.ErrHandleTaken)
	}
	return stepOK(stepUnique)
}

func (s *registrationServiceImpl) hashPassword(_ context.Context, req *dto.RegisterRequest, _ *multipart.FileHeader, reg *registration) stepResult {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return stepFailed(stepHash, fmt.Errorf("error hashing password: %w", err))
	}

	reg.account = &models.Account{
		Name:         strings.TrimSpace(req.Name),
		Handle:       strings.TrimSpace(req.Handle),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Phone:        optional(req.Phone),
		University:   optional(req.University),
		Career:       optional(req.Career),
		Bio:          optional(req.Bio),
		Interests:    cleanInterests(req.Interests),
		Role:         models.RoleStudent,
		Confirmed:    false,
		Active:       true,
	}
	return stepOK(stepHash)
}

func (s *registrationServiceImpl) issueToken(_ context.Context, _ *dto.RegisterRequest, _ *multipart.FileHeader, reg *registration) stepResult {
	token, err := s.newToken()
	if err != nil {
		return stepFailed(stepToken, fmt.Errorf("error generating confirmation token: %w", err))
	}
	reg.account.ConfirmationToken = &token
	return stepOK(stepToken)
}

func (s *registrationServiceImpl) uploadAvatar(ctx context.Context, _ *dto.RegisterRequest, avatar *multipart.FileHeader, reg *registration) stepResult {
	if avatar == nil {
		return stepOK(stepUpload)
	}

	asset, err := s.assets.Upload(ctx, avatar, filestorage.FolderAvatars)
	if err != nil {
		return stepFailed(stepUpload, apperrors.NewUpstreamError("the profile picture could not be uploaded", err))
	}
	reg.avatar = asset
	reg.account.Avatar = &models.Media{URL: asset.URL, AssetID: asset.AssetID}
	return stepOK(stepUpload)
}

func (s *registrationServiceImpl) persist(ctx context.Context, _ *dto.RegisterRequest, _ *multipart.FileHeader, reg *registration) stepResult {
	if err := s.accountRepo.Create(ctx, reg.account); err != nil {
		if reg.avatar != nil {
			if delErr := s.assets.Delete(context.WithoutCancel(ctx), reg.avatar.AssetID); delErr != nil {
				s.logger.Warn().Err(delErr).Str("assetID", reg.avatar.AssetID).Msg("Failed to discard avatar of unsaved account")
			}
		}
		if errors.Is(err, apperrors.ErrConflict) {
			return stepFailed(stepPersist, err)
		}
		return stepFailed(stepPersist, fmt.Errorf("error creating account: %w", err))
	}
	return stepOK(stepPersist)
}

func (s *registrationServiceImpl) deliver(ctx context.Context, reg *registration) stepResult {
	result := s.mailer.SendConfirmation(ctx, reg.account.Email, reg.account.Name, *reg.account.ConfirmationToken)
	if !result.OK {
		err := result.Err
		if err == nil {
			err = errors.New("mailer reported a failed delivery")
		}
		return stepFailed(stepDeliver, err)
	}
	return stepOK(stepDeliver)
}

// compensate deletes the account and its avatar. It runs to completion even
// if the request context is already cancelled.
func (s *registrationServiceImpl) compensate(ctx context.Context, reg *registration) stepResult {
	ctx = context.WithoutCancel(ctx)
	var errs []error

	if err := s.accountRepo.Delete(ctx, reg.account.ID); err != nil && !errors.Is(err, repositories.ErrAccountNotFound) {
		s.logger.Error().Err(err).Str("accountID", reg.account.ID.String()).Msg("Failed to delete unconfirmed account during rollback")
		errs = append(errs, fmt.Errorf("rollback account: %w", err))
	}

	if reg.avatar != nil {
		if err := s.assets.Delete(ctx, reg.avatar.AssetID); err != nil {
			s.logger.Error().Err(err).Str("assetID", reg.avatar.AssetID).Msg("Failed to delete avatar during rollback")
			errs = append(errs, fmt.Errorf("rollback avatar: %w", err))
		}
	}

	if len(errs) > 0 {
		return stepFailed(stepCompensate, errors.Join(errs...))
	}
	return stepOK(stepCompensate)
}

// ConfirmEmail consumes a confirmation token. Unknown or already used tokens are NotFound.
func (s *registrationServiceImpl) ConfirmEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.NewFieldError("token", "token is required")
	}

	accountID, err := s.accountRepo.ConfirmByToken(ctx, token)
	if err != nil {
		return err
	}

	s.logger.Info().Str("accountID", accountID.String()).Msg("Email confirmed")
	return nil
}

// optional returns nil for blank input
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// cleanInterests trims entries and drops blanks
func cleanInterests(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
