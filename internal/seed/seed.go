package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/uniconnect/api/internal/app/models"
	appRepos "github.com/uniconnect/api/internal/app/repositories"
	"github.com/uniconnect/api/internal/pkg/apperrors"
	"github.com/uniconnect/api/internal/pkg/auth"
)

// Defaults describes the data every fresh installation starts with
type Defaults struct {
	AdminEmail    string
	AdminPassword string
	Communities   []string
}

// CreateDefaultData creates the administrator account and the default
// communities if they don't exist. Failures are collected, not fatal.
func CreateDefaultData(
	ctx context.Context,
	accountRepo appRepos.IAccountRepository,
	communityRepo appRepos.ICommunityRepository,
	hasher auth.PasswordHasher,
	defaults Defaults,
	lgr zerolog.Logger,
) error {
	lgr.Info().Msg("Checking/Creating default data (administrator/communities)...")
	var finalErr error

	if err := createAdmin(ctx, accountRepo, hasher, defaults, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	for _, name := range defaults.Communities {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		err := communityRepo.Create(ctx, &appModels.Community{Name: name})
		switch {
		case err == nil:
			lgr.Info().Str("community", name).Msg("Default community created")
		case errors.Is(err, apperrors.ErrConflict):
			lgr.Debug().Str("community", name).Msg("Default community already exists")
		default:
			lgr.Error().Err(err).Str("community", name).Msg("Error creating default community")
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}

func createAdmin(ctx context.Context, accountRepo appRepos.IAccountRepository, hasher auth.PasswordHasher, defaults Defaults, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(defaults.AdminEmail))
	if email == "" || defaults.AdminPassword == "" {
		lgr.Debug().Msg("No administrator configured, skipping")
		return nil
	}

	exists, err := accountRepo.EmailExists(ctx, email)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking administrator account")
		return err
	}
	if exists {
		lgr.Debug().Str("email", email).Msg("Administrator account already exists")
		return nil
	}

	hash, err := hasher.Hash(defaults.AdminPassword)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing administrator password")
		return err
	}

	handle, _, _ := strings.Cut(email, "@")
	admin := &appModels.Account{
		Name:         "Administrador",
		Handle:       handle,
		Email:        email,
		PasswordHash: hash,
		Role:         appModels.RoleAdministrator,
		Confirmed:    true,
		Active:       true,
	}
	if err := accountRepo.Create(ctx, admin); err != nil {
		lgr.Error().Err(err).Str("email", email).Msg("Error creating administrator account")
		return err
	}

	lgr.Info().Str("email", email).Msg("Administrator account created")
	return nil
}
