package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniconnect/api/internal/app/models"
	"github.com/uniconnect/api/internal/app/models/dto"
	"github.com/uniconnect/api/internal/pkg/apperrors"
)

func (f *fixture) accounts() AccountService {
	return NewAccountService(f.store.Accounts(), plainHasher{}, fakeTokens{}, f.assets, allowedDomains, zerolog.Nop())
}

func strPtr(s string) *string { return &s }

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.account(t, "alice")
	bob := f.account(t, "bob")
	require.NoError(t, NewFriendService(f.store.Accounts(), f.oracle, zerolog.Nop()).AddFriend(ctx, alice.ID, bob.ID.String()))

	resp, err := f.accounts().Login(ctx, &dto.LoginRequest{Email: "alice@puce.edu.ec", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, "token-"+alice.ID.String()+"-STUDENT", resp.Token)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, alice.ID, resp.Account.ID)
	require.Len(t, resp.Account.Friends, 1)
	assert.Equal(t, "bob", resp.Account.Friends[0].Handle)
}

func TestLogin_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.account(t, "alice")
	disabled := f.account(t, "disabled")
	require.NoError(t, f.store.Accounts().SetActive(ctx, disabled.ID, false))

	unconfirmed := &models.Account{
		Name: "Nuevo", Handle: "nuevo", Email: "nuevo@puce.edu.ec",
		PasswordHash: "hashed:Secret123", Role: models.RoleStudent, Active: true,
	}
	require.NoError(t, f.store.Accounts().Create(ctx, unconfirmed))

	tests := []struct {
		name     string
		email    string
		password string
		target   error
	}{
		{"unknown email", "ghost@puce.edu.ec", "Secret123", apperrors.ErrResourceNotFound},
		{"unconfirmed", "nuevo@puce.edu.ec", "Secret123", apperrors.ErrEmailNotVerified},
		{"deactivated", "disabled@puce.edu.ec", "Secret123", apperrors.ErrAccountDisabled},
		{"wrong password", "alice@puce.edu.ec", "Wrong1234", apperrors.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.accounts().Login(ctx, &dto.LoginRequest{Email: tt.email, Password: tt.password})
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestGetAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.account(t, "alice")
	c7 := f.community(t, "C7", alice)

	resp, err := f.accounts().GetAccount(ctx, alice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Handle)
	assert.Equal(t, []uuid.UUID{c7.ID}, resp.Communities)
	assert.Empty(t, resp.Friends)

	_, err = f.accounts().GetAccount(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = f.accounts().GetAccount(ctx, "x")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.account(t, "alice")
	bob := f.account(t, "bob")
	owner := Caller{ID: alice.ID, Role: string(models.RoleStudent)}

	resp, err := f.accounts().UpdateProfile(ctx, owner, alice.ID.String(), &dto.UpdateProfileRequest{
		Name: strPtr("Alice Andrade"),
		Bio:  strPtr("hola"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alice Andrade", resp.Name)
	require.NotNil(t, resp.Bio)
	assert.Equal(t, "hola", *resp.Bio)
	assert.Equal(t, "alice", resp.Handle)

	_, err = f.accounts().UpdateProfile(ctx, owner, bob.ID.String(), &dto.UpdateProfileRequest{Bio: strPtr("x")}, nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	admin := Caller{ID: uuid.New(), Role: string(models.RoleAdministrator)}
	_, err = f.accounts().UpdateProfile(ctx, admin, bob.ID.String(), &dto.UpdateProfileRequest{Bio: strPtr("moderado")}, nil)
	assert.NoError(t, err)

	_, err = f.accounts().UpdateProfile(ctx, owner, alice.ID.String(), &dto.UpdateProfileRequest{Password: strPtr("Nuevo1234")}, nil)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, "password", apperrors.FieldOf(err))

	_, err = f.accounts().UpdateProfile(ctx, owner, alice.ID.String(), &dto.UpdateProfileRequest{Handle: strPtr("bob")}, nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.accounts().UpdateProfile(ctx, owner, alice.ID.String(), &dto.UpdateProfileRequest{Email: strPtr("alice@gmail.com")}, nil)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, "email", apperrors.FieldOf(err))
}

func TestUpdateProfile_ReplacesAvatar(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.account(t, "alice")
	owner := Caller{ID: alice.ID, Role: string(models.RoleStudent)}
	svc := f.accounts()

	first, err := svc.UpdateProfile(ctx, owner, alice.ID.String(), &dto.UpdateProfileRequest{},
		newFileHeader(t, "fotoPerfil", "a.png", "image/png", pngBytes))
	require.NoError(t, err)
	require.NotEmpty(t, first.Avatar)
	assert.Equal(t, 1, f.assets.count())

	second, err := svc.UpdateProfile(ctx, owner, alice.ID.String(), &dto.UpdateProfileRequest{},
		newFileHeader(t, "fotoPerfil", "b.png", "image/png", pngBytes))
	require.NoError(t, err)
	assert.NotEqual(t, first.Avatar, second.Avatar)
	assert.Equal(t, 1, f.assets.count())
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.account(t, "alice")
	svc := f.accounts()

	err := svc.ChangePassword(ctx, alice.ID, &dto.ChangePasswordRequest{CurrentPassword: "Wrong1234", NewPassword: "Nuevo1234"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, "passwordActual", apperrors.FieldOf(err))

	err = svc.ChangePassword(ctx, alice.ID, &dto.ChangePasswordRequest{CurrentPassword: "Secret123", NewPassword: "weak"})
	assert.Equal(t, "passwordNuevo", apperrors.FieldOf(err))

	require.NoError(t, svc.ChangePassword(ctx, alice.ID, &dto.ChangePasswordRequest{CurrentPassword: "Secret123", NewPassword: "Nuevo1234"}))

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "alice@puce.edu.ec", Password: "Secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "alice@puce.edu.ec", Password: "Nuevo1234"})
	assert.NoError(t, err)
}

func TestDeactivateAndReactivate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.account(t, "alice")
	bob := f.account(t, "bob")
	svc := f.accounts()

	err := svc.Deactivate(ctx, Caller{ID: bob.ID, Role: string(models.RoleStudent)}, alice.ID.String())
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, svc.Deactivate(ctx, Caller{ID: alice.ID, Role: string(models.RoleStudent)}, alice.ID.String()))
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "alice@puce.edu.ec", Password: "Secret123"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)

	require.NoError(t, svc.Reactivate(ctx, alice.ID.String()))
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "alice@puce.edu.ec", Password: "Secret123"})
	assert.NoError(t, err)

	err = svc.Reactivate(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
