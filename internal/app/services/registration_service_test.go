package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniconnect/api/internal/app/models"
	"github.com/uniconnect/api/internal/app/models/dto"
	"github.com/uniconnect/api/internal/app/repositories"
	"github.com/uniconnect/api/internal/pkg/apperrors"
	"github.com/uniconnect/api/internal/pkg/email"
)

var allowedDomains = []string{"@puce.edu.ec"}

func newRegistration(f *fixture, mailer *fakeMailer) *registrationServiceImpl {
	svc := NewRegistrationService(f.store.Accounts(), plainHasher{}, mailer, f.assets, allowedDomains, zerolog.Nop()).(*registrationServiceImpl)
	seq := 0
	svc.newToken = func() (string, error) {
		seq++
		return "tok" + string(rune('0'+seq)), nil
	}
	return svc
}

func validRegistration() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Name:      "Ana Torres",
		Handle:    "ana.t",
		Email:     "Ana@puce.edu.ec",
		Password:  "Secret123",
		Career:    "Software",
		Interests: []string{" go ", "", "music"},
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	mailer := &fakeMailer{result: email.Delivered()}
	svc := newRegistration(f, mailer)

	resp, err := svc.Register(ctx, validRegistration(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ana@puce.edu.ec", resp.Email)

	account, err := f.store.Accounts().GetByEmail(ctx, "ana@puce.edu.ec")
	require.NoError(t, err)
	assert.Equal(t, resp.ID, account.ID)
	assert.False(t, account.Confirmed)
	assert.True(t, account.Active)
	assert.Equal(t, models.RoleStudent, account.Role)
	assert.Equal(t, "hashed:Secret123", account.PasswordHash)
	assert.Equal(t, []string{"go", "music"}, account.Interests)
	require.NotNil(t, account.ConfirmationToken)
	assert.Equal(t, []string{*account.ConfirmationToken}, mailer.tokens)
}

func TestRegister_WithAvatar(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newRegistration(f, &fakeMailer{result: email.Delivered()})

	avatar := newFileHeader(t, "fotoPerfil", "me.png", "image/png", pngBytes)
	_, err := svc.Register(ctx, validRegistration(), avatar)
	require.NoError(t, err)

	account, err := f.store.Accounts().GetByEmail(ctx, "ana@puce.edu.ec")
	require.NoError(t, err)
	assert.NotEmpty(t, account.AvatarURL())
	assert.Equal(t, 1, f.assets.count())
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(r *dto.RegisterRequest)
		field  string
	}{
		{"missing name", func(r *dto.RegisterRequest) { r.Name = " " }, "nombre"},
		{"missing handle", func(r *dto.RegisterRequest) { r.Handle = "" }, "usuario"},
		{"missing email", func(r *dto.RegisterRequest) { r.Email = "" }, "email"},
		{"missing password", func(r *dto.RegisterRequest) { r.Password = "" }, "password"},
		{"short name", func(r *dto.RegisterRequest) { r.Name = "A" }, "nombre"},
		{"bad handle", func(r *dto.RegisterRequest) { r.Handle = "a b" }, "usuario"},
		{"bad email", func(r *dto.RegisterRequest) { r.Email = "not-an-email" }, "email"},
		{"foreign domain", func(r *dto.RegisterRequest) { r.Email = "ana@gmail.com" }, "email"},
		{"weak password", func(r *dto.RegisterRequest) { r.Password = "short" }, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			mailer := &fakeMailer{result: email.Delivered()}
			req := validRegistration()
			tt.mutate(req)

			_, err := newRegistration(f, mailer).Register(ctx, req, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrBadRequest)
			assert.Equal(t, tt.field, apperrors.FieldOf(err))
			assert.Empty(t, mailer.sent)
		})
	}
}

func TestRegister_Duplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newRegistration(f, &fakeMailer{result: email.Delivered()})

	_, err := svc.Register(ctx, validRegistration(), nil)
	require.NoError(t, err)

	_, err = svc.Register(ctx, validRegistration(), nil)
	assert.ErrorIs(t, err, repositories.ErrEmailTaken)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	req := validRegistration()
	req.Email = "other@puce.edu.ec"
	_, err = svc.Register(ctx, req, nil)
	assert.ErrorIs(t, err, repositories.ErrHandleTaken)
}

func TestRegister_RollsBackWhenEmailFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	mailer := &fakeMailer{result: email.Failed(errBoom)}
	svc := newRegistration(f, mailer)

	avatar := newFileHeader(t, "fotoPerfil", "me.png", "image/png", pngBytes)
	_, err := svc.Register(ctx, validRegistration(), avatar)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamFailure)
	assert.ErrorIs(t, err, errBoom)
	assert.Len(t, mailer.sent, 1)

	_, err = f.store.Accounts().GetByEmail(ctx, "ana@puce.edu.ec")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Zero(t, f.assets.count())

	// the address is free again
	mailer.result = email.Delivered()
	_, err = svc.Register(ctx, validRegistration(), nil)
	assert.NoError(t, err)
}

func TestRegister_FailedResultWithoutCause(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newRegistration(f, &fakeMailer{result: email.Result{OK: false}})

	_, err := svc.Register(ctx, validRegistration(), nil)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamFailure)

	exists, err := f.store.Accounts().EmailExists(ctx, "ana@puce.edu.ec")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegister_CompensationFailureIsReported(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newRegistration(f, &fakeMailer{result: email.Failed(errBoom)})
	rollbackErr := errors.New("delete failed")
	f.store.FailOn("accounts.Delete", rollbackErr)

	_, err := svc.Register(ctx, validRegistration(), nil)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamFailure)
	assert.ErrorIs(t, err, rollbackErr)
}

func TestRegister_PersistFailureDiscardsAvatar(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	mailer := &fakeMailer{result: email.Delivered()}
	svc := newRegistration(f, mailer)
	f.store.FailOn("accounts.Create", errBoom)

	avatar := newFileHeader(t, "fotoPerfil", "me.png", "image/png", pngBytes)
	_, err := svc.Register(ctx, validRegistration(), avatar)
	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, f.assets.count())
	assert.Empty(t, mailer.sent)
}

func TestConfirmEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	mailer := &fakeMailer{result: email.Delivered()}
	svc := newRegistration(f, mailer)

	_, err := svc.Register(ctx, validRegistration(), nil)
	require.NoError(t, err)
	require.Len(t, mailer.tokens, 1)
	token := mailer.tokens[0]

	require.NoError(t, svc.ConfirmEmail(ctx, token))

	account, err := f.store.Accounts().GetByEmail(ctx, "ana@puce.edu.ec")
	require.NoError(t, err)
	assert.True(t, account.Confirmed)
	assert.Nil(t, account.ConfirmationToken)

	err = svc.ConfirmEmail(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	err = svc.ConfirmEmail(ctx, "  ")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, "token", apperrors.FieldOf(err))
}
