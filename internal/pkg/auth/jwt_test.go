package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniconnect/api/internal/pkg/apperrors"
)

func newTestJWTService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "uniconnect-test",
	})
}

func TestIssueAndVerify(t *testing.T) {
	svc := newTestJWTService()
	accountID := uuid.New()

	token, expiresIn, err := svc.Issue(accountID, "STUDENT")
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, accountID, claims.AccountID)
	assert.Equal(t, "STUDENT", claims.Role)
	assert.Equal(t, accountID.String(), claims.Subject)
}

func TestVerify_Empty(t *testing.T) {
	_, err := newTestJWTService().Verify("")
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, _, err := newTestJWTService().Issue(uuid.New(), "STUDENT")
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "uniconnect-test"})
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestVerify_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.Issue(uuid.New(), "STUDENT")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestVerify_WrongIssuer(t *testing.T) {
	issuer := NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "someone-else"})
	token, _, err := issuer.Issue(uuid.New(), "STUDENT")
	require.NoError(t, err)

	_, err = newTestJWTService().Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{AccountID: uuid.New(), RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "uniconnect-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestJWTService().Verify(token)
	assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))
}

func TestExtractBearerToken(t *testing.T) {
	raw := "aaa.bbb.ccc"

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "bearer prefix", header: "Bearer " + raw, want: raw},
		{name: "lowercase prefix", header: "bearer " + raw, want: raw},
		{name: "raw token", header: raw, want: raw},
		{name: "quoted", header: "\"Bearer " + raw + "\"", want: raw},
		{name: "empty", header: "", wantErr: apperrors.ErrTokenNotFound},
		{name: "garbage", header: "Bearer nope", wantErr: apperrors.ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)

	hash, err := h.Hash("Secreto123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secreto123", hash)
	assert.True(t, h.Compare(hash, "Secreto123"))
	assert.False(t, h.Compare(hash, "otra"))
}
