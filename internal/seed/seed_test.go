package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appModels "github.com/uniconnect/api/internal/app/models"
	"github.com/uniconnect/api/internal/app/repositories/memrepo"
	"github.com/uniconnect/api/internal/pkg/auth"
)

type prefixHasher struct{}

func (prefixHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (prefixHasher) Compare(hash, password string) bool   { return hash == "hashed:"+password }

var _ auth.PasswordHasher = prefixHasher{}

func testDefaults() Defaults {
	return Defaults{
		AdminEmail:    "Admin@epn.edu.ec",
		AdminPassword: "Admin12345",
		Communities:   []string{"Deportes", " ", "Arte y Cultura"},
	}
}

func TestCreateDefaultData(t *testing.T) {
	ctx := context.Background()
	store := memrepo.New()

	err := CreateDefaultData(ctx, store.Accounts(), store.Communities(), prefixHasher{}, testDefaults(), zerolog.Nop())
	require.NoError(t, err)

	admin, err := store.Accounts().GetByEmail(ctx, "admin@epn.edu.ec")
	require.NoError(t, err)
	assert.Equal(t, appModels.RoleAdministrator, admin.Role)
	assert.Equal(t, "admin", admin.Handle)
	assert.True(t, admin.Confirmed)
	assert.True(t, admin.Active)
	assert.Equal(t, "hashed:Admin12345", admin.PasswordHash)

	communities, err := store.Communities().List(ctx)
	require.NoError(t, err)
	assert.Len(t, communities, 2)
}

func TestCreateDefaultData_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memrepo.New()

	require.NoError(t, CreateDefaultData(ctx, store.Accounts(), store.Communities(), prefixHasher{}, testDefaults(), zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, store.Accounts(), store.Communities(), prefixHasher{}, testDefaults(), zerolog.Nop()))

	communities, err := store.Communities().List(ctx)
	require.NoError(t, err)
	assert.Len(t, communities, 2)
}

func TestCreateDefaultData_NoAdminConfigured(t *testing.T) {
	ctx := context.Background()
	store := memrepo.New()

	defaults := testDefaults()
	defaults.AdminPassword = ""
	require.NoError(t, CreateDefaultData(ctx, store.Accounts(), store.Communities(), prefixHasher{}, defaults, zerolog.Nop()))

	exists, err := store.Accounts().EmailExists(ctx, "admin@epn.edu.ec")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateDefaultData_AdminFailureStillSeedsCommunities(t *testing.T) {
	ctx := context.Background()
	store := memrepo.New()
	boom := errors.New("boom")
	store.FailOn("accounts.Create", boom)

	err := CreateDefaultData(ctx, store.Accounts(), store.Communities(), prefixHasher{}, testDefaults(), zerolog.Nop())
	require.ErrorIs(t, err, boom)

	communities, err := store.Communities().List(ctx)
	require.NoError(t, err)
	assert.Len(t, communities, 2)
}
