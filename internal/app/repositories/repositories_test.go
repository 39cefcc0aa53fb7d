package repositories

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniconnect/api/internal/app/models"
	"github.com/uniconnect/api/internal/pkg/apperrors"
)

// fakeRow copies values into Scan destinations positionally
type fakeRow struct {
	values []interface{}
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		if r.values[i] == nil {
			continue
		}
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

func strPtr(s string) *string { return &s }

func TestAccountConflict(t *testing.T) {
	emailErr := &pgconn.PgError{Code: "23505", ConstraintName: constraintAccountEmail}
	handleErr := &pgconn.PgError{Code: "23505", ConstraintName: constraintAccountHandle}

	assert.Equal(t, ErrEmailTaken, accountConflict(emailErr))
	assert.Equal(t, ErrHandleTaken, accountConflict(handleErr))
	assert.Nil(t, accountConflict(errors.New("other")))

	assert.True(t, errors.Is(ErrEmailTaken, apperrors.ErrConflict))
	assert.True(t, errors.Is(ErrAccountNotFound, apperrors.ErrResourceNotFound))
}

func TestScanPublication_Media(t *testing.T) {
	id, author, community := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	p, err := scanPublication(fakeRow{values: []interface{}{
		id, author, community, strPtr("hola"), strPtr("http://x/publications/a.png"), strPtr("publications/a.png"), now,
	}})
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	require.NotNil(t, p.Media)
	assert.Equal(t, "publications/a.png", p.Media.AssetID)
	assert.True(t, p.HasContent())

	p, err = scanPublication(fakeRow{values: []interface{}{
		id, author, community, strPtr("solo texto"), nil, nil, now,
	}})
	require.NoError(t, err)
	assert.Nil(t, p.Media)
}

func TestScanAccount(t *testing.T) {
	id := uuid.New()
	friend := uuid.New()
	now := time.Now()

	a, err := scanAccount(fakeRow{values: []interface{}{
		id, "Alice", "alice", "alice@puce.edu.ec", "hash",
		nil, nil, nil, nil, []string{"go"},
		strPtr("http://x/avatars/a.png"), strPtr("avatars/a.png"),
		"STUDENT", true, nil, true,
		[]uuid.UUID{friend}, []uuid.UUID{}, now, now,
	}})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, a.Role)
	assert.Equal(t, "http://x/avatars/a.png", a.AvatarURL())
	assert.True(t, a.HasFriend(friend))
}

func TestMediaColumns(t *testing.T) {
	url, assetID := mediaColumns(nil)
	assert.Nil(t, url)
	assert.Nil(t, assetID)

	url, assetID = mediaColumns(&models.Media{URL: "u", AssetID: "a"})
	require.NotNil(t, url)
	assert.Equal(t, "u", *url)
	assert.Equal(t, "a", *assetID)
}
