package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"}
	wrapped := fmt.Errorf("insert account: %w", pgErr)

	assert.True(t, IsDuplicateConstraintError(wrapped, "accounts_email_key"))
	assert.False(t, IsDuplicateConstraintError(wrapped, "accounts_handle_key"))
	assert.True(t, IsUniqueViolation(wrapped))
}

func TestIsUniqueViolation_OtherCodes(t *testing.T) {
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}
