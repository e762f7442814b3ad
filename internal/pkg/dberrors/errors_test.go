package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "user_roles_account_id_key"})

	assert.True(t, IsDuplicateConstraintError(err, "user_roles_account_id_key"))
	assert.False(t, IsDuplicateConstraintError(err, "colleges_owner_id_key"))
	assert.True(t, IsDuplicateKeyError(err))
	assert.False(t, IsForeignKeyError(err))
}

func TestNonPgErrors(t *testing.T) {
	err := errors.New("connection reset")

	assert.False(t, IsDuplicateKeyError(err))
	assert.False(t, IsForeignKeyError(err))
	assert.False(t, IsCheckViolation(err))
}

func TestForeignKeyAndCheck(t *testing.T) {
	assert.True(t, IsForeignKeyError(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsCheckViolation(&pgconn.PgError{Code: "23514"}))
}
