package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsConflict(t *testing.T) {
	err := asConflict(errors.New("constraint failed: UNIQUE constraint failed: clients.name (2067)"))
	var ce *ConflictError
	assert.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "clients", ce.Table)
	assert.Equal(t, []string{"name"}, ce.Columns)

	plain := errors.New("disk I/O error")
	assert.Same(t, plain, asConflict(plain))
	assert.NoError(t, asConflict(nil))
}
