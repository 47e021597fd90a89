package sqlutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestInClauseArgs(t *testing.T) {
	ph, args := InClauseArgs([]string{})
	assert.Equal(t, "NULL", ph)
	assert.Nil(t, args)

	id := uuid.MustParse("6f7ad4a5-7e59-4b4a-9d31-2a0c8f0d6a01")
	ph, args = InClauseArgs([]uuid.UUID{id, id})
	assert.Equal(t, "?, ?", ph)
	assert.Equal(t, []any{id.String(), id.String()}, args)
}

func TestBool(t *testing.T) {
	assert.Equal(t, 1, Bool(true))
	assert.Equal(t, 0, Bool(false))
}
