package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrNotFound, "user lookup failed")
	require.Error(t, wrapped)
	assert.True(t, Is(wrapped, ErrNotFound))
	assert.Contains(t, wrapped.Error(), "user lookup failed")
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
}

func TestWrap_PreservesChain(t *testing.T) {
	inner := Wrap(ErrConflict, "email taken")
	outer := Wrap(inner, "registration failed")
	assert.True(t, Is(outer, ErrConflict))
	assert.Contains(t, outer.Error(), "registration failed")
	assert.Contains(t, outer.Error(), "email taken")
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrConflict, ErrInvalidInput, ErrUnauthorized, ErrForbidden}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, Is(a, b))
		}
	}
}
