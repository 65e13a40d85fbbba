package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallerFromContext(t *testing.T) {
	ctx := context.Background()

	_, err := CallerFromContext(ctx)
	assert.ErrorIs(t, err, ErrNoCaller)

	ctx = ContextWithCaller(ctx, Caller{UserID: "u1", Role: RoleUser})
	caller, err := CallerFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", caller.UserID)
	assert.False(t, caller.IsAdmin())

	ctx = ContextWithCaller(ctx, Caller{UserID: "a1", Role: RoleAdmin})
	caller, err = CallerFromContext(ctx)
	require.NoError(t, err)
	assert.True(t, caller.IsAdmin())
}
