package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: " alice ", Password: "secret123", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "secret123", user.Password)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Password: "other123"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := svc.Authenticate(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// 邮箱也可以登录
	_, err = svc.Authenticate(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "bob", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	profile, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", profile.Email)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
