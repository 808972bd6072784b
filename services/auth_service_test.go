package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(newTestDB(t))

	user, err := auth.Register(ctx, " erin ", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "erin", user.Username)
	assert.NotEqual(t, "hunter2", user.PasswordHash)

	got, err := auth.Authenticate(ctx, "erin", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = auth.Authenticate(ctx, "erin", "wrong")
	assert.ErrorIs(t, err, ErrAuthFailure)

	_, err = auth.Authenticate(ctx, "nobody", "hunter2")
	assert.ErrorIs(t, err, ErrAuthFailure)
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(newTestDB(t))

	mustRegister(t, auth, "frank")
	_, err := auth.Register(ctx, "frank", "other")
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestRegisterConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(newTestDB(t))

	const n = 4
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = auth.Register(ctx, "grace", "pw")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateUsername)
	}
	assert.Equal(t, 1, ok)
}

func TestRegisterValidation(t *testing.T) {
	auth := NewAuthService(newTestDB(t))

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty username", username: " ", password: "pw"},
		{name: "long username", username: strings.Repeat("u", usernameMaxLen+1), password: "pw"},
		{name: "empty password", username: "henry", password: ""},
		{name: "long password", username: "henry", password: strings.Repeat("p", passwordMaxBytes+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestFindByUsernameAndGetUser(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(newTestDB(t))
	user := mustRegister(t, auth, "ivy")

	found, err := auth.FindByUsername(ctx, "ivy")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = auth.FindByUsername(ctx, "IVY2")
	assert.ErrorIs(t, err, ErrNotFound)

	byID, err := auth.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ivy", byID.Username)

	_, err = auth.GetUser(ctx, user.ID+10)
	assert.ErrorIs(t, err, ErrNotFound)
}
