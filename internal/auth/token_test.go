package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/crudkit/internal/auth"
)

func TestToken_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		token    *auth.Token
		expected bool
	}{
		{name: "nil token", token: nil, expected: false},
		{name: "empty access token", token: &auth.Token{}, expected: false},
		{name: "no expiry", token: &auth.Token{AccessToken: "jwt"}, expected: true},
		{name: "future expiry", token: &auth.Token{AccessToken: "jwt", ExpiresAt: time.Now().Add(time.Hour)}, expected: true},
		{name: "expired", token: &auth.Token{AccessToken: "jwt", ExpiresAt: time.Now().Add(-time.Hour)}, expected: false},
		{name: "inside buffer", token: &auth.Token{AccessToken: "jwt", ExpiresAt: time.Now().Add(10 * time.Second)}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.token.Valid())
		})
	}
}

func TestTokenStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	assert.Nil(t, store.Get())

	var wg sync.WaitGroup

	for i := range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 100 {
				if i%2 == 0 {
					store.Set(&auth.Token{AccessToken: "token"})
				} else {
					_ = store.Get()
				}
			}
		}()
	}

	wg.Wait()
	require.NotNil(t, store.Get())
	assert.Equal(t, "token", store.Get().AccessToken)

	store.Clear()
	assert.Nil(t, store.Get())
}

func TestStaticTokenManager(t *testing.T) {
	t.Parallel()

	t.Run("returns configured token", func(t *testing.T) {
		t.Parallel()

		manager := auth.NewStaticTokenManager("jwt-token", time.Time{})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "jwt-token", token)
	})

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()

		manager := auth.NewStaticTokenManager("", time.Time{})

		_, err := manager.GetToken(context.Background())
		require.ErrorIs(t, err, auth.ErrNoToken)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		manager := auth.NewStaticTokenManager("jwt-token", time.Now().Add(-time.Minute))

		_, err := manager.GetToken(context.Background())
		require.ErrorIs(t, err, auth.ErrTokenExpired)
	})

	t.Run("refresh unsupported", func(t *testing.T) {
		t.Parallel()

		manager := auth.NewStaticTokenManager("jwt-token", time.Time{})
		require.ErrorIs(t, manager.RefreshToken(context.Background()), auth.ErrRefreshNotSupported)
	})
}

type recordingPersister struct {
	endpoint string
	token    string
	err      error
}

func (p *recordingPersister) UpdateAPIToken(apiEndpoint, token string, expiresAt time.Time) error {
	p.endpoint = apiEndpoint
	p.token = token

	return p.err
}

func TestConfigTokenManager_SetTokenPersists(t *testing.T) {
	t.Parallel()

	persister := &recordingPersister{}
	manager := auth.NewConfigTokenManager(persister, "https://api.example.com", "", time.Time{})

	manager.SetToken("new-token", time.Now().Add(time.Hour))
	require.NoError(t, manager.PersistError())
	assert.Equal(t, "https://api.example.com", persister.endpoint)
	assert.Equal(t, "new-token", persister.token)

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-token", token)
	assert.False(t, manager.IsTokenExpiringSoon(time.Minute))
	assert.True(t, manager.IsTokenExpiringSoon(2*time.Hour))

	failing := auth.NewConfigTokenManager(&recordingPersister{err: errors.New("disk full")}, "https://api.example.com", "", time.Time{})
	failing.SetToken("token", time.Time{})
	require.Error(t, failing.PersistError())

	unpersisted := auth.NewConfigTokenManager(nil, "https://api.example.com", "", time.Time{})
	unpersisted.SetToken("token", time.Time{})
	require.ErrorIs(t, unpersisted.PersistError(), auth.ErrNoConfigPersister)
}
