package service

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
	"github.com/aussiebroadwan/keyward/pkg/cryptox"
	"github.com/aussiebroadwan/keyward/pkg/guard"
	"github.com/stretchr/testify/require"
)

type countingReloader struct {
	calls atomic.Int32
	next  KeyReloader
}

func (c *countingReloader) Reload(ctx context.Context) error {
	c.calls.Add(1)
	if c.next != nil {
		return c.next.Reload(ctx)
	}
	return nil
}

func newAPIKeyService(t *testing.T) (*APIKeyService, *guard.KeyCache, *countingReloader) {
	t.Helper()

	f := newFixture(t)
	sealer, err := cryptox.NewSealer(make([]byte, cryptox.MasterKeySize))
	require.NoError(t, err)

	svc := &APIKeyService{
		Store:  f.store,
		Sealer: sealer,
		Clock:  f.clock,
		Audit:  f.audit,
	}
	cache := guard.NewKeyCache(svc.GuardSource())
	reloader := &countingReloader{next: cache}
	svc.Cache = reloader
	return svc, cache, reloader
}

func TestAPIKeyLifecycle(t *testing.T) {
	t.Parallel()

	svc, cache, reloader := newAPIKeyService(t)
	ctx := context.Background()

	key, secret, err := svc.CreateAPIKey(ctx, "loader", 0, RequestMeta{})
	require.NoError(t, err)
	require.Len(t, secret, 2*cryptox.APISecretSize)
	require.Equal(t, domain.DefaultAPIKeyRPM, key.RPM)
	require.NotContains(t, string(key.SecretEncrypted), secret)

	cached, ok := cache.Lookup(key.ID)
	require.True(t, ok, "create reloads the guard cache")
	require.Equal(t, secret, cached.Secret)

	_, rotated, err := svc.RotateAPIKey(ctx, key.ID, RequestMeta{})
	require.NoError(t, err)
	require.NotEqual(t, secret, rotated)
	cached, _ = cache.Lookup(key.ID)
	require.Equal(t, rotated, cached.Secret)

	require.NoError(t, svc.RevokeAPIKey(ctx, key.ID, RequestMeta{}))
	cached, _ = cache.Lookup(key.ID)
	require.True(t, cached.Revoked)

	_, _, err = svc.RotateAPIKey(ctx, key.ID, RequestMeta{})
	require.ErrorIs(t, err, ErrAPIKeyNotFound, "revoked keys cannot be rotated")
	require.ErrorIs(t, svc.RevokeAPIKey(ctx, "missing", RequestMeta{}), ErrAPIKeyNotFound)

	require.EqualValues(t, 3, reloader.calls.Load())

	keys, err := svc.ListAPIKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
}

func TestCreateAPIKeyValidation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAPIKeyService(t)
	ctx := context.Background()

	_, _, err := svc.CreateAPIKey(ctx, "  ", 10, RequestMeta{})
	require.ErrorIs(t, err, ErrInvalidAPIKey)

	key, _, err := svc.CreateAPIKey(ctx, "batch", 600, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, 600, key.RPM)
}

func TestGuardSourceSkipsUnreadableSecrets(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAPIKeyService(t)
	ctx := context.Background()

	good, _, err := svc.CreateAPIKey(ctx, "good", 0, RequestMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.Store.APIKeys().CreateAPIKey(ctx, domain.APIKey{
		ID:              "broken",
		Name:            "broken",
		SecretEncrypted: []byte("not sealed"),
		RPM:             1,
	}))

	keys, err := svc.GuardSource().ListAPIKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.Equal(t, good.ID, keys[0].ID)
}

func TestSeedAPIKeys(t *testing.T) {
	t.Parallel()

	svc, cache, _ := newAPIKeyService(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "api-keys.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
apiKeys:
  - id: loader-eu
    name: EU loader
    secret: 0123456789abcdef0123456789abcdef
    rpm: 120
  - id: retired
    secret: fedcba9876543210fedcba9876543210
    revoked: true
`), 0o600))

	f, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, f.APIKeys, 2)

	created, err := svc.Seed(ctx, f)
	require.NoError(t, err)
	require.Equal(t, 2, created)

	k, ok := cache.Lookup("loader-eu")
	require.True(t, ok)
	require.Equal(t, "0123456789abcdef0123456789abcdef", k.Secret)
	require.Equal(t, 120, k.RPM)

	k, ok = cache.Lookup("retired")
	require.True(t, ok)
	require.True(t, k.Revoked)
	require.Equal(t, "retired", k.Name)

	// Seeding again keeps rotated secrets.
	_, rotated, err := svc.RotateAPIKey(ctx, "loader-eu", RequestMeta{})
	require.NoError(t, err)
	created, err = svc.Seed(ctx, f)
	require.NoError(t, err)
	require.Zero(t, created)
	k, _ = cache.Lookup("loader-eu")
	require.Equal(t, rotated, k.Secret)
}

func TestLoadSeedFileRejects(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"missing id":   "apiKeys:\n  - secret: 0123456789abcdef0123456789abcdef\n",
		"short secret": "apiKeys:\n  - id: a\n    secret: short\n",
		"duplicate id": "apiKeys:\n  - id: a\n    secret: 0123456789abcdef0123456789abcdef\n  - id: a\n    secret: 0123456789abcdef0123456789abcdef\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "keys.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

			_, err := LoadSeedFile(path)
			require.ErrorIs(t, err, ErrInvalidAPIKey)
		})
	}

	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
