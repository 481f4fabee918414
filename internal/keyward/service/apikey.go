package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
	"github.com/aussiebroadwan/keyward/internal/keyward/store"
	"github.com/aussiebroadwan/keyward/pkg/cryptox"
	"github.com/aussiebroadwan/keyward/pkg/guard"
	"github.com/aussiebroadwan/keyward/pkg/idx"
	"github.com/aussiebroadwan/keyward/pkg/slogx"
)

const (
	MaxAPIKeyNameLength = 100
	MinSeedSecretLength = 32
)

var (
	ErrAPIKeyNotFound   = errors.New("api key not found")
	ErrInvalidAPIKey    = errors.New("invalid api key definition")
	ErrAPIKeyCorrupted  = errors.New("api key secret cannot be opened")
	ErrAPIKeyIDConflict = errors.New("api key id already exists")
)

// KeyReloader is refreshed after every change so revocation and rotation
// take effect on the next request. *guard.KeyCache satisfies it.
type KeyReloader interface {
	Reload(ctx context.Context) error
}

// APIKeyService manages the signing identities RequestGuard checks. Secrets
// are sealed at rest with the key id as associated data and returned in
// plaintext only from Create and Rotate.
type APIKeyService struct {
	Store  store.Store
	Sealer *cryptox.Sealer
	Clock  TrustedClock
	Audit  *AuditService
	Cache  KeyReloader
}

// CreateAPIKey issues a new key. rpm <= 0 selects the default quota.
func (s *APIKeyService) CreateAPIKey(ctx context.Context, name string, rpm int, meta RequestMeta) (domain.APIKey, string, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate the definition.
	name = strings.TrimSpace(name)
	if name == "" || len(name) > MaxAPIKeyNameLength {
		return domain.APIKey{}, "", ErrInvalidAPIKey
	}
	if rpm <= 0 {
		rpm = domain.DefaultAPIKeyRPM
	}

	// 2. Generate the secret.
	secret, err := cryptox.GenerateHexSecret(cryptox.APISecretSize)
	if err != nil {
		log.Error("failed to generate api key secret", slog.Any("error", err))
		return domain.APIKey{}, "", err
	}

	// 3. Seal and store.
	key, err := s.insert(ctx, idx.New().String(), name, secret, rpm, meta)
	if err != nil {
		return domain.APIKey{}, "", err
	}

	s.reload(ctx)
	log.Info("api key created", slog.String("api_key_id", key.ID), slog.String("name", name))
	return key, secret, nil
}

// RotateAPIKey replaces the secret of a live key. The old secret stops
// working immediately.
func (s *APIKeyService) RotateAPIKey(ctx context.Context, id string, meta RequestMeta) (domain.APIKey, string, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.TrustedTime(ctx).ServerTime

	secret, err := cryptox.GenerateHexSecret(cryptox.APISecretSize)
	if err != nil {
		return domain.APIKey{}, "", err
	}
	sealed, err := s.Sealer.Seal([]byte(secret), []byte(id))
	if err != nil {
		return domain.APIKey{}, "", fmt.Errorf("seal api key secret: %w", err)
	}

	var key domain.APIKey
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.APIKeys().RotateAPIKeySecret(ctx, id, sealed, now); err != nil {
			return err
		}
		k, err := tx.APIKeys().GetAPIKeyByID(ctx, id)
		if err != nil {
			return err
		}
		key = k

		return s.Audit.record(ctx, tx, domain.AuditEntry{
			Action:    domain.AuditAPIKeyRotate,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
			Success:   true,
			Message:   fmt.Sprintf("API key %s rotated", id),
			CreatedAt: now,
		})
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.APIKey{}, "", ErrAPIKeyNotFound
	}
	if err != nil {
		log.Error("failed to rotate api key", slog.String("api_key_id", id), slog.Any("error", err))
		return domain.APIKey{}, "", err
	}

	s.reload(ctx)
	log.Info("api key rotated", slog.String("api_key_id", id))
	return key, secret, nil
}

// RevokeAPIKey disables a key. Revoking twice is not an error.
func (s *APIKeyService) RevokeAPIKey(ctx context.Context, id string, meta RequestMeta) error {
	now := s.Clock.TrustedTime(ctx).ServerTime

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.APIKeys().RevokeAPIKey(ctx, id, now); err != nil {
			return err
		}
		return s.Audit.record(ctx, tx, domain.AuditEntry{
			Action:    domain.AuditAPIKeyRevoke,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
			Success:   true,
			Message:   fmt.Sprintf("API key %s revoked", id),
			CreatedAt: now,
		})
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrAPIKeyNotFound
	}
	if err != nil {
		return err
	}

	s.reload(ctx)
	slogx.FromContext(ctx).Info("api key revoked", slog.String("api_key_id", id))
	return nil
}

// ListAPIKeys returns every key without secrets.
func (s *APIKeyService) ListAPIKeys(ctx context.Context) ([]domain.APIKey, error) {
	return s.Store.APIKeys().ListAPIKeys(ctx)
}

// GuardSource exposes the stored keys, with opened secrets, to the guard's
// key cache.
func (s *APIKeyService) GuardSource() guard.KeySource {
	return guardKeySource{s: s}
}

type guardKeySource struct {
	s *APIKeyService
}

// ListAPIKeys opens every secret. A key whose secret cannot be opened is
// left out and logged.
func (g guardKeySource) ListAPIKeys(ctx context.Context) ([]guard.APIKey, error) {
	keys, err := g.s.Store.APIKeys().ListAPIKeys(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]guard.APIKey, 0, len(keys))
	for _, k := range keys {
		secret, err := g.s.open(k)
		if err != nil {
			slogx.FromContext(ctx).Error("skipping api key with unreadable secret",
				slog.String("api_key_id", k.ID),
				slog.Any("error", err),
			)
			continue
		}
		out = append(out, guard.APIKey{
			ID:      k.ID,
			Name:    k.Name,
			Secret:  secret,
			Revoked: k.Revoked,
			RPM:     k.RPM,
		})
	}
	return out, nil
}

// SeedFile is the YAML layout of KEYWARD_API_KEYS_FILE.
//
//	apiKeys:
//	  - id: loader-eu
//	    name: EU loader
//	    secret: 9f2c...
//	    rpm: 120
type SeedFile struct {
	APIKeys []SeedKey `yaml:"apiKeys"`
}

type SeedKey struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Secret  string `yaml:"secret"`
	RPM     int    `yaml:"rpm"`
	Revoked bool   `yaml:"revoked"`
}

// LoadSeedFile parses and checks a seed file.
func LoadSeedFile(path string) (SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedFile{}, fmt.Errorf("read api key seed file: %w", err)
	}

	var f SeedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return SeedFile{}, fmt.Errorf("parse api key seed file: %w", err)
	}

	seen := make(map[string]bool, len(f.APIKeys))
	for i, k := range f.APIKeys {
		switch {
		case strings.TrimSpace(k.ID) == "":
			return SeedFile{}, fmt.Errorf("%w: entry %d has no id", ErrInvalidAPIKey, i)
		case seen[k.ID]:
			return SeedFile{}, fmt.Errorf("%w: duplicate id %q", ErrInvalidAPIKey, k.ID)
		case len(k.Secret) < MinSeedSecretLength:
			return SeedFile{}, fmt.Errorf("%w: secret for %q must be at least %d characters", ErrInvalidAPIKey, k.ID, MinSeedSecretLength)
		}
		seen[k.ID] = true
	}
	return f, nil
}

// Seed inserts the keys from f that are not stored yet and revokes stored
// keys the file marks revoked. Existing secrets are never overwritten, so
// keys rotated through the admin API keep their new secret.
func (s *APIKeyService) Seed(ctx context.Context, f SeedFile) (created int, err error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.TrustedTime(ctx).ServerTime
	meta := RequestMeta{UserAgent: "seed"}

	for _, k := range f.APIKeys {
		existing, err := s.Store.APIKeys().GetAPIKeyByID(ctx, k.ID)
		switch {
		case err == nil:
			if k.Revoked && !existing.Revoked {
				if err := s.Store.APIKeys().RevokeAPIKey(ctx, k.ID, now); err != nil {
					return created, err
				}
				log.Info("seeded api key revoked", slog.String("api_key_id", k.ID))
			}
			continue
		case !errors.Is(err, store.ErrNotFound):
			return created, err
		}

		name := k.Name
		if name == "" {
			name = k.ID
		}
		rpm := k.RPM
		if rpm <= 0 {
			rpm = domain.DefaultAPIKeyRPM
		}

		if _, err := s.insert(ctx, k.ID, name, k.Secret, rpm, meta); err != nil {
			return created, err
		}
		if k.Revoked {
			if err := s.Store.APIKeys().RevokeAPIKey(ctx, k.ID, now); err != nil {
				return created, err
			}
		}
		created++
	}

	if created > 0 {
		s.reload(ctx)
	}
	log.Info("api key seed applied", slog.Int("created", created), slog.Int("defined", len(f.APIKeys)))
	return created, nil
}

func (s *APIKeyService) insert(ctx context.Context, id, name, secret string, rpm int, meta RequestMeta) (domain.APIKey, error) {
	now := s.Clock.TrustedTime(ctx).ServerTime

	sealed, err := s.Sealer.Seal([]byte(secret), []byte(id))
	if err != nil {
		return domain.APIKey{}, fmt.Errorf("seal api key secret: %w", err)
	}

	key := domain.APIKey{
		ID:              id,
		Name:            name,
		SecretEncrypted: sealed,
		RPM:             rpm,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.APIKeys().CreateAPIKey(ctx, key); err != nil {
			return err
		}
		return s.Audit.record(ctx, tx, domain.AuditEntry{
			Action:    domain.AuditAPIKeyCreate,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
			Success:   true,
			Message:   fmt.Sprintf("API key %s created", id),
			CreatedAt: now,
		})
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.APIKey{}, ErrAPIKeyIDConflict
	}
	if err != nil {
		slogx.FromContext(ctx).Error("failed to store api key", slog.String("api_key_id", id), slog.Any("error", err))
		return domain.APIKey{}, err
	}
	return key, nil
}

func (s *APIKeyService) open(k domain.APIKey) (string, error) {
	plain, err := s.Sealer.Open(k.SecretEncrypted, []byte(k.ID))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPIKeyCorrupted, err)
	}
	return string(plain), nil
}

// reload refreshes the guard cache. A failed reload keeps the previous
// snapshot and is retried by housekeeping.
func (s *APIKeyService) reload(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Reload(ctx); err != nil {
		slogx.FromContext(ctx).Error("failed to reload api key cache", slog.Any("error", err))
	}
}
