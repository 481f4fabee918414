package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/keyward/pkg/cryptox"
	"github.com/aussiebroadwan/keyward/pkg/jwtx"
	"github.com/aussiebroadwan/keyward/pkg/licensekey"
)

// KeyMaterial holds everything derived from the master key.
type KeyMaterial struct {
	Sealer    *cryptox.Sealer
	Format    licensekey.Format
	Ephemeral bool
}

// InitKeyMaterial loads the master key and derives the api key sealing key
// and the signed-license secret from it.
//
// Without KEYWARD_MASTER_KEY_PATH or KEYWARD_MASTER_KEY a random master key
// is generated. Stored api key secrets and signed licenses issued under it
// become unreadable after a restart, which is only acceptable in development.
func InitKeyMaterial(cfg Config, logger *slog.Logger) (*KeyMaterial, error) {
	master, ephemeral, err := cryptox.LoadMasterKey(cfg.MasterKeyPath, cfg.MasterKey)
	if err != nil {
		return nil, err
	}
	if ephemeral {
		logger.Warn("no master key configured, generated an ephemeral one; api key secrets will not survive a restart")
	}

	sealKey, err := cryptox.DeriveKey(master, cryptox.InfoAPIKeySeal, cryptox.MasterKeySize)
	if err != nil {
		return nil, err
	}
	sealer, err := cryptox.NewSealer(sealKey)
	if err != nil {
		return nil, err
	}

	licenseSecret := []byte(cfg.LicenseSecret)
	if len(licenseSecret) == 0 {
		licenseSecret, err = cryptox.DeriveKey(master, cryptox.InfoSignedLicense, cryptox.MasterKeySize)
		if err != nil {
			return nil, err
		}
	}
	signed, err := licensekey.NewSignedCodec(licenseSecret)
	if err != nil {
		return nil, fmt.Errorf("KEYWARD_LICENSE_SECRET: %w", err)
	}

	format, err := licensekey.ParseFormatName(cfg.KeyFormat, signed)
	if err != nil {
		return nil, fmt.Errorf("KEYWARD_KEY_FORMAT %q: %w", cfg.KeyFormat, err)
	}

	logger.Info("key material ready", "key_format", format.Name(), "ephemeral_master_key", ephemeral)
	return &KeyMaterial{Sealer: sealer, Format: format, Ephemeral: ephemeral}, nil
}

// OwnerKeys verifies the bearer tokens of the owner routes against the
// account service's JWKS.
type OwnerKeys struct {
	KeySet   *jwtx.KeySet
	Verifier *jwtx.EdDSAVerifier
	Refresh  func(ctx context.Context) error
}

// InitOwnerKeys returns nil when no JWKS URL is configured, which disables
// the owner routes. A failed first fetch is logged and retried by
// housekeeping; /readyz reports the keys as missing until then.
func InitOwnerKeys(ctx context.Context, cfg Config, logger *slog.Logger) *OwnerKeys {
	if cfg.OwnerJWKSURL == "" {
		logger.Info("owner routes disabled, no KEYWARD_OWNER_JWKS_URL configured")
		return nil
	}

	keys := jwtx.NewKeySet()
	client := jwtx.NewFetchClient()
	refresh := func(ctx context.Context) error {
		return keys.Refresh(ctx, client, cfg.OwnerJWKSURL)
	}

	if err := refresh(ctx); err != nil {
		logger.Warn("initial owner jwks fetch failed", "url", cfg.OwnerJWKSURL, "error", err)
	} else {
		logger.Info("owner jwks loaded", "url", cfg.OwnerJWKSURL, "keys", len(keys.PublicJWKS().Keys))
	}

	return &OwnerKeys{
		KeySet:   keys,
		Verifier: jwtx.NewVerifier(keys, cfg.OwnerIssuer, nil),
		Refresh:  refresh,
	}
}
