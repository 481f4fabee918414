package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/keyward/pkg/cryptox"
	"github.com/aussiebroadwan/keyward/pkg/jwtx"
	"github.com/aussiebroadwan/keyward/pkg/licensekey"
	"github.com/aussiebroadwan/keyward/pkg/slogx"
)

func TestInitKeyMaterialIsStableForAMasterKey(t *testing.T) {
	cfg := Config{MasterKey: "stable-master-key", KeyFormat: licensekey.FormatSigned}

	first, err := InitKeyMaterial(cfg, slogx.Discard())
	require.NoError(t, err)
	require.False(t, first.Ephemeral)
	require.Equal(t, licensekey.FormatSigned, first.Format.Name())

	second, err := InitKeyMaterial(cfg, slogx.Discard())
	require.NoError(t, err)

	// A key issued before a restart still verifies after it.
	now := time.Now().UTC()
	issued, err := first.Format.Generate(licensekey.GenerateOptions{IssuedAt: now, ExpiresAt: now.Add(time.Hour)})
	require.NoError(t, err)
	require.Equal(t, issued.Checksum, second.Format.Checksum(issued.Key))

	sealed, err := first.Sealer.Seal([]byte("secret"), []byte("loader"))
	require.NoError(t, err)
	opened, err := second.Sealer.Open(sealed, []byte("loader"))
	require.NoError(t, err)
	require.Equal(t, "secret", string(opened))
}

func TestInitKeyMaterialEphemeral(t *testing.T) {
	km, err := InitKeyMaterial(Config{KeyFormat: licensekey.FormatChecksum}, slogx.Discard())
	require.NoError(t, err)
	require.True(t, km.Ephemeral)
	require.Equal(t, licensekey.FormatChecksum, km.Format.Name())
}

func TestInitKeyMaterialRejectsShortLicenseSecret(t *testing.T) {
	_, err := InitKeyMaterial(Config{MasterKey: "m", LicenseSecret: "short", KeyFormat: licensekey.FormatSigned}, slogx.Discard())
	require.ErrorContains(t, err, "KEYWARD_LICENSE_SECRET")
}

func TestInitOwnerKeys(t *testing.T) {
	require.Nil(t, InitOwnerKeys(context.Background(), Config{}, slogx.Discard()))

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSigner("owner-1", pemKey)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwtx.JWKS{Keys: []jwtx.JWK{signer.PublicJWK()}})
	}))
	defer srv.Close()

	owner := InitOwnerKeys(context.Background(), Config{OwnerJWKSURL: srv.URL, OwnerIssuer: "https://accounts.test"}, slogx.Discard())
	require.NotNil(t, owner)
	require.True(t, owner.KeySet.IsReady())

	token, err := signer.Sign(jwtx.NewOwnerClaims("user-1", "", "https://accounts.test", nil, time.Minute, time.Now().UTC()))
	require.NoError(t, err)
	claims, err := owner.Verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
}
