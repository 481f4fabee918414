package keyward_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/keyward/pkg/keywardsdk"
)

// TestUnsignedValidateRejected verifies the request guard in front of
// /v1/validate.
func TestUnsignedValidateRejected(t *testing.T) {
	baseURL, cleanup := setupKeywardContainer(t, nil)
	defer cleanup()

	resp, err := http.Post(baseURL+"/v1/validate", "application/json", strings.NewReader(`{"key":"abc"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestRotatedKeyStopsSigning verifies a rotated secret is refused at once.
func TestRotatedKeyStopsSigning(t *testing.T) {
	baseURL, cleanup := setupKeywardContainer(t, nil)
	defer cleanup()

	client, admin := provisionClient(t, baseURL)
	ctx := t.Context()

	keys, err := admin.ListAPIKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys.APIKeys, 1)
	id := keys.APIKeys[0].ID

	rotated, err := admin.RotateAPIKey(ctx, id)
	require.NoError(t, err)

	_, err = client.TrustedTime(ctx)
	assertAPIError(t, err, http.StatusUnauthorized, keywardsdk.ErrorCodeRequestGuard)

	fresh := keywardsdk.NewSDKClient(baseURL, id, rotated.Secret)
	_, err = fresh.TrustedTime(ctx)
	require.NoError(t, err)

	require.NoError(t, admin.RevokeAPIKey(ctx, id))
	_, err = fresh.TrustedTime(ctx)
	assertAPIError(t, err, http.StatusForbidden, keywardsdk.ErrorCodeRequestGuard)
}

// TestAdminRequiresSecret verifies the admin API refuses a wrong secret and
// is hidden entirely when no secret is configured.
func TestAdminRequiresSecret(t *testing.T) {
	baseURL, cleanup := setupKeywardContainer(t, nil)
	defer cleanup()

	wrong := keywardsdk.NewSDKClient(baseURL, "", "").NewAdminSession("not-the-secret", "")
	_, err := wrong.LicenseStats(t.Context())
	assertAPIError(t, err, http.StatusUnauthorized, keywardsdk.ErrorCodeUnauthorized)

	disabledURL, cleanupDisabled := setupKeywardContainer(t, map[string]string{"KEYWARD_ADMIN_SECRET": ""})
	defer cleanupDisabled()

	admin := keywardsdk.NewSDKClient(disabledURL, "", "").NewAdminSession(adminSecret, "")
	_, err = admin.LicenseStats(t.Context())
	assertAPIError(t, err, http.StatusNotFound, keywardsdk.ErrorCodeNotFound)
}
