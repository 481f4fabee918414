package keyward_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/keyward/pkg/keywardsdk"
)

// TestValidateLifecycle walks a license from issue to revoke through the
// validation endpoint.
func TestValidateLifecycle(t *testing.T) {
	baseURL, cleanup := setupKeywardContainer(t, nil)
	defer cleanup()

	client, admin := provisionClient(t, baseURL)
	ctx := t.Context()

	lic, err := admin.CreateLicense(ctx, keywardsdk.CreateLicenseRequest{GameType: "e2e"})
	require.NoError(t, err)
	require.Equal(t, "active", lic.Status)

	// First validation binds the hardware id
	resp, err := client.Validate(ctx, keywardsdk.ValidateRequest{Key: lic.Key, HWID: "machine-a"})
	require.NoError(t, err)
	require.True(t, resp.Valid, resp.Message)
	require.Equal(t, keywardsdk.OutcomeSuccess, resp.Outcome)

	got, err := admin.GetLicense(ctx, lic.ID)
	require.NoError(t, err)
	require.Equal(t, "machine-a", got.HWID)

	resp, err = client.Validate(ctx, keywardsdk.ValidateRequest{Key: lic.Key, HWID: "machine-b"})
	require.NoError(t, err)
	require.False(t, resp.Valid)
	require.True(t, resp.HWIDMismatch)

	_, err = admin.ResetLicenseHWID(ctx, lic.ID)
	require.NoError(t, err)

	resp, err = client.Validate(ctx, keywardsdk.ValidateRequest{Key: lic.Key, HWID: "machine-b"})
	require.NoError(t, err)
	require.True(t, resp.Valid, resp.Message)

	// Frozen licenses stop validating until unfrozen
	frozen, err := admin.FreezeLicense(ctx, lic.ID)
	require.NoError(t, err)
	require.Equal(t, "frozen", frozen.Status)

	resp, err = client.Validate(ctx, keywardsdk.ValidateRequest{Key: lic.Key, HWID: "machine-b"})
	require.NoError(t, err)
	require.False(t, resp.Valid)
	require.True(t, resp.Inactive)
	require.Equal(t, keywardsdk.OutcomeInactive, resp.Outcome)

	_, err = admin.FreezeLicense(ctx, lic.ID)
	assertAPIError(t, err, http.StatusConflict, keywardsdk.ErrorCodeInvalidStatus)

	unfrozen, err := admin.UnfreezeLicense(ctx, lic.ID)
	require.NoError(t, err)
	require.Equal(t, "active", unfrozen.Status)

	resp, err = client.Validate(ctx, keywardsdk.ValidateRequest{Key: lic.Key, HWID: "machine-b"})
	require.NoError(t, err)
	require.True(t, resp.Valid, resp.Message)

	_, err = admin.RevokeLicense(ctx, lic.ID)
	require.NoError(t, err)

	resp, err = client.Validate(ctx, keywardsdk.ValidateRequest{Key: lic.Key, HWID: "machine-b"})
	require.NoError(t, err)
	require.False(t, resp.Valid)
	require.True(t, resp.Revoked)

	stats, err := admin.LicenseAuditStats(ctx, lic.ID)
	require.NoError(t, err)
	require.Equal(t, 6, stats.Validations)
	require.Equal(t, 3, stats.SuccessCount)
}

// TestValidateUnknownKey verifies unknown keys report not_found.
func TestValidateUnknownKey(t *testing.T) {
	baseURL, cleanup := setupKeywardContainer(t, nil)
	defer cleanup()

	client, _ := provisionClient(t, baseURL)

	resp, err := client.Validate(t.Context(), keywardsdk.ValidateRequest{Key: "ZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZ"})
	require.NoError(t, err)
	require.False(t, resp.Valid)
	require.Equal(t, keywardsdk.OutcomeNotFound, resp.Outcome)
}

// TestValidateSignedFormat runs the validation flow with signed keys.
func TestValidateSignedFormat(t *testing.T) {
	baseURL, cleanup := setupKeywardContainer(t, map[string]string{
		"KEYWARD_KEY_FORMAT": "signed",
	})
	defer cleanup()

	client, admin := provisionClient(t, baseURL)
	ctx := t.Context()

	expires := time.Now().Add(48 * time.Hour).UTC()
	lic, err := admin.CreateLicense(ctx, keywardsdk.CreateLicenseRequest{ExpiresAt: &expires})
	require.NoError(t, err)
	require.Equal(t, "signed", lic.Format)

	resp, err := client.Validate(ctx, keywardsdk.ValidateRequest{Key: lic.Key, HWID: "machine-a"})
	require.NoError(t, err)
	require.True(t, resp.Valid, resp.Message)
}
