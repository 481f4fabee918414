package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/keyward/pkg/cryptox"
	"github.com/aussiebroadwan/keyward/pkg/licensekey"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	expiresAt := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)

	output, err := executeCommand([]string{
		"sign", "--type", "pro", "--expires-at", expiresAt.Format(time.RFC3339),
		"--license-secret", testLicenseSecret,
	})
	require.NoError(t, err)
	key := strings.TrimSpace(output)
	require.True(t, strings.HasPrefix(key, "PRO-"), key)

	output, err = executeCommand([]string{"verify", key, "--license-secret", testLicenseSecret})
	require.NoError(t, err)
	require.Contains(t, output, "signed PRO license")
	require.Contains(t, output, expiresAt.Format(time.RFC3339))

	_, err = executeCommand([]string{"verify", key, "--license-secret", "another-secret-0123456789"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid signature")
}

func TestSignDerivesSecretFromMasterKey(t *testing.T) {
	t.Setenv("KEYWARD_LICENSE_SECRET", "")
	t.Setenv("KEYWARD_MASTER_KEY", "")
	t.Setenv("KEYWARD_MASTER_KEY_PATH", "")

	output, err := executeCommand([]string{"sign", "--master-key", "master-key-material"})
	require.NoError(t, err)
	key := strings.TrimSpace(output)

	// Matches what the server derives from the same master key.
	master, _, err := cryptox.LoadMasterKey("", "master-key-material")
	require.NoError(t, err)
	derived, err := cryptox.DeriveKey(master, cryptox.InfoSignedLicense, cryptox.MasterKeySize)
	require.NoError(t, err)
	codec, err := licensekey.NewSignedCodec(derived)
	require.NoError(t, err)

	fields, err := codec.Validate(key, time.Now())
	require.NoError(t, err)
	require.Equal(t, "std", fields.Type)
}

func TestSignRejects(t *testing.T) {
	t.Setenv("KEYWARD_LICENSE_SECRET", testLicenseSecret)

	tests := []struct {
		name         string
		args         []string
		errorMessage string
	}{
		{"past expiry", []string{"sign", "--expires-at", "2001-01-01T00:00:00Z"}, "expiry must be in the future"},
		{"bad expiry", []string{"sign", "--expires-at", "tomorrow"}, "invalid --expires-at"},
		{"bad type", []string{"sign", "--type", "P-1"}, "invalid license type"},
		{"short secret", []string{"sign", "--license-secret", "short"}, "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(tt.args)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errorMessage)
		})
	}
}

func TestVerifyChecksumKey(t *testing.T) {
	key, err := licensekey.GenerateKey()
	require.NoError(t, err)

	output, err := executeCommand([]string{"verify", key})
	require.NoError(t, err)
	require.Contains(t, output, licensekey.Checksum(key))

	output, err = executeCommand([]string{"verify", key, "--checksum", licensekey.Checksum(key)})
	require.NoError(t, err)
	require.Contains(t, output, "checksum matches")

	_, err = executeCommand([]string{"verify", key, "--checksum", "deadbeef"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "checksum mismatch")

	_, err = executeCommand([]string{"verify", "not-a-key"})
	require.Error(t, err)
}
