package cryptox

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, token, 43)

	token2, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, token, token2, "tokens should be unique")
}

func TestGenerateHexSecret(t *testing.T) {
	secret, err := GenerateHexSecret(APISecretSize)
	require.NoError(t, err)
	require.Len(t, secret, 48)

	_, err = hex.DecodeString(secret)
	require.NoError(t, err)
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"zero size", 0},
		{"negative size", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.Error(t, err)
			require.Empty(t, token)

			secret, err := GenerateHexSecret(tt.size)
			require.Error(t, err)
			require.Empty(t, secret)
		})
	}
}

func TestGenerateHexSecret_EntropyQuality(t *testing.T) {
	const count = 100
	seen := make(map[string]bool, count)

	for range count {
		secret, err := GenerateHexSecret(APISecretSize)
		require.NoError(t, err)
		require.NotContains(t, seen, secret, "duplicate secret generated")
		seen[secret] = true
	}
}
