package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/keyward/pkg/jwtx"
)

func TestOwnerKeygenAndToken(t *testing.T) {
	dir := t.TempDir()

	output, err := executeCommand([]string{"owner", "keygen", "dev-1", "--output-dir", dir})
	require.NoError(t, err)
	require.Contains(t, output, "JWKS written")

	data, err := os.ReadFile(filepath.Join(dir, "dev-1.jwks.json"))
	require.NoError(t, err)
	var jwks jwtx.JWKS
	require.NoError(t, json.Unmarshal(data, &jwks))
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "dev-1", jwks.Keys[0].Kid)

	output, err = executeCommand([]string{
		"owner", "token", "user-42",
		"--key-file", filepath.Join(dir, "dev-1.pem"), "--kid", "dev-1",
		"--issuer", "https://accounts.local", "--audience", "keyward",
	})
	require.NoError(t, err)
	token := strings.TrimSpace(output)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddJWK(jwks.Keys[0]))
	claims, err := jwtx.NewVerifier(keys, "https://accounts.local", []string{"keyward"}).Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-42", claims.Subject)
}

func TestOwnerKeygenRejects(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		setupFunc    func(dir string) error
		errorMessage string
	}{
		{
			name:         "missing kid",
			args:         []string{"owner", "keygen"},
			errorMessage: "accepts 1 arg(s), received 0",
		},
		{
			name:         "missing directory",
			args:         []string{"owner", "keygen", "dev-1", "--output-dir", "/nonexistent/path"},
			errorMessage: "directory /nonexistent/path does not exist",
		},
		{
			name: "output is a file",
			args: []string{"owner", "keygen", "dev-1", "--output-dir", "testfile"},
			setupFunc: func(dir string) error {
				return os.WriteFile(filepath.Join(dir, "testfile"), []byte("test"), 0o644)
			},
			errorMessage: "is not a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			if tt.setupFunc != nil {
				require.NoError(t, tt.setupFunc(dir))
			}

			_, err := executeCommand(tt.args)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errorMessage)
		})
	}
}

func TestOwnerTokenRequiresKey(t *testing.T) {
	_, err := executeCommand([]string{"owner", "token", "user-42"})
	require.ErrorContains(t, err, "--key-file and --kid are required")
}
