package cryptox

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Subkey labels. Bumping a version rotates every value derived from it.
const (
	InfoSignedLicense = "keyward/signed-license/v1"
	InfoAPIKeySeal    = "keyward/api-key-seal/v1"
)

// DeriveKey expands master into size bytes bound to info using HKDF-SHA256.
func DeriveKey(master []byte, info string, size int) ([]byte, error) {
	if len(master) == 0 {
		return nil, fmt.Errorf("cryptox: derive %q: empty master key", info)
	}

	out := make([]byte, size)
	r := hkdf.New(sha256.New, master, nil, []byte(info))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("cryptox: derive %q: %w", info, err)
	}
	return out, nil
}
