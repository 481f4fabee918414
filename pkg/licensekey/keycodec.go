package licensekey

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	// KeyPrefix starts every KeyCodec key.
	KeyPrefix = "bcwtf"

	// KeyAlphabet excludes 0, 1, I and O.
	KeyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// KeyBodyLength is the number of random characters after the prefix.
	KeyBodyLength = 27

	// KeyLength is the total length of a KeyCodec key.
	KeyLength = len(KeyPrefix) + KeyBodyLength

	// lookupBodyLength body characters are public and used for store lookups.
	lookupBodyLength = 8
)

var keyPattern = regexp.MustCompile(`^` + KeyPrefix + `[` + KeyAlphabet + `]{27}$`)

// KeyCodec generates and checks the checksum key format.
type KeyCodec struct{}

func (KeyCodec) Name() string { return FormatChecksum }

// Generate returns a new random key and its checksum.
func (c KeyCodec) Generate(GenerateOptions) (Issued, error) {
	key, err := GenerateKey()
	if err != nil {
		return Issued{}, err
	}
	return Issued{Key: key, Checksum: Checksum(key), LookupID: c.LookupID(key)}, nil
}

func (KeyCodec) ValidateFormat(key string) bool { return ValidateKeyFormat(key) }

func (KeyCodec) Checksum(key string) string { return Checksum(key) }

func (KeyCodec) LookupID(key string) string {
	n := len(KeyPrefix) + lookupBodyLength
	if len(key) < n {
		return key
	}
	return key[:n]
}

// GenerateKey draws KeyBodyLength characters from KeyAlphabet using crypto/rand.
func GenerateKey() (string, error) {
	var b strings.Builder
	b.Grow(KeyLength)
	b.WriteString(KeyPrefix)

	limit := big.NewInt(int64(len(KeyAlphabet)))
	for range KeyBodyLength {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("licensekey: read random: %w", err)
		}
		b.WriteByte(KeyAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// Checksum is the first byte of SHA-256 over the key (hyphens removed),
// upper-case hex.
func Checksum(key string) string {
	sum := sha256.Sum256([]byte(strings.ReplaceAll(key, "-", "")))
	return strings.ToUpper(hex.EncodeToString(sum[:1]))
}

// ValidateKeyFormat reports whether key has the prefix, alphabet and length of
// a KeyCodec key.
func ValidateKeyFormat(key string) bool {
	return keyPattern.MatchString(key)
}
