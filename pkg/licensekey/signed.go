package licensekey

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	signedSegments   = 5
	signedRandomSize = 4 // bytes, 8 hex chars in the key
	signatureLength  = 8
	maxTypeLength    = 4
)

var (
	ErrMalformed        = errors.New("licensekey: invalid key structure")
	ErrInvalidTimestamp = errors.New("licensekey: invalid timestamp format")
	ErrExpired          = errors.New("licensekey: license expired")
	ErrInvalidSignature = errors.New("licensekey: invalid signature")
	ErrInvalidType      = errors.New("licensekey: invalid license type")
)

var (
	typePattern   = regexp.MustCompile(`^[A-Z0-9]{1,4}$`)
	randomPattern = regexp.MustCompile(`^[0-9A-F]{8}$`)
	sigPattern    = regexp.MustCompile(`^[0-9A-F]{8}$`)
	b36Pattern    = regexp.MustCompile(`^[0-9A-Z]{1,13}$`)
)

// SignedFields are the values carried inside a signed key.
type SignedFields struct {
	Type    string
	Created time.Time
	Expires time.Time
	Random  string
}

// canonicalRecord fixes the field order of the signed payload.
type canonicalRecord struct {
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Expires int64  `json:"expires"`
	Random  string `json:"random"`
}

// SignedCodec generates and validates self-verifying keys.
type SignedCodec struct {
	secret []byte
}

// NewSignedCodec returns a codec signing with secret.
func NewSignedCodec(secret []byte) (*SignedCodec, error) {
	if len(secret) < 16 {
		return nil, errors.New("licensekey: signing secret must be at least 16 bytes")
	}
	return &SignedCodec{secret: append([]byte(nil), secret...)}, nil
}

func (c *SignedCodec) Name() string { return FormatSigned }

// Generate builds a key for opts.Type valid from opts.IssuedAt to opts.ExpiresAt.
func (c *SignedCodec) Generate(opts GenerateOptions) (Issued, error) {
	typ := strings.ToUpper(opts.Type)
	if typ == "" {
		typ = "STD"
	}
	if len(typ) > maxTypeLength {
		typ = typ[:maxTypeLength]
	}
	if !typePattern.MatchString(typ) {
		return Issued{}, ErrInvalidType
	}
	if !opts.ExpiresAt.After(opts.IssuedAt) {
		return Issued{}, errors.New("licensekey: expiry must be after issue time")
	}

	buf := make([]byte, signedRandomSize)
	if _, err := rand.Read(buf); err != nil {
		return Issued{}, fmt.Errorf("licensekey: read random: %w", err)
	}
	random := strings.ToUpper(hex.EncodeToString(buf))

	created := opts.IssuedAt.UnixMilli()
	expires := opts.ExpiresAt.UnixMilli()
	sig, err := c.sign(typ, random, created, expires)
	if err != nil {
		return Issued{}, err
	}

	key := strings.Join([]string{
		typ,
		random,
		strings.ToUpper(strconv.FormatInt(created, 36)),
		strings.ToUpper(strconv.FormatInt(expires, 36)),
		sig,
	}, "-")

	return Issued{Key: key, Checksum: sig, LookupID: c.LookupID(key)}, nil
}

// ValidateFormat checks the segment layout without verifying the signature.
func (c *SignedCodec) ValidateFormat(key string) bool {
	_, err := splitSigned(key)
	return err == nil
}

// Checksum recomputes the signature prefix over the fields embedded in key.
// A structurally invalid key yields an empty string.
func (c *SignedCodec) Checksum(key string) string {
	parts, err := splitSigned(key)
	if err != nil {
		return ""
	}
	created, expires, err := decodeTimestamps(parts[2], parts[3])
	if err != nil {
		return ""
	}
	sig, err := c.sign(parts[0], parts[1], created, expires)
	if err != nil {
		return ""
	}
	return sig
}

func (c *SignedCodec) LookupID(key string) string {
	parts := strings.SplitN(key, "-", 3)
	if len(parts) < 3 {
		return key
	}
	return parts[0] + "-" + parts[1]
}

// Validate decodes key, rejects it when it has expired at now, and verifies
// the signature in constant time.
func (c *SignedCodec) Validate(key string, now time.Time) (SignedFields, error) {
	parts, err := splitSigned(key)
	if err != nil {
		return SignedFields{}, err
	}

	created, expires, err := decodeTimestamps(parts[2], parts[3])
	if err != nil {
		return SignedFields{}, err
	}
	if expires < now.UnixMilli() {
		return SignedFields{}, ErrExpired
	}

	expected, err := c.sign(parts[0], parts[1], created, expires)
	if err != nil {
		return SignedFields{}, err
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(parts[4])) != 1 {
		return SignedFields{}, ErrInvalidSignature
	}

	return SignedFields{
		Type:    strings.ToLower(parts[0]),
		Created: time.UnixMilli(created).UTC(),
		Expires: time.UnixMilli(expires).UTC(),
		Random:  strings.ToLower(parts[1]),
	}, nil
}

func (c *SignedCodec) sign(typ, random string, created, expires int64) (string, error) {
	payload, err := json.Marshal(canonicalRecord{
		Type:    strings.ToLower(typ),
		Created: created,
		Expires: expires,
		Random:  strings.ToLower(random),
	})
	if err != nil {
		return "", fmt.Errorf("licensekey: encode payload: %w", err)
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	sum := hex.EncodeToString(mac.Sum(nil))
	return strings.ToUpper(sum[:signatureLength]), nil
}

func splitSigned(key string) ([]string, error) {
	parts := strings.Split(key, "-")
	if len(parts) != signedSegments {
		return nil, ErrMalformed
	}
	if !typePattern.MatchString(parts[0]) ||
		!randomPattern.MatchString(parts[1]) ||
		!b36Pattern.MatchString(parts[2]) ||
		!b36Pattern.MatchString(parts[3]) ||
		!sigPattern.MatchString(parts[4]) {
		return nil, ErrMalformed
	}
	return parts, nil
}

func decodeTimestamps(createdSeg, expiresSeg string) (int64, int64, error) {
	created, err := strconv.ParseInt(strings.ToLower(createdSeg), 36, 64)
	if err != nil {
		return 0, 0, ErrInvalidTimestamp
	}
	expires, err := strconv.ParseInt(strings.ToLower(expiresSeg), 36, 64)
	if err != nil {
		return 0, 0, ErrInvalidTimestamp
	}
	return created, expires, nil
}
