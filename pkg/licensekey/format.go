// Package licensekey implements the license key formats issued by keyward.
//
// Two formats exist side by side:
//
//   - KeyCodec: "bcwtf" followed by 27 characters from a confusable-free
//     alphabet, with a short SHA-256 checksum stored next to the key. Validity
//     ultimately depends on a store lookup.
//   - SignedCodec: TYPE-RANDOM-CREATED-EXPIRES-SIG, where SIG is a truncated
//     HMAC-SHA256 over the decoded fields. It can be verified offline.
//
// Both implement Format so the license service can be configured with either.
package licensekey

import (
	"errors"
	"time"
)

// Format names accepted by ParseFormatName.
const (
	FormatChecksum = "checksum"
	FormatSigned   = "signed"
)

var ErrUnknownFormat = errors.New("licensekey: unknown format")

// GenerateOptions carries the fields some formats embed in the key.
// KeyCodec ignores all of them.
type GenerateOptions struct {
	Type      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issued is a freshly generated key together with the values that get persisted
// next to it.
type Issued struct {
	Key      string
	Checksum string
	LookupID string
}

// Format is the capability shared by every license key format.
type Format interface {
	// Name returns the format identifier stored with each license.
	Name() string

	// Generate creates a new key.
	Generate(opts GenerateOptions) (Issued, error)

	// ValidateFormat is a structural check that never touches storage.
	ValidateFormat(key string) bool

	// Checksum recomputes the tamper value for a presented key.
	Checksum(key string) string

	// LookupID returns the public part of the key used to find its record.
	LookupID(key string) string
}

// ParseFormatName builds the Format for a configured name.
func ParseFormatName(name string, signed *SignedCodec) (Format, error) {
	switch name {
	case "", FormatChecksum:
		return KeyCodec{}, nil
	case FormatSigned:
		if signed == nil {
			return nil, errors.New("licensekey: signed format requires a secret")
		}
		return signed, nil
	default:
		return nil, ErrUnknownFormat
	}
}
