package domain

import "time"

// DefaultAPIKeyRPM is the per-key quota when none is given.
const DefaultAPIKeyRPM = 60

type APIKey struct {
	ID              string
	Name            string
	SecretEncrypted []byte // AES-GCM sealed secret, never returned over the API
	Revoked         bool
	RPM             int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastRotatedAt   *time.Time
}
