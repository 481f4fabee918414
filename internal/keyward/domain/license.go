package domain

import "time"

type LicenseStatus string

const (
	LicenseActive   LicenseStatus = "active"
	LicenseInactive LicenseStatus = "inactive"
	LicenseFrozen   LicenseStatus = "frozen"
	LicenseRevoked  LicenseStatus = "revoked" // terminal
)

func (s LicenseStatus) Valid() bool {
	switch s {
	case LicenseActive, LicenseInactive, LicenseFrozen, LicenseRevoked:
		return true
	}
	return false
}

type License struct {
	ID                string
	Key               string
	LookupID          string // public prefix of Key used for lookups
	Checksum          string
	Format            string // licensekey.FormatChecksum or licensekey.FormatSigned
	OwnerID           string // empty until redeemed
	Status            LicenseStatus
	GameType          string
	ExpiresAt         time.Time
	HWID              string // empty until first bound
	HWIDLocked        bool
	FailedAttempts    int
	LastFailedAttempt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Expired reports whether the license has passed its expiry at now.
func (l License) Expired(now time.Time) bool {
	return l.ExpiresAt.Before(now)
}

// LicenseFilter narrows List results. Zero values match everything.
type LicenseFilter struct {
	Status  LicenseStatus
	OwnerID string
	Limit   int
	Offset  int
}

// LicenseStats counts licenses by state. Expired counts past-expiry licenses
// that are not revoked; Active/Inactive/Frozen count only unexpired ones.
type LicenseStats struct {
	Total    int
	Active   int
	Inactive int
	Frozen   int
	Expired  int
	Revoked  int
	Bound    int
	Unbound  int
}
