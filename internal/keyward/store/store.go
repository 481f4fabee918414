package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this and
// expose sub-repositories so a transaction-scoped Store cannot open another
// transaction by accident.
type Store interface {
	Licenses() Licenses
	Audit() Audit
	APIKeys() APIKeys

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Licenses interface {
	// CreateLicense inserts a license. A duplicate key or lookup id returns
	// ErrAlreadyExists.
	CreateLicense(ctx context.Context, l domain.License) error

	GetLicenseByID(ctx context.Context, id string) (domain.License, error)

	// GetLicenseByLookupID finds a license by the public prefix of its key.
	GetLicenseByLookupID(ctx context.Context, lookupID string) (domain.License, error)

	ListLicensesByOwner(ctx context.Context, ownerID string) ([]domain.License, error)
	ListLicenses(ctx context.Context, f domain.LicenseFilter) ([]domain.License, error)

	DeleteLicense(ctx context.Context, id string) error

	// UpdateLicenseStatus never moves a license out of revoked; ErrNotFound
	// is returned when the license is missing or already revoked.
	UpdateLicenseStatus(ctx context.Context, id string, status domain.LicenseStatus, at time.Time) error

	// IncrementFailedAttempts bumps the counter and stamps lastFailedAttempt
	// in one statement, returning the new count.
	IncrementFailedAttempts(ctx context.Context, id string, at time.Time) (int, error)

	// ResetFailedAttempts zeroes the counter and clears lastFailedAttempt.
	ResetFailedAttempts(ctx context.Context, id string, at time.Time) error

	// BindHWID sets the hwid only if none is bound. It reports whether this
	// call performed the binding.
	BindHWID(ctx context.Context, id, hwid string, at time.Time) (bool, error)

	ResetHWID(ctx context.Context, id string, at time.Time) error

	// AssignOwner sets the owner and activates the license when it is
	// active or inactive and either unowned or already owned by ownerID.
	// It reports whether it applied.
	AssignOwner(ctx context.Context, id, ownerID string, at time.Time) (bool, error)

	// LicenseStats counts licenses, evaluating expiry at now.
	LicenseStats(ctx context.Context, now time.Time) (domain.LicenseStats, error)
}

type Audit interface {
	AppendAuditEntry(ctx context.Context, e domain.AuditEntry) error

	// ListAuditEntries returns newest first. An empty licenseID lists all.
	ListAuditEntries(ctx context.Context, licenseID string, limit, offset int) ([]domain.AuditEntry, error)

	AuditStatsForLicense(ctx context.Context, licenseID string) (domain.AuditStats, error)

	// PurgeAuditEntries deletes every entry and returns how many went.
	PurgeAuditEntries(ctx context.Context) (int64, error)
}

type APIKeys interface {
	CreateAPIKey(ctx context.Context, k domain.APIKey) error
	GetAPIKeyByID(ctx context.Context, id string) (domain.APIKey, error)
	ListAPIKeys(ctx context.Context) ([]domain.APIKey, error)

	// RotateAPIKeySecret replaces the sealed secret of a non-revoked key.
	RotateAPIKeySecret(ctx context.Context, id string, secretEncrypted []byte, at time.Time) error

	RevokeAPIKey(ctx context.Context, id string, at time.Time) error
}
