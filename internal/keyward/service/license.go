package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
	"github.com/aussiebroadwan/keyward/internal/keyward/store"
	"github.com/aussiebroadwan/keyward/pkg/idx"
	"github.com/aussiebroadwan/keyward/pkg/licensekey"
	"github.com/aussiebroadwan/keyward/pkg/slogx"
)

const (
	DefaultLicenseTTL = 365 * 24 * time.Hour
	MaxBulkLicenses   = 100
	DefaultGameType   = "default"

	generateAttempts = 3
)

var (
	ErrLicenseNotFound    = errors.New("license not found")
	ErrInvalidExpiry      = errors.New("expiry must be in the future")
	ErrInvalidBulkCount   = errors.New("count must be between 1 and 100")
	ErrInvalidTransition  = errors.New("license status does not allow this change")
	ErrOwnedByOther       = errors.New("license already redeemed by another account")
	ErrNotLicenseOwner    = errors.New("license is not owned by this account")
	ErrLicenseKeyMismatch = errors.New("invalid license key")
	ErrLicenseExpired     = errors.New("license key has expired")
	ErrLicenseRevoked     = errors.New("license key has been revoked")
	ErrLicenseFrozen      = errors.New("license key is frozen")
	ErrLicenseLocked      = errors.New("license key is temporarily locked")
)

// CreateLicenseInput describes a license to issue. A nil ExpiresAt means one
// trusted-time year from now. Type is only embedded by the signed format.
type CreateLicenseInput struct {
	OwnerID   string
	ExpiresAt *time.Time
	GameType  string
	Type      string
	Inactive  bool
}

// LicenseService issues licenses and applies administrative and owner
// actions to them. Every state change appends one audit entry. Locks should
// be the Validator's so redeem and validate serialize per license.
type LicenseService struct {
	Store  store.Store
	Clock  TrustedClock
	Format licensekey.Format
	Audit  *AuditService
	Locks  *KeyLock

	locks KeyLock
}

// Create issues a single license.
func (s *LicenseService) Create(ctx context.Context, in CreateLicenseInput, meta RequestMeta) (domain.License, error) {
	log := slogx.FromContext(ctx)

	// 1. Trusted time for createdAt and the default expiry.
	reading, err := trustedNow(ctx, s.Clock)
	if err != nil {
		log.Error("refusing to issue license on untrusted time", slog.String("oracle_state", string(reading.State)))
		return domain.License{}, err
	}
	now := reading.ServerTime

	// 2. Resolve and check the expiry.
	expiresAt, err := resolveExpiry(in.ExpiresAt, now)
	if err != nil {
		return domain.License{}, err
	}

	// 3. Generate and store with its audit entry.
	var lic domain.License
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if lic, err = s.createUnique(ctx, tx, in, now, expiresAt); err != nil {
			return err
		}
		return s.Audit.record(ctx, tx, domain.AuditEntry{
			LicenseID: lic.ID,
			Action:    domain.AuditCreate,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
			Success:   true,
			Message:   "License created successfully",
			CreatedAt: now,
		})
	})
	if err != nil {
		log.Error("failed to create license", slog.Any("error", err))
		return domain.License{}, err
	}

	log.Info("license created",
		slog.String("license_id", lic.ID),
		slog.String("format", lic.Format),
		slog.Time("expires_at", lic.ExpiresAt),
	)
	return lic, nil
}

// BulkCreate issues count licenses in one transaction, each with its own
// bulk_create audit entry.
func (s *LicenseService) BulkCreate(ctx context.Context, count int, in CreateLicenseInput, meta RequestMeta) ([]domain.License, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate the count.
	if count < 1 || count > MaxBulkLicenses {
		return nil, ErrInvalidBulkCount
	}

	// 2. Trusted time and expiry.
	reading, err := trustedNow(ctx, s.Clock)
	if err != nil {
		return nil, err
	}
	now := reading.ServerTime

	expiresAt, err := resolveExpiry(in.ExpiresAt, now)
	if err != nil {
		return nil, err
	}
	if in.GameType == "" {
		in.GameType = DefaultGameType
	}

	// 3. Store all or nothing. A key that collides with a stored one, or with
	// an earlier key in this batch, is regenerated in place.
	licenses := make([]domain.License, 0, count)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		for range count {
			lic, err := s.createUnique(ctx, tx, in, now, expiresAt)
			if err != nil {
				return err
			}
			if err := s.Audit.record(ctx, tx, domain.AuditEntry{
				LicenseID: lic.ID,
				Action:    domain.AuditBulkCreate,
				IPAddress: meta.IPAddress,
				UserAgent: meta.UserAgent,
				Success:   true,
				Message:   "License created in bulk operation",
				CreatedAt: now,
			}); err != nil {
				return err
			}
			licenses = append(licenses, lic)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to bulk create licenses", slog.Int("count", count), slog.Any("error", err))
		return nil, err
	}

	log.Info("licenses bulk created", slog.Int("count", count))
	return licenses, nil
}

// createUnique generates and inserts one license inside tx, regenerating the
// key when it collides.
func (s *LicenseService) createUnique(ctx context.Context, tx store.Tx, in CreateLicenseInput, now, expiresAt time.Time) (domain.License, error) {
	for attempt := 1; ; attempt++ {
		lic, err := s.newLicense(in, now, expiresAt)
		if err != nil {
			return domain.License{}, err
		}
		err = tx.Licenses().CreateLicense(ctx, lic)
		if errors.Is(err, store.ErrAlreadyExists) && attempt < generateAttempts {
			slogx.FromContext(ctx).Warn("license key collision, regenerating", slog.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return domain.License{}, err
		}
		return lic, nil
	}
}

// Get returns a license by id.
func (s *LicenseService) Get(ctx context.Context, id string) (domain.License, error) {
	lic, err := s.Store.Licenses().GetLicenseByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.License{}, ErrLicenseNotFound
	}
	return lic, err
}

func (s *LicenseService) List(ctx context.Context, f domain.LicenseFilter) ([]domain.License, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrInvalidRequest
	}
	return s.Store.Licenses().ListLicenses(ctx, f)
}

// Delete removes a license. Its audit history stays.
func (s *LicenseService) Delete(ctx context.Context, id string, meta RequestMeta) error {
	now := s.Clock.TrustedTime(ctx).ServerTime

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Licenses().DeleteLicense(ctx, id); err != nil {
			return err
		}
		return s.Audit.record(ctx, tx, domain.AuditEntry{
			LicenseID: id,
			Action:    domain.AuditDelete,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
			Success:   true,
			Message:   "License deleted",
			CreatedAt: now,
		})
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrLicenseNotFound
	}
	return err
}

// BulkDelete removes every listed license that exists and returns how many
// went. Unknown ids are skipped.
func (s *LicenseService) BulkDelete(ctx context.Context, ids []string, meta RequestMeta) (int, error) {
	if len(ids) == 0 || len(ids) > MaxBulkLicenses {
		return 0, ErrInvalidBulkCount
	}
	now := s.Clock.TrustedTime(ctx).ServerTime

	deleted := 0
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, id := range ids {
			lic, err := tx.Licenses().GetLicenseByID(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := tx.Licenses().DeleteLicense(ctx, id); err != nil {
				return err
			}
			deleted++

			if err := s.Audit.record(ctx, tx, domain.AuditEntry{
				LicenseID: id,
				Action:    domain.AuditBulkDelete,
				IPAddress: meta.IPAddress,
				UserAgent: meta.UserAgent,
				Success:   true,
				Message:   fmt.Sprintf("License %s deleted in bulk operation", lic.LookupID),
				CreatedAt: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to bulk delete licenses", slog.Any("error", err))
		return 0, err
	}
	return deleted, nil
}

// Freeze blocks validation of an active or inactive license.
func (s *LicenseService) Freeze(ctx context.Context, id string, meta RequestMeta) (domain.License, error) {
	return s.transition(ctx, id, meta, domain.AuditFreeze, domain.LicenseFrozen, "License frozen",
		domain.LicenseActive, domain.LicenseInactive)
}

// Unfreeze returns a frozen license to active.
func (s *LicenseService) Unfreeze(ctx context.Context, id string, meta RequestMeta) (domain.License, error) {
	return s.transition(ctx, id, meta, domain.AuditUnfreeze, domain.LicenseActive, "License unfrozen",
		domain.LicenseFrozen)
}

// Revoke terminates a license. Revoked is final.
func (s *LicenseService) Revoke(ctx context.Context, id string, meta RequestMeta) (domain.License, error) {
	return s.transition(ctx, id, meta, domain.AuditRevoke, domain.LicenseRevoked, "License revoked successfully",
		domain.LicenseActive, domain.LicenseInactive, domain.LicenseFrozen)
}

func (s *LicenseService) transition(
	ctx context.Context,
	id string,
	meta RequestMeta,
	action domain.AuditAction,
	to domain.LicenseStatus,
	message string,
	from ...domain.LicenseStatus,
) (domain.License, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.TrustedTime(ctx).ServerTime

	var lic domain.License
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Load and check the source status.
		cur, err := tx.Licenses().GetLicenseByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrLicenseNotFound
		}
		if err != nil {
			return err
		}
		if !slices.Contains(from, cur.Status) {
			log.Warn("rejected license status change",
				slog.String("license_id", id),
				slog.String("from", string(cur.Status)),
				slog.String("to", string(to)),
			)
			return ErrInvalidTransition
		}

		// 2. Apply. The store refuses to leave revoked.
		if err := tx.Licenses().UpdateLicenseStatus(ctx, id, to, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidTransition
			}
			return err
		}
		cur.Status = to
		cur.UpdatedAt = now
		lic = cur

		// 3. Audit.
		return s.Audit.record(ctx, tx, domain.AuditEntry{
			LicenseID: id,
			Action:    action,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
			Success:   true,
			Message:   message,
			CreatedAt: now,
		})
	})
	if err != nil {
		return domain.License{}, err
	}

	log.Info("license status changed",
		slog.String("license_id", id),
		slog.String("status", string(to)),
	)
	return lic, nil
}

// ResetHWID clears the hardware binding so the next successful validation
// binds again.
func (s *LicenseService) ResetHWID(ctx context.Context, id string, meta RequestMeta) (domain.License, error) {
	return s.resetHWID(ctx, id, "", meta, "HWID reset by admin")
}

// ResetOwnHWID is ResetHWID for the license's owner.
func (s *LicenseService) ResetOwnHWID(ctx context.Context, id, ownerID string, meta RequestMeta) (domain.License, error) {
	return s.resetHWID(ctx, id, ownerID, meta, "HWID reset by owner account")
}

func (s *LicenseService) resetHWID(ctx context.Context, id, ownerID string, meta RequestMeta, message string) (domain.License, error) {
	now := s.Clock.TrustedTime(ctx).ServerTime

	var lic domain.License
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		cur, err := tx.Licenses().GetLicenseByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrLicenseNotFound
		}
		if err != nil {
			return err
		}
		if ownerID != "" && cur.OwnerID != ownerID {
			return ErrNotLicenseOwner
		}

		if err := tx.Licenses().ResetHWID(ctx, id, now); err != nil {
			return err
		}
		cur.HWID = ""
		cur.HWIDLocked = false
		cur.UpdatedAt = now
		lic = cur

		return s.Audit.record(ctx, tx, domain.AuditEntry{
			LicenseID: id,
			Action:    domain.AuditResetHWID,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
			Success:   true,
			Message:   message,
			CreatedAt: now,
		})
	})
	if err != nil {
		return domain.License{}, err
	}

	slogx.FromContext(ctx).Info("license hwid reset", slog.String("license_id", id))
	return lic, nil
}

// Redeem binds an unowned license to ownerID and activates it. Redeeming a
// license the caller already owns is a no-op success. A wrong key counts as a
// failed attempt and a locked license cannot be redeemed, the same as in
// validation; an unknown key and a wrong key are reported alike.
func (s *LicenseService) Redeem(ctx context.Context, key, ownerID string, meta RequestMeta) (domain.License, error) {
	log := slogx.FromContext(ctx)
	key = strings.TrimSpace(key)

	// 1. Trusted time.
	reading, err := trustedNow(ctx, s.Clock)
	if err != nil {
		return domain.License{}, err
	}
	now := reading.ServerTime

	// 2. Find the license by the public part of the key.
	if !s.Format.ValidateFormat(key) {
		return domain.License{}, ErrLicenseKeyMismatch
	}
	found, err := s.Store.Licenses().GetLicenseByLookupID(ctx, s.Format.LookupID(key))
	if errors.Is(err, store.ErrNotFound) {
		return domain.License{}, ErrLicenseKeyMismatch
	}
	if err != nil {
		return domain.License{}, err
	}

	// The rest runs under the license's lock, on a fresh read.
	unlock := s.Locks.or(&s.locks).Lock(found.ID)
	defer unlock()

	lic, err := s.Store.Licenses().GetLicenseByID(ctx, found.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.License{}, ErrLicenseKeyMismatch
	}
	if err != nil {
		return domain.License{}, err
	}

	// 3. Lockout, before the key is compared.
	if _, locked := lockoutRemaining(lic, now); locked {
		log.Warn("redeem of locked license", slog.String("license_id", lic.ID))
		return domain.License{}, s.redeemFailed(ctx, lic.ID, meta, now, ErrLicenseLocked, msgLocked)
	}

	// 4. Exact key. A mismatch bumps the failure counter.
	if subtle.ConstantTimeCompare([]byte(lic.Key), []byte(key)) != 1 {
		log.Warn("redeem with mismatched key", slog.String("license_id", lic.ID))
		err := s.Store.WithTx(ctx, func(tx store.Tx) error {
			if _, err := tx.Licenses().IncrementFailedAttempts(ctx, lic.ID, now); err != nil {
				return err
			}
			return s.Audit.record(ctx, tx, redeemEntry(lic.ID, meta, now, false, msgInvalidKey))
		})
		if err != nil {
			return domain.License{}, err
		}
		return domain.License{}, ErrLicenseKeyMismatch
	}

	// 5. Only usable licenses can be redeemed.
	if err := redeemable(lic, now); err != nil {
		return domain.License{}, s.redeemFailed(ctx, lic.ID, meta, now, err, err.Error())
	}

	// 6. Assign. The store only applies to an unowned or self-owned license.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		ok, err := tx.Licenses().AssignOwner(ctx, lic.ID, ownerID, now)
		if err != nil {
			return err
		}
		if !ok {
			cur, err := tx.Licenses().GetLicenseByID(ctx, lic.ID)
			if err != nil {
				return err
			}
			if err := redeemable(cur, now); err != nil {
				return err
			}
			return ErrOwnedByOther
		}

		if lic.FailedAttempts > 0 || lic.LastFailedAttempt != nil {
			if err := tx.Licenses().ResetFailedAttempts(ctx, lic.ID, now); err != nil {
				return err
			}
			lic.FailedAttempts = 0
			lic.LastFailedAttempt = nil
		}

		lic.OwnerID = ownerID
		lic.Status = domain.LicenseActive
		lic.UpdatedAt = now

		return s.Audit.record(ctx, tx, redeemEntry(lic.ID, meta, now, true, "License redeemed"))
	})
	if err != nil {
		if errors.Is(err, ErrOwnedByOther) {
			log.Warn("redeem of license owned by another account", slog.String("license_id", lic.ID))
			return domain.License{}, s.redeemFailed(ctx, lic.ID, meta, now, err, "License already redeemed by another account")
		}
		return domain.License{}, err
	}

	log.Info("license redeemed", slog.String("license_id", lic.ID), slog.String("owner_id", ownerID))
	return lic, nil
}

// redeemFailed audits a rejected redeem and returns cause, or the audit
// error when the entry could not be written.
func (s *LicenseService) redeemFailed(ctx context.Context, id string, meta RequestMeta, now time.Time, cause error, message string) error {
	if err := s.Audit.Record(ctx, redeemEntry(id, meta, now, false, message)); err != nil {
		return err
	}
	return cause
}

func redeemEntry(id string, meta RequestMeta, now time.Time, success bool, message string) domain.AuditEntry {
	return domain.AuditEntry{
		LicenseID: id,
		Action:    domain.AuditRedeem,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Success:   success,
		Message:   message,
		CreatedAt: now,
	}
}

// Mine lists the licenses owned by ownerID.
func (s *LicenseService) Mine(ctx context.Context, ownerID string) ([]domain.License, error) {
	return s.Store.Licenses().ListLicensesByOwner(ctx, ownerID)
}

// Owned returns a license only when ownerID owns it.
func (s *LicenseService) Owned(ctx context.Context, id, ownerID string) (domain.License, error) {
	lic, err := s.Get(ctx, id)
	if err != nil {
		return domain.License{}, err
	}
	if lic.OwnerID == "" || lic.OwnerID != ownerID {
		return domain.License{}, ErrNotLicenseOwner
	}
	return lic, nil
}

// Stats counts licenses by state at trusted time.
func (s *LicenseService) Stats(ctx context.Context) (domain.LicenseStats, error) {
	return s.Store.Licenses().LicenseStats(ctx, s.Clock.TrustedTime(ctx).ServerTime)
}

func (s *LicenseService) newLicense(in CreateLicenseInput, now, expiresAt time.Time) (domain.License, error) {
	issued, err := s.Format.Generate(licensekey.GenerateOptions{
		Type:      in.Type,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	})
	if errors.Is(err, licensekey.ErrInvalidType) {
		return domain.License{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err != nil {
		return domain.License{}, fmt.Errorf("generate license key: %w", err)
	}

	status := domain.LicenseActive
	if in.Inactive {
		status = domain.LicenseInactive
	}

	return domain.License{
		ID:        idx.New().String(),
		Key:       issued.Key,
		LookupID:  issued.LookupID,
		Checksum:  issued.Checksum,
		Format:    s.Format.Name(),
		OwnerID:   in.OwnerID,
		Status:    status,
		GameType:  in.GameType,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func resolveExpiry(requested *time.Time, now time.Time) (time.Time, error) {
	if requested == nil {
		return now.Add(DefaultLicenseTTL), nil
	}
	if !requested.After(now) {
		return time.Time{}, ErrInvalidExpiry
	}
	return requested.UTC(), nil
}

func redeemable(lic domain.License, now time.Time) error {
	switch {
	case lic.Status == domain.LicenseRevoked:
		return ErrLicenseRevoked
	case lic.Status == domain.LicenseFrozen:
		return ErrLicenseFrozen
	case lic.Expired(now):
		return ErrLicenseExpired
	}
	return nil
}
