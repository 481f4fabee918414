package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
	"github.com/aussiebroadwan/keyward/internal/keyward/store"
	"github.com/aussiebroadwan/keyward/pkg/licensekey"
	"github.com/aussiebroadwan/keyward/pkg/slogx"
	"github.com/aussiebroadwan/keyward/pkg/timeoracle"
)

const (
	MaxFailedAttempts = 5
	LockoutWindow     = 30 * time.Minute
	MaxClientDrift    = 5 * time.Minute
)

type OutcomeKind string

const (
	OutcomeTimeError    OutcomeKind = "time_error"
	OutcomeNotFound     OutcomeKind = "not_found"
	OutcomeLocked       OutcomeKind = "locked"
	OutcomeExpired      OutcomeKind = "expired"
	OutcomeRevoked      OutcomeKind = "revoked"
	OutcomeInactive     OutcomeKind = "inactive"
	OutcomeWrongKey     OutcomeKind = "wrong_key"
	OutcomeHWIDMismatch OutcomeKind = "hwid_mismatch"
	OutcomeSuccess      OutcomeKind = "success"
)

const (
	msgTimeFailed   = "System time validation failed. Please check your system clock."
	msgClientDrift  = "Time validation failed. Please check your system clock."
	msgLocked       = "License key is temporarily locked due to too many failed attempts"
	msgExpired      = "License key has expired"
	msgRevoked      = "License key has been revoked"
	msgInactive     = "License key is inactive"
	msgFrozen       = "License key is frozen"
	msgInvalidKey   = "Invalid license key"
	msgHWIDMismatch = "Hardware ID mismatch"
	msgValid        = "License key is valid"
)

// ValidateRequest is one validation attempt. HWID wins over SystemInfo when
// both are present; ClientTime is the caller's untrusted clock.
type ValidateRequest struct {
	Key        string
	HWID       string
	SystemInfo licensekey.SystemInfo
	ClientTime *time.Time
	Meta       RequestMeta
}

// Outcome is the result of a validation. Exactly one Kind applies; the other
// fields are set only for the kinds that carry them.
type Outcome struct {
	Kind      OutcomeKind
	Message   string
	LicenseID string

	RemainingMinutes int // locked
	Attempts         int // wrong_key
	MaxAttempts      int // wrong_key

	ServerTime time.Time
}

func (o Outcome) Valid() bool { return o.Kind == OutcomeSuccess }

// OutcomeObserver is told the kind of every finished validation.
type OutcomeObserver interface {
	ObserveValidation(outcome string)
}

// Validator decides whether a presented key is currently usable. Trusted
// time is read before the per-license lock is taken, and every call appends
// exactly one audit entry. Locks is optional; a nil Locks uses a private one.
type Validator struct {
	Store    store.Store
	Clock    TrustedClock
	Format   licensekey.Format
	Audit    *AuditService
	Observer OutcomeObserver
	Locks    *KeyLock

	locks KeyLock
}

// Validate runs the checks in order and stops at the first failure. The
// returned error is reserved for infrastructure failures; every business
// outcome is an Outcome.
func (v *Validator) Validate(ctx context.Context, req ValidateRequest) (Outcome, error) {
	log := slogx.FromContext(ctx)
	key := strings.TrimSpace(req.Key)
	hwid := requestHWID(req)

	// 1. Trusted time, before any lock.
	reading := v.Clock.TrustedTime(ctx)
	if !reading.Valid {
		log.Warn("validation refused on untrusted time",
			slog.String("oracle_state", string(reading.State)),
			slog.Duration("drift", reading.Drift),
		)
		return v.finish(ctx, req, hwid, nil, reading, Outcome{
			Kind:    OutcomeTimeError,
			Message: msgTimeFailed,
		}, "Time validation failed - possible manipulation attempt")
	}
	now := reading.ServerTime

	// 2. Claimed client time against trusted time.
	if req.ClientTime != nil {
		if d := now.Sub(*req.ClientTime); d > MaxClientDrift || d < -MaxClientDrift {
			log.Warn("client clock drift rejected", slog.Duration("drift", d))
			return v.finish(ctx, req, hwid, nil, reading, Outcome{
				Kind:    OutcomeTimeError,
				Message: msgClientDrift,
			}, "Client time manipulation detected")
		}
	}

	// 3. Lookup by the public part of the key. A structurally invalid key
	// cannot match anything, so it is reported as not found.
	notFound := Outcome{Kind: OutcomeNotFound, Message: msgInvalidKey}
	if !v.Format.ValidateFormat(key) {
		return v.finish(ctx, req, hwid, nil, reading, notFound, "")
	}
	found, err := v.Store.Licenses().GetLicenseByLookupID(ctx, v.Format.LookupID(key))
	if errors.Is(err, store.ErrNotFound) {
		return v.finish(ctx, req, hwid, nil, reading, notFound, "")
	}
	if err != nil {
		log.Error("failed to look up license", slog.Any("error", err))
		return Outcome{}, err
	}

	// Steps 4 to 8 mutate the record and run under the license's lock, on a
	// fresh read.
	unlock := v.Locks.or(&v.locks).Lock(found.ID)
	defer unlock()

	lic, err := v.Store.Licenses().GetLicenseByID(ctx, found.ID)
	if errors.Is(err, store.ErrNotFound) {
		return v.finish(ctx, req, hwid, nil, reading, notFound, "")
	}
	if err != nil {
		log.Error("failed to reload license", slog.String("license_id", found.ID), slog.Any("error", err))
		return Outcome{}, err
	}

	// 4. Lockout, before the key is compared.
	if remaining, locked := lockoutRemaining(lic, now); locked {
		return v.finish(ctx, req, hwid, &lic, reading, Outcome{
			Kind:             OutcomeLocked,
			Message:          msgLocked,
			RemainingMinutes: remaining,
		}, "")
	}

	// 5. Expiry.
	if lic.Expired(now) {
		return v.finish(ctx, req, hwid, &lic, reading, Outcome{Kind: OutcomeExpired, Message: msgExpired}, "")
	}

	// 6. Status. Frozen blocks validation like inactive.
	switch lic.Status {
	case domain.LicenseRevoked:
		return v.finish(ctx, req, hwid, &lic, reading, Outcome{Kind: OutcomeRevoked, Message: msgRevoked}, "")
	case domain.LicenseInactive:
		return v.finish(ctx, req, hwid, &lic, reading, Outcome{Kind: OutcomeInactive, Message: msgInactive}, "")
	case domain.LicenseFrozen:
		return v.finish(ctx, req, hwid, &lic, reading, Outcome{Kind: OutcomeInactive, Message: msgFrozen}, "")
	}

	// 7. Exact key and checksum.
	if !v.keyMatches(lic, key) {
		attempts, err := v.Store.Licenses().IncrementFailedAttempts(ctx, lic.ID, now)
		if err != nil {
			log.Error("failed to record failed attempt", slog.String("license_id", lic.ID), slog.Any("error", err))
			return Outcome{}, err
		}
		return v.finish(ctx, req, hwid, &lic, reading, Outcome{
			Kind:        OutcomeWrongKey,
			Message:     msgInvalidKey,
			Attempts:    attempts,
			MaxAttempts: MaxFailedAttempts,
		}, "")
	}

	// 8. Success: clear the counters, then bind or check the hardware id.
	if lic.FailedAttempts > 0 || lic.LastFailedAttempt != nil {
		if err := v.Store.Licenses().ResetFailedAttempts(ctx, lic.ID, now); err != nil {
			log.Error("failed to reset failed attempts", slog.String("license_id", lic.ID), slog.Any("error", err))
			return Outcome{}, err
		}
	}

	if hwid != "" {
		bound := lic.HWID
		if bound == "" {
			ok, err := v.Store.Licenses().BindHWID(ctx, lic.ID, hwid, now)
			if err != nil {
				log.Error("failed to bind hwid", slog.String("license_id", lic.ID), slog.Any("error", err))
				return Outcome{}, err
			}
			bound = hwid
			if !ok {
				// Bound by an admin path between our read and write.
				cur, err := v.Store.Licenses().GetLicenseByID(ctx, lic.ID)
				if err != nil {
					return Outcome{}, err
				}
				bound = cur.HWID
			} else {
				log.Info("hwid bound to license", slog.String("license_id", lic.ID))
			}
		}
		if subtle.ConstantTimeCompare([]byte(bound), []byte(hwid)) != 1 {
			return v.finish(ctx, req, hwid, &lic, reading, Outcome{Kind: OutcomeHWIDMismatch, Message: msgHWIDMismatch}, "")
		}
	}

	return v.finish(ctx, req, hwid, &lic, reading, Outcome{Kind: OutcomeSuccess, Message: msgValid}, "")
}

// keyMatches requires both the exact key and the stored checksum.
func (v *Validator) keyMatches(lic domain.License, key string) bool {
	keyOK := subtle.ConstantTimeCompare([]byte(lic.Key), []byte(key)) == 1
	sumOK := subtle.ConstantTimeCompare([]byte(lic.Checksum), []byte(v.Format.Checksum(key))) == 1
	return keyOK && sumOK
}

// finish stamps the outcome, writes its audit entry and reports it. An
// auditMsg overrides the outcome message in the audit log.
func (v *Validator) finish(
	ctx context.Context,
	req ValidateRequest,
	hwid string,
	lic *domain.License,
	reading timeoracle.Reading,
	out Outcome,
	auditMsg string,
) (Outcome, error) {
	out.ServerTime = reading.ServerTime
	if lic != nil {
		out.LicenseID = lic.ID
	}
	if auditMsg == "" {
		auditMsg = out.Message
	}
	if hwid == "" {
		hwid = domain.UnknownHWID
	}

	entry := domain.AuditEntry{
		LicenseID: out.LicenseID,
		Action:    domain.AuditValidate,
		IPAddress: req.Meta.IPAddress,
		UserAgent: req.Meta.UserAgent,
		HWID:      hwid,
		Success:   out.Valid(),
		Message:   auditMsg,
		CreatedAt: reading.ServerTime,
	}
	if err := v.Audit.Record(ctx, entry); err != nil {
		return Outcome{}, err
	}

	if v.Observer != nil {
		v.Observer.ObserveValidation(string(out.Kind))
	}
	slogx.FromContext(ctx).Debug("license validated",
		slog.String("outcome", string(out.Kind)),
		slog.String("license_id", out.LicenseID),
	)
	return out, nil
}

// lockoutRemaining reports whether lic is locked at now and, if so, the
// whole minutes left in the window, rounded up.
func lockoutRemaining(lic domain.License, now time.Time) (int, bool) {
	if lic.FailedAttempts < MaxFailedAttempts || lic.LastFailedAttempt == nil {
		return 0, false
	}
	left := LockoutWindow - now.Sub(*lic.LastFailedAttempt)
	if left <= 0 {
		return 0, false
	}
	return int((left + time.Minute - 1) / time.Minute), true
}

func requestHWID(req ValidateRequest) string {
	if h := strings.TrimSpace(req.HWID); h != "" {
		return h
	}
	if !req.SystemInfo.IsZero() {
		return licensekey.DeriveHWID(req.SystemInfo)
	}
	return ""
}
