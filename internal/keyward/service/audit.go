package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
	"github.com/aussiebroadwan/keyward/internal/keyward/store"
	"github.com/aussiebroadwan/keyward/pkg/idx"
	"github.com/aussiebroadwan/keyward/pkg/slogx"
)

const (
	DefaultAuditPageSize = 50
	MaxAuditPageSize     = 500
)

// AuditService appends to and reads the audit log. Entries are never updated;
// the only removal is PurgeAll.
type AuditService struct {
	Store store.Store
	Clock TrustedClock
}

// Record appends e, filling in the id. CreatedAt should already carry trusted
// time; a zero value falls back to the clock's server time.
func (s *AuditService) Record(ctx context.Context, e domain.AuditEntry) error {
	return s.record(ctx, s.Store, e)
}

func (s *AuditService) record(ctx context.Context, st store.Store, e domain.AuditEntry) error {
	if e.ID == "" {
		e.ID = idx.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.Clock.TrustedTime(ctx).ServerTime
	}

	if err := st.Audit().AppendAuditEntry(ctx, e); err != nil {
		slogx.FromContext(ctx).Error("failed to append audit entry",
			slog.String("action", string(e.Action)),
			slog.String("license_id", e.LicenseID),
			slog.Any("error", err),
		)
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// StatsForLicense aggregates the entries recorded against one license.
func (s *AuditService) StatsForLicense(ctx context.Context, licenseID string) (domain.AuditStats, error) {
	return s.Store.Audit().AuditStatsForLicense(ctx, licenseID)
}

// List returns entries newest first, optionally for a single license.
func (s *AuditService) List(ctx context.Context, licenseID string, limit, offset int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultAuditPageSize
	}
	limit = min(limit, MaxAuditPageSize)
	offset = max(offset, 0)
	return s.Store.Audit().ListAuditEntries(ctx, licenseID, limit, offset)
}

// PurgeAll removes every entry and then records the purge itself, in one
// transaction.
func (s *AuditService) PurgeAll(ctx context.Context, meta RequestMeta, actor string) (int64, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.TrustedTime(ctx).ServerTime

	var removed int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.Audit().PurgeAuditEntries(ctx)
		if err != nil {
			return err
		}
		removed = n

		return s.record(ctx, tx, domain.AuditEntry{
			Action:    domain.AuditPurge,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
			Success:   true,
			Message:   fmt.Sprintf("Audit log purged by %s (%d entries)", actor, n),
			CreatedAt: now,
		})
	})
	if err != nil {
		log.Error("failed to purge audit log", slog.Any("error", err))
		return 0, err
	}

	log.Info("audit log purged",
		slog.String("actor", actor),
		slog.Int64("removed", removed),
	)
	return removed, nil
}
