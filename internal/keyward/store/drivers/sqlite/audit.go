package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
	"github.com/aussiebroadwan/keyward/internal/keyward/store/drivers/sqlite/gen"
)

type auditRepo struct {
	q *gen.Queries
}

func (r *auditRepo) AppendAuditEntry(ctx context.Context, e domain.AuditEntry) error {
	return r.q.AppendAuditEntry(ctx, gen.AppendAuditEntryParams{
		ID:        e.ID,
		LicenseID: mapStringNull(e.LicenseID),
		Action:    string(e.Action),
		IpAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		Hwid:      e.HWID,
		Success:   e.Success,
		Message:   e.Message,
		CreatedAt: toMillis(e.CreatedAt),
	})
}

func (r *auditRepo) ListAuditEntries(ctx context.Context, licenseID string, limit, offset int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := r.q.ListAuditEntries(ctx, gen.ListAuditEntriesParams{
		LicenseID: licenseID,
		Limit:     int64(limit),
		Offset:    int64(max(offset, 0)),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]domain.AuditEntry, len(rows))
	for i, row := range rows {
		entries[i] = mapAuditEntry(row)
	}
	return entries, nil
}

func (r *auditRepo) AuditStatsForLicense(ctx context.Context, licenseID string) (domain.AuditStats, error) {
	id := mapStringNull(licenseID)

	counts, err := r.q.AuditCountsForLicense(ctx, id)
	if err != nil {
		return domain.AuditStats{}, err
	}

	stats := domain.AuditStats{
		TotalLogs:    int(counts.Total),
		Validations:  int(counts.Validations),
		SuccessCount: int(counts.Successes),
		FailCount:    int(counts.Validations - counts.Successes),
	}

	latest, err := r.q.LatestAuditEntryForLicense(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stats, nil
		}
		return domain.AuditStats{}, err
	}

	entry := mapAuditEntry(latest)
	stats.LastEvent = &entry
	return stats, nil
}

func (r *auditRepo) PurgeAuditEntries(ctx context.Context) (int64, error) {
	return r.q.PurgeAuditEntries(ctx)
}
