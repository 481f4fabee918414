package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
	"github.com/aussiebroadwan/keyward/internal/keyward/store/drivers/sqlite/gen"
)

const defaultListLimit = 100

type licensesRepo struct {
	q *gen.Queries
}

func (r *licensesRepo) CreateLicense(ctx context.Context, l domain.License) error {
	err := r.q.CreateLicense(ctx, gen.CreateLicenseParams{
		ID:         l.ID,
		LicenseKey: l.Key,
		LookupID:   l.LookupID,
		Checksum:   l.Checksum,
		Format:     l.Format,
		OwnerID:    mapStringNull(l.OwnerID),
		Status:     string(l.Status),
		GameType:   mapStringNull(l.GameType),
		ExpiresAt:  toMillis(l.ExpiresAt),
		CreatedAt:  toMillis(l.CreatedAt),
		UpdatedAt:  toMillis(l.UpdatedAt),
	})
	return mapConstraint(err)
}

func (r *licensesRepo) GetLicenseByID(ctx context.Context, id string) (domain.License, error) {
	row, err := r.q.GetLicenseByID(ctx, id)
	if err != nil {
		return domain.License{}, mapNotFound(err)
	}
	return mapLicense(row), nil
}

func (r *licensesRepo) GetLicenseByLookupID(ctx context.Context, lookupID string) (domain.License, error) {
	row, err := r.q.GetLicenseByLookupID(ctx, lookupID)
	if err != nil {
		return domain.License{}, mapNotFound(err)
	}
	return mapLicense(row), nil
}

func (r *licensesRepo) ListLicensesByOwner(ctx context.Context, ownerID string) ([]domain.License, error) {
	rows, err := r.q.ListLicensesByOwner(ctx, mapStringNull(ownerID))
	if err != nil {
		return nil, err
	}
	return mapLicenses(rows), nil
}

func (r *licensesRepo) ListLicenses(ctx context.Context, f domain.LicenseFilter) ([]domain.License, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := r.q.ListLicenses(ctx, gen.ListLicensesParams{
		Status:  string(f.Status),
		OwnerID: f.OwnerID,
		Limit:   int64(limit),
		Offset:  int64(max(f.Offset, 0)),
	})
	if err != nil {
		return nil, err
	}
	return mapLicenses(rows), nil
}

func (r *licensesRepo) DeleteLicense(ctx context.Context, id string) error {
	return requireRow(r.q.DeleteLicense(ctx, id))
}

func (r *licensesRepo) UpdateLicenseStatus(ctx context.Context, id string, status domain.LicenseStatus, at time.Time) error {
	return requireRow(r.q.UpdateLicenseStatus(ctx, gen.UpdateLicenseStatusParams{
		Status:    string(status),
		UpdatedAt: toMillis(at),
		ID:        id,
	}))
}

func (r *licensesRepo) IncrementFailedAttempts(ctx context.Context, id string, at time.Time) (int, error) {
	n, err := r.q.IncrementFailedAttempts(ctx, gen.IncrementFailedAttemptsParams{
		LastFailedAttempt: mapMillisNull(at),
		UpdatedAt:         toMillis(at),
		ID:                id,
	})
	if err != nil {
		return 0, mapNotFound(err)
	}
	return int(n), nil
}

func (r *licensesRepo) ResetFailedAttempts(ctx context.Context, id string, at time.Time) error {
	return requireRow(r.q.ResetFailedAttempts(ctx, gen.ResetFailedAttemptsParams{
		UpdatedAt: toMillis(at),
		ID:        id,
	}))
}

func (r *licensesRepo) BindHWID(ctx context.Context, id, hwid string, at time.Time) (bool, error) {
	n, err := r.q.BindHWID(ctx, gen.BindHWIDParams{
		Hwid:      mapStringNull(hwid),
		UpdatedAt: toMillis(at),
		ID:        id,
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *licensesRepo) ResetHWID(ctx context.Context, id string, at time.Time) error {
	return requireRow(r.q.ResetHWID(ctx, gen.ResetHWIDParams{
		UpdatedAt: toMillis(at),
		ID:        id,
	}))
}

func (r *licensesRepo) AssignOwner(ctx context.Context, id, ownerID string, at time.Time) (bool, error) {
	n, err := r.q.AssignOwner(ctx, gen.AssignOwnerParams{
		OwnerID:   mapStringNull(ownerID),
		UpdatedAt: toMillis(at),
		ID:        id,
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *licensesRepo) LicenseStats(ctx context.Context, now time.Time) (domain.LicenseStats, error) {
	row, err := r.q.LicenseStats(ctx, toMillis(now))
	if err != nil {
		return domain.LicenseStats{}, err
	}
	return domain.LicenseStats{
		Total:    int(row.Total),
		Active:   int(row.Active),
		Inactive: int(row.Inactive),
		Frozen:   int(row.Frozen),
		Expired:  int(row.Expired),
		Revoked:  int(row.Revoked),
		Bound:    int(row.Bound),
		Unbound:  int(row.Total - row.Bound),
	}, nil
}
