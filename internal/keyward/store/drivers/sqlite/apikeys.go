package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
	"github.com/aussiebroadwan/keyward/internal/keyward/store/drivers/sqlite/gen"
)

type apiKeysRepo struct {
	q *gen.Queries
}

func (r *apiKeysRepo) CreateAPIKey(ctx context.Context, k domain.APIKey) error {
	err := r.q.CreateAPIKey(ctx, gen.CreateAPIKeyParams{
		ID:              k.ID,
		Name:            k.Name,
		SecretEncrypted: k.SecretEncrypted,
		Revoked:         k.Revoked,
		Rpm:             int64(k.RPM),
		CreatedAt:       toMillis(k.CreatedAt),
		UpdatedAt:       toMillis(k.UpdatedAt),
	})
	return mapConstraint(err)
}

func (r *apiKeysRepo) GetAPIKeyByID(ctx context.Context, id string) (domain.APIKey, error) {
	row, err := r.q.GetAPIKeyByID(ctx, id)
	if err != nil {
		return domain.APIKey{}, mapNotFound(err)
	}
	return mapAPIKey(row), nil
}

func (r *apiKeysRepo) ListAPIKeys(ctx context.Context) ([]domain.APIKey, error) {
	rows, err := r.q.ListAPIKeys(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]domain.APIKey, len(rows))
	for i, row := range rows {
		keys[i] = mapAPIKey(row)
	}
	return keys, nil
}

func (r *apiKeysRepo) RotateAPIKeySecret(ctx context.Context, id string, secretEncrypted []byte, at time.Time) error {
	return requireRow(r.q.RotateAPIKeySecret(ctx, gen.RotateAPIKeySecretParams{
		SecretEncrypted: secretEncrypted,
		LastRotatedAt:   mapMillisNull(at),
		UpdatedAt:       toMillis(at),
		ID:              id,
	}))
}

func (r *apiKeysRepo) RevokeAPIKey(ctx context.Context, id string, at time.Time) error {
	return requireRow(r.q.RevokeAPIKey(ctx, gen.RevokeAPIKeyParams{
		UpdatedAt: toMillis(at),
		ID:        id,
	}))
}
