package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
	"github.com/stretchr/testify/require"
)

func TestAuditPurgeAll(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lic := f.issue(t, time.Hour)
	for range 3 {
		_, err := f.validator.Validate(ctx, ValidateRequest{Key: lic.Key})
		require.NoError(t, err)
	}
	require.Equal(t, 4, f.auditCount(t))

	removed, err := f.audit.PurgeAll(ctx, RequestMeta{IPAddress: "10.0.0.2"}, "admin")
	require.NoError(t, err)
	require.EqualValues(t, 4, removed)

	entries, err := f.audit.List(ctx, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1, "the purge records itself")
	require.Equal(t, domain.AuditPurge, entries[0].Action)
	require.Equal(t, "10.0.0.2", entries[0].IPAddress)
	require.Contains(t, entries[0].Message, "4 entries")

	stats, err := f.audit.StatsForLicense(ctx, lic.ID)
	require.NoError(t, err)
	require.Zero(t, stats.TotalLogs)
	require.Nil(t, stats.LastEvent)
}

func TestAuditRecordDefaults(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.audit.Record(ctx, domain.AuditEntry{Action: domain.AuditValidate, Message: "x"}))

	entries, err := f.audit.List(ctx, "", MaxAuditPageSize+10, -5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotEmpty(t, entries[0].ID)
	require.Equal(t, testStart, entries[0].CreatedAt)
}
