package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/keyward/pkg/guard"
	"github.com/stretchr/testify/require"
)

type sweepRecorder struct {
	mu     sync.Mutex
	sweeps map[string]int
	counts map[string]int
}

func (r *sweepRecorder) ObserveSweep(kind string, removed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sweeps == nil {
		r.sweeps = make(map[string]int)
	}
	r.sweeps[kind] += removed
}

func (r *sweepRecorder) SetLicenseCounts(counts map[string]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = counts
}

func TestHousekeepingCleanupRunsOnStart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.issue(t, time.Hour)

	nonces := guard.NewMemoryNonceStore(nil)
	_, err := nonces.Record(ctx, "key-1", "stale", -time.Second)
	require.NoError(t, err)
	_, err = nonces.Record(ctx, "key-1", "live", time.Hour)
	require.NoError(t, err)

	reloader := &countingReloader{}
	var jwksRefreshes int
	obs := &sweepRecorder{}

	hk := NewHousekeepingService(slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour)
	hk.Guard = guard.New(guard.NewKeyCache(nil), nonces)
	hk.Keys = reloader
	hk.RefreshOwnerKeys = func(context.Context) error { jwksRefreshes++; return nil }
	hk.Licenses = f.licenses
	hk.Observer = obs

	require.NoError(t, hk.Start())
	hk.Stop()

	require.Equal(t, 1, nonces.Len())
	require.EqualValues(t, 1, reloader.calls.Load())
	require.Equal(t, 1, jwksRefreshes)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	require.Equal(t, 1, obs.sweeps["nonces"])
	require.Equal(t, 1, obs.counts["active"])
}

func TestHousekeepingRejectsBadSchedule(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	hk := NewHousekeepingService(slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
	require.Equal(t, time.Minute, hk.Interval)

	hk.Audit = f.audit
	hk.PurgeSchedule = "not a schedule"
	require.Error(t, hk.Start())
}

func TestHousekeepingRotateAudit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.issue(t, time.Hour)
	obs := &sweepRecorder{}

	hk := NewHousekeepingService(slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour)
	hk.Audit = f.audit
	hk.Observer = obs
	hk.rotateAudit()

	require.Equal(t, 1, f.auditCount(t))
	require.Equal(t, 1, obs.sweeps["audit_entries"])
}

func TestKeyLockReleasesEntries(t *testing.T) {
	t.Parallel()

	var kl KeyLock
	unlock := kl.Lock("a")
	require.Equal(t, 1, kl.Len())

	done := make(chan struct{})
	go func() {
		u := kl.Lock("a")
		u()
		close(done)
	}()

	unlock()
	<-done
	require.Zero(t, kl.Len())
}
