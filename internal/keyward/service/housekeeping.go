package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
	"github.com/aussiebroadwan/keyward/pkg/guard"
	"github.com/aussiebroadwan/keyward/pkg/httpx"
)

// HousekeepingObserver receives the numbers each cleanup produces.
// *metrics.Metrics satisfies it.
type HousekeepingObserver interface {
	ObserveSweep(kind string, removed int)
	SetLicenseCounts(counts map[string]int)
}

// HousekeepingService runs the periodic upkeep of the process-scoped caches:
// expired nonces and idle quota buckets, route limiter buckets, the API key
// snapshot, the owner JWKS and license gauges. An optional cron schedule
// rotates the audit log. Every step is independent; a failure is logged and
// the rest still run.
type HousekeepingService struct {
	Logger   *slog.Logger
	Interval time.Duration

	Guard            *guard.Guard
	RateLimiters     []*httpx.RateLimiter
	Keys             KeyReloader
	RefreshOwnerKeys func(ctx context.Context) error
	Licenses         *LicenseService
	Audit            *AuditService
	Observer         HousekeepingObserver

	// PurgeSchedule is a cron spec for audit rotation. Empty disables it.
	PurgeSchedule string

	cron *cron.Cron
}

// NewHousekeepingService creates a housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 minute.
func NewHousekeepingService(logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &HousekeepingService{
		Logger:   logger,
		Interval: interval,
	}
}

// Start schedules the jobs and runs one cleanup immediately. It is
// non-blocking; call Stop to shut the scheduler down.
func (s *HousekeepingService) Start() error {
	cl := cronLogger{s.Logger}
	s.cron = cron.New(cron.WithLogger(cl), cron.WithChain(
		cron.Recover(cl),
		cron.SkipIfStillRunning(cl),
	))

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.Interval), s.cleanup); err != nil {
		return fmt.Errorf("schedule cleanup: %w", err)
	}
	if s.PurgeSchedule != "" && s.Audit != nil {
		if _, err := s.cron.AddFunc(s.PurgeSchedule, s.rotateAudit); err != nil {
			return fmt.Errorf("schedule audit rotation %q: %w", s.PurgeSchedule, err)
		}
	}

	s.cleanup()
	s.cron.Start()

	s.Logger.Info("housekeeping service started",
		"interval", s.Interval,
		"audit_purge_schedule", s.PurgeSchedule,
	)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *HousekeepingService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.Logger.Info("housekeeping service stopped")
}

// cleanup runs every interval step once.
func (s *HousekeepingService) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Interval)
	defer cancel()

	now := time.Now()
	successful := 0

	// Expired nonces and idle per-key quota buckets.
	if s.Guard != nil {
		nonces, buckets := s.Guard.Sweep(now)
		s.observeSweep("nonces", nonces)
		s.observeSweep("quota_buckets", buckets)
		s.Logger.Debug("swept request guard", "nonces", nonces, "quota_buckets", buckets)
		successful++
	}

	// Idle route limiter buckets.
	if len(s.RateLimiters) > 0 {
		removed := 0
		for _, rl := range s.RateLimiters {
			removed += rl.Sweep(now)
		}
		s.observeSweep("ratelimit_buckets", removed)
		successful++
	}

	// API key snapshot, to pick up changes made by other instances.
	if s.Keys != nil {
		if err := s.Keys.Reload(ctx); err != nil {
			s.Logger.Error("failed to reload api keys", "error", err)
		} else {
			successful++
		}
	}

	// Owner JWKS.
	if s.RefreshOwnerKeys != nil {
		if err := s.RefreshOwnerKeys(ctx); err != nil {
			s.Logger.Error("failed to refresh owner jwks", "error", err)
		} else {
			successful++
		}
	}

	// License gauges.
	if s.Licenses != nil && s.Observer != nil {
		stats, err := s.Licenses.Stats(ctx)
		if err != nil {
			s.Logger.Error("failed to count licenses", "error", err)
		} else {
			s.Observer.SetLicenseCounts(licenseCounts(stats))
			successful++
		}
	}

	s.Logger.Debug("housekeeping cleanup completed", "successful_cleanups", successful)
}

func (s *HousekeepingService) rotateAudit() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.Audit.PurgeAll(ctx, RequestMeta{UserAgent: "housekeeping"}, "scheduled rotation")
	if err != nil {
		s.Logger.Error("scheduled audit rotation failed", "error", err)
		return
	}
	s.observeSweep("audit_entries", int(removed))
}

func (s *HousekeepingService) observeSweep(kind string, removed int) {
	if s.Observer != nil {
		s.Observer.ObserveSweep(kind, removed)
	}
}

func licenseCounts(st domain.LicenseStats) map[string]int {
	return map[string]int{
		string(domain.LicenseActive):   st.Active,
		string(domain.LicenseInactive): st.Inactive,
		string(domain.LicenseFrozen):   st.Frozen,
		string(domain.LicenseRevoked):  st.Revoked,
		"expired":                      st.Expired,
	}
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
