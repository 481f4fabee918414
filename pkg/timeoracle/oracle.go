// Package timeoracle reconciles the local clock against external time sources
// and hands out a drift-checked "trusted time" reading.
package timeoracle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// State describes how the last reading was obtained.
type State string

const (
	StateFresh    State = "fresh"
	StateStale    State = "stale"
	StateDegraded State = "degraded"
)

const (
	DefaultRefreshWindow     = 15 * time.Minute
	DefaultMaxDrift          = 5 * time.Minute
	DefaultFallbackAllowance = 10 * time.Minute
	DefaultSourceTimeout     = 3 * time.Second
)

const (
	msgDrift       = "System time appears to be manipulated"
	msgUnreachable = "Unable to validate time with external sources"
)

// Clock abstracts the local clock so tests can move it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the process clock.
var SystemClock Clock = systemClock{}

// Reading is the result of TrustedTime.
type Reading struct {
	Valid         bool          `json:"valid"`
	ServerTime    time.Time     `json:"serverTime"`
	ClientTime    time.Time     `json:"clientTime"`
	Drift         time.Duration `json:"drift"`
	UsingFallback bool          `json:"usingFallback,omitempty"`
	UsingCached   bool          `json:"usingCached,omitempty"`
	State         State         `json:"state"`
	Message       string        `json:"message,omitempty"`
}

// Observer receives every reading and every failed source query.
type Observer interface {
	ObserveReading(Reading)
	ObserveSourceError(source string)
}

type Config struct {
	RefreshWindow     time.Duration
	MaxDrift          time.Duration
	FallbackAllowance time.Duration
	SourceTimeout     time.Duration
}

// DefaultConfig returns the stock windows.
func DefaultConfig() Config {
	return Config{
		RefreshWindow:     DefaultRefreshWindow,
		MaxDrift:          DefaultMaxDrift,
		FallbackAllowance: DefaultFallbackAllowance,
		SourceTimeout:     DefaultSourceTimeout,
	}
}

type Option func(*Oracle)

func WithClock(c Clock) Option { return func(o *Oracle) { o.clock = c } }

func WithConfig(cfg Config) Option { return func(o *Oracle) { o.cfg = cfg } }

func WithLogger(l *slog.Logger) Option { return func(o *Oracle) { o.logger = l } }

func WithObserver(obs Observer) Option { return func(o *Oracle) { o.observer = obs } }

// Oracle caches the last verified external time and extrapolates from it.
// The zero value is not usable; construct with New.
type Oracle struct {
	sources  []Source
	clock    Clock
	cfg      Config
	logger   *slog.Logger
	observer Observer

	mu             sync.Mutex
	lastKnownValid time.Time // external time at the last successful check
	lastCheck      time.Time // local time at the last successful check
	verified       bool

	group singleflight.Group
}

// New returns an oracle querying sources in order. The cache is seeded with
// the local clock but marked unverified, so the first call goes to the
// sources and an immediate outage still gets the fallback allowance.
func New(sources []Source, opts ...Option) *Oracle {
	o := &Oracle{
		sources: sources,
		clock:   SystemClock,
		cfg:     DefaultConfig(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	now := o.clock.Now()
	o.lastKnownValid = now
	o.lastCheck = now
	return o
}

// TrustedTime returns the current trusted time. A reading with Valid false
// must not be used for expiry or lockout decisions.
func (o *Oracle) TrustedTime(ctx context.Context) Reading {
	now := o.clock.Now()

	o.mu.Lock()
	lastValid, lastCheck, verified := o.lastKnownValid, o.lastCheck, o.verified
	o.mu.Unlock()

	elapsed := now.Sub(lastCheck)
	if verified && elapsed >= 0 && elapsed <= o.cfg.RefreshWindow {
		r := Reading{
			Valid:       true,
			ServerTime:  lastValid.Add(elapsed),
			ClientTime:  now,
			UsingCached: true,
			State:       StateFresh,
		}
		o.observe(r)
		return r
	}

	// Concurrent callers share one refresh. The refresh is detached from the
	// caller's cancellation; each source call carries its own timeout.
	v, _, _ := o.group.Do("refresh", func() (any, error) {
		return o.refresh(context.WithoutCancel(ctx)), nil
	})
	r := v.(Reading)
	o.observe(r)
	return r
}

// Invalidate forces the next call to query the sources.
func (o *Oracle) Invalidate() {
	o.mu.Lock()
	o.verified = false
	o.mu.Unlock()
}

func (o *Oracle) refresh(ctx context.Context) Reading {
	now := o.clock.Now()

	external, source, ok := o.queryExternal(ctx)
	if ok {
		drift := absDuration(now.Sub(external))
		if drift > o.cfg.MaxDrift {
			o.logger.Warn("time oracle drift exceeded",
				slog.String("source", source),
				slog.Duration("drift", drift),
				slog.Time("external", external),
				slog.Time("local", now),
			)
			return Reading{
				Valid:      false,
				ServerTime: external,
				ClientTime: now,
				Drift:      drift,
				State:      StateStale,
				Message:    msgDrift,
			}
		}

		o.mu.Lock()
		o.lastKnownValid = external
		o.lastCheck = now
		o.verified = true
		o.mu.Unlock()

		return Reading{
			Valid:      true,
			ServerTime: external,
			ClientTime: now,
			Drift:      drift,
			State:      StateFresh,
		}
	}

	o.mu.Lock()
	lastValid, lastCheck := o.lastKnownValid, o.lastCheck
	o.mu.Unlock()

	since := now.Sub(lastCheck)
	estimated := lastValid.Add(since)
	if since < 0 || since > o.cfg.FallbackAllowance {
		o.logger.Error("time oracle fallback exhausted",
			slog.Duration("since_last_check", since),
		)
		return Reading{
			Valid:      false,
			ServerTime: estimated,
			ClientTime: now,
			State:      StateDegraded,
			Message:    msgUnreachable,
		}
	}

	o.logger.Warn("time oracle using fallback",
		slog.Duration("since_last_check", since),
	)
	return Reading{
		Valid:         true,
		ServerTime:    estimated,
		ClientTime:    now,
		UsingFallback: true,
		State:         StateDegraded,
	}
}

func (o *Oracle) queryExternal(ctx context.Context) (time.Time, string, bool) {
	for _, src := range o.sources {
		sctx, cancel := context.WithTimeout(ctx, o.cfg.SourceTimeout)
		t, err := src.Fetch(sctx)
		cancel()
		if err != nil {
			o.logger.Warn("time source failed",
				slog.String("source", src.Name()),
				slog.String("err", err.Error()),
			)
			if o.observer != nil {
				o.observer.ObserveSourceError(src.Name())
			}
			continue
		}
		return t, src.Name(), true
	}
	return time.Time{}, "", false
}

func (o *Oracle) observe(r Reading) {
	if o.observer != nil {
		o.observer.ObserveReading(r)
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
