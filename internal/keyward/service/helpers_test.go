package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
	"github.com/aussiebroadwan/keyward/internal/keyward/store/drivers/sqlite"
	"github.com/aussiebroadwan/keyward/pkg/licensekey"
	"github.com/aussiebroadwan/keyward/pkg/timeoracle"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeClock is a TrustedClock the tests move by hand.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	valid bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testStart, valid: true}
}

func (c *fakeClock) TrustedTime(context.Context) timeoracle.Reading {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := timeoracle.Reading{
		Valid:      c.valid,
		ServerTime: c.now,
		ClientTime: c.now,
		State:      timeoracle.StateFresh,
	}
	if !c.valid {
		r.State = timeoracle.StateDegraded
		r.Message = "Unable to validate time with external sources"
	}
	return r
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) SetValid(v bool) {
	c.mu.Lock()
	c.valid = v
	c.mu.Unlock()
}

type outcomeCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *outcomeCounter) ObserveValidation(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = make(map[string]int)
	}
	o.counts[outcome]++
}

func (o *outcomeCounter) get(outcome string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counts[outcome]
}

type fixture struct {
	store     *sqlite.Store
	clock     *fakeClock
	audit     *AuditService
	licenses  *LicenseService
	validator *Validator
	observer  *outcomeCounter
	locks     *KeyLock
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithFormat(t, licensekey.KeyCodec{})
}

func newFixtureWithFormat(t *testing.T, format licensekey.Format) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	clock := newFakeClock()
	audit := &AuditService{Store: st, Clock: clock}
	observer := &outcomeCounter{}
	locks := &KeyLock{}

	return &fixture{
		store: st,
		clock: clock,
		audit: audit,
		licenses: &LicenseService{
			Store:  st,
			Clock:  clock,
			Format: format,
			Audit:  audit,
			Locks:  locks,
		},
		validator: &Validator{
			Store:    st,
			Clock:    clock,
			Format:   format,
			Audit:    audit,
			Observer: observer,
			Locks:    locks,
		},
		observer: observer,
		locks:    locks,
	}
}

// issue creates a license expiring after ttl.
func (f *fixture) issue(t *testing.T, ttl time.Duration) domain.License {
	t.Helper()

	exp := f.clock.TrustedTime(context.Background()).ServerTime.Add(ttl)
	lic, err := f.licenses.Create(context.Background(), CreateLicenseInput{ExpiresAt: &exp}, RequestMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	return lic
}

func (f *fixture) reload(t *testing.T, id string) domain.License {
	t.Helper()

	lic, err := f.store.Licenses().GetLicenseByID(context.Background(), id)
	require.NoError(t, err)
	return lic
}

func (f *fixture) auditCount(t *testing.T) int {
	t.Helper()

	entries, err := f.store.Audit().ListAuditEntries(context.Background(), "", 10_000, 0)
	require.NoError(t, err)
	return len(entries)
}

// wrongKey keeps the lookup part of key and changes its secret remainder.
func wrongKey(key string) string {
	last := key[len(key)-1]
	repl := byte('A')
	if last == 'A' {
		repl = 'B'
	}
	return key[:len(key)-1] + string(repl)
}
