package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
	"github.com/aussiebroadwan/keyward/pkg/licensekey"
	"github.com/stretchr/testify/require"
)

func TestCreateLicense(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("defaults to one trusted year", func(t *testing.T) {
		f := newFixture(t)
		lic, err := f.licenses.Create(ctx, CreateLicenseInput{GameType: "arena"}, RequestMeta{})
		require.NoError(t, err)

		require.True(t, licensekey.ValidateKeyFormat(lic.Key))
		require.Equal(t, licensekey.Checksum(lic.Key), lic.Checksum)
		require.Equal(t, lic.Key[:13], lic.LookupID)
		require.Equal(t, testStart.Add(DefaultLicenseTTL), lic.ExpiresAt)
		require.Equal(t, testStart, lic.CreatedAt)
		require.Equal(t, domain.LicenseActive, lic.Status)
		require.Equal(t, "arena", lic.GameType)

		entries, err := f.audit.List(ctx, lic.ID, 0, 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, domain.AuditCreate, entries[0].Action)
	})

	t.Run("rejects past expiry", func(t *testing.T) {
		f := newFixture(t)
		past := testStart.Add(-time.Second)
		_, err := f.licenses.Create(ctx, CreateLicenseInput{ExpiresAt: &past}, RequestMeta{})
		require.ErrorIs(t, err, ErrInvalidExpiry)
	})

	t.Run("refuses untrusted time", func(t *testing.T) {
		f := newFixture(t)
		f.clock.SetValid(false)
		_, err := f.licenses.Create(ctx, CreateLicenseInput{}, RequestMeta{})
		require.ErrorIs(t, err, ErrTimeUntrusted)
	})

	t.Run("owner and inactive", func(t *testing.T) {
		f := newFixture(t)
		lic, err := f.licenses.Create(ctx, CreateLicenseInput{OwnerID: "alice", Inactive: true}, RequestMeta{})
		require.NoError(t, err)
		require.Equal(t, "alice", lic.OwnerID)
		require.Equal(t, domain.LicenseInactive, lic.Status)
	})
}

func TestBulkCreateLicenses(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	for _, n := range []int{0, -1, MaxBulkLicenses + 1} {
		_, err := f.licenses.BulkCreate(ctx, n, CreateLicenseInput{}, RequestMeta{})
		require.ErrorIs(t, err, ErrInvalidBulkCount)
	}

	licenses, err := f.licenses.BulkCreate(ctx, 25, CreateLicenseInput{}, RequestMeta{})
	require.NoError(t, err)
	require.Len(t, licenses, 25)

	keys := map[string]bool{}
	for _, l := range licenses {
		require.Equal(t, DefaultGameType, l.GameType)
		keys[l.Key] = true
	}
	require.Len(t, keys, 25)

	stats, err := f.licenses.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 25, stats.Total)
	require.Equal(t, 25, f.auditCount(t))
}

// echoFormat hands out every generated key twice in a row.
type echoFormat struct {
	licensekey.KeyCodec
	last  *licensekey.Issued
	calls int
}

func (f *echoFormat) Generate(opts licensekey.GenerateOptions) (licensekey.Issued, error) {
	f.calls++
	if f.calls%2 == 0 && f.last != nil {
		return *f.last, nil
	}
	iss, err := f.KeyCodec.Generate(opts)
	f.last = &iss
	return iss, err
}

func TestBulkCreateRegeneratesCollidingKeys(t *testing.T) {
	t.Parallel()

	format := &echoFormat{}
	f := newFixtureWithFormat(t, format)
	ctx := context.Background()

	licenses, err := f.licenses.BulkCreate(ctx, 3, CreateLicenseInput{}, RequestMeta{})
	require.NoError(t, err)
	require.Len(t, licenses, 3)
	require.Equal(t, 5, format.calls, "each repeat is regenerated once")

	keys := map[string]bool{}
	for _, l := range licenses {
		keys[l.Key] = true
		require.Equal(t, l.Key, f.reload(t, l.ID).Key)
	}
	require.Len(t, keys, 3)
	require.Equal(t, 3, f.auditCount(t))

	_, err = f.licenses.Create(ctx, CreateLicenseInput{}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, 7, format.calls)
}

func TestBulkDeleteLicenses(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	a := f.issue(t, time.Hour)
	b := f.issue(t, time.Hour)
	keep := f.issue(t, time.Hour)

	n, err := f.licenses.BulkDelete(ctx, []string{a.ID, "missing", b.ID}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = f.licenses.Get(ctx, a.ID)
	require.ErrorIs(t, err, ErrLicenseNotFound)
	_, err = f.licenses.Get(ctx, keep.ID)
	require.NoError(t, err)

	_, err = f.licenses.BulkDelete(ctx, nil, RequestMeta{})
	require.ErrorIs(t, err, ErrInvalidBulkCount)

	// History survives the license.
	stats, err := f.audit.StatsForLicense(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalLogs)
	require.Equal(t, domain.AuditBulkDelete, stats.LastEvent.Action)
}

func TestDeleteLicense(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lic := f.issue(t, time.Hour)

	require.NoError(t, f.licenses.Delete(ctx, lic.ID, RequestMeta{}))
	require.ErrorIs(t, f.licenses.Delete(ctx, lic.ID, RequestMeta{}), ErrLicenseNotFound)
}

func TestLicenseTransitions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	meta := RequestMeta{IPAddress: "10.1.1.1"}

	lic := f.issue(t, time.Hour)

	_, err := f.licenses.Unfreeze(ctx, lic.ID, meta)
	require.ErrorIs(t, err, ErrInvalidTransition, "only frozen licenses unfreeze")

	got, err := f.licenses.Freeze(ctx, lic.ID, meta)
	require.NoError(t, err)
	require.Equal(t, domain.LicenseFrozen, got.Status)

	_, err = f.licenses.Freeze(ctx, lic.ID, meta)
	require.ErrorIs(t, err, ErrInvalidTransition)

	got, err = f.licenses.Unfreeze(ctx, lic.ID, meta)
	require.NoError(t, err)
	require.Equal(t, domain.LicenseActive, got.Status)

	got, err = f.licenses.Revoke(ctx, lic.ID, meta)
	require.NoError(t, err)
	require.Equal(t, domain.LicenseRevoked, got.Status)

	for _, op := range []func(context.Context, string, RequestMeta) (domain.License, error){
		f.licenses.Freeze, f.licenses.Unfreeze, f.licenses.Revoke,
	} {
		_, err := op(ctx, lic.ID, meta)
		require.ErrorIs(t, err, ErrInvalidTransition, "revoked is terminal")
	}
	require.Equal(t, domain.LicenseRevoked, f.reload(t, lic.ID).Status)

	_, err = f.licenses.Freeze(ctx, "missing", meta)
	require.ErrorIs(t, err, ErrLicenseNotFound)

	// create, freeze, unfreeze, revoke: one entry each.
	stats, err := f.audit.StatsForLicense(ctx, lic.ID)
	require.NoError(t, err)
	require.Equal(t, 4, stats.TotalLogs)
	require.Equal(t, domain.AuditRevoke, stats.LastEvent.Action)
}

func TestRedeemLicense(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("binds owner and activates", func(t *testing.T) {
		f := newFixture(t)
		exp := testStart.Add(time.Hour)
		lic, err := f.licenses.Create(ctx, CreateLicenseInput{ExpiresAt: &exp, Inactive: true}, RequestMeta{})
		require.NoError(t, err)

		got, err := f.licenses.Redeem(ctx, lic.Key, "alice", RequestMeta{})
		require.NoError(t, err)
		require.Equal(t, "alice", got.OwnerID)
		require.Equal(t, domain.LicenseActive, got.Status)

		_, err = f.licenses.Redeem(ctx, lic.Key, "alice", RequestMeta{})
		require.NoError(t, err, "redeeming your own license again is fine")

		_, err = f.licenses.Redeem(ctx, lic.Key, "bob", RequestMeta{})
		require.ErrorIs(t, err, ErrOwnedByOther)

		mine, err := f.licenses.Mine(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, mine, 1)

		stats, err := f.audit.StatsForLicense(ctx, lic.ID)
		require.NoError(t, err)
		require.Equal(t, domain.AuditRedeem, stats.LastEvent.Action)
	})

	t.Run("rejects unusable licenses", func(t *testing.T) {
		f := newFixture(t)

		unknown := "bcwtfABCDEFGHJKLMNPQRSTUVWXYZ234"
		_, err := f.licenses.Redeem(ctx, unknown, "alice", RequestMeta{})
		require.ErrorIs(t, err, ErrLicenseKeyMismatch, "unknown and wrong keys look the same")

		lic := f.issue(t, time.Hour)
		_, err = f.licenses.Redeem(ctx, wrongKey(lic.Key), "alice", RequestMeta{})
		require.ErrorIs(t, err, ErrLicenseKeyMismatch)

		frozen := f.issue(t, time.Hour)
		_, err = f.licenses.Freeze(ctx, frozen.ID, RequestMeta{})
		require.NoError(t, err)
		_, err = f.licenses.Redeem(ctx, frozen.Key, "alice", RequestMeta{})
		require.ErrorIs(t, err, ErrLicenseFrozen)

		revoked := f.issue(t, time.Hour)
		_, err = f.licenses.Revoke(ctx, revoked.ID, RequestMeta{})
		require.NoError(t, err)
		_, err = f.licenses.Redeem(ctx, revoked.Key, "alice", RequestMeta{})
		require.ErrorIs(t, err, ErrLicenseRevoked)

		f.clock.Advance(2 * time.Hour)
		_, err = f.licenses.Redeem(ctx, lic.Key, "alice", RequestMeta{})
		require.ErrorIs(t, err, ErrLicenseExpired)
	})
}

func TestRedeemHonoursLockout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	meta := RequestMeta{IPAddress: "10.0.0.9"}

	t.Run("wrong keys count as failed attempts", func(t *testing.T) {
		f := newFixture(t)
		lic := f.issue(t, 24*time.Hour)
		bad := wrongKey(lic.Key)

		for i := range MaxFailedAttempts {
			_, err := f.licenses.Redeem(ctx, bad, "mallory", meta)
			require.ErrorIs(t, err, ErrLicenseKeyMismatch)
			require.Equal(t, i+1, f.reload(t, lic.ID).FailedAttempts)
		}

		_, err := f.licenses.Redeem(ctx, lic.Key, "mallory", meta)
		require.ErrorIs(t, err, ErrLicenseLocked)
		_, err = f.licenses.Redeem(ctx, bad, "mallory", meta)
		require.ErrorIs(t, err, ErrLicenseLocked)
		require.Equal(t, MaxFailedAttempts, f.reload(t, lic.ID).FailedAttempts, "locked attempts are not counted")

		out, err := f.validator.Validate(ctx, ValidateRequest{Key: lic.Key})
		require.NoError(t, err)
		require.Equal(t, OutcomeLocked, out.Kind)

		require.Empty(t, f.reload(t, lic.ID).OwnerID)

		// create, five wrong keys, two locked redeems, one validate.
		stats, err := f.audit.StatsForLicense(ctx, lic.ID)
		require.NoError(t, err)
		require.Equal(t, 9, stats.TotalLogs)
		require.Equal(t, 1, stats.Validations)
		require.Zero(t, stats.SuccessCount)

		entries, err := f.audit.List(ctx, lic.ID, 0, 0)
		require.NoError(t, err)
		failedRedeems := 0
		for _, e := range entries {
			if e.Action == domain.AuditRedeem {
				require.False(t, e.Success)
				require.Equal(t, "10.0.0.9", e.IPAddress)
				failedRedeems++
			}
		}
		require.Equal(t, MaxFailedAttempts+2, failedRedeems)
	})

	t.Run("validation lockout blocks redeem", func(t *testing.T) {
		f := newFixture(t)
		lic := f.issue(t, 24*time.Hour)

		for range MaxFailedAttempts {
			_, err := f.validator.Validate(ctx, ValidateRequest{Key: wrongKey(lic.Key)})
			require.NoError(t, err)
		}

		_, err := f.licenses.Redeem(ctx, lic.Key, "mallory", meta)
		require.ErrorIs(t, err, ErrLicenseLocked)
		require.Empty(t, f.reload(t, lic.ID).OwnerID)

		f.clock.Advance(LockoutWindow + time.Second)
		got, err := f.licenses.Redeem(ctx, lic.Key, "alice", meta)
		require.NoError(t, err)
		require.Equal(t, "alice", got.OwnerID)
		require.Zero(t, got.FailedAttempts)

		stored := f.reload(t, lic.ID)
		require.Zero(t, stored.FailedAttempts)
		require.Nil(t, stored.LastFailedAttempt)
	})

	t.Run("rejected redeems are audited", func(t *testing.T) {
		f := newFixture(t)
		lic := f.issue(t, 24*time.Hour)

		_, err := f.licenses.Redeem(ctx, lic.Key, "alice", meta)
		require.NoError(t, err)
		_, err = f.licenses.Redeem(ctx, lic.Key, "bob", meta)
		require.ErrorIs(t, err, ErrOwnedByOther)

		stats, err := f.audit.StatsForLicense(ctx, lic.ID)
		require.NoError(t, err)
		require.Equal(t, 3, stats.TotalLogs)
		require.Equal(t, domain.AuditRedeem, stats.LastEvent.Action)
		require.False(t, stats.LastEvent.Success)
	})
}

func TestOwnerLicenseAccess(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lic := f.issue(t, time.Hour)

	_, err := f.licenses.Redeem(ctx, lic.Key, "alice", RequestMeta{})
	require.NoError(t, err)

	_, err = f.licenses.Owned(ctx, lic.ID, "bob")
	require.ErrorIs(t, err, ErrNotLicenseOwner)
	_, err = f.licenses.Owned(ctx, "missing", "alice")
	require.ErrorIs(t, err, ErrLicenseNotFound)

	_, err = f.validator.Validate(ctx, ValidateRequest{Key: lic.Key, HWID: "hw"})
	require.NoError(t, err)

	_, err = f.licenses.ResetOwnHWID(ctx, lic.ID, "bob", RequestMeta{})
	require.ErrorIs(t, err, ErrNotLicenseOwner)
	require.Equal(t, "hw", f.reload(t, lic.ID).HWID)

	got, err := f.licenses.ResetOwnHWID(ctx, lic.ID, "alice", RequestMeta{})
	require.NoError(t, err)
	require.Empty(t, got.HWID)
	require.Empty(t, f.reload(t, lic.ID).HWID)
}

func TestListLicenses(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	a := f.issue(t, time.Hour)
	f.issue(t, time.Hour)

	_, err := f.licenses.Freeze(ctx, a.ID, RequestMeta{})
	require.NoError(t, err)

	frozen, err := f.licenses.List(ctx, domain.LicenseFilter{Status: domain.LicenseFrozen})
	require.NoError(t, err)
	require.Len(t, frozen, 1)
	require.Equal(t, a.ID, frozen[0].ID)

	_, err = f.licenses.List(ctx, domain.LicenseFilter{Status: "bogus"})
	require.ErrorIs(t, err, ErrInvalidRequest)
}
