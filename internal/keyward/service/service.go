// Package service holds keyward's business logic: license validation and
// lifecycle, the audit log, API key management and housekeeping.
package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/keyward/pkg/timeoracle"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrTimeUntrusted  = errors.New("trusted time unavailable")
)

// TrustedClock is the time source for every expiry and lockout decision.
// *timeoracle.Oracle satisfies it.
type TrustedClock interface {
	TrustedTime(ctx context.Context) timeoracle.Reading
}

// RequestMeta describes the caller for audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// trustedNow reads the clock and refuses an untrusted reading.
func trustedNow(ctx context.Context, clock TrustedClock) (timeoracle.Reading, error) {
	r := clock.TrustedTime(ctx)
	if !r.Valid {
		return r, ErrTimeUntrusted
	}
	return r, nil
}
