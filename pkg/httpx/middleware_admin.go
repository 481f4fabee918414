package httpx

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/aussiebroadwan/keyward/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Admin credential headers.
const (
	HeaderAdminSecret = "x-admin-secret"
	HeaderAdminOTP    = "x-admin-otp"
)

// AdminConfig configures AdminAuth.
type AdminConfig struct {
	// Secret is compared with the x-admin-secret header in constant time.
	// An empty secret disables the admin API entirely.
	Secret string

	// TOTPSecret, when set, also requires a current code in x-admin-otp.
	TOTPSecret string

	// Now defaults to time.Now.
	Now func() time.Time
}

// AdminAuth admits a request only when it carries the admin secret (and a
// valid TOTP code when one is configured).
func AdminAuth(cfg AdminConfig) Middleware {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	want := sha256.Sum256([]byte(cfg.Secret))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			if cfg.Secret == "" {
				WriteError(w, http.StatusNotFound, "not_found", "Admin API is disabled")
				return
			}

			// Hash both sides so the comparison does not leak the length.
			got := sha256.Sum256([]byte(r.Header.Get(HeaderAdminSecret)))
			if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
				log.Warn("admin auth rejected", "reason", "secret", "remote_addr", ClientIP(r))
				WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid admin credentials")
				return
			}

			if cfg.TOTPSecret != "" {
				ok, err := totp.ValidateCustom(r.Header.Get(HeaderAdminOTP), cfg.TOTPSecret, now().UTC(), totp.ValidateOpts{
					Period:    30,
					Skew:      1,
					Digits:    otp.DigitsSix,
					Algorithm: otp.AlgorithmSHA1,
				})
				if err != nil || !ok {
					log.Warn("admin auth rejected", "reason", "otp", "remote_addr", ClientIP(r))
					WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid admin credentials")
					return
				}
			}

			ctx := context.WithValue(r.Context(), CtxKeyAdmin, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
