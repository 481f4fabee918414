// Package guard authenticates API callers with per-key HMAC request signing,
// nonce replay protection, timestamp skew checks and per-key quotas.
package guard

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/keyward/pkg/httpx"
	"github.com/aussiebroadwan/keyward/pkg/slogx"
)

const (
	DefaultSkew    = 60 * time.Second
	maxSignedBody  = 1 << 20
	quotaIdleAfter = 2 * time.Minute
)

// Rejection reasons, also used as metric labels.
const (
	ReasonMissingHeaders = "missing_headers"
	ReasonTimestamp      = "timestamp"
	ReasonReplay         = "replay"
	ReasonInvalidKey     = "invalid_key"
	ReasonSignature      = "signature"
	ReasonQuota          = "quota"
	ReasonInternal       = "internal"
)

// Rejection is a failed check and the response it maps to.
type Rejection struct {
	Status  int
	Reason  string
	Message string
}

var (
	rejectMissing   = &Rejection{http.StatusUnauthorized, ReasonMissingHeaders, "Missing request signing headers"}
	rejectTimestamp = &Rejection{http.StatusUnauthorized, ReasonTimestamp, "Request timestamp out of range"}
	rejectReplay    = &Rejection{http.StatusUnauthorized, ReasonReplay, "Replay detected"}
	rejectKey       = &Rejection{http.StatusForbidden, ReasonInvalidKey, "Invalid API key"}
	rejectSignature = &Rejection{http.StatusUnauthorized, ReasonSignature, "Invalid request signature"}
	rejectQuota     = &Rejection{http.StatusTooManyRequests, ReasonQuota, "Per-key rate limit exceeded"}
	rejectInternal  = &Rejection{http.StatusInternalServerError, ReasonInternal, "Internal server error"}
)

// Observer is told about every rejected request.
type Observer interface {
	ObserveGuardRejection(reason string)
}

type Option func(*Guard)

// WithSkew sets the accepted distance between the request timestamp and now.
func WithSkew(d time.Duration) Option { return func(g *Guard) { g.skew = d } }

// WithAllowlist sets path prefixes that bypass signing.
func WithAllowlist(prefixes ...string) Option {
	return func(g *Guard) { g.allowlist = prefixes }
}

func WithNow(now func() time.Time) Option { return func(g *Guard) { g.now = now } }

func WithObserver(obs Observer) Option { return func(g *Guard) { g.observer = obs } }

// Guard gates requests behind API-key request signing.
type Guard struct {
	keys     *KeyCache
	nonces   NonceStore
	quota    *Quota
	skew     time.Duration
	now      func() time.Time
	observer Observer

	allowlist []string
}

func New(keys *KeyCache, nonces NonceStore, opts ...Option) *Guard {
	g := &Guard{
		keys:   keys,
		nonces: nonces,
		quota:  NewQuota(),
		skew:   DefaultSkew,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Keys exposes the cache so admin operations can reload it.
func (g *Guard) Keys() *KeyCache { return g.keys }

// Quota exposes the per-key buckets.
func (g *Guard) Quota() *Quota { return g.quota }

// NonceTTL is twice the skew: a timestamp up to skew ahead of now stays
// acceptable until skew past it.
func (g *Guard) NonceTTL() time.Duration { return 2 * g.skew }

// Allowlisted reports whether path bypasses signing.
func (g *Guard) Allowlisted(path string) bool {
	for _, p := range g.allowlist {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Middleware enforces signing on every non-allowlisted request. The body is
// read for the signature check and replaced for downstream handlers.
func (g *Guard) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.Allowlisted(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			log := slogx.FromContext(ctx)

			var body []byte
			if r.Body != nil {
				var err error
				body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxSignedBody))
				if err != nil {
					httpx.WriteJSON(w, http.StatusRequestEntityTooLarge, errorBody("Request body too large"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			key, rej := g.Check(ctx, r.Method, r.URL.Path, r.Header, body)
			if rej != nil {
				log.Warn("request guard rejected",
					slog.String("reason", rej.Reason),
					slog.String("api_key", r.Header.Get(HeaderAPIKey)),
				)
				if rej.Status == http.StatusTooManyRequests {
					w.Header().Set("Retry-After", "60")
				}
				httpx.WriteJSON(w, rej.Status, errorBody(rej.Message))
				return
			}

			ctx = slogx.WithContext(ctx, log.With(slog.String("api_key", key.ID)))
			ctx = context.WithValue(ctx, ctxKeyAPIKey{}, key.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Check runs the signing checks in order: headers, timestamp skew, nonce
// replay, key validity, signature, nonce record and quota.
func (g *Guard) Check(ctx context.Context, method, path string, h http.Header, body []byte) (APIKey, *Rejection) {
	keyID := h.Get(HeaderAPIKey)
	sig := h.Get(HeaderSignature)
	rawTS := h.Get(HeaderTimestamp)
	nonce := h.Get(HeaderNonce)

	// 1. All four headers present.
	if keyID == "" || sig == "" || rawTS == "" || nonce == "" {
		return g.reject(rejectMissing)
	}

	// 2. Timestamp within the skew window.
	now := g.now()
	ts, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		return g.reject(rejectTimestamp)
	}
	if d := now.Sub(time.UnixMilli(ts)); d > g.skew || d < -g.skew {
		return g.reject(rejectTimestamp)
	}

	// 3. Nonce not seen before for this key.
	seen, err := g.nonces.Seen(ctx, keyID, nonce)
	if err != nil {
		slogx.FromContext(ctx).Error("nonce lookup failed", slog.String("err", err.Error()))
		return g.reject(rejectInternal)
	}
	if seen {
		return g.reject(rejectReplay)
	}

	// 4. Key exists and is not revoked.
	key, ok := g.keys.Lookup(keyID)
	if !ok || key.Revoked {
		return g.reject(rejectKey)
	}

	// 5. Signature.
	expected := Sign(key.Secret, Canonical(method, path, body, ts, nonce))
	if !VerifySignature(expected, sig) {
		return g.reject(rejectSignature)
	}

	// 6. Record the nonce. Losing the race to a concurrent recorder is a replay.
	recorded, err := g.nonces.Record(ctx, keyID, nonce, g.NonceTTL())
	if err != nil {
		slogx.FromContext(ctx).Error("nonce record failed", slog.String("err", err.Error()))
		return g.reject(rejectInternal)
	}
	if !recorded {
		return g.reject(rejectReplay)
	}

	// 7. Per-key quota.
	if !g.quota.Allow(key.ID, key.RPM, now) {
		return g.reject(rejectQuota)
	}

	return key, nil
}

// Sweep evicts expired nonces and idle quota buckets.
func (g *Guard) Sweep(now time.Time) (nonces, buckets int) {
	if s, ok := g.nonces.(Sweeper); ok {
		nonces = s.Sweep(now)
	}
	buckets = g.quota.Sweep(now, quotaIdleAfter)
	return nonces, buckets
}

func (g *Guard) reject(r *Rejection) (APIKey, *Rejection) {
	if g.observer != nil {
		g.observer.ObserveGuardRejection(r.Reason)
	}
	return APIKey{}, r
}

type ctxKeyAPIKey struct{}

// APIKeyFromContext returns the authenticated API key id, if any.
func APIKeyFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKeyAPIKey{}).(string)
	return id, ok
}

func errorBody(msg string) map[string]any {
	return map[string]any{
		"success":           false,
		"error":             "request_guard",
		"error_description": msg,
	}
}
