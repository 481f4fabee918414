package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/keyward/internal/keyward/service"
	"github.com/aussiebroadwan/keyward/internal/keyward/store"
	"github.com/aussiebroadwan/keyward/pkg/guard"
	"github.com/aussiebroadwan/keyward/pkg/httpx"
	"github.com/aussiebroadwan/keyward/pkg/jwtx"
	"github.com/aussiebroadwan/keyward/pkg/slogx"

	_ "github.com/aussiebroadwan/keyward/api/keyward" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	guard        *guard.Guard
	admin        httpx.AdminConfig
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	// Verifier and OwnerKeys enable the owner routes. With no verifier the
	// owner routes answer 404.
	Verifier  jwtx.Verifier
	OwnerKeys *jwtx.KeySet

	// Metrics serves /metrics when set.
	Metrics http.Handler

	// RateLimiters collects every limiter ApplyRoutes registers so
	// housekeeping can sweep idle buckets.
	RateLimiters []*httpx.RateLimiter

	Clock          service.TrustedClock
	Validator      *service.Validator
	LicenseService *service.LicenseService
	AuditService   *service.AuditService
	APIKeyService  *service.APIKeyService
}

func NewRouter(
	g *guard.Guard,
	admin httpx.AdminConfig,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		guard:        g,
		admin:        admin,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSystem()
	r.registerValidation()
	r.registerOwner()

	admin := r.newAdminChain()
	r.registerAdminLicenses(admin)
	r.registerAdminAudit(admin)
	r.registerAdminAPIKeys(admin)

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			keyward License Service API
//	@version		0.1.0
//	@description	License key issuance and validation with hardware binding, trusted time and signed requests.
//	@description
//	@description				Signed routes need the x-api-key, x-req-timestamp, x-req-nonce and x-req-signature headers.
//	@description				The signature is hex HMAC-SHA256 over METHOD\nPATH\nBODY\nTIMESTAMP\nNONCE.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/keyward
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	APIKeyAuth
//	@in							header
//	@name						x-api-key
//	@description				API key id. Requests must also carry the signing headers.
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Owner access token. Format: "Bearer {token}".
//
//	@securityDefinitions.apikey	AdminAuth
//	@in							header
//	@name						x-admin-secret
//	@description				Admin secret, plus x-admin-otp when TOTP is enabled.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) limitByIP(cfg httpx.RateLimitConfig) httpx.Middleware {
	rl := httpx.RateLimitByIP(cfg)
	r.RateLimiters = append(r.RateLimiters, rl)
	return rl.Middleware()
}

func (r *Router) limitByOwner(cfg httpx.RateLimitConfig) httpx.Middleware {
	rl := httpx.RateLimitByOwner(cfg)
	r.RateLimiters = append(r.RateLimiters, rl)
	return rl.Middleware()
}

func (r *Router) registerSystem() {
	// Probes and scrapes - public limit by IP
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			r.limitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.guard.Keys(), r.Clock, r.OwnerKeys),
			r.limitByIP(httpx.PublicLimit),
		),
	)
	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics",
			httpx.Chain(r.Metrics,
				r.limitByIP(httpx.PublicLimit),
			),
		)
	}
}

func (r *Router) registerValidation() {
	validateHandler := &ValidateHandler{Validator: r.Validator}

	// POST /v1/validate - signed, per-IP ceiling on top of the per-key quota
	r.Mux.Handle("POST /v1/validate",
		httpx.Chain(validateHandler,
			r.guard.Middleware(),
			r.limitByIP(httpx.ValidateLimit),
		),
	)

	// GET /v1/time - signed, public limit
	r.Mux.Handle("GET /v1/time",
		httpx.Chain(TimeHandler(r.Clock),
			r.guard.Middleware(),
			r.limitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerOwner() {
	if r.Verifier == nil {
		disabled := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Owner API is disabled")
		})
		r.Mux.Handle("/v1/licenses/", disabled)
		return
	}

	h := &OwnerLicensesHandler{
		LicenseService: r.LicenseService,
		AuditService:   r.AuditService,
	}

	secured := func(next http.Handler, cfg httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(next,
			r.guard.Middleware(),
			httpx.OwnerAuth(r.Verifier),
			r.limitByOwner(cfg),
		)
	}

	// POST /v1/licenses/redeem - strict limit, a caller could otherwise enumerate keys
	r.Mux.Handle("POST /v1/licenses/redeem", secured(http.HandlerFunc(h.HandleRedeem), httpx.StrictLimit))

	r.Mux.Handle("GET /v1/licenses/mine", secured(http.HandlerFunc(h.HandleList), httpx.AdminLimit))
	r.Mux.Handle("GET /v1/licenses/mine/{id}/stats", secured(http.HandlerFunc(h.HandleStats), httpx.AdminLimit))
	r.Mux.Handle("PUT /v1/licenses/mine/{id}/reset-hwid", secured(http.HandlerFunc(h.HandleResetHWID), httpx.StrictLimit))
}

type adminChain func(http.HandlerFunc) http.Handler

// newAdminChain is built once so a single limiter covers the whole admin API.
func (r *Router) newAdminChain() adminChain {
	limit := r.limitByIP(httpx.AdminLimit)
	auth := httpx.AdminAuth(r.admin)
	return func(h http.HandlerFunc) http.Handler {
		return httpx.Chain(h, auth, limit)
	}
}

func (r *Router) registerAdminLicenses(admin adminChain) {
	h := &AdminLicensesHandler{
		LicenseService: r.LicenseService,
		AuditService:   r.AuditService,
	}

	r.Mux.Handle("POST /v1/admin/licenses", admin(h.HandleCreate))
	r.Mux.Handle("GET /v1/admin/licenses", admin(h.HandleList))
	r.Mux.Handle("POST /v1/admin/licenses/bulk", admin(h.HandleBulkCreate))
	r.Mux.Handle("POST /v1/admin/licenses/bulk-delete", admin(h.HandleBulkDelete))
	r.Mux.Handle("GET /v1/admin/licenses/stats", admin(h.HandleStats))
	r.Mux.Handle("GET /v1/admin/licenses/{id}", admin(h.HandleGet))
	r.Mux.Handle("DELETE /v1/admin/licenses/{id}", admin(h.HandleDelete))
	r.Mux.Handle("PUT /v1/admin/licenses/{id}/freeze", admin(h.HandleFreeze))
	r.Mux.Handle("PUT /v1/admin/licenses/{id}/unfreeze", admin(h.HandleUnfreeze))
	r.Mux.Handle("PUT /v1/admin/licenses/{id}/revoke", admin(h.HandleRevoke))
	r.Mux.Handle("PUT /v1/admin/licenses/{id}/reset-hwid", admin(h.HandleResetHWID))
	r.Mux.Handle("GET /v1/admin/licenses/{id}/stats", admin(h.HandleAuditStats))
}

func (r *Router) registerAdminAudit(admin adminChain) {
	h := &AdminAuditHandler{AuditService: r.AuditService}

	r.Mux.Handle("DELETE /v1/admin/audit", admin(h.HandlePurge))
}

func (r *Router) registerAdminAPIKeys(admin adminChain) {
	h := &AdminAPIKeysHandler{APIKeyService: r.APIKeyService}

	r.Mux.Handle("GET /v1/admin/api-keys", admin(h.HandleList))
	r.Mux.Handle("POST /v1/admin/api-keys", admin(h.HandleCreate))
	r.Mux.Handle("POST /v1/admin/api-keys/{id}/rotate", admin(h.HandleRotate))
	r.Mux.Handle("DELETE /v1/admin/api-keys/{id}", admin(h.HandleRevoke))
}
