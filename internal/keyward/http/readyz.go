package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/keyward/internal/keyward/service"
	"github.com/aussiebroadwan/keyward/internal/keyward/store"
	"github.com/aussiebroadwan/keyward/pkg/guard"
	"github.com/aussiebroadwan/keyward/pkg/httpx"
	"github.com/aussiebroadwan/keyward/pkg/jwtx"
	"github.com/aussiebroadwan/keyward/pkg/keywardsdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Covers the database, the trusted time oracle and, when owner routes are enabled, the owner signing keys.
//	@Description	An empty API key set is reported but does not fail readiness, so keys can still be created through the admin API.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	keywardsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	keywardsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get]
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	apiKeys *guard.KeyCache,
	clock service.TrustedClock,
	ownerKeys *jwtx.KeySet,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &keywardsdk.HealthChecks{
			Database:   "ok",
			APIKeys:    "ok",
			TimeOracle: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK
		degrade := func() {
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// Check database connectivity
		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			degrade()
		}

		if apiKeys.Len() == 0 {
			checks.APIKeys = "warning: no api keys loaded"
		}

		// Validation refuses to run on untrusted time
		if reading := clock.TrustedTime(r.Context()); !reading.Valid {
			checks.TimeOracle = "error: " + reading.Message
			degrade()
		} else if reading.State != "" {
			checks.TimeOracle = string(reading.State)
		}

		if ownerKeys != nil {
			checks.OwnerKeys = "ok"
			if !ownerKeys.IsReady() {
				checks.OwnerKeys = "error: no keys loaded"
				degrade()
			}
		}

		response := keywardsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
