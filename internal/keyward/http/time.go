package http

import (
	"net/http"

	"github.com/aussiebroadwan/keyward/internal/keyward/service"
	"github.com/aussiebroadwan/keyward/pkg/httpx"
	"github.com/aussiebroadwan/keyward/pkg/keywardsdk"
)

// TimeHandler godoc
//
//	@Summary		Trusted Time
//	@Description	Returns the server's drift-checked time so clients can align their own clock before validating.
//	@Tags			Validation
//	@Produce		json
//	@Success		200	{object}	keywardsdk.TimeResponse	"trusted time reading"
//	@Failure		401	{object}	keywardsdk.ErrorResponse	"missing or invalid request signature"
//	@Security		APIKeyAuth
//	@Router			/v1/time [get]
func TimeHandler(clock service.TrustedClock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reading := clock.TrustedTime(r.Context())
		httpx.WriteJSON(w, http.StatusOK, keywardsdk.TimeResponse{
			Valid:         reading.Valid,
			ServerTime:    reading.ServerTime,
			DriftMillis:   reading.Drift.Milliseconds(),
			State:         string(reading.State),
			UsingFallback: reading.UsingFallback,
			UsingCached:   reading.UsingCached,
			Message:       reading.Message,
		})
	}
}
