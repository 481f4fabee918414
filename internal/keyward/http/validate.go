package http

import (
	"net/http"

	"github.com/aussiebroadwan/keyward/internal/keyward/service"
	"github.com/aussiebroadwan/keyward/pkg/httpx"
	"github.com/aussiebroadwan/keyward/pkg/keywardsdk"
	"github.com/aussiebroadwan/keyward/pkg/slogx"
)

type ValidateHandler struct {
	Validator *service.Validator
}

// ServeHTTP godoc
//
//	@Summary		Validate License Key
//	@Description	Checks a license key against trusted time, lockout, status and hardware binding.
//	@Description	The first successful validation with a hwid binds it; later validations must present the same hwid.
//	@Description	Every call is audited. A rejected key answers 400 (404 when the key is unknown) with the outcome in the body.
//	@Tags			Validation
//	@Accept			json
//	@Produce		json
//	@Param			request	body		keywardsdk.ValidateRequest	true	"Validation request"
//	@Success		200		{object}	keywardsdk.ValidateResponse	"valid license"
//	@Failure		400		{object}	keywardsdk.ValidateResponse	"rejected license or malformed request"
//	@Failure		401		{object}	keywardsdk.ErrorResponse	"missing or invalid request signature"
//	@Failure		403		{object}	keywardsdk.ErrorResponse	"invalid api key"
//	@Failure		404		{object}	keywardsdk.ValidateResponse	"unknown license key"
//	@Failure		429		{object}	keywardsdk.ErrorResponse	"rate limited"
//	@Failure		500		{object}	keywardsdk.ErrorResponse	"error, error_description"
//	@Security		APIKeyAuth
//	@Router			/v1/validate [post]
func (h *ValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req keywardsdk.ValidateRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		writeDecodeError(w, err)
		return
	}

	in := service.ValidateRequest{
		Key:        req.Key,
		HWID:       req.HWID,
		ClientTime: req.ClientTime,
		Meta:       requestMeta(r),
	}
	if req.SystemInfo != nil {
		in.SystemInfo = *req.SystemInfo
	}

	outcome, err := h.Validator.Validate(ctx, in)
	if err != nil {
		log.Error("validation failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, keywardsdk.ErrorResponse{
			Error:            keywardsdk.ErrorCodeServerError,
			ErrorDescription: "Failed to validate license key",
		})
		return
	}

	httpx.WriteJSON(w, outcomeStatus(outcome), toValidateResponse(outcome))
}

func outcomeStatus(o service.Outcome) int {
	switch o.Kind {
	case service.OutcomeSuccess:
		return http.StatusOK
	case service.OutcomeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// toValidateResponse sets exactly the flag that belongs to the outcome.
func toValidateResponse(o service.Outcome) keywardsdk.ValidateResponse {
	resp := keywardsdk.ValidateResponse{
		Success:    o.Valid(),
		Valid:      o.Valid(),
		Outcome:    string(o.Kind),
		Message:    o.Message,
		ServerTime: o.ServerTime,
	}

	switch o.Kind {
	case service.OutcomeTimeError:
		resp.TimeError = true
	case service.OutcomeLocked:
		resp.Locked = true
		resp.RemainingTime = o.RemainingMinutes
	case service.OutcomeExpired:
		resp.Expired = true
	case service.OutcomeRevoked:
		resp.Revoked = true
	case service.OutcomeInactive:
		resp.Inactive = true
	case service.OutcomeWrongKey:
		resp.Attempts = o.Attempts
		resp.MaxAttempts = o.MaxAttempts
	case service.OutcomeHWIDMismatch:
		resp.HWIDMismatch = true
	}
	return resp
}
