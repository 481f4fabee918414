package http

import (
	"net/http"

	"github.com/aussiebroadwan/keyward/internal/keyward/service"
	"github.com/aussiebroadwan/keyward/pkg/httpx"
	"github.com/aussiebroadwan/keyward/pkg/keywardsdk"
	"github.com/aussiebroadwan/keyward/pkg/slogx"
)

// OwnerLicensesHandler serves the routes an authenticated owner uses for
// their own licenses.
type OwnerLicensesHandler struct {
	LicenseService *service.LicenseService
	AuditService   *service.AuditService
}

func ownerFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID, ok := httpx.OwnerIDFromContext(r.Context())
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, keywardsdk.ErrorResponse{
			Error:            keywardsdk.ErrorCodeUnauthorized,
			ErrorDescription: "Authentication required",
		})
	}
	return ownerID, ok
}

// HandleRedeem godoc
//
//	@Summary		Redeem License Key
//	@Description	Claims an unowned license for the calling account and activates it. Redeeming a key you already own succeeds without change.
//	@Tags			Licenses
//	@Accept			json
//	@Produce		json
//	@Param			request	body		keywardsdk.RedeemRequest	true	"Redeem request"
//	@Success		200		{object}	keywardsdk.License			"redeemed license"
//	@Failure		400		{object}	keywardsdk.ErrorResponse	"expired, revoked, frozen or locked key"
//	@Failure		401		{object}	keywardsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	keywardsdk.ErrorResponse	"unknown or wrong key"
//	@Failure		409		{object}	keywardsdk.ErrorResponse	"redeemed by another account"
//	@Failure		500		{object}	keywardsdk.ErrorResponse	"error, error_description"
//	@Security		APIKeyAuth
//	@Security		BearerAuth
//	@Router			/v1/licenses/redeem [post]
func (h *OwnerLicensesHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	ownerID, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	var req keywardsdk.RedeemRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		writeDecodeError(w, err)
		return
	}

	lic, err := h.LicenseService.Redeem(ctx, req.Key, ownerID, requestMeta(r))
	if err != nil {
		writeServiceError(w, log, err, "Failed to redeem license")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toLicense(lic))
}

// HandleList godoc
//
//	@Summary		My Licenses
//	@Description	Lists the licenses owned by the calling account.
//	@Tags			Licenses
//	@Produce		json
//	@Success		200	{object}	keywardsdk.LicenseListResponse	"licenses, count"
//	@Failure		401	{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Failure		500	{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Security		APIKeyAuth
//	@Security		BearerAuth
//	@Router			/v1/licenses/mine [get]
func (h *OwnerLicensesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	ownerID, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	licenses, err := h.LicenseService.Mine(ctx, ownerID)
	if err != nil {
		writeServiceError(w, log, err, "Failed to list licenses")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toLicenseList(licenses))
}

// HandleStats godoc
//
//	@Summary		My License Stats
//	@Description	Summarises the audit history of a license owned by the calling account.
//	@Tags			Licenses
//	@Produce		json
//	@Param			id	path		string							true	"License ID"
//	@Success		200	{object}	keywardsdk.LicenseAuditStats	"totalLogs, validations, successCount, failCount, lastEvent"
//	@Failure		401	{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Failure		403	{object}	keywardsdk.ErrorResponse		"license owned by someone else"
//	@Failure		404	{object}	keywardsdk.ErrorResponse		"license not found"
//	@Security		APIKeyAuth
//	@Security		BearerAuth
//	@Router			/v1/licenses/mine/{id}/stats [get]
func (h *OwnerLicensesHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	ownerID, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	lic, err := h.LicenseService.Owned(ctx, r.PathValue("id"), ownerID)
	if err != nil {
		writeServiceError(w, log, err, "Failed to load license")
		return
	}

	stats, err := h.AuditService.StatsForLicense(ctx, lic.ID)
	if err != nil {
		writeServiceError(w, log, err, "Failed to load license stats")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAuditStats(stats))
}

// HandleResetHWID godoc
//
//	@Summary		Reset My Hardware Binding
//	@Description	Clears the hardware binding of an owned license so the next validation binds a new machine.
//	@Tags			Licenses
//	@Produce		json
//	@Param			id	path		string						true	"License ID"
//	@Success		200	{object}	keywardsdk.License			"updated license"
//	@Failure		401	{object}	keywardsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	keywardsdk.ErrorResponse	"license owned by someone else"
//	@Failure		404	{object}	keywardsdk.ErrorResponse	"license not found"
//	@Security		APIKeyAuth
//	@Security		BearerAuth
//	@Router			/v1/licenses/mine/{id}/reset-hwid [put]
func (h *OwnerLicensesHandler) HandleResetHWID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	ownerID, ok := ownerFrom(w, r)
	if !ok {
		return
	}

	lic, err := h.LicenseService.ResetOwnHWID(ctx, r.PathValue("id"), ownerID, requestMeta(r))
	if err != nil {
		writeServiceError(w, log, err, "Failed to reset hardware id")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toLicense(lic))
}
