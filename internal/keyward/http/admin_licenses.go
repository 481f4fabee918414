package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
	"github.com/aussiebroadwan/keyward/internal/keyward/service"
	"github.com/aussiebroadwan/keyward/pkg/httpx"
	"github.com/aussiebroadwan/keyward/pkg/keywardsdk"
	"github.com/aussiebroadwan/keyward/pkg/slogx"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

type AdminLicensesHandler struct {
	LicenseService *service.LicenseService
	AuditService   *service.AuditService
}

// HandleCreate godoc
//
//	@Summary		Create License
//	@Description	Issues a license. Without expiresAt the license runs for one year of trusted time.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		keywardsdk.CreateLicenseRequest	true	"License definition"
//	@Success		201		{object}	keywardsdk.License				"created license, including its key"
//	@Failure		400		{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Failure		503		{object}	keywardsdk.ErrorResponse		"trusted time unavailable"
//	@Security		AdminAuth
//	@Router			/v1/admin/licenses [post]
func (h *AdminLicensesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req keywardsdk.CreateLicenseRequest
	if err := httpx.DecodeJSON(r, &req, true); err != nil {
		writeDecodeError(w, err)
		return
	}

	lic, err := h.LicenseService.Create(ctx, service.CreateLicenseInput{
		OwnerID:   req.OwnerID,
		ExpiresAt: req.ExpiresAt,
		GameType:  req.GameType,
		Type:      req.Type,
		Inactive:  req.Inactive,
	}, requestMeta(r))
	if err != nil {
		writeServiceError(w, log, err, "Failed to create license")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toLicense(lic))
}

// HandleBulkCreate godoc
//
//	@Summary		Bulk Create Licenses
//	@Description	Issues between 1 and 100 licenses in one transaction.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		keywardsdk.BulkCreateRequest	true	"Bulk definition"
//	@Success		201		{object}	keywardsdk.LicenseListResponse	"licenses, count"
//	@Failure		400		{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Security		AdminAuth
//	@Router			/v1/admin/licenses/bulk [post]
func (h *AdminLicensesHandler) HandleBulkCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req keywardsdk.BulkCreateRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		writeDecodeError(w, err)
		return
	}

	licenses, err := h.LicenseService.BulkCreate(ctx, req.Count, service.CreateLicenseInput{
		ExpiresAt: req.ExpiresAt,
		GameType:  req.GameType,
		Type:      req.Type,
	}, requestMeta(r))
	if err != nil {
		writeServiceError(w, log, err, "Failed to create licenses")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toLicenseList(licenses))
}

// HandleBulkDelete godoc
//
//	@Summary		Bulk Delete Licenses
//	@Description	Deletes up to 100 licenses. Unknown ids are skipped; audit history is kept.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		keywardsdk.BulkDeleteRequest	true	"License ids"
//	@Success		200		{object}	keywardsdk.BulkDeleteResponse	"deleted"
//	@Failure		400		{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Security		AdminAuth
//	@Router			/v1/admin/licenses/bulk-delete [post]
func (h *AdminLicensesHandler) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req keywardsdk.BulkDeleteRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		writeDecodeError(w, err)
		return
	}

	deleted, err := h.LicenseService.BulkDelete(ctx, req.IDs, requestMeta(r))
	if err != nil {
		writeServiceError(w, log, err, "Failed to delete licenses")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, keywardsdk.BulkDeleteResponse{Deleted: deleted})
}

// HandleList godoc
//
//	@Summary		List Licenses
//	@Description	Lists licenses, newest first.
//	@Tags			Admin
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"	Enums(active, inactive, frozen, revoked)
//	@Param			ownerId	query		string	false	"Filter by owner"
//	@Param			limit	query		int		false	"Page size (default 100, max 1000)"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	keywardsdk.LicenseListResponse	"licenses, count"
//	@Failure		400		{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Security		AdminAuth
//	@Router			/v1/admin/licenses [get]
func (h *AdminLicensesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	q := r.URL.Query()

	limit, err := queryInt(q.Get("limit"), defaultListLimit)
	if err != nil || limit < 1 || limit > maxListLimit {
		httpx.WriteError(w, http.StatusBadRequest, keywardsdk.ErrorCodeInvalidRequest, "limit must be between 1 and 1000")
		return
	}
	offset, err := queryInt(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		httpx.WriteError(w, http.StatusBadRequest, keywardsdk.ErrorCodeInvalidRequest, "offset must not be negative")
		return
	}

	licenses, err := h.LicenseService.List(ctx, domain.LicenseFilter{
		Status:  domain.LicenseStatus(q.Get("status")),
		OwnerID: q.Get("ownerId"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		writeServiceError(w, log, err, "Failed to list licenses")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toLicenseList(licenses))
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// HandleStats godoc
//
//	@Summary		License Statistics
//	@Description	Counts licenses by state at trusted time.
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	keywardsdk.LicenseStatsResponse	"counts"
//	@Failure		401	{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Security		AdminAuth
//	@Router			/v1/admin/licenses/stats [get]
func (h *AdminLicensesHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	st, err := h.LicenseService.Stats(ctx)
	if err != nil {
		writeServiceError(w, log, err, "Failed to load license stats")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, keywardsdk.LicenseStatsResponse{
		Total:    st.Total,
		Active:   st.Active,
		Inactive: st.Inactive,
		Frozen:   st.Frozen,
		Expired:  st.Expired,
		Revoked:  st.Revoked,
		Bound:    st.Bound,
		Unbound:  st.Unbound,
	})
}

// HandleGet godoc
//
//	@Summary		Get License
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string						true	"License ID"
//	@Success		200	{object}	keywardsdk.License			"license"
//	@Failure		404	{object}	keywardsdk.ErrorResponse	"license not found"
//	@Security		AdminAuth
//	@Router			/v1/admin/licenses/{id} [get]
func (h *AdminLicensesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lic, err := h.LicenseService.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, slogx.FromContext(ctx), err, "Failed to load license")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toLicense(lic))
}

// HandleDelete godoc
//
//	@Summary		Delete License
//	@Description	Deletes a license. Its audit history is kept.
//	@Tags			Admin
//	@Param			id	path	string	true	"License ID"
//	@Success		204	"deleted"
//	@Failure		404	{object}	keywardsdk.ErrorResponse	"license not found"
//	@Security		AdminAuth
//	@Router			/v1/admin/licenses/{id} [delete]
func (h *AdminLicensesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.LicenseService.Delete(ctx, r.PathValue("id"), requestMeta(r)); err != nil {
		writeServiceError(w, slogx.FromContext(ctx), err, "Failed to delete license")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleFreeze godoc
//
//	@Summary		Freeze License
//	@Description	Blocks validation of an active or inactive license until it is unfrozen.
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string						true	"License ID"
//	@Success		200	{object}	keywardsdk.License			"updated license"
//	@Failure		404	{object}	keywardsdk.ErrorResponse	"license not found"
//	@Failure		409	{object}	keywardsdk.ErrorResponse	"status does not allow this change"
//	@Security		AdminAuth
//	@Router			/v1/admin/licenses/{id}/freeze [put]
func (h *AdminLicensesHandler) HandleFreeze(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.LicenseService.Freeze, "Failed to freeze license")
}

// HandleUnfreeze godoc
//
//	@Summary		Unfreeze License
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string						true	"License ID"
//	@Success		200	{object}	keywardsdk.License			"updated license"
//	@Failure		404	{object}	keywardsdk.ErrorResponse	"license not found"
//	@Failure		409	{object}	keywardsdk.ErrorResponse	"license is not frozen"
//	@Security		AdminAuth
//	@Router			/v1/admin/licenses/{id}/unfreeze [put]
func (h *AdminLicensesHandler) HandleUnfreeze(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.LicenseService.Unfreeze, "Failed to unfreeze license")
}

// HandleRevoke godoc
//
//	@Summary		Revoke License
//	@Description	Permanently revokes a license.
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string						true	"License ID"
//	@Success		200	{object}	keywardsdk.License			"updated license"
//	@Failure		404	{object}	keywardsdk.ErrorResponse	"license not found"
//	@Failure		409	{object}	keywardsdk.ErrorResponse	"license already revoked"
//	@Security		AdminAuth
//	@Router			/v1/admin/licenses/{id}/revoke [put]
func (h *AdminLicensesHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.LicenseService.Revoke, "Failed to revoke license")
}

// HandleResetHWID godoc
//
//	@Summary		Reset Hardware Binding
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string						true	"License ID"
//	@Success		200	{object}	keywardsdk.License			"updated license"
//	@Failure		404	{object}	keywardsdk.ErrorResponse	"license not found"
//	@Security		AdminAuth
//	@Router			/v1/admin/licenses/{id}/reset-hwid [put]
func (h *AdminLicensesHandler) HandleResetHWID(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.LicenseService.ResetHWID, "Failed to reset hardware id")
}

type licenseAction func(ctx context.Context, id string, meta service.RequestMeta) (domain.License, error)

func (h *AdminLicensesHandler) transition(w http.ResponseWriter, r *http.Request, action licenseAction, failure string) {
	ctx := r.Context()

	lic, err := action(ctx, r.PathValue("id"), requestMeta(r))
	if err != nil {
		writeServiceError(w, slogx.FromContext(ctx), err, failure)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toLicense(lic))
}

// HandleAuditStats godoc
//
//	@Summary		License Audit Stats
//	@Description	Summarises the audit history of any license.
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string							true	"License ID"
//	@Success		200	{object}	keywardsdk.LicenseAuditStats	"totalLogs, validations, successCount, failCount, lastEvent"
//	@Failure		404	{object}	keywardsdk.ErrorResponse		"license not found"
//	@Security		AdminAuth
//	@Router			/v1/admin/licenses/{id}/stats [get]
func (h *AdminLicensesHandler) HandleAuditStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	lic, err := h.LicenseService.Get(ctx, r.PathValue("id"))
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
