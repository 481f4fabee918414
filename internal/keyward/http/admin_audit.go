package http

import (
	"net/http"

	"github.com/aussiebroadwan/keyward/internal/keyward/service"
	"github.com/aussiebroadwan/keyward/pkg/httpx"
	"github.com/aussiebroadwan/keyward/pkg/keywardsdk"
	"github.com/aussiebroadwan/keyward/pkg/slogx"
)

type AdminAuditHandler struct {
	AuditService *service.AuditService
}

// HandlePurge godoc
//
//	@Summary		Purge Audit Log
//	@Description	Deletes every audit entry and records the purge itself as the first entry of the new log.
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	keywardsdk.PurgeAuditResponse	"purged"
//	@Failure		401	{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Failure		500	{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Security		AdminAuth
//	@Router			/v1/admin/audit [delete]
func (h *AdminAuditHandler) HandlePurge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	purged, err := h.AuditService.PurgeAll(ctx, requestMeta(r), "admin")
	if err != nil {
		writeServiceError(w, log, err, "Failed to purge audit log")
		return
	}

	log.Warn("audit log purged", "purged", purged)
	httpx.WriteJSON(w, http.StatusOK, keywardsdk.PurgeAuditResponse{Purged: purged})
}
