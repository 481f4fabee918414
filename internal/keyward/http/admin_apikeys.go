package http

import (
	"net/http"

	"github.com/aussiebroadwan/keyward/internal/keyward/service"
	"github.com/aussiebroadwan/keyward/pkg/httpx"
	"github.com/aussiebroadwan/keyward/pkg/keywardsdk"
	"github.com/aussiebroadwan/keyward/pkg/slogx"
)

// AdminAPIKeysHandler manages the API keys loaders sign requests with.
type AdminAPIKeysHandler struct {
	APIKeyService *service.APIKeyService
}

// HandleList godoc
//
//	@Summary		List API Keys
//	@Description	Lists every API key. Secrets are never returned.
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	keywardsdk.APIKeyListResponse	"apiKeys"
//	@Failure		401	{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Security		AdminAuth
//	@Router			/v1/admin/api-keys [get]
func (h *AdminAPIKeysHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	keys, err := h.APIKeyService.ListAPIKeys(ctx)
	if err != nil {
		writeServiceError(w, log, err, "Failed to list api keys")
		return
	}

	resp := keywardsdk.APIKeyListResponse{APIKeys: make([]keywardsdk.APIKey, 0, len(keys))}
	for _, k := range keys {
		resp.APIKeys = append(resp.APIKeys, toAPIKey(k))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleCreate godoc
//
//	@Summary		Create API Key
//	@Description	Issues an API key. The secret is only shown in this response.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		keywardsdk.CreateAPIKeyRequest	true	"Key definition"
//	@Success		201		{object}	keywardsdk.APIKeySecretResponse	"apiKey, secret"
//	@Failure		400		{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	keywardsdk.ErrorResponse		"error, error_description"
//	@Security		AdminAuth
//	@Router			/v1/admin/api-keys [post]
func (h *AdminAPIKeysHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req keywardsdk.CreateAPIKeyRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		writeDecodeError(w, err)
		return
	}

	key, secret, err := h.APIKeyService.CreateAPIKey(ctx, req.Name, req.RPM, requestMeta(r))
	if err != nil {
		writeServiceError(w, log, err, "Failed to create api key")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, keywardsdk.APIKeySecretResponse{
		APIKey: toAPIKey(key),
		Secret: secret,
	})
}

// HandleRotate godoc
//
//	@Summary		Rotate API Key
//	@Description	Replaces the secret of an API key. The old secret stops working immediately.
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string							true	"API key ID"
//	@Success		200	{object}	keywardsdk.APIKeySecretResponse	"apiKey, secret"
//	@Failure		404	{object}	keywardsdk.ErrorResponse		"api key not found or revoked"
//	@Security		AdminAuth
//	@Router			/v1/admin/api-keys/{id}/rotate [post]
func (h *AdminAPIKeysHandler) HandleRotate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	key, secret, err := h.APIKeyService.RotateAPIKey(ctx, r.PathValue("id"), requestMeta(r))
	if err != nil {
		writeServiceError(w, log, err, "Failed to rotate api key")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, keywardsdk.APIKeySecretResponse{
		APIKey: toAPIKey(key),
		Secret: secret,
	})
}

// HandleRevoke godoc
//
//	@Summary		Revoke API Key
//	@Tags			Admin
//	@Param			id	path	string	true	"API key ID"
//	@Success		204	"revoked"
//	@Failure		404	{object}	keywardsdk.ErrorResponse	"api key not found"
//	@Security		AdminAuth
//	@Router			/v1/admin/api-keys/{id} [delete]
func (h *AdminAPIKeysHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.APIKeyService.RevokeAPIKey(ctx, r.PathValue("id"), requestMeta(r)); err != nil {
		writeServiceError(w, slogx.FromContext(ctx), err, "Failed to revoke api key")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
