package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/keyward/internal/keyward/domain"
	"github.com/aussiebroadwan/keyward/internal/keyward/service"
	"github.com/aussiebroadwan/keyward/pkg/httpx"
	"github.com/aussiebroadwan/keyward/pkg/keywardsdk"
)

func requestMeta(r *http.Request) service.RequestMeta {
	return service.RequestMeta{
		IPAddress: httpx.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// writeDecodeError answers a body that failed to decode or validate.
func writeDecodeError(w http.ResponseWriter, err error) {
	desc := "Invalid JSON body"
	var verr *httpx.ValidationError
	switch {
	case errors.As(err, &verr):
		desc = verr.Error()
	case errors.Is(err, httpx.ErrEmptyBody):
		desc = "Request body is required"
	}
	httpx.WriteJSON(w, http.StatusBadRequest, keywardsdk.ErrorResponse{
		Error:            keywardsdk.ErrorCodeInvalidRequest,
		ErrorDescription: desc,
	})
}

// writeServiceError maps service errors to responses. Anything unexpected is
// logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error, failure string) {
	status, code, desc := http.StatusInternalServerError, keywardsdk.ErrorCodeServerError, failure

	switch {
	case errors.Is(err, service.ErrInvalidExpiry),
		errors.Is(err, service.ErrInvalidBulkCount),
		errors.Is(err, service.ErrInvalidAPIKey):
		status, code, desc = http.StatusBadRequest, keywardsdk.ErrorCodeInvalidRequest, err.Error()
	case errors.Is(err, service.ErrInvalidRequest):
		status, code, desc = http.StatusBadRequest, keywardsdk.ErrorCodeInvalidRequest, "Invalid request parameters"
	case errors.Is(err, service.ErrLicenseNotFound):
		status, code, desc = http.StatusNotFound, keywardsdk.ErrorCodeNotFound, "License not found"
	case errors.Is(err, service.ErrAPIKeyNotFound):
		status, code, desc = http.StatusNotFound, keywardsdk.ErrorCodeNotFound, "API key not found"
	case errors.Is(err, service.ErrNotLicenseOwner):
		status, code, desc = http.StatusForbidden, keywardsdk.ErrorCodeNotLicenseHolder, "Not authorized to access this license"
	case errors.Is(err, service.ErrInvalidTransition):
		status, code, desc = http.StatusConflict, keywardsdk.ErrorCodeInvalidStatus, "License status does not allow this change"
	case errors.Is(err, service.ErrOwnedByOther):
		status, code, desc = http.StatusConflict, keywardsdk.ErrorCodeAlreadyRedeemed, "License key has already been redeemed"
	case errors.Is(err, service.ErrAPIKeyIDConflict):
		status, code, desc = http.StatusConflict, keywardsdk.ErrorCodeConflict, "API key id already exists"
	case errors.Is(err, service.ErrLicenseKeyMismatch):
		status, code, desc = http.StatusNotFound, keywardsdk.ErrorCodeInvalidLicense, "Invalid license key"
	case errors.Is(err, service.ErrLicenseLocked):
		status, code, desc = http.StatusBadRequest, keywardsdk.ErrorCodeLicenseLocked, "License key is temporarily locked due to too many failed attempts"
	case errors.Is(err, service.ErrLicenseExpired):
		status, code, desc = http.StatusBadRequest, keywardsdk.ErrorCodeLicenseExpired, "License key has expired"
	case errors.Is(err, service.ErrLicenseRevoked):
		status, code, desc = http.StatusBadRequest, keywardsdk.ErrorCodeLicenseRevoked, "License key has been revoked"
	case errors.Is(err, service.ErrLicenseFrozen):
		status, code, desc = http.StatusBadRequest, keywardsdk.ErrorCodeLicenseFrozen, "License key is frozen"
	case errors.Is(err, service.ErrTimeUntrusted):
		status, code, desc = http.StatusServiceUnavailable, keywardsdk.ErrorCodeTimeUntrusted, "Unable to establish trusted time"
	default:
		log.Error(failure, slog.Any("error", err))
	}

	httpx.WriteJSON(w, status, keywardsdk.ErrorResponse{Error: code, ErrorDescription: desc})
}

func toLicense(l domain.License) keywardsdk.License {
	return keywardsdk.License{
		ID:                l.ID,
		Key:               l.Key,
		LookupID:          l.LookupID,
		Format:            l.Format,
		OwnerID:           l.OwnerID,
		Status:            string(l.Status),
		GameType:          l.GameType,
		ExpiresAt:         l.ExpiresAt,
		HWID:              l.HWID,
		HWIDLocked:        l.HWIDLocked,
		FailedAttempts:    l.FailedAttempts,
		LastFailedAttempt: l.LastFailedAttempt,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

func toLicenseList(ls []domain.License) keywardsdk.LicenseListResponse {
	out := keywardsdk.LicenseListResponse{
		Licenses: make([]keywardsdk.License, 0, len(ls)),
		Count:    len(ls),
	}
	for _, l := range ls {
		out.Licenses = append(out.Licenses, toLicense(l))
	}
	return out
}

func toAuditStats(s domain.AuditStats) keywardsdk.LicenseAuditStats {
	out := keywardsdk.LicenseAuditStats{
		TotalLogs:    s.TotalLogs,
		Validations:  s.Validations,
		SuccessCount: s.SuccessCount,
		FailCount:    s.FailCount,
	}
	if e := s.LastEvent; e != nil {
		out.LastEvent = &keywardsdk.AuditEvent{
			Action:    string(e.Action),
			CreatedAt: e.CreatedAt,
			IPAddress: e.IPAddress,
			HWID:      e.HWID,
			UserAgent: e.UserAgent,
			Success:   e.Success,
			Message:   e.Message,
		}
	}
	return out
}

func toAPIKey(k domain.APIKey) keywardsdk.APIKey {
	return keywardsdk.APIKey{
		ID:            k.ID,
		Name:          k.Name,
		Revoked:       k.Revoked,
		RPM:           k.RPM,
		CreatedAt:     k.CreatedAt,
		UpdatedAt:     k.UpdatedAt,
		LastRotatedAt: k.LastRotatedAt,
	}
}
