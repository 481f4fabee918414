package keywardsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes returned by the service.
const (
	ErrorCodeInvalidRequest   = "invalid_request"
	ErrorCodeNotFound         = "not_found"
	ErrorCodeConflict         = "conflict"
	ErrorCodeForbidden        = "forbidden"
	ErrorCodeUnauthorized     = "unauthorized"
	ErrorCodeInvalidToken     = "invalid_token"
	ErrorCodeRequestGuard     = "request_guard"
	ErrorCodeRateLimited      = "rate_limit_exceeded"
	ErrorCodeTimeUntrusted    = "time_untrusted"
	ErrorCodeServerError      = "server_error"
	ErrorCodeLicenseExpired   = "license_expired"
	ErrorCodeLicenseRevoked   = "license_revoked"
	ErrorCodeLicenseFrozen    = "license_frozen"
	ErrorCodeLicenseLocked    = "license_locked"
	ErrorCodeInvalidLicense   = "invalid_license"
	ErrorCodeInvalidStatus    = "invalid_transition"
	ErrorCodeAlreadyRedeemed  = "already_redeemed"
	ErrorCodeNotLicenseHolder = "not_license_owner"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches another *APIError by code, so callers can compare against a
// template such as &APIError{Code: ErrorCodeNotFound} with errors.Is.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
