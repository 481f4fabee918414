package keywardsdk

import (
	"time"

	"github.com/aussiebroadwan/keyward/pkg/licensekey"
)

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	// Error is the machine readable code (e.g. "invalid_request", "not_found")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime" example:"1h2m3s"`
	Version string        `json:"version" example:"v1.0.0"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the dependencies /readyz looks at.
type HealthChecks struct {
	Database   string `json:"database" example:"ok"`
	APIKeys    string `json:"apiKeys" example:"ok"`
	TimeOracle string `json:"timeOracle" example:"ok"`
	OwnerKeys  string `json:"ownerKeys,omitempty" example:"ok"`
}

// ============================================================================
// Validation Types
// ============================================================================

// ValidateRequest is the body of POST /v1/validate. HWID takes precedence
// over SystemInfo when both are sent.
type ValidateRequest struct {
	Key        string                 `json:"key" validate:"required,max=128" example:"bcwtfK7M2P9QXR4TZ8VHN3WJ6CDYFGAB"`
	HWID       string                 `json:"hwid,omitempty" validate:"omitempty,max=128"`
	SystemInfo *licensekey.SystemInfo `json:"systemInfo,omitempty"`
	ClientTime *time.Time             `json:"clientTime,omitempty"`
}

// Validation outcomes, reported in ValidateResponse.Outcome.
const (
	OutcomeTimeError    = "time_error"
	OutcomeNotFound     = "not_found"
	OutcomeLocked       = "locked"
	OutcomeExpired      = "expired"
	OutcomeRevoked      = "revoked"
	OutcomeInactive     = "inactive"
	OutcomeWrongKey     = "wrong_key"
	OutcomeHWIDMismatch = "hwid_mismatch"
	OutcomeSuccess      = "success"
)

// ValidateResponse carries exactly one outcome. Only the flag matching
// Outcome is set.
type ValidateResponse struct {
	Success bool   `json:"success"`
	Valid   bool   `json:"valid"`
	Outcome string `json:"outcome" example:"success"`
	Message string `json:"message" example:"License key is valid"`

	TimeError     bool `json:"timeError,omitempty"`
	Expired       bool `json:"expired,omitempty"`
	Revoked       bool `json:"revoked,omitempty"`
	Inactive      bool `json:"inactive,omitempty"`
	Locked        bool `json:"locked,omitempty"`
	RemainingTime int  `json:"remainingTime,omitempty"`
	Attempts      int  `json:"attempts,omitempty"`
	MaxAttempts   int  `json:"maxAttempts,omitempty"`
	HWIDMismatch  bool `json:"hwidMismatch,omitempty"`

	ServerTime time.Time `json:"serverTime"`
}

// TimeResponse is the trusted time reading served by GET /v1/time.
type TimeResponse struct {
	Valid         bool      `json:"valid"`
	ServerTime    time.Time `json:"serverTime"`
	DriftMillis   int64     `json:"driftMs"`
	State         string    `json:"state" example:"fresh"`
	UsingFallback bool      `json:"usingFallback,omitempty"`
	UsingCached   bool      `json:"usingCached,omitempty"`
	Message       string    `json:"message,omitempty"`
}

// ============================================================================
// License Types
// ============================================================================

// License is the API view of a license record.
type License struct {
	ID                string     `json:"id"`
	Key               string     `json:"key"`
	LookupID          string     `json:"lookupId"`
	Format            string     `json:"format" example:"checksum"`
	OwnerID           string     `json:"ownerId,omitempty"`
	Status            string     `json:"status" example:"active"`
	GameType          string     `json:"gameType"`
	ExpiresAt         time.Time  `json:"expiresAt"`
	HWID              string     `json:"hwid,omitempty"`
	HWIDLocked        bool       `json:"hwidLocked"`
	FailedAttempts    int        `json:"failedAttempts"`
	LastFailedAttempt *time.Time `json:"lastFailedAttempt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type LicenseListResponse struct {
	Licenses []License `json:"licenses"`
	Count    int       `json:"count"`
}

// RedeemRequest is the body of POST /v1/licenses/redeem.
type RedeemRequest struct {
	Key string `json:"key" validate:"required,max=128"`
}

// AuditEvent is a single audit entry as shown in license stats.
type AuditEvent struct {
	Action    string    `json:"action" example:"validate"`
	CreatedAt time.Time `json:"createdAt"`
	IPAddress string    `json:"ipAddress"`
	HWID      string    `json:"hwid"`
	UserAgent string    `json:"userAgent"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
}

// LicenseAuditStats summarises the audit history of one license.
type LicenseAuditStats struct {
	TotalLogs    int         `json:"totalLogs"`
	Validations  int         `json:"validations"`
	SuccessCount int         `json:"successCount"`
	FailCount    int         `json:"failCount"`
	LastEvent    *AuditEvent `json:"lastEvent,omitempty"`
}

// CreateLicenseRequest is the body of POST /v1/admin/licenses. Omitting
// ExpiresAt issues a one year license.
type CreateLicenseRequest struct {
	OwnerID   string     `json:"ownerId,omitempty" validate:"omitempty,max=128"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	GameType  string     `json:"gameType,omitempty" validate:"omitempty,max=64"`
	Type      string     `json:"type,omitempty" validate:"omitempty,max=4"`
	Inactive  bool       `json:"inactive,omitempty"`
}

// BulkCreateRequest is the body of POST /v1/admin/licenses/bulk.
type BulkCreateRequest struct {
	Count     int        `json:"count" validate:"required,min=1,max=100"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	GameType  string     `json:"gameType,omitempty" validate:"omitempty,max=64"`
	Type      string     `json:"type,omitempty" validate:"omitempty,max=4"`
}

// BulkDeleteRequest is the body of POST /v1/admin/licenses/bulk-delete.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100,dive,required"`
}

type BulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}

// LicenseStatsResponse counts licenses by state.
type LicenseStatsResponse struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	Frozen   int `json:"frozen"`
	Expired  int `json:"expired"`
	Revoked  int `json:"revoked"`
	Bound    int `json:"bound"`
	Unbound  int `json:"unbound"`
}

type PurgeAuditResponse struct {
	Purged int64 `json:"purged"`
}

// ============================================================================
// API Key Types
// ============================================================================

// APIKey describes a signing identity. The secret is never listed.
type APIKey struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Revoked       bool       `json:"revoked"`
	RPM           int        `json:"rpm"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	LastRotatedAt *time.Time `json:"lastRotatedAt,omitempty"`
}

type APIKeyListResponse struct {
	APIKeys []APIKey `json:"apiKeys"`
}

// CreateAPIKeyRequest is the body of POST /v1/admin/api-keys. RPM 0 selects
// the default quota.
type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	RPM  int    `json:"rpm,omitempty" validate:"omitempty,min=1,max=100000"`
}

// APIKeySecretResponse is returned by create and rotate. The secret is shown
// only here.
type APIKeySecretResponse struct {
	APIKey APIKey `json:"apiKey"`
	Secret string `json:"secret"`
}
