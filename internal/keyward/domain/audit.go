package domain

import "time"

type AuditAction string

const (
	AuditValidate     AuditAction = "validate"
	AuditCreate       AuditAction = "create"
	AuditRevoke       AuditAction = "revoke"
	AuditFreeze       AuditAction = "freeze"
	AuditUnfreeze     AuditAction = "unfreeze"
	AuditResetHWID    AuditAction = "reset_hwid"
	AuditRedeem       AuditAction = "redeem"
	AuditBulkCreate   AuditAction = "bulk_create"
	AuditBulkDelete   AuditAction = "bulk_delete"
	AuditDelete       AuditAction = "delete"
	AuditPurge        AuditAction = "purge"
	AuditAPIKeyCreate AuditAction = "api_key_create"
	AuditAPIKeyRotate AuditAction = "api_key_rotate"
	AuditAPIKeyRevoke AuditAction = "api_key_revoke"
)

// UnknownHWID is recorded when a caller supplied no hardware id.
const UnknownHWID = "unknown"

// AuditEntry is append-only. LicenseID is empty when no license resolved.
type AuditEntry struct {
	ID        string
	LicenseID string
	Action    AuditAction
	IPAddress string
	UserAgent string
	HWID      string
	Success   bool
	Message   string
	CreatedAt time.Time
}

// AuditStats aggregates the entries of a single license.
type AuditStats struct {
	TotalLogs    int
	Validations  int
	SuccessCount int
	FailCount    int
	LastEvent    *AuditEntry
}
