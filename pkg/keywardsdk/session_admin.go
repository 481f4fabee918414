package keywardsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pquerna/otp/totp"
)

// Admin credential headers.
const (
	HeaderAdminSecret = "x-admin-secret"
	HeaderAdminOTP    = "x-admin-otp"
)

// AdminSession calls the administrative API. Admin routes are not signed;
// they authenticate with the admin secret and, when configured, a TOTP code
// generated per request.
type AdminSession struct {
	client     *SDKClient
	secret     string
	totpSecret string
}

func (s *AdminSession) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	raw, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{HeaderAdminSecret: s.secret}
	if s.totpSecret != "" {
		code, err := totp.GenerateCode(s.totpSecret, s.client.now())
		if err != nil {
			return nil, err
		}
		headers[HeaderAdminOTP] = code
	}
	return s.client.doRequest(ctx, method, path, raw, headers)
}

func licensePath(id string, suffix string) string {
	return "/v1/admin/licenses/" + url.PathEscape(id) + suffix
}

// CreateLicense issues a single license.
func (s *AdminSession) CreateLicense(ctx context.Context, req CreateLicenseRequest) (*License, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/admin/licenses", req)
	if err != nil {
		return nil, err
	}

	var lic License
	if err := decodeJSON(resp, &lic, http.StatusCreated); err != nil {
		return nil, err
	}
	return &lic, nil
}

// BulkCreateLicenses issues req.Count licenses at once.
func (s *AdminSession) BulkCreateLicenses(ctx context.Context, req BulkCreateRequest) (*LicenseListResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/admin/licenses/bulk", req)
	if err != nil {
		return nil, err
	}

	var list LicenseListResponse
	if err := decodeJSON(resp, &list, http.StatusCreated); err != nil {
		return nil, err
	}
	return &list, nil
}

// BulkDeleteLicenses deletes the listed licenses. Unknown ids are skipped.
func (s *AdminSession) BulkDeleteLicenses(ctx context.Context, ids []string) (int, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/admin/licenses/bulk-delete", BulkDeleteRequest{IDs: ids})
	if err != nil {
		return 0, err
	}

	var out BulkDeleteResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

// ListLicensesOptions filters ListLicenses. Zero values are omitted.
type ListLicensesOptions struct {
	Status  string
	OwnerID string
	Limit   int
	Offset  int
}

func (o ListLicensesOptions) query() string {
	q := url.Values{}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.OwnerID != "" {
		q.Set("ownerId", o.OwnerID)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (s *AdminSession) ListLicenses(ctx context.Context, opts ListLicensesOptions) (*LicenseListResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/admin/licenses"+opts.query(), nil)
	if err != nil {
		return nil, err
	}

	var list LicenseListResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *AdminSession) GetLicense(ctx context.Context, id string) (*License, error) {
	return s.licenseCall(ctx, http.MethodGet, licensePath(id, ""))
}

func (s *AdminSession) DeleteLicense(ctx context.Context, id string) error {
	resp, err := s.do(ctx, http.MethodDelete, licensePath(id, ""), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

func (s *AdminSession) FreezeLicense(ctx context.Context, id string) (*License, error) {
	return s.licenseCall(ctx, http.MethodPut, licensePath(id, "/freeze"))
}

func (s *AdminSession) UnfreezeLicense(ctx context.Context, id string) (*License, error) {
	return s.licenseCall(ctx, http.MethodPut, licensePath(id, "/unfreeze"))
}

func (s *AdminSession) RevokeLicense(ctx context.Context, id string) (*License, error) {
	return s.licenseCall(ctx, http.MethodPut, licensePath(id, "/revoke"))
}

func (s *AdminSession) ResetLicenseHWID(ctx context.Context, id string) (*License, error) {
	return s.licenseCall(ctx, http.MethodPut, licensePath(id, "/reset-hwid"))
}

func (s *AdminSession) licenseCall(ctx context.Context, method, path string) (*License, error) {
	resp, err := s.do(ctx, method, path, nil)
	if err != nil {
		return nil, err
	}

	var lic License
	if err := decodeJSON(resp, &lic, http.StatusOK); err != nil {
		return nil, err
	}
	return &lic, nil
}

// LicenseStats counts all licenses by state.
func (s *AdminSession) LicenseStats(ctx context.Context) (*LicenseStatsResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/admin/licenses/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats LicenseStatsResponse
	if err := decodeJSON(resp, &stats, http.StatusOK); err != nil {
		return nil, err
	}
	return &stats, nil
}

// LicenseAuditStats summarises the audit history of any license.
func (s *AdminSession) LicenseAuditStats(ctx context.Context, id string) (*LicenseAuditStats, error) {
	resp, err := s.do(ctx, http.MethodGet, licensePath(id, "/stats"), nil)
	if err != nil {
		return nil, err
	}

	var stats LicenseAuditStats
	if err := decodeJSON(resp, &stats, http.StatusOK); err != nil {
		return nil, err
	}
	return &stats, nil
}

// PurgeAudit deletes the whole audit log and returns how many entries went.
func (s *AdminSession) PurgeAudit(ctx context.Context) (int64, error) {
	resp, err := s.do(ctx, http.MethodDelete, "/v1/admin/audit", nil)
	if err != nil {
		return 0, err
	}

	var out PurgeAuditResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return 0, err
	}
	return out.Purged, nil
}

func (s *AdminSession) ListAPIKeys(ctx context.Context) (*APIKeyListResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/admin/api-keys", nil)
	if err != nil {
		return nil, err
	}

	var list APIKeyListResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateAPIKey issues a signing key. The returned secret is not retrievable
// later.
func (s *AdminSession) CreateAPIKey(ctx context.Context, req CreateAPIKeyRequest) (*APIKeySecretResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/admin/api-keys", req)
	if err != nil {
		return nil, err
	}

	var out APIKeySecretResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminSession) RotateAPIKey(ctx context.Context, id string) (*APIKeySecretResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/admin/api-keys/"+url.PathEscape(id)+"/rotate", nil)
	if err != nil {
		return nil, err
	}

	var out APIKeySecretResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminSession) RevokeAPIKey(ctx context.Context, id string) error {
	resp, err := s.do(ctx, http.MethodDelete, "/v1/admin/api-keys/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
