package keywardsdk

import (
	"context"
	"net/http"
	"net/url"
)

// OwnerSession calls the owner routes. Requests are signed with the
// client's API key and carry the owner's bearer token.
type OwnerSession struct {
	client *SDKClient
	token  string
}

func (s *OwnerSession) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	raw, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	return s.client.doSignedRequest(ctx, method, path, raw, map[string]string{
		"Authorization": "Bearer " + s.token,
	})
}

// Redeem claims an unowned license for the session's owner.
func (s *OwnerSession) Redeem(ctx context.Context, key string) (*License, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/licenses/redeem", RedeemRequest{Key: key})
	if err != nil {
		return nil, err
	}

	var lic License
	if err := decodeJSON(resp, &lic, http.StatusOK); err != nil {
		return nil, err
	}
	return &lic, nil
}

// MyLicenses lists the licenses the owner holds.
func (s *OwnerSession) MyLicenses(ctx context.Context) (*LicenseListResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/licenses/mine", nil)
	if err != nil {
		return nil, err
	}

	var list LicenseListResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return &list, nil
}

// MyLicenseStats returns the audit summary of an owned license.
func (s *OwnerSession) MyLicenseStats(ctx context.Context, id string) (*LicenseAuditStats, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/licenses/mine/"+url.PathEscape(id)+"/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats LicenseAuditStats
	if err := decodeJSON(resp, &stats, http.StatusOK); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ResetMyHWID clears the hardware binding of an owned license.
func (s *OwnerSession) ResetMyHWID(ctx context.Context, id string) (*License, error) {
	resp, err := s.do(ctx, http.MethodPut, "/v1/licenses/mine/"+url.PathEscape(id)+"/reset-hwid", nil)
	if err != nil {
		return nil, err
	}

	var lic License
	if err := decodeJSON(resp, &lic, http.StatusOK); err != nil {
		return nil, err
	}
	return &lic, nil
}
