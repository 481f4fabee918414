package keywardsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Validate checks a license key. A rejected key is not an error: the
// outcome is reported in the response. Errors are returned only for
// malformed requests, signing failures and server faults.
func (c *SDKClient) Validate(ctx context.Context, req ValidateRequest) (*ValidateResponse, error) {
	body, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doSignedRequest(ctx, http.MethodPost, "/v1/validate", body, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusBadRequest, http.StatusNotFound:
		var out struct {
			ValidateResponse
			Error string `json:"error"`
		}
		if err := json.Unmarshal(bodyBytes, &out); err == nil && out.Error == "" && out.Outcome != "" {
			return &out.ValidateResponse, nil
		}
	}
	return nil, parseErrorResponse(resp, bodyBytes)
}

// TrustedTime returns the server's trusted time reading.
func (c *SDKClient) TrustedTime(ctx context.Context) (*TimeResponse, error) {
	resp, err := c.doSignedRequest(ctx, http.MethodGet, "/v1/time", nil, nil)
	if err != nil {
		return nil, err
	}

	var reading TimeResponse
	if err := decodeJSON(resp, &reading, http.StatusOK); err != nil {
		return nil, err
	}

	return &reading, nil
}
