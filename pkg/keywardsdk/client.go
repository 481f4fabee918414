package keywardsdk

import (
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/keyward/pkg/guard"
)

// SDKClient is a client for the keyward service. Requests to signed routes
// carry the request-signing headers for its API key.
type SDKClient struct {
	BaseURL     string
	HTTPClient  *http.Client
	Credentials guard.Credentials

	// Now stamps signed requests. Defaults to time.Now.
	Now func() time.Time
}

// NewSDKClient creates a client that signs with the given API key.
func NewSDKClient(baseURL, apiKeyID, apiSecret string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Credentials: guard.Credentials{KeyID: apiKeyID, Secret: apiSecret},
		Now:         time.Now,
	}
}

// NewOwnerSession returns a session that calls the owner routes with the
// given bearer token. Tokens are issued by the account service, not keyward.
func (c *SDKClient) NewOwnerSession(token string) *OwnerSession {
	return &OwnerSession{client: c, token: token}
}

// NewAdminSession returns a session for the admin API. totpSecret may be
// empty when the server does not require a second factor.
func (c *SDKClient) NewAdminSession(secret, totpSecret string) *AdminSession {
	return &AdminSession{client: c, secret: secret, totpSecret: totpSecret}
}
