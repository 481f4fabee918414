package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/keyward/pkg/cryptox"
	"github.com/aussiebroadwan/keyward/pkg/httpx"
	"github.com/aussiebroadwan/keyward/pkg/jwtx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler, mw("outer"), mw("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestAdminAuth(t *testing.T) {
	key, err := totp.Generate(totp.GenerateOpts{Issuer: "keyward", AccountName: "admin"})
	require.NoError(t, err)

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	code, err := totp.GenerateCode(key.Secret(), now)
	require.NoError(t, err)

	var admitted bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admitted = httpx.IsAdmin(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	serve := func(cfg httpx.AdminConfig, headers map[string]string) int {
		admitted = false
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/licenses", nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		httpx.AdminAuth(cfg)(next).ServeHTTP(rec, req)
		return rec.Code
	}

	secretOnly := httpx.AdminConfig{Secret: "s3cret"}
	withOTP := httpx.AdminConfig{Secret: "s3cret", TOTPSecret: key.Secret(), Now: func() time.Time { return now }}

	require.Equal(t, http.StatusNoContent, serve(secretOnly, map[string]string{httpx.HeaderAdminSecret: "s3cret"}))
	require.True(t, admitted)

	require.Equal(t, http.StatusUnauthorized, serve(secretOnly, map[string]string{httpx.HeaderAdminSecret: "nope"}))
	require.False(t, admitted)

	require.Equal(t, http.StatusUnauthorized, serve(withOTP, map[string]string{httpx.HeaderAdminSecret: "s3cret"}))
	require.Equal(t, http.StatusUnauthorized, serve(withOTP, map[string]string{
		httpx.HeaderAdminSecret: "s3cret",
		httpx.HeaderAdminOTP:    "000000",
	}))
	require.Equal(t, http.StatusNoContent, serve(withOTP, map[string]string{
		httpx.HeaderAdminSecret: "s3cret",
		httpx.HeaderAdminOTP:    code,
	}))

	require.Equal(t, http.StatusNotFound, serve(httpx.AdminConfig{}, map[string]string{httpx.HeaderAdminSecret: ""}))
}

func TestOwnerAuth(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSigner("owner-key", pemKey)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddJWK(signer.PublicJWK()))
	verifier := jwtx.NewVerifier(keys, "", nil)

	var owner string
	h := httpx.OwnerAuth(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, _ = httpx.OwnerIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token, err := signer.Sign(jwtx.NewOwnerClaims("alice", "", "", nil, time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/licenses/mine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice", owner)

	req = httptest.NewRequest(http.MethodGet, "/v1/licenses/mine", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")

	req = httptest.NewRequest(http.MethodGet, "/v1/licenses/mine", nil)
	req.Header.Set("Authorization", "Bearer "+token[:len(token)-4]+"AAAA")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

type decodeTarget struct {
	Key   string `json:"key" validate:"required,max=64"`
	Count int    `json:"count,omitempty" validate:"omitempty,min=1,max=100"`
}

func TestDecodeJSON(t *testing.T) {
	decode := func(body string, allowEmpty bool) (decodeTarget, error) {
		var dst decodeTarget
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		return dst, httpx.DecodeJSON(req, &dst, allowEmpty)
	}

	got, err := decode(`{"key":"bcwtfAAAA","count":3}`, false)
	require.NoError(t, err)
	require.Equal(t, decodeTarget{Key: "bcwtfAAAA", Count: 3}, got)

	_, err = decode(``, false)
	require.ErrorIs(t, err, httpx.ErrEmptyBody)

	_, err = decode(`{"key":`, false)
	require.ErrorIs(t, err, httpx.ErrInvalidJSON)

	_, err = decode(`{"key":"x","extra":1}`, false)
	require.ErrorIs(t, err, httpx.ErrInvalidJSON)

	_, err = decode(`{"count":500}`, false)
	var verr *httpx.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "required", verr.Fields["key"])
	require.Equal(t, "max", verr.Fields["count"])
}
