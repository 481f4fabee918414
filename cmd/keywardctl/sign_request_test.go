package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/keyward/pkg/guard"
)

type staticKeys []guard.APIKey

func (s staticKeys) ListAPIKeys(context.Context) ([]guard.APIKey, error) { return s, nil }

// parseHeaders reads the "name: value" lines printed by sign-request.
func parseHeaders(t *testing.T, output string) http.Header {
	t.Helper()
	h := http.Header{}
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		name, value, ok := strings.Cut(line, ": ")
		require.True(t, ok, line)
		h.Set(name, value)
	}
	return h
}

func TestSignRequestPassesGuard(t *testing.T) {
	const secret = "0123456789abcdef0123456789abcdef"
	body := `{"key":"abc"}`

	output, err := executeCommand([]string{
		"sign-request", "--key-id", "loader", "--secret", secret,
		"--path", "/v1/validate", "--body", body,
	})
	require.NoError(t, err)

	headers := parseHeaders(t, output)
	require.Equal(t, "loader", headers.Get(guard.HeaderAPIKey))
	require.NotEmpty(t, headers.Get(guard.HeaderNonce))

	cache := guard.NewKeyCache(staticKeys{{ID: "loader", Secret: secret, RPM: 10}})
	require.NoError(t, cache.Reload(context.Background()))
	g := guard.New(cache, guard.NewMemoryNonceStore(time.Now))

	reached := false
	handler := g.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/validate", strings.NewReader(body))
	for name := range headers {
		req.Header.Set(name, headers.Get(name))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	require.True(t, reached)
}

func TestSignRequestFixedNonce(t *testing.T) {
	output, err := executeCommand([]string{
		"sign-request", "--key-id", "loader", "--secret", "s3cret",
		"--method", "get", "--path", "/v1/time?x=1", "--nonce", "fixed-nonce",
	})
	require.NoError(t, err)

	headers := parseHeaders(t, output)
	require.Equal(t, "fixed-nonce", headers.Get(guard.HeaderNonce))

	ts, err := strconv.ParseInt(headers.Get(guard.HeaderTimestamp), 10, 64)
	require.NoError(t, err)
	want := guard.Sign("s3cret", guard.Canonical(http.MethodGet, "/v1/time", nil, ts, "fixed-nonce"))
	require.Equal(t, want, headers.Get(guard.HeaderSignature))
}

func TestSignRequestCurl(t *testing.T) {
	output, err := executeCommand([]string{
		"sign-request", "--key-id", "loader", "--secret", "s3cret",
		"--body", `{"key":"abc"}`, "--curl", "http://localhost:8080/",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(output, "curl -X POST http://localhost:8080/v1/validate"), output)
	require.Contains(t, output, "-H '"+guard.HeaderAPIKey+": loader'")
	require.Contains(t, output, `--data '{"key":"abc"}'`)
}

func TestSignRequestRejects(t *testing.T) {
	t.Setenv("KEYWARD_API_KEY", "")
	t.Setenv("KEYWARD_API_SECRET", "")

	_, err := executeCommand([]string{"sign-request"})
	require.ErrorContains(t, err, "--key-id and --secret are required")

	_, err = executeCommand([]string{"sign-request", "--key-id", "a", "--secret", "b", "--path", "v1/validate"})
	require.ErrorContains(t, err, "--path must start with /")

	_, err = executeCommand([]string{"sign-request", "--key-id", "a", "--secret", "b", "--body", "{}", "--body-file", "x"})
	require.ErrorContains(t, err, "mutually exclusive")
}
