package guard

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	HeaderAPIKey    = "x-api-key"
	HeaderTimestamp = "x-req-timestamp"
	HeaderNonce     = "x-req-nonce"
	HeaderSignature = "x-req-signature"
)

// CanonicalBody compacts a JSON body. Empty bodies and "{}" canonicalise to
// the empty string; a body that is not JSON is used as-is after trimming.
func CanonicalBody(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	if buf.String() == "{}" {
		return ""
	}
	return buf.String()
}

// Canonical builds METHOD\nPATH\nBODY\nTIMESTAMP\nNONCE.
func Canonical(method, path string, body []byte, timestamp int64, nonce string) string {
	return strings.Join([]string{
		strings.ToUpper(method),
		path,
		CanonicalBody(body),
		strconv.FormatInt(timestamp, 10),
		nonce,
	}, "\n")
}

// Sign returns the hex HMAC-SHA256 of payload under secret.
func Sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares two hex signatures in constant time. Malformed hex
// never matches.
func VerifySignature(expectedHex, gotHex string) bool {
	expected, err := hex.DecodeString(expectedHex)
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(gotHex)
	if err != nil || len(got) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare(expected, got) == 1
}

// Credentials identify a caller of signed routes.
type Credentials struct {
	KeyID  string
	Secret string
}

// SignedHeaders returns the four signing headers for a request.
func SignedHeaders(c Credentials, method, path string, body []byte, at time.Time, nonce string) http.Header {
	ts := at.UnixMilli()
	h := http.Header{}
	h.Set(HeaderAPIKey, c.KeyID)
	h.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	h.Set(HeaderNonce, nonce)
	h.Set(HeaderSignature, Sign(c.Secret, Canonical(method, path, body, ts, nonce)))
	return h
}
