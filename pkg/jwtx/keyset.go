package jwtx

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

var ErrNoKey = errors.New("jwtx: key not found")

// maxJWKSBytes bounds how much of a JWKS response is read.
const maxJWKSBytes = 1 << 20

// KeySet holds the owner-token verification keys in memory. It is refreshed
// from the identity provider's JWKS endpoint and read by every verifier.
type KeySet struct {
	mu        sync.RWMutex
	jwks      JWKS
	pub       map[string]ed25519.PublicKey
	fetchedAt time.Time
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{
		pub: make(map[string]ed25519.PublicKey),
	}
}

// AddJWK adds a single JWK to the set.
func (k *KeySet) AddJWK(j JWK) error {
	pub, err := j.PublicKey()
	if err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub[j.Kid] = pub
	k.jwks.Keys = append(k.jwks.Keys, j)
	return nil
}

// Get returns the public key for the given kid.
func (k *KeySet) Get(kid string) (ed25519.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if pk, ok := k.pub[kid]; ok {
		return pk, nil
	}
	return nil, ErrNoKey
}

// PublicJWKS returns a snapshot of the set.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return JWKS{Keys: append([]JWK(nil), k.jwks.Keys...)}
}

// IsReady returns true if the KeySet has at least one key loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.pub) > 0
}

// FetchedAt reports when the set was last replaced from a JWKS.
func (k *KeySet) FetchedAt() time.Time {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.fetchedAt
}

// ResetFromJWKS replaces all keys. Keys of an unsupported type are skipped
// so a provider that also publishes RSA keys does not break refresh.
func (k *KeySet) ResetFromJWKS(jwks JWKS, at time.Time) error {
	next := make(map[string]ed25519.PublicKey, len(jwks.Keys))
	kept := make([]JWK, 0, len(jwks.Keys))
	for _, j := range jwks.Keys {
		pub, err := j.PublicKey()
		if errors.Is(err, ErrUnsupportedKey) {
			continue
		}
		if err != nil {
			return fmt.Errorf("jwtx: key %q: %w", j.Kid, err)
		}
		next[j.Kid] = pub
		kept = append(kept, j)
	}
	if len(next) == 0 {
		return ErrNoKey
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub = next
	k.jwks = JWKS{Keys: kept}
	k.fetchedAt = at
	return nil
}

// NewFetchClient returns the retrying HTTP client used for JWKS fetches.
func NewFetchClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil
	return client
}

// FetchJWKS downloads and decodes a JWKS document.
func FetchJWKS(ctx context.Context, client *retryablehttp.Client, url string) (JWKS, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return JWKS{}, fmt.Errorf("jwtx: build jwks request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return JWKS{}, fmt.Errorf("jwtx: fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return JWKS{}, fmt.Errorf("jwtx: fetch jwks: unexpected status %d", resp.StatusCode)
	}

	var jwks JWKS
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJWKSBytes)).Decode(&jwks); err != nil {
		return JWKS{}, fmt.Errorf("jwtx: decode jwks: %w", err)
	}
	return jwks, nil
}

// Refresh fetches url and replaces the set's keys on success. On failure
// the previous keys stay in place.
func (k *KeySet) Refresh(ctx context.Context, client *retryablehttp.Client, url string) error {
	jwks, err := FetchJWKS(ctx, client, url)
	if err != nil {
		return err
	}
	return k.ResetFromJWKS(jwks, time.Now().UTC())
}
