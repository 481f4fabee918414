package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/keyward/pkg/cryptox"
	"github.com/aussiebroadwan/keyward/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://accounts.example.test"

func newSigner(t *testing.T, kid string) *jwtx.Signer {
	t.Helper()

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSigner(kid, pemKey)
	require.NoError(t, err)
	return signer
}

func keySetFor(t *testing.T, signers ...*jwtx.Signer) *jwtx.KeySet {
	t.Helper()

	keys := jwtx.NewKeySet()
	for _, s := range signers {
		require.NoError(t, keys.AddJWK(s.PublicJWK()))
	}
	return keys
}

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	signer := newSigner(t, "owner-1")
	claims := jwtx.NewOwnerClaims("alice", "Alice", testIssuer, []string{"keyward"}, 5*time.Minute, time.Now().UTC())

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(keySetFor(t, signer), testIssuer, []string{"keyward"})
	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Subject)
	require.Equal(t, "Alice", got.Username)
	require.NotEmpty(t, got.ID)
}

func TestVerifyRejects(t *testing.T) {
	t.Parallel()

	signer := newSigner(t, "owner-1")
	other := newSigner(t, "owner-2")
	now := time.Now().UTC()

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewOwnerClaims("alice", "", testIssuer, nil, time.Minute, now))
		require.NoError(t, err)

		_, err = jwtx.NewVerifier(keySetFor(t, signer), "https://elsewhere", nil).Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("unknown kid", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewOwnerClaims("alice", "", testIssuer, nil, time.Minute, now))
		require.NoError(t, err)

		_, err = jwtx.NewVerifier(keySetFor(t, other), testIssuer, nil).Verify(token)
		require.ErrorIs(t, err, jwtx.ErrNoKey)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewOwnerClaims("alice", "", testIssuer, nil, time.Minute, now))
		require.NoError(t, err)

		v := jwtx.NewVerifier(keySetFor(t, signer), testIssuer, nil)
		v.SetClock(func() time.Time { return now.Add(10 * time.Minute) })
		_, err = v.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewOwnerClaims("", "", testIssuer, nil, time.Minute, now))
		require.NoError(t, err)

		_, err = jwtx.NewVerifier(keySetFor(t, signer), testIssuer, nil).Verify(token)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := jwtx.NewVerifier(keySetFor(t, signer), testIssuer, nil).Verify("not.a.jwt")
		require.Error(t, err)
	})
}

func TestNewSignerRejectsInvalidPEM(t *testing.T) {
	_, err := jwtx.NewSigner("test", []byte("not-a-pem-key"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid PEM")
}
