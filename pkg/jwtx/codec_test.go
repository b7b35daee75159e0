package jwtx_test

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/inkwell-app/inkwell/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, secret string) *jwtx.Codec {
	t.Helper()

	c, err := jwtx.NewCodec(secret, "HS256", "inkwell", []string{"inkwell-api"})
	require.NoError(t, err)
	return c
}

func TestNewCodec(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := jwtx.NewCodec("", "HS256", "inkwell", nil)
		require.ErrorIs(t, err, jwtx.ErrBadConfig)
	})

	t.Run("rejects unknown algorithm", func(t *testing.T) {
		_, err := jwtx.NewCodec("secret", "RS256", "inkwell", nil)
		require.ErrorIs(t, err, jwtx.ErrBadConfig)
	})

	t.Run("empty algorithm defaults to HS256", func(t *testing.T) {
		_, err := jwtx.NewCodec("secret", "", "inkwell", nil)
		require.NoError(t, err)
	})
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, "access-secret")

	token, issued, err := codec.Issue("user-123", "fp-abc", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
	require.Equal(t, "fp-abc", claims.Fingerprint)
	require.Equal(t, "inkwell", claims.Issuer)
	require.Equal(t, issued.ID, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
}

func TestIssueMintsDistinctJTIs(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, "access-secret")

	_, a, err := codec.Issue("user-123", "", time.Minute)
	require.NoError(t, err)
	_, b, err := codec.Issue("user-123", "", time.Minute)
	require.NoError(t, err)

	require.NotEqual(t, a.ID, b.ID)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, "access-secret")

	// Issue with an already-past expiry; the failure must be the expired
	// kind, never the malformed kind.
	token, _, err := codec.Issue("user-123", "fp", -time.Second)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
	require.NotErrorIs(t, err, jwtx.ErrMalformed)
}

func TestSecretIsolation(t *testing.T) {
	t.Parallel()

	access := newTestCodec(t, "access-secret")
	refresh := newTestCodec(t, "refresh-secret")

	token, _, err := access.Issue("user-123", "", time.Minute)
	require.NoError(t, err)

	_, err = refresh.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrMalformed)

	token, _, err = refresh.Issue("user-123", "", time.Minute)
	require.NoError(t, err)

	_, err = access.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestVerifyIssuerAndAudience(t *testing.T) {
	t.Parallel()

	t.Run("issuer mismatch", func(t *testing.T) {
		minter, err := jwtx.NewCodec("secret", "HS256", "someone-else", []string{"inkwell-api"})
		require.NoError(t, err)
		checker, err := jwtx.NewCodec("secret", "HS256", "inkwell", []string{"inkwell-api"})
		require.NoError(t, err)

		token, _, err := minter.Issue("user-123", "", time.Minute)
		require.NoError(t, err)

		_, err = checker.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("audience mismatch", func(t *testing.T) {
		minter, err := jwtx.NewCodec("secret", "HS256", "inkwell", []string{"other-api"})
		require.NoError(t, err)
		checker, err := jwtx.NewCodec("secret", "HS256", "inkwell", []string{"inkwell-api"})
		require.NoError(t, err)

		token, _, err := minter.Issue("user-123", "", time.Minute)
		require.NoError(t, err)

		_, err = checker.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})
}

func TestVerifyGarbage(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, "access-secret")

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := codec.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	}
}

func TestDecodeUnsafe(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, "access-secret")

	t.Run("decodes expired tokens", func(t *testing.T) {
		token, issued, err := codec.Issue("user-123", "fp", -time.Second)
		require.NoError(t, err)

		claims, ok := jwtx.DecodeUnsafe(token)
		require.True(t, ok)
		require.Equal(t, issued.ID, claims.ID)
		require.Equal(t, "user-123", claims.Subject)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, ok := jwtx.DecodeUnsafe("definitely not a token")
		require.False(t, ok)

		_, ok = jwtx.DecodeUnsafe("")
		require.False(t, ok)
	})
}

func TestNewJTI(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 100 {
		jti := jwtx.NewJTI()
		require.Len(t, jti, 64) // 32 bytes hex-encoded

		_, err := hex.DecodeString(jti)
		require.NoError(t, err)

		_, dup := seen[jti]
		require.False(t, dup)
		seen[jti] = struct{}{}
	}
}

func TestRemainingLifetime(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, "access-secret")

	_, claims, err := codec.Issue("user-123", "", 10*time.Minute)
	require.NoError(t, err)

	remaining := claims.RemainingLifetime(time.Now())
	require.Greater(t, remaining, 9*time.Minute)
	require.LessOrEqual(t, remaining, 10*time.Minute)
}
