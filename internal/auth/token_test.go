package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	token, issued, err := svc.Issue("alice")
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username())
	require.Equal(t, issued.ID, claims.ID)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.Expiry(), 5*time.Second)
}

func TestTokenServiceRejectsTampering(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	token, _, err := svc.Issue("alice")
	require.NoError(t, err)
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	t.Run("payload swapped for another user", func(t *testing.T) {
		other, _, err := svc.Issue("bob")
		require.NoError(t, err)
		forged := parts[0] + "." + strings.Split(other, ".")[1] + "." + parts[2]

		_, err = svc.Verify(forged)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("signature byte flipped", func(t *testing.T) {
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}

		_, err := svc.Verify(parts[0] + "." + parts[1] + "." + string(sig))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("signed with another secret", func(t *testing.T) {
		other, err := NewTokenService("other-secret", time.Hour)
		require.NoError(t, err)
		foreign, _, err := other.Issue("alice")
		require.NoError(t, err)

		_, err = svc.Verify(foreign)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed structure", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "abc", "a.b", "a.b.c", parts[0] + "." + parts[1]} {
			_, err := svc.Verify(raw)
			require.ErrorIs(t, err, ErrInvalidToken, raw)
		}
	})

	t.Run("unsigned alg none", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "alice"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Verify(unsigned)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other HMAC algorithm", func(t *testing.T) {
		hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "alice"}).
			SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.Verify(hs512)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenServiceExpiry(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("test-secret", time.Minute)
	require.NoError(t, err)

	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }
	token, _, err := svc.Issue("alice")
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = svc.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceToleratesClockSkew(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	now := time.Now()
	verifier.now = func() time.Time { return now }

	issuer.now = func() time.Time { return now.Add(10 * time.Second) }
	token, _, err := issuer.Issue("alice")
	require.NoError(t, err)
	claims, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username())

	issuer.now = func() time.Time { return now.Add(5 * time.Minute) }
	token, _, err = issuer.Issue("alice")
	require.NoError(t, err)
	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceWithoutExpiry(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("test-secret", 0)
	require.NoError(t, err)

	token, issued, err := svc.Issue("alice")
	require.NoError(t, err)
	require.Nil(t, issued.ExpiresAt)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	require.True(t, claims.Expiry().IsZero())
}

func TestNewTokenServiceValidation(t *testing.T) {
	t.Parallel()

	_, err := NewTokenService(" ", time.Hour)
	require.Error(t, err)

	_, err = NewTokenService("secret", -time.Second)
	require.Error(t, err)

	svc, err := NewTokenService("secret", time.Hour)
	require.NoError(t, err)
	_, _, err = svc.Issue("")
	require.Error(t, err)
}
