package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	raw, err := issuer.Issue("admin@clinic.test")
	require.NoError(t, err)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "admin@clinic.test", claims.Email())
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestDefaultTTL(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 0)
	assert.Equal(t, DefaultTokenTTL, issuer.TTL())
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute)
	issued := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	issuer.now = fixedClock(issued)
	raw, err := issuer.Issue("admin@clinic.test")
	require.NoError(t, err)

	issuer.now = fixedClock(issued.Add(2 * time.Minute))
	_, err = issuer.Parse(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadToken))
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestTokenRejections(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	otherSecret, err := NewTokenIssuer("other-secret", time.Hour).Issue("admin@clinic.test")
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: exp}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "admin@clinic.test"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "admin@clinic.test", ExpiresAt: exp}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "admin@clinic.test", ExpiresAt: exp}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": otherSecret,
		"no subject":   noSubject,
		"no expiry":    noExpiry,
		"other hmac":   hs512,
		"alg none":     unsigned,
		"empty":        "",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Parse(raw)
			assert.ErrorIs(t, err, ErrBadToken)
		})
	}
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	assert.Panics(t, func() { NewTokenIssuer("  ", time.Hour) })
}
