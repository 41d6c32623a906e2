package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebridge/tradebridge/pkg/auth"
)

const secret = "test-secret"

func TestIssueVerifyRoundTrip(t *testing.T) {
	iss := auth.NewIssuer(secret, time.Hour)

	tok, err := iss.Issue(auth.Identity{UserID: "u1", Role: auth.RoleWholesaler})
	require.NoError(t, err)

	id, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, auth.RoleWholesaler, id.Role)
}

func TestVerifyRejectsExpired(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	tok, err := auth.NewIssuer(secret, 24*time.Hour).
		WithClock(func() time.Time { return past }).
		Issue(auth.Identity{UserID: "u1", Role: auth.RoleRetailer})
	require.NoError(t, err)

	_, err = auth.NewIssuer(secret, 24*time.Hour).Verify(tok)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	start := time.Now()
	tok, err := auth.NewIssuer(secret, 24*time.Hour).
		WithClock(func() time.Time { return start }).
		Issue(auth.Identity{UserID: "u1", Role: auth.RoleRetailer})
	require.NoError(t, err)

	before := auth.NewIssuer(secret, 24*time.Hour).WithClock(func() time.Time { return start.Add(23 * time.Hour) })
	_, err = before.Verify(tok)
	assert.NoError(t, err)

	after := auth.NewIssuer(secret, 24*time.Hour).WithClock(func() time.Time { return start.Add(25 * time.Hour) })
	_, err = after.Verify(tok)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := auth.NewIssuer("other", time.Hour).Issue(auth.Identity{UserID: "u1", Role: auth.RoleAdmin})
	require.NoError(t, err)

	_, err = auth.NewIssuer(secret, time.Hour).Verify(tok)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	claims := auth.Claims{
		UserID: "u1",
		Role:   auth.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = auth.NewIssuer(secret, time.Hour).Verify(tok)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	claims := auth.Claims{
		UserID: "u1",
		Role:   auth.Role("superuser"),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = auth.NewIssuer(secret, time.Hour).Verify(tok)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := auth.NewIssuer(secret, time.Hour).Verify("garbage")
	assert.ErrorIs(t, err, auth.ErrMalformedToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("s3cret!")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, auth.CheckPassword(hash, "s3cret!"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
}

func TestParseRole(t *testing.T) {
	r, err := auth.ParseRole(" Wholesaler ")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleWholesaler, r)

	_, err = auth.ParseRole("owner")
	assert.Error(t, err)

	for _, role := range auth.Roles {
		parsed, err := auth.ParseRole(string(role))
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}
}
