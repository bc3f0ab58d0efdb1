package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelapi/internal/apperr"
)

const secret = "0123456789abcdef-secret"

func TestTokens_IssueParse(t *testing.T) {
	tokens := NewTokens(secret, "fuelapi", time.Hour)

	raw, exp, err := tokens.Issue(Principal{UserID: "user-a", Email: "a@example.com"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	p, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: "user-a", Email: "a@example.com"}, p)
}

func TestTokens_ParseRejects(t *testing.T) {
	tokens := NewTokens(secret, "fuelapi", time.Hour)

	expired := NewTokens(secret, "fuelapi", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredRaw, _, err := expired.Issue(Principal{UserID: "user-a"})
	require.NoError(t, err)

	otherSecretRaw, _, err := NewTokens("another-secret-value-123", "fuelapi", time.Hour).Issue(Principal{UserID: "user-a"})
	require.NoError(t, err)

	otherIssuerRaw, _, err := NewTokens(secret, "someone-else", time.Hour).Issue(Principal{UserID: "user-a"})
	require.NoError(t, err)

	noneRaw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-a"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "garbage", raw: "not-a-token"},
		{name: "expired", raw: expiredRaw},
		{name: "wrong secret", raw: otherSecretRaw},
		{name: "wrong issuer", raw: otherIssuerRaw},
		{name: "alg none", raw: noneRaw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Parse(tt.raw)
			require.Error(t, err)
			assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
		})
	}
}

func TestTokens_IssueEmptyUser(t *testing.T) {
	_, _, err := NewTokens(secret, "", time.Hour).Issue(Principal{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPrincipalContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{UserID: "user-a"})
	p, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-a", p.UserID)
}
