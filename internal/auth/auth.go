// Package auth resolves the caller's identity from an HS256 bearer token and
// carries it through the request as a typed Principal.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"

	"fuelapi/internal/apperr"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Email  string
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the Principal stored in ctx.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.UserID != ""
}

// Claims are the token claims issued by this service.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 tokens.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a Tokens bound to secret.
func NewTokens(secret, issuer string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue signs a token for p that expires after the configured TTL.
func (t *Tokens) Issue(p Principal) (string, time.Time, error) {
	if p.UserID == "" {
		return "", time.Time{}, apperr.Validation(eris.New("auth: empty user id"))
	}
	now := t.now().UTC()
	exp := now.Add(t.ttl)
	claims := Claims{
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, eris.Wrap(err, "auth: sign token")
	}
	return signed, exp, nil
}

// Parse verifies raw and returns its Principal. Every failure is reported as
// an unauthorized error.
func (t *Tokens) Parse(raw string) (Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return Principal{}, apperr.Unauthorized(eris.Wrap(err, "auth: parse token"))
	}
	if !tok.Valid || claims.Subject == "" {
		return Principal{}, apperr.Unauthorized(errors.New("auth: token has no subject"))
	}
	return Principal{UserID: claims.Subject, Email: claims.Email}, nil
}
