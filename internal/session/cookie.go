package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
)

// CookieCodec signs session identifiers into the browser cookie so a tampered
// cookie never reaches the store lookup.
type CookieCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

type cookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewCookieCodec constructs a codec with the shared signing secret.
func NewCookieCodec(secret string, ttl time.Duration) *CookieCodec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CookieCodec{secret: []byte(secret), ttl: ttl, issuer: "enilai-gateway"}
}

// Issue signs the session identifier into a compact JWT cookie value.
func (c *CookieCodec) Issue(sessionID string) (string, error) {
	now := time.Now().UTC()
	claims := cookieClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session cookie")
	}
	return signed, nil
}

// Decode validates the cookie value and returns the session identifier.
func (c *CookieCodec) Decode(value string) (string, error) {
	claims := &cookieClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithIssuer(c.issuer))
	if err != nil || !token.Valid || claims.SessionID == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid session cookie")
	}
	return claims.SessionID, nil
}

// TTL exposes the cookie lifetime for Set-Cookie max-age.
func (c *CookieCodec) TTL() time.Duration {
	return c.ttl
}
