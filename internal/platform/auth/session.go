package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session is the authenticated identity carried by every request. It is the
// explicit argument for all tenant-scoped operations; there is no ambient
// current-user lookup.
type Session struct {
	UserID     uuid.UUID
	Role       Role
	TenantID   string
	TenantName string
}

// Claims is the JWT payload for a session token.
type Claims struct {
	jwt.RegisteredClaims
	Role       string `json:"role"`
	TenantID   string `json:"tenant_id,omitempty"`
	TenantName string `json:"tenant_name,omitempty"`
}

// TokenIssuer signs and verifies session tokens with a shared HMAC secret.
// Tokens are time-boxed; expiry is the only termination mechanism.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl}
}

// Issue signs a session token for s.
func (t *TokenIssuer) Issue(s Session) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Role:       string(s.Role),
		TenantID:   s.TenantID,
		TenantName: s.TenantName,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses and validates a token string and reconstructs the Session.
func (t *TokenIssuer) Verify(tokenStr string) (*Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	role := Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role: %s", claims.Role)
	}

	return &Session{
		UserID:     uid,
		Role:       role,
		TenantID:   claims.TenantID,
		TenantName: claims.TenantName,
	}, nil
}
