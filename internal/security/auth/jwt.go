package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
)

// Verification errors. Handlers collapse all of them into a uniform 401;
// they stay distinct here so tests and logs can tell them apart.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims is the signed token payload asserting caller identity, role,
// and platform.
type Claims struct {
	UserID       string      `json:"user_id"`
	Email        string      `json:"email"`
	Role         domain.Role `json:"role"`
	PlatformID   string      `json:"platform_id"`
	PlatformCode string      `json:"platform_code"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens. Tokens are stateless:
// there is no revocation list, so a blocked or downgraded account keeps a
// nominally valid token until expiry. Routes that must see live state
// re-query the store instead of trusting claims.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a token manager. The secret is injected
// configuration, never read from ambient state here.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	if issuer == "" {
		issuer = "tgoo-auth"
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue signs a token for the given user and platform using the default TTL.
func (tm *TokenManager) Issue(user *domain.User, platform *domain.Platform) (string, error) {
	return tm.IssueWithTTL(user, platform, tm.ttl)
}

// IssueWithTTL signs a token with an explicit lifetime.
func (tm *TokenManager) IssueWithTTL(user *domain.User, platform *domain.Platform, ttl time.Duration) (string, error) {
	if user.ID == "" || platform.ID == "" {
		return "", fmt.Errorf("user id and platform id required")
	}
	now := time.Now()
	claims := Claims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		PlatformID:   platform.ID,
		PlatformCode: platform.Code,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    tm.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// Verify parses and validates a token, returning its claims.
func (tm *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// ExtractToken pulls the bearer token out of an Authorization header value.
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
