package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
)

var (
	// ErrTokenExpired is returned with the decoded claims when the signature is
	// valid but the expiration instant has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers forged signatures, unexpected algorithms and bad structure.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenMalformed means the token could not even be decoded.
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims describes the session token payload.
type Claims struct {
	IdentifierField domain.IdentifierField `json:"idf"`
	SuiteID         string                 `json:"suite"`
	jwt.RegisteredClaims
}

// ExpiresAtTime returns the expiration instant, or the zero time when absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Remaining returns the time left before expiry relative to now.
func (c *Claims) Remaining(now time.Time) time.Duration {
	return c.ExpiresAtTime().Sub(now)
}

func (c *Claims) complete() bool {
	return c.Subject != "" && c.SuiteID != "" && c.IdentifierField.Valid() && c.ExpiresAt != nil
}

// TokenManager handles issuing and validating session tokens.
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	nowFunc func() time.Time
}

// TokenOption customises a TokenManager.
type TokenOption func(*TokenManager)

// WithNowFunc overrides the clock (primarily for testing).
func WithNowFunc(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		tm.nowFunc = now
	}
}

// NewTokenManager builds a manager from the shared auth configuration. An empty
// secret is rejected.
func NewTokenManager(cfg *config.AuthConfig, opts ...TokenOption) (*TokenManager, error) {
	if cfg == nil || cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	ttl := cfg.SessionTTL()
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	tm := &TokenManager{secret: []byte(cfg.JWTSecret), ttl: ttl, nowFunc: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm, nil
}

// Issue builds and signs a token binding subject to suiteID.
func (tm *TokenManager) Issue(subject string, field domain.IdentifierField, suiteID string) (string, time.Time, error) {
	now := tm.nowFunc()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		IdentifierField: field,
		SuiteID:         suiteID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, claims.ExpiresAtTime(), nil
}

// Verify validates signature and expiry. An expired token with a valid signature
// yields its claims together with ErrTokenExpired.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.nowFunc),
		jwt.WithExpirationRequired(),
	)
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return tm.secret, nil
	})
	switch {
	case err == nil && parsed.Valid:
	case errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid):
		if !claims.complete() {
			return nil, ErrTokenInvalid
		}
		return claims, ErrTokenExpired
	default:
		return nil, ErrTokenInvalid
	}

	if !claims.complete() {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// DecodeUnverified extracts claims without checking the signature. The result only
// says which session a token claims to belong to.
func (tm *TokenManager) DecodeUnverified(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, ErrTokenMalformed
	}
	if !claims.complete() {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// Now returns the manager's current time.
func (tm *TokenManager) Now() time.Time {
	return tm.nowFunc()
}
