package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/domain"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Claims  *Claims
	Account *domain.Account
}

// SessionVerifier resolves a presented session token against the session store.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (*Claims, *domain.Account, error)
}

// AuthMiddleware validates session tokens and loads principals.
type AuthMiddleware struct {
	sessions SessionVerifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions SessionVerifier) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Handle enforces authentication for protected routes. Both the "Bearer" and
// "JWT" schemes are accepted.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, err := TokenFromHeader(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}

	claims, account, err := m.sessions.VerifySession(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(principalKey, &Principal{Claims: claims, Account: account})
	return c.Next()
}

// TokenFromHeader extracts the token from an Authorization header value.
func TokenFromHeader(header string) (string, error) {
	if header == "" {
		return "", apperrors.NewUnauthorized("UNAUTHORIZED", "missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.NewUnauthorized("UNAUTHORIZED", "invalid authorization header")
	}
	if !strings.EqualFold(parts[0], "Bearer") && !strings.EqualFold(parts[0], "JWT") {
		return "", apperrors.NewUnauthorized("UNAUTHORIZED", "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
