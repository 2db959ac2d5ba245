package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/domain"
)

// RequireAccountType ensures the principal's account has one of the allowed types.
func RequireAccountType(allowed ...domain.AccountType) fiber.Handler {
	allowedSet := make(map[domain.AccountType]struct{}, len(allowed))
	for _, t := range allowed {
		allowedSet[t] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Account == nil {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Account.Type]; !exists {
			return fiber.NewError(http.StatusForbidden, "account type not permitted")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal was loaded.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
