package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

// bindAndValidate parses the JSON body into dst and runs struct validation.
func bindAndValidate(c *fiber.Ctx, validate *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		details := make(map[string]any, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[jsonName(fe.Field())] = fe.Tag()
		}
		return apperrors.NewValidationError("request validation failed", details)
	}
	return nil
}

func jsonName(field string) string {
	switch field {
	case "JWT":
		return "jwt"
	case "SSOSuiteID":
		return "ssoSuiteId"
	case "SSOSuiteName":
		return "ssoSuiteName"
	case "APIKey":
		return "apiKey"
	}
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
