package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/service"
)

// SuitesHandler exposes SSO suite registration.
type SuitesHandler struct {
	accounts *service.AccountService
	suites   *service.SuiteService
	validate *validator.Validate
}

// NewSuitesHandler constructs handler.
func NewSuitesHandler(accounts *service.AccountService, suites *service.SuiteService, validate *validator.Validate) *SuitesHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &SuitesHandler{accounts: accounts, suites: suites, validate: validate}
}

// Create handles POST /sso-suite/create. The password is checked here before the
// suite registry sees the request.
func (h *SuitesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSuiteRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	field, value := req.Identity()
	if _, err := h.accounts.VerifyCredentials(c.UserContext(), field, value, req.Password); err != nil {
		return err
	}

	id, err := h.suites.CreateSuite(c.UserContext(), field, value, req.APIKey, req.SSOSuiteName)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"id": id}})
}

// ListMine handles GET /sso-suites for developer accounts.
func (h *SuitesHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	suites, err := h.suites.ListSuitesByCreator(c.UserContext(), principal.Account.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSuiteResponses(suites)})
}
