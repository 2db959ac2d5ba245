package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/service"
)

const tokenScheme = "JWT "

// AccountsHandler exposes account and session endpoints.
type AccountsHandler struct {
	accounts *service.AccountService
	validate *validator.Validate
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accounts *service.AccountService, validate *validator.Validate) *AccountsHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &AccountsHandler{accounts: accounts, validate: validate}
}

// Create handles POST /account/create.
func (h *AccountsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAccountRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	account, err := h.accounts.CreateAccount(c.UserContext(), service.CreateAccountInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Type:     req.Type,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewAccountResponse(account),
	})
}

// Authenticate handles POST /account/authenticate. A request carrying a jwt is
// verified (and optionally renewed); otherwise credentials log in to a suite.
func (h *AccountsHandler) Authenticate(c *fiber.Ctx) error {
	var req dto.AuthenticateRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	var (
		issued *service.SessionToken
		err    error
	)
	if req.JWT != "" {
		issued, err = h.accounts.VerifyAndGetToken(c.UserContext(), req.JWT, req.Renew)
	} else {
		field, value := req.Credentials().Identity()
		issued, err = h.accounts.LoginAndGetToken(c.UserContext(), field, value, req.Password, req.SSOSuiteID)
	}
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderAuthorization, tokenScheme+issued.Token)
	return c.JSON(fiber.Map{
		"data": dto.TokenResponse{Token: issued.Token, ExpiresAt: issued.ExpiresAt},
	})
}

// SignOut handles POST /account/sign-out.
func (h *AccountsHandler) SignOut(c *fiber.Ctx) error {
	var req dto.SignOutRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return err
	}
	if err := h.accounts.SignOut(c.UserContext(), req.JWT); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"signed_out": true}})
}

// ChangeType handles POST /account/type.
func (h *AccountsHandler) ChangeType(c *fiber.Ctx) error {
	var req dto.ChangeAccountTypeRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	field, value := req.Identity()
	apiKey, err := h.accounts.ChangeAccountType(c.UserContext(), field, value, req.Password, req.Type)
	if err != nil {
		return err
	}

	accountType, _ := domain.ParseAccountType(req.Type)
	return c.JSON(fiber.Map{
		"data": dto.AccountTypeResponse{Type: accountType, APIKey: apiKey},
	})
}

// Session handles GET /account/session for an authenticated caller.
func (h *AccountsHandler) Session(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return c.JSON(fiber.Map{
		"data": dto.SessionResponse{
			AccountID: principal.Account.ID,
			Username:  principal.Account.Username,
			Type:      principal.Account.Type,
			SuiteID:   principal.Claims.SuiteID,
			ExpiresAt: principal.Claims.ExpiresAtTime(),
		},
	})
}
