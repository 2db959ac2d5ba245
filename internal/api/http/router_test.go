package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/repository/memory"
	"github.com/spec-kit/account-service/internal/service"
)

const password = "Passw0rd!"

type response struct {
	status int
	header string
	body   map[string]any
}

func (r response) data() map[string]any {
	data, _ := r.body["data"].(map[string]any)
	return data
}

func (r response) errorCode() string {
	errBody, _ := r.body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := &config.AuthConfig{JWTSecret: "router-secret", SessionTTLSeconds: 300, RenewalWindowSeconds: 30, BcryptCost: bcrypt.MinCost}
	hasher, err := auth.NewHasher(cfg.BcryptCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenManager(cfg)
	require.NoError(t, err)

	accounts := memory.NewAccountStore()
	suites, err := service.NewSuiteService(service.SuiteDependencies{SuiteRepo: memory.NewSuiteStore(), AccountRepo: accounts})
	require.NoError(t, err)
	accountSvc, err := service.NewAccountService(cfg, service.AccountDependencies{
		AccountRepo: accounts,
		SessionRepo: accounts,
		Suites:      suites,
		Hasher:      hasher,
		Tokens:      tokens,
	})
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("account-service", "test", nil, nil, metrics),
		Accounts:       handlers.NewAccountsHandler(accountSvc, nil),
		Suites:         handlers.NewSuitesHandler(accountSvc, suites, nil),
		AuthMiddleware: auth.NewAuthMiddleware(accountSvc),
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any, token string) response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{status: resp.StatusCode, header: resp.Header.Get(fiber.HeaderAuthorization)}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

func TestAccountLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)

	created := do(t, app, "POST", "/account/create", fiber.Map{"username": "dana", "email": "dana@x.com", "password": password}, "")
	require.Equal(t, fiber.StatusCreated, created.status)
	assert.Equal(t, "user", created.data()["type"])
	assert.NotContains(t, created.data(), "password_hash")

	dup := do(t, app, "POST", "/account/create", fiber.Map{"username": "dana", "email": "other@x.com", "password": password}, "")
	assert.Equal(t, fiber.StatusBadRequest, dup.status)
	assert.Equal(t, "DUPLICATE_USERNAME", dup.errorCode())

	upgraded := do(t, app, "POST", "/account/type", fiber.Map{"username": "dana", "password": password, "type": "developer"}, "")
	require.Equal(t, fiber.StatusOK, upgraded.status)
	apiKey, _ := upgraded.data()["api_key"].(string)
	require.Equal(t, created.data()["id"], apiKey)

	wrong := do(t, app, "POST", "/sso-suite/create", fiber.Map{"username": "dana", "password": "Wr0ngPass!", "apiKey": apiKey, "ssoSuiteName": "payments"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, wrong.status)
	assert.Equal(t, "INVALID_CREDENTIALS", wrong.errorCode())

	suite := do(t, app, "POST", "/sso-suite/create", fiber.Map{"username": "dana", "password": password, "apiKey": apiKey, "ssoSuiteName": "payments"}, "")
	require.Equal(t, fiber.StatusCreated, suite.status)
	suiteID, _ := suite.data()["id"].(string)
	require.NotEmpty(t, suiteID)

	login := do(t, app, "POST", "/account/authenticate", fiber.Map{"email": "dana@x.com", "password": password, "ssoSuiteId": suiteID}, "")
	require.Equal(t, fiber.StatusOK, login.status)
	token, _ := login.data()["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "JWT "+token, login.header)

	session := do(t, app, "GET", "/account/session", nil, token)
	require.Equal(t, fiber.StatusOK, session.status)
	assert.Equal(t, suiteID, session.data()["sso_suite_id"])

	mine := do(t, app, "GET", "/sso-suites", nil, token)
	require.Equal(t, fiber.StatusOK, mine.status)
	list, _ := mine.body["data"].([]any)
	assert.Len(t, list, 1)

	renew := do(t, app, "POST", "/account/authenticate", fiber.Map{"jwt": token, "renew": true}, "")
	assert.Equal(t, fiber.StatusBadRequest, renew.status)
	assert.Equal(t, "RENEWAL_NOT_ALLOWED", renew.errorCode())

	verified := do(t, app, "POST", "/account/authenticate", fiber.Map{"jwt": token}, "")
	require.Equal(t, fiber.StatusOK, verified.status)
	assert.Equal(t, token, verified.data()["token"])

	signOut := do(t, app, "POST", "/account/sign-out", fiber.Map{"jwt": token}, "")
	require.Equal(t, fiber.StatusOK, signOut.status)

	after := do(t, app, "POST", "/account/authenticate", fiber.Map{"jwt": token}, "")
	assert.Equal(t, fiber.StatusUnauthorized, after.status)
	assert.Equal(t, "SIGNED_OUT", after.errorCode())

	again := do(t, app, "POST", "/account/sign-out", fiber.Map{"jwt": token}, "")
	assert.Equal(t, fiber.StatusOK, again.status)
}

func TestDeveloperRouteRejectsUsers(t *testing.T) {
	app := newTestApp(t)

	do(t, app, "POST", "/account/create", fiber.Map{"username": "dev", "email": "dev@x.com", "password": password, "type": "developer"}, "")
	dev := do(t, app, "POST", "/account/type", fiber.Map{"username": "dev", "password": password, "type": "user"}, "")
	require.Equal(t, fiber.StatusOK, dev.status)
	assert.NotContains(t, dev.data(), "api_key")

	up := do(t, app, "POST", "/account/type", fiber.Map{"username": "dev", "password": password, "type": "developer"}, "")
	apiKey, _ := up.data()["api_key"].(string)
	suite := do(t, app, "POST", "/sso-suite/create", fiber.Map{"email": "dev@x.com", "password": password, "apiKey": apiKey, "ssoSuiteName": "s1"}, "")
	suiteID, _ := suite.data()["id"].(string)

	do(t, app, "POST", "/account/create", fiber.Map{"username": "alice", "email": "a@x.com", "password": password}, "")
	login := do(t, app, "POST", "/account/authenticate", fiber.Map{"username": "alice", "password": password, "ssoSuiteId": suiteID}, "")
	require.Equal(t, fiber.StatusOK, login.status)
	token, _ := login.data()["token"].(string)

	forbidden := do(t, app, "GET", "/sso-suites", nil, token)
	assert.Equal(t, fiber.StatusForbidden, forbidden.status)
	assert.Equal(t, "FORBIDDEN", forbidden.errorCode())

	anonymous := do(t, app, "GET", "/account/session", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, anonymous.status)
}

func TestRequestValidationErrors(t *testing.T) {
	app := newTestApp(t)

	missing := do(t, app, "POST", "/account/authenticate", fiber.Map{"password": password}, "")
	assert.Equal(t, fiber.StatusBadRequest, missing.status)
	assert.Equal(t, "VALIDATION_FAILED", missing.errorCode())

	badSuite := do(t, app, "POST", "/account/create", fiber.Map{"username": "alice", "email": "a@x.com", "password": password}, "")
	require.Equal(t, fiber.StatusCreated, badSuite.status)
	login := do(t, app, "POST", "/account/authenticate", fiber.Map{"username": "alice", "password": password, "ssoSuiteId": "nope"}, "")
	assert.Equal(t, "BAD_SUITE_ID", login.errorCode())

	garbled := do(t, app, "POST", "/account/sign-out", fiber.Map{"jwt": "garbage"}, "")
	assert.Equal(t, fiber.StatusBadRequest, garbled.status)
	assert.Equal(t, "BAD_TOKEN", garbled.errorCode())

	weak := do(t, app, "POST", "/account/create", fiber.Map{"username": "bob", "email": "b@x.com", "password": "weak"}, "")
	assert.Equal(t, "WEAK_PASSWORD", weak.errorCode())

	notFound := do(t, app, "GET", "/nowhere", nil, "")
	assert.Equal(t, fiber.StatusNotFound, notFound.status)
}

func TestHealthRoutes(t *testing.T) {
	app := newTestApp(t)

	live := do(t, app, "GET", "/health/live", nil, "")
	assert.Equal(t, fiber.StatusOK, live.status)
	assert.Equal(t, "alive", live.body["status"])

	ready := do(t, app, "GET", "/health/ready", nil, "")
	assert.Equal(t, fiber.StatusOK, ready.status)
	deps, _ := ready.body["dependencies"].(map[string]any)
	assert.Equal(t, "disabled", deps["postgres"])
	assert.Equal(t, "disabled", deps["redis"])

	metrics := do(t, app, "GET", "/health/metrics", nil, "")
	assert.Equal(t, fiber.StatusOK, metrics.status)
	assert.EqualValues(t, 2, metrics.data()["total_requests"])

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "account_service_http_request_duration_seconds")
}
