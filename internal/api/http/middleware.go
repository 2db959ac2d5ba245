package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/account-service/internal/observability"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

// Codes that point at someone holding bad or stolen credentials.
var authFailureCodes = map[string]bool{
	"INVALID_CREDENTIALS": true,
	"INVALID_TOKEN":       true,
	"BAD_TOKEN":           true,
	"INVALID_API_KEY":     true,
}

// Codes a well-behaved client hits during a normal session lifecycle.
var sessionLifecycleCodes = map[string]bool{
	"TOKEN_EXPIRED":       true,
	"SIGNED_OUT":          true,
	"RENEWAL_NOT_ALLOWED": true,
}

// RegisterMiddlewares installs request logging, the per-request deadline,
// no-store caching for token responses and error rendering, in that order.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(deadlineMiddleware(timeout))
	}
	app.Use(noStoreMiddleware())
	app.Use(errorRenderer(logger, metrics))
}

func deadlineMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// Responses carry session tokens, so intermediaries must not keep them.
func noStoreMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")
		c.Set(fiber.HeaderPragma, "no-cache")
		return c.Next()
	}
}

func errorRenderer(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}

			domainErr := apperrors.ToDomainError(err)
			metrics.RecordError(routePath(c), c.Method(), domainErr.Code)
			logRejection(logger, c, domainErr)

			body := fiber.Map{
				"code":    domainErr.Code,
				"message": domainErr.Message,
			}
			if len(domainErr.Details) > 0 {
				body["details"] = domainErr.Details
			}
			c.Status(domainErr.HTTPStatus)
			_ = c.JSON(fiber.Map{"error": body})
			err = nil
		}()
		return c.Next()
	}
}

func logRejection(logger *zap.Logger, c *fiber.Ctx, domainErr *apperrors.DomainError) {
	level := rejectionLevel(domainErr)
	if ce := logger.Check(level, "request rejected"); ce != nil {
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", routePath(c)),
			zap.String("code", domainErr.Code),
			zap.Int("status", domainErr.HTTPStatus),
		}
		switch {
		case level >= zapcore.ErrorLevel:
			fields = append(fields, zap.Error(domainErr))
		case authFailureCodes[domainErr.Code]:
			fields = append(fields, zap.String("ip", c.IP()))
		}
		ce.Write(fields...)
	}
}

func rejectionLevel(domainErr *apperrors.DomainError) zapcore.Level {
	switch {
	case domainErr.HTTPStatus >= fiber.StatusInternalServerError:
		return zapcore.ErrorLevel
	case authFailureCodes[domainErr.Code]:
		return zapcore.WarnLevel
	case sessionLifecycleCodes[domainErr.Code]:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func routePath(c *fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "" {
		return route.Path
	}
	return c.Path()
}
