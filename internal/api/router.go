package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const requestIDKey = "requestID"

// RouterOptions configure the fiber app around a Handler.
type RouterOptions struct {
	// MaxUploadSize limits the request body in bytes; 0 keeps fiber's default.
	MaxUploadSize int
	// RateLimit is the number of parse requests allowed per second; 0
	// disables limiting.
	RateLimit float64
}

// NewRouter wires the handlers into a fiber app.
func NewRouter(h *Handler, opts RouterOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "cc-statement-parser",
		BodyLimit:             opts.MaxUploadSize,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			h.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
			return writeError(c, code, err.Error())
		},
	})

	app.Use(recover.New())
	app.Use(requestID)

	api := app.Group("/api")
	api.Get("/health", h.HandleHealth)
	api.Post("/parse", rateLimit(opts.RateLimit, h.logger), h.HandleParse)

	return app
}

// requestID tags every request with a UUID, echoed in X-Request-ID.
func requestID(c *fiber.Ctx) error {
	id := uuid.NewString()
	c.Locals(requestIDKey, id)
	c.Set(fiber.HeaderXRequestID, id)
	return c.Next()
}

func rateLimit(perSecond float64, logger *zap.Logger) fiber.Handler {
	if perSecond <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	return func(c *fiber.Ctx) error {
		if !limiter.Allow() {
			logger.Warn("rate limit exceeded", zap.String("path", c.Path()))
			return writeError(c, fiber.StatusTooManyRequests, "Too many requests, try again shortly.")
		}
		return c.Next()
	}
}
