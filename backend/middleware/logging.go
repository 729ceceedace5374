package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"learnhub/backend/logger"
)

func LoggingMiddleware(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		kv := []interface{}{
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
		}
		if id, ok := Identity(c); ok {
			kv = append(kv, "user_id", id.UserID)
		}
		switch {
		case err != nil:
			log.Error("request failed", append(kv, "error", err)...)
		case status >= fiber.StatusInternalServerError:
			log.Error("request", kv...)
		case status >= fiber.StatusBadRequest:
			log.Warn("request", kv...)
		default:
			log.Info("request", kv...)
		}
		return err
	}
}
