package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Recovery recovers from panics and logs them. When fallback is set it renders
// the response instead of the default JSON 500, so beacon routes keep their
// success shaped answers.
func Recovery(logger *zap.Logger, fallback func(c *fiber.Ctx, err error) error) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			panicErr := fmt.Errorf("panic recovered: %v", r)
			fields := []zap.Field{
				zap.Error(panicErr),
				zap.ByteString("stack", debug.Stack()),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
			}
			if rid := requestID(c); rid != "" {
				fields = append(fields, zap.String("request_id", rid))
			}
			logger.Error("panic recovered", fields...)

			if fallback != nil {
				err = fallback(c, panicErr)
				return
			}
			err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		}()

		return c.Next()
	}
}
