package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes one access log entry per request. Paths listed in quiet are
// logged at debug level, which keeps pixel and health traffic out of info logs.
func Logger(logger *zap.Logger, quiet ...string) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	quietPaths := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		quietPaths[p] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get(fiber.HeaderUserAgent)),
		}
		if rid := requestID(c); rid != "" {
			fields = append(fields, zap.String("request_id", rid))
		}

		if err != nil {
			logger.Error("request error", append(fields, zap.Error(err))...)
			return err
		}

		level := zapcore.InfoLevel
		if _, ok := quietPaths[c.Path()]; ok {
			level = zapcore.DebugLevel
		}
		if ce := logger.Check(level, "request"); ce != nil {
			ce.Write(fields...)
		}
		return nil
	}
}
