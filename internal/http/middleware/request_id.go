package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	httpUtil "github.com/sifan077/blt/internal/http/util"
)

const (
	RequestIDHeader = "X-Request-ID"
	maxRequestIDLen = 64
)

// RequestID tags each request with an id that ends up in access logs and the
// beacon's audit trace. A caller supplied id is kept when it is short enough.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(RequestIDHeader)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		} else {
			rid = utils.CopyString(rid)
		}
		c.Set(RequestIDHeader, rid)
		c.Locals(httpUtil.LocalRequestID, rid)
		return c.Next()
	}
}

func requestID(c *fiber.Ctx) string {
	rid, _ := c.Locals(httpUtil.LocalRequestID).(string)
	return rid
}
