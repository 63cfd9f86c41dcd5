package util

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sifan077/blt/internal/app/service"
)

// LocalRequestID is the fiber local holding the request id.
const LocalRequestID = "request_id"

// RequestInfo copies the request fields used for IP resolution, fingerprinting
// and tracing out of the fiber context. Values outlive the handler inside
// background tasks, so they are detached from fiber's reusable buffers.
func RequestInfo(c *fiber.Ctx) service.RequestInfo {
	requestID, _ := c.Locals(LocalRequestID).(string)

	return service.RequestInfo{
		Method:         utils.CopyString(c.Method()),
		Protocol:       string(c.Request().Header.Protocol()),
		ClientIP:       utils.CopyString(c.Get("Client-IP")),
		ForwardedFor:   utils.CopyString(c.Get(fiber.HeaderXForwardedFor)),
		RemoteAddr:     utils.CopyString(c.IP()),
		AcceptEncoding: utils.CopyString(c.Get(fiber.HeaderAcceptEncoding)),
		AcceptLanguage: utils.CopyString(c.Get(fiber.HeaderAcceptLanguage)),
		UserAgent:      utils.CopyString(c.Get(fiber.HeaderUserAgent)),
		Accept:         utils.CopyString(c.Get(fiber.HeaderAccept)),
		Referrer:       utils.CopyString(c.Get(fiber.HeaderReferer)),
		RequestID:      requestID,
	}
}
