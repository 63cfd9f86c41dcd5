package view

import "github.com/gofiber/fiber/v2"

const (
	AckOK    = "OK"
	AckNotOK = "NOT OK"
)

// ConsumeAck is the acknowledgement body of the consume endpoint.
type ConsumeAck struct {
	Status    string `json:"status"`
	Exception string `json:"exception,omitempty"`
}

// NewConsumeAck maps a pipeline outcome onto the acknowledgement body.
func NewConsumeAck(err error) ConsumeAck {
	if err != nil {
		return ConsumeAck{Status: AckNotOK, Exception: err.Error()}
	}
	return ConsumeAck{Status: AckOK}
}

// SendConsumeAck always answers 200; callers inspect the status field.
func SendConsumeAck(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusOK).JSON(NewConsumeAck(err))
}
