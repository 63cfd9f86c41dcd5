package view

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelGIF(t *testing.T) {
	gif := PixelGIF()
	require.Len(t, gif, 42)
	assert.Equal(t, "GIF89a", string(gif[:6]))
	assert.Equal(t, byte(0x3b), gif[len(gif)-1])

	gif[0] = 'X'
	assert.Equal(t, byte('G'), PixelGIF()[0], "callers cannot mutate the shared pixel")
}

func TestSendPixel(t *testing.T) {
	app := fiber.New()
	app.Get("/", SendPixel)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, MIMEImageGIF, resp.Header.Get(fiber.HeaderContentType))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, PixelGIF(), body)
}

func TestNewConsumeAck(t *testing.T) {
	assert.Equal(t, ConsumeAck{Status: "OK"}, NewConsumeAck(nil))
	assert.Equal(t, ConsumeAck{Status: "NOT OK", Exception: "boom"}, NewConsumeAck(errors.New("boom")))
}
