package view

import "github.com/gofiber/fiber/v2"

// MIMEImageGIF is the content type of the tracking pixel.
const MIMEImageGIF = "image/gif"

// pixelGIF is a 1x1 transparent GIF89a.
var pixelGIF = [...]byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x01, 0x44, 0x00, 0x3b,
}

// PixelGIF returns a copy of the pixel bytes.
func PixelGIF() []byte {
	b := pixelGIF
	return b[:]
}

// SendPixel writes the pixel with caching disabled so every load reaches the server.
func SendPixel(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate, max-age=0")
	c.Set(fiber.HeaderPragma, "no-cache")
	c.Set(fiber.HeaderContentType, MIMEImageGIF)
	return c.Status(fiber.StatusOK).Send(pixelGIF[:])
}
