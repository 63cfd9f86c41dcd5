package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/blt/config"
	"github.com/sifan077/blt/internal/app/service"
	httpUtil "github.com/sifan077/blt/internal/http/util"
	"github.com/sifan077/blt/internal/http/view"
	"go.uber.org/zap"
)

const (
	PixelPath   = "/pixel"
	ConsumePath = "/consume"
)

// Stasher runs the ingestion pipeline for one beacon.
type Stasher interface {
	Stash(ctx context.Context, in service.BeaconInput, req service.RequestInfo, jar service.CookieJar) error
}

// BeaconDeps groups dependencies required by the beacon endpoints.
type BeaconDeps struct {
	Logger   *zap.Logger
	Ingestor Stasher
	Beacon   config.BeaconConfig
}

// BeaconHandler serves the pixel and consume entry points. Neither ever
// answers with an error status.
type BeaconHandler struct {
	logger   *zap.Logger
	ingestor Stasher
	beacon   config.BeaconConfig
}

// NewBeaconHandler creates a beacon handler with the provided dependencies.
func NewBeaconHandler(deps BeaconDeps) *BeaconHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BeaconHandler{
		logger:   logger,
		ingestor: deps.Ingestor,
		beacon:   deps.Beacon,
	}
}

// Register wires beacon routes onto the provided router.
func (h *BeaconHandler) Register(router fiber.Router) {
	router.Get(PixelPath, h.Pixel)
	router.Post(ConsumePath, h.Consume)
}

// Pixel handles GET /pixel. The image is returned whatever the pipeline outcome.
func (h *BeaconHandler) Pixel(c *fiber.Ctx) error {
	_ = h.stash(c, httpUtil.PixelInput(c))
	return view.SendPixel(c)
}

// Consume handles POST /consume and maps the outcome onto a JSON acknowledgement.
func (h *BeaconHandler) Consume(c *fiber.Ctx) error {
	err := h.stash(c, httpUtil.ConsumeInput(c.Body()))
	return view.SendConsumeAck(c, err)
}

// Fallback renders the success shaped response of a beacon route after a
// recovered panic.
func (h *BeaconHandler) Fallback(c *fiber.Ctx, err error) error {
	if c.Path() == ConsumePath {
		return view.SendConsumeAck(c, err)
	}
	if c.Path() == PixelPath {
		return view.SendPixel(c)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal Server Error",
	})
}

func (h *BeaconHandler) stash(c *fiber.Ctx, in service.BeaconInput) error {
	in.SessionID = httpUtil.SessionID(c, h.beacon, in.SessionID)

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	err := h.ingestor.Stash(ctx, in, httpUtil.RequestInfo(c), httpUtil.NewCookieJar(c, h.beacon))
	if err != nil {
		h.logger.Info("beacon not stashed",
			zap.String("stash_type", in.StashType),
			zap.String("page_token", in.PageToken),
			zap.Error(err),
		)
	}
	return err
}
