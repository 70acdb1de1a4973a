package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/flash-sale-service/internal/model"
)

// SaleServiceInterface defines the sale-level operations the handler needs.
type SaleServiceInterface interface {
	Status(ctx context.Context) (*model.SaleStatusResponse, error)
	Reset(ctx context.Context) error
}

// SaleHandler handles HTTP requests for sale status and lifecycle operations.
type SaleHandler struct {
	service SaleServiceInterface
}

// NewSaleHandler creates a new SaleHandler with the given service.
func NewSaleHandler(svc SaleServiceInterface) *SaleHandler {
	return &SaleHandler{service: svc}
}

// Status handles GET /api/sale/status requests.
func (h *SaleHandler) Status(c *fiber.Ctx) error {
	status, err := h.service.Status(c.Context())
	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("sale status read failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}

	return c.JSON(status)
}

// Reset handles POST /api/sale/reset requests. Restores the full stock
// count and clears the purchase ledger.
func (h *SaleHandler) Reset(c *fiber.Ctx) error {
	if err := h.service.Reset(c.Context()); err != nil {
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("sale reset failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Msg("sale reset")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Sale reset",
	})
}
