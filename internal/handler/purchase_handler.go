package handler

import (
	"context"
	"errors"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/flash-sale-service/internal/model"
	"github.com/fairyhunter13/flash-sale-service/internal/service"
)

// PurchaseServiceInterface defines the purchase business logic the handler needs.
type PurchaseServiceInterface interface {
	AttemptPurchase(ctx context.Context, rawUserID string) (*service.PurchaseResult, error)
	UserStatus(ctx context.Context, rawUserID string) (*model.UserStatusResponse, error)
}

// PurchaseHandler handles HTTP requests for purchase operations.
type PurchaseHandler struct {
	service   PurchaseServiceInterface
	validator *validator.Validate
}

// NewPurchaseHandler creates a new PurchaseHandler with the given service and validator.
func NewPurchaseHandler(svc PurchaseServiceInterface, v *validator.Validate) *PurchaseHandler {
	return &PurchaseHandler{service: svc, validator: v}
}

// formatPurchaseValidationError converts validator errors to stable client messages.
func formatPurchaseValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			tag := fe.Tag()

			switch field {
			case "UserID":
				if tag == "required" {
					return "userId is required"
				}
				if tag == "notblank" {
					return "userId cannot be whitespace only"
				}
				if tag == "max" {
					return "userId exceeds maximum length of 255"
				}
				return "userId is invalid"
			default:
				if tag == "required" {
					return field + " is required"
				}
				return field + " is invalid"
			}
		}
	}
	return "invalid request"
}

func failureBody(reason, message string) model.PurchaseFailureResponse {
	return model.PurchaseFailureResponse{Success: false, Reason: reason, Message: message}
}

// Purchase handles POST /api/sale/purchase requests. The HTTP status is a
// pure function of the service outcome; errors surface as 503 for store
// outages and 500 for script protocol violations.
func (h *PurchaseHandler) Purchase(c *fiber.Ctx) error {
	var req model.PurchaseRequest

	// Parse JSON body
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(failureBody("invalid_user_id", "invalid request body"))
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(failureBody("invalid_user_id", formatPurchaseValidationError(err)))
	}

	result, err := h.service.AttemptPurchase(c.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUnexpectedScriptResult) {
			log.Error().
				Err(err).
				Str("request_id", c.GetRespHeader("X-Request-ID")).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("purchase script protocol violation")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("purchase attempt failed against the store")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}

	switch result.Outcome {
	case service.OutcomeSuccess:
		log.Info().
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("user_id", req.UserID).
			Int64("remaining_stock", result.Remaining).
			Msg("purchase committed")
		return c.Status(fiber.StatusOK).JSON(model.PurchaseSuccessResponse{
			Success:     true,
			Message:     result.Message,
			PurchasedAt: result.PurchasedAt,
		})
	case service.OutcomeInvalidUserID:
		return c.Status(fiber.StatusBadRequest).JSON(failureBody(result.Outcome.String(), result.Message))
	case service.OutcomeSaleNotActive:
		return c.Status(fiber.StatusForbidden).JSON(failureBody(result.Outcome.String(), result.Message))
	case service.OutcomeAlreadyPurchased:
		body := failureBody(result.Outcome.String(), result.Message)
		body.PurchasedAt = result.PurchasedAt
		return c.Status(fiber.StatusConflict).JSON(body)
	case service.OutcomeOutOfStock:
		return c.Status(fiber.StatusConflict).JSON(failureBody(result.Outcome.String(), result.Message))
	default:
		log.Error().
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("outcome", result.Outcome.String()).
			Msg("unmapped purchase outcome")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

// UserStatus handles GET /api/sale/purchase/:userId requests. The path
// segment is unescaped so percent-encoded ids behave like their JSON-body
// counterparts.
func (h *PurchaseHandler) UserStatus(c *fiber.Ctx) error {
	rawID := c.Params("userId")
	if decoded, err := url.PathUnescape(rawID); err == nil {
		rawID = decoded
	}

	status, err := h.service.UserStatus(c.Context(), rawID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidUserID) {
			return c.Status(fiber.StatusBadRequest).JSON(failureBody("invalid_user_id", "userId is required"))
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("user status lookup failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}

	return c.JSON(status)
}
