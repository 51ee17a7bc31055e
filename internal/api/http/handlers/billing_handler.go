package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vibetickets/helpdesk/internal/api/dto"
	"github.com/vibetickets/helpdesk/internal/auth"
	"github.com/vibetickets/helpdesk/internal/service"
	apperrors "github.com/vibetickets/helpdesk/pkg/util/errorutil"
)

// BillingHandler exposes checkout and the Stripe webhook.
type BillingHandler struct {
	billing *service.BillingService
}

// NewBillingHandler constructs handler.
func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{billing: billingService}
}

// CreateCheckout POST /billing/checkout.
func (h *BillingHandler) CreateCheckout(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CheckoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	url, err := h.billing.CreateCheckoutSession(c.UserContext(), user, req.SuccessURL, req.CancelURL)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CheckoutResponse{URL: url}})
}

// Webhook POST /billing/webhook. Unauthenticated; trust comes from the
// signature header.
func (h *BillingHandler) Webhook(c *fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")
	if err := h.billing.HandleWebhook(c.UserContext(), c.Body(), signature); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"received": true})
}
