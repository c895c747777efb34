package handler

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"chargeapi/internal/processor"
	"chargeapi/internal/service"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	// PayPalTokenHeader carries the shared secret configured on the PayPal webhook URL.
	PayPalTokenHeader = "X-Webhook-Token"
)

// StripeWebhook verifies and applies a Stripe event.
//
// @Summary  Stripe webhook
// @Tags     webhooks
// @Accept   json
// @Produce  json
// @Param    Stripe-Signature header string true "Stripe signature"
// @Success  200 {object} service.EventResult
// @Failure  400 {object} errorPayload
// @Router   /webhooks/stripe [post]
func StripeWebhook(svc service.ReconciliationService, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ev, err := processor.ParseStripeWebhook(c.Body(), c.Get(stripeSignatureHeader), secret)
		if err != nil {
			return writeServiceError(c, err)
		}
		return handleEvent(c, svc, ev)
	}
}

// PayPalWebhook authenticates the delivery by its shared token and applies the event.
//
// @Summary  PayPal webhook
// @Tags     webhooks
// @Accept   json
// @Produce  json
// @Param    X-Webhook-Token header string true "shared webhook token"
// @Success  200 {object} service.EventResult
// @Failure  400 {object} errorPayload
// @Failure  401 {object} errorPayload
// @Router   /webhooks/paypal [post]
func PayPalWebhook(svc service.ReconciliationService, token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get(PayPalTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid webhook token")
		}
		ev, err := processor.ParsePayPalWebhook(c.Body())
		if err != nil {
			return writeServiceError(c, err)
		}
		return handleEvent(c, svc, ev)
	}
}

func handleEvent(c *fiber.Ctx, svc service.ReconciliationService, ev processor.ChargeEvent) error {
	res, err := svc.HandleEvent(c.UserContext(), ev)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}
