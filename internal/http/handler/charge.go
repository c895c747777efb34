package handler

import (
	"github.com/gofiber/fiber/v2"

	"chargeapi/internal/billing"
	"chargeapi/internal/service"
)

// ChargeableSummary reports amounts and ledger rows for a purchase or a combined charge.
//
// @Summary  Chargeable summary
// @Tags     charges
// @Produce  json
// @Param    id path string true "purchase or charge id"
// @Success  200 {object} service.ChargeableSummary
// @Failure  404 {object} errorPayload
// @Router   /purchases/{id}/summary [get]
// @Router   /charges/{id}/summary [get]
func ChargeableSummary(svc service.ChargeService, kind billing.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Summary(c.UserContext(), kind, c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(s)
	}
}
