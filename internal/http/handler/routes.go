package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "chargeapi/docs"
	"chargeapi/internal/billing"
	"chargeapi/internal/service"
)

// Services groups what the routes delegate to.
type Services struct {
	Reconciliation service.ReconciliationService
	Disputes       service.DisputeService
	Charges        service.ChargeService
}

// WebhookSecrets authenticate processor deliveries.
type WebhookSecrets struct {
	StripeSigningSecret string
	PayPalToken         string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, secrets WebhookSecrets, evidenceTTL time.Duration) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	wh := app.Group("/webhooks")
	wh.Post("/stripe", StripeWebhook(svc.Reconciliation, secrets.StripeSigningSecret))
	wh.Post("/paypal", PayPalWebhook(svc.Reconciliation, secrets.PayPalToken))

	d := app.Group("/disputes")
	d.Get("/", ListDisputes(svc.Disputes))
	d.Get("/:id", GetDispute(svc.Disputes))
	d.Post("/:id/evidence", UploadEvidence(svc.Disputes))
	d.Get("/:id/evidence/:evidenceId", DownloadEvidence(svc.Disputes))
	d.Get("/:id/evidence/:evidenceId/url", EvidenceURL(svc.Disputes, evidenceTTL))
	d.Post("/:id/submit", SubmitDispute(svc.Disputes))

	app.Get("/purchases/:id/summary", ChargeableSummary(svc.Charges, billing.KindPurchase))
	app.Get("/charges/:id/summary", ChargeableSummary(svc.Charges, billing.KindCharge))
}

// RegisterDocs serves the Swagger UI and doc.json. Host and schemes stay empty
// in the document, so the UI resolves them against the URL it was loaded from.
func RegisterDocs(app *fiber.App) {
	app.Get("/swagger/*", swagger.HandlerDefault)
}
