package processor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/dispute"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DisputeEvidence is what we tell the processor when fighting a chargeback.
type DisputeEvidence struct {
	CustomerEmail      string
	CustomerName       string
	ProductDescription string
	RefundPolicy       string
	UncategorizedText  string
}

// StripeDisputeClient submits dispute evidence through the Stripe API.
type StripeDisputeClient struct {
	api dispute.Client
}

// NewStripeDisputeClient builds a client whose outbound requests are traced.
func NewStripeDisputeClient(secretKey string) *StripeDisputeClient {
	return newStripeDisputeClient(secretKey, nil)
}

func newStripeDisputeClient(secretKey string, url *string) *StripeDisputeClient {
	httpClient := &http.Client{
		Timeout:   30 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(2),
		URL:               url,
	})
	return &StripeDisputeClient{api: dispute.Client{B: backend, Key: secretKey}}
}

// SubmitEvidence attaches ev to the dispute and submits it for review.
func (c *StripeDisputeClient) SubmitEvidence(ctx context.Context, disputeID string, ev DisputeEvidence) error {
	params := &stripe.DisputeParams{
		Evidence: &stripe.DisputeEvidenceParams{
			CustomerEmailAddress: optional(ev.CustomerEmail),
			CustomerName:         optional(ev.CustomerName),
			ProductDescription:   optional(ev.ProductDescription),
			RefundPolicy:         optional(ev.RefundPolicy),
			UncategorizedText:    optional(ev.UncategorizedText),
		},
		Submit: stripe.Bool(true),
	}
	params.Context = ctx

	if _, err := c.api.Update(disputeID, params); err != nil {
		return fmt.Errorf("stripe dispute update: %w", err)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return stripe.String(s)
}
