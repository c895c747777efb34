package processor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

func TestStripeDisputeClient_SubmitEvidence(t *testing.T) {
	var gotPath string
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"submit":        r.PostForm.Get("submit"),
			"email":         r.PostForm.Get("evidence[customer_email_address]"),
			"description":   r.PostForm.Get("evidence[product_description]"),
			"refund_policy": r.PostForm.Get("evidence[refund_policy]"),
			"customer_name": r.PostForm.Get("evidence[customer_name]"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"dp_1","object":"dispute","status":"under_review"}`))
	}))
	defer srv.Close()

	c := newStripeDisputeClient("sk_test_123", stripe.String(srv.URL))
	err := c.SubmitEvidence(context.Background(), "dp_1", DisputeEvidence{
		CustomerEmail:      "buyer@example.com",
		ProductDescription: "Ebook",
		RefundPolicy:       "No refunds",
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/disputes/dp_1", gotPath)
	assert.Equal(t, "true", gotForm["submit"])
	assert.Equal(t, "buyer@example.com", gotForm["email"])
	assert.Equal(t, "Ebook", gotForm["description"])
	assert.Equal(t, "No refunds", gotForm["refund_policy"])
	assert.Empty(t, gotForm["customer_name"])
}

func TestStripeDisputeClient_SubmitEvidenceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"This dispute is already closed"}}`))
	}))
	defer srv.Close()

	c := newStripeDisputeClient("sk_test_123", stripe.String(srv.URL))
	err := c.SubmitEvidence(context.Background(), "dp_1", DisputeEvidence{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe dispute update")
}
