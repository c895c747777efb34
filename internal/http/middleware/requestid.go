package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in and out.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the Fiber locals key holding the request id.
	RequestIDLocalKey = "request_id"

	// PayPalTransmissionHeader is PayPal's per-delivery webhook id. A webhook
	// without its own X-Request-ID is logged under that id.
	PayPalTransmissionHeader = "Paypal-Transmission-Id"

	maxRequestIDLen = 64
)

// RequestID assigns every request an id: the caller's X-Request-ID when it is
// acceptable, else the processor's delivery id, else a fresh UUID. The id is
// stored in locals and echoed in the response header.
//
// Acceptable ids are 1 to 64 characters of letters, digits, '-', '_', '.' and
// ':'. Anything else is dropped so it never reaches the logs or error bodies.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = c.Get(PayPalTransmissionHeader)
		}
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		switch ch := id[i]; {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.', ch == ':':
		default:
			return false
		}
	}
	return true
}
