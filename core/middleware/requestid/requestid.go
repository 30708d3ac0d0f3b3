package requestid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// HeaderName is the header carrying the request ID.
	HeaderName = "X-Request-ID"
	// LocalsKey is the fiber locals key under which the ID is stored.
	// logger.WithRequestID reads the same key.
	LocalsKey = "request_id"
)

// New creates a middleware that tags every request with a unique ID,
// injecting it into the locals and the response headers for tracing.
// An ID supplied by the caller is kept so retries can be correlated.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalsKey, id)
		c.Set(HeaderName, id)
		return c.Next()
	}
}
