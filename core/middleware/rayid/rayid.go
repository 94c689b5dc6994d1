package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const (
	// HeaderName is echoed on every response.
	HeaderName = "X-Ray-ID"
	// LocalsKey is where the id is stored for logger.WithRayID.
	LocalsKey = "ray_id"
)

// New returns a middleware assigning a ray id to each request. An incoming
// X-Ray-ID header is kept so callers can correlate retries.
func New() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     HeaderName,
		ContextKey: LocalsKey,
		Generator:  uuid.NewString,
	})
}
