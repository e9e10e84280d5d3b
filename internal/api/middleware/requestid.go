package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/prosceniumhq/proscenium/internal/shared/id"
)

// HeaderRequestID is the header carrying the request correlation id.
const HeaderRequestID = "X-Request-ID"

// ContextKeyRequestID is the gin context key holding the request id.
const ContextKeyRequestID = "request_id"

// RequestID tags every request with a sortable correlation id and echoes
// it back in the response. An id supplied by the caller is kept, so an
// edge proxy can trace a request end to end.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = id.NewRequestID().String()
		}
		c.Set(ContextKeyRequestID, rid)
		c.Header(HeaderRequestID, rid)
		c.Next()
	}
}

// GetRequestID returns the correlation id for the current request, or an
// empty string when the middleware did not run.
func GetRequestID(c *gin.Context) string {
	if rid, ok := c.Get(ContextKeyRequestID); ok {
		if s, ok := rid.(string); ok {
			return s
		}
	}
	return ""
}
