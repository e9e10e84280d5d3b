package http

import (
	"github.com/gin-gonic/gin"

	"github.com/prosceniumhq/proscenium/internal/session"
)

// sessionView shapes one managed session for API responses.
func sessionView(rec *session.Record) gin.H {
	view := gin.H{
		"session": rec.Session,
	}
	if rec.InitialMessage != "" {
		view["initial_message"] = rec.InitialMessage
	}
	return view
}
