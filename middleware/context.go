package middleware

import (
	"spooky-styles/models"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID          = "user_id"
	ctxUserEmail       = "user_email"
	ctxUserRole        = "user_role"
	ctxSessionID       = "session_id"
	ctxSessionSupplied = "session_supplied"
	ctxRequestID       = "request_id"

	HeaderSessionID = "X-Session-ID"
	HeaderCSRFToken = "X-CSRF-Token"
	HeaderRequestID = "X-Request-ID"
)

// CurrentViewer returns the authenticated caller, or the zero Viewer for
// anonymous requests.
func CurrentViewer(c *gin.Context) models.Viewer {
	return models.Viewer{
		UserID: c.GetInt(ctxUserID),
		Email:  c.GetString(ctxUserEmail),
		Role:   c.GetString(ctxUserRole),
	}
}

func SessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

// ClientSessionID is the guest session only when the client sent one, so
// freshly minted sessions are never treated as having a cart.
func ClientSessionID(c *gin.Context) string {
	if !c.GetBool(ctxSessionSupplied) {
		return ""
	}
	return SessionID(c)
}

func RequestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// CartOwner resolves whose cart the request works on: the signed-in user,
// otherwise the guest session.
func CartOwner(c *gin.Context) models.CartOwner {
	if id := c.GetInt(ctxUserID); id > 0 {
		return models.CartOwner{UserID: id}
	}
	return models.CartOwner{SessionID: SessionID(c)}
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
