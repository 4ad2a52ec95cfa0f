package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// matches the VARCHAR(64) session_id columns
const maxSessionIDLength = 64

// GuestSession reads the guest cart session from X-Session-ID, minting one
// when absent or malformed, and echoes it back so the client can keep it.
func GuestSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(HeaderSessionID)
		supplied := validSessionID(sessionID)
		if !supplied {
			sessionID = uuid.NewString()
		}
		c.Set(ctxSessionID, sessionID)
		c.Set(ctxSessionSupplied, supplied)
		c.Header(HeaderSessionID, sessionID)
		c.Next()
	}
}

// validSessionID accepts up to 64 letters, digits, '-' and '_'.
func validSessionID(s string) bool {
	if s == "" || len(s) > maxSessionIDLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
