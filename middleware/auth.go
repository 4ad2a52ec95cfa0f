package middleware

import (
	"strings"

	"spooky-styles/utils"

	"github.com/gin-gonic/gin"
)

// bearerToken reads the Authorization header. Browsers cannot set headers on
// websocket handshakes, so upgrades may pass the token as ?token= instead.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if isWebsocketUpgrade(c) {
			if token := c.Query("token"); token != "" {
				return token, true
			}
		}
		return "", false
	}
	tokenParts := strings.SplitN(authHeader, " ", 2)
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") || tokenParts[1] == "" {
		return "", false
	}
	return tokenParts[1], true
}

func isWebsocketUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func setIdentity(c *gin.Context, claims *utils.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUserEmail, claims.Email)
	c.Set(ctxUserRole, claims.Role)
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetInt(ctxUserID) > 0 {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			abortWithError(c, utils.Unauthorized("Authorization header required"))
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			abortWithError(c, utils.Unauthorized("Invalid or expired token"))
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is sent and
// lets everyone else through as a guest.
func OptionalAuth(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := tokens.ValidateToken(token); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentViewer(c).IsAdmin() {
			abortWithError(c, utils.Forbidden("Access denied. Admin role required"))
			return
		}
		c.Next()
	}
}
