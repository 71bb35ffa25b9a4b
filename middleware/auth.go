// Package middleware provides request filters and security checks for the application.
// File: middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"go-typing-comp/logger"
)

// -------------- authentication middleware --------------

// AuthRequired ensures the request carries a logged-in organizer session.
// Requests without one get a 401 and never reach the handler.
func AuthRequired(c *gin.Context) {
	session := sessions.Default(c)
	organizerID, _ := session.Get("organizerID").(string)

	if organizerID == "" {
		logger.Warn.Printf("AuthRequired: no organizer in session for %s %s", c.Request.Method, c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	logger.Debug.Println("[AuthRequired] Organizer authenticated - proceeding with request")
	c.Next()
}
