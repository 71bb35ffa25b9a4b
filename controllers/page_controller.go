// Package controllers file: controllers/page_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-typing-comp/logger"
	"go-typing-comp/services"
)

// Health responds to load balancer health checks.
func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// GetJoinQRCode returns a PNG QR code pointing at the join page for a
// competition code.
func GetJoinQRCode(c *gin.Context) {
	code := c.Param("code")
	if !codePattern.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Competition code must be 5 uppercase letters or digits"})
		return
	}

	png, err := services.GenerateJoinQRCode(code, 256)
	if err != nil {
		logger.Error.Printf("GetJoinQRCode: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
