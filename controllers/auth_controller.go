// Package controllers handles organizer authentication and session management.
// File: controllers/auth_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"go-typing-comp/logger"
	"go-typing-comp/models"
	"go-typing-comp/store"
)

// ------------------ authentication utilities ------------------

// checkPasswordHash verifies a plain-text password against the stored hash.
func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RegisterRequest is the organizer signup body.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the organizer login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ------------------ handlers ------------------

// Register creates a new organizer account and logs it in.
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 2 || len(req.Name) > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name must be between 2 and 50 characters"})
		return
	}
	if !strings.Contains(req.Email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a valid email address"})
		return
	}
	if len(req.Password) < 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 12 characters"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error.Printf("Register: failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	organizer := &models.Organizer{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := competitionStore.CreateOrganizer(c.Request.Context(), organizer); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
			return
		}
		logger.Error.Printf("Register: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	logIn(c, organizer)
	c.JSON(http.StatusOK, gin.H{"success": true, "name": organizer.Name})
}

// Login authenticates an organizer and stores its id in the cookie session.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	organizer, err := competitionStore.FindOrganizerByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrOrganizerNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		logger.Error.Printf("Login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	if !checkPasswordHash(req.Password, organizer.PasswordHash) {
		logger.Warn.Printf("Login: bad password for %s", organizer.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	logIn(c, organizer)
	c.JSON(http.StatusOK, gin.H{"success": true, "name": organizer.Name})
}

// Logout clears the organizer session.
func Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		logger.Error.Printf("Logout: error saving session: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// logIn stores the organizer identity in the cookie session.
func logIn(c *gin.Context, organizer *models.Organizer) {
	session := sessions.Default(c)
	session.Set("organizerID", organizer.ID)
	session.Set("organizerName", organizer.Name)
	if err := session.Save(); err != nil {
		logger.Error.Printf("logIn: failed to save session: %v", err)
	}
}
