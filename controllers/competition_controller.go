// Package controllers handles the HTTP API around competitions.
// File: controllers/competition_controller.go
package controllers

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"go-typing-comp/logger"
	"go-typing-comp/models"
	"go-typing-comp/session"
	"go-typing-comp/store"
)

var competitionStore *store.Store

// SetStore injects the durable store used by all controllers.
func SetStore(s *store.Store) {
	competitionStore = s
}

// ------------------ request validation ------------------

var codePattern = regexp.MustCompile(`^[A-Z0-9]{5}$`)

// RoundInput is one round definition in a create request.
type RoundInput struct {
	Text     string `json:"text"`
	Duration int    `json:"duration"`
}

// CreateCompetitionRequest is the create-competition request body.
type CreateCompetitionRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Rounds      []RoundInput `json:"rounds"`
}

// validate applies the same bounds the original request validation imposed.
func (r *CreateCompetitionRequest) validate() string {
	if len(r.Name) < 3 || len(r.Name) > 100 {
		return "Competition name must be between 3 and 100 characters"
	}
	if len(r.Rounds) < 1 || len(r.Rounds) > 10 {
		return "At least 1 round is required, maximum 10 rounds allowed"
	}
	for _, round := range r.Rounds {
		if len(round.Text) < 10 || len(round.Text) > 2000 {
			return "Round text must be between 10 and 2000 characters"
		}
		if round.Duration < 30 || round.Duration > 600 {
			return "Round duration must be between 30 and 600 seconds"
		}
	}
	return ""
}

// ------------------ handlers ------------------

// CreateCompetition creates a competition with its rounds and returns the
// generated join code. Organizer-only.
func CreateCompetition(c *gin.Context) {
	var req CreateCompetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	organizerID, _ := sessions.Default(c).Get("organizerID").(string)

	competition := &models.Competition{
		Name:        req.Name,
		Description: req.Description,
		OrganizerID: organizerID,
		Rounds:      make([]models.Round, 0, len(req.Rounds)),
	}
	for i, r := range req.Rounds {
		competition.Rounds = append(competition.Rounds, models.Round{
			RoundNumber: i + 1,
			Text:        r.Text,
			Duration:    r.Duration,
			Status:      models.RoundPending,
			Results:     []models.RoundResult{},
		})
	}

	if err := competitionStore.CreateCompetition(c.Request.Context(), competition); err != nil {
		logger.Error.Printf("CreateCompetition: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create competition"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"code":          competition.Code,
		"competitionId": competition.ID,
	})
}

// GetCompetitionByCode returns a competition summary for a join code.
func GetCompetitionByCode(c *gin.Context) {
	code := c.Param("code")
	if !codePattern.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Competition code must be 5 uppercase letters or digits"})
		return
	}

	competition, err := competitionStore.LoadCompetitionByCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Competition not found"})
			return
		}
		logger.Error.Printf("GetCompetitionByCode: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch competition"})
		return
	}

	participants, err := competitionStore.CountParticipants(c.Request.Context(), competition.ID)
	if err != nil {
		logger.Warn.Printf("GetCompetitionByCode: participant count failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"id":              competition.ID,
		"name":            competition.Name,
		"code":            competition.Code,
		"status":          competition.Status,
		"roundCount":      len(competition.Rounds),
		"roundsCompleted": competition.RoundsCompleted,
		"participants":    participants,
		"currentRound":    competition.CurrentRound,
	})
}

// GetRankings returns the final standings of a competition.
func GetRankings(c *gin.Context) {
	competition, err := competitionStore.LoadCompetitionByID(c.Request.Context(), c.Param("competitionId"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Competition not found"})
			return
		}
		logger.Error.Printf("GetRankings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rankings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"name":     competition.Name,
		"code":     competition.Code,
		"rankings": competition.FinalRankings,
		"status":   competition.Status,
	})
}

// MyCompetitions lists the logged-in organizer's competitions, newest first.
func MyCompetitions(c *gin.Context) {
	organizerID, _ := sessions.Default(c).Get("organizerID").(string)

	competitions, err := competitionStore.ListCompetitionsByOrganizer(c.Request.Context(), organizerID)
	if err != nil {
		logger.Error.Printf("MyCompetitions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch competitions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"competitions": competitions,
		"count":        len(competitions),
	})
}
