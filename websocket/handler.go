// Package websocket - websocket/handler.go
// Dispatches inbound events to the competition core.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-typing-comp/logger"
	"go-typing-comp/models"
	"go-typing-comp/session"
)

// joinTimeout bounds the durable competition load on first join.
const joinTimeout = 10 * time.Second

// Handler routes inbound WebSocket messages to competition sessions.
type Handler struct {
	hub      *Hub
	registry *session.SessionRegistry
}

// NewHandler wires the hub and session registry together.
func NewHandler(hub *Hub, registry *session.SessionRegistry) *Handler {
	return &Handler{hub: hub, registry: registry}
}

// Hub exposes the handler's hub, mainly so main can hand it elsewhere.
func (h *Handler) Hub() *Hub { return h.hub }

// handleIncoming dispatches one inbound envelope.
func (h *Handler) handleIncoming(c *Connection, env Envelope) {
	logger.Debug.Printf("[handleIncoming] event=%s conn=%s", env.Event, c.id)
	switch env.Event {
	case eventJoin:
		h.handleJoin(c, env.Data)
	case eventOrganizerJoin:
		h.handleOrganizerJoin(c, env.Data)
	case eventStartRound:
		h.handleStartRound(c, env.Data)
	case eventEndRound:
		h.handleEndRound(c, env.Data)
	case eventProgress:
		h.handleProgress(c, env.Data)
	default:
		logger.Debug.Printf("[handleIncoming] Unhandled event: %s", env.Event)
	}
}

// handleJoin admits the connection as a participant of the competition with
// the given join code, materializing the session on first join.
func (h *Handler) handleJoin(c *Connection, data json.RawMessage) {
	var msg JoinMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Code == "" || msg.ParticipantName == "" {
		h.hub.ToConnection(c.id, models.EventJoinError, models.ErrorPayload{
			Message: "Invalid join request.",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), joinTimeout)
	defer cancel()
	sess, err := h.registry.GetOrCreate(ctx, msg.Code, h.hub)
	if err != nil {
		message := "Server error occurred. Please try again later."
		if errors.Is(err, session.ErrNotFound) {
			logger.Warn.Printf("[handleJoin] Competition code not found: %s", msg.Code)
			message = "Invalid competition code. Please check and try again."
		} else {
			logger.Error.Printf("[handleJoin] Failed to load competition %s: %v", msg.Code, err)
		}
		h.hub.ToConnection(c.id, models.EventJoinError, models.ErrorPayload{Message: message})
		return
	}

	// attach before admitting so the participantJoined broadcast reaches
	// the joiner too
	h.hub.attach(c, sess.ID(), msg.ParticipantName, false)
	if _, err := sess.Join(c.id, msg.ParticipantName); err != nil {
		h.hub.detach(c)
		h.hub.ToConnection(c.id, models.EventJoinError, models.ErrorPayload{
			Message: joinErrorMessage(err),
		})
		return
	}
}

// handleOrganizerJoin attaches an organizer connection to a competition room.
// Organizers are not participants: they get every broadcast but never appear
// on leaderboards.
func (h *Handler) handleOrganizerJoin(c *Connection, data json.RawMessage) {
	var msg OrganizerJoinMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.CompetitionID == "" {
		logger.Warn.Printf("[handleOrganizerJoin] Invalid payload from conn=%s", c.id)
		return
	}
	h.hub.attach(c, msg.CompetitionID, "", true)
	logger.Info.Printf("[handleOrganizerJoin] Organizer connected: conn=%s competition=%s", c.id, msg.CompetitionID)
}

// handleStartRound starts a round; failures go back to the requester only.
func (h *Handler) handleStartRound(c *Connection, data json.RawMessage) {
	var msg StartRoundMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.CompetitionID == "" {
		h.hub.ToConnection(c.id, models.EventError, models.ErrorPayload{Message: "Invalid start request."})
		return
	}

	sess, ok := h.registry.Get(msg.CompetitionID)
	if !ok {
		h.hub.ToConnection(c.id, models.EventError, models.ErrorPayload{Message: "Competition not found"})
		return
	}
	if err := sess.StartRound(msg.RoundIndex); err != nil {
		h.hub.ToConnection(c.id, models.EventError, models.ErrorPayload{Message: startErrorMessage(err)})
	}
}

// handleEndRound force-ends a round before its timer fires. Ending a round
// that already completed is a silent no-op.
func (h *Handler) handleEndRound(c *Connection, data json.RawMessage) {
	var msg EndRoundMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.CompetitionID == "" {
		return
	}
	if sess, ok := h.registry.Get(msg.CompetitionID); ok {
		sess.EndRound(msg.RoundIndex)
	}
}

// handleProgress feeds typing counters into the live round. Stray progress
// for unknown competitions or ended rounds is dropped without a reply.
func (h *Handler) handleProgress(c *Connection, data json.RawMessage) {
	var msg ProgressMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.CompetitionID == "" {
		return
	}
	if sess, ok := h.registry.Get(msg.CompetitionID); ok {
		sess.Progress(c.id, msg.CorrectChars, msg.TotalChars, msg.Errors, msg.Backspaces)
	}
}

// handleDisconnect removes a departing participant from its session.
func (h *Handler) handleDisconnect(c *Connection) {
	logger.Info.Printf("[handleDisconnect] WebSocket disconnected: conn=%s", c.id)
	if c.competitionID == "" || c.isOrganizer {
		return
	}
	if sess, ok := h.registry.Get(c.competitionID); ok {
		sess.Leave(c.id)
	}
}

// joinErrorMessage maps join failures onto user-facing text.
func joinErrorMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrCompetitionClosed):
		return "This competition has already ended."
	case errors.Is(err, session.ErrDuplicateName):
		return "This name is already taken in the competition."
	default:
		return "Server error occurred. Please try again later."
	}
}

// startErrorMessage maps round-start failures onto user-facing text.
func startErrorMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrInvalidRound):
		return "Round not found"
	case errors.Is(err, session.ErrRoundInProgress):
		return "A round is already in progress"
	default:
		return "Failed to start round"
	}
}
