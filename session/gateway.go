// Package session - session/gateway.go
package session

import (
	"context"
	"time"

	"go-typing-comp/models"
)

// PersistenceGateway is the durable-store contract the core depends on.
// The in-memory session state stays authoritative for the live display; a
// failed write is logged by the caller and never crashes a session.
type PersistenceGateway interface {
	// LoadCompetitionByCode fetches a competition record by its join code.
	// Returns ErrNotFound on a miss.
	LoadCompetitionByCode(ctx context.Context, code string) (*models.Competition, error)

	// SaveRoundResult writes a completed round (results, stats, timestamps)
	// back to the competition record, together with the updated
	// rounds-completed counter.
	SaveRoundResult(ctx context.Context, competitionID string, roundIndex int, round *models.Round, roundsCompleted int) error

	// SaveFinalRankings marks the competition completed and stores the final standings.
	SaveFinalRankings(ctx context.Context, competitionID string, rankings []models.FinalRanking, completedAt time.Time) error

	// AppendParticipant records a newly admitted participant on the competition.
	AppendParticipant(ctx context.Context, competitionID string, participant *models.Participant) error
}
