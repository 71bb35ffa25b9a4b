/* competitions.go
 * Contains the methods for interacting with the competitions and
 * participants collections.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-typing-comp/logger"
	"go-typing-comp/models"
	"go-typing-comp/services"
	"go-typing-comp/session"
)

// codeInsertAttempts bounds how often we regenerate a join code that
// collided with the unique index before giving up.
const codeInsertAttempts = 5

// CreateCompetition assigns an id and a unique join code, then inserts the
// record. A code collision regenerates and retries.
func (s *Store) CreateCompetition(ctx context.Context, c *models.Competition) error {
	c.ID = primitive.NewObjectID().Hex()
	c.Status = models.CompetitionPending
	c.CurrentRound = -1
	c.TotalRounds = len(c.Rounds)
	c.CreatedAt = time.Now()
	if c.FinalRankings == nil {
		c.FinalRankings = []models.FinalRanking{}
	}

	for attempt := 0; attempt < codeInsertAttempts; attempt++ {
		c.Code = services.GenerateJoinCode()
		_, err := s.competitions.InsertOne(ctx, c)
		if err == nil {
			logger.Info.Printf("[store] Competition created: %s (code %s)", c.ID, c.Code)
			return nil
		}
		if mongo.IsDuplicateKeyError(err) {
			logger.Warn.Printf("[store] Join code collision on %s, regenerating", c.Code)
			continue
		}
		return fmt.Errorf("failed to insert competition: %w", err)
	}
	return errors.New("could not allocate a unique join code")
}

// LoadCompetitionByCode fetches a competition record by join code.
// A miss maps to session.ErrNotFound.
func (s *Store) LoadCompetitionByCode(ctx context.Context, code string) (*models.Competition, error) {
	var c models.Competition
	err := s.competitions.FindOne(ctx, bson.M{"code": code}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load competition by code: %w", err)
	}
	return &c, nil
}

// LoadCompetitionByID fetches a competition record by id.
func (s *Store) LoadCompetitionByID(ctx context.Context, id string) (*models.Competition, error) {
	var c models.Competition
	err := s.competitions.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load competition by id: %w", err)
	}
	return &c, nil
}

// ListCompetitionsByOrganizer returns an organizer's competitions, newest first.
func (s *Store) ListCompetitionsByOrganizer(ctx context.Context, organizerID string) ([]models.Competition, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(50)
	cursor, err := s.competitions.Find(ctx, bson.M{"organizerId": organizerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Competition
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode competitions: %w", err)
	}
	return out, nil
}

// SaveRoundResult writes a completed round's results, stats, and timestamps
// into the competition record.
func (s *Store) SaveRoundResult(ctx context.Context, competitionID string, roundIndex int, round *models.Round, roundsCompleted int) error {
	prefix := fmt.Sprintf("rounds.%d.", roundIndex)
	update := bson.M{
		"$set": bson.M{
			prefix + "status":                round.Status,
			prefix + "startedAt":             round.StartedAt,
			prefix + "endedAt":               round.EndedAt,
			prefix + "totalDuration":         round.TotalDuration,
			prefix + "participantsCompleted": round.ParticipantsCompleted,
			prefix + "highestWpm":            round.Stats.HighestWPM,
			prefix + "lowestWpm":             round.Stats.LowestWPM,
			prefix + "averageWpm":            round.Stats.AverageWPM,
			prefix + "averageAccuracy":       round.Stats.AverageAccuracy,
			prefix + "results":               round.Results,
			"currentRound":                   roundIndex,
			"roundsCompleted":                roundsCompleted,
			"status":                         models.CompetitionOngoing,
		},
	}

	_, err := s.competitions.UpdateOne(ctx, bson.M{"_id": competitionID}, update)
	if err != nil {
		return fmt.Errorf("failed to save round result: %w", err)
	}
	return nil
}

// SaveFinalRankings marks the competition completed and stores the standings.
func (s *Store) SaveFinalRankings(ctx context.Context, competitionID string, rankings []models.FinalRanking, completedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"status":        models.CompetitionCompleted,
			"completedAt":   completedAt,
			"finalRankings": rankings,
		},
	}
	_, err := s.competitions.UpdateOne(ctx, bson.M{"_id": competitionID}, update)
	if err != nil {
		return fmt.Errorf("failed to save final rankings: %w", err)
	}
	return nil
}

// AppendParticipant records a newly admitted participant in the participants
// collection.
func (s *Store) AppendParticipant(ctx context.Context, competitionID string, participant *models.Participant) error {
	doc := bson.M{
		"competitionId": competitionID,
		"name":          participant.Name,
		"connectionId":  participant.ConnectionID,
		"joinedAt":      participant.JoinedAt,
		"roundScores":   participant.Scores,
	}
	_, err := s.participants.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to append participant: %w", err)
	}
	return nil
}

// CountParticipants returns how many participants ever joined a competition.
func (s *Store) CountParticipants(ctx context.Context, competitionID string) (int64, error) {
	n, err := s.participants.CountDocuments(ctx, bson.M{"competitionId": competitionID})
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return n, nil
}
