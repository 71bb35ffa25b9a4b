// Package session test_helpers.go
// Recording fakes for the core's two collaborator interfaces, used by the
// package tests and the transport-level integration tests.
package session

import (
	"context"
	"sync"
	"time"

	"go-typing-comp/models"
)

// BroadcastRecord is one captured emission.
type BroadcastRecord struct {
	CompetitionID string
	ConnectionID  string
	Event         string
	Payload       interface{}
}

// RecordingBroadcaster captures every emission instead of sending it anywhere.
type RecordingBroadcaster struct {
	mu      sync.Mutex
	Records []BroadcastRecord
}

// ToCompetition records a competition-wide emission.
func (b *RecordingBroadcaster) ToCompetition(competitionID, event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Records = append(b.Records, BroadcastRecord{CompetitionID: competitionID, Event: event, Payload: payload})
}

// ToConnection records a single-connection emission.
func (b *RecordingBroadcaster) ToConnection(connectionID, event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Records = append(b.Records, BroadcastRecord{ConnectionID: connectionID, Event: event, Payload: payload})
}

// CountEvent returns how many emissions of the named event were captured.
func (b *RecordingBroadcaster) CountEvent(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.Records {
		if r.Event == event {
			n++
		}
	}
	return n
}

// LastEvent returns the most recent emission of the named event, if any.
func (b *RecordingBroadcaster) LastEvent(event string) (BroadcastRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.Records) - 1; i >= 0; i-- {
		if b.Records[i].Event == event {
			return b.Records[i], true
		}
	}
	return BroadcastRecord{}, false
}

// MemoryGateway is an in-memory PersistenceGateway that counts writes.
type MemoryGateway struct {
	mu           sync.Mutex
	Competitions map[string]*models.Competition // keyed by join code

	RoundSaves       int
	RankingSaves     int
	ParticipantSaves int
	SaveErr          error // injected failure for every save call
}

// NewMemoryGateway returns an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{Competitions: make(map[string]*models.Competition)}
}

// Put registers a competition record under its join code.
func (g *MemoryGateway) Put(c *models.Competition) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Competitions[c.Code] = c
}

// LoadCompetitionByCode returns the stored record or ErrNotFound.
func (g *MemoryGateway) LoadCompetitionByCode(_ context.Context, code string) (*models.Competition, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.Competitions[code]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// SaveRoundResult counts the write and surfaces any injected failure.
func (g *MemoryGateway) SaveRoundResult(_ context.Context, _ string, _ int, _ *models.Round, _ int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.RoundSaves++
	return g.SaveErr
}

// SaveFinalRankings counts the write and surfaces any injected failure.
func (g *MemoryGateway) SaveFinalRankings(_ context.Context, _ string, _ []models.FinalRanking, _ time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.RankingSaves++
	return g.SaveErr
}

// AppendParticipant counts the write and surfaces any injected failure.
func (g *MemoryGateway) AppendParticipant(_ context.Context, _ string, _ *models.Participant) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ParticipantSaves++
	return g.SaveErr
}
