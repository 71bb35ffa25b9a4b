// file: session/session_registry_test.go
package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-typing-comp/models"
)

// Every lookup for the same code shares one live session instance
func TestRegistry_GetOrCreateReusesSession(t *testing.T) {
	g := NewMemoryGateway()
	g.Put(twoRoundCompetition())
	r := NewSessionRegistry(g)
	b := &RecordingBroadcaster{}

	first, err := r.GetOrCreate(context.Background(), "AB3DE", b)
	assert.NoError(t, err)
	second, err := r.GetOrCreate(context.Background(), "AB3DE", b)
	assert.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, r.Len())

	byID, ok := r.Get("comp-1")
	assert.True(t, ok)
	assert.Same(t, first, byID)
}

// An unknown join code surfaces the store's not-found
func TestRegistry_GetOrCreateUnknownCode(t *testing.T) {
	r := NewSessionRegistry(NewMemoryGateway())

	s, err := r.GetOrCreate(context.Background(), "XXXXX", &RecordingBroadcaster{})
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, r.Len())
}

// Remove drops both the id and code mappings
func TestRegistry_Remove(t *testing.T) {
	g := NewMemoryGateway()
	g.Put(twoRoundCompetition())
	r := NewSessionRegistry(g)

	_, _ = r.GetOrCreate(context.Background(), "AB3DE", &RecordingBroadcaster{})
	r.Remove("comp-1")
	assert.Equal(t, 0, r.Len())
	_, ok := r.Get("comp-1")
	assert.False(t, ok)

	// idempotent
	r.Remove("comp-1")
}

// A finished competition's session is evicted after the retention window
func TestRegistry_EvictsCompletedSessions(t *testing.T) {
	c := &models.Competition{
		ID: "comp-ev", Name: "One Rounder", Code: "EV1CT",
		Status: models.CompetitionPending, CurrentRound: -1, TotalRounds: 1,
		Rounds: []models.Round{{RoundNumber: 1, Text: "short text here", Duration: 300, Status: models.RoundPending}},
	}
	g := NewMemoryGateway()
	g.Put(c)
	r := NewSessionRegistry(g)
	r.SetRetention(10 * time.Millisecond)

	s, err := r.GetOrCreate(context.Background(), "EV1CT", &RecordingBroadcaster{})
	assert.NoError(t, err)
	_, _ = s.Join("conn-1", "Alice")
	_ = s.StartRound(0)
	s.EndRound(0)

	assert.Eventually(t, func() bool { return r.Len() == 0 },
		time.Second, 5*time.Millisecond, "completed session should be evicted")
}
