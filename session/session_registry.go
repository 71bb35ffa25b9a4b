// Package session - session/session_registry.go
package session

import (
	"context"
	"sync"
	"time"

	"go-typing-comp/logger"
)

// defaultRetention is how long a completed competition's session lingers
// before eviction, so late clients can still fetch final results.
const defaultRetention = 10 * time.Minute

// SessionRegistry is the process-wide table of live competition sessions,
// keyed by competition id. It is an explicit instance handed to the transport
// and HTTP layers rather than a package-level singleton, so tests can run
// isolated registries.
type SessionRegistry struct {
	mu        sync.Mutex
	sessions  map[string]*CompetitionSession
	byCode    map[string]string // join code -> competition id
	gateway   PersistenceGateway
	retention time.Duration
}

// NewSessionRegistry creates an empty registry backed by the given store.
func NewSessionRegistry(gateway PersistenceGateway) *SessionRegistry {
	return &SessionRegistry{
		sessions:  make(map[string]*CompetitionSession),
		byCode:    make(map[string]string),
		gateway:   gateway,
		retention: defaultRetention,
	}
}

// SetRetention overrides how long completed sessions are kept in memory.
func (r *SessionRegistry) SetRetention(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retention = d
}

// GetOrCreate returns the live session for a join code, materializing it from
// the durable competition record on first use. Every subsequent lookup for
// the same competition reuses the in-memory instance, so all participants
// share one authoritative state.
func (r *SessionRegistry) GetOrCreate(ctx context.Context, code string, broadcaster Broadcaster) (*CompetitionSession, error) {
	r.mu.Lock()
	if id, ok := r.byCode[code]; ok {
		if s, ok := r.sessions[id]; ok {
			r.mu.Unlock()
			return s, nil
		}
	}
	r.mu.Unlock()

	// load outside the lock; a durable read can be slow
	competition, err := r.gateway.LoadCompetitionByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// someone else may have materialized it while we were loading
	if s, ok := r.sessions[competition.ID]; ok {
		return s, nil
	}

	s := NewCompetitionSession(competition, broadcaster, r.gateway)
	s.onComplete = r.scheduleEviction
	r.sessions[competition.ID] = s
	r.byCode[code] = competition.ID
	logger.Info.Printf("[registry] Materialized session for competition %s (code %s)", competition.ID, code)
	return s, nil
}

// Get returns the live session for a competition id, if one exists.
func (r *SessionRegistry) Get(competitionID string) (*CompetitionSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[competitionID]
	return s, ok
}

// Len reports how many sessions are currently live.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// scheduleEviction drops a completed competition's session after the
// retention window. Sessions for unfinished competitions are never evicted.
func (r *SessionRegistry) scheduleEviction(competitionID string) {
	r.mu.Lock()
	retention := r.retention
	r.mu.Unlock()

	time.AfterFunc(retention, func() {
		r.Remove(competitionID)
	})
}

// Remove deletes a session from the registry immediately.
func (r *SessionRegistry) Remove(competitionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[competitionID]
	if !ok {
		return
	}
	delete(r.sessions, competitionID)
	delete(r.byCode, s.Code())
	logger.Info.Printf("[registry] Evicted session for competition %s", competitionID)
}
