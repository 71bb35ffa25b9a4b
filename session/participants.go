// Package session - session/participants.go
package session

import (
	"time"

	"go-typing-comp/models"
)

// ParticipantRegistry maps connection identity to participant state for one
// competition. Participant identity is the display name; the connection id is
// only a back reference from the transport and changes across reconnects.
//
// The registry is not internally locked: the owning CompetitionSession
// serializes every mutation behind its own mutex.
type ParticipantRegistry struct {
	byConn map[string]*models.Participant
	// insertion order, so snapshots and ranking ties are deterministic
	order []string
}

// NewParticipantRegistry returns an empty registry.
func NewParticipantRegistry() *ParticipantRegistry {
	return &ParticipantRegistry{
		byConn: make(map[string]*models.Participant),
	}
}

// Admit registers a participant under the given connection id. Display names
// are unique per competition (case-sensitive exact match); a collision
// returns ErrDuplicateName and leaves the registry untouched. Live counters
// start at the join time, so someone admitted mid-round measures typing time
// from admission; a round start overwrites them via ResetForRound.
func (r *ParticipantRegistry) Admit(connectionID, name string) (*models.Participant, error) {
	for _, p := range r.byConn {
		if p.Name == name {
			return nil, ErrDuplicateName
		}
	}

	joinedAt := now()
	p := &models.Participant{
		Name:         name,
		ConnectionID: connectionID,
		JoinedAt:     joinedAt,
		Scores:       []models.RoundScore{},
		Live: models.LiveCounters{
			Accuracy:  100,
			StartedAt: joinedAt,
		},
	}
	r.byConn[connectionID] = p
	r.order = append(r.order, connectionID)
	return p, nil
}

// Remove deletes the live entry for a connection. Idempotent: removing an
// unknown connection id is a no-op. Returns the removed participant, if any.
func (r *ParticipantRegistry) Remove(connectionID string) *models.Participant {
	p, ok := r.byConn[connectionID]
	if !ok {
		return nil
	}
	delete(r.byConn, connectionID)
	for i, id := range r.order {
		if id == connectionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p
}

// Get returns the participant for a connection id, or nil if unknown.
func (r *ParticipantRegistry) Get(connectionID string) *models.Participant {
	return r.byConn[connectionID]
}

// ResetForRound clears every participant's live typing counters and stamps
// the new round-start time. Accumulated score history is untouched.
func (r *ParticipantRegistry) ResetForRound(startedAt time.Time) {
	for _, p := range r.byConn {
		p.Live = models.LiveCounters{
			Accuracy:  100,
			StartedAt: startedAt,
		}
	}
}

// Snapshot returns the registered participants in join order.
func (r *ParticipantRegistry) Snapshot() []*models.Participant {
	out := make([]*models.Participant, 0, len(r.byConn))
	for _, id := range r.order {
		if p, ok := r.byConn[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Count returns the number of currently registered participants.
func (r *ParticipantRegistry) Count() int {
	return len(r.byConn)
}
