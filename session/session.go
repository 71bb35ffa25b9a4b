// Package session - session/session.go
package session

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"go-typing-comp/logger"
	"go-typing-comp/models"
	"go-typing-comp/services"
)

// persistTimeout bounds durable writes issued after a round ends.
const persistTimeout = 10 * time.Second

// Allow tests to override the clock.
var now = time.Now

// CompetitionSession is the authoritative live state for one competition:
// a participant registry plus at most one active RoundController. All state
// is mutated behind a single mutex, so joins, round transitions, progress
// updates, and disconnects never interleave unsafely.
type CompetitionSession struct {
	mu sync.Mutex

	// transient cached copy of the durable record, plus live-only fields
	competition     *models.Competition
	currentRound    int // -1 = not started
	roundInProgress bool

	registry    *ParticipantRegistry
	current     *RoundController
	broadcaster Broadcaster
	gateway     PersistenceGateway

	// leaderboard emissions collapse into one per rolling second
	leaderboardLimiter *rate.Limiter

	// invoked once, after the final round completes
	onComplete func(competitionID string)
}

// NewCompetitionSession wraps a loaded competition record in a live session.
func NewCompetitionSession(competition *models.Competition, broadcaster Broadcaster, gateway PersistenceGateway) *CompetitionSession {
	return &CompetitionSession{
		competition:        competition,
		currentRound:       -1,
		registry:           NewParticipantRegistry(),
		broadcaster:        broadcaster,
		gateway:            gateway,
		leaderboardLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// ID returns the competition identifier.
func (s *CompetitionSession) ID() string { return s.competition.ID }

// Code returns the competition join code.
func (s *CompetitionSession) Code() string { return s.competition.Code }

// ParticipantCount returns the number of live participants.
func (s *CompetitionSession) ParticipantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Count()
}

// ---------------------- join / leave ----------------------

// Join admits a participant under the given connection id. A completed
// competition rejects joins; duplicate display names are rejected without
// touching state. On success the new participant count is broadcast to the
// competition and a joinSuccess is sent to the requester.
func (s *CompetitionSession) Join(connectionID, name string) (*models.Participant, error) {
	s.mu.Lock()
	if s.competition.Status == models.CompetitionCompleted {
		s.mu.Unlock()
		return nil, ErrCompetitionClosed
	}

	p, err := s.registry.Admit(connectionID, name)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	total := s.registry.Count()
	// value snapshot for the persist goroutine; the live record keeps
	// mutating under the session lock as rounds complete
	record := *p
	record.Scores = append([]models.RoundScore(nil), p.Scores...)
	s.mu.Unlock()

	s.broadcaster.ToCompetition(s.ID(), models.EventParticipantJoined, models.ParticipantJoinedPayload{
		Name:              name,
		TotalParticipants: total,
	})
	s.broadcaster.ToConnection(connectionID, models.EventJoinSuccess, models.JoinSuccessPayload{
		CompetitionID: s.ID(),
		Name:          s.competition.Name,
		RoundCount:    len(s.competition.Rounds),
	})

	// durable write off the hot path; the live registry stays authoritative
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.gateway.AppendParticipant(ctx, s.ID(), &record); err != nil {
			logger.Error.Printf("[session] Failed to persist participant %s for competition %s: %v", name, s.ID(), err)
		}
	}()

	logger.Info.Printf("[session] Participant joined: %s (competition %s, total %d)", name, s.ID(), total)
	return p, nil
}

// Leave removes the live entry for a connection and broadcasts the new
// participant count. Unknown connections are ignored; historical scores
// already flushed to the store are unaffected.
func (s *CompetitionSession) Leave(connectionID string) {
	s.mu.Lock()
	p := s.registry.Remove(connectionID)
	total := s.registry.Count()
	s.mu.Unlock()

	if p == nil {
		return
	}
	logger.Info.Printf("[session] Participant left: %s (competition %s, remaining %d)", p.Name, s.ID(), total)
	s.broadcaster.ToCompetition(s.ID(), models.EventParticipantLeft, models.ParticipantLeftPayload{
		TotalParticipants: total,
	})
}

// ---------------------- round lifecycle ----------------------

// StartRound starts the round at index. Only one round per competition may be
// in progress; the round must exist and still be pending.
func (s *CompetitionSession) StartRound(index int) error {
	s.mu.Lock()

	if s.roundInProgress {
		s.mu.Unlock()
		return ErrRoundInProgress
	}
	if index < 0 || index >= len(s.competition.Rounds) {
		s.mu.Unlock()
		return ErrInvalidRound
	}
	if s.competition.Rounds[index].Status != models.RoundPending {
		s.mu.Unlock()
		return ErrInvalidRound
	}

	rc := newRoundController(s, index)
	payload, err := rc.start()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = rc
	s.currentRound = index
	s.roundInProgress = true
	s.competition.CurrentRound = index
	s.competition.Status = models.CompetitionOngoing
	s.mu.Unlock()

	s.broadcaster.ToCompetition(s.ID(), models.EventRoundStarted, payload)
	return nil
}

// EndRound completes the round at index. Both the round timer firing and an
// organizer force-end land here; the RoundController's terminal-state guard
// makes the second caller a no-op, so there is exactly one round-ended
// broadcast and one persistence write per round.
func (s *CompetitionSession) EndRound(index int) {
	s.mu.Lock()
	rc := s.current
	if rc == nil || rc.index != index {
		s.mu.Unlock()
		return
	}
	completion, ok := rc.finish()
	if !ok {
		s.mu.Unlock()
		return
	}
	s.roundInProgress = false
	s.competition.RoundsCompleted = index + 1
	round := rc.round

	var final *models.FinalResultsPayload
	if index == len(s.competition.Rounds)-1 {
		final = s.completeCompetitionLocked(completion.endedAt)
	}
	s.mu.Unlock()

	// persistence happens only here, never on the live leaderboard path;
	// a failed write is logged and the in-memory state stays authoritative
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.gateway.SaveRoundResult(ctx, s.ID(), index, round, index+1); err != nil {
		logger.Error.Printf("[session] Failed to persist round %d for competition %s: %v", index+1, s.ID(), err)
	}

	s.broadcaster.ToCompetition(s.ID(), models.EventRoundEnded, models.RoundEndedPayload{
		RoundIndex:  index,
		Leaderboard: roundLeaderboard(completion.results),
	})

	if final != nil {
		if err := s.gateway.SaveFinalRankings(ctx, s.ID(), s.competition.FinalRankings, completion.endedAt); err != nil {
			logger.Error.Printf("[session] Failed to persist final rankings for competition %s: %v", s.ID(), err)
		}
		s.broadcaster.ToCompetition(s.ID(), models.EventFinalResults, *final)
		logger.Info.Printf("[session] Competition %s completed", s.ID())
		if s.onComplete != nil {
			s.onComplete(s.ID())
		}
	}
}

// completeCompetitionLocked computes the final standings and marks the
// competition completed. Caller holds the mutex.
func (s *CompetitionSession) completeCompetitionLocked(completedAt time.Time) *models.FinalResultsPayload {
	rankings := services.ComputeFinalRankings(s.registry.Snapshot())
	s.competition.FinalRankings = rankings
	s.competition.Status = models.CompetitionCompleted
	s.competition.CompletedAt = &completedAt

	payload := models.FinalResultsPayload{
		Rankings: make([]models.FinalRankingEntry, 0, len(rankings)),
	}
	for _, r := range rankings {
		payload.Rankings = append(payload.Rankings, models.FinalRankingEntry{
			Name:            r.ParticipantName,
			AvgWPM:          r.AverageWPM,
			AvgAccuracy:     r.AverageAccuracy,
			Rank:            r.Rank,
			Rounds:          r.RoundScores,
			TotalErrors:     r.TotalErrors,
			TotalBackspaces: r.TotalBackspaces,
		})
	}
	return &payload
}

// ---------------------- progress / leaderboard ----------------------

// Progress ingests one participant's raw typing counters. Outside an
// in-progress round, or for an unknown connection, it is a silent no-op.
// Back-to-back updates within one second collapse into a single leaderboard
// broadcast.
func (s *CompetitionSession) Progress(connectionID string, correctChars, totalChars, errorCount, backspaces int) {
	s.mu.Lock()
	if !s.roundInProgress || s.current == nil {
		s.mu.Unlock()
		return
	}
	p := s.registry.Get(connectionID)
	if p == nil {
		s.mu.Unlock()
		return
	}
	s.current.ingestProgress(p, correctChars, totalChars, errorCount, backspaces)

	emit := s.leaderboardLimiter.Allow()
	var payload models.LeaderboardUpdatePayload
	if emit {
		payload = s.liveLeaderboardLocked()
	}
	s.mu.Unlock()

	if emit {
		s.broadcaster.ToCompetition(s.ID(), models.EventLeaderboardUpdate, payload)
	}
}

// liveLeaderboardLocked builds the live leaderboard sorted descending by WPM.
// Caller holds the mutex.
func (s *CompetitionSession) liveLeaderboardLocked() models.LeaderboardUpdatePayload {
	textLength := 0
	if s.currentRound >= 0 && s.currentRound < len(s.competition.Rounds) {
		textLength = len(s.competition.Rounds[s.currentRound].Text)
	}

	participants := s.registry.Snapshot()
	entries := make([]models.LeaderboardEntry, 0, len(participants))
	for _, p := range participants {
		progress := 0
		if textLength > 0 {
			progress = int(math.Round(float64(p.Live.TotalChars) / float64(textLength) * 100))
		}
		entries = append(entries, models.LeaderboardEntry{
			Name:       p.Name,
			WPM:        p.Live.WPM,
			Accuracy:   p.Live.Accuracy,
			Errors:     p.Live.Errors,
			Backspaces: p.Live.Backspaces,
			Progress:   progress,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].WPM > entries[j].WPM
	})

	return models.LeaderboardUpdatePayload{
		RoundIndex:  s.currentRound,
		Leaderboard: entries,
	}
}

// roundLeaderboard converts ranked results into the round-ended broadcast rows.
func roundLeaderboard(results []models.RoundResult) []models.RoundLeaderboardEntry {
	entries := make([]models.RoundLeaderboardEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, models.RoundLeaderboardEntry{
			Name:       r.ParticipantName,
			WPM:        r.WPM,
			Accuracy:   r.Accuracy,
			Errors:     r.Errors,
			Backspaces: r.Backspaces,
			Rank:       r.Rank,
		})
	}
	return entries
}
