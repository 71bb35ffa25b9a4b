// file: session/session_test.go
package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-typing-comp/models"
)

// fixedClock pins the package clock to a settable instant and restores the
// real clock when the test ends.
type fixedClock struct {
	at time.Time
}

func installClock(t *testing.T, at time.Time) *fixedClock {
	t.Helper()
	c := &fixedClock{at: at}
	now = func() time.Time { return c.at }
	t.Cleanup(func() { now = time.Now })
	return c
}

func (c *fixedClock) advance(d time.Duration) {
	c.at = c.at.Add(d)
}

// twoRoundCompetition builds a pending competition record for tests. Long
// round durations keep the real round timer from firing mid-test.
func twoRoundCompetition() *models.Competition {
	return &models.Competition{
		ID:           "comp-1",
		Name:         "Friday Sprint",
		Code:         "AB3DE",
		Status:       models.CompetitionPending,
		CurrentRound: -1,
		TotalRounds:  2,
		Rounds: []models.Round{
			{RoundNumber: 1, Text: "the quick brown fox jumps over the lazy dog", Duration: 300, Status: models.RoundPending},
			{RoundNumber: 2, Text: "pack my box with five dozen liquor jugs", Duration: 300, Status: models.RoundPending},
		},
	}
}

func newTestSession(c *models.Competition) (*CompetitionSession, *RecordingBroadcaster, *MemoryGateway) {
	b := &RecordingBroadcaster{}
	g := NewMemoryGateway()
	g.Put(c)
	return NewCompetitionSession(c, b, g), b, g
}

// Joining broadcasts the new participant count and confirms to the joiner
func TestSession_JoinBroadcasts(t *testing.T) {
	s, b, _ := newTestSession(twoRoundCompetition())

	_, err := s.Join("conn-1", "Alice")
	assert.NoError(t, err)
	_, err = s.Join("conn-2", "Bob")
	assert.NoError(t, err)
	assert.Equal(t, 2, s.ParticipantCount())

	joined, ok := b.LastEvent(models.EventParticipantJoined)
	assert.True(t, ok)
	assert.Equal(t, "comp-1", joined.CompetitionID)
	assert.Equal(t, models.ParticipantJoinedPayload{Name: "Bob", TotalParticipants: 2}, joined.Payload)

	success, ok := b.LastEvent(models.EventJoinSuccess)
	assert.True(t, ok)
	assert.Equal(t, "conn-2", success.ConnectionID)
	assert.Equal(t, models.JoinSuccessPayload{CompetitionID: "comp-1", Name: "Friday Sprint", RoundCount: 2}, success.Payload)
}

// A completed competition rejects joins outright
func TestSession_JoinClosedCompetition(t *testing.T) {
	c := twoRoundCompetition()
	c.Status = models.CompetitionCompleted
	s, b, _ := newTestSession(c)

	_, err := s.Join("conn-1", "Alice")
	assert.ErrorIs(t, err, ErrCompetitionClosed)
	assert.Equal(t, 0, b.CountEvent(models.EventParticipantJoined))
}

// Duplicate names bounce without touching state
func TestSession_JoinDuplicateName(t *testing.T) {
	s, b, _ := newTestSession(twoRoundCompetition())

	_, _ = s.Join("conn-1", "Alice")
	_, err := s.Join("conn-2", "Alice")
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, 1, s.ParticipantCount())
	assert.Equal(t, 1, b.CountEvent(models.EventParticipantJoined))
}

// Leaving broadcasts the drop; a stranger's connection id does not
func TestSession_Leave(t *testing.T) {
	s, b, _ := newTestSession(twoRoundCompetition())
	_, _ = s.Join("conn-1", "Alice")

	s.Leave("conn-1")
	left, ok := b.LastEvent(models.EventParticipantLeft)
	assert.True(t, ok)
	assert.Equal(t, models.ParticipantLeftPayload{TotalParticipants: 0}, left.Payload)

	s.Leave("conn-1")
	s.Leave("never-joined")
	assert.Equal(t, 1, b.CountEvent(models.EventParticipantLeft))
}

// Round start validation: bounds, double-start, replaying a finished round
func TestSession_StartRoundValidation(t *testing.T) {
	s, b, _ := newTestSession(twoRoundCompetition())
	_, _ = s.Join("conn-1", "Alice")

	assert.ErrorIs(t, s.StartRound(-1), ErrInvalidRound)
	assert.ErrorIs(t, s.StartRound(2), ErrInvalidRound)

	assert.NoError(t, s.StartRound(0))
	assert.ErrorIs(t, s.StartRound(1), ErrRoundInProgress)

	started, ok := b.LastEvent(models.EventRoundStarted)
	assert.True(t, ok)
	payload := started.Payload.(models.RoundStartedPayload)
	assert.Equal(t, 0, payload.RoundIndex)
	assert.Equal(t, "the quick brown fox jumps over the lazy dog", payload.Text)
	assert.Equal(t, 300, payload.Duration)

	s.EndRound(0)
	// a completed round cannot be replayed
	assert.ErrorIs(t, s.StartRound(0), ErrInvalidRound)
	assert.NoError(t, s.StartRound(1))
}

// Progress outside an in-progress round, or from an unknown connection, is
// silently dropped
func TestSession_ProgressIgnoredOutsideRound(t *testing.T) {
	s, b, _ := newTestSession(twoRoundCompetition())
	_, _ = s.Join("conn-1", "Alice")

	s.Progress("conn-1", 20, 20, 0, 0)
	assert.Equal(t, 0, b.CountEvent(models.EventLeaderboardUpdate))

	_ = s.StartRound(0)
	s.Progress("ghost-conn", 20, 20, 0, 0)
	assert.Equal(t, 0, b.CountEvent(models.EventLeaderboardUpdate))

	s.EndRound(0)
	updates := b.CountEvent(models.EventLeaderboardUpdate)
	s.Progress("conn-1", 40, 40, 0, 0)
	assert.Equal(t, updates, b.CountEvent(models.EventLeaderboardUpdate))
}

// Rapid progress updates collapse into one leaderboard broadcast per second
func TestSession_LeaderboardThrottled(t *testing.T) {
	clock := installClock(t, time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC))
	s, b, _ := newTestSession(twoRoundCompetition())
	_, _ = s.Join("conn-1", "Alice")
	_, _ = s.Join("conn-2", "Bob")
	_ = s.StartRound(0)

	clock.advance(2 * time.Second)
	s.Progress("conn-1", 21, 21, 0, 0)
	s.Progress("conn-2", 8, 9, 1, 0)
	s.Progress("conn-1", 24, 24, 0, 0)

	// the rate limiter runs on the real clock, so back-to-back calls share
	// one rolling-second window regardless of the test clock
	assert.Equal(t, 1, b.CountEvent(models.EventLeaderboardUpdate))

	// the counters from the suppressed updates still landed
	update, _ := b.LastEvent(models.EventLeaderboardUpdate)
	entries := update.Payload.(models.LeaderboardUpdatePayload).Leaderboard
	assert.Len(t, entries, 2)
	assert.Equal(t, "Alice", entries[0].Name)
	// percent complete rounds to nearest: 21 of 43 chars is 48.8 -> 49
	assert.Equal(t, 49, entries[0].Progress)
}

// End-to-end scoring: two participants, one round, exact WPM/accuracy/ranks
func TestSession_RoundScoring(t *testing.T) {
	clock := installClock(t, time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC))
	s, b, g := newTestSession(twoRoundCompetition())
	_, _ = s.Join("conn-1", "Alice")
	_, _ = s.Join("conn-2", "Bob")

	assert.NoError(t, s.StartRound(0))

	clock.advance(12 * time.Second)
	s.Progress("conn-1", 50, 55, 3, 2) // (50/5)/(12/60) = 50 wpm, 50/55 = 91%
	s.Progress("conn-2", 30, 30, 0, 1) // 30 wpm, 100%

	s.EndRound(0)

	ended, ok := b.LastEvent(models.EventRoundEnded)
	assert.True(t, ok)
	payload := ended.Payload.(models.RoundEndedPayload)
	assert.Equal(t, 0, payload.RoundIndex)
	assert.Equal(t, []models.RoundLeaderboardEntry{
		{Name: "Alice", WPM: 50, Accuracy: 91, Errors: 3, Backspaces: 2, Rank: 1},
		{Name: "Bob", WPM: 30, Accuracy: 100, Errors: 0, Backspaces: 1, Rank: 2},
	}, payload.Leaderboard)

	assert.Equal(t, 1, g.RoundSaves)

	// the round record carries the ranked results and stats
	round := s.competition.Rounds[0]
	assert.Equal(t, models.RoundCompleted, round.Status)
	assert.Equal(t, 50, round.Stats.HighestWPM)
	assert.Equal(t, 30, round.Stats.LowestWPM)
	assert.Equal(t, 40, round.Stats.AverageWPM)
	assert.Equal(t, 96, round.Stats.AverageAccuracy) // (91+100)/2 rounded
	assert.Equal(t, 12, round.TotalDuration)
}

// Ending a round twice (timer plus force-end) broadcasts and persists once
func TestSession_EndRoundIdempotent(t *testing.T) {
	s, b, g := newTestSession(twoRoundCompetition())
	_, _ = s.Join("conn-1", "Alice")
	_ = s.StartRound(0)

	s.EndRound(0)
	s.EndRound(0)
	s.EndRound(5) // not the current round either

	assert.Equal(t, 1, b.CountEvent(models.EventRoundEnded))
	assert.Equal(t, 1, g.RoundSaves)
	assert.Equal(t, 1, s.competition.RoundsCompleted)
}

// The last round ending completes the competition: one finalResults
// broadcast, one rankings write, terminal status
func TestSession_FinalRoundCompletesCompetition(t *testing.T) {
	clock := installClock(t, time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC))
	s, b, g := newTestSession(twoRoundCompetition())
	_, _ = s.Join("conn-1", "Alice")
	_, _ = s.Join("conn-2", "Bob")

	_ = s.StartRound(0)
	clock.advance(12 * time.Second)
	s.Progress("conn-1", 50, 55, 0, 0)
	s.Progress("conn-2", 30, 30, 0, 0)
	s.EndRound(0)

	assert.Equal(t, 0, b.CountEvent(models.EventFinalResults))

	_ = s.StartRound(1)
	clock.advance(12 * time.Second)
	s.Progress("conn-1", 40, 40, 0, 0)
	s.Progress("conn-2", 60, 60, 0, 0)
	s.EndRound(1)
	s.EndRound(1) // replay never re-finalizes

	assert.Equal(t, 1, b.CountEvent(models.EventFinalResults))
	assert.Equal(t, 1, g.RankingSaves)
	assert.Equal(t, models.CompetitionCompleted, s.competition.Status)
	assert.NotNil(t, s.competition.CompletedAt)

	final, _ := b.LastEvent(models.EventFinalResults)
	rankings := final.Payload.(models.FinalResultsPayload).Rankings
	assert.Len(t, rankings, 2)
	// Alice averages (50+40)/2 = 45, Bob (30+60)/2 = 45: join order breaks ties
	assert.Equal(t, "Alice", rankings[0].Name)
	assert.Equal(t, 45, rankings[0].AvgWPM)
	assert.Equal(t, 1, rankings[0].Rank)
	assert.Equal(t, "Bob", rankings[1].Name)
	assert.Equal(t, 2, rankings[1].Rank)

	// and the closed session refuses fresh joins
	_, err := s.Join("conn-9", "Cara")
	assert.ErrorIs(t, err, ErrCompetitionClosed)
}

// gatedGateway holds the participant write until released, then hands the
// written record back for inspection.
type gatedGateway struct {
	MemoryGateway
	release  chan struct{}
	captured chan *models.Participant
}

func (g *gatedGateway) AppendParticipant(_ context.Context, _ string, p *models.Participant) error {
	<-g.release
	g.captured <- p
	return nil
}

// The join write persists a snapshot: score history appended by rounds that
// complete while the write is in flight never touches the persisted record
func TestSession_JoinPersistsSnapshot(t *testing.T) {
	g := &gatedGateway{
		release:  make(chan struct{}),
		captured: make(chan *models.Participant, 1),
	}
	s := NewCompetitionSession(twoRoundCompetition(), &RecordingBroadcaster{}, g)

	live, err := s.Join("conn-1", "Alice")
	assert.NoError(t, err)

	// a full round completes before the participant write gets through
	_ = s.StartRound(0)
	s.EndRound(0)
	assert.Len(t, live.Scores, 1)

	close(g.release)
	select {
	case persisted := <-g.captured:
		assert.NotSame(t, live, persisted)
		assert.Equal(t, "Alice", persisted.Name)
		assert.Empty(t, persisted.Scores)
	case <-time.After(time.Second):
		t.Fatal("participant write never arrived")
	}
}

// Someone admitted mid-round measures typing time from admission, never from
// the zero time
func TestSession_MidRoundJoiner(t *testing.T) {
	clock := installClock(t, time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC))
	s, b, _ := newTestSession(twoRoundCompetition())
	_, _ = s.Join("conn-1", "Alice")
	_ = s.StartRound(0)

	clock.advance(5 * time.Second)
	_, err := s.Join("conn-2", "Bob")
	assert.NoError(t, err)

	clock.advance(4 * time.Second)
	s.Progress("conn-2", 30, 30, 0, 0) // 4s of typing -> (30/5)/(4/60) = 90 wpm
	s.EndRound(0)

	var bob models.RoundResult
	for _, r := range s.competition.Rounds[0].Results {
		if r.ParticipantName == "Bob" {
			bob = r
		}
	}
	assert.Equal(t, 90, bob.WPM)
	assert.Equal(t, 4, bob.TypingTime)

	ended, _ := b.LastEvent(models.EventRoundEnded)
	leaderboard := ended.Payload.(models.RoundEndedPayload).Leaderboard
	assert.Equal(t, "Bob", leaderboard[0].Name)
	assert.Equal(t, 1, leaderboard[0].Rank)
}

// reentrantBroadcaster queries the session on every competition emission,
// the way a transport that reads session state might.
type reentrantBroadcaster struct {
	RecordingBroadcaster
	session *CompetitionSession
}

func (b *reentrantBroadcaster) ToCompetition(competitionID, event string, payload interface{}) {
	_ = b.session.ParticipantCount() // takes the session mutex
	b.RecordingBroadcaster.ToCompetition(competitionID, event, payload)
}

// Every emission happens outside the session lock, so a broadcaster that
// calls back into the session cannot deadlock
func TestSession_BroadcastsOutsideLock(t *testing.T) {
	c := twoRoundCompetition()
	g := NewMemoryGateway()
	g.Put(c)
	b := &reentrantBroadcaster{}
	s := NewCompetitionSession(c, b, g)
	b.session = s

	_, _ = s.Join("conn-1", "Alice")
	assert.NoError(t, s.StartRound(0))
	s.Progress("conn-1", 10, 10, 0, 0)
	s.EndRound(0)
	s.Leave("conn-1")

	assert.Equal(t, 1, b.CountEvent(models.EventRoundStarted))
	assert.Equal(t, 1, b.CountEvent(models.EventRoundEnded))
	assert.Equal(t, 1, b.CountEvent(models.EventParticipantLeft))
}

// A failing store never blocks the live competition
func TestSession_PersistenceFailureFinishesRound(t *testing.T) {
	c := &models.Competition{
		ID: "comp-1", Name: "Solo", Code: "ZZZZ9",
		Status: models.CompetitionPending, CurrentRound: -1, TotalRounds: 1,
		Rounds: []models.Round{{RoundNumber: 1, Text: "some text to type", Duration: 300, Status: models.RoundPending}},
	}
	s, b, g := newTestSession(c)
	g.SaveErr = assert.AnError

	_, _ = s.Join("conn-1", "Alice")
	_ = s.StartRound(0)
	s.EndRound(0)

	assert.Equal(t, 1, b.CountEvent(models.EventRoundEnded))
	assert.Equal(t, 1, b.CountEvent(models.EventFinalResults))
	assert.Equal(t, models.CompetitionCompleted, s.competition.Status)
}
