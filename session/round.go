// Package session - session/round.go
package session

import (
	"time"

	"go-typing-comp/logger"
	"go-typing-comp/models"
	"go-typing-comp/services"
)

// RoundController drives a single round through its pending -> in-progress ->
// completed lifecycle. It owns the round's one-shot timer; the timer firing
// and a manual force-end share one completion path guarded by the terminal
// status, so only one of them ever runs it.
//
// Every method requires the owning CompetitionSession's mutex to be held.
type RoundController struct {
	session *CompetitionSession
	index   int
	round   *models.Round
	timer   *time.Timer
}

// roundCompletion is the snapshot a finished round hands back to the session
// for persistence and broadcast, taken while the lock is still held.
type roundCompletion struct {
	results []models.RoundResult
	endedAt time.Time
}

func newRoundController(s *CompetitionSession, index int) *RoundController {
	return &RoundController{
		session: s,
		index:   index,
		round:   &s.competition.Rounds[index],
	}
}

// start transitions the round to in-progress, resets everyone's live
// counters, and schedules the round timer. The roundStarted payload carries
// the full text up front; the caller broadcasts it once the lock is released.
func (rc *RoundController) start() (models.RoundStartedPayload, error) {
	if rc.round.Status != models.RoundPending {
		return models.RoundStartedPayload{}, ErrInvalidRound
	}

	startedAt := now()
	rc.round.Status = models.RoundInProgress
	rc.round.StartedAt = &startedAt
	rc.session.registry.ResetForRound(startedAt)

	// the timer is the round's only suspension point
	rc.timer = time.AfterFunc(time.Duration(rc.round.Duration)*time.Second, func() {
		rc.session.EndRound(rc.index)
	})

	logger.Info.Printf("[round] Round %d started for competition %s (duration %ds)",
		rc.index+1, rc.session.ID(), rc.round.Duration)
	return models.RoundStartedPayload{
		RoundIndex: rc.index,
		Text:       rc.round.Text,
		Duration:   rc.round.Duration,
		StartTime:  startedAt.UnixMilli(),
	}, nil
}

// ingestProgress recomputes a participant's live WPM and accuracy from raw
// counters. Outside an in-progress round this is a silent no-op: late or
// stray progress messages after a round ends are expected, not an error.
func (rc *RoundController) ingestProgress(p *models.Participant, correctChars, totalChars, errorCount, backspaces int) {
	if rc.round.Status != models.RoundInProgress {
		return
	}

	elapsed := now().Sub(p.Live.StartedAt).Seconds()
	p.Live = models.LiveCounters{
		CorrectChars:   correctChars,
		TotalChars:     totalChars,
		IncorrectChars: totalChars - correctChars,
		WPM:            services.WPM(correctChars, elapsed),
		Accuracy:       services.Accuracy(correctChars, totalChars),
		Errors:         errorCount,
		Backspaces:     backspaces,
		StartedAt:      p.Live.StartedAt,
		ElapsedSeconds: elapsed,
	}
}

// finish completes the round: cancels the pending timer, snapshots every
// participant's live counters into ranked results, computes round stats, and
// appends each result to the participant's score history. Idempotent - a
// round that is not in progress reports ok=false and nothing changes.
func (rc *RoundController) finish() (roundCompletion, bool) {
	if rc.round.Status != models.RoundInProgress {
		return roundCompletion{}, false
	}
	if rc.timer != nil {
		rc.timer.Stop()
	}

	endedAt := now()
	rc.round.Status = models.RoundCompleted
	rc.round.EndedAt = &endedAt
	if rc.round.StartedAt != nil {
		rc.round.TotalDuration = int(endedAt.Sub(*rc.round.StartedAt).Seconds())
	}

	participants := rc.session.registry.Snapshot()
	results := make([]models.RoundResult, 0, len(participants))
	for _, p := range participants {
		results = append(results, models.RoundResult{
			ParticipantName: p.Name,
			ParticipantID:   p.ConnectionID,
			WPM:             p.Live.WPM,
			Accuracy:        p.Live.Accuracy,
			CorrectChars:    p.Live.CorrectChars,
			TotalChars:      p.Live.TotalChars,
			IncorrectChars:  p.Live.IncorrectChars,
			Errors:          p.Live.Errors,
			Backspaces:      p.Live.Backspaces,
			TypingTime:      int(p.Live.ElapsedSeconds),
		})
	}

	ranked := services.RankByWPM(results)
	rc.round.Results = ranked
	rc.round.Stats = services.ComputeRoundStats(ranked)
	rc.round.ParticipantsCompleted = len(ranked)

	// accumulate score history so final rankings can average across rounds
	for _, p := range participants {
		for _, r := range ranked {
			if r.ParticipantName == p.Name {
				p.Scores = append(p.Scores, models.RoundScore{
					Round:      rc.index,
					WPM:        r.WPM,
					Accuracy:   r.Accuracy,
					Rank:       r.Rank,
					Errors:     r.Errors,
					Backspaces: r.Backspaces,
				})
				break
			}
		}
	}

	logger.Info.Printf("[round] Round %d ended for competition %s - avg %d WPM over %d participants",
		rc.index+1, rc.session.ID(), rc.round.Stats.AverageWPM, len(ranked))
	return roundCompletion{results: ranked, endedAt: endedAt}, true
}
