// Package session implements the round lifecycle and leaderboard engine: the
// in-memory per-competition state machine that admits participants, runs
// timed rounds, ingests progress updates, and computes live and final
// rankings.
// File: session/errors.go
package session

import "errors"

// error taxonomy for the competition core; all of these are reported to the
// requesting connection only and never corrupt session state
var (
	// ErrNotFound means a competition lookup missed in the durable store.
	ErrNotFound = errors.New("competition not found")

	// ErrCompetitionClosed means the competition already completed and takes no new joins.
	ErrCompetitionClosed = errors.New("competition has already ended")

	// ErrDuplicateName means the display name is already taken in this competition.
	ErrDuplicateName = errors.New("name already taken in this competition")

	// ErrInvalidRound means the round index is out of bounds or the round is not pending.
	ErrInvalidRound = errors.New("invalid round")

	// ErrRoundInProgress means another round of this competition is currently running.
	ErrRoundInProgress = errors.New("a round is already in progress")
)
