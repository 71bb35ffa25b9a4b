// Package models defines data structures used across the application.
// File: models/competition.go
package models

import "time"

// ----------------------- lifecycle statuses -----------------------

// CompetitionStatus is the lifecycle status of a competition.
type CompetitionStatus string

// competition lifecycle values
const (
	CompetitionPending   CompetitionStatus = "pending"
	CompetitionOngoing   CompetitionStatus = "ongoing"
	CompetitionCompleted CompetitionStatus = "completed"
)

// RoundStatus is the lifecycle status of a single round.
type RoundStatus string

// round lifecycle values; a completed round is terminal
const (
	RoundPending    RoundStatus = "pending"
	RoundInProgress RoundStatus = "in-progress"
	RoundCompleted  RoundStatus = "completed"
)

// ------------------------ round model -----------------------

// RoundResult is one participant's outcome for one round.
// Rank is 1-based; ties keep their original order (WPM is the sole sort key).
type RoundResult struct {
	ParticipantName string `json:"participantName" bson:"participantName"`
	ParticipantID   string `json:"participantId,omitempty" bson:"participantId,omitempty"`
	WPM             int    `json:"wpm" bson:"wpm"`
	Accuracy        int    `json:"accuracy" bson:"accuracy"`
	CorrectChars    int    `json:"correctChars" bson:"correctChars"`
	TotalChars      int    `json:"totalChars" bson:"totalChars"`
	IncorrectChars  int    `json:"incorrectChars" bson:"incorrectChars"`
	Errors          int    `json:"errors" bson:"errors"`
	Backspaces      int    `json:"backspaces" bson:"backspaces"`
	TypingTime      int    `json:"typingTime" bson:"typingTime"` // seconds actually typed
	Rank            int    `json:"rank" bson:"rank"`
}

// RoundStats aggregates a completed round. Highest/lowest WPM consider only
// participants who actually typed (WPM > 0).
type RoundStats struct {
	HighestWPM      int `json:"highestWpm" bson:"highestWpm"`
	LowestWPM       int `json:"lowestWpm" bson:"lowestWpm"`
	AverageWPM      int `json:"averageWpm" bson:"averageWpm"`
	AverageAccuracy int `json:"averageAccuracy" bson:"averageAccuracy"`
}

// Round is one timed typing bout within a competition.
type Round struct {
	RoundNumber           int           `json:"roundNumber" bson:"roundNumber"`
	Text                  string        `json:"text" bson:"text"`
	Duration              int           `json:"duration" bson:"duration"` // seconds
	Status                RoundStatus   `json:"status" bson:"status"`
	StartedAt             *time.Time    `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	EndedAt               *time.Time    `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
	TotalDuration         int           `json:"totalDuration" bson:"totalDuration"` // wall seconds start->end
	ParticipantsCompleted int           `json:"participantsCompleted" bson:"participantsCompleted"`
	Stats                 RoundStats    `json:"stats" bson:"stats,inline"`
	Results               []RoundResult `json:"results" bson:"results"`
}

// ---------------------- final rankings ----------------------

// FinalRanking is one participant's aggregate placing across all completed rounds.
type FinalRanking struct {
	Rank                 int          `json:"rank" bson:"rank"`
	ParticipantName      string       `json:"participantName" bson:"participantName"`
	AverageWPM           int          `json:"averageWpm" bson:"averageWpm"`
	AverageAccuracy      int          `json:"averageAccuracy" bson:"averageAccuracy"`
	TotalRoundsCompleted int          `json:"totalRoundsCompleted" bson:"totalRoundsCompleted"`
	HighestWPM           int          `json:"highestWpm" bson:"highestWpm"`
	LowestWPM            int          `json:"lowestWpm" bson:"lowestWpm"`
	TotalErrors          int          `json:"totalErrors" bson:"totalErrors"`
	TotalBackspaces      int          `json:"totalBackspaces" bson:"totalBackspaces"`
	RoundScores          []RoundScore `json:"roundScores,omitempty" bson:"roundScores,omitempty"`
}

// ------------------------ competition model -----------------------

// Competition is the durable competition record. The live session layer holds
// a transient cached copy plus in-memory-only fields (current round pointer,
// in-progress flag) that are never part of this record.
type Competition struct {
	ID              string            `json:"id" bson:"_id,omitempty"`
	Name            string            `json:"name" bson:"name"`
	Code            string            `json:"code" bson:"code"` // 5-char uppercase alphanumeric join code
	OrganizerID     string            `json:"organizerId,omitempty" bson:"organizerId,omitempty"`
	Status          CompetitionStatus `json:"status" bson:"status"`
	Rounds          []Round           `json:"rounds" bson:"rounds"`
	CurrentRound    int               `json:"currentRound" bson:"currentRound"` // -1 = not started
	TotalRounds     int               `json:"totalRounds" bson:"totalRounds"`
	RoundsCompleted int               `json:"roundsCompleted" bson:"roundsCompleted"`
	FinalRankings   []FinalRanking    `json:"finalRankings" bson:"finalRankings"`
	Description     string            `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt       time.Time         `json:"createdAt" bson:"createdAt"`
	CompletedAt     *time.Time        `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// ---------------------- organizer model ----------------------

// Organizer is an account that can create and run competitions.
type Organizer struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}
