// Package models - models/participant.go
package models

import "time"

// LiveCounters are a participant's in-progress-round typing statistics.
// They are reset at every round start and snapshotted into a RoundResult
// when the round ends.
type LiveCounters struct {
	CorrectChars   int       `json:"correctChars"`
	TotalChars     int       `json:"totalChars"`
	IncorrectChars int       `json:"incorrectChars"`
	WPM            int       `json:"wpm"`
	Accuracy       int       `json:"accuracy"`
	Errors         int       `json:"errors"`
	Backspaces     int       `json:"backspaces"`
	StartedAt      time.Time `json:"-"`              // round start for this participant
	ElapsedSeconds float64   `json:"elapsedSeconds"` // seconds since StartedAt at last update
}

// RoundScore is one completed round's score kept on the participant so the
// final rankings can average across rounds.
type RoundScore struct {
	Round      int `json:"round" bson:"round"` // zero-based round index
	WPM        int `json:"wpm" bson:"wpm"`
	Accuracy   int `json:"accuracy" bson:"accuracy"`
	Rank       int `json:"rank" bson:"rank"`
	Errors     int `json:"errors" bson:"errors"`
	Backspaces int `json:"backspaces" bson:"backspaces"`
}

// Participant is a live competitor. Identity is the display name, unique
// within a competition; ConnectionID is a weak back reference to the current
// transport connection and changes across reconnects.
type Participant struct {
	Name         string       `json:"name" bson:"name"`
	ConnectionID string       `json:"-" bson:"connectionId"`
	JoinedAt     time.Time    `json:"joinedAt" bson:"joinedAt"`
	Scores       []RoundScore `json:"roundScores" bson:"roundScores"`
	Live         LiveCounters `json:"-" bson:"-"`
}
