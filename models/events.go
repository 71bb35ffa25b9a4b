// Package models - models/events.go
// Outbound event payloads produced by the competition core. Every event the
// server emits has an explicit payload type here; nothing is sent as an
// ad-hoc map.
package models

// event names emitted to clients
const (
	EventParticipantJoined = "participantJoined"
	EventJoinSuccess       = "joinSuccess"
	EventJoinError         = "joinError"
	EventError             = "error"
	EventRoundStarted      = "roundStarted"
	EventLeaderboardUpdate = "leaderboardUpdate"
	EventRoundEnded        = "roundEnded"
	EventFinalResults      = "finalResults"
	EventParticipantLeft   = "participantLeft"
)

// ParticipantJoinedPayload is broadcast to the competition when someone joins.
type ParticipantJoinedPayload struct {
	Name              string `json:"name"`
	TotalParticipants int    `json:"totalParticipants"`
}

// JoinSuccessPayload is sent to the joining connection only.
type JoinSuccessPayload struct {
	CompetitionID string `json:"competitionId"`
	Name          string `json:"name"` // competition name
	RoundCount    int    `json:"roundCount"`
}

// ErrorPayload carries a user-facing failure message back to one connection.
type ErrorPayload struct {
	Message string `json:"message"`
}

// RoundStartedPayload is broadcast when a round begins. Clients receive the
// full text up front; there is no incremental reveal.
type RoundStartedPayload struct {
	RoundIndex int    `json:"roundIndex"`
	Text       string `json:"text"`
	Duration   int    `json:"duration"` // seconds
	StartTime  int64  `json:"startTime"`
}

// LeaderboardEntry is one row of a live leaderboard, sorted descending by WPM.
type LeaderboardEntry struct {
	Name       string `json:"name"`
	WPM        int    `json:"wpm"`
	Accuracy   int    `json:"accuracy"`
	Errors     int    `json:"errors"`
	Backspaces int    `json:"backspaces"`
	Progress   int    `json:"progress"` // percent of round text typed
}

// LeaderboardUpdatePayload is the throttled live leaderboard broadcast.
type LeaderboardUpdatePayload struct {
	RoundIndex  int                `json:"roundIndex"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// RoundLeaderboardEntry is one row of a final per-round leaderboard.
type RoundLeaderboardEntry struct {
	Name       string `json:"name"`
	WPM        int    `json:"wpm"`
	Accuracy   int    `json:"accuracy"`
	Errors     int    `json:"errors"`
	Backspaces int    `json:"backspaces"`
	Rank       int    `json:"rank"`
}

// RoundEndedPayload is broadcast once when a round completes.
type RoundEndedPayload struct {
	RoundIndex  int                     `json:"roundIndex"`
	Leaderboard []RoundLeaderboardEntry `json:"leaderboard"`
}

// FinalRankingEntry is one row of the competition's final standings.
type FinalRankingEntry struct {
	Name            string       `json:"name"`
	AvgWPM          int          `json:"avgWpm"`
	AvgAccuracy     int          `json:"avgAccuracy"`
	Rank            int          `json:"rank"`
	Rounds          []RoundScore `json:"rounds"`
	TotalErrors     int          `json:"totalErrors"`
	TotalBackspaces int          `json:"totalBackspaces"`
}

// FinalResultsPayload is broadcast exactly once when the last round ends.
type FinalResultsPayload struct {
	Rankings []FinalRankingEntry `json:"rankings"`
}

// ParticipantLeftPayload is broadcast when a participant disconnects.
type ParticipantLeftPayload struct {
	TotalParticipants int `json:"totalParticipants"`
}
