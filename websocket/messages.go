// Package websocket - websocket/messages.go
// Inbound wire format. Every client message is an Envelope whose Event tag
// selects one of the typed payloads below; payload shape is validated before
// dispatch so no handler ever sees an ad-hoc map.
package websocket

import "encoding/json"

// inbound event names
const (
	eventJoin          = "join"
	eventOrganizerJoin = "organizerJoin"
	eventStartRound    = "startRound"
	eventEndRound      = "endRound"
	eventProgress      = "progress"
)

// Envelope is the outer frame of every inbound message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinMessage asks to join a competition by code under a display name.
type JoinMessage struct {
	Code            string `json:"code"`
	ParticipantName string `json:"participantName"`
}

// OrganizerJoinMessage attaches an organizer connection to a competition
// without admitting it as a participant.
type OrganizerJoinMessage struct {
	CompetitionID string `json:"competitionId"`
}

// StartRoundMessage asks to start the round at the given index.
type StartRoundMessage struct {
	CompetitionID string `json:"competitionId"`
	RoundIndex    int    `json:"roundIndex"`
}

// EndRoundMessage force-ends the round at the given index before its timer
// fires (organizer abort). Shares the idempotent completion path with the
// timer, so a race between the two is harmless.
type EndRoundMessage struct {
	CompetitionID string `json:"competitionId"`
	RoundIndex    int    `json:"roundIndex"`
}

// ProgressMessage streams one participant's raw typing counters.
type ProgressMessage struct {
	CompetitionID string `json:"competitionId"`
	CorrectChars  int    `json:"correctChars"`
	TotalChars    int    `json:"totalChars"`
	Errors        int    `json:"errors"`
	Backspaces    int    `json:"backspaces"`
}

// OutboundMessage is the frame for everything the server emits.
type OutboundMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}
