// Package session - session/broadcaster.go
package session

// Broadcaster is the fan-out interface the core uses to notify connected
// parties. It abstracts the transport; the websocket package provides the
// real implementation and tests substitute a recording fake.
type Broadcaster interface {
	// ToCompetition emits an event to every connection attached to the competition.
	ToCompetition(competitionID, event string, payload interface{})

	// ToConnection emits an event to a single connection.
	ToConnection(connectionID, event string, payload interface{})
}
