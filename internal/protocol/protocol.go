// Package protocol defines the relay wire format: one JSON envelope per
// event over a persistent websocket, with payload fields flattened into the
// envelope and omitted when empty.
package protocol

import "griddle/internal/game"

// EventType names one relay event.
type EventType string

// Client → server events.
const (
	EventCreateRoom     EventType = "createRoom"
	EventJoinRoom       EventType = "joinRoom"
	EventStartGame      EventType = "startGame"
	EventUpdateProgress EventType = "updateProgress"
	EventHintTaken      EventType = "hintTaken"
	EventGameOver       EventType = "gameOver"
	EventRematch        EventType = "rematch"
	EventLeaveRoom      EventType = "leaveRoom"
)

// Server → client events. GameOver and Rematch reuse the request names.
const (
	EventRoomCreated       EventType = "roomCreated"
	EventPlayerJoined      EventType = "playerJoined"
	EventRoomJoined        EventType = "roomJoined"
	EventGameStarted       EventType = "gameStarted"
	EventOpponentProgress  EventType = "opponentProgress"
	EventOpponentHintTaken EventType = "opponentHintTaken"
	EventPlayerLeft        EventType = "playerLeft"
	EventRoomFull          EventType = "roomFull"
	EventError             EventType = "error"
)

// OutcomeReason says how a match ended.
type OutcomeReason string

const (
	ReasonSolved    OutcomeReason = "solved"    // a player guessed the word
	ReasonExhausted OutcomeReason = "exhausted" // all rows used without solving
	ReasonTimeout   OutcomeReason = "timeout"   // countdown hit zero
	ReasonDraw      OutcomeReason = "draw"      // timeout with neither side solved
)

// OutcomeDescriptor is the terminal result a client reports and the
// coordinator broadcasts. WinnerName is empty for a draw.
type OutcomeDescriptor struct {
	WinnerName string        `json:"winner,omitempty"`
	Reason     OutcomeReason `json:"reason"`
}

// ClientMessage is the JSON structure received from clients.
type ClientMessage struct {
	Type         EventType          `json:"t"`
	RoomKey      string             `json:"roomKey,omitempty"`
	DisplayName  string             `json:"name,omitempty"`
	Word         string             `json:"word,omitempty"`
	TimerSeconds int                `json:"timerSeconds,omitempty"`
	Progress     *game.Snapshot     `json:"progress,omitempty"`
	Outcome      *OutcomeDescriptor `json:"outcome,omitempty"`
}

// ServerMessage is the JSON structure sent to clients.
type ServerMessage struct {
	Type         EventType          `json:"t"`
	RoomKey      string             `json:"roomKey,omitempty"`
	PlayerName   string             `json:"name,omitempty"`
	Word         string             `json:"word,omitempty"`
	TimerSeconds int                `json:"timerSeconds,omitempty"`
	Progress     *game.Snapshot     `json:"progress,omitempty"`
	Outcome      *OutcomeDescriptor `json:"outcome,omitempty"`
	Message      string             `json:"msg,omitempty"`
}
