package session

import (
	"griddle/internal/game"
	"griddle/internal/protocol"
)

// NoticeKind tags one session notification.
type NoticeKind string

const (
	NoticeRoomCreated      NoticeKind = "roomCreated"
	NoticePlayerJoined     NoticeKind = "playerJoined"
	NoticeRoomJoined       NoticeKind = "roomJoined"
	NoticeGameStarted      NoticeKind = "gameStarted"
	NoticeGuessResult      NoticeKind = "guessResult"
	NoticeOpponentProgress NoticeKind = "opponentProgress"
	NoticeOpponentHint     NoticeKind = "opponentHint"
	NoticeHintRevealed     NoticeKind = "hintRevealed"
	NoticeTick             NoticeKind = "tick"
	NoticeGameOver         NoticeKind = "gameOver"
	NoticeRematch          NoticeKind = "rematch"
	NoticePlayerLeft       NoticeKind = "playerLeft"
	NoticeRoomFull         NoticeKind = "roomFull"
	NoticeError            NoticeKind = "error"
)

// Notice is one observation the presentation layer renders from. Only the
// fields relevant to the kind are set.
type Notice struct {
	Kind    NoticeKind
	RoomKey string
	Name    string
	Seconds int
	Message string
	Guess   game.GuessResult
	Hint    string
	Snap    game.Snapshot
	Outcome protocol.OutcomeDescriptor
}

// notify queues a notice for the front end, dropping it if nobody keeps up.
// Notices are advisory renders of state the Match still holds.
func (s *Session) notify(n Notice) {
	select {
	case s.notices <- n:
	default:
	}
}

// Notices is the stream the presentation layer consumes.
func (s *Session) Notices() <-chan Notice { return s.notices }
