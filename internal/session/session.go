// Package session is the per-player runtime: it owns the local Match,
// validates input through the word oracle, and in multiplayer keeps the
// Match in step with the peer through the relay. The countdown and guess
// submission run on independent timelines, so a slow dictionary lookup
// never stalls the timer.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"griddle/internal/game"
	"griddle/internal/protocol"
	"griddle/internal/words"
)

// Mode says how this session participates in a match.
type Mode int

const (
	ModeSolo    Mode = iota // no relay, purely local
	ModeHosting             // created the room, picks the word
	ModeJoined              // joined an existing room
)

// Session drives one player's game. Run owns the event loop; HandleKey and
// the hint methods may be called from the input-reading goroutine.
type Session struct {
	mode   Mode
	name   string
	oracle words.Oracle
	relay  Relay // nil in ModeSolo
	budget int

	mu       sync.Mutex
	roomKey  string
	opponent string
	match    *game.Match
	reported bool

	notices chan Notice
}

// NewSolo builds a session that plays locally against the oracle's word.
func NewSolo(oracle words.Oracle, budgetSeconds int) *Session {
	return &Session{
		mode:    ModeSolo,
		oracle:  oracle,
		budget:  budgetSeconds,
		notices: make(chan Notice, 32),
	}
}

// NewHosting builds a session that creates a room and starts the round
// once an opponent joins.
func NewHosting(oracle words.Oracle, relay Relay, displayName string, budgetSeconds int) *Session {
	return &Session{
		mode:    ModeHosting,
		name:    displayName,
		oracle:  oracle,
		relay:   relay,
		budget:  budgetSeconds,
		notices: make(chan Notice, 32),
	}
}

// NewJoined builds a session that joins an existing room by key.
func NewJoined(oracle words.Oracle, relay Relay, displayName, roomKey string) *Session {
	return &Session{
		mode:    ModeJoined,
		name:    displayName,
		oracle:  oracle,
		relay:   relay,
		roomKey: roomKey,
		notices: make(chan Notice, 32),
	}
}

// Run executes the session event loop until the context is cancelled or
// the relay connection ends. It must be called exactly once.
func (s *Session) Run(ctx context.Context) error {
	switch s.mode {
	case ModeSolo:
		word, err := s.oracle.FetchCandidateWord(ctx, game.WordLength)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.match = game.NewMatch(word, s.budget, false)
		s.mu.Unlock()
		s.notify(Notice{Kind: NoticeGameStarted, Seconds: s.budget})

	case ModeHosting:
		if err := s.relay.Send(ctx, protocol.ClientMessage{
			Type:        protocol.EventCreateRoom,
			DisplayName: s.name,
		}); err != nil {
			return err
		}

	case ModeJoined:
		if err := s.relay.Send(ctx, protocol.ClientMessage{
			Type:        protocol.EventJoinRoom,
			RoomKey:     s.roomKey,
			DisplayName: s.name,
		}); err != nil {
			return err
		}
	}

	var events <-chan protocol.ServerMessage
	if s.relay != nil {
		events = s.relay.Events()
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return errors.New("relay connection closed")
			}
			s.handleEvent(ctx, ev)
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// handleEvent applies one relayed server event to local state.
func (s *Session) handleEvent(ctx context.Context, ev protocol.ServerMessage) {
	switch ev.Type {
	case protocol.EventRoomCreated:
		s.mu.Lock()
		s.roomKey = ev.RoomKey
		s.mu.Unlock()
		s.notify(Notice{Kind: NoticeRoomCreated, RoomKey: ev.RoomKey})

	case protocol.EventPlayerJoined:
		s.mu.Lock()
		s.opponent = ev.PlayerName
		s.mu.Unlock()
		s.notify(Notice{Kind: NoticePlayerJoined, Name: ev.PlayerName})
		if s.mode == ModeHosting {
			s.startRound(ctx)
		}

	case protocol.EventRoomJoined:
		s.mu.Lock()
		s.opponent = ev.PlayerName
		s.mu.Unlock()
		s.notify(Notice{Kind: NoticeRoomJoined, Name: ev.PlayerName})

	case protocol.EventGameStarted:
		if !game.IsPlayableWord(ev.Word) {
			log.Warn().Str("word", ev.Word).Msg("ignoring gameStarted with unplayable word")
			return
		}
		s.mu.Lock()
		if s.match == nil {
			s.match = game.NewMatch(ev.Word, ev.TimerSeconds, true)
		} else {
			s.match.Reset(ev.Word, ev.TimerSeconds)
		}
		s.reported = false
		s.mu.Unlock()
		s.notify(Notice{Kind: NoticeGameStarted, Seconds: ev.TimerSeconds})

	case protocol.EventOpponentProgress:
		if m := s.Match(); m != nil && ev.Progress != nil {
			m.SetOpponentSnapshot(*ev.Progress)
			s.notify(Notice{Kind: NoticeOpponentProgress, Snap: *ev.Progress})
		}

	case protocol.EventOpponentHintTaken:
		if m := s.Match(); m != nil {
			m.SetOpponentHintTaken()
		}
		s.notify(Notice{Kind: NoticeOpponentHint})

	case protocol.EventGameOver:
		if ev.Outcome == nil {
			return
		}
		s.mu.Lock()
		s.reported = true // the room already has its authoritative outcome
		m := s.match
		me := s.name
		s.mu.Unlock()
		if m != nil {
			m.ForceOutcome(localOutcome(*ev.Outcome, me))
		}
		s.notify(Notice{Kind: NoticeGameOver, Outcome: *ev.Outcome})

	case protocol.EventRematch:
		s.notify(Notice{Kind: NoticeRematch})
		if s.mode == ModeHosting {
			s.startRound(ctx)
		}

	case protocol.EventPlayerLeft:
		s.notify(Notice{Kind: NoticePlayerLeft, Name: ev.PlayerName})

	case protocol.EventRoomFull:
		s.notify(Notice{Kind: NoticeRoomFull})

	case protocol.EventError:
		s.notify(Notice{Kind: NoticeError, Message: ev.Message})
	}
}

// startRound picks a fresh word and distributes it. The host's own match is
// not armed here; like everyone else it waits for the gameStarted broadcast,
// so neither clock starts before both players have the word.
func (s *Session) startRound(ctx context.Context) {
	word, err := s.oracle.FetchCandidateWord(ctx, game.WordLength)
	if err != nil {
		// Unreachable with the fallback oracle; surfaced for bare oracles.
		s.notify(Notice{Kind: NoticeError, Message: err.Error()})
		return
	}
	s.mu.Lock()
	key := s.roomKey
	s.mu.Unlock()
	if err := s.relay.Send(ctx, protocol.ClientMessage{
		Type:         protocol.EventStartGame,
		RoomKey:      key,
		Word:         word,
		TimerSeconds: s.budget,
	}); err != nil {
		log.Warn().Err(err).Msg("sending startGame")
	}
}

// tick advances the countdown once the match is armed and reports the
// timeout outcome when the clock decides the round.
func (s *Session) tick(ctx context.Context) {
	m := s.Match()
	if m == nil {
		return
	}
	before := m.Outcome()
	m.Tick()
	s.notify(Notice{Kind: NoticeTick, Seconds: m.Remaining()})

	after := m.Outcome()
	if before != game.OutcomeUndecided || after == game.OutcomeUndecided {
		return
	}
	switch after {
	case game.OutcomeDraw:
		s.reportOutcome(ctx, protocol.OutcomeDescriptor{Reason: protocol.ReasonDraw})
	case game.OutcomeLost:
		s.reportOutcome(ctx, protocol.OutcomeDescriptor{
			WinnerName: s.Opponent(),
			Reason:     protocol.ReasonTimeout,
		})
	}
}

// HandleKey feeds one key from the presentation layer into the match:
// letters compose, BACKSPACE erases, ENTER submits. Invalid keys are
// ignored. Callers run this on the input goroutine; the dictionary lookup
// inside ENTER may block without stopping the countdown.
func (s *Session) HandleKey(ctx context.Context, key string) {
	m := s.Match()
	if m == nil {
		return
	}
	switch key {
	case "ENTER":
		s.submit(ctx, m)
	case "BACKSPACE":
		m.RemoveLastLetter()
	default:
		if len(key) == 1 {
			m.AppendLetter(rune(key[0]))
		}
	}
}

func (s *Session) submit(ctx context.Context, m *game.Match) {
	res, err := m.SubmitGuess(func(w string) (bool, error) {
		return s.oracle.IsValidWord(ctx, w)
	})
	switch {
	case errors.Is(err, game.ErrInvalidLength):
		s.notify(Notice{Kind: NoticeError, Message: "Word must be 5 letters long"})
		return
	case errors.Is(err, game.ErrNotAWord):
		s.notify(Notice{Kind: NoticeError, Message: "Not a valid word"})
		return
	case err != nil:
		return
	}

	s.notify(Notice{Kind: NoticeGuessResult, Guess: res})

	if s.relay != nil {
		snap := game.Snapshot{
			GuessCount:            m.CurrentRow(),
			CorrectCharacterCount: game.ExactCount(res.Word, m.Word()),
		}
		if err := s.relay.Send(ctx, protocol.ClientMessage{
			Type:     protocol.EventUpdateProgress,
			RoomKey:  s.RoomKey(),
			Progress: &snap,
		}); err != nil {
			log.Debug().Err(err).Msg("sending progress")
		}
	}

	switch m.Outcome() {
	case game.OutcomeWon:
		s.reportOutcome(ctx, protocol.OutcomeDescriptor{
			WinnerName: s.name,
			Reason:     protocol.ReasonSolved,
		})
	case game.OutcomeLost:
		s.reportOutcome(ctx, protocol.OutcomeDescriptor{
			WinnerName: s.Opponent(),
			Reason:     protocol.ReasonExhausted,
		})
	}
}

// reportOutcome sends the terminal result once per round. In solo mode the
// notice is emitted directly; in multiplayer the coordinator's broadcast
// (first report wins) is what reaches the notice stream.
func (s *Session) reportOutcome(ctx context.Context, o protocol.OutcomeDescriptor) {
	if s.relay == nil {
		s.notify(Notice{Kind: NoticeGameOver, Outcome: o})
		return
	}
	s.mu.Lock()
	if s.reported {
		s.mu.Unlock()
		return
	}
	s.reported = true
	key := s.roomKey
	s.mu.Unlock()

	if err := s.relay.Send(ctx, protocol.ClientMessage{
		Type:    protocol.EventGameOver,
		RoomKey: key,
		Outcome: &o,
	}); err != nil {
		log.Warn().Err(err).Msg("sending gameOver")
	}
}

// RequestHint opens the confirmation step. Returns false when a hint was
// already taken or a request is already pending.
func (s *Session) RequestHint() bool {
	m := s.Match()
	if m == nil {
		return false
	}
	_, _, ok := m.AdvanceHint(game.HintRequest)
	return ok
}

// ConfirmHint resolves the pending confirmation. Declining aborts with no
// side effect. Confirming schedules the reveal after the flow's delay; the
// peer is notified only once the hint is actually revealed.
func (s *Session) ConfirmHint(ctx context.Context, confirmed bool) {
	m := s.Match()
	if m == nil {
		return
	}
	if !confirmed {
		m.AdvanceHint(game.HintDecline)
		return
	}
	_, delay, ok := m.AdvanceHint(game.HintConfirm)
	if !ok {
		return
	}
	time.AfterFunc(delay, func() {
		if ctx.Err() != nil {
			return
		}
		if _, _, ok := m.AdvanceHint(game.HintRevealDone); !ok {
			return
		}
		hint, _ := m.Hint()
		s.notify(Notice{Kind: NoticeHintRevealed, Hint: hint})
		if s.relay != nil {
			if err := s.relay.Send(ctx, protocol.ClientMessage{
				Type:    protocol.EventHintTaken,
				RoomKey: s.RoomKey(),
			}); err != nil {
				log.Debug().Err(err).Msg("sending hintTaken")
			}
		}
	})
}

// RequestRematch asks the coordinator to reset the room. The actual reset
// happens when the rematch broadcast comes back.
func (s *Session) RequestRematch(ctx context.Context) {
	if s.relay == nil {
		s.soloRematch(ctx)
		return
	}
	if err := s.relay.Send(ctx, protocol.ClientMessage{
		Type:    protocol.EventRematch,
		RoomKey: s.RoomKey(),
	}); err != nil {
		log.Warn().Err(err).Msg("sending rematch")
	}
}

func (s *Session) soloRematch(ctx context.Context) {
	word, err := s.oracle.FetchCandidateWord(ctx, game.WordLength)
	if err != nil {
		s.notify(Notice{Kind: NoticeError, Message: err.Error()})
		return
	}
	s.mu.Lock()
	s.match.Reset(word, s.budget)
	s.mu.Unlock()
	s.notify(Notice{Kind: NoticeGameStarted, Seconds: s.budget})
}

// Leave exits the room and tears the relay down. After Close the event
// channel drains and Run returns; no relayed event can touch the Match
// again.
func (s *Session) Leave(ctx context.Context) {
	if s.relay == nil {
		return
	}
	if key := s.RoomKey(); key != "" {
		if err := s.relay.Send(ctx, protocol.ClientMessage{
			Type:    protocol.EventLeaveRoom,
			RoomKey: key,
		}); err != nil {
			log.Debug().Err(err).Msg("sending leaveRoom")
		}
	}
	_ = s.relay.Close()
}

// Match returns the current match, nil until the round starts.
func (s *Session) Match() *game.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match
}

func (s *Session) RoomKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomKey
}

func (s *Session) Opponent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opponent
}

func (s *Session) Name() string { return s.name }
func (s *Session) Mode() Mode   { return s.mode }

// localOutcome translates the room's broadcast outcome into this player's
// terminal state.
func localOutcome(o protocol.OutcomeDescriptor, me string) game.Outcome {
	switch {
	case o.Reason == protocol.ReasonDraw:
		return game.OutcomeDraw
	case o.WinnerName == me:
		return game.OutcomeWon
	default:
		return game.OutcomeLost
	}
}
