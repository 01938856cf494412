package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"griddle/internal/game"
	"griddle/internal/protocol"
)

// scriptedOracle serves a fixed candidate word and accepts every guess not
// listed as invalid.
type scriptedOracle struct {
	word    string
	invalid map[string]bool
}

func (o scriptedOracle) FetchCandidateWord(ctx context.Context, length int) (string, error) {
	return o.word, nil
}

func (o scriptedOracle) IsValidWord(ctx context.Context, word string) (bool, error) {
	return !o.invalid[word], nil
}

// fakeRelay records sends and lets the test inject server events.
type fakeRelay struct {
	mu     sync.Mutex
	sent   []protocol.ClientMessage
	events chan protocol.ServerMessage
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{events: make(chan protocol.ServerMessage, 16)}
}

func (r *fakeRelay) Send(ctx context.Context, msg protocol.ClientMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *fakeRelay) Events() <-chan protocol.ServerMessage { return r.events }

func (r *fakeRelay) Close() error {
	close(r.events)
	return nil
}

func (r *fakeRelay) sentMessages() []protocol.ClientMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]protocol.ClientMessage, len(r.sent))
	copy(out, r.sent)
	return out
}

// waitSent blocks until the relay has recorded a message of the given type.
func waitSent(t *testing.T, r *fakeRelay, typ protocol.EventType) protocol.ClientMessage {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		for _, msg := range r.sentMessages() {
			if msg.Type == typ {
				return msg
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s to be sent", typ)
	return protocol.ClientMessage{}
}

// waitNotice drains the notice stream until the given kind shows up. Ticks
// and other interleaved notices are skipped.
func waitNotice(t *testing.T, s *Session, kind NoticeKind) Notice {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case n := <-s.Notices():
			if n.Kind == kind {
				return n
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s notice", kind)
		}
	}
}

func TestSolo_WinReportsSolved(t *testing.T) {
	s := NewSolo(scriptedOracle{word: "APPLE"}, 60)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	waitNotice(t, s, NoticeGameStarted)
	for _, ch := range "APPLE" {
		s.HandleKey(ctx, string(ch))
	}
	s.HandleKey(ctx, "ENTER")

	res := waitNotice(t, s, NoticeGuessResult)
	if res.Guess.Word != "APPLE" {
		t.Errorf("guess result word = %q", res.Guess.Word)
	}
	over := waitNotice(t, s, NoticeGameOver)
	if over.Outcome.Reason != protocol.ReasonSolved {
		t.Errorf("reason = %q, want solved", over.Outcome.Reason)
	}
	if s.Match().Outcome() != game.OutcomeWon {
		t.Errorf("outcome = %q, want won", s.Match().Outcome())
	}
}

func TestSolo_RejectedGuessKeepsRow(t *testing.T) {
	s := NewSolo(scriptedOracle{word: "APPLE", invalid: map[string]bool{"ZZZZZ": true}}, 60)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	waitNotice(t, s, NoticeGameStarted)
	for _, ch := range "ZZZZZ" {
		s.HandleKey(ctx, string(ch))
	}
	s.HandleKey(ctx, "ENTER")

	if n := waitNotice(t, s, NoticeError); n.Message != "Not a valid word" {
		t.Errorf("error message = %q", n.Message)
	}
	if got := s.Match().CurrentGuess(); got != "ZZZZZ" {
		t.Errorf("current guess = %q, want the rejected input kept", got)
	}
}

func TestHosting_StartsRoundWhenOpponentJoins(t *testing.T) {
	relay := newFakeRelay()
	s := NewHosting(scriptedOracle{word: "OCEAN"}, relay, "Ava", 120)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	if msg := waitSent(t, relay, protocol.EventCreateRoom); msg.DisplayName != "Ava" {
		t.Errorf("createRoom name = %q", msg.DisplayName)
	}

	relay.events <- protocol.ServerMessage{Type: protocol.EventRoomCreated, RoomKey: "ABC234"}
	if n := waitNotice(t, s, NoticeRoomCreated); n.RoomKey != "ABC234" {
		t.Errorf("room key = %q", n.RoomKey)
	}

	relay.events <- protocol.ServerMessage{Type: protocol.EventPlayerJoined, PlayerName: "Ben"}
	waitNotice(t, s, NoticePlayerJoined)

	start := waitSent(t, relay, protocol.EventStartGame)
	if start.RoomKey != "ABC234" || start.Word != "OCEAN" || start.TimerSeconds != 120 {
		t.Fatalf("startGame = %+v", start)
	}

	// The host arms its own match from the broadcast like everyone else.
	if s.Match() != nil {
		t.Fatal("match armed before gameStarted broadcast")
	}
	relay.events <- protocol.ServerMessage{Type: protocol.EventGameStarted, Word: "OCEAN", TimerSeconds: 120}
	waitNotice(t, s, NoticeGameStarted)
	if m := s.Match(); m == nil || m.Word() != "OCEAN" {
		t.Fatalf("match not armed from broadcast")
	}
	if s.Opponent() != "Ben" {
		t.Errorf("opponent = %q", s.Opponent())
	}
}

func TestJoined_AppliesRemoteEvents(t *testing.T) {
	relay := newFakeRelay()
	s := NewJoined(scriptedOracle{}, relay, "Ben", "ABC234")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	join := waitSent(t, relay, protocol.EventJoinRoom)
	if join.RoomKey != "ABC234" || join.DisplayName != "Ben" {
		t.Fatalf("joinRoom = %+v", join)
	}

	relay.events <- protocol.ServerMessage{Type: protocol.EventRoomJoined, PlayerName: "Ava"}
	waitNotice(t, s, NoticeRoomJoined)
	relay.events <- protocol.ServerMessage{Type: protocol.EventGameStarted, Word: "OCEAN", TimerSeconds: 300}
	waitNotice(t, s, NoticeGameStarted)

	relay.events <- protocol.ServerMessage{
		Type:     protocol.EventOpponentProgress,
		Progress: &game.Snapshot{GuessCount: 2, CorrectCharacterCount: 3},
	}
	n := waitNotice(t, s, NoticeOpponentProgress)
	if n.Snap.GuessCount != 2 || n.Snap.CorrectCharacterCount != 3 {
		t.Errorf("snapshot = %+v", n.Snap)
	}
	if s.Match().OpponentSnapshot().GuessCount != 2 {
		t.Error("snapshot not applied to match")
	}

	relay.events <- protocol.ServerMessage{Type: protocol.EventOpponentHintTaken}
	waitNotice(t, s, NoticeOpponentHint)
	if !s.Match().OpponentHintTaken() {
		t.Error("opponent hint not recorded")
	}

	// The room's broadcast settles the local outcome even though this
	// player did not finish.
	relay.events <- protocol.ServerMessage{
		Type:    protocol.EventGameOver,
		Outcome: &protocol.OutcomeDescriptor{WinnerName: "Ava", Reason: protocol.ReasonSolved},
	}
	over := waitNotice(t, s, NoticeGameOver)
	if over.Outcome.WinnerName != "Ava" {
		t.Errorf("winner = %q", over.Outcome.WinnerName)
	}
	if got := s.Match().Outcome(); got != game.OutcomeLost {
		t.Errorf("local outcome = %q, want lost", got)
	}
}

func TestGameStarted_UnplayableWordIgnored(t *testing.T) {
	relay := newFakeRelay()
	s := NewJoined(scriptedOracle{}, relay, "Ben", "ABC234")

	ctx := context.Background()
	for _, w := range []string{"HI", "OC3AN", "ocean", ""} {
		s.handleEvent(ctx, protocol.ServerMessage{Type: protocol.EventGameStarted, Word: w, TimerSeconds: 300})
		if s.Match() != nil {
			t.Fatalf("match armed from unplayable word %q", w)
		}
	}

	s.handleEvent(ctx, protocol.ServerMessage{Type: protocol.EventGameStarted, Word: "OCEAN", TimerSeconds: 300})
	if m := s.Match(); m == nil || m.Word() != "OCEAN" {
		t.Fatal("match not armed from a playable word")
	}
}

func TestTimeout_VersusDrawReported(t *testing.T) {
	relay := newFakeRelay()
	s := NewJoined(scriptedOracle{}, relay, "Ben", "ABC234")
	s.match = game.NewMatch("OCEAN", 1, true)

	s.tick(context.Background())

	msg := waitSent(t, relay, protocol.EventGameOver)
	if msg.Outcome == nil || msg.Outcome.Reason != protocol.ReasonDraw || msg.Outcome.WinnerName != "" {
		t.Fatalf("outcome = %+v, want draw with no winner", msg.Outcome)
	}

	// Later ticks must not report again.
	before := len(relay.sentMessages())
	s.tick(context.Background())
	if got := len(relay.sentMessages()); got != before {
		t.Errorf("sent %d extra messages after the round was decided", got-before)
	}
}

func TestTimeout_OpponentSolvedMeansLoss(t *testing.T) {
	relay := newFakeRelay()
	s := NewJoined(scriptedOracle{}, relay, "Ben", "ABC234")
	s.opponent = "Ava"
	s.match = game.NewMatch("OCEAN", 1, true)
	s.match.SetOpponentSnapshot(game.Snapshot{GuessCount: 4, CorrectCharacterCount: 5})

	s.tick(context.Background())

	msg := waitSent(t, relay, protocol.EventGameOver)
	if msg.Outcome == nil || msg.Outcome.Reason != protocol.ReasonTimeout || msg.Outcome.WinnerName != "Ava" {
		t.Fatalf("outcome = %+v, want timeout won by Ava", msg.Outcome)
	}
}

func TestHint_ConfirmSchedulesRevealAndNotifiesPeer(t *testing.T) {
	relay := newFakeRelay()
	s := NewJoined(scriptedOracle{}, relay, "Ben", "ABC234")
	s.roomKey = "ABC234"
	s.match = game.NewMatch("OCEAN", 300, true)

	ctx := context.Background()

	if !s.RequestHint() {
		t.Fatal("first hint request refused")
	}
	s.ConfirmHint(ctx, false)
	if got := s.match.HintState(); got != game.HintIdle {
		t.Fatalf("state after decline = %v, want idle", got)
	}

	if !s.RequestHint() {
		t.Fatal("hint request after decline refused")
	}
	s.ConfirmHint(ctx, true)

	n := waitNotice(t, s, NoticeHintRevealed)
	if n.Hint != "*C*A*" {
		t.Errorf("hint = %q, want *C*A*", n.Hint)
	}
	if msg := waitSent(t, relay, protocol.EventHintTaken); msg.RoomKey != "ABC234" {
		t.Errorf("hintTaken room = %q", msg.RoomKey)
	}
}

func TestRematch_HostDealsFreshWordAndResets(t *testing.T) {
	relay := newFakeRelay()
	s := NewHosting(scriptedOracle{word: "PEARL"}, relay, "Ava", 120)
	s.roomKey = "ABC234"
	s.match = game.NewMatch("OCEAN", 120, true)
	s.match.ForceOutcome(game.OutcomeLost)
	s.reported = true

	ctx := context.Background()
	s.handleEvent(ctx, protocol.ServerMessage{Type: protocol.EventRematch})
	waitNotice(t, s, NoticeRematch)

	start := waitSent(t, relay, protocol.EventStartGame)
	if start.Word != "PEARL" || start.RoomKey != "ABC234" {
		t.Fatalf("rematch startGame = %+v", start)
	}

	s.handleEvent(ctx, protocol.ServerMessage{Type: protocol.EventGameStarted, Word: "PEARL", TimerSeconds: 120})
	if got := s.match.Word(); got != "PEARL" {
		t.Errorf("word after rematch = %q", got)
	}
	if got := s.match.Outcome(); got != game.OutcomeUndecided {
		t.Errorf("outcome after rematch = %q, want undecided", got)
	}
	if s.reported {
		t.Error("report guard not cleared for the new round")
	}
}

func TestLeave_SendsLeaveAndClosesRelay(t *testing.T) {
	relay := newFakeRelay()
	s := NewJoined(scriptedOracle{}, relay, "Ben", "ABC234")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	waitSent(t, relay, protocol.EventJoinRoom)

	s.Leave(ctx)
	if msg := waitSent(t, relay, protocol.EventLeaveRoom); msg.RoomKey != "ABC234" {
		t.Errorf("leaveRoom key = %q", msg.RoomKey)
	}

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected Run to report the closed connection")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Leave")
	}
}
