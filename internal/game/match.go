package game

import (
	"errors"
	"sync"
	"time"
)

const (
	WordLength = 5
	MaxGuesses = 6
)

// Outcome is the terminal result of a match. It transitions exactly once
// away from OutcomeUndecided; later attempts to set it are ignored.
type Outcome string

const (
	OutcomeUndecided Outcome = "undecided"
	OutcomeWon       Outcome = "won"
	OutcomeLost      Outcome = "lost"
	OutcomeDraw      Outcome = "draw"
)

var (
	ErrInvalidLength = errors.New("guess must be exactly five letters")
	ErrNotAWord      = errors.New("not in word list")
	ErrMatchOver     = errors.New("match already decided")
)

// Snapshot is the best-effort summary of the opponent's progress as last
// relayed by the coordinator. It is advisory only and never drives the
// local player's board.
type Snapshot struct {
	GuessCount            int `json:"guesses"`
	CorrectCharacterCount int `json:"correctChars"`
}

// Won reports whether the snapshot shows a fully solved row.
func (s Snapshot) Won() bool { return s.CorrectCharacterCount >= WordLength }

// Match is one player's authoritative local game state. It is mutated only
// by validated local input or by applying events relayed from the peer.
type Match struct {
	mu sync.Mutex

	word      string
	current   string
	history   []GuessResult
	remaining int
	versus    bool

	outcome  Outcome
	hint     HintState
	opponent Snapshot
	oppHint  bool
}

// NewMatch starts a match against the given secret word with a countdown
// budget in seconds. versus selects the multiplayer timeout policy.
func NewMatch(word string, budgetSeconds int, versus bool) *Match {
	return &Match{
		word:      word,
		remaining: budgetSeconds,
		versus:    versus,
		outcome:   OutcomeUndecided,
		hint:      HintIdle,
	}
}

// Reset rearms the match for a rematch round. The secret word is always
// replaced, never reused.
func (m *Match) Reset(word string, budgetSeconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.word = word
	m.current = ""
	m.history = nil
	m.remaining = budgetSeconds
	m.outcome = OutcomeUndecided
	m.hint = HintIdle
	m.opponent = Snapshot{}
	m.oppHint = false
}

// AppendLetter adds one uppercase letter to the row being composed.
// Anything else (full row, finished match, non-letter) is silently ignored.
func (m *Match) AppendLetter(ch rune) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcome != OutcomeUndecided || len(m.history) >= MaxGuesses {
		return
	}
	if ch < 'A' || ch > 'Z' || len(m.current) >= WordLength {
		return
	}
	m.current += string(ch)
}

// RemoveLastLetter deletes the last composed letter, if any.
func (m *Match) RemoveLastLetter() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcome != OutcomeUndecided || len(m.current) == 0 {
		return
	}
	m.current = m.current[:len(m.current)-1]
}

// SubmitGuess finalizes the current row. validate is the dictionary check
// (the word oracle); it runs outside the match lock so a slow lookup never
// blocks the countdown. On success the guess is scored, appended to the
// history, and the terminal conditions are applied: solving the word wins,
// exhausting all rows loses.
func (m *Match) SubmitGuess(validate func(word string) (bool, error)) (GuessResult, error) {
	m.mu.Lock()
	if m.outcome != OutcomeUndecided {
		m.mu.Unlock()
		return GuessResult{}, ErrMatchOver
	}
	guess := m.current
	m.mu.Unlock()

	if len(guess) != WordLength || !isUpperAlpha(guess) {
		return GuessResult{}, ErrInvalidLength
	}
	if validate != nil {
		ok, err := validate(guess)
		if err != nil {
			return GuessResult{}, err
		}
		if !ok {
			return GuessResult{}, ErrNotAWord
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcome != OutcomeUndecided {
		// Timer expired while the oracle was consulted.
		return GuessResult{}, ErrMatchOver
	}
	if m.current != guess {
		return GuessResult{}, ErrInvalidLength
	}

	res := GuessResult{Word: guess, Verdicts: Evaluate(guess, m.word)}
	m.history = append(m.history, res)
	m.current = ""

	if guess == m.word {
		m.outcome = OutcomeWon
	} else if len(m.history) >= MaxGuesses {
		m.outcome = OutcomeLost
	}
	return res, nil
}

// Tick advances the countdown by one second. Reaching zero forces a
// terminal outcome if none is set: in solo play a timeout is a loss; in a
// versus match it is a draw unless the last opponent snapshot already shows
// a solved word, in which case the timed-out player loses.
func (m *Match) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcome != OutcomeUndecided || m.remaining <= 0 {
		return
	}
	m.remaining--
	if m.remaining > 0 {
		return
	}
	if m.versus && !m.opponent.Won() {
		m.outcome = OutcomeDraw
	} else {
		m.outcome = OutcomeLost
	}
}

// ForceOutcome applies a terminal outcome decided elsewhere (the peer's
// authoritative gameOver broadcast). It is a no-op once decided locally.
func (m *Match) ForceOutcome(o Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcome == OutcomeUndecided && o != OutcomeUndecided {
		m.outcome = o
	}
}

// AdvanceHint feeds one input into the hint state machine. The returned
// delay, when positive, tells the caller to schedule the follow-up input
// (HintRevealDone) after that duration.
func (m *Match) AdvanceHint(in HintInput) (HintState, time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcome != OutcomeUndecided {
		return m.hint, 0, false
	}
	next, delay, ok := nextHintState(m.hint, in)
	m.hint = next
	return next, delay, ok
}

// Hint returns the masked secret word once the hint has been revealed.
func (m *Match) Hint() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hint != HintRevealed {
		return "", false
	}
	return HintMask(m.word), true
}

// SetOpponentSnapshot records the peer's last reported progress.
func (m *Match) SetOpponentSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opponent = s
}

// SetOpponentHintTaken records the cosmetic hint notice from the peer.
func (m *Match) SetOpponentHintTaken() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oppHint = true
}

func (m *Match) Word() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.word
}

func (m *Match) CurrentGuess() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// CurrentRow is the index of the row being composed.
func (m *Match) CurrentRow() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history)
}

func (m *Match) History() []GuessResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GuessResult, len(m.history))
	copy(out, m.history)
	return out
}

func (m *Match) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remaining
}

func (m *Match) Outcome() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcome
}

func (m *Match) HintState() HintState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hint
}

func (m *Match) OpponentSnapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opponent
}

func (m *Match) OpponentHintTaken() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.oppHint
}
