package game

import (
	"strings"
	"time"
)

// HintState is the explicit hint flow: a request must be confirmed before
// anything is revealed, and the reveal itself is a scheduled transition so
// the front end can animate it without nested callbacks.
type HintState string

const (
	HintIdle           HintState = "idle"
	HintPendingConfirm HintState = "pending_confirm"
	HintRevealing      HintState = "revealing"
	HintRevealed       HintState = "revealed"
)

// HintInput drives the hint state machine.
type HintInput string

const (
	HintRequest    HintInput = "request"
	HintConfirm    HintInput = "confirm"
	HintDecline    HintInput = "decline"
	HintRevealDone HintInput = "reveal_done"
)

// revealDelay is the pause between confirming a hint and revealing it.
const revealDelay = 2 * time.Second

// hintRevealPositions are the word indices a hint exposes; the rest stay masked.
var hintRevealPositions = []int{1, 3}

// nextHintState is the single transition function for the hint flow.
// It returns the next state, an optional delay after which the caller should
// feed the follow-up input (HintRevealDone), and whether the input was valid
// in the current state. Invalid inputs leave the state unchanged.
func nextHintState(cur HintState, in HintInput) (next HintState, delay time.Duration, ok bool) {
	switch {
	case cur == HintIdle && in == HintRequest:
		return HintPendingConfirm, 0, true
	case cur == HintPendingConfirm && in == HintConfirm:
		return HintRevealing, revealDelay, true
	case cur == HintPendingConfirm && in == HintDecline:
		return HintIdle, 0, true
	case cur == HintRevealing && in == HintRevealDone:
		return HintRevealed, 0, true
	}
	return cur, 0, false
}

// HintMask returns the word with only the fixed hint positions exposed.
func HintMask(word string) string {
	var b strings.Builder
	for i := range word {
		if containsInt(hintRevealPositions, i) {
			b.WriteByte(word[i])
		} else {
			b.WriteByte('*')
		}
	}
	return b.String()
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
