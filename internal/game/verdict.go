package game

// Verdict is the per-position result of evaluating one guessed letter.
type Verdict string

const (
	VerdictExact   Verdict = "exact"   // right letter, right position
	VerdictPresent Verdict = "present" // right letter, wrong position
	VerdictAbsent  Verdict = "absent"  // letter not in the word (or duplicate surplus)
)

// LetterStatus is the aggregate keyboard state for one letter across all
// finalized guesses. Ordering: exact > present > absent > unused.
type LetterStatus string

const (
	LetterUnused  LetterStatus = "unused"
	LetterAbsent  LetterStatus = "absent"
	LetterPresent LetterStatus = "present"
	LetterExact   LetterStatus = "exact"
)

var statusRank = map[LetterStatus]int{
	LetterUnused:  0,
	LetterAbsent:  1,
	LetterPresent: 2,
	LetterExact:   3,
}

func statusOf(v Verdict) LetterStatus {
	switch v {
	case VerdictExact:
		return LetterExact
	case VerdictPresent:
		return LetterPresent
	default:
		return LetterAbsent
	}
}

// GuessResult is one finalized guess together with its verdicts.
type GuessResult struct {
	Word     string
	Verdicts []Verdict
}

// Keyboard returns the best status observed for every letter guessed so far.
// Letters never guessed are omitted; callers treat a missing key as unused.
func Keyboard(history []GuessResult) map[rune]LetterStatus {
	best := make(map[rune]LetterStatus)
	for _, g := range history {
		for i, r := range g.Word {
			s := statusOf(g.Verdicts[i])
			if statusRank[s] > statusRank[best[r]] {
				best[r] = s
			}
		}
	}
	return best
}
