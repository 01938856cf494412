package game

// Evaluate scores a finalized guess against the secret word using the
// standard two-pass algorithm. Both strings must be the same length and
// uppercase A-Z; callers validate before finalizing a guess.
//
// Pass 1 marks exact matches and counts the remaining (non-exact) word
// letters. Pass 2 walks the guess left to right: a non-exact letter is
// present only while the remaining count for that letter is positive, so a
// duplicate in the guess never earns more credit than the word actually
// contains.
func Evaluate(guess, word string) []Verdict {
	n := len(guess)
	res := make([]Verdict, n)

	var counts [26]int
	for i := 0; i < n; i++ {
		if guess[i] == word[i] {
			res[i] = VerdictExact
		} else {
			counts[word[i]-'A']++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == VerdictExact {
			continue
		}
		j := int(guess[i] - 'A')
		if j >= 0 && j < 26 && counts[j] > 0 {
			res[i] = VerdictPresent
			counts[j]--
		} else {
			res[i] = VerdictAbsent
		}
	}
	return res
}

// ExactCount returns how many positions of the guess match the word exactly.
// Used for the advisory progress snapshot sent to the opponent.
func ExactCount(guess, word string) int {
	n := 0
	for i := 0; i < len(guess) && i < len(word); i++ {
		if guess[i] == word[i] {
			n++
		}
	}
	return n
}

// IsPlayableWord reports whether a word can serve as a match secret:
// exactly WordLength uppercase A-Z letters. Evaluate assumes this shape, so
// anything crossing a trust boundary is checked first.
func IsPlayableWord(word string) bool {
	return len(word) == WordLength && isUpperAlpha(word)
}

func isUpperAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
