package game

import "testing"

func verdictsEqual(a, b []Verdict) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		guess string
		word  string
		want  []Verdict
	}{
		{
			name:  "all exact",
			guess: "APPLE",
			word:  "APPLE",
			want:  []Verdict{VerdictExact, VerdictExact, VerdictExact, VerdictExact, VerdictExact},
		},
		{
			name:  "no overlap",
			guess: "MUDDY",
			word:  "STONE",
			want:  []Verdict{VerdictAbsent, VerdictAbsent, VerdictAbsent, VerdictAbsent, VerdictAbsent},
		},
		{
			name:  "duplicate guess letter, single word occurrence",
			guess: "ALLOY",
			word:  "APPLE",
			// APPLE has one L; the first L in the guess takes it as present,
			// the second gets nothing.
			want: []Verdict{VerdictExact, VerdictPresent, VerdictAbsent, VerdictAbsent, VerdictAbsent},
		},
		{
			name:  "repeated letters capped by word counts",
			guess: "SPEED",
			word:  "ERASE",
			want:  []Verdict{VerdictPresent, VerdictAbsent, VerdictPresent, VerdictPresent, VerdictAbsent},
		},
		{
			name:  "exact matches consume their occurrences first",
			guess: "EERIE",
			word:  "ERASE",
			// Both E's in ERASE are claimed by the exacts at positions 0 and
			// 4, so the non-exact E at position 1 earns nothing.
			want: []Verdict{VerdictExact, VerdictAbsent, VerdictPresent, VerdictAbsent, VerdictExact},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.guess, tt.word)
			if !verdictsEqual(got, tt.want) {
				t.Errorf("Evaluate(%q, %q) = %v, want %v", tt.guess, tt.word, got, tt.want)
			}
		})
	}
}

func TestEvaluate_OneVerdictPerPosition(t *testing.T) {
	got := Evaluate("SPEED", "ERASE")
	if len(got) != 5 {
		t.Fatalf("got %d verdicts, want 5", len(got))
	}
	for i, v := range got {
		if v != VerdictExact && v != VerdictPresent && v != VerdictAbsent {
			t.Errorf("position %d has invalid verdict %q", i, v)
		}
	}
}

func TestEvaluate_CreditNeverExceedsWordCounts(t *testing.T) {
	words := []string{"ERASE", "APPLE", "SPEED", "OCEAN", "QUEEN"}
	guesses := []string{"SPEED", "ALLOY", "EERIE", "ESSES", "PAPER"}

	for _, w := range words {
		var wordCounts [26]int
		for i := 0; i < len(w); i++ {
			wordCounts[w[i]-'A']++
		}
		for _, g := range guesses {
			res := Evaluate(g, w)
			var credit [26]int
			for i, v := range res {
				if v == VerdictExact || v == VerdictPresent {
					credit[g[i]-'A']++
				}
			}
			for c := 0; c < 26; c++ {
				if credit[c] > wordCounts[c] {
					t.Errorf("Evaluate(%q, %q): letter %c credited %d times, word has %d",
						g, w, 'A'+c, credit[c], wordCounts[c])
				}
			}
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	first := Evaluate("ALLOY", "APPLE")
	second := Evaluate("ALLOY", "APPLE")
	if !verdictsEqual(first, second) {
		t.Errorf("re-evaluating the same guess changed the verdicts: %v vs %v", first, second)
	}
}

func TestIsPlayableWord(t *testing.T) {
	playable := []string{"APPLE", "OCEAN", "QQQQQ"}
	for _, w := range playable {
		if !IsPlayableWord(w) {
			t.Errorf("IsPlayableWord(%q) = false, want true", w)
		}
	}
	unplayable := []string{"", "HI", "TOOLONG", "ocean", "OC3AN", "OCÉAN", "OCEA "}
	for _, w := range unplayable {
		if IsPlayableWord(w) {
			t.Errorf("IsPlayableWord(%q) = true, want false", w)
		}
	}
}

func TestExactCount(t *testing.T) {
	if got := ExactCount("ALLOY", "APPLE"); got != 1 {
		t.Errorf("ExactCount(ALLOY, APPLE) = %d, want 1", got)
	}
	if got := ExactCount("APPLE", "APPLE"); got != 5 {
		t.Errorf("ExactCount(APPLE, APPLE) = %d, want 5", got)
	}
}

func TestKeyboard(t *testing.T) {
	history := []GuessResult{
		{Word: "ALLOY", Verdicts: Evaluate("ALLOY", "APPLE")},
		{Word: "PLANE", Verdicts: Evaluate("PLANE", "APPLE")},
	}
	kb := Keyboard(history)

	if kb['A'] != LetterExact {
		t.Errorf("A = %q, want %q", kb['A'], LetterExact)
	}
	if kb['Y'] != LetterAbsent {
		t.Errorf("Y = %q, want %q", kb['Y'], LetterAbsent)
	}
	if _, ok := kb['Z']; ok {
		t.Error("Z was never guessed, should be absent from the map")
	}
	// L appears as present in both guesses, never exact.
	if kb['L'] != LetterPresent {
		t.Errorf("L = %q, want %q", kb['L'], LetterPresent)
	}
}

func TestKeyboard_BestVerdictWins(t *testing.T) {
	// E is absent-scored in one guess and exact in a later one; the keyboard
	// must keep the best.
	history := []GuessResult{
		{Word: "EERIE", Verdicts: Evaluate("EERIE", "ERASE")},
		{Word: "SPEED", Verdicts: Evaluate("SPEED", "ERASE")},
	}
	kb := Keyboard(history)
	if kb['E'] != LetterExact {
		t.Errorf("E = %q, want %q", kb['E'], LetterExact)
	}
}
