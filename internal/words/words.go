// Package words supplies candidate secret words and dictionary validation.
//
// The primary implementation talks to remote word services; a local list
// embedded at build time serves as the fallback so the game keeps working
// when the network does not.
package words

import (
	"context"
	"crypto/rand"
	_ "embed"
	"errors"
	"math/big"
	"strings"
	"sync"
)

// Oracle answers the two questions the game needs: give me a word to guess,
// and is this string a real word. Implementations may fail with network
// errors; callers wrap them with WithFallback.
type Oracle interface {
	FetchCandidateWord(ctx context.Context, length int) (string, error)
	IsValidWord(ctx context.Context, word string) (bool, error)
}

//go:embed fallback_words.txt
var embeddedWords string

var errEmptyList = errors.New("words: no words of requested length")

// LocalList is the embedded fallback word list. Candidate selection excludes
// the last word it served so back-to-back rounds never repeat.
type LocalList struct {
	mu    sync.Mutex
	words []string
	set   map[string]struct{}
	last  string
}

// NewLocalList loads the embedded list, keeping only well-formed uppercase
// alphabetic entries.
func NewLocalList() *LocalList {
	l := &LocalList{set: make(map[string]struct{})}
	for _, line := range strings.Split(embeddedWords, "\n") {
		w := strings.ToUpper(strings.TrimSpace(line))
		if w == "" || !isUpperAlpha(w) {
			continue
		}
		l.words = append(l.words, w)
		l.set[w] = struct{}{}
	}
	return l
}

// FetchCandidateWord picks a random word of the requested length, never
// returning the same word twice in a row.
func (l *LocalList) FetchCandidateWord(_ context.Context, length int) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pool := make([]string, 0, len(l.words))
	for _, w := range l.words {
		if len(w) == length && w != l.last {
			pool = append(pool, w)
		}
	}
	if len(pool) == 0 {
		// Only possible when the list holds a single word of this length.
		for _, w := range l.words {
			if len(w) == length {
				pool = append(pool, w)
			}
		}
	}
	if len(pool) == 0 {
		return "", errEmptyList
	}

	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
	if err != nil {
		return "", err
	}
	w := pool[nBig.Int64()]
	l.last = w
	return w, nil
}

// IsValidWord reports membership in the embedded list.
func (l *LocalList) IsValidWord(_ context.Context, word string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.set[strings.ToUpper(word)]
	return ok, nil
}

// Len reports how many words the list loaded.
func (l *LocalList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.words)
}

// WithFallback wraps primary so that any error is recovered through the
// local list. Callers never observe oracle unavailability.
func WithFallback(primary Oracle, local *LocalList) Oracle {
	return &fallbackOracle{primary: primary, local: local}
}

type fallbackOracle struct {
	primary Oracle
	local   *LocalList
}

func (f *fallbackOracle) FetchCandidateWord(ctx context.Context, length int) (string, error) {
	if f.primary != nil {
		if w, err := f.primary.FetchCandidateWord(ctx, length); err == nil {
			return w, nil
		}
	}
	return f.local.FetchCandidateWord(ctx, length)
}

func (f *fallbackOracle) IsValidWord(ctx context.Context, word string) (bool, error) {
	if f.primary != nil {
		if ok, err := f.primary.IsValidWord(ctx, word); err == nil {
			return ok, nil
		}
	}
	return f.local.IsValidWord(ctx, word)
}

func isUpperAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
