package words

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultRandomWordURL = "https://random-word-api.herokuapp.com/word"
	defaultDictionaryURL = "https://api.dictionaryapi.dev/api/v2/entries/en"
)

// HTTPOracle consults two public word services: one that hands out random
// words of a given length and one that confirms dictionary membership.
type HTTPOracle struct {
	RandomWordURL string
	DictionaryURL string
	Client        *http.Client
}

// NewHTTPOracle builds an oracle against the default public endpoints.
func NewHTTPOracle() *HTTPOracle {
	return &HTTPOracle{
		RandomWordURL: defaultRandomWordURL,
		DictionaryURL: defaultDictionaryURL,
		Client:        &http.Client{Timeout: 5 * time.Second},
	}
}

// FetchCandidateWord asks the random-word service for one word of the given
// length and double-checks it against the dictionary; a word the dictionary
// does not know is treated as a fetch failure so the caller falls back.
func (o *HTTPOracle) FetchCandidateWord(ctx context.Context, length int) (string, error) {
	u := fmt.Sprintf("%s?length=%d", o.RandomWordURL, length)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := o.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching candidate word: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("word service returned %d", resp.StatusCode)
	}

	var list []string
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", fmt.Errorf("decoding word service response: %w", err)
	}
	if len(list) == 0 {
		return "", errors.New("word service returned no words")
	}

	word := strings.ToUpper(strings.TrimSpace(list[0]))
	if len(word) != length {
		return "", fmt.Errorf("word service returned %q, want length %d", word, length)
	}
	ok, err := o.IsValidWord(ctx, word)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("candidate %q not in dictionary", word)
	}
	return word, nil
}

// IsValidWord reports whether the dictionary service knows the word.
// A 404 is a definite "no"; any other non-200 status is an error so the
// fallback list gets a say.
func (o *HTTPOracle) IsValidWord(ctx context.Context, word string) (bool, error) {
	u := o.DictionaryURL + "/" + url.PathEscape(strings.ToLower(word))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	resp, err := o.client().Do(req)
	if err != nil {
		return false, fmt.Errorf("checking word: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("dictionary service returned %d", resp.StatusCode)
	}
}

func (o *HTTPOracle) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}
