// Package domain holds the quote, category and style types and the errors
// the application reports. It has no transport or storage concerns.
package domain

import (
	"math/rand/v2"
	"strings"
	"time"
)

// AttributionSeparator joins quote text and its author.
const AttributionSeparator = " - "

// Quote is a non-empty quotation. Attribution, when known, is part of the text.
type Quote string

// NewQuote formats text and attribution as "<text> - <attribution>".
// An empty attribution yields the trimmed text alone.
func NewQuote(text, attribution string) Quote {
	text = strings.TrimSpace(text)
	attribution = strings.TrimSpace(attribution)

	if attribution == "" {
		return Quote(text)
	}

	return Quote(text + AttributionSeparator + attribution)
}

// String returns the quote text.
func (q Quote) String() string {
	return string(q)
}

// IsZero reports whether the quote has no visible text.
func (q Quote) IsZero() bool {
	return strings.TrimSpace(string(q)) == ""
}

// WordCount returns the number of whitespace-delimited words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// PickRandom returns one quote chosen uniformly at random.
// Returns the zero Quote for an empty slice.
func PickRandom(quotes []Quote) Quote {
	if len(quotes) == 0 {
		return ""
	}

	return quotes[rand.IntN(len(quotes))] //nolint:gosec // No need for crypto-grade randomness
}

// CacheEntry is a snapshot of scraped candidates for one category.
// Entries are replaced wholesale, never mutated in place.
type CacheEntry struct {
	Quotes      []Quote   `json:"quotes"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// IsEmpty reports whether the entry holds no quotes.
func (e *CacheEntry) IsEmpty() bool {
	return e == nil || len(e.Quotes) == 0
}

// IsFresh reports whether the entry is non-empty and younger than ttl at now.
func (e *CacheEntry) IsFresh(now time.Time, ttl time.Duration) bool {
	if e.IsEmpty() {
		return false
	}

	return now.Sub(e.RefreshedAt) < ttl
}

// Random returns one cached quote, or the zero Quote when empty.
func (e *CacheEntry) Random() Quote {
	if e.IsEmpty() {
		return ""
	}

	return PickRandom(e.Quotes)
}

// Translation pairs an acquired quote with its stylized rewrite.
type Translation struct {
	Original   Quote
	Translated string
	Category   Category
	Style      Style
}
