package acl

import (
	"context"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
)

// StaticSource implements ports.QuoteSource over a fixed in-memory list.
type StaticSource struct {
	name   string
	quotes []domain.Quote
}

// NewStaticSource creates a source that always returns quotes.
func NewStaticSource(name string, quotes []domain.Quote) *StaticSource {
	list := make([]domain.Quote, len(quotes))
	copy(list, quotes)

	return &StaticSource{name: name, quotes: list}
}

// Name implements ports.QuoteSource.
func (s *StaticSource) Name() string {
	return s.name
}

// Fetch implements ports.QuoteSource. No I/O is performed.
func (s *StaticSource) Fetch(_ context.Context) ([]domain.Quote, error) {
	if len(s.quotes) == 0 {
		return nil, domain.NewNoQuotesError(s.name, "list is empty")
	}

	out := make([]domain.Quote, len(s.quotes))
	copy(out, s.quotes)

	return out, nil
}
