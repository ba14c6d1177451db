package acl

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/quote-dialects/internal/adapters/clients"
	"github.com/jsamuelsen/quote-dialects/internal/domain"
)

// zenRandomPath returns a one-element array with a random quote.
const zenRandomPath = "/api/random"

// ZenClient implements ports.QuoteSource using the ZenQuotes API.
type ZenClient struct {
	BaseAdapter
}

// NewZenClient creates a ZenQuotes adapter. The client's BaseURL should point at
// the API host (e.g. https://zenquotes.io).
func NewZenClient(client *clients.Client, logger *slog.Logger) *ZenClient {
	return &ZenClient{BaseAdapter: NewBaseAdapter(client, "zenquotes", logger)}
}

// zenQuote is the external DTO from the ZenQuotes API.
type zenQuote struct {
	Quote  string `json:"q"`
	Author string `json:"a"`
	HTML   string `json:"h,omitempty"`
}

// Name implements ports.QuoteSource.
func (c *ZenClient) Name() string {
	return c.ServiceName()
}

// Fetch implements ports.QuoteSource. It returns exactly one candidate.
func (c *ZenClient) Fetch(ctx context.Context) ([]domain.Quote, error) {
	body, err := c.Get(ctx, zenRandomPath, "get random quote")
	if err != nil {
		return nil, err
	}

	items, err := DecodeResponse[[]zenQuote](body)
	if err != nil {
		return nil, MapDecodeError(c.ServiceName(), "get random quote", err)
	}

	if len(*items) == 0 {
		return nil, domain.NewNoQuotesError(c.ServiceName(), "empty result array")
	}

	first := (*items)[0]
	if strings.TrimSpace(first.Quote) == "" {
		return nil, domain.NewNoQuotesError(c.ServiceName(), "blank quote text")
	}

	return []domain.Quote{domain.NewQuote(first.Quote, first.Author)}, nil
}
