package acl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/quote-dialects/internal/adapters/clients"
	"github.com/jsamuelsen/quote-dialects/internal/domain"
)

// bibleRandomPath selects a random verse from the World English Bible.
const bibleRandomPath = "/data/web/random"

// BibleClient implements ports.QuoteSource using bible-api.com.
type BibleClient struct {
	BaseAdapter
}

// NewBibleClient creates a bible-api.com adapter.
func NewBibleClient(client *clients.Client, logger *slog.Logger) *BibleClient {
	return &BibleClient{BaseAdapter: NewBaseAdapter(client, "bible-api", logger)}
}

type bibleRandomResponse struct {
	RandomVerse *bibleVerse `json:"random_verse"`
}

type bibleVerse struct {
	BookID  string `json:"book_id"`
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
}

// Name implements ports.QuoteSource.
func (c *BibleClient) Name() string {
	return c.ServiceName()
}

// Fetch implements ports.QuoteSource. The verse reference is appended as
// "(<book> <chapter>:<verse>)".
func (c *BibleClient) Fetch(ctx context.Context) ([]domain.Quote, error) {
	body, err := c.Get(ctx, bibleRandomPath, "get random verse")
	if err != nil {
		return nil, err
	}

	resp, err := DecodeResponse[bibleRandomResponse](body)
	if err != nil {
		return nil, MapDecodeError(c.ServiceName(), "get random verse", err)
	}

	if resp.RandomVerse == nil {
		return nil, domain.NewNoQuotesError(c.ServiceName(), "response has no random_verse")
	}

	v := resp.RandomVerse
	text := strings.TrimSpace(strings.ReplaceAll(v.Text, "\n", " "))
	if text == "" {
		return nil, domain.NewNoQuotesError(c.ServiceName(), "blank verse text")
	}

	return []domain.Quote{
		domain.Quote(fmt.Sprintf("%s (%s %d:%d)", text, v.Book, v.Chapter, v.Verse)),
	}, nil
}
