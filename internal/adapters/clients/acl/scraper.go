package acl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jsamuelsen/quote-dialects/internal/adapters/clients"
	"github.com/jsamuelsen/quote-dialects/internal/domain"
)

const (
	// MaxQuoteWords is the longest accepted scraped quote, in words.
	MaxQuoteWords = 100

	// authorDash separates quote and author in scraped headings.
	authorDash = "―"

	openQuoteMark  = "“"
	closeQuoteMark = "”"
)

// TagScraperConfig configures a paginated tag listing scraper.
type TagScraperConfig struct {
	// Client is the HTTP client. Its BaseURL should point at the listing host
	// and its Headers should carry a browser-like User-Agent.
	Client *clients.Client

	// Name identifies the source in logs and metrics.
	Name string

	// Tag is the listing tag (e.g. "lds", "programming").
	Tag string

	// MaxPages bounds pagination. Pages are requested 1..MaxPages in order.
	MaxPages int

	// PageDelay is waited between consecutive page requests.
	PageDelay time.Duration

	// Logger is the structured logger.
	Logger *slog.Logger
}

// TagScraper implements ports.QuoteSource by scraping every page of a
// Goodreads tag listing until an empty page or the page limit.
type TagScraper struct {
	BaseAdapter

	tag       string
	maxPages  int
	pageDelay time.Duration
}

// NewTagScraper creates a tag listing scraper.
// Panics if Client is nil or Tag is empty.
func NewTagScraper(cfg TagScraperConfig) *TagScraper {
	if cfg.Tag == "" {
		panic("TagScraper: Tag is required")
	}

	name := cfg.Name
	if name == "" {
		name = "goodreads-" + cfg.Tag
	}

	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	return &TagScraper{
		BaseAdapter: NewBaseAdapter(cfg.Client, name, cfg.Logger),
		tag:         cfg.Tag,
		maxPages:    maxPages,
		pageDelay:   cfg.PageDelay,
	}
}

// Name implements ports.QuoteSource.
func (s *TagScraper) Name() string {
	return s.ServiceName()
}

// Fetch implements ports.QuoteSource.
// Any page failure aborts the whole scrape; partial results are discarded.
func (s *TagScraper) Fetch(ctx context.Context) ([]domain.Quote, error) {
	var quotes []domain.Quote

	for page := 1; page <= s.maxPages; page++ {
		if page > 1 && s.pageDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, domain.NewUnavailableError(s.ServiceName(), ctx.Err().Error())
			case <-time.After(s.pageDelay):
			}
		}

		doc, err := s.GetDocument(ctx, s.pagePath(page), fmt.Sprintf("scrape page %d", page))
		if err != nil {
			return nil, err
		}

		blocks := doc.Find(".quoteDetails")
		if blocks.Length() == 0 {
			s.logger.DebugContext(ctx, "empty listing page, stopping",
				slog.String("tag", s.tag),
				slog.Int("page", page))
			break
		}

		blocks.Each(func(_ int, block *goquery.Selection) {
			if q, ok := parseQuoteDetails(block); ok {
				quotes = append(quotes, q)
			}
		})
	}

	if len(quotes) == 0 {
		return nil, domain.NewNoQuotesError(s.ServiceName(), "no quote blocks accepted")
	}

	s.logger.InfoContext(ctx, "scraped tag listing",
		slog.String("tag", s.tag),
		slog.Int("quotes", len(quotes)))

	return quotes, nil
}

func (s *TagScraper) pagePath(page int) string {
	return fmt.Sprintf("/quotes/tag/%s?page=%d", url.PathEscape(s.tag), page)
}

// parseQuoteDetails extracts one candidate from a .quoteDetails block.
func parseQuoteDetails(block *goquery.Selection) (domain.Quote, bool) {
	textSel := block.Find(".quoteText")
	author := strings.TrimSpace(textSel.Find("span.authorOrTitle").Text())
	author = strings.TrimSpace(strings.TrimSuffix(author, ","))

	body := textSel.Clone()
	body.Find("span.authorOrTitle, a.leftAlignedImage, br").Remove()

	// Listing markup puts the author dash between the text and the author span.
	text := strings.TrimSuffix(strings.TrimSpace(body.Text()), authorDash)
	text = stripQuoteMarks(text)
	if !acceptable(text) {
		return "", false
	}

	return domain.NewQuote(text, author), true
}

// PageScraperConfig configures a single-page heading scraper.
type PageScraperConfig struct {
	// Client is the HTTP client. Its BaseURL should point at the article host.
	Client *clients.Client

	// Name identifies the source in logs and metrics.
	Name string

	// Path is the article path on the host.
	Path string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// PageScraper implements ports.QuoteSource by reading "<quote> ― <author>"
// headings from one article.
type PageScraper struct {
	BaseAdapter

	path string
}

// NewPageScraper creates a single-page scraper.
func NewPageScraper(cfg PageScraperConfig) *PageScraper {
	name := cfg.Name
	if name == "" {
		name = "highexistence"
	}

	path := cfg.Path
	if path == "" {
		path = "/"
	}

	return &PageScraper{
		BaseAdapter: NewBaseAdapter(cfg.Client, name, cfg.Logger),
		path:        path,
	}
}

// Name implements ports.QuoteSource.
func (s *PageScraper) Name() string {
	return s.ServiceName()
}

// Fetch implements ports.QuoteSource.
func (s *PageScraper) Fetch(ctx context.Context) ([]domain.Quote, error) {
	doc, err := s.GetDocument(ctx, s.path, "scrape article")
	if err != nil {
		return nil, err
	}

	var quotes []domain.Quote

	doc.Find("h4").Each(func(_ int, h *goquery.Selection) {
		if q, ok := parseHeading(h.Text()); ok {
			quotes = append(quotes, q)
		}
	})

	if len(quotes) == 0 {
		return nil, domain.NewNoQuotesError(s.ServiceName(), "no headings accepted")
	}

	s.logger.DebugContext(ctx, "scraped article", slog.Int("quotes", len(quotes)))

	return quotes, nil
}

// parseHeading splits a heading on the author dash. Everything after the
// first dash is the author.
func parseHeading(heading string) (domain.Quote, bool) {
	parts := strings.Split(strings.TrimSpace(heading), authorDash)
	if len(parts) < 2 {
		return "", false
	}

	text := stripQuoteMarks(parts[0])
	author := strings.TrimSpace(strings.Join(parts[1:], authorDash))

	if author == "" || !acceptable(text) {
		return "", false
	}

	return domain.NewQuote(text, author), true
}

// stripQuoteMarks trims whitespace and one leading and trailing curly quote.
func stripQuoteMarks(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, openQuoteMark)
	s = strings.TrimSuffix(s, closeQuoteMark)

	return strings.TrimSpace(s)
}

func acceptable(text string) bool {
	return text != "" && domain.WordCount(text) <= MaxQuoteWords
}
