//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	apphttp "github.com/jsamuelsen/quote-dialects/internal/adapters/http"
	"github.com/jsamuelsen/quote-dialects/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-dialects/internal/bootstrap"
	"github.com/jsamuelsen/quote-dialects/internal/platform/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// upstream is a fake downstream service that can be taken down.
type upstream struct {
	srv   *httptest.Server
	down  atomic.Bool
	hits  atomic.Int64
	delay atomic.Int64
}

func newUpstream(handler http.HandlerFunc) *upstream {
	u := &upstream{}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)

		if d := time.Duration(u.delay.Load()); d > 0 {
			time.Sleep(d)
		}

		if u.down.Load() {
			http.Error(w, "upstream down", http.StatusServiceUnavailable)
			return
		}

		handler(w, r)
	}))

	return u
}

// listingBlock renders one tag listing quote block.
func listingBlock(text, author string) string {
	return fmt.Sprintf(`<div class="quoteDetails"><div class="quoteText">
  “%s”
  <br> ―
  <span class="authorOrTitle">%s,</span>
</div></div>`, text, author)
}

// harness runs the full HTTP stack against fake upstreams.
type harness struct {
	app        *httptest.Server
	components *bootstrap.Components
	upstreams  map[string]*upstream

	mu          sync.Mutex
	translation string
}

type harnessOption func(*config.Config)

func withCacheTTL(ttl time.Duration) harnessOption {
	return func(cfg *config.Config) { cfg.Quotes.CacheTTL = ttl }
}

func newHarness(opts ...harnessOption) (*harness, error) {
	h := &harness{
		translation: "Arr, ye be translated.",
		upstreams:   make(map[string]*upstream),
	}

	h.upstreams["zen"] = newUpstream(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"q":"Let go.","a":"Zen Proverb","h":"<blockquote>Let go.</blockquote>"}]`)
	})
	h.upstreams["bible"] = newUpstream(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"random_verse":{"book_id":"JHN","book":"John","chapter":11,"verse":35,"text":"Jesus wept.\n"}}`)
	})
	h.upstreams["goodreads"] = newUpstream(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")

		if r.URL.Query().Get("page") != "1" {
			_, _ = io.WriteString(w, `<html><body></body></html>`)
			return
		}

		tag := strings.TrimPrefix(r.URL.Path, "/quotes/tag/")
		_, _ = io.WriteString(w, "<html><body>"+
			listingBlock("Scraped wisdom about "+tag+".", "Tag Author")+
			"</body></html>")
	})
	h.upstreams["highexistence"] = newUpstream(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, `<html><body><h4>“The unexamined life is not worth living.” ― Socrates</h4></body></html>`)
	})
	h.upstreams["openai"] = newUpstream(func(w http.ResponseWriter, _ *http.Request) {
		h.mu.Lock()
		content := h.translation
		h.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})

	cfg, err := config.Load("integration")
	if err != nil {
		h.Close()
		return nil, err
	}

	cfg.Services.Zen.BaseURL = h.upstreams["zen"].srv.URL
	cfg.Services.Bible.BaseURL = h.upstreams["bible"].srv.URL
	cfg.Services.Goodreads.BaseURL = h.upstreams["goodreads"].srv.URL
	cfg.Services.HighExistence.BaseURL = h.upstreams["highexistence"].srv.URL
	cfg.Services.OpenAI.BaseURL = h.upstreams["openai"].srv.URL
	cfg.Services.OpenAI.APIKey = "sk-integration"
	cfg.Client.Retry.MaxAttempts = 1
	cfg.Quotes.WarmOnStart = false
	cfg.Quotes.Software.PageDelay = 0
	cfg.Cache.Redis.Enabled = false

	for _, opt := range opts {
		opt(cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h.components, err = bootstrap.Build(cfg, logger)
	if err != nil {
		h.Close()
		return nil, err
	}

	health := handlers.NewHealthHandler(h.components.Health,
		handlers.NewBuildInfo("integration", "none", "unknown"),
		handlers.WithCacheInspector(h.components.Cache, cfg.Quotes.CacheTTL))

	engine := gin.New()
	apphttp.SetupRouter(engine, apphttp.NewDefaultRouterConfig(
		logger, &cfg.App, health, handlers.NewQuoteHandler(h.components.Service),
	))

	h.app = httptest.NewServer(engine)

	return h, nil
}

// setDown takes an upstream down or brings it back. "all" applies to every upstream.
func (h *harness) setDown(name string, down bool) error {
	if name == "all" {
		for _, u := range h.upstreams {
			u.down.Store(down)
		}

		return nil
	}

	u, ok := h.upstreams[name]
	if !ok {
		return fmt.Errorf("unknown upstream %q", name)
	}

	u.down.Store(down)

	return nil
}

func (h *harness) setTranslation(text string) {
	h.mu.Lock()
	h.translation = text
	h.mu.Unlock()
}

func (h *harness) hits(name string) int64 {
	return h.upstreams[name].hits.Load()
}

func (h *harness) URL() string {
	return h.app.URL
}

// Close stops the application and every fake upstream.
func (h *harness) Close() {
	if h.app != nil {
		h.app.Close()
	}

	if h.components != nil {
		_ = h.components.Close()
	}

	for _, u := range h.upstreams {
		u.srv.Close()
	}
}
