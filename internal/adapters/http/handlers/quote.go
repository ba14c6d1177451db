package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-dialects/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-dialects/internal/app"
	"github.com/jsamuelsen/quote-dialects/internal/domain"
)

// QuoteHandler handles quote-related HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// QuoteRequest holds the query parameters of a translate request.
// Style is accepted as an alias of Dialect.
type QuoteRequest struct {
	Type    string `form:"type" json:"type" validate:"max=32"`
	Dialect string `form:"dialect" json:"dialect" validate:"max=32"`
	Style   string `form:"style" json:"style" validate:"max=32"`
}

// style returns the requested dialect, preferring dialect over style.
func (r *QuoteRequest) style() string {
	if r.Dialect != "" {
		return r.Dialect
	}

	return r.Style
}

// QuoteResponse is the HTTP response structure for a translated quote.
type QuoteResponse struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
	Type       string `json:"type"`
	Dialect    string `json:"dialect"`
}

// ListResponse lists a closed set and its default member.
type ListResponse struct {
	Items   []string `json:"items"`
	Default string   `json:"default,omitempty"`
}

// toQuoteResponse converts a domain Translation to an HTTP response.
func toQuoteResponse(t *domain.Translation) *QuoteResponse {
	return &QuoteResponse{
		Original:   t.Original.String(),
		Translated: t.Translated,
		Type:       t.Category.String(),
		Dialect:    t.Style.String(),
	}
}

// GetQuote handles GET /api/quote and GET /api/v1/quotes.
// Acquires a quote of the requested type and rewrites it in the requested dialect.
//
// @Summary Get a translated quote
// @Tags quotes
// @Produce json
// @Param type query string true "Quote type" Enums(zen, bible, lds, geek, software, philosophy)
// @Param dialect query string false "Dialect" Enums(gen_z, pirate, leet_speak, medieval)
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	var req QuoteRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorCodeValidation, "request validation failed").
			WithDetails(dto.ValidationErrors(err)).
			WithTraceID(dto.GetTraceID(c)))
		return
	}

	translation, err := h.service.Translate(c.Request.Context(), req.Type, req.style())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toQuoteResponse(translation))
}

// ListCategories handles GET /api/v1/categories.
func (h *QuoteHandler) ListCategories(c *gin.Context) {
	categories := h.service.Categories()

	items := make([]string, len(categories))
	for i, category := range categories {
		items[i] = category.String()
	}

	c.JSON(http.StatusOK, ListResponse{Items: items})
}

// ListStyles handles GET /api/v1/styles.
func (h *QuoteHandler) ListStyles(c *gin.Context) {
	styles := h.service.Styles()

	items := make([]string, len(styles))
	for i, style := range styles {
		items[i] = style.String()
	}

	c.JSON(http.StatusOK, ListResponse{Items: items, Default: domain.DefaultStyle.String()})
}

// RegisterQuoteRoutes registers versioned quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotes", h.GetQuote)
	rg.GET("/categories", h.ListCategories)
	rg.GET("/styles", h.ListStyles)
}

// RegisterLegacyRoutes registers the unversioned GET /api/quote route.
func (h *QuoteHandler) RegisterLegacyRoutes(rg *gin.RouterGroup) {
	rg.GET("/quote", h.GetQuote)
}
