package handler

import (
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/rovora/search-service/internal/domain"
	"github.com/rovora/search-service/internal/service"
	"github.com/rovora/search-service/pkg/log"
	"github.com/rovora/search-service/pkg/response"
)

const minAutocompleteRunes = 2

// Handler handles HTTP requests for search service.
type Handler struct {
	searchService service.SearchService
}

// NewHandler creates a new HTTP handler.
func NewHandler(searchService service.SearchService) *Handler {
	registerValidators()
	return &Handler{
		searchService: searchService,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/search")
	{
		api.GET("", h.Search)
		api.GET("/autocomplete", h.Autocomplete)
		api.GET("/popular", h.PopularSearches)
	}
}

type autocompleteResponse struct {
	Error       string              `json:"error,omitempty"`
	Suggestions []domain.Suggestion `json:"suggestions"`
}

type popularResponse struct {
	Error    string   `json:"error,omitempty"`
	Searches []string `json:"searches"`
}

// Search handles federated search across games, users and codex entries.
func (h *Handler) Search(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var params domain.SearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		l.Warn().Err(err).Msg("invalid search request")
		response.BadRequest(c, domain.EmptySearchResponse(bindingMessage(err)))
		return
	}

	filters := params.Filters()
	result, err := h.searchService.Search(ctx, filters)
	if err != nil {
		l.Error().Err(err).Str(log.FieldQuery, filters.Query).Msg("search failed")
		response.InternalError(c, domain.EmptySearchResponse("Failed to perform search"))
		return
	}

	response.Success(c, result)
}

// Autocomplete handles type-ahead suggestions. Short queries get the
// popular searches instead.
func (h *Handler) Autocomplete(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	query := c.Query("q")
	limit := domain.ParseInt(c.Query("limit"), 0)

	if utf8.RuneCountInString(query) < minAutocompleteRunes {
		popular, err := h.searchService.PopularSearches(ctx, limit)
		if err != nil {
			l.Error().Err(err).Msg("popular searches failed")
			response.InternalError(c, autocompleteResponse{
				Error:       "Failed to get autocomplete suggestions",
				Suggestions: []domain.Suggestion{},
			})
			return
		}

		suggestions := make([]domain.Suggestion, 0, len(popular))
		for _, p := range popular {
			suggestions = append(suggestions, domain.Suggestion{
				Text:     p,
				Type:     domain.SuggestionPopular,
				Metadata: map[string]any{},
			})
		}
		response.Success(c, autocompleteResponse{Suggestions: suggestions})
		return
	}

	suggestions, err := h.searchService.Autocomplete(ctx, query, limit)
	if err != nil {
		l.Error().Err(err).Str(log.FieldQuery, query).Msg("autocomplete failed")
		response.InternalError(c, autocompleteResponse{
			Error:       "Failed to get autocomplete suggestions",
			Suggestions: []domain.Suggestion{},
		})
		return
	}

	response.Success(c, autocompleteResponse{Suggestions: suggestions})
}

// PopularSearches handles the trending query list.
func (h *Handler) PopularSearches(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	searches, err := h.searchService.PopularSearches(ctx, domain.ParseInt(c.Query("limit"), 0))
	if err != nil {
		l.Error().Err(err).Msg("popular searches failed")
		response.InternalError(c, popularResponse{
			Error:    "Failed to get popular searches",
			Searches: []string{},
		})
		return
	}

	response.Success(c, popularResponse{Searches: searches})
}
