package handlers

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/gita-search-api/internal/models"
)

// Matcher is the slice of the match service the HTTP layer depends on.
type Matcher interface {
	Match(ctx context.Context, query string) (*models.MatchResult, error)
	Lookup(ctx context.Context, chapter, verse int) (*models.VerseResult, error)
}

// QueryHandler serves the semantic query endpoint.
type QueryHandler struct {
	matcher     Matcher
	maxQueryLen int
}

// NewQueryHandler creates a query handler. maxQueryLen bounds the
// accepted query length in characters.
func NewQueryHandler(matcher Matcher, maxQueryLen int) *QueryHandler {
	return &QueryHandler{matcher: matcher, maxQueryLen: maxQueryLen}
}

// Query handles POST /query.
func (h *QueryHandler) Query(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query is required")
	}
	if utf8.RuneCountInString(query) > h.maxQueryLen {
		return echo.NewHTTPError(http.StatusBadRequest, "Query is too long")
	}

	result, err := h.matcher.Match(ctx, query)
	if err != nil {
		// Upstream detail stays in the server log; the client gets a
		// generic failure.
		log.Error().Err(err).Msg("query match failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	if result == nil {
		return echo.NewHTTPError(http.StatusNotFound, "No matches found")
	}

	return c.JSON(http.StatusOK, models.QueryResponse{
		Status: "success",
		Data:   result,
	})
}

// RegisterRoutes registers the query route.
func (h *QueryHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/query", h.Query)
}
