package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/gita-search-api/internal/models"
	"github.com/gita-search-api/internal/services"
)

// VerseHandler serves the exact-reference lookup and the cached corpus
// listing.
type VerseHandler struct {
	matcher Matcher
	corpus  *services.CorpusCache
}

// NewVerseHandler creates a verse handler.
func NewVerseHandler(matcher Matcher, corpus *services.CorpusCache) *VerseHandler {
	return &VerseHandler{matcher: matcher, corpus: corpus}
}

// Lookup handles POST /verse.
func (h *VerseHandler) Lookup(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.VerseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	verse, err := h.matcher.Lookup(ctx, req.Chapter, req.Verse)
	if err != nil {
		if errors.Is(err, services.ErrInvalidReference) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		log.Error().Err(err).Int("chapter", req.Chapter).Int("verse", req.Verse).Msg("verse lookup failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	if verse == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Verse not found")
	}

	return c.JSON(http.StatusOK, verse)
}

// AllVerses handles GET /all-verses: the full corpus listing for
// client-side search.
func (h *VerseHandler) AllVerses(c echo.Context) error {
	return c.JSON(http.StatusOK, h.corpus.Listings())
}

// RegisterRoutes registers the verse routes.
func (h *VerseHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/verse", h.Lookup)
	g.GET("/all-verses", h.AllVerses)
}
