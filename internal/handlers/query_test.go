package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gita-search-api/internal/models"
	"github.com/gita-search-api/internal/services"
)

type fakeMatcher struct {
	matchResult  *models.MatchResult
	matchErr     error
	lookupResult *models.VerseResult
	lookupErr    error
}

func (f *fakeMatcher) Match(context.Context, string) (*models.MatchResult, error) {
	return f.matchResult, f.matchErr
}

func (f *fakeMatcher) Lookup(context.Context, int, int) (*models.VerseResult, error) {
	return f.lookupResult, f.lookupErr
}

func postJSON(t *testing.T, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

func TestQuerySuccess(t *testing.T) {
	matcher := &fakeMatcher{matchResult: &models.MatchResult{
		VerseResult: models.VerseResult{
			Chapter:              2,
			Verse:                47,
			Translation:          "You have the right to perform your prescribed duties...",
			SummarizedCommentary: "summary",
		},
		Related: []models.VerseResult{},
	}}
	h := NewQueryHandler(matcher, 500)

	c, rec := postJSON(t, "/query", `{"query":"duty without attachment"}`)
	require.NoError(t, h.Query(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.NotNil(t, resp.Data)
	assert.Equal(t, 2, resp.Data.Chapter)
	assert.Equal(t, 47, resp.Data.Verse)
}

func TestQueryEmpty(t *testing.T) {
	h := NewQueryHandler(&fakeMatcher{}, 500)

	c, _ := postJSON(t, "/query", `{"query":"   "}`)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.Query(c)))
}

func TestQueryTooLong(t *testing.T) {
	h := NewQueryHandler(&fakeMatcher{}, 500)

	c, _ := postJSON(t, "/query", `{"query":"`+strings.Repeat("a", 501)+`"}`)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.Query(c)))
}

func TestQueryAtLengthLimit(t *testing.T) {
	matcher := &fakeMatcher{matchResult: &models.MatchResult{Related: []models.VerseResult{}}}
	h := NewQueryHandler(matcher, 500)

	c, rec := postJSON(t, "/query", `{"query":"`+strings.Repeat("a", 500)+`"}`)
	require.NoError(t, h.Query(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQueryNotFound(t *testing.T) {
	h := NewQueryHandler(&fakeMatcher{}, 500)

	c, _ := postJSON(t, "/query", `{"query":"something obscure"}`)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, h.Query(c)))
}

func TestQueryUpstreamFailureIsMasked(t *testing.T) {
	matcher := &fakeMatcher{matchErr: errors.New("pinecone-style secret detail: key=abc123")}
	h := NewQueryHandler(matcher, 500)

	c, _ := postJSON(t, "/query", `{"query":"anything"}`)
	err := h.Query(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
	assert.NotContains(t, fmt.Sprint(he.Message), "abc123", "internal error detail must not leak")
}

func TestVerseLookupSuccess(t *testing.T) {
	matcher := &fakeMatcher{lookupResult: &models.VerseResult{
		Chapter: 2, Verse: 47, Translation: "text", SummarizedCommentary: "summary",
	}}
	h := NewVerseHandler(matcher, services.NewCorpusCache(nil))

	c, rec := postJSON(t, "/verse", `{"chapter":2,"verse":47}`)
	require.NoError(t, h.Lookup(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var verse models.VerseResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verse))
	assert.Equal(t, 47, verse.Verse)
}

func TestVerseLookupInvalidReference(t *testing.T) {
	matcher := &fakeMatcher{lookupErr: services.ErrInvalidReference}
	h := NewVerseHandler(matcher, services.NewCorpusCache(nil))

	c, _ := postJSON(t, "/verse", `{"chapter":0,"verse":1}`)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.Lookup(c)))
}

func TestVerseLookupNotFound(t *testing.T) {
	h := NewVerseHandler(&fakeMatcher{}, services.NewCorpusCache(nil))

	c, _ := postJSON(t, "/verse", `{"chapter":5,"verse":999}`)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, h.Lookup(c)))
}

func TestAllVerses(t *testing.T) {
	cache := services.NewCorpusCache([]models.Verse{
		{Chapter: 1, Verse: 1, Translation: "first", Commentary: "commentary one"},
		{Chapter: 1, Verse: 2, Translation: "second", Summary: "summary two"},
	})
	h := NewVerseHandler(&fakeMatcher{}, cache)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/all-verses", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.AllVerses(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)

	var listings []models.VerseListing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listings))
	require.Len(t, listings, 2)
	assert.Equal(t, "commentary one", listings[0].Summary, "missing summary falls back to commentary")
	assert.Equal(t, "summary two", listings[1].Summary)
}
