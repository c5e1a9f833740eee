package omdb

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/moviedb/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestService(status int, body string, captured **http.Request) Service {
	cfg := &domain.Config{
		OmdbApiKey:  "key",
		OmdbBaseURL: "https://omdb.test",
		HTTPTimeout: time.Second,
	}

	httpc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if captured != nil {
			*captured = req
		}
		return &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Body:       io.NopCloser(bytes.NewBufferString(body)),
			Header:     make(http.Header),
		}, nil
	})}

	return NewService(zerolog.Nop(), cfg, httpc)
}

func TestMovieByTitle(t *testing.T) {
	var req *http.Request
	svc := newTestService(http.StatusOK, `{"Title":"Inception","Year":"2010","Genre":"Action, Adventure, Sci-Fi","imdbRating":"8.8","BoxOffice":"$292,587,330","imdbID":"tt1375666","Response":"True"}`, &req)

	m, err := svc.MovieByTitle(context.Background(), "Inception")
	require.NoError(t, err)

	require.NotNil(t, req)
	q := req.URL.Query()
	assert.Equal(t, "Inception", q.Get("t"))
	assert.Equal(t, "key", q.Get("apikey"))
	assert.Equal(t, "movie", q.Get("type"))

	assert.Equal(t, "Inception", m.Title)
	assert.Equal(t, "tt1375666", m.IMDBID)
}

func TestMovieByID(t *testing.T) {
	var req *http.Request
	svc := newTestService(http.StatusOK, `{"Title":"Inception","imdbID":"tt1375666","Response":"True"}`, &req)

	_, err := svc.MovieByID(context.Background(), "tt1375666")
	require.NoError(t, err)
	assert.Equal(t, "tt1375666", req.URL.Query().Get("i"))
}

func TestMovieNotFound(t *testing.T) {
	svc := newTestService(http.StatusOK, `{"Response":"False","Error":"Movie not found!"}`, nil)

	m, err := svc.MovieByTitle(context.Background(), "zzzz")
	assert.Nil(t, m)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "Movie not found!")
}

func TestUnauthorized(t *testing.T) {
	svc := newTestService(http.StatusUnauthorized, `{"Response":"False","Error":"Invalid API key!"}`, nil)

	_, err := svc.MovieByTitle(context.Background(), "Inception")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
