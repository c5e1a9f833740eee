package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/moviedb/internal/domain"
	"golang.org/x/time/rate"
)

type Service interface {
	MovieByTitle(ctx context.Context, title string) (*domain.OMDBMovie, error)
	MovieByID(ctx context.Context, imdbID string) (*domain.OMDBMovie, error)
}

type service struct {
	log     zerolog.Logger
	apiKey  string
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
}

func NewService(log zerolog.Logger, config *domain.Config, httpc *http.Client) Service {
	if httpc == nil {
		httpc = &http.Client{Timeout: config.HTTPTimeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	return &service{
		log:     log.With().Str("module", "omdb").Logger(),
		apiKey:  strings.TrimSpace(config.OmdbApiKey),
		baseURL: strings.TrimRight(config.OmdbBaseURL, "/"),
		httpc:   httpc,
		limiter: limiter,
	}
}

func (s *service) MovieByTitle(ctx context.Context, title string) (*domain.OMDBMovie, error) {
	params := url.Values{}
	params.Set("t", title)

	m, err := s.lookup(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(err, "omdb lookup for title %q", title)
	}

	return m, nil
}

func (s *service) MovieByID(ctx context.Context, imdbID string) (*domain.OMDBMovie, error) {
	params := url.Values{}
	params.Set("i", imdbID)

	m, err := s.lookup(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(err, "omdb lookup for id %s", imdbID)
	}

	return m, nil
}

func (s *service) lookup(ctx context.Context, params url.Values) (*domain.OMDBMovie, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set("apikey", s.apiKey)
	params.Set("type", "movie")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb request failed: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	var m domain.OMDBMovie
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, errors.Wrap(err, "failed to decode response")
	}

	if strings.EqualFold(m.Response, "False") {
		msg := m.Error
		if msg == "" {
			msg = "movie not found"
		}
		return nil, errors.Wrap(domain.ErrNotFound, msg)
	}

	s.log.Trace().Str("imdb_id", m.IMDBID).Msg("omdb record fetched")

	return &m, nil
}
