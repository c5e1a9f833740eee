package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/moviedb/internal/domain"
	"golang.org/x/time/rate"
)

type Service interface {
	PopularMovies(ctx context.Context, page int) (*domain.TMDBPage, error)
	Movie(ctx context.Context, id int) (*domain.TMDBMovie, error)
	GenreNames(ctx context.Context) (map[int]string, error)
}

type service struct {
	log      zerolog.Logger
	apiKey   string
	baseURL  string
	language string
	httpc    *http.Client
	limiter  *rate.Limiter
}

// NewService creates a TMDB client. A nil httpc gets a client with the
// configured timeout.
func NewService(log zerolog.Logger, config *domain.Config, httpc *http.Client) Service {
	if httpc == nil {
		httpc = &http.Client{Timeout: config.HTTPTimeout}
	}

	return &service{
		log:      log.With().Str("module", "tmdb").Logger(),
		apiKey:   strings.TrimSpace(config.TmdbApiKey),
		baseURL:  strings.TrimRight(config.TmdbBaseURL, "/"),
		language: config.Language,
		httpc:    httpc,
		limiter:  newLimiter(config.RequestsPerSecond),
	}
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}

	return rate.NewLimiter(rate.Limit(rps), 1)
}

// PopularMovies fetches one page of /movie/popular
func (s *service) PopularMovies(ctx context.Context, page int) (*domain.TMDBPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var p domain.TMDBPage
	if err := s.get(ctx, "/movie/popular", params, &p); err != nil {
		return nil, errors.Wrapf(err, "failed to fetch popular movies page %d", page)
	}

	s.log.Debug().Int("page", page).Int("total_pages", p.TotalPages).Int("results", len(p.Results)).Msg("page fetched")

	return &p, nil
}

// Movie fetches a single movie from /movie/{id}
func (s *service) Movie(ctx context.Context, id int) (*domain.TMDBMovie, error) {
	var m domain.TMDBMovie
	if err := s.get(ctx, "/movie/"+strconv.Itoa(id), nil, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to fetch movie %d", id)
	}

	return &m, nil
}

// GenreNames fetches the movie genre reference list
func (s *service) GenreNames(ctx context.Context) (map[int]string, error) {
	var list domain.TMDBGenreList
	if err := s.get(ctx, "/genre/movie/list", nil, &list); err != nil {
		return nil, errors.Wrap(err, "failed to fetch genre list")
	}

	names := make(map[int]string, len(list.Genres))
	for _, g := range list.Genres {
		names[g.ID] = g.Name
	}

	return names, nil
}

func (s *service) get(ctx context.Context, path string, params url.Values, v any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	u := s.buildUrl(path, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	s.log.Trace().Str("path", path).Str("query", params.Encode()).Msg("GET")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("tmdb request failed: %s", resp.Status)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}

	return nil
}

func (s *service) buildUrl(path string, params url.Values) string {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("api_key", s.apiKey)
	if s.language != "" {
		q.Set("language", s.language)
	}

	return s.baseURL + path + "?" + q.Encode()
}
