package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/moviedb/internal/database"
	"github.com/varoOP/moviedb/internal/domain"
	"github.com/varoOP/moviedb/internal/movie"
	"github.com/varoOP/moviedb/internal/normalize"
	"github.com/varoOP/moviedb/internal/omdb"
	"github.com/varoOP/moviedb/internal/tmdb"
)

const (
	SourceTMDBPopular = "tmdb-popular"
	SourceTMDBByID    = "tmdb-id"
	SourceOMDB        = "omdb"
)

type Service interface {
	ImportPopular(ctx context.Context) (domain.Statistics, error)
	ImportByID(ctx context.Context, ids ...int) (domain.Statistics, error)
	ImportTitles(ctx context.Context, titles []string) (domain.Statistics, error)
	ImportIMDbIDs(ctx context.Context, ids []string) (domain.Statistics, error)
}

type service struct {
	log        zerolog.Logger
	config     *domain.Config
	tmdb       tmdb.Service
	omdb       omdb.Service
	normalizer *normalize.Normalizer
	movieRepo  domain.MovieRepo
	movieSvc   movie.Service
}

// NewService creates the import driver. omdbSvc may be nil when only TMDB
// imports are run.
func NewService(log zerolog.Logger, config *domain.Config, tmdbSvc tmdb.Service, omdbSvc omdb.Service, normalizer *normalize.Normalizer, movieRepo domain.MovieRepo, movieSvc movie.Service) Service {
	return &service{
		log:        log.With().Str("module", "pipeline").Logger(),
		config:     config,
		tmdb:       tmdbSvc,
		omdb:       omdbSvc,
		normalizer: normalizer,
		movieRepo:  movieRepo,
		movieSvc:   movieSvc,
	}
}

// ImportPopular walks the popular listing from the configured start page
// until total_pages is passed, max_pages is reached, or a page yields no
// data. A failed page ends pagination but not the run.
func (s *service) ImportPopular(ctx context.Context) (domain.Statistics, error) {
	stats := domain.Statistics{Source: SourceTMDBPopular}
	start := time.Now()

	page := s.config.StartPage
	if page < 1 {
		page = 1
	}
	total := page

	for page <= total {
		if s.config.MaxPages > 0 && stats.Pages >= s.config.MaxPages {
			s.log.Info().Int("max_pages", s.config.MaxPages).Msg("page limit reached")
			break
		}

		p, err := s.tmdb.PopularMovies(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				stats.Duration = time.Since(start)
				return stats, ctx.Err()
			}
			s.log.Warn().Err(err).Int("page", page).Int("total_pages", total).Msg("no data returned, stopping pagination")
			break
		}

		stats.Pages++
		total = p.TotalPages

		if len(p.Results) == 0 {
			s.log.Warn().Int("page", page).Msg("empty page, stopping pagination")
			break
		}

		s.log.Info().Int("page", page).Int("total_pages", total).Int("results", len(p.Results)).Msg("processing page")

		for _, raw := range p.Results {
			stats.Records++
			if err := s.process(ctx, s.normalizer.TMDB(raw), &stats); err != nil {
				stats.Duration = time.Since(start)
				return stats, err
			}
		}

		page++
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// ImportByID imports single TMDB movies. A failed lookup is logged and the
// next id is processed.
func (s *service) ImportByID(ctx context.Context, ids ...int) (domain.Statistics, error) {
	stats := domain.Statistics{Source: SourceTMDBByID}
	start := time.Now()

	for _, id := range ids {
		raw, err := s.tmdb.Movie(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				stats.Duration = time.Since(start)
				return stats, ctx.Err()
			}
			s.log.Error().Err(err).Int("tmdb_id", id).Msg("could not fetch movie")
			stats.Failed++
			continue
		}

		stats.Records++
		if err := s.process(ctx, s.normalizer.TMDB(*raw), &stats); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// ImportTitles looks each title up on OMDb and imports the matches
func (s *service) ImportTitles(ctx context.Context, titles []string) (domain.Statistics, error) {
	if s.omdb == nil {
		return domain.Statistics{Source: SourceOMDB}, errors.New("omdb client not configured")
	}

	return s.importOMDB(ctx, "title", titles, s.omdb.MovieByTitle)
}

// ImportIMDbIDs looks each IMDb id (tt...) up on OMDb and imports the matches
func (s *service) ImportIMDbIDs(ctx context.Context, ids []string) (domain.Statistics, error) {
	if s.omdb == nil {
		return domain.Statistics{Source: SourceOMDB}, errors.New("omdb client not configured")
	}

	return s.importOMDB(ctx, "imdb_id", ids, s.omdb.MovieByID)
}

func (s *service) importOMDB(ctx context.Context, field string, keys []string, lookup func(context.Context, string) (*domain.OMDBMovie, error)) (domain.Statistics, error) {
	stats := domain.Statistics{Source: SourceOMDB}
	start := time.Now()

	for _, key := range keys {
		raw, err := lookup(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				stats.Duration = time.Since(start)
				return stats, ctx.Err()
			}
			if errors.Is(err, domain.ErrNotFound) {
				s.log.Warn().Str(field, key).Msg("movie not found on omdb")
			} else {
				s.log.Error().Err(err).Str(field, key).Msg("could not fetch movie")
			}
			stats.Failed++
			continue
		}

		stats.Records++
		if err := s.process(ctx, s.normalizer.OMDB(*raw), &stats); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// process runs the exists check and upsert for one record. Only a lost
// connection or a canceled context is returned; other failures are counted.
func (s *service) process(ctx context.Context, rec domain.Record, stats *domain.Statistics) error {
	m := rec.Movie

	exists, err := s.movieRepo.Exists(ctx, m.Title, m.ReleaseYear)
	if err != nil {
		if abort := s.abort(ctx, err); abort != nil {
			return abort
		}
		s.log.Error().Err(err).Str("title", m.Title).Msg("existence check failed")
		stats.Failed++
		return nil
	}

	if exists {
		s.log.Info().Str("title", m.Title).Msg("movie already exists, skipping")
		stats.Skipped++
		return nil
	}

	links, err := s.movieSvc.Upsert(ctx, rec)
	if err != nil {
		if abort := s.abort(ctx, err); abort != nil {
			return abort
		}
		stats.Failed++
		return nil
	}

	stats.Inserted++
	stats.GenreLinks += links

	return nil
}

// abort returns the error that should end the run, or nil
func (s *service) abort(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if database.IsConnectionError(err) {
		return errors.Wrap(err, "database connection lost")
	}

	return nil
}
