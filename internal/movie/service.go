package movie

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/moviedb/internal/database"
	"github.com/varoOP/moviedb/internal/domain"
	"github.com/varoOP/moviedb/internal/genre"
)

type Service interface {
	Upsert(ctx context.Context, rec domain.Record) (int, error)
}

type service struct {
	log       zerolog.Logger
	db        *database.DB
	movieRepo domain.MovieRepo
	genreSvc  genre.Service
}

func NewService(log zerolog.Logger, db *database.DB, movieRepo domain.MovieRepo, genreSvc genre.Service) Service {
	return &service{
		log:       log.With().Str("module", "movie").Logger(),
		db:        db,
		movieRepo: movieRepo,
		genreSvc:  genreSvc,
	}
}

// Upsert stores the movie and its genre links in a single transaction and
// returns the number of links written. On any failure nothing is kept.
func (s *service) Upsert(ctx context.Context, rec domain.Record) (links int, err error) {
	m := rec.Movie

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.log.Error().Err(err).Str("title", m.Title).Msg("error inserting movie")
		return 0, err
	}

	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.log.Error().Err(rbErr).Str("title", m.Title).Msg("rollback failed")
		}
		s.log.Error().Err(err).Str("title", m.Title).Msg("error inserting movie")
		links = 0
	}()

	if err = s.movieRepo.Store(ctx, tx.Tx, &m); err != nil {
		return 0, errors.Wrapf(err, "could not store movie %q", m.Title)
	}

	if len(rec.GenreNames) > 0 {
		links, err = s.genreSvc.LinkNames(ctx, tx.Tx, m.ID, rec.GenreNames)
	} else {
		links, err = s.genreSvc.LinkIDs(ctx, tx.Tx, m.ID, rec.GenreIDs)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "could not link genres for %q", m.Title)
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrapf(err, "could not commit movie %q", m.Title)
	}

	ev := s.log.Info().Str("title", m.Title).Int64("id", m.ID).Int("genres", links)
	if m.ReleaseYear != nil {
		ev = ev.Int("year", *m.ReleaseYear)
	}
	ev.Msg("movie inserted")

	return links, nil
}
