package database

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/moviedb/internal/domain"
)

// MovieRepo implements domain.MovieRepo
type MovieRepo struct {
	log zerolog.Logger
	db  *DB
}

// NewMovieRepo creates a new movie repository
func NewMovieRepo(log zerolog.Logger, db *DB) domain.MovieRepo {
	return &MovieRepo{
		log: log.With().Str("repo", "movie").Logger(),
		db:  db,
	}
}

// Exists reports whether a movie with the same title and release year is
// already stored. An unknown (nil) year only matches rows with a NULL year.
func (r *MovieRepo) Exists(ctx context.Context, title string, releaseYear *int) (bool, error) {
	queryBuilder := r.db.squirrel.
		Select("1").
		From("movies").
		Where(sq.Eq{"title": title, "release_year": nullableYear(releaseYear)}).
		Limit(1)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return false, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Exists")

	var found int
	err = r.db.handler.QueryRowContext(ctx, query, args...).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "error executing query")
	}

	return true, nil
}

// Store inserts the movie and sets movie.ID
func (r *MovieRepo) Store(ctx context.Context, tx *sql.Tx, movie *domain.Movie) error {
	queryBuilder := r.db.squirrel.
		Insert("movies").
		Columns("title", "release_year", "vote_average", "popularity", "box_office").
		Values(movie.Title, nullableYear(movie.ReleaseYear), movie.VoteAverage, movie.Popularity, movie.BoxOffice)

	if r.db.driver == domain.DriverPostgres {
		queryBuilder = queryBuilder.Suffix("RETURNING id")
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Store")

	run := r.db.runner(tx)

	if r.db.driver == domain.DriverPostgres {
		if err := run.QueryRowContext(ctx, query, args...).Scan(&movie.ID); err != nil {
			return errors.Wrap(err, "error executing query")
		}
		return nil
	}

	res, err := run.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "error executing query")
	}

	movie.ID, err = res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "error reading inserted id")
	}

	return nil
}

// LinkGenre inserts a movie_genres row
func (r *MovieRepo) LinkGenre(ctx context.Context, tx *sql.Tx, movieID, genreID int64) error {
	queryBuilder := r.db.squirrel.
		Insert("movie_genres").
		Columns("movie_id", "genre_id").
		Values(movieID, genreID)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("LinkGenre")

	if _, err := r.db.runner(tx).ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "error executing query")
	}

	return nil
}

func nullableYear(year *int) any {
	if year == nil {
		return nil
	}

	return *year
}
