package database

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/moviedb/internal/domain"
)

// GenreRepo implements domain.GenreRepo
type GenreRepo struct {
	log zerolog.Logger
	db  *DB
}

// NewGenreRepo creates a new genre repository
func NewGenreRepo(log zerolog.Logger, db *DB) domain.GenreRepo {
	return &GenreRepo{
		log: log.With().Str("repo", "genre").Logger(),
		db:  db,
	}
}

// InsertIgnore inserts the genre unless a genre with the same name exists
func (r *GenreRepo) InsertIgnore(ctx context.Context, tx *sql.Tx, name string) error {
	queryBuilder := r.db.squirrel.
		Insert("genres").
		Columns("name").
		Values(name)

	switch r.db.driver {
	case domain.DriverSQLite:
		queryBuilder = queryBuilder.Options("OR IGNORE")
	case domain.DriverMySQL:
		queryBuilder = queryBuilder.Options("IGNORE")
	case domain.DriverPostgres:
		queryBuilder = queryBuilder.Suffix("ON CONFLICT (name) DO NOTHING")
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("InsertIgnore")

	if _, err := r.db.runner(tx).ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "error executing query")
	}

	return nil
}

// IDByName returns the id of the named genre or domain.ErrNotFound
func (r *GenreRepo) IDByName(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	queryBuilder := r.db.squirrel.
		Select("id").
		From("genres").
		Where(sq.Eq{"name": name}).
		Limit(1)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("IDByName")

	var id int64
	err = r.db.runner(tx).QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errors.Wrapf(domain.ErrNotFound, "genre %q", name)
	}
	if err != nil {
		return 0, errors.Wrap(err, "error executing query")
	}

	return id, nil
}
