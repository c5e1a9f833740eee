package domain

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Movie is a row in the movies table. The natural key is (Title, ReleaseYear);
// a nil ReleaseYear means the year is unknown and is stored as NULL.
type Movie struct {
	ID          int64
	Title       string
	ReleaseYear *int
	VoteAverage float64
	Popularity  float64
	BoxOffice   int64
}

type Genre struct {
	ID   int64
	Name string
}

type MovieGenre struct {
	MovieID int64
	GenreID int64
}

// Record is a normalized movie ready to be stored, together with the genres
// it should be linked to. TMDB sources fill GenreIDs, OMDb fills GenreNames.
type Record struct {
	Movie      Movie
	GenreIDs   []int
	GenreNames []string
}

// TableCounts holds row totals for the three movie tables
type TableCounts struct {
	Movies      int `yaml:"movies"`
	Genres      int `yaml:"genres"`
	MovieGenres int `yaml:"movieGenres"`
}

// MovieRepo defines the storage operations for movies and their genre links
type MovieRepo interface {
	Exists(ctx context.Context, title string, releaseYear *int) (bool, error)
	Store(ctx context.Context, tx *sql.Tx, movie *Movie) error
	LinkGenre(ctx context.Context, tx *sql.Tx, movieID, genreID int64) error
}

// GenreRepo defines the storage operations for genres. InsertIgnore must be a
// no-op when the name already exists.
type GenreRepo interface {
	InsertIgnore(ctx context.Context, tx *sql.Tx, name string) error
	IDByName(ctx context.Context, tx *sql.Tx, name string) (int64, error)
}
