package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/moviedb/internal/database"
	"github.com/varoOP/moviedb/internal/domain"
	"github.com/varoOP/moviedb/internal/genre"
	"github.com/varoOP/moviedb/internal/movie"
	"github.com/varoOP/moviedb/internal/normalize"
	"github.com/varoOP/moviedb/internal/omdb"
)

type fakeTMDB struct {
	pages       map[int]*domain.TMDBPage
	movies      map[int]*domain.TMDBMovie
	genres      map[int]string
	genreErrors int
	requested   []int
}

func (f *fakeTMDB) PopularMovies(ctx context.Context, page int) (*domain.TMDBPage, error) {
	f.requested = append(f.requested, page)
	p, ok := f.pages[page]
	if !ok {
		return nil, errors.New("tmdb request failed: 400 Bad Request")
	}
	return p, nil
}

func (f *fakeTMDB) Movie(ctx context.Context, id int) (*domain.TMDBMovie, error) {
	m, ok := f.movies[id]
	if !ok {
		return nil, fmt.Errorf("tmdb request failed: 404 Not Found")
	}
	return m, nil
}

func (f *fakeTMDB) GenreNames(ctx context.Context) (map[int]string, error) {
	if f.genreErrors > 0 {
		f.genreErrors--
		return nil, errors.New("connection reset by peer")
	}
	return f.genres, nil
}

type fakeOMDB struct {
	movies map[string]*domain.OMDBMovie
	byID   map[string]*domain.OMDBMovie
}

func (f *fakeOMDB) MovieByTitle(ctx context.Context, title string) (*domain.OMDBMovie, error) {
	m, ok := f.movies[title]
	if !ok {
		return nil, fmt.Errorf("omdb lookup for title %q: %w", title, domain.ErrNotFound)
	}
	return m, nil
}

func (f *fakeOMDB) MovieByID(ctx context.Context, imdbID string) (*domain.OMDBMovie, error) {
	m, ok := f.byID[imdbID]
	if !ok {
		return nil, fmt.Errorf("omdb lookup for id %q: %w", imdbID, domain.ErrNotFound)
	}
	return m, nil
}

func tmdbMovie(title, date string, genreIDs ...any) domain.TMDBMovie {
	return domain.TMDBMovie{
		Title:       title,
		ReleaseDate: date,
		VoteAverage: 7.5,
		Popularity:  100.0,
		GenreIDs:    genreIDs,
	}
}

type fixture struct {
	db  *database.DB
	svc Service
}

func setup(t *testing.T, cfg *domain.Config, src *fakeTMDB, omdbSrc *fakeOMDB) *fixture {
	t.Helper()

	log := zerolog.Nop()
	db, err := database.NewDB(context.Background(), domain.DatabaseConfig{
		Driver: domain.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "pipeline.db"),
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	movieRepo := database.NewMovieRepo(log, db)
	genreRepo := database.NewGenreRepo(log, db)
	genreSvc := genre.NewService(log, genreRepo, movieRepo, src)
	movieSvc := movie.NewService(log, db, movieRepo, genreSvc)

	var omdbSvc omdb.Service
	if omdbSrc != nil {
		omdbSvc = omdbSrc
	}

	svc := NewService(log, cfg, src, omdbSvc, normalize.New(log), movieRepo, movieSvc)

	return &fixture{db: db, svc: svc}
}

func (f *fixture) counts(t *testing.T) domain.TableCounts {
	t.Helper()
	c, err := f.db.Counts(context.Background())
	require.NoError(t, err)
	return c
}

func defaultGenres() map[int]string {
	return map[int]string{878: "Science Fiction", 12: "Adventure", 18: "Drama", 28: "Action"}
}

func TestImportPopularEndToEnd(t *testing.T) {
	src := &fakeTMDB{
		genres: defaultGenres(),
		pages: map[int]*domain.TMDBPage{
			1: {Page: 1, TotalPages: 1, Results: []domain.TMDBMovie{
				tmdbMovie("Dune", "2021-10-01", 878.0, 12.0),
			}},
		},
	}
	f := setup(t, &domain.Config{StartPage: 1}, src, nil)

	stats, err := f.svc.ImportPopular(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, 1, stats.Records)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 2, stats.GenreLinks)
	assert.Equal(t, domain.TableCounts{Movies: 1, Genres: 2, MovieGenres: 2}, f.counts(t))
}

func TestImportPopularHaltsOnFailedPage(t *testing.T) {
	src := &fakeTMDB{
		genres: defaultGenres(),
		pages: map[int]*domain.TMDBPage{
			1: {Page: 1, TotalPages: 5, Results: []domain.TMDBMovie{
				tmdbMovie("Dune", "2021-10-01", 878.0),
				tmdbMovie("Arrival", "2016-11-10", 18.0, 878.0),
			}},
			3: {Page: 3, TotalPages: 5, Results: []domain.TMDBMovie{
				tmdbMovie("Heat", "1995-12-15", 28.0),
			}},
		},
	}
	f := setup(t, &domain.Config{StartPage: 1}, src, nil)

	stats, err := f.svc.ImportPopular(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, src.requested)
	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, 2, stats.Inserted)
	assert.Equal(t, 2, f.counts(t).Movies)
}

func TestImportPopularSkipsDuplicates(t *testing.T) {
	src := &fakeTMDB{
		genres: defaultGenres(),
		pages: map[int]*domain.TMDBPage{
			1: {Page: 1, TotalPages: 1, Results: []domain.TMDBMovie{
				tmdbMovie("Dune", "2021-10-01", 878.0, 12.0),
				tmdbMovie("Dune", "2021-10-22", 878.0),
				tmdbMovie("Untitled", ""),
			}},
		},
	}
	f := setup(t, &domain.Config{StartPage: 1}, src, nil)

	stats, err := f.svc.ImportPopular(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Inserted)
	assert.Equal(t, 1, stats.Skipped)

	stats, err = f.svc.ImportPopular(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Inserted)
	assert.Equal(t, 3, stats.Skipped)

	assert.Equal(t, domain.TableCounts{Movies: 2, Genres: 2, MovieGenres: 2}, f.counts(t))
}

func TestImportPopularRollsBackOnlyFailingMovie(t *testing.T) {
	src := &fakeTMDB{
		genres:      defaultGenres(),
		genreErrors: 1,
		pages: map[int]*domain.TMDBPage{
			1: {Page: 1, TotalPages: 1, Results: []domain.TMDBMovie{
				tmdbMovie("Dune", "2021-10-01", 878.0),
				tmdbMovie("Heat", "1995-12-15", 28.0),
			}},
		},
	}
	f := setup(t, &domain.Config{StartPage: 1}, src, nil)

	stats, err := f.svc.ImportPopular(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, domain.TableCounts{Movies: 1, Genres: 1, MovieGenres: 1}, f.counts(t))
}

func TestImportPopularPageWindow(t *testing.T) {
	pages := map[int]*domain.TMDBPage{}
	for i := 1; i <= 10; i++ {
		pages[i] = &domain.TMDBPage{Page: i, TotalPages: 10, Results: []domain.TMDBMovie{
			tmdbMovie(fmt.Sprintf("Movie %d", i), "2000-01-01"),
		}}
	}
	src := &fakeTMDB{genres: defaultGenres(), pages: pages}
	f := setup(t, &domain.Config{StartPage: 3, MaxPages: 2}, src, nil)

	stats, err := f.svc.ImportPopular(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, src.requested)
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 2, stats.Inserted)
}

func TestImportPopularEmptyPage(t *testing.T) {
	src := &fakeTMDB{
		genres: defaultGenres(),
		pages: map[int]*domain.TMDBPage{
			1: {Page: 1, TotalPages: 3, Results: []domain.TMDBMovie{}},
		},
	}
	f := setup(t, &domain.Config{StartPage: 1}, src, nil)

	stats, err := f.svc.ImportPopular(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, src.requested)
	assert.Zero(t, stats.Records)
}

func TestImportPopularCanceled(t *testing.T) {
	src := &fakeTMDB{
		genres: defaultGenres(),
		pages: map[int]*domain.TMDBPage{
			1: {Page: 1, TotalPages: 1, Results: []domain.TMDBMovie{tmdbMovie("Dune", "2021-10-01")}},
		},
	}
	f := setup(t, &domain.Config{StartPage: 1}, src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.ImportPopular(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportByID(t *testing.T) {
	src := &fakeTMDB{
		genres: defaultGenres(),
		movies: map[int]*domain.TMDBMovie{
			438631: {
				Title:       "Dune",
				ReleaseDate: "2021-09-15",
				VoteAverage: 7.8,
				Genres:      []any{map[string]any{"id": 878.0, "name": "Science Fiction"}},
			},
		},
	}
	f := setup(t, &domain.Config{StartPage: 1}, src, nil)

	stats, err := f.svc.ImportByID(context.Background(), 438631, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.GenreLinks)
}

func TestImportTitles(t *testing.T) {
	omdbSrc := &fakeOMDB{movies: map[string]*domain.OMDBMovie{
		"Inception": {
			Title:      "Inception",
			Year:       "2010",
			Genre:      "Action, Adventure, Sci-Fi",
			IMDBRating: "8.8",
			BoxOffice:  "$292,587,330",
			Response:   "True",
		},
	}}
	f := setup(t, &domain.Config{StartPage: 1}, &fakeTMDB{}, omdbSrc)

	stats, err := f.svc.ImportTitles(context.Background(), []string{"Inception", "Nope", "Inception"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, domain.TableCounts{Movies: 1, Genres: 3, MovieGenres: 3}, f.counts(t))
}

func TestImportTitlesWithoutClient(t *testing.T) {
	f := setup(t, &domain.Config{StartPage: 1}, &fakeTMDB{}, nil)

	_, err := f.svc.ImportTitles(context.Background(), []string{"Inception"})
	assert.Error(t, err)
}

func TestImportIMDbIDs(t *testing.T) {
	omdbSrc := &fakeOMDB{byID: map[string]*domain.OMDBMovie{
		"tt1375666": {
			Title:      "Inception",
			Year:       "2010",
			Genre:      "Action, Sci-Fi",
			IMDBRating: "8.8",
			Response:   "True",
		},
	}}
	f := setup(t, &domain.Config{StartPage: 1}, &fakeTMDB{}, omdbSrc)

	stats, err := f.svc.ImportIMDbIDs(context.Background(), []string{"tt1375666", "tt0000000"})
	require.NoError(t, err)
	assert.Equal(t, SourceOMDB, stats.Source)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, domain.TableCounts{Movies: 1, Genres: 2, MovieGenres: 2}, f.counts(t))
}

func TestImportStoresMovieWithNonFiniteRating(t *testing.T) {
	src := &fakeTMDB{
		genres: defaultGenres(),
		pages: map[int]*domain.TMDBPage{
			1: {Page: 1, TotalPages: 1, Results: []domain.TMDBMovie{
				{Title: "Dune", ReleaseDate: "2021-10-01", VoteAverage: "NaN", Popularity: "Inf", GenreIDs: []any{878.0}},
			}},
		},
	}
	f := setup(t, &domain.Config{StartPage: 1}, src, nil)

	stats, err := f.svc.ImportPopular(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Inserted)
	assert.Zero(t, stats.Failed)
	assert.Equal(t, domain.TableCounts{Movies: 1, Genres: 1, MovieGenres: 1}, f.counts(t))
}
