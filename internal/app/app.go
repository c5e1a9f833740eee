package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/varoOP/moviedb/internal/config"
	"github.com/varoOP/moviedb/internal/database"
	"github.com/varoOP/moviedb/internal/domain"
	"github.com/varoOP/moviedb/internal/genre"
	"github.com/varoOP/moviedb/internal/logger"
	"github.com/varoOP/moviedb/internal/movie"
	"github.com/varoOP/moviedb/internal/normalize"
	"github.com/varoOP/moviedb/internal/notification"
	"github.com/varoOP/moviedb/internal/omdb"
	"github.com/varoOP/moviedb/internal/pipeline"
	"github.com/varoOP/moviedb/internal/repository"
	"github.com/varoOP/moviedb/internal/tmdb"
)

// CompletionMessage is printed after every finished import
const CompletionMessage = "Data is ready!"

// App represents the main application with all dependencies initialized
type App struct {
	log                 zerolog.Logger
	logCloser           io.Closer
	config              *domain.Config
	out                 io.Writer
	fileRepo            domain.FileRepository
	tmdbService         tmdb.Service
	omdbService         omdb.Service
	notificationService domain.NotificationService
}

// NewApp creates a new application instance from the loaded configuration
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, closer := logger.Configure(cfg.LogLevel, cfg.LogFile)

	a := New(log, cfg, nil, os.Stdout)
	a.logCloser = closer

	return a, nil
}

// New wires the application around an explicit config. A nil httpc lets each
// client build its own with the configured timeout.
func New(log zerolog.Logger, cfg *domain.Config, httpc *http.Client, out io.Writer) *App {
	return &App{
		log:                 log,
		config:              cfg,
		out:                 out,
		fileRepo:            repository.NewFileRepository(log, nil),
		tmdbService:         tmdb.NewService(log, cfg, httpc),
		omdbService:         omdb.NewService(log, cfg, httpc),
		notificationService: notification.NewService(log, cfg.DiscordWebhookURL),
	}
}

// Close flushes the log file, if any
func (a *App) Close() error {
	if a.logCloser == nil {
		return nil
	}

	return a.logCloser.Close()
}

// InitSchema creates the movie tables and reports the current row counts
func (a *App) InitSchema(ctx context.Context) error {
	db, err := database.NewDB(ctx, a.config.Database, a.log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	counts, err := db.Counts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count rows: %w", err)
	}

	a.log.Info().
		Str("driver", string(a.config.Database.Driver)).
		Int("movies", counts.Movies).
		Int("genres", counts.Genres).
		Int("movie_genres", counts.MovieGenres).
		Msg("Schema ready")

	return nil
}

// ImportPopular imports the TMDB popular listing
func (a *App) ImportPopular(ctx context.Context) error {
	if a.config.TmdbApiKey == "" {
		return fmt.Errorf("tmdb_api_key is required (set via config, MOVIEDB_TMDB_API_KEY or TMDB_API_KEY)")
	}

	return a.runImport(ctx, func(p pipeline.Service) (domain.Statistics, error) {
		return p.ImportPopular(ctx)
	})
}

// ImportByID imports single TMDB movies by id
func (a *App) ImportByID(ctx context.Context, ids []int) error {
	if a.config.TmdbApiKey == "" {
		return fmt.Errorf("tmdb_api_key is required (set via config, MOVIEDB_TMDB_API_KEY or TMDB_API_KEY)")
	}

	return a.runImport(ctx, func(p pipeline.Service) (domain.Statistics, error) {
		return p.ImportByID(ctx, ids...)
	})
}

// ImportOMDB imports OMDb matches for titles, the titles listed in the YAML
// titlesFile when set, and IMDb ids. Titles are imported first.
func (a *App) ImportOMDB(ctx context.Context, titles []string, titlesFile string, imdbIDs []string) error {
	if a.config.OmdbApiKey == "" {
		return fmt.Errorf("omdb_api_key is required (set via config, MOVIEDB_OMDB_API_KEY or OMDB_API_KEY)")
	}

	if titlesFile != "" {
		fromFile, err := a.fileRepo.GetTitles(ctx, titlesFile)
		if err != nil {
			return fmt.Errorf("failed to read titles: %w", err)
		}
		titles = append(titles, fromFile...)
	}

	if len(titles) == 0 && len(imdbIDs) == 0 {
		return fmt.Errorf("no titles or imdb ids given")
	}

	return a.runImport(ctx, func(p pipeline.Service) (domain.Statistics, error) {
		stats, err := p.ImportTitles(ctx, titles)
		if err != nil || len(imdbIDs) == 0 {
			return stats, err
		}

		byID, err := p.ImportIMDbIDs(ctx, imdbIDs)
		stats.Records += byID.Records
		stats.Inserted += byID.Inserted
		stats.Skipped += byID.Skipped
		stats.Failed += byID.Failed
		stats.GenreLinks += byID.GenreLinks
		stats.Duration += byID.Duration
		return stats, err
	})
}

// runImport opens the database for a single run, wires the import services
// around it and reports the outcome. The database is closed on every path.
func (a *App) runImport(ctx context.Context, run func(p pipeline.Service) (domain.Statistics, error)) (err error) {
	runID := uuid.NewString()
	log := a.log.With().Str("run_id", runID).Logger()

	defer func() {
		if err != nil {
			if notifyErr := a.notificationService.SendError(ctx, err); notifyErr != nil {
				log.Warn().Err(notifyErr).Msg("Failed to send error notification")
			}
		}
	}()

	db, err := database.NewDB(ctx, a.config.Database, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close database")
		}
	}()

	movieRepo := database.NewMovieRepo(log, db)
	genreRepo := database.NewGenreRepo(log, db)
	genreService := genre.NewService(log, genreRepo, movieRepo, a.tmdbService)
	movieService := movie.NewService(log, db, movieRepo, genreService)
	pipelineService := pipeline.NewService(log, a.config, a.tmdbService, a.omdbService, normalize.New(log), movieRepo, movieService)

	stats, err := run(pipelineService)
	stats.RunID = runID
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if stats.Totals, err = db.Counts(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to count rows")
		err = nil
	}

	log.Info().
		Str("source", stats.Source).
		Int("pages", stats.Pages).
		Int("records", stats.Records).
		Int("inserted", stats.Inserted).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Int("genre_links", stats.GenreLinks).
		Dur("duration", stats.Duration).
		Msg("=== IMPORT SUMMARY ===")

	if printErr := PrintSummary(a.out, stats); printErr != nil {
		log.Warn().Err(printErr).Msg("Failed to print summary")
	}
	fmt.Fprintln(a.out, CompletionMessage)

	if a.config.ReportPath != "" {
		if reportErr := a.fileRepo.StoreReport(ctx, a.config.ReportPath, stats); reportErr != nil {
			log.Warn().Err(reportErr).Str("path", a.config.ReportPath).Msg("Failed to write report")
		}
	}

	if notifyErr := a.notificationService.SendSuccess(ctx, stats); notifyErr != nil {
		log.Warn().Err(notifyErr).Msg("Failed to send success notification")
	}

	return nil
}

// PrintSummary renders the run statistics as a table
func PrintSummary(w io.Writer, stats domain.Statistics) error {
	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")
	table.Append("Run ID", stats.RunID)
	table.Append("Source", stats.Source)
	table.Append("Pages", strconv.Itoa(stats.Pages))
	table.Append("Records", strconv.Itoa(stats.Records))
	table.Append("Inserted", strconv.Itoa(stats.Inserted))
	table.Append("Skipped", strconv.Itoa(stats.Skipped))
	table.Append("Failed", strconv.Itoa(stats.Failed))
	table.Append("Genre links", strconv.Itoa(stats.GenreLinks))
	table.Append("Movies (total)", strconv.Itoa(stats.Totals.Movies))
	table.Append("Genres (total)", strconv.Itoa(stats.Totals.Genres))
	table.Append("Movie genres (total)", strconv.Itoa(stats.Totals.MovieGenres))
	table.Append("Duration", stats.Duration.Round(time.Millisecond).String())
	return table.Render()
}
