package genre

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/moviedb/internal/domain"
)

// ReferenceSource returns the external genre id to name mapping
type ReferenceSource interface {
	GenreNames(ctx context.Context) (map[int]string, error)
}

type Service interface {
	LinkIDs(ctx context.Context, tx *sql.Tx, movieID int64, externalIDs []int) (int, error)
	LinkNames(ctx context.Context, tx *sql.Tx, movieID int64, names []string) (int, error)
}

type service struct {
	log       zerolog.Logger
	genreRepo domain.GenreRepo
	movieRepo domain.MovieRepo
	source    ReferenceSource

	mu        sync.Mutex
	reference map[int]string
}

func NewService(log zerolog.Logger, genreRepo domain.GenreRepo, movieRepo domain.MovieRepo, source ReferenceSource) Service {
	return &service{
		log:       log.With().Str("module", "genre").Logger(),
		genreRepo: genreRepo,
		movieRepo: movieRepo,
		source:    source,
	}
}

// LinkIDs resolves external genre ids to names through the reference source
// and links the movie to each of them. Ids missing from the reference are
// skipped. Any error leaves the caller's transaction to be rolled back.
func (s *service) LinkIDs(ctx context.Context, tx *sql.Tx, movieID int64, externalIDs []int) (int, error) {
	if len(externalIDs) == 0 {
		return 0, nil
	}

	reference, err := s.referenceNames(ctx)
	if err != nil {
		return 0, err
	}

	names := make([]string, 0, len(externalIDs))
	for _, id := range externalIDs {
		name, ok := reference[id]
		if !ok {
			s.log.Debug().Int("genre_id", id).Int64("movie_id", movieID).Msg("unknown genre id, skipping")
			continue
		}
		names = append(names, name)
	}

	return s.LinkNames(ctx, tx, movieID, names)
}

// LinkNames inserts each genre if absent, reads back its id and links it
func (s *service) LinkNames(ctx context.Context, tx *sql.Tx, movieID int64, names []string) (int, error) {
	seen := make(map[string]struct{}, len(names))
	linked := 0

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		if err := s.genreRepo.InsertIgnore(ctx, tx, name); err != nil {
			return linked, errors.Wrapf(err, "could not insert genre %q", name)
		}

		genreID, err := s.genreRepo.IDByName(ctx, tx, name)
		if err != nil {
			return linked, errors.Wrapf(err, "could not resolve genre %q", name)
		}

		if err := s.movieRepo.LinkGenre(ctx, tx, movieID, genreID); err != nil {
			return linked, errors.Wrapf(err, "could not link genre %q", name)
		}

		linked++
	}

	return linked, nil
}

// referenceNames returns the cached reference map. A failed fetch is not
// cached, so the next movie tries again.
func (s *service) referenceNames(ctx context.Context) (map[int]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reference != nil {
		return s.reference, nil
	}

	if s.source == nil {
		return nil, errors.New("no genre reference source configured")
	}

	reference, err := s.source.GenreNames(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch genre reference")
	}

	s.log.Debug().Int("genres", len(reference)).Msg("genre reference loaded")
	s.reference = reference

	return reference, nil
}
