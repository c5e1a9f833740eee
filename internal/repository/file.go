package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/varoOP/moviedb/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileRepository implements domain.FileRepository on top of an afero filesystem
type FileRepository struct {
	log zerolog.Logger
	fs  afero.Fs
}

// NewFileRepository creates a new file-based repository. A nil fs uses the
// OS filesystem.
func NewFileRepository(log zerolog.Logger, fs afero.Fs) *FileRepository {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &FileRepository{
		log: log.With().Str("module", "repository").Logger(),
		fs:  fs,
	}
}

var _ domain.FileRepository = (*FileRepository)(nil)

// GetTitles reads a `titles:` YAML list. Blank entries are dropped.
func (r *FileRepository) GetTitles(ctx context.Context, path string) ([]string, error) {
	info, err := r.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	b, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var list domain.TitleList
	if err := yaml.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml from %s: %w", path, err)
	}

	titles := make([]string, 0, len(list.Titles))
	for _, t := range list.Titles {
		if t = strings.TrimSpace(t); t != "" {
			titles = append(titles, t)
		}
	}

	r.log.Debug().Str("path", path).Int("count", len(titles)).Msg("loaded titles")
	return titles, nil
}

// StoreReport writes the run statistics as YAML
func (r *FileRepository) StoreReport(ctx context.Context, path string, stats domain.Statistics) error {
	b, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal yaml: %w", err)
	}

	dir := filepath.Dir(path)
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := afero.WriteFile(r.fs, path, b, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	r.log.Debug().Str("path", path).Msg("stored run report")
	return nil
}
