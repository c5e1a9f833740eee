package domain

import (
	"context"
	"time"
)

// NotificationService defines the interface for notification services
type NotificationService interface {
	// SendSuccess sends a success notification with statistics
	SendSuccess(ctx context.Context, stats Statistics) error

	// SendError sends an error notification with error details
	SendError(ctx context.Context, err error) error
}

// Statistics holds the final statistics for an import run
type Statistics struct {
	RunID      string        `yaml:"runId"`
	Source     string        `yaml:"source"`
	Pages      int           `yaml:"pages"`
	Records    int           `yaml:"records"`
	Inserted   int           `yaml:"inserted"`
	Skipped    int           `yaml:"skipped"`
	Failed     int           `yaml:"failed"`
	GenreLinks int           `yaml:"genreLinks"`
	Duration   time.Duration `yaml:"duration"`
	Totals     TableCounts   `yaml:"totals"`
}
