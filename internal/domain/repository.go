package domain

import (
	"context"
)

// TitleList is the YAML document read by the omdb command
type TitleList struct {
	Titles []string `yaml:"titles"`
}

// FileRepository defines file based inputs and outputs of an import run
type FileRepository interface {
	GetTitles(ctx context.Context, path string) ([]string, error)
	StoreReport(ctx context.Context, path string, stats Statistics) error
}
