package ports

import (
	"context"

	"github.com/Vovarama1992/edushare/internal/models"
)

// LookupRepository reads active lookup rows ordered by display_order.
type LookupRepository interface {
	Levels(ctx context.Context) ([]models.Level, error)
	Streams(ctx context.Context) ([]models.Stream, error)
	Languages(ctx context.Context) ([]models.Language, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Subjects(ctx context.Context) ([]models.Subject, error)
	SubjectExists(ctx context.Context, code, levelCode string) (bool, error)

	Upsert(ctx context.Context, l *models.Lookups) error
}

type ConfigService interface {
	Build(ctx context.Context) (*models.AppConfig, error)
}
