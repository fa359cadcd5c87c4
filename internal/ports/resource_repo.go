package ports

import (
	"context"

	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/google/uuid"
)

type ResourceRepository interface {
	InsertMaterial(ctx context.Context, m *models.Material) error
	InsertSession(ctx context.Context, s *models.Session) error

	// ListApproved returns one page of approved rows plus the total match count.
	ListApproved(ctx context.Context, f models.ResourceFilter) ([]models.Resource, int, error)
	GetByID(ctx context.Context, t models.ResourceType, id uuid.UUID) (*models.Resource, error)
	Delete(ctx context.Context, t models.ResourceType, id uuid.UUID) error

	ListPending(ctx context.Context, t models.ResourceType) ([]models.Resource, error)
	// Decide moves a pending row to status. Returns false when no pending row matched.
	Decide(ctx context.Context, t models.ResourceType, id uuid.UUID, status models.ApprovalStatus, by uuid.UUID) (bool, error)

	ListByContributor(ctx context.Context, t models.ResourceType, userID uuid.UUID) ([]models.Resource, error)
	CountByContributor(ctx context.Context, t models.ResourceType, userID uuid.UUID) (map[models.ApprovalStatus]int, error)
}
