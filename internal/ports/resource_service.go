package ports

import (
	"context"

	"github.com/Vovarama1992/edushare/internal/models"
)

type SubmitResult struct {
	ID     string                `json:"id"`
	Status models.ApprovalStatus `json:"status"`
}

type ResourceService interface {
	Submit(ctx context.Context, user *models.User, in models.ResourceInput) (*SubmitResult, error)
	List(ctx context.Context, f models.ResourceFilter) ([]models.Resource, int, error)
	Get(ctx context.Context, user *models.User, t models.ResourceType, id string) (*models.Resource, error)
	Delete(ctx context.Context, user *models.User, t models.ResourceType, id string) error

	Mine(ctx context.Context, user *models.User) ([]models.Resource, error)
	Stats(ctx context.Context, user *models.User) (*models.ResourceStats, error)

	Pending(ctx context.Context) ([]models.Resource, error)
	Approve(ctx context.Context, admin *models.User, t models.ResourceType, id string) error
	Reject(ctx context.Context, admin *models.User, t models.ResourceType, id string) error
}
