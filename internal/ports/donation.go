package ports

import (
	"context"

	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/google/uuid"
)

type DonationRepository interface {
	Insert(ctx context.Context, d *models.DonationRequest) error
	List(ctx context.Context, f models.DonationFilter) ([]models.DonationRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DonationStatus) error
}

type DonationService interface {
	Submit(ctx context.Context, in models.DonationInput, ip string) (*models.DonationRequest, error)
	List(ctx context.Context, f models.DonationFilter) ([]models.DonationRequest, error)
	SetStatus(ctx context.Context, admin *models.User, id string, status models.DonationStatus) error
}

type CaptchaVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, token, remoteIP string) error
}
