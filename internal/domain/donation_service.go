package domain

import (
	"context"

	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/Vovarama1992/edushare/internal/ports"
	"github.com/google/uuid"
)

type donationService struct {
	repo    ports.DonationRepository
	captcha ports.CaptchaVerifier
	bus     *EventBus
}

func NewDonationService(repo ports.DonationRepository, captcha ports.CaptchaVerifier, bus *EventBus) ports.DonationService {
	return &donationService{
		repo:    repo,
		captcha: captcha,
		bus:     bus,
	}
}

func (s *donationService) Submit(ctx context.Context, in models.DonationInput, ip string) (*models.DonationRequest, error) {
	if s.captcha != nil && s.captcha.Enabled() {
		if err := s.captcha.Verify(ctx, in.RecaptchaToken, ip); err != nil {
			return nil, err
		}
	}
	if err := ValidateDonation(&in); err != nil {
		return nil, err
	}
	SanitizeDonation(&in)

	d := &models.DonationRequest{
		ID:              uuid.New(),
		Name:            in.Name,
		Address:         in.Address,
		District:        in.District,
		Grade:           in.Grade,
		School:          in.School,
		PhoneNumber:     in.PhoneNumber,
		Category:        in.Category,
		Description:     in.Description,
		Status:          models.DonationPending,
		SubmittedFromIP: ip,
	}
	if err := s.repo.Insert(ctx, d); err != nil {
		return nil, err
	}

	s.bus.Emit(models.ResourceEvent{
		Type:   models.EventDonationCreated,
		ID:     d.ID.String(),
		Title:  d.Category + " / " + d.District,
		Status: string(d.Status),
	})
	return d, nil
}

func (s *donationService) List(ctx context.Context, f models.DonationFilter) ([]models.DonationRequest, error) {
	return s.repo.List(ctx, f)
}

func (s *donationService) SetStatus(ctx context.Context, admin *models.User, id string, status models.DonationStatus) error {
	if admin == nil {
		return ErrUnauthorized
	}
	if !admin.IsAdmin {
		return ErrForbidden
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return invalid("Invalid donation request ID format")
	}
	if !status.Valid() {
		return &ValidationError{
			Message: "Validation failed",
			Issues:  []FieldIssue{{Field: "status", Message: "status must be one of: pending in_progress fulfilled"}},
		}
	}
	if err := s.repo.UpdateStatus(ctx, uid, status); err != nil {
		return err
	}

	s.bus.Emit(models.ResourceEvent{
		Type:   models.EventDonationUpdated,
		ID:     uid.String(),
		Status: string(status),
	})
	return nil
}
