package infra

import (
	"context"
	"errors"

	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/Vovarama1992/edushare/internal/ports"
)

// MultiPublisher fans an event out to every sink and joins their errors.
type MultiPublisher []ports.EventPublisher

func (m MultiPublisher) Publish(ctx context.Context, ev models.ResourceEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
