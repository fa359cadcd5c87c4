package ports

import (
	"context"

	"github.com/Vovarama1992/edushare/internal/models"
)

type EventPublisher interface {
	Publish(ctx context.Context, ev models.ResourceEvent) error
}
