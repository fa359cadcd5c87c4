package ports

import (
	"context"

	"github.com/Vovarama1992/edushare/internal/models"
)

type AuthService interface {
	// Authenticate verifies a bearer token and returns its principal.
	Authenticate(ctx context.Context, token string) (*models.User, error)
	IsAdmin(email string) bool
}
