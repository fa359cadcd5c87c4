package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/Vovarama1992/edushare/internal/ports"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type authService struct {
	secret []byte
	admins map[string]struct{}
}

// tokenClaims mirrors the access tokens issued by the hosted auth provider.
type tokenClaims struct {
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name,omitempty"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

func NewAuthService(secret string, adminEmails []string) ports.AuthService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			admins[e] = struct{}{}
		}
	}
	return &authService{
		secret: []byte(secret),
		admins: admins,
	}
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrUnauthorized)
	}

	return &models.User{
		ID:      id,
		Email:   claims.Email,
		Name:    claims.UserMetadata.FullName,
		IsAdmin: s.IsAdmin(claims.Email),
	}, nil
}

func (s *authService) IsAdmin(email string) bool {
	if email == "" {
		return false
	}
	_, ok := s.admins[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// SignToken issues an HS256 token in the same shape Authenticate accepts.
// Used by the dev `token` command and tests.
func SignToken(secret string, id uuid.UUID, email, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	claims.UserMetadata.FullName = name
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
