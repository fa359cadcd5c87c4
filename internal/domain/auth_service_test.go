package domain

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAuthenticate(t *testing.T) {
	svc := NewAuthService(testSecret, []string{" Admin@Example.com ", ""})
	id := uuid.New()

	token, err := SignToken(testSecret, id, "admin@example.com", "Ama", time.Hour)
	require.NoError(t, err)

	u, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "admin@example.com", u.Email)
	assert.Equal(t, "Ama", u.Name)
	assert.True(t, u.IsAdmin)
}

func TestAuthenticate_NonAdmin(t *testing.T) {
	svc := NewAuthService(testSecret, []string{"admin@example.com"})
	token, err := SignToken(testSecret, uuid.New(), "student@example.com", "", time.Hour)
	require.NoError(t, err)

	u, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, u.IsAdmin)
	assert.Equal(t, "student@example.com", u.DisplayName())
}

func TestAuthenticate_Rejects(t *testing.T) {
	svc := NewAuthService(testSecret, nil)
	ctx := context.Background()

	expired, err := SignToken(testSecret, uuid.New(), "a@b.c", "", -time.Minute)
	require.NoError(t, err)
	wrongKey, err := SignToken("other", uuid.New(), "a@b.c", "", time.Hour)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: uuid.NewString(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	badSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":   "not.a.jwt",
		"expired":   expired,
		"wrong key": wrongKey,
		"no exp":    noExp,
		"bad sub":   badSub,
		"hs512":     hs512,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tok)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestIsAdmin(t *testing.T) {
	svc := NewAuthService(testSecret, []string{"Root@EduShare.lk"})
	assert.True(t, svc.IsAdmin("root@edushare.lk"))
	assert.True(t, svc.IsAdmin("ROOT@EDUSHARE.LK"))
	assert.False(t, svc.IsAdmin("other@edushare.lk"))
	assert.False(t, svc.IsAdmin(""))
}
