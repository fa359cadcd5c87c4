package infra

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Vovarama1992/edushare/internal/domain"
	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testPool connects to TEST_DATABASE_URL, migrates, and wipes the data tables.
// Tests using it are skipped when the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := NewPgxPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = Migrate(ctx, pool)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `TRUNCATE materials, sessions, donation_requests, rate_limits`)
	require.NoError(t, err)
	return pool
}

func newMaterial(status models.ApprovalStatus, owner *uuid.UUID) *models.Material {
	return &models.Material{
		ResourceBase: models.ResourceBase{
			ID:            uuid.New(),
			Title:         "Physics notes",
			Description:   "Unit 1 summary notes",
			URL:           "https://drive.google.com/file/d/abc",
			Level:         "AL",
			Stream:        []string{"Science", "Technology"},
			Subject:       "Physics",
			Language:      "English",
			ContributorID: owner,
			IsAnonymous:   owner == nil,
			Status:        status,
		},
		Category: "Note",
	}
}

func TestPostgres_MigrateIsIdempotent(t *testing.T) {
	pool := testPool(t)
	applied, err := Migrate(context.Background(), pool)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestPostgres_LookupsSeedAndRead(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewPostgresLookupRepo(pool)

	seed, err := LoadSeed("")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, seed))
	require.NoError(t, repo.Upsert(ctx, seed), "seeding twice is safe")

	levels, err := repo.Levels(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, "AL", levels[0].Code)

	ok, err := repo.SubjectExists(ctx, "Physics", "AL")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.SubjectExists(ctx, "Physics", "OL")
	require.NoError(t, err)
	assert.False(t, ok)

	cfg, err := domain.NewConfigService(repo).Build(ctx)
	require.NoError(t, err)
	assert.Contains(t, cfg.Subjects["Arts"], "ICT")
	assert.NotContains(t, cfg.Streams["OL"], "General")
}

func TestPostgres_ResourceLifecycle(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewPostgresResourceRepo(pool)

	owner := uuid.New()
	approved := newMaterial(models.StatusApproved, &owner)
	pending := newMaterial(models.StatusPending, nil)
	require.NoError(t, repo.InsertMaterial(ctx, approved))
	require.NoError(t, repo.InsertMaterial(ctx, pending))
	assert.False(t, approved.CreatedAt.IsZero())

	items, total, err := repo.ListApproved(ctx, models.ResourceFilter{
		Type: models.ResourceMaterial, Stream: "Technology", Page: 1, Limit: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, approved.ID, items[0].Material.ID)
	assert.Equal(t, []string{"Science", "Technology"}, items[0].Material.Stream)

	_, total, err = repo.ListApproved(ctx, models.ResourceFilter{
		Type: models.ResourceMaterial, Level: "OL", Page: 1, Limit: 20,
	})
	require.NoError(t, err)
	assert.Zero(t, total)

	queue, err := repo.ListPending(ctx, models.ResourceMaterial)
	require.NoError(t, err)
	require.Len(t, queue, 1)

	mod := uuid.New()
	changed, err := repo.Decide(ctx, models.ResourceMaterial, pending.ID, models.StatusRejected, mod)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = repo.Decide(ctx, models.ResourceMaterial, pending.ID, models.StatusApproved, mod)
	require.NoError(t, err)
	assert.False(t, changed, "already decided")

	got, err := repo.GetByID(ctx, models.ResourceMaterial, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Material.Status)
	require.NotNil(t, got.Material.ApprovedBy)
	assert.Equal(t, mod, *got.Material.ApprovedBy)

	counts, err := repo.CountByContributor(ctx, models.ResourceMaterial, owner)
	require.NoError(t, err)
	assert.Equal(t, map[models.ApprovalStatus]int{models.StatusApproved: 1}, counts)

	require.NoError(t, repo.Delete(ctx, models.ResourceMaterial, approved.ID))
	assert.ErrorIs(t, repo.Delete(ctx, models.ResourceMaterial, approved.ID), domain.ErrNotFound)
	_, err = repo.GetByID(ctx, models.ResourceMaterial, approved.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_SessionDateRoundTrip(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewPostgresResourceRepo(pool)

	date, start := "2025-09-14", "18:30"
	s := &models.Session{
		ResourceBase: newMaterial(models.StatusApproved, nil).ResourceBase,
		SessionType:  models.SessionLive,
		SessionDate:  &date,
		StartTime:    &start,
	}
	require.NoError(t, repo.InsertSession(ctx, s))

	got, err := repo.GetByID(ctx, models.ResourceSession, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Session.SessionDate)
	assert.Equal(t, date, *got.Session.SessionDate)
	assert.Equal(t, start, *got.Session.StartTime)
	assert.Nil(t, got.Session.EndTime)
}

func TestPostgres_Donations(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewPostgresDonationRepo(pool)

	d := &models.DonationRequest{
		ID: uuid.New(), Name: "Nimal", Address: "12 Temple Road", District: "Galle",
		Grade: "10", School: "Richmond College", PhoneNumber: "0771234567",
		Category: "Books", Description: "Past papers", Status: models.DonationPending,
		SubmittedFromIP: "10.0.0.1",
	}
	require.NoError(t, repo.Insert(ctx, d))

	list, err := repo.List(ctx, models.DonationFilter{District: "Galle"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = repo.List(ctx, models.DonationFilter{Category: "Clothes"})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, repo.UpdateStatus(ctx, d.ID, models.DonationFulfilled))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), models.DonationFulfilled), domain.ErrNotFound)
}

func TestPostgres_Limiter(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	l := NewPostgresLimiter(pool, 3, time.Hour, logger.NewZapLogger(zap.NewNop().Sugar()))
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "donations:1.1.1.1")
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := l.Allow(ctx, "donations:1.1.1.1")
	require.NoError(t, err)
	assert.False(t, ok)

	over, err := l.Exceeded(ctx, "donations:1.1.1.1")
	require.NoError(t, err)
	assert.True(t, over)

	now = base.Add(time.Hour)
	over, err = l.Exceeded(ctx, "donations:1.1.1.1")
	require.NoError(t, err)
	assert.False(t, over)
}
