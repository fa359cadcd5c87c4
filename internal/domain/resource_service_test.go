package domain

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResourceService(t *testing.T) (*ResourceService, *memResourceRepo, *EventBus) {
	t.Helper()
	repo := newMemResourceRepo()
	bus := NewEventBus(64, nopLogger())
	lookups := &stubLookups{l: models.Lookups{
		Subjects: []models.Subject{{Code: "Physics", StreamCode: "Science", LevelCode: "AL"}},
	}}
	svc := NewResourceService(repo, lookups, bus, nopLogger())
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) }
	return svc, repo, bus
}

func materialInput() models.ResourceInput {
	return models.ResourceInput{
		ResourceType: models.ResourceMaterial,
		Title:        "Physics notes",
		Description:  "Unit 1 to 3 summary notes",
		URL:          "https://drive.google.com/file/d/abc",
		Level:        "AL",
		Stream:       []string{"Science"},
		Subject:      "Physics",
		Language:     "English",
		Category:     "Note",
	}
}

func member() *models.User {
	return &models.User{ID: uuid.New(), Email: "kasun@example.com", Name: "Kasun"}
}

func admin() *models.User {
	return &models.User{ID: uuid.New(), Email: "admin@example.com", IsAdmin: true}
}

func TestDeriveStatus(t *testing.T) {
	u := member()
	assert.Equal(t, models.StatusApproved, DeriveStatus(u, false))
	assert.Equal(t, models.StatusPending, DeriveStatus(u, true))
	assert.Equal(t, models.StatusPending, DeriveStatus(nil, false))
	assert.Equal(t, models.StatusPending, DeriveStatus(nil, true))
}

func TestSubmit_AnonymousIsPendingWithoutContributor(t *testing.T) {
	svc, repo, bus := newTestResourceService(t)

	res, err := svc.Submit(context.Background(), nil, materialInput())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, res.Status)

	stored, err := repo.GetByID(context.Background(), models.ResourceMaterial, uuid.MustParse(res.ID))
	require.NoError(t, err)
	b := stored.Base()
	assert.Equal(t, models.StatusPending, b.Status)
	assert.Nil(t, b.ContributorID)
	assert.Nil(t, b.ContributorName)
	assert.True(t, b.IsAnonymous)

	evs := drain(bus)
	require.Len(t, evs, 1)
	assert.Equal(t, models.EventResourceSubmitted, evs[0].Type)
	assert.Equal(t, res.ID, evs[0].ID)
	assert.False(t, evs[0].At.IsZero())
}

func TestSubmit_SignedInIsApproved(t *testing.T) {
	svc, repo, _ := newTestResourceService(t)
	u := member()

	res, err := svc.Submit(context.Background(), u, materialInput())
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, res.Status)

	stored, err := repo.GetByID(context.Background(), models.ResourceMaterial, uuid.MustParse(res.ID))
	require.NoError(t, err)
	b := stored.Base()
	require.NotNil(t, b.ContributorID)
	assert.Equal(t, u.ID, *b.ContributorID)
	assert.Equal(t, "Kasun", *b.ContributorName)
	assert.False(t, b.IsAnonymous)
	assert.Equal(t, "Note", stored.Material.Category)
}

func TestSubmit_SignedInAnonymousIsPending(t *testing.T) {
	svc, repo, _ := newTestResourceService(t)
	in := materialInput()
	in.IsAnonymous = true

	res, err := svc.Submit(context.Background(), member(), in)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, res.Status)

	stored, err := repo.GetByID(context.Background(), models.ResourceMaterial, uuid.MustParse(res.ID))
	require.NoError(t, err)
	assert.Nil(t, stored.Base().ContributorID)
}

func TestSubmit_SanitizesFreeText(t *testing.T) {
	svc, repo, _ := newTestResourceService(t)
	in := materialInput()
	in.Title = "  <b>Physics</b> notes  "
	in.Description = `<script>x</script>see onclick= javascript:alert(1) here`

	res, err := svc.Submit(context.Background(), member(), in)
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), models.ResourceMaterial, uuid.MustParse(res.ID))
	require.NoError(t, err)
	assert.Equal(t, "Physics notes", stored.Base().Title)
	assert.NotContains(t, stored.Base().Description, "<script>")
	assert.NotContains(t, stored.Base().Description, "javascript:")
	assert.NotContains(t, stored.Base().Description, "onclick=")
}

func TestSubmit_UnknownSubjectStillStored(t *testing.T) {
	svc, _, _ := newTestResourceService(t)
	in := materialInput()
	in.Subject = "Astronomy"

	_, err := svc.Submit(context.Background(), nil, in)
	require.NoError(t, err)
}

func TestSubmit_RecordingSessionDropsSchedule(t *testing.T) {
	svc, repo, _ := newTestResourceService(t)
	date, start := "2025-06-10", "18:30"
	in := materialInput()
	in.ResourceType = models.ResourceSession
	in.Category = ""
	in.URL = "https://www.youtube.com/watch?v=abc"
	in.SessionType = models.SessionRecording
	in.SessionDate = &date
	in.StartTime = &start

	res, err := svc.Submit(context.Background(), member(), in)
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), models.ResourceSession, uuid.MustParse(res.ID))
	require.NoError(t, err)
	require.NotNil(t, stored.Session)
	assert.Nil(t, stored.Session.SessionDate)
	assert.Nil(t, stored.Session.StartTime)
}

func TestSubmit_JunkScheduleOffLive(t *testing.T) {
	svc, repo, _ := newTestResourceService(t)
	ctx := context.Background()
	junk := "next week"

	material := materialInput()
	material.SessionDate = &junk
	_, err := svc.Submit(ctx, member(), material)
	require.NoError(t, err)

	in := materialInput()
	in.ResourceType = models.ResourceSession
	in.Category = ""
	in.URL = "https://www.youtube.com/watch?v=abc"
	in.SessionType = models.SessionRecording
	in.SessionDate = &junk
	res, err := svc.Submit(ctx, member(), in)
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, models.ResourceSession, uuid.MustParse(res.ID))
	require.NoError(t, err)
	require.NotNil(t, stored.Session)
	assert.Nil(t, stored.Session.SessionDate)
}

func TestSubmit_LiveSessionKeepsSchedule(t *testing.T) {
	svc, repo, _ := newTestResourceService(t)
	date, start, empty := "2025-06-10", "18:30", ""
	in := materialInput()
	in.ResourceType = models.ResourceSession
	in.Category = ""
	in.URL = "https://zoom.us/j/123"
	in.SessionType = models.SessionLive
	in.SessionDate = &date
	in.StartTime = &start
	in.EndTime = &empty

	res, err := svc.Submit(context.Background(), member(), in)
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), models.ResourceSession, uuid.MustParse(res.ID))
	require.NoError(t, err)
	require.NotNil(t, stored.Session.SessionDate)
	assert.Equal(t, date, *stored.Session.SessionDate)
	assert.Equal(t, start, *stored.Session.StartTime)
	assert.Nil(t, stored.Session.EndTime)
}

func TestSubmit_InvalidInput(t *testing.T) {
	svc, _, bus := newTestResourceService(t)
	in := materialInput()
	in.Title = "ab"

	_, err := svc.Submit(context.Background(), nil, in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, drain(bus))
}

func TestNormalizeFilter(t *testing.T) {
	tests := []struct {
		name      string
		in        models.ResourceFilter
		wantType  models.ResourceType
		wantPage  int
		wantLimit int
	}{
		{"defaults", models.ResourceFilter{}, models.ResourceMaterial, 1, DefaultPageSize},
		{"session kept", models.ResourceFilter{Type: models.ResourceSession, Page: 3, Limit: 5}, models.ResourceSession, 3, 5},
		{"unknown type", models.ResourceFilter{Type: "video"}, models.ResourceMaterial, 1, DefaultPageSize},
		{"negative page", models.ResourceFilter{Page: -2, Limit: 10}, models.ResourceMaterial, 1, 10},
		{"limit capped", models.ResourceFilter{Page: 1, Limit: 500}, models.ResourceMaterial, 1, MaxPageSize},
		{"zero limit", models.ResourceFilter{Page: 1, Limit: 0}, models.ResourceMaterial, 1, DefaultPageSize},
		{"huge page", models.ResourceFilter{Page: 1 << 62, Limit: 20}, models.ResourceMaterial, math.MaxInt32 / 20, 20},
		{"huge page max limit", models.ResourceFilter{Page: math.MaxInt, Limit: 500}, models.ResourceMaterial, math.MaxInt32 / MaxPageSize, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeFilter(tt.in)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.GreaterOrEqual(t, got.Offset(), 0)
			assert.LessOrEqual(t, got.Offset(), math.MaxInt32)
		})
	}
}

func TestList_OnlyApproved(t *testing.T) {
	svc, _, _ := newTestResourceService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, nil, materialInput())
	require.NoError(t, err)
	approved, err := svc.Submit(ctx, member(), materialInput())
	require.NoError(t, err)

	items, total, err := svc.List(ctx, models.ResourceFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, approved.ID, items[0].Base().ID.String())
}

func TestGet_Visibility(t *testing.T) {
	svc, _, _ := newTestResourceService(t)
	ctx := context.Background()
	owner := member()
	in := materialInput()
	in.IsAnonymous = true

	res, err := svc.Submit(ctx, owner, in)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, res.Status)

	_, err = svc.Get(ctx, nil, models.ResourceMaterial, res.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, member(), models.ResourceMaterial, res.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Get(ctx, admin(), models.ResourceMaterial, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.Base().ID.String())
}

func TestGet_BadTarget(t *testing.T) {
	svc, _, _ := newTestResourceService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, nil, models.ResourceMaterial, "not-a-uuid")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid resource ID format", verr.Message)

	_, err = svc.Get(ctx, nil, "video", uuid.NewString())
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "Invalid resource type")

	_, err = svc.Get(ctx, nil, models.ResourceSession, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_Ownership(t *testing.T) {
	svc, repo, bus := newTestResourceService(t)
	ctx := context.Background()
	owner := member()

	res, err := svc.Submit(ctx, owner, materialInput())
	require.NoError(t, err)
	drain(bus)

	assert.ErrorIs(t, svc.Delete(ctx, nil, models.ResourceMaterial, res.ID), ErrUnauthorized)
	assert.ErrorIs(t, svc.Delete(ctx, member(), models.ResourceMaterial, res.ID), ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, owner, models.ResourceMaterial, uuid.NewString()), ErrNotFound)

	require.NoError(t, svc.Delete(ctx, owner, models.ResourceMaterial, res.ID))
	_, err = repo.GetByID(ctx, models.ResourceMaterial, uuid.MustParse(res.ID))
	assert.ErrorIs(t, err, ErrNotFound)

	evs := drain(bus)
	require.Len(t, evs, 1)
	assert.Equal(t, models.EventResourceDeleted, evs[0].Type)
}

func TestDelete_AdminMayDeleteAnything(t *testing.T) {
	svc, _, _ := newTestResourceService(t)
	ctx := context.Background()

	res, err := svc.Submit(ctx, member(), materialInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, admin(), models.ResourceMaterial, res.ID))
}

func TestApprove_ExactlyOnce(t *testing.T) {
	svc, repo, bus := newTestResourceService(t)
	ctx := context.Background()
	mod := admin()

	res, err := svc.Submit(ctx, nil, materialInput())
	require.NoError(t, err)
	drain(bus)

	require.NoError(t, svc.Approve(ctx, mod, models.ResourceMaterial, res.ID))

	stored, err := repo.GetByID(ctx, models.ResourceMaterial, uuid.MustParse(res.ID))
	require.NoError(t, err)
	b := stored.Base()
	assert.Equal(t, models.StatusApproved, b.Status)
	require.NotNil(t, b.ApprovedBy)
	assert.Equal(t, mod.ID, *b.ApprovedBy)
	assert.NotNil(t, b.ApprovedAt)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, svc.Approve(ctx, mod, models.ResourceMaterial, res.ID), ErrConflict)
	assert.ErrorIs(t, svc.Reject(ctx, mod, models.ResourceMaterial, res.ID), ErrConflict)

	evs := drain(bus)
	require.Len(t, evs, 1)
	assert.Equal(t, models.EventResourceApproved, evs[0].Type)
}

func TestReject(t *testing.T) {
	svc, repo, bus := newTestResourceService(t)
	ctx := context.Background()

	res, err := svc.Submit(ctx, nil, materialInput())
	require.NoError(t, err)
	drain(bus)

	require.NoError(t, svc.Reject(ctx, admin(), models.ResourceMaterial, res.ID))
	stored, err := repo.GetByID(ctx, models.ResourceMaterial, uuid.MustParse(res.ID))
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, stored.Base().Status)

	evs := drain(bus)
	require.Len(t, evs, 1)
	assert.Equal(t, models.EventResourceRejected, evs[0].Type)
}

func TestDecide_Guards(t *testing.T) {
	svc, _, _ := newTestResourceService(t)
	ctx := context.Background()

	res, err := svc.Submit(ctx, nil, materialInput())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Approve(ctx, nil, models.ResourceMaterial, res.ID), ErrUnauthorized)
	assert.ErrorIs(t, svc.Approve(ctx, member(), models.ResourceMaterial, res.ID), ErrForbidden)
	assert.ErrorIs(t, svc.Approve(ctx, admin(), models.ResourceMaterial, uuid.NewString()), ErrNotFound)
}

func TestPending_OldestFirstAcrossTables(t *testing.T) {
	svc, _, _ := newTestResourceService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, nil, materialInput())
	require.NoError(t, err)

	sess := materialInput()
	sess.ResourceType = models.ResourceSession
	sess.Category = ""
	sess.SessionType = models.SessionRecording
	second, err := svc.Submit(ctx, nil, sess)
	require.NoError(t, err)

	third, err := svc.Submit(ctx, nil, materialInput())
	require.NoError(t, err)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, first.ID, pending[0].Base().ID.String())
	assert.Equal(t, second.ID, pending[1].Base().ID.String())
	assert.Equal(t, models.ResourceSession, pending[1].Type)
	assert.Equal(t, third.ID, pending[2].Base().ID.String())
}

func TestMineAndStats(t *testing.T) {
	svc, _, _ := newTestResourceService(t)
	ctx := context.Background()
	u := member()

	older, err := svc.Submit(ctx, u, materialInput())
	require.NoError(t, err)

	sess := materialInput()
	sess.ResourceType = models.ResourceSession
	sess.Category = ""
	sess.SessionType = models.SessionRecording
	newer, err := svc.Submit(ctx, u, sess)
	require.NoError(t, err)

	// someone else's row must not show up
	_, err = svc.Submit(ctx, member(), materialInput())
	require.NoError(t, err)

	mine, err := svc.Mine(ctx, u)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].Base().ID.String())
	assert.Equal(t, older.ID, mine[1].Base().ID.String())

	st, err := svc.Stats(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, models.ResourceStats{Total: 2, Materials: 1, Sessions: 1, Approved: 2}, *st)

	_, err = svc.Mine(ctx, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Stats(ctx, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
