package domain

import (
	"context"
	"sync"
	"time"

	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func nopLogger() *logger.ZapLogger {
	return logger.NewZapLogger(zap.NewNop().Sugar())
}

// memResourceRepo keeps both tables in memory, keyed by type then id.
type memResourceRepo struct {
	mu    sync.Mutex
	rows  map[models.ResourceType]map[uuid.UUID]*models.Resource
	clock time.Time
}

func newMemResourceRepo() *memResourceRepo {
	return &memResourceRepo{
		rows: map[models.ResourceType]map[uuid.UUID]*models.Resource{
			models.ResourceMaterial: {},
			models.ResourceSession:  {},
		},
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick hands out strictly increasing created_at values.
func (r *memResourceRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Minute)
	return r.clock
}

func (r *memResourceRepo) InsertMaterial(_ context.Context, m *models.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.CreatedAt = r.tick()
	m.UpdatedAt = m.CreatedAt
	cp := *m
	r.rows[models.ResourceMaterial][m.ID] = &models.Resource{Type: models.ResourceMaterial, Material: &cp}
	return nil
}

func (r *memResourceRepo) InsertSession(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.CreatedAt = r.tick()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	r.rows[models.ResourceSession][s.ID] = &models.Resource{Type: models.ResourceSession, Session: &cp}
	return nil
}

func (r *memResourceRepo) ListApproved(_ context.Context, f models.ResourceFilter) ([]models.Resource, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Resource
	for _, res := range r.rows[f.Type] {
		if res.Base().Status == models.StatusApproved {
			out = append(out, *res)
		}
	}
	return out, len(out), nil
}

func (r *memResourceRepo) GetByID(_ context.Context, t models.ResourceType, id uuid.UUID) (*models.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.rows[t][id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *memResourceRepo) Delete(_ context.Context, t models.ResourceType, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[t][id]; !ok {
		return ErrNotFound
	}
	delete(r.rows[t], id)
	return nil
}

func (r *memResourceRepo) ListPending(_ context.Context, t models.ResourceType) ([]models.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Resource
	for _, res := range r.rows[t] {
		if res.Base().Status == models.StatusPending {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *memResourceRepo) Decide(_ context.Context, t models.ResourceType, id uuid.UUID, status models.ApprovalStatus, by uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.rows[t][id]
	if !ok || res.Base().Status != models.StatusPending {
		return false, nil
	}
	b := res.Base()
	now := r.tick()
	b.Status = status
	b.ApprovedAt = &now
	b.ApprovedBy = &by
	b.UpdatedAt = now
	return true, nil
}

func (r *memResourceRepo) ListByContributor(_ context.Context, t models.ResourceType, userID uuid.UUID) ([]models.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Resource
	for _, res := range r.rows[t] {
		if res.Base().OwnedBy(userID) {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *memResourceRepo) CountByContributor(_ context.Context, t models.ResourceType, userID uuid.UUID) (map[models.ApprovalStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[models.ApprovalStatus]int{}
	for _, res := range r.rows[t] {
		if res.Base().OwnedBy(userID) {
			out[res.Base().Status]++
		}
	}
	return out, nil
}

// stubLookups serves a fixed Lookups value.
type stubLookups struct {
	l   models.Lookups
	err error
}

func (s *stubLookups) Levels(context.Context) ([]models.Level, error)       { return s.l.Levels, s.err }
func (s *stubLookups) Streams(context.Context) ([]models.Stream, error)     { return s.l.Streams, s.err }
func (s *stubLookups) Languages(context.Context) ([]models.Language, error) { return s.l.Languages, s.err }
func (s *stubLookups) Categories(context.Context) ([]models.Category, error) {
	return s.l.Categories, s.err
}
func (s *stubLookups) Subjects(context.Context) ([]models.Subject, error) { return s.l.Subjects, s.err }

func (s *stubLookups) SubjectExists(_ context.Context, code, level string) (bool, error) {
	for _, sub := range s.l.Subjects {
		if sub.Code == code && sub.LevelCode == level {
			return true, nil
		}
	}
	return false, s.err
}

func (s *stubLookups) Upsert(context.Context, *models.Lookups) error { return s.err }

// drain returns every event currently buffered on the bus.
func drain(b *EventBus) []models.ResourceEvent {
	var out []models.ResourceEvent
	for {
		select {
		case ev := <-b.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}
