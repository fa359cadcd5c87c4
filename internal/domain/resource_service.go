package domain

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/Vovarama1992/edushare/internal/metrics"
	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/Vovarama1992/edushare/internal/ports"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

type ResourceService struct {
	repo    ports.ResourceRepository
	lookups ports.LookupRepository
	bus     *EventBus
	log     *logger.ZapLogger
	now     func() time.Time
}

func NewResourceService(
	repo ports.ResourceRepository,
	lookups ports.LookupRepository,
	bus *EventBus,
	log *logger.ZapLogger,
) *ResourceService {
	return &ResourceService{
		repo:    repo,
		lookups: lookups,
		bus:     bus,
		log:     log,
		now:     time.Now,
	}
}

// DeriveStatus: only a signed-in, non-anonymous contributor skips review.
func DeriveStatus(user *models.User, anonymous bool) models.ApprovalStatus {
	if user != nil && !anonymous {
		return models.StatusApproved
	}
	return models.StatusPending
}

func (s *ResourceService) Submit(ctx context.Context, user *models.User, in models.ResourceInput) (*ports.SubmitResult, error) {
	if err := ValidateResource(&in, s.now()); err != nil {
		return nil, err
	}
	SanitizeResource(&in)

	// soft check, lookups may lag behind the form
	ok, err := s.lookups.SubjectExists(ctx, in.Subject, in.Level)
	if err != nil || !ok {
		s.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "subject not found for level",
			Fields:  map[string]any{"subject": in.Subject, "level": in.Level},
			Error:   err,
		})
	}

	base := models.ResourceBase{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		URL:         in.URL,
		Level:       in.Level,
		Stream:      in.Stream,
		Subject:     in.Subject,
		Language:    in.Language,
		IsAnonymous: in.IsAnonymous || user == nil,
		Status:      DeriveStatus(user, in.IsAnonymous),
	}
	if user != nil && !in.IsAnonymous {
		id := user.ID
		name := user.DisplayName()
		base.ContributorID = &id
		base.ContributorName = &name
	}

	switch in.ResourceType {
	case models.ResourceMaterial:
		err = s.repo.InsertMaterial(ctx, &models.Material{ResourceBase: base, Category: in.Category})
	case models.ResourceSession:
		sess := &models.Session{ResourceBase: base, SessionType: in.SessionType}
		if in.SessionType == models.SessionLive {
			sess.SessionDate = nonEmpty(in.SessionDate)
			sess.StartTime = nonEmpty(in.StartTime)
			sess.EndTime = nonEmpty(in.EndTime)
		}
		err = s.repo.InsertSession(ctx, sess)
	}
	if err != nil {
		return nil, err
	}

	metrics.Submissions.WithLabelValues(string(in.ResourceType), string(base.Status)).Inc()
	s.bus.Emit(models.ResourceEvent{
		Type:         models.EventResourceSubmitted,
		ResourceType: in.ResourceType,
		ID:           base.ID.String(),
		Title:        base.Title,
		Status:       string(base.Status),
	})

	return &ports.SubmitResult{ID: base.ID.String(), Status: base.Status}, nil
}

func nonEmpty(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}

// NormalizeFilter clamps paging to [1, MaxPageSize] and keeps Offset within int32.
func NormalizeFilter(f models.ResourceFilter) models.ResourceFilter {
	if f.Type != models.ResourceSession {
		f.Type = models.ResourceMaterial
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if maxPage := math.MaxInt32 / f.Limit; f.Page > maxPage {
		f.Page = maxPage
	}
	return f
}

func (s *ResourceService) List(ctx context.Context, f models.ResourceFilter) ([]models.Resource, int, error) {
	return s.repo.ListApproved(ctx, NormalizeFilter(f))
}

func parseTarget(t models.ResourceType, id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, invalid("Invalid resource ID format")
	}
	if !t.Valid() {
		return uuid.Nil, invalid(`Invalid resource type. Must be "material" or "session"`)
	}
	return uid, nil
}

// Get returns approved rows to everyone, other rows only to the owner or an admin.
func (s *ResourceService) Get(ctx context.Context, user *models.User, t models.ResourceType, id string) (*models.Resource, error) {
	uid, err := parseTarget(t, id)
	if err != nil {
		return nil, err
	}
	res, err := s.repo.GetByID(ctx, t, uid)
	if err != nil {
		return nil, err
	}
	b := res.Base()
	if b.Status != models.StatusApproved && !canManage(user, b) {
		return nil, ErrNotFound
	}
	return res, nil
}

func canManage(user *models.User, b *models.ResourceBase) bool {
	return user != nil && (user.IsAdmin || b.OwnedBy(user.ID))
}

func (s *ResourceService) Delete(ctx context.Context, user *models.User, t models.ResourceType, id string) error {
	if user == nil {
		return ErrUnauthorized
	}
	uid, err := parseTarget(t, id)
	if err != nil {
		return err
	}
	res, err := s.repo.GetByID(ctx, t, uid)
	if err != nil {
		return err
	}
	if !canManage(user, res.Base()) {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, t, uid); err != nil {
		return err
	}

	s.bus.Emit(models.ResourceEvent{
		Type:         models.EventResourceDeleted,
		ResourceType: t,
		ID:           uid.String(),
		Title:        res.Base().Title,
		Status:       string(res.Base().Status),
	})
	return nil
}

// Mine lists the caller's materials and sessions in every status, newest first.
func (s *ResourceService) Mine(ctx context.Context, user *models.User) ([]models.Resource, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	var mats, sess []models.Resource
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		mats, err = s.repo.ListByContributor(gctx, models.ResourceMaterial, user.ID)
		return err
	})
	g.Go(func() (err error) {
		sess, err = s.repo.ListByContributor(gctx, models.ResourceSession, user.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := append(mats, sess...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Base().CreatedAt.After(out[j].Base().CreatedAt)
	})
	return out, nil
}

func (s *ResourceService) Stats(ctx context.Context, user *models.User) (*models.ResourceStats, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	st := &models.ResourceStats{}
	for _, t := range []models.ResourceType{models.ResourceMaterial, models.ResourceSession} {
		counts, err := s.repo.CountByContributor(ctx, t, user.ID)
		if err != nil {
			return nil, err
		}
		n := 0
		for _, c := range counts {
			n += c
		}
		if t == models.ResourceMaterial {
			st.Materials = n
		} else {
			st.Sessions = n
		}
		st.Total += n
		st.Pending += counts[models.StatusPending]
		st.Approved += counts[models.StatusApproved]
	}
	return st, nil
}

// Pending is the moderation queue: both tables merged, oldest first.
func (s *ResourceService) Pending(ctx context.Context) ([]models.Resource, error) {
	var mats, sess []models.Resource
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		mats, err = s.repo.ListPending(gctx, models.ResourceMaterial)
		return err
	})
	g.Go(func() (err error) {
		sess, err = s.repo.ListPending(gctx, models.ResourceSession)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := append(mats, sess...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Base().CreatedAt.Before(out[j].Base().CreatedAt)
	})
	return out, nil
}

func (s *ResourceService) Approve(ctx context.Context, admin *models.User, t models.ResourceType, id string) error {
	return s.decide(ctx, admin, t, id, models.StatusApproved)
}

func (s *ResourceService) Reject(ctx context.Context, admin *models.User, t models.ResourceType, id string) error {
	return s.decide(ctx, admin, t, id, models.StatusRejected)
}

func (s *ResourceService) decide(ctx context.Context, admin *models.User, t models.ResourceType, id string, to models.ApprovalStatus) error {
	if admin == nil {
		return ErrUnauthorized
	}
	if !admin.IsAdmin {
		return ErrForbidden
	}
	uid, err := parseTarget(t, id)
	if err != nil {
		return err
	}

	changed, err := s.repo.Decide(ctx, t, uid, to, admin.ID)
	if err != nil {
		return err
	}
	if !changed {
		// either gone or already decided
		if _, err := s.repo.GetByID(ctx, t, uid); err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		return ErrConflict
	}

	evType := models.EventResourceApproved
	if to == models.StatusRejected {
		evType = models.EventResourceRejected
	}
	metrics.Moderation.WithLabelValues(string(to)).Inc()
	s.bus.Emit(models.ResourceEvent{
		Type:         evType,
		ResourceType: t,
		ID:           uid.String(),
		Status:       string(to),
	})
	return nil
}
