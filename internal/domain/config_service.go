package domain

import (
	"context"

	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/Vovarama1992/edushare/internal/ports"
	"golang.org/x/sync/errgroup"
)

// generalStream is the internal O/L stream, hidden from the level→streams filter.
const generalStream = "General"

type configService struct {
	lookups ports.LookupRepository
}

func NewConfigService(lookups ports.LookupRepository) ports.ConfigService {
	return &configService{lookups: lookups}
}

func (s *configService) Build(ctx context.Context) (*models.AppConfig, error) {
	var l models.Lookups

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { l.Levels, err = s.lookups.Levels(gctx); return })
	g.Go(func() (err error) { l.Streams, err = s.lookups.Streams(gctx); return })
	g.Go(func() (err error) { l.Languages, err = s.lookups.Languages(gctx); return })
	g.Go(func() (err error) { l.Categories, err = s.lookups.Categories(gctx); return })
	g.Go(func() (err error) { l.Subjects, err = s.lookups.Subjects(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return AggregateConfig(&l), nil
}

// AggregateConfig reshapes lookup rows into the maps the forms filter on.
// Input slices must already be in display order; output keeps that order.
func AggregateConfig(l *models.Lookups) *models.AppConfig {
	cfg := &models.AppConfig{
		Levels:             make([]string, 0, len(l.Levels)),
		Streams:            make(map[string][]string, len(l.Levels)),
		Languages:          make([]string, 0, len(l.Languages)),
		MaterialCategories: make([]string, 0, len(l.Categories)),
		Subjects:           make(map[string][]string, len(l.Streams)),
		SubjectsByLevel:    make(map[string][]string, len(l.Levels)),
		SubjectStreams:     make(map[string]map[string][]string, len(l.Levels)),
		SessionTypes:       []models.SessionType{models.SessionLive, models.SessionRecording},
	}

	for _, lv := range l.Levels {
		cfg.Levels = append(cfg.Levels, lv.Code)

		streams := []string{}
		for _, st := range l.Streams {
			if st.LevelCode == lv.Code && st.Code != generalStream {
				streams = append(streams, st.Code)
			}
		}
		cfg.Streams[lv.Code] = streams

		bySubject := map[string][]string{}
		var subjects []string
		for _, sub := range l.Subjects {
			if sub.LevelCode != lv.Code {
				continue
			}
			subjects = appendUnique(subjects, sub.Code)
			bySubject[sub.Code] = appendUnique(bySubject[sub.Code], sub.StreamCode)
		}
		if subjects == nil {
			subjects = []string{}
		}
		cfg.SubjectsByLevel[lv.Code] = subjects
		cfg.SubjectStreams[lv.Code] = bySubject
	}

	for _, st := range l.Streams {
		subjects := cfg.Subjects[st.Code]
		if subjects == nil {
			subjects = []string{}
		}
		for _, sub := range l.Subjects {
			if sub.StreamCode == st.Code {
				subjects = appendUnique(subjects, sub.Code)
			}
		}
		cfg.Subjects[st.Code] = subjects
	}

	for _, lang := range l.Languages {
		cfg.Languages = append(cfg.Languages, lang.Code)
	}
	for _, c := range l.Categories {
		cfg.MaterialCategories = append(cfg.MaterialCategories, c.Code)
	}
	return cfg
}

func appendUnique(xs []string, v string) []string {
	for _, x := range xs {
		if x == v {
			return xs
		}
	}
	return append(xs, v)
}
