package service

import (
	"context"
	"time"

	"github.com/campuspulse/moodmeter-service/internal/repository"
)

const topReasonsLimit = 10

// Dashboard is the full KPI payload the mentor/admin dashboard renders.
// Every aggregate is computed server-side over the filtered set.
type Dashboard struct {
	SessionsToday     int64                      `json:"sessions_today"`
	SessionsWeek      int64                      `json:"sessions_week"`
	SessionsTotal     int64                      `json:"sessions_total"`
	MedianDurationMin int                        `json:"median_duration_min"`
	MoodDeltaValence  float64                    `json:"mood_delta_valence"`
	MoodDeltaEnergy   float64                    `json:"mood_delta_energy"`
	PairedSessions    int64                      `json:"paired_sessions"`
	ResponseRate      float64                    `json:"response_rate"`
	Daily             []repository.DailyCount    `json:"daily"`
	TopReasons        []repository.ReasonCount   `json:"top_reasons"`
	Quadrants         []repository.QuadrantCount `json:"quadrants"`
}

type KPIService struct {
	kpis repository.KPIRepository
	now  func() time.Time
}

func NewKPIService(kpis repository.KPIRepository, now func() time.Time) *KPIService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &KPIService{kpis: kpis, now: now}
}

func (s *KPIService) Dashboard(ctx context.Context, id repository.Identity, f repository.Filter) (*Dashboard, error) {
	counts, err := s.kpis.Counts(ctx, id, f, s.now())
	if err != nil {
		return nil, err
	}
	median, err := s.kpis.MedianDuration(ctx, id, f)
	if err != nil {
		return nil, err
	}
	deltas, err := s.kpis.MoodDeltas(ctx, id, f)
	if err != nil {
		return nil, err
	}
	rate, err := s.kpis.ResponseRate(ctx, id, f)
	if err != nil {
		return nil, err
	}
	daily, err := s.kpis.DailyCounts(ctx, id, f)
	if err != nil {
		return nil, err
	}
	reasons, err := s.kpis.TopReasons(ctx, id, f, topReasonsLimit)
	if err != nil {
		return nil, err
	}
	quadrants, err := s.kpis.QuadrantDistribution(ctx, id, f)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		SessionsToday:     counts.Today,
		SessionsWeek:      counts.Week,
		SessionsTotal:     counts.Total,
		MedianDurationMin: median,
		MoodDeltaValence:  deltas.Valence,
		MoodDeltaEnergy:   deltas.Energy,
		PairedSessions:    deltas.Paired,
		ResponseRate:      rate,
		Daily:             daily,
		TopReasons:        reasons,
		Quadrants:         quadrants,
	}, nil
}
