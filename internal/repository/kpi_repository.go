package repository

import (
	"context"
	"time"

	"github.com/campuspulse/moodmeter-service/internal/authz"
	"github.com/campuspulse/moodmeter-service/internal/domain"
	"github.com/campuspulse/moodmeter-service/internal/observability"

	"gorm.io/gorm"
)

// Filter narrows every KPI query. Nil fields mean "all".
type Filter struct {
	CommunityID *uint
	MentorID    *string
	StartDate   *time.Time
	EndDate     *time.Time
}

type Counts struct {
	Today int64
	Week  int64
	Total int64
}

type MoodDeltas struct {
	Valence float64
	Energy  float64
	// Sessions with both a before and an after event; everything else is
	// excluded from the averages, not counted as zero.
	Paired int64
}

type DailyCount struct {
	Day   string
	Count int64
}

type ReasonCount struct {
	ReasonID    *uint
	ReasonCode  *string
	ReasonLabel *string
	Count       int64
}

type QuadrantCount struct {
	Moment   string
	Quadrant string
	Count    int64
}

type KPIRepository interface {
	Counts(ctx context.Context, id Identity, f Filter, now time.Time) (Counts, error)
	MedianDuration(ctx context.Context, id Identity, f Filter) (int, error)
	MoodDeltas(ctx context.Context, id Identity, f Filter) (MoodDeltas, error)
	ResponseRate(ctx context.Context, id Identity, f Filter) (float64, error)
	DailyCounts(ctx context.Context, id Identity, f Filter) ([]DailyCount, error)
	TopReasons(ctx context.Context, id Identity, f Filter, limit int) ([]ReasonCount, error)
	QuadrantDistribution(ctx context.Context, id Identity, f Filter) ([]QuadrantCount, error)
}

type GormKPIRepository struct{ scope *Scope }

func NewKPIRepository(scope *Scope) KPIRepository {
	return &GormKPIRepository{scope: scope}
}

func applyFilter(q *gorm.DB, f Filter) *gorm.DB {
	if f.CommunityID != nil {
		q = q.Where("sessions.community_id = ?", *f.CommunityID)
	}
	if f.MentorID != nil {
		q = q.Where("sessions.mentor_id = ?", *f.MentorID)
	}
	if f.StartDate != nil {
		q = q.Where("sessions.created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("sessions.created_at < ?", *f.EndDate)
	}
	return q
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (r *GormKPIRepository) Counts(ctx context.Context, id Identity, f Filter, now time.Time) (Counts, error) {
	var out Counts
	today := startOfDay(now)
	weekAgo := today.AddDate(0, 0, -7)
	err := r.scope.Run(ctx, id, authz.ActionDashboardRead, func(tx *gorm.DB) error {
		if err := applyFilter(tx.Model(&domain.Session{}), f).Count(&out.Total).Error; err != nil {
			return err
		}
		if err := applyFilter(tx.Model(&domain.Session{}), f).
			Where("sessions.created_at >= ?", today).Count(&out.Today).Error; err != nil {
			return err
		}
		return applyFilter(tx.Model(&domain.Session{}), f).
			Where("sessions.created_at >= ?", weekAgo).Count(&out.Week).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "kpi", "counts", "error")
		return Counts{}, err
	}
	observability.RecordRepositoryOperation(ctx, "kpi", "counts", "success")
	return out, nil
}

// MedianDuration computes the median server-side with a count plus an
// ordered OFFSET read, which works identically on postgres and sqlite.
func (r *GormKPIRepository) MedianDuration(ctx context.Context, id Identity, f Filter) (int, error) {
	var median int
	err := r.scope.Run(ctx, id, authz.ActionDashboardRead, func(tx *gorm.DB) error {
		var total int64
		if err := applyFilter(tx.Model(&domain.Session{}), f).Count(&total).Error; err != nil {
			return err
		}
		if total == 0 {
			median = 0
			return nil
		}
		take := 1
		if total%2 == 0 {
			take = 2
		}
		var middle []int
		err := applyFilter(tx.Model(&domain.Session{}), f).
			Order("duration_min ASC").
			Offset(int((total - 1) / 2)).
			Limit(take).
			Pluck("duration_min", &middle).Error
		if err != nil {
			return err
		}
		sum := 0
		for _, v := range middle {
			sum += v
		}
		median = (sum + len(middle)/2) / len(middle)
		return nil
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "kpi", "median_duration", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "kpi", "median_duration", "success")
	return median, nil
}

func (r *GormKPIRepository) MoodDeltas(ctx context.Context, id Identity, f Filter) (MoodDeltas, error) {
	var out MoodDeltas
	err := r.scope.Run(ctx, id, authz.ActionDashboardRead, func(tx *gorm.DB) error {
		row := struct {
			Valence *float64
			Energy  *float64
			Paired  int64
		}{}
		// Inner joins exclude sessions lacking either moment.
		err := applyFilter(tx.Model(&domain.Session{}), f).
			Select("AVG(after_ev.valence - before_ev.valence) AS valence, AVG(after_ev.energy - before_ev.energy) AS energy, COUNT(*) AS paired").
			Joins("JOIN mood_events before_ev ON before_ev.session_id = sessions.id AND before_ev.moment = ?", domain.MomentBefore).
			Joins("JOIN mood_events after_ev ON after_ev.session_id = sessions.id AND after_ev.moment = ?", domain.MomentAfter).
			Scan(&row).Error
		if err != nil {
			return err
		}
		out.Paired = row.Paired
		if row.Valence != nil {
			out.Valence = *row.Valence
		}
		if row.Energy != nil {
			out.Energy = *row.Energy
		}
		return nil
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "kpi", "mood_deltas", "error")
		return MoodDeltas{}, err
	}
	observability.RecordRepositoryOperation(ctx, "kpi", "mood_deltas", "success")
	return out, nil
}

func (r *GormKPIRepository) ResponseRate(ctx context.Context, id Identity, f Filter) (float64, error) {
	var rate float64
	err := r.scope.Run(ctx, id, authz.ActionDashboardRead, func(tx *gorm.DB) error {
		var total, completed int64
		if err := applyFilter(tx.Model(&domain.Session{}), f).Count(&total).Error; err != nil {
			return err
		}
		if total == 0 {
			rate = 0
			return nil
		}
		if err := applyFilter(tx.Model(&domain.Session{}), f).
			Where("sessions.followup_completed_at IS NOT NULL").Count(&completed).Error; err != nil {
			return err
		}
		rate = float64(completed) / float64(total)
		return nil
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "kpi", "response_rate", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "kpi", "response_rate", "success")
	return rate, nil
}

func (r *GormKPIRepository) DailyCounts(ctx context.Context, id Identity, f Filter) ([]DailyCount, error) {
	var out []DailyCount
	err := r.scope.Run(ctx, id, authz.ActionDashboardRead, func(tx *gorm.DB) error {
		return applyFilter(tx.Model(&domain.Session{}), f).
			Select("DATE(sessions.created_at) AS day, COUNT(*) AS count").
			Group("DATE(sessions.created_at)").
			Order("day ASC").
			Scan(&out).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "kpi", "daily_counts", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "kpi", "daily_counts", "success")
	return out, nil
}

func (r *GormKPIRepository) TopReasons(ctx context.Context, id Identity, f Filter, limit int) ([]ReasonCount, error) {
	var out []ReasonCount
	err := r.scope.Run(ctx, id, authz.ActionDashboardRead, func(tx *gorm.DB) error {
		return applyFilter(tx.Model(&domain.Session{}), f).
			Select("sessions.reason_id AS reason_id, reasons.code AS reason_code, reasons.label AS reason_label, COUNT(*) AS count").
			Joins("LEFT JOIN reasons ON reasons.id = sessions.reason_id").
			Group("sessions.reason_id, reasons.code, reasons.label").
			Order("count DESC").
			Limit(limit).
			Scan(&out).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "kpi", "top_reasons", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "kpi", "top_reasons", "success")
	return out, nil
}

func (r *GormKPIRepository) QuadrantDistribution(ctx context.Context, id Identity, f Filter) ([]QuadrantCount, error) {
	var out []QuadrantCount
	err := r.scope.Run(ctx, id, authz.ActionDashboardRead, func(tx *gorm.DB) error {
		// Events without a quadrant group as "unknown" rather than vanishing.
		return applyFilter(tx.Model(&domain.MoodEvent{}), f).
			Select("mood_events.moment AS moment, COALESCE(mood_events.quadrant, 'unknown') AS quadrant, COUNT(*) AS count").
			Joins("JOIN sessions ON sessions.id = mood_events.session_id").
			Group("mood_events.moment, COALESCE(mood_events.quadrant, 'unknown')").
			Order("moment, quadrant").
			Scan(&out).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "kpi", "quadrant_distribution", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "kpi", "quadrant_distribution", "success")
	return out, nil
}
