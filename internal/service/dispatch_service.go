package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/campuspulse/moodmeter-service/internal/config"
	"github.com/campuspulse/moodmeter-service/internal/domain"
	"github.com/campuspulse/moodmeter-service/internal/mail"
	"github.com/campuspulse/moodmeter-service/internal/observability"
	"github.com/campuspulse/moodmeter-service/internal/repository"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	brandingCacheNamespace = "branding"
	brandingCacheTTL       = 10 * time.Minute
)

type WindowCount struct {
	Window    string `json:"window"`
	Attempted int64  `json:"attempted"`
	Sent      int64  `json:"sent"`
	Failed    int64  `json:"failed"`
}

type DispatchReport struct {
	Attempted int64         `json:"attempted"`
	Sent      int64         `json:"sent"`
	Failed    int64         `json:"failed"`
	Windows   []WindowCount `json:"windows"`
}

// windowTally accumulates per-window outcomes across the fan-out.
type windowTally struct {
	attempted atomic.Int64
	sent      atomic.Int64
	failed    atomic.Int64
}

// DispatchService sends follow-up reminders for sessions sitting inside the
// scan windows. Deliveries fan out concurrently and settle independently: a
// failed send is counted and logged, never propagated, and only a successful
// send marks the session. A session that ages past every window unsent is
// permanently missed; there is no retry queue.
type DispatchService struct {
	cfg      *config.Config
	sessions repository.SessionRepository
	catalogs repository.CatalogRepository
	cache    ValueCacheStore
	sender   mail.Sender
	renderer *mail.Renderer
	logger   *slog.Logger
}

func NewDispatchService(
	cfg *config.Config,
	sessions repository.SessionRepository,
	catalogs repository.CatalogRepository,
	cache ValueCacheStore,
	sender mail.Sender,
	renderer *mail.Renderer,
	logger *slog.Logger,
) *DispatchService {
	if cache == nil {
		cache = NewNoopValueCacheStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DispatchService{
		cfg:      cfg,
		sessions: sessions,
		catalogs: catalogs,
		cache:    cache,
		sender:   sender,
		renderer: renderer,
		logger:   logger,
	}
}

func (s *DispatchService) windows() []repository.Window {
	ws := []repository.Window{repository.DefaultWindow}
	if s.cfg.DispatchInclude72h {
		ws = append(ws, repository.SecondWindow)
	}
	return ws
}

// Run executes one dispatch pass at now. The caller identity must carry the
// dispatch:run capability.
func (s *DispatchService) Run(ctx context.Context, id repository.Identity, now time.Time) (*DispatchReport, error) {
	windows := s.windows()
	due, err := s.sessions.DueForReminder(ctx, id, windows, s.cfg.DispatchBatchLimit, now)
	if err != nil {
		return nil, err
	}

	tallies := make(map[string]*windowTally, len(windows))
	for _, w := range windows {
		tallies[w.Name] = &windowTally{}
	}
	for i := range due {
		tallies[windowFor(&due[i], windows, now)].attempted.Add(1)
	}

	limit := s.cfg.DispatchSendLimit
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range due {
		session := due[i]
		g.Go(func() error {
			window := windowFor(&session, windows, now)
			tally := tallies[window]
			if err := s.sendOne(gctx, id, &session, now); err != nil {
				tally.failed.Add(1)
				observability.RecordDispatchSend(window, "failure")
				s.logger.Error("reminder delivery failed",
					"session_id", session.ID,
					"window", window,
					"error", err,
				)
				return nil
			}
			tally.sent.Add(1)
			observability.RecordDispatchSend(window, "success")
			return nil
		})
	}
	// Workers swallow their own errors, so this only waits.
	_ = g.Wait()

	report := &DispatchReport{Windows: make([]WindowCount, 0, len(windows))}
	for _, w := range windows {
		tally := tallies[w.Name]
		wc := WindowCount{
			Window:    w.Name,
			Attempted: tally.attempted.Load(),
			Sent:      tally.sent.Load(),
			Failed:    tally.failed.Load(),
		}
		report.Windows = append(report.Windows, wc)
		report.Attempted += wc.Attempted
		report.Sent += wc.Sent
		report.Failed += wc.Failed
	}
	s.logger.Info("dispatch run finished",
		"attempted", report.Attempted,
		"sent", report.Sent,
		"failed", report.Failed,
	)
	return report, nil
}

func (s *DispatchService) sendOne(ctx context.Context, id repository.Identity, session *domain.Session, now time.Time) error {
	if session.Email == nil || session.FollowupToken == nil {
		return errors.New("session missing contact or token")
	}
	variant := s.cfg.FollowupVariant
	if session.FollowupVariant != nil {
		variant = *session.FollowupVariant
	}
	subject, html, err := s.renderer.Reminder(mail.ReminderData{
		Token:   *session.FollowupToken,
		Variant: variant,
		Color:   s.communityColor(ctx, id, session.CommunityID),
	})
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, mail.Message{To: *session.Email, Subject: subject, HTML: html}); err != nil {
		return err
	}
	marked, err := s.sessions.MarkReminderSent(ctx, id, session.ID, now)
	if err != nil {
		return err
	}
	if !marked {
		// Another run got here first; the mail went out twice but the row
		// stays consistent.
		s.logger.Warn("reminder already marked sent", "session_id", session.ID)
	}
	return nil
}

// communityColor is best-effort branding: cache first, catalog second,
// default last. Lookup failures degrade to the default color.
func (s *DispatchService) communityColor(ctx context.Context, id repository.Identity, communityID uint) string {
	key := strconv.FormatUint(uint64(communityID), 10)
	if color, ok, err := s.cache.Get(ctx, brandingCacheNamespace, key); err != nil {
		s.logger.Warn("branding cache read failed", "error", err)
	} else if ok {
		return color
	}
	color, err := s.catalogs.CommunityColor(ctx, id, communityID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("community color lookup failed", "community_id", communityID, "error", err)
		}
		return mail.DefaultAccentColor
	}
	if err := s.cache.Set(ctx, brandingCacheNamespace, key, color, brandingCacheTTL); err != nil {
		s.logger.Warn("branding cache write failed", "error", err)
	}
	return color
}

func windowFor(session *domain.Session, windows []repository.Window, now time.Time) string {
	age := now.Sub(session.CreatedAt)
	for _, w := range windows {
		if age <= w.From && age >= w.To {
			return w.Name
		}
	}
	return windows[0].Name
}
