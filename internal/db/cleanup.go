package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultCleanupSchedule = "@hourly"
	DefaultTokenRetention  = 7 * 24 * time.Hour
)

// CleanupService clears verification tokens that have been expired for
// longer than the retention period. Tokens inside the retention period are
// kept so that verifying them still reports an expired token.
type CleanupService struct {
	users     *UserRepository
	schedule  string
	retention time.Duration
}

func NewCleanupService(users *UserRepository, retention time.Duration) *CleanupService {
	if retention <= 0 {
		retention = DefaultTokenRetention
	}
	return &CleanupService{
		users:     users,
		schedule:  DefaultCleanupSchedule,
		retention: retention,
	}
}

func (s *CleanupService) Start(ctx context.Context) {
	slog.Info("starting token cleanup service", "component", "cleanup", "schedule", s.schedule, "retention", s.retention)

	s.runCleanup(ctx)

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.runCleanup(ctx) }); err != nil {
		slog.Error("invalid cleanup schedule", "component", "cleanup", "schedule", s.schedule, "error", err)
		return
	}
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("stopping token cleanup service", "component", "cleanup")
}

func (s *CleanupService) runCleanup(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)
	purged, err := s.users.PurgeVerificationTokens(ctx, cutoff)
	if err != nil {
		slog.Error("error purging verification tokens", "component", "cleanup", "error", err)
		return
	}
	if purged > 0 {
		slog.Info("purged expired verification tokens", "component", "cleanup", "count", purged)
	}
}
