package services

import (
	"context"
	"time"

	"spooky-styles/models"
	"spooky-styles/repositories"
	"spooky-styles/utils"
)

const (
	DefaultSummaryDays = 30
	maxSummaryDays     = 365
	summaryTopPages    = 10
	maxUserAgentLength = 500
)

type AnalyticsService struct {
	repo repositories.AnalyticsRepository
	now  func() time.Time
}

func NewAnalyticsService(repo repositories.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo, now: time.Now}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (s *AnalyticsService) TrackPageView(ctx context.Context, view models.PageView) error {
	view.UserAgent = truncate(view.UserAgent, maxUserAgentLength)
	if err := s.repo.InsertPageView(ctx, view); err != nil {
		return utils.Internal("Failed to record page view", err)
	}
	return nil
}

func (s *AnalyticsService) TrackEvent(ctx context.Context, event models.AnalyticsEvent) error {
	if err := s.repo.InsertEvent(ctx, event); err != nil {
		return utils.Internal("Failed to record event", err)
	}
	return nil
}

func (s *AnalyticsService) LogError(ctx context.Context, entry models.ErrorLog) error {
	entry.UserAgent = truncate(entry.UserAgent, maxUserAgentLength)
	if entry.Severity == "" {
		entry.Severity = "error"
	}
	if err := s.repo.InsertError(ctx, entry); err != nil {
		return utils.Internal("Failed to record error", err)
	}
	return nil
}

// Summary aggregates the last days days of traffic, errors and orders.
func (s *AnalyticsService) Summary(ctx context.Context, days int) (*models.AnalyticsSummary, error) {
	if days < 1 || days > maxSummaryDays {
		return nil, utils.BadRequest("days must be between 1 and 365")
	}

	since := s.now().UTC().AddDate(0, 0, -days)
	summary, err := s.repo.Summary(ctx, since, summaryTopPages)
	if err != nil {
		return nil, utils.Internal("Failed to build analytics summary", err)
	}
	return summary, nil
}
