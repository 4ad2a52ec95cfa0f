package repositories

import (
	"context"
	"time"

	"spooky-styles/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
)

type analyticsRepository struct {
	db DB
}

func NewAnalyticsRepository(db DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) InsertPageView(ctx context.Context, v models.PageView) error {
	_, err := exec(ctx, r.db, psql.Insert("page_views").
		Columns("session_id", "user_id", "path", "referrer", "user_agent").
		Values(v.SessionID, v.UserID, v.Path, v.Referrer, v.UserAgent))
	return err
}

func (r *analyticsRepository) InsertEvent(ctx context.Context, e models.AnalyticsEvent) error {
	data := e.EventData
	if data == nil {
		data = map[string]any{}
	}
	_, err := exec(ctx, r.db, psql.Insert("analytics_events").
		Columns("session_id", "user_id", "event_type", "event_data").
		Values(e.SessionID, e.UserID, e.EventType, data))
	return err
}

func (r *analyticsRepository) InsertError(ctx context.Context, e models.ErrorLog) error {
	severity := e.Severity
	if severity == "" {
		severity = "error"
	}
	_, err := exec(ctx, r.db, psql.Insert("error_logs").
		Columns("session_id", "user_id", "message", "stack", "path", "severity", "user_agent").
		Values(e.SessionID, e.UserID, e.Message, e.Stack, e.Path, severity, e.UserAgent))
	return err
}

func (r *analyticsRepository) Summary(ctx context.Context, since time.Time, topPages int) (*models.AnalyticsSummary, error) {
	s := &models.AnalyticsSummary{
		Since:       since,
		TopPages:    []models.PageCount{},
		EventCounts: map[string]int{},
		ErrorCounts: map[string]int{},
	}

	err := queryRow(ctx, r.db, psql.Select("COUNT(*)", "COUNT(DISTINCT NULLIF(session_id, ''))").
		From("page_views").
		Where(sq.GtOrEq{"created_at": since}),
		&s.PageViews, &s.UniqueSessions)
	if err != nil {
		return nil, err
	}

	query, args, err := psql.Select("path", "COUNT(*) AS views").
		From("page_views").
		Where(sq.GtOrEq{"created_at": since}).
		GroupBy("path").
		OrderBy("views DESC", "path").
		Limit(uint64(topPages)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var pc models.PageCount
		if err := rows.Scan(&pc.Path, &pc.Views); err != nil {
			rows.Close()
			return nil, err
		}
		s.TopPages = append(s.TopPages, pc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, "analytics_events", "event_type", since, s.EventCounts); err != nil {
		return nil, err
	}
	if err := r.groupCount(ctx, "error_logs", "severity", since, s.ErrorCounts); err != nil {
		return nil, err
	}

	var revenue decimal.Decimal
	err = queryRow(ctx, r.db, psql.Select("COUNT(*)", "COALESCE(SUM(total) FILTER (WHERE payment_status = 'paid'), 0)").
		From("orders").
		Where(sq.GtOrEq{"created_at": since}),
		&s.Orders, &revenue)
	if err != nil {
		return nil, err
	}
	s.Revenue = revenue.StringFixed(2)

	return s, nil
}

func (r *analyticsRepository) groupCount(ctx context.Context, table, column string, since time.Time, into map[string]int) error {
	query, args, err := psql.Select(column, "COUNT(*)").
		From(table).
		Where(sq.GtOrEq{"created_at": since}).
		GroupBy(column).
		ToSql()
	if err != nil {
		return err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}
