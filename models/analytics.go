package models

import "time"

type PageView struct {
	SessionID string
	UserID    *int
	Path      string
	Referrer  string
	UserAgent string
}

type AnalyticsEvent struct {
	SessionID string
	UserID    *int
	EventType string
	EventData map[string]any
}

type ErrorLog struct {
	SessionID string
	UserID    *int
	Message   string
	Stack     string
	Path      string
	Severity  string
	UserAgent string
}

type PageCount struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

type AnalyticsSummary struct {
	Since          time.Time      `json:"since"`
	PageViews      int            `json:"page_views"`
	UniqueSessions int            `json:"unique_sessions"`
	TopPages       []PageCount    `json:"top_pages"`
	EventCounts    map[string]int `json:"event_counts"`
	ErrorCounts    map[string]int `json:"error_counts"`
	Orders         int            `json:"orders"`
	Revenue        string         `json:"revenue"`
}
