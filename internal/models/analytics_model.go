package models

import "time"

// MetricSample holds normalized per-post counters fetched from one
// platform during an aggregation run. Samples are summed in memory and
// never persisted individually.
type MetricSample struct {
	Impressions int64 `json:"impressions"`
	Reach       int64 `json:"reach"`
	Engagement  int64 `json:"engagement"`
	Views       int64 `json:"views"`
	Likes       int64 `json:"likes"`
	Comments    int64 `json:"comments"`
}

func (m *MetricSample) Add(o *MetricSample) {
	if o == nil {
		return
	}
	m.Impressions += o.Impressions
	m.Reach += o.Reach
	m.Engagement += o.Engagement
	m.Views += o.Views
	m.Likes += o.Likes
	m.Comments += o.Comments
}

// AnalyticsSnapshot is one immutable aggregate row per user per run.
// The dashboard charts read the sequence of these as a time series, so
// the column names are a stable contract.
type AnalyticsSnapshot struct {
	ID               int64     `db:"id" json:"id"`
	UserID           int64     `db:"user_id" json:"user_id"`
	TotalReach       int64     `db:"total_reach" json:"total_reach"`
	TotalImpressions int64     `db:"total_impressions" json:"total_impressions"`
	TotalEngagement  int64     `db:"total_engagement" json:"total_engagement"`
	TotalViews       int64     `db:"total_views" json:"total_views"`
	TotalLikes       int64     `db:"total_likes" json:"total_likes"`
	TotalComments    int64     `db:"total_comments" json:"total_comments"`
	SnapshotDate     time.Time `db:"snapshot_date" json:"snapshot_date"`
}
