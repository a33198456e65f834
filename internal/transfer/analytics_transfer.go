package transfer

import (
	"time"

	"github.com/harshit961695/unipost/internal/models"
)

// AggregationSummary is returned by one full aggregation pass.
type AggregationSummary struct {
	ProcessedUsers   int      `json:"processed_users"`
	PlatformsChecked []string `json:"platforms_checked"`
}

// LatestAnalytics is the payload of the latest-snapshot read endpoint.
type LatestAnalytics struct {
	HasAccounts bool                        `json:"hasAccounts"`
	Latest      *models.AnalyticsSnapshot   `json:"latest"`
	LastUpdated *time.Time                  `json:"lastUpdated"`
	History     []*models.AnalyticsSnapshot `json:"history"`
}

type DashboardMetrics struct {
	TotalPosts       int64   `json:"totalPosts"`
	TotalReach       int64   `json:"totalReach"`
	TotalImpressions int64   `json:"totalImpressions"`
	TotalEngagement  int64   `json:"totalEngagement"`
	EngagementRate   float64 `json:"engagementRate"`
}

type PlatformStat struct {
	Posts    int64 `json:"posts"`
	Failures int64 `json:"failures"`
}

type DashboardStats struct {
	HasAccounts        bool                    `json:"hasAccounts"`
	ConnectedPlatforms []string                `json:"connectedPlatforms"`
	Metrics            DashboardMetrics        `json:"metrics"`
	PlatformStats      map[string]PlatformStat `json:"platformStats"`
	RecentOutcomes     []*models.PostLog       `json:"recentOutcomes"`
	LastUpdated        time.Time               `json:"lastUpdated"`
}

// AccountInfo is the credential-free view of a connection.
type AccountInfo struct {
	ID          int64  `json:"id"`
	Platform    string `json:"platform"`
	AccountName string `json:"account_name"`
}
