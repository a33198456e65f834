package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/harshit961695/unipost/internal/cache"
	"github.com/harshit961695/unipost/internal/models"
	"github.com/harshit961695/unipost/internal/repository"
	"github.com/harshit961695/unipost/internal/transfer"
)

// AnalyticsService serves the read-heavy dashboard queries. Both reads
// sit behind the injected memoization store so repeated requests within
// the staleness window do not re-run the aggregate queries.
type AnalyticsService interface {
	LatestSnapshot(ctx context.Context, userID int64) (*transfer.LatestAnalytics, error)
	DashboardStats(ctx context.Context, userID int64) (*transfer.DashboardStats, error)
}

type analyticsService struct {
	cr    repository.ConnectionRepository
	pl    repository.PostLogRepository
	sr    repository.SnapshotRepository
	store *cache.Store
}

func NewAnalyticsService(
	cr repository.ConnectionRepository,
	pl repository.PostLogRepository,
	sr repository.SnapshotRepository,
	store *cache.Store) AnalyticsService {
	return &analyticsService{
		cr:    cr,
		pl:    pl,
		sr:    sr,
		store: store,
	}
}

const snapshotHistoryLimit = 20

func (s *analyticsService) LatestSnapshot(ctx context.Context, userID int64) (*transfer.LatestAnalytics, error) {
	key := fmt.Sprintf("analytics:latest:%d", userID)
	if cached, ok := s.store.Get(key); ok {
		return cached.(*transfer.LatestAnalytics), nil
	}

	conns, err := s.cr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	latest, err := s.sr.GetLatest(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.sr.ListRecent(ctx, userID, snapshotHistoryLimit)
	if err != nil {
		return nil, err
	}
	// ListRecent returns newest first; charts want oldest first.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}

	result := &transfer.LatestAnalytics{
		HasAccounts: len(conns) > 0,
		Latest:      latest,
		History:     history,
	}
	if latest != nil {
		result.LastUpdated = &latest.SnapshotDate
	}

	s.store.Set(key, result)
	return result, nil
}

func (s *analyticsService) DashboardStats(ctx context.Context, userID int64) (*transfer.DashboardStats, error) {
	key := fmt.Sprintf("dashboard:stats:%d", userID)
	if cached, ok := s.store.Get(key); ok {
		return cached.(*transfer.DashboardStats), nil
	}

	conns, err := s.cr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	logs, err := s.pl.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	latest, err := s.sr.GetLatest(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &transfer.DashboardStats{
		HasAccounts:        len(conns) > 0,
		ConnectedPlatforms: []string{},
		PlatformStats:      make(map[string]transfer.PlatformStat),
		LastUpdated:        time.Now().UTC(),
	}

	seen := make(map[string]struct{})
	for _, conn := range conns {
		if _, ok := seen[conn.Platform]; ok {
			continue
		}
		seen[conn.Platform] = struct{}{}
		stats.ConnectedPlatforms = append(stats.ConnectedPlatforms, conn.Platform)
		stats.PlatformStats[conn.Platform] = transfer.PlatformStat{}
	}

	for _, l := range logs {
		ps := stats.PlatformStats[l.Platform]
		if l.Status == models.PublishStatusSuccess {
			ps.Posts++
			stats.Metrics.TotalPosts++
		} else {
			ps.Failures++
		}
		stats.PlatformStats[l.Platform] = ps
	}

	if len(logs) > 5 {
		stats.RecentOutcomes = logs[:5]
	} else {
		stats.RecentOutcomes = logs
	}

	if latest != nil {
		stats.Metrics.TotalReach = latest.TotalReach
		stats.Metrics.TotalImpressions = latest.TotalImpressions
		stats.Metrics.TotalEngagement = latest.TotalEngagement
		if latest.TotalImpressions > 0 {
			rate := float64(latest.TotalEngagement) / float64(latest.TotalImpressions) * 100
			stats.Metrics.EngagementRate = math.Round(rate*10) / 10
		}
	}

	s.store.Set(key, stats)
	return stats, nil
}
