package job

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"sort"
	"sync"

	config "github.com/harshit961695/unipost/configs"
	"github.com/harshit961695/unipost/internal/models"
	"github.com/harshit961695/unipost/internal/platform"
	"github.com/harshit961695/unipost/internal/repository"
	"github.com/harshit961695/unipost/internal/transfer"
	"github.com/harshit961695/unipost/pkg/utils"
)

// AnalyticsJob runs one full aggregation pass: for every user with
// connected accounts, fetch per-post metrics across platforms, sum
// them, and append one snapshot per user. Users fail independently of
// each other, and a single post's metrics endpoint being down only
// zeroes that post's contribution.
type AnalyticsJob struct {
	cfg      config.Config
	cr       repository.ConnectionRepository
	pl       repository.PostLogRepository
	sr       repository.SnapshotRepository
	adapters platform.Registry
}

func NewAnalyticsJob(
	cfg config.Config,
	cr repository.ConnectionRepository,
	pl repository.PostLogRepository,
	sr repository.SnapshotRepository,
	adapters platform.Registry) *AnalyticsJob {
	return &AnalyticsJob{
		cfg:      cfg,
		cr:       cr,
		pl:       pl,
		sr:       sr,
		adapters: adapters,
	}
}

// Run is the cron entry point.
func (j *AnalyticsJob) Run() {
	if _, err := j.Aggregate(context.Background()); err != nil {
		slog.Error("analytics aggregation failed", "error", err.Error())
	}
}

func (j *AnalyticsJob) Aggregate(ctx context.Context) (*transfer.AggregationSummary, error) {
	conns, err := j.cr.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	userConns := make(map[int64][]*models.Connection)
	for _, conn := range conns {
		userConns[conn.UserID] = append(userConns[conn.UserID], conn)
	}

	summary := &transfer.AggregationSummary{PlatformsChecked: []string{}}
	if len(userConns) == 0 {
		log.Println("No connected accounts found, nothing to aggregate")
		return summary, nil
	}

	userIDs := make([]int64, 0, len(userConns))
	for userID := range userConns {
		userIDs = append(userIDs, userID)
	}

	logs, err := j.pl.ListSuccessful(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	userLogs := make(map[int64][]*models.PostLog)
	for _, l := range logs {
		userLogs[l.UserID] = append(userLogs[l.UserID], l)
	}

	platformsChecked := make(map[string]struct{})
	for userID, userPostLogs := range userLogs {
		if len(userPostLogs) == 0 {
			continue
		}
		for _, conn := range userConns[userID] {
			platformsChecked[conn.Platform] = struct{}{}
		}
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5)

	processed := 0
	for userID := range userConns {
		// Users with no externally-confirmed posts produce no snapshot.
		if len(userLogs[userID]) == 0 {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(userID int64) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := j.aggregateUser(ctx, userID, userConns[userID], userLogs[userID]); err != nil {
				log.Printf("Failed processing user %d: %v", userID, err)
				return
			}
			mu.Lock()
			processed++
			mu.Unlock()
		}(userID)
	}

	wg.Wait()

	summary.ProcessedUsers = processed
	for p := range platformsChecked {
		summary.PlatformsChecked = append(summary.PlatformsChecked, p)
	}
	sort.Strings(summary.PlatformsChecked)

	log.Printf("Analytics aggregation complete. Processed %d users.", processed)
	return summary, nil
}

// aggregateUser fans metric fetches out across the user's (post,
// platform) pairs, sums them, and inserts the snapshot. A non-nil
// error means no snapshot landed for this user.
func (j *AnalyticsJob) aggregateUser(ctx context.Context, userID int64, conns []*models.Connection, logs []*models.PostLog) error {
	connByPlatform := make(map[string]*models.Connection, len(conns))
	for _, conn := range conns {
		token, err := utils.Decrypt(conn.AccessToken, []byte(j.cfg.SecretKey))
		if err != nil {
			log.Printf("Unable to decrypt %s credentials for user %d: %v", conn.Platform, userID, err)
			continue
		}
		c := *conn
		c.AccessToken = token
		connByPlatform[conn.Platform] = &c
	}

	total := &models.MetricSample{}

	var mu sync.Mutex
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 10)

	for _, postLog := range logs {
		adapter, ok := j.adapters.Get(postLog.Platform)
		if !ok {
			continue
		}
		conn := connByPlatform[postLog.Platform]
		if conn == nil || postLog.PlatformPostID == "" {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(adapter platform.Adapter, conn *models.Connection, postID string, platformName string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			sample, err := adapter.FetchMetrics(ctx, conn, postID)
			if err != nil {
				// Zero contribution; the user's snapshot still lands.
				log.Printf("Error fetching analytics for user %d, %s post %s: %v", userID, platformName, postID, err)
				return
			}

			mu.Lock()
			total.Add(sample)
			mu.Unlock()
		}(adapter, conn, postLog.PlatformPostID, postLog.Platform)
	}

	wg.Wait()

	snapshot := models.AnalyticsSnapshot{
		UserID:           userID,
		TotalReach:       total.Reach,
		TotalImpressions: total.Impressions,
		TotalEngagement:  total.Engagement,
		TotalViews:       total.Views,
		TotalLikes:       total.Likes,
		TotalComments:    total.Comments,
	}
	if _, err := j.sr.Create(ctx, &snapshot); err != nil {
		return fmt.Errorf("snapshot insert: %w", err)
	}

	return nil
}
