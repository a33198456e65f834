package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"sync"

	config "github.com/harshit961695/unipost/configs"
	"github.com/harshit961695/unipost/internal/models"
	"github.com/harshit961695/unipost/internal/platform"
	"github.com/harshit961695/unipost/internal/repository"
	"github.com/harshit961695/unipost/internal/transfer"
	"github.com/harshit961695/unipost/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// PublishService fans one logical post out to every enabled platform.
// Jobs run concurrently and settle independently: a failing platform
// never cancels or blocks its siblings, and every job produces exactly
// one append-only log row.
type PublishService interface {
	Publish(ctx context.Context, userID int64, jobs []transfer.PlatformJob) (*transfer.PublishReport, error)
}

type publishService struct {
	cfg      config.Config
	cr       repository.ConnectionRepository
	pl       repository.PostLogRepository
	adapters platform.Registry
	stager   MediaStager
}

func NewPublishService(
	cfg config.Config,
	cr repository.ConnectionRepository,
	pl repository.PostLogRepository,
	adapters platform.Registry,
	stager MediaStager) PublishService {
	return &publishService{
		cfg:      cfg,
		cr:       cr,
		pl:       pl,
		adapters: adapters,
		stager:   stager,
	}
}

func (s *publishService) Publish(ctx context.Context, userID int64, jobs []transfer.PlatformJob) (*transfer.PublishReport, error) {
	if len(jobs) == 0 {
		return nil, errors.New("no platforms selected")
	}

	report := &transfer.PublishReport{
		Results: make(map[string]string, len(jobs)),
		Errors:  make(map[string]string),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 10)

	for i := range jobs {
		job := &jobs[i]

		wg.Add(1)
		semaphore <- struct{}{}

		go func(job *transfer.PlatformJob) {
			defer wg.Done()
			defer func() { <-semaphore }()

			outcome := s.publishOne(ctx, userID, job)

			mu.Lock()
			report.Results[job.Platform] = outcome.Status
			if outcome.ErrorMessage != "" {
				report.Errors[job.Platform] = outcome.ErrorMessage
			}
			mu.Unlock()

			// The log append is unconditional; its failure is only a
			// diagnostic and never changes the job's outcome.
			logRow := models.PostLog{
				UserID:         userID,
				Platform:       job.Platform,
				Status:         outcome.Status,
				PlatformPostID: outcome.PlatformPostID,
				ErrorMessage:   outcome.ErrorMessage,
			}
			if _, err := s.pl.Create(ctx, &logRow); err != nil {
				log.Printf("Error saving post log for %s: %v", job.Platform, err)
			}
		}(job)
	}

	wg.Wait()

	return report, nil
}

// publishOne runs one platform job to completion. Every failure mode is
// converted into a failure outcome here; nothing escapes the job boundary.
func (s *publishService) publishOne(ctx context.Context, userID int64, job *transfer.PlatformJob) transfer.PublishOutcome {
	adapter, ok := s.adapters.Get(job.Platform)
	if !ok {
		return failureOutcome(job.Platform, fmt.Sprintf("unsupported platform: %s", job.Platform))
	}

	// Validation happens before any network call.
	if job.Media == nil && adapter.RequiresMedia(job.Kind) {
		return failureOutcome(job.Platform, fmt.Sprintf("media file is required for %s", job.Platform))
	}

	conn, err := s.cr.GetByUserAndPlatform(ctx, userID, job.Platform)
	if err != nil {
		return failureOutcome(job.Platform, fmt.Sprintf("error loading %s connection: %v", job.Platform, err))
	}
	if conn == nil {
		return failureOutcome(job.Platform, fmt.Sprintf("%s account not connected", job.Platform))
	}

	connection := *conn
	connection.AccessToken, err = utils.Decrypt(conn.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return failureOutcome(job.Platform, fmt.Sprintf("unable to decrypt %s credentials", job.Platform))
	}

	if adapter.NeedsPublicURL() && job.Media != nil {
		key, err := gonanoid.New()
		if err != nil {
			return failureOutcome(job.Platform, fmt.Sprintf("failed to stage media: %v", err))
		}

		mediaURL, err := s.stager.Put(ctx, key, job.Media.Data, job.Media.ContentType)
		if err != nil {
			return failureOutcome(job.Platform, fmt.Sprintf("failed to upload temporary media: %v", err))
		}
		job.MediaURL = mediaURL

		// The staged object is removed after the publish call settles,
		// success or failure. Removal errors stay a diagnostic.
		defer func() {
			if err := s.stager.Delete(ctx, key); err != nil {
				slog.Info("staged media cleanup failed", "platform", job.Platform, "key", key, "error", err.Error())
			}
		}()
	}

	result, err := adapter.Publish(ctx, &connection, job)
	if err != nil {
		return failureOutcome(job.Platform, err.Error())
	}

	outcome := transfer.PublishOutcome{
		Platform: job.Platform,
		Status:   models.PublishStatusSuccess,
	}
	if result != nil {
		outcome.PlatformPostID = result.PostID
	}
	return outcome
}

func failureOutcome(platformName, message string) transfer.PublishOutcome {
	return transfer.PublishOutcome{
		Platform:     platformName,
		Status:       models.PublishStatusFailure,
		ErrorMessage: message,
	}
}
