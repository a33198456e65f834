package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/harshit961695/unipost/internal/models"
	"github.com/hibiken/asynq"
)

func (q *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	q.PublishScheduled(payload.PostID)

	return nil
}

// PublishScheduled rebuilds the platform jobs for a stored post, runs
// the fan-out, and records the aggregate outcome on the post row. A
// post is marked posted when at least one platform accepted it.
func (q *Queue) PublishScheduled(postID int64) error {
	ctx := context.Background()

	userID, jobs, err := q.ps.BuildJobs(ctx, postID)
	if err != nil {
		log.Printf("Error building jobs for PostID %d: %v", postID, err)
		if uerr := q.pr.UpdatePostStatus(ctx, models.PostStatusFailed, postID); uerr != nil {
			log.Printf("Error updating status for PostID %d: %v", postID, uerr)
		}
		return err
	}

	report, err := q.pb.Publish(ctx, userID, jobs)
	if err != nil {
		log.Printf("Error publishing PostID %d: %v", postID, err)
		if uerr := q.pr.UpdatePostStatus(ctx, models.PostStatusFailed, postID); uerr != nil {
			log.Printf("Error updating status for PostID %d: %v", postID, uerr)
		}
		return err
	}

	status := models.PostStatusFailed
	for _, outcome := range report.Results {
		if outcome == models.PublishStatusSuccess {
			status = models.PostStatusPosted
			break
		}
	}
	if err := q.pr.UpdatePostStatus(ctx, status, postID); err != nil {
		log.Printf("Error updating status for PostID %d: %v", postID, err)
		return err
	}

	return nil
}
