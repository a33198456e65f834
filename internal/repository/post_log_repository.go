package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/harshit961695/unipost/internal/models"
	"github.com/lib/pq"
)

// PostLogRepository appends and reads publish outcomes. Rows are never
// updated: one insert per publish attempt is the whole write surface.
type PostLogRepository interface {
	Create(ctx context.Context, l *models.PostLog) (int64, error)
	ListSuccessful(ctx context.Context, userIDs []int64) ([]*models.PostLog, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.PostLog, error)
}

type postLogRepository struct {
	db *sql.DB
}

func NewPostLogRepository(db *sql.DB) PostLogRepository {
	return &postLogRepository{db: db}
}

func (r *postLogRepository) Create(ctx context.Context, l *models.PostLog) (int64, error) {
	query := `
		INSERT INTO post_logs (user_id, platform, status, platform_post_id, error_message)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, l.UserID, l.Platform, l.Status, l.PlatformPostID, l.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

// ListSuccessful returns the externally-confirmed outcomes for the given
// users: status success and a non-null platform post id. These are the
// posts the aggregation pass queries metrics for.
func (r *postLogRepository) ListSuccessful(ctx context.Context, userIDs []int64) ([]*models.PostLog, error) {
	query := `
		SELECT id, user_id, platform, status, platform_post_id, COALESCE(error_message, ''), created_at
		FROM post_logs
		WHERE user_id = ANY($1)
		AND status = $2
		AND platform_post_id IS NOT NULL
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs), models.PublishStatusSuccess)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectPostLogs(rows)
}

func (r *postLogRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.PostLog, error) {
	query := `
		SELECT id, user_id, platform, status, COALESCE(platform_post_id, ''), COALESCE(error_message, ''), created_at
		FROM post_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectPostLogs(rows)
}

func collectPostLogs(rows *sql.Rows) ([]*models.PostLog, error) {
	var logs []*models.PostLog
	for rows.Next() {
		var l models.PostLog
		err := rows.Scan(&l.ID, &l.UserID, &l.Platform, &l.Status, &l.PlatformPostID, &l.ErrorMessage, &l.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		logs = append(logs, &l)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return logs, nil
}
