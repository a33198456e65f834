package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/harshit961695/unipost/internal/models"
)

// SnapshotRepository appends and reads per-user analytics snapshots.
// Snapshots are immutable; snapshot_date defaults to the insert time.
type SnapshotRepository interface {
	Create(ctx context.Context, s *models.AnalyticsSnapshot) (int64, error)
	GetLatest(ctx context.Context, userID int64) (*models.AnalyticsSnapshot, error)
	ListRecent(ctx context.Context, userID int64, limit int) ([]*models.AnalyticsSnapshot, error)
}

type snapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(ctx context.Context, s *models.AnalyticsSnapshot) (int64, error) {
	query := `
		INSERT INTO analytics_snapshots
			(user_id, total_reach, total_impressions, total_engagement, total_views, total_likes, total_comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		s.UserID, s.TotalReach, s.TotalImpressions, s.TotalEngagement,
		s.TotalViews, s.TotalLikes, s.TotalComments).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

const snapshotColumns = `id, user_id, total_reach, total_impressions, total_engagement,
		total_views, total_likes, total_comments, snapshot_date`

func scanSnapshot(row interface{ Scan(...interface{}) error }) (*models.AnalyticsSnapshot, error) {
	var s models.AnalyticsSnapshot
	err := row.Scan(&s.ID, &s.UserID, &s.TotalReach, &s.TotalImpressions, &s.TotalEngagement,
		&s.TotalViews, &s.TotalLikes, &s.TotalComments, &s.SnapshotDate)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *snapshotRepository) GetLatest(ctx context.Context, userID int64) (*models.AnalyticsSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM analytics_snapshots WHERE user_id = $1 ORDER BY snapshot_date DESC LIMIT 1`

	s, err := scanSnapshot(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return s, nil
}

// ListRecent returns the newest snapshots first; callers reverse the
// slice when they want chart order.
func (r *snapshotRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]*models.AnalyticsSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM analytics_snapshots WHERE user_id = $1 ORDER BY snapshot_date DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var snaps []*models.AnalyticsSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		snaps = append(snaps, s)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return snaps, nil
}
