package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/harshit961695/unipost/internal/models"
)

// ConnectionRepository reads stored platform credentials. The rows are
// owned by the account-linking flow; this service never writes them.
type ConnectionRepository interface {
	GetByUserAndPlatform(ctx context.Context, userID int64, platform string) (*models.Connection, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Connection, error)
	ListActive(ctx context.Context) ([]*models.Connection, error)
}

type connectionRepository struct {
	db *sql.DB
}

func NewConnectionRepository(db *sql.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

const connectionColumns = `id, user_id, platform, account_id, account_name,
		page_id, business_account_id, access_token, refresh_token,
		token_expires_at, created_at, updated_at`

func scanConnection(row interface{ Scan(...interface{}) error }) (*models.Connection, error) {
	var c models.Connection
	err := row.Scan(&c.ID, &c.UserID, &c.Platform, &c.AccountID, &c.AccountName,
		&c.PageID, &c.BusinessAccountID, &c.AccessToken, &c.RefreshToken,
		&c.TokenExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *connectionRepository) GetByUserAndPlatform(ctx context.Context, userID int64, platform string) (*models.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connected_accounts WHERE user_id = $1 AND platform = $2`

	c, err := scanConnection(r.db.QueryRowContext(ctx, query, userID, platform))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return c, nil
}

func (r *connectionRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connected_accounts WHERE user_id = $1 AND access_token <> ''`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectConnections(rows)
}

// ListActive returns every connection with a usable credential, across
// all users. The aggregation pass starts from this set.
func (r *connectionRepository) ListActive(ctx context.Context) ([]*models.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connected_accounts WHERE access_token <> ''`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectConnections(rows)
}

func collectConnections(rows *sql.Rows) ([]*models.Connection, error) {
	var conns []*models.Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		conns = append(conns, c)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return conns, nil
}
