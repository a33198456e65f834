package models

import (
	"time"
)

// Connection is a user's stored credential for one platform. Rows are
// written by the account-linking flow, which is outside this service;
// here they are read-only.
type Connection struct {
	ID                int64     `db:"id" json:"id"`
	UserID            int64     `db:"user_id" json:"user_id"`
	Platform          string    `db:"platform" json:"platform"`
	AccountID         string    `db:"account_id" json:"account_id"`
	AccountName       string    `db:"account_name" json:"account_name"`
	PageID            string    `db:"page_id" json:"page_id"`
	BusinessAccountID string    `db:"business_account_id" json:"business_account_id"`
	AccessToken       string    `db:"access_token" json:"-"`
	RefreshToken      string    `db:"refresh_token" json:"-"`
	TokenExpiresAt    time.Time `db:"token_expires_at" json:"token_expires_at"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
