package model

import "time"

// RevokedToken records the jti of a bearer token that was logged out before
// it expired. Rows are purged once ExpiresAt has passed.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TokenID   string    `gorm:"column:token_id;type:text;not null;uniqueIndex" json:"token_id"`
	ExpiresAt time.Time `gorm:"column:expires_at;type:timestamptz;not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
