package models

import "time"

// Reaction target kinds.
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// Reaction is the generic per-user reaction row (PostgreSQL), used for
// aggregate queries across posts and comments. One row per user per target.
type Reaction struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user" gorm:"size:24;index;uniqueIndex:idx_user_target"`
	TargetID   string    `json:"targetId" gorm:"size:24;index:idx_target;uniqueIndex:idx_user_target"`
	TargetType string    `json:"targetType" gorm:"size:10;index:idx_target;uniqueIndex:idx_user_target"` // post or comment
	Type       string    `json:"type" gorm:"size:10"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ReactionSummaryEntry is one row of a per-type aggregate for a target.
type ReactionSummaryEntry struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}
