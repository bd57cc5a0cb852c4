package models

import "time"

// Notification types.
const (
	NotificationLike          = "like"
	NotificationComment       = "comment"
	NotificationFriendRequest = "friend_request"
	NotificationFriendAccept  = "friend_accept"
	NotificationMessage       = "message"
	NotificationGroupInvite   = "group_invite"
	NotificationPostShare     = "post_share"
)

// Notification represents a user notification (PostgreSQL).
// RecipientID/SenderID and the related ids hold MongoDB ObjectIDs as hex strings.
type Notification struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Type           string     `json:"type" gorm:"size:30;index"`
	SenderID       string     `json:"sender" gorm:"size:24;index"`
	RecipientID    string     `json:"recipient" gorm:"size:24;index:idx_recipient_read"`
	Message        string     `json:"message"`
	RelatedPost    string     `json:"relatedPost,omitempty" gorm:"size:24"`
	RelatedComment string     `json:"relatedComment,omitempty" gorm:"size:24"`
	RelatedGroup   string     `json:"relatedGroup,omitempty" gorm:"size:24"`
	IsRead         bool       `json:"isRead" gorm:"default:false;index:idx_recipient_read"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"index"`
}

// MarkReadRequest defines the request body for PATCH /notifications/mark-read
type MarkReadRequest struct {
	NotificationIDs []uint `json:"notificationIds,omitempty"`
	MarkAll         bool   `json:"markAll,omitempty"`
}
