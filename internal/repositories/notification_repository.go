package repositories

import (
	"time"

	"github.com/arafatr/linkup/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	GetByRecipient(recipientID string, page, limit int, isRead *bool) ([]models.Notification, int64, error)
	GetUnreadCount(recipientID string) (int64, error)
	MarkAsRead(recipientID string, ids []uint) (int64, error)
	MarkAllAsRead(recipientID string) (int64, error)
	DeleteNotification(recipientID string, id uint) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates the GORM-backed notification store
func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *postgresNotificationRepository) GetByRecipient(recipientID string, page, limit int, isRead *bool) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	query := r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID)
	if isRead != nil {
		query = query.Where("is_read = ?", *isRead)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) GetUnreadCount(recipientID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkAsRead marks the given notifications read, scoped to the recipient so a
// caller cannot touch someone else's rows.
func (r *postgresNotificationRepository) MarkAsRead(recipientID string, ids []uint) (int64, error) {
	now := time.Now()
	res := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND id IN ? AND is_read = ?", recipientID, ids, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	return res.RowsAffected, res.Error
}

// MarkAllAsRead marks every unread notification of the recipient read.
func (r *postgresNotificationRepository) MarkAllAsRead(recipientID string) (int64, error) {
	now := time.Now()
	res := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) DeleteNotification(recipientID string, id uint) error {
	res := r.db.Where("recipient_id = ?", recipientID).Delete(&models.Notification{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
