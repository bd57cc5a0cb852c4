package repositories

import (
	"errors"

	"github.com/arafatr/linkup/backend/internal/models"
	"gorm.io/gorm"
)

// ReactionRepository defines the interface for the generic reaction rows used
// in aggregate queries. One row per (user, target, targetType).
type ReactionRepository interface {
	GetUserReaction(userID, targetID, targetType string) (*models.Reaction, error)
	SetReaction(userID, targetID, targetType, reactionType string) error
	DeleteReaction(userID, targetID, targetType string) error
	DeleteByTarget(targetID, targetType string) error
	GetSummary(targetID, targetType string) ([]models.ReactionSummaryEntry, int64, error)
}

type postgresReactionRepository struct {
	db *gorm.DB
}

// NewPostgresReactionRepository creates the GORM-backed reaction store
func NewPostgresReactionRepository(db *gorm.DB) ReactionRepository {
	return &postgresReactionRepository{db: db}
}

func (r *postgresReactionRepository) GetUserReaction(userID, targetID, targetType string) (*models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.Where("user_id = ? AND target_id = ? AND target_type = ?", userID, targetID, targetType).
		First(&reaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reaction, nil
}

// SetReaction inserts or retypes the user's reaction on a target.
func (r *postgresReactionRepository) SetReaction(userID, targetID, targetType, reactionType string) error {
	existing, err := r.GetUserReaction(userID, targetID, targetType)
	if err != nil {
		return err
	}
	if existing != nil {
		return r.db.Model(existing).Update("type", reactionType).Error
	}
	return r.db.Create(&models.Reaction{
		UserID:     userID,
		TargetID:   targetID,
		TargetType: targetType,
		Type:       reactionType,
	}).Error
}

func (r *postgresReactionRepository) DeleteReaction(userID, targetID, targetType string) error {
	return r.db.Where("user_id = ? AND target_id = ? AND target_type = ?", userID, targetID, targetType).
		Delete(&models.Reaction{}).Error
}

// DeleteByTarget removes every reaction row of a deleted post or comment.
func (r *postgresReactionRepository) DeleteByTarget(targetID, targetType string) error {
	return r.db.Where("target_id = ? AND target_type = ?", targetID, targetType).
		Delete(&models.Reaction{}).Error
}

// GetSummary groups a target's reactions by type and returns the grand total.
func (r *postgresReactionRepository) GetSummary(targetID, targetType string) ([]models.ReactionSummaryEntry, int64, error) {
	var entries []models.ReactionSummaryEntry
	err := r.db.Model(&models.Reaction{}).
		Select("type, COUNT(*) AS count").
		Where("target_id = ? AND target_type = ?", targetID, targetType).
		Group("type").
		Scan(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	var total int64
	for _, e := range entries {
		total += e.Count
	}
	return entries, total, nil
}
