package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/warbler-app/warbler/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const newestFirst = "messages.timestamp DESC, messages.id DESC"

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return &MessageRepository{db: tx}
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &message, nil
}

// Delete removes the message and the likes pointing at it. Call it inside a
// transaction.
func (r *MessageRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("message_id = ?", id).Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("failed to delete message likes: %w", err)
	}
	if err := db.Delete(&models.Message{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// Timeline returns the newest messages written by userID or by anyone userID
// follows. The author set is resolved inside the same statement, so the cost
// is bounded by the matching rows rather than the number of followed users.
func (r *MessageRepository) Timeline(ctx context.Context, userID uint, limit int) ([]*models.Message, error) {
	var messages []*models.Message
	followed := r.db.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", userID)
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("messages.user_id = ? OR messages.user_id IN (?)", userID, followed).
		Order(newestFirst).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to get timeline: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) GetByUserID(ctx context.Context, userID uint, limit int) ([]*models.Message, error) {
	var messages []*models.Message
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("messages.user_id = ?", userID).
		Order(newestFirst).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to get messages by user: %w", err)
	}
	return messages, nil
}

// GetLikedBy returns every message userID has liked.
func (r *MessageRepository) GetLikedBy(ctx context.Context, userID uint) ([]*models.Message, error) {
	var messages []*models.Message
	if err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Order(newestFirst).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to get liked messages: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}
