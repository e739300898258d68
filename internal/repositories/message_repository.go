package repositories

import (
	"context"

	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"gorm.io/gorm"
)

type MessageRepository interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	GetMessageByID(ctx context.Context, id string) (*models.Message, error)
	GetConversation(ctx context.Context, userID, otherID string, p pagination.Params) (pagination.Page[models.Message], error)
	GetGroupMessages(ctx context.Context, groupID string, p pagination.Params) (pagination.Page[models.Message], error)
	DeleteMessage(ctx context.Context, id string) error
}

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *PostgresMessageRepository) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// GetConversation lists the direct messages exchanged between two users, newest first.
func (r *PostgresMessageRepository) GetConversation(ctx context.Context, userID, otherID string, p pagination.Params) (pagination.Page[models.Message], error) {
	return pagination.Paginate[models.Message](ctx, r.db, p, func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))",
			userID, otherID, otherID, userID,
		)
	})
}

func (r *PostgresMessageRepository) GetGroupMessages(ctx context.Context, groupID string, p pagination.Params) (pagination.Page[models.Message], error) {
	return pagination.Paginate[models.Message](ctx, r.db, p, func(db *gorm.DB) *gorm.DB {
		return db.Where("group_id = ?", groupID)
	})
}

func (r *PostgresMessageRepository) DeleteMessage(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Message{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
