package repositories

import (
	"context"

	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"gorm.io/gorm"
)

const notificationBatchSize = 500

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotifications(ctx context.Context, notifications []*models.Notification) error
	GetNotificationByID(ctx context.Context, id string) (*models.Notification, error)
	GetByReceiverID(ctx context.Context, receiverID string, onlyUnread bool, p pagination.Params) (pagination.Page[models.Notification], error)
	GetUnreadCount(ctx context.Context, receiverID string) (int64, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context, receiverID string) (int64, error)
	DeleteNotification(ctx context.Context, id string) error
	// GetReceiversOfTarget returns the receivers of unread notifications that deleting
	// target removes, including those about comments under a post or reel.
	GetReceiversOfTarget(ctx context.Context, target *models.Ref) ([]string, error)
	// GetReceiversOfUserContent returns the receivers of unread notifications that
	// deleting the user removes through their content.
	GetReceiversOfUserContent(ctx context.Context, userID string) ([]string, error)
}

type PostgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// CreateNotifications inserts the rows in batches. Each row's target is checked against
// its type before insert.
func (r *PostgresNotificationRepository) CreateNotifications(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(notifications, notificationBatchSize).Error
}

func (r *PostgresNotificationRepository) GetNotificationByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).Preload("Sender").Where("id = ?", id).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *PostgresNotificationRepository) GetByReceiverID(ctx context.Context, receiverID string, onlyUnread bool, p pagination.Params) (pagination.Page[models.Notification], error) {
	var unread func(*gorm.DB) *gorm.DB
	if onlyUnread {
		unread = func(db *gorm.DB) *gorm.DB { return db.Where("is_read = ?", false) }
	}
	return pagination.PaginateWithin[models.Notification](ctx, r.db, p, func(db *gorm.DB) *gorm.DB {
		return db.Where("receiver_id = ?", receiverID)
	}, unread, "Sender")
}

func (r *PostgresNotificationRepository) GetUnreadCount(ctx context.Context, receiverID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Count(&count).Error
	return count, err
}

func (r *PostgresNotificationRepository) MarkAsRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}

// MarkAllAsRead marks every unread notification of the receiver and returns how many changed.
func (r *PostgresNotificationRepository) MarkAllAsRead(ctx context.Context, receiverID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *PostgresNotificationRepository) DeleteNotification(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) GetReceiversOfTarget(ctx context.Context, target *models.Ref) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("is_read = ?", false)
	switch target.Kind {
	case models.RefPost:
		q = q.Where("(post_id = ? OR comment_id IN (?))", target.ID,
			r.db.Model(&models.Comment{}).Select("id").Where("post_id = ?", target.ID))
	case models.RefReel:
		q = q.Where("(reel_id = ? OR comment_id IN (?))", target.ID,
			r.db.Model(&models.Comment{}).Select("id").Where("reel_id = ?", target.ID))
	case models.RefComment:
		q = q.Where("comment_id = ?", target.ID)
	case models.RefStory:
		q = q.Where("story_id = ?", target.ID)
	case models.RefMessage:
		q = q.Where("message_id = ?", target.ID)
	default:
		return nil, nil
	}
	var ids []string
	err := q.Distinct().Pluck("receiver_id", &ids).Error
	return ids, err
}

func (r *PostgresNotificationRepository) GetReceiversOfUserContent(ctx context.Context, userID string) ([]string, error) {
	owned := func(model interface{}) *gorm.DB {
		return r.db.Model(model).Select("id").Where("user_id = ?", userID)
	}
	comments := r.db.Model(&models.Comment{}).Select("id").
		Where("user_id = ? OR post_id IN (?) OR reel_id IN (?)", userID, owned(&models.Post{}), owned(&models.Reel{}))
	messages := r.db.Model(&models.Message{}).Select("id").
		Where("sender_id = ? OR receiver_id = ?", userID, userID)

	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("is_read = ?", false).
		Where("(post_id IN (?) OR reel_id IN (?) OR story_id IN (?) OR comment_id IN (?) OR message_id IN (?))",
			owned(&models.Post{}), owned(&models.Reel{}), owned(&models.Story{}), comments, messages).
		Distinct().Pluck("receiver_id", &ids).Error
	return ids, err
}
