package repositories

import (
	"context"

	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	GetFollowers(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Follow], error)
	GetFollowing(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Follow], error)
	GetFollowersCount(ctx context.Context, userID string) (int64, error)
	GetFollowingCount(ctx context.Context, userID string) (int64, error)
	EachFollowerBatch(ctx context.Context, userID string, size int, fn func(ids []string) error) error
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	return r.db.WithContext(ctx).Create(follow).Error
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID string) error {
	res := r.db.WithContext(ctx).Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

// GetFollowers lists follow edges pointing at userID, most recent first.
func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Follow], error) {
	return pagination.Paginate[models.Follow](ctx, r.db, p, func(db *gorm.DB) *gorm.DB {
		return db.Where("following_id = ?", userID)
	}, "Follower")
}

// GetFollowing lists follow edges from userID, most recent first.
func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Follow], error) {
	return pagination.Paginate[models.Follow](ctx, r.db, p, func(db *gorm.DB) *gorm.DB {
		return db.Where("follower_id = ?", userID)
	}, "Following")
}

func (r *PostgresFollowRepository) GetFollowersCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) GetFollowingCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

// EachFollowerBatch calls fn with the follower ids of userID, at most size per call.
func (r *PostgresFollowRepository) EachFollowerBatch(ctx context.Context, userID string, size int, fn func(ids []string) error) error {
	var batch []models.Follow
	res := r.db.WithContext(ctx).
		Select("id", "follower_id").
		Where("following_id = ?", userID).
		FindInBatches(&batch, size, func(tx *gorm.DB, _ int) error {
			ids := make([]string, len(batch))
			for i, f := range batch {
				ids[i] = f.FollowerID
			}
			return fn(ids)
		})
	return res.Error
}
