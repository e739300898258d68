package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/future-media/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, userID string, target *models.Ref) error
	HasLiked(ctx context.Context, userID string, target *models.Ref) (bool, error)
	CountLikes(ctx context.Context, target *models.Ref) (int64, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// DeleteLike removes the user's like on target, gorm.ErrRecordNotFound when there is none.
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, userID string, target *models.Ref) error {
	column, err := likeColumn(target)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Where("user_id = ? AND "+column+" = ?", userID, target.ID).Delete(&models.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresLikeRepository) HasLiked(ctx context.Context, userID string, target *models.Ref) (bool, error) {
	column, err := likeColumn(target)
	if err != nil {
		return false, err
	}
	var count int64
	err = r.db.WithContext(ctx).Model(&models.Like{}).Where("user_id = ? AND "+column+" = ?", userID, target.ID).Count(&count).Error
	return count > 0, err
}

func (r *PostgresLikeRepository) CountLikes(ctx context.Context, target *models.Ref) (int64, error) {
	column, err := likeColumn(target)
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.db.WithContext(ctx).Model(&models.Like{}).Where(column+" = ?", target.ID).Count(&count).Error
	return count, err
}

func likeColumn(target *models.Ref) (string, error) {
	if target == nil {
		return "", fmt.Errorf("like target is required")
	}
	column, ok := models.LikeColumn(target.Kind)
	if !ok {
		return "", fmt.Errorf("%s cannot be liked", target.Kind)
	}
	return column, nil
}
