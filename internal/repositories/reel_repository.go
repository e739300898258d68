package repositories

import (
	"context"

	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"gorm.io/gorm"
)

type ReelRepository interface {
	CreateReel(ctx context.Context, reel *models.Reel) error
	GetReelByID(ctx context.Context, id string) (*models.Reel, error)
	GetReels(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Reel], error)
	DeleteReel(ctx context.Context, id string) error
	MarkViewed(ctx context.Context, view *models.ReelView) (bool, error)
	AdjustLikesCount(ctx context.Context, reelID string, delta int) error
}

type PostgresReelRepository struct {
	db *gorm.DB
}

func NewPostgresReelRepository(db *gorm.DB) *PostgresReelRepository {
	return &PostgresReelRepository{db: db}
}

func (r *PostgresReelRepository) CreateReel(ctx context.Context, reel *models.Reel) error {
	return r.db.WithContext(ctx).Create(reel).Error
}

func (r *PostgresReelRepository) GetReelByID(ctx context.Context, id string) (*models.Reel, error) {
	var reel models.Reel
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&reel).Error; err != nil {
		return nil, err
	}
	return &reel, nil
}

// GetReels lists all reels, or only those of userID when it is not empty.
func (r *PostgresReelRepository) GetReels(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Reel], error) {
	var filter func(*gorm.DB) *gorm.DB
	if userID != "" {
		filter = func(db *gorm.DB) *gorm.DB { return db.Where("user_id = ?", userID) }
	}
	return pagination.Paginate[models.Reel](ctx, r.db, p, filter, "User")
}

func (r *PostgresReelRepository) DeleteReel(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Reel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkViewed records a view, bumping views_count on the first view by the viewer. It
// reports whether the view was the first.
func (r *PostgresReelRepository) MarkViewed(ctx context.Context, view *models.ReelView) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ReelView{}).
		Where("reel_id = ? AND viewer_id = ?", view.ReelID, view.ViewerID).
		Count(&count).Error
	if err != nil || count > 0 {
		return false, err
	}
	if err := r.db.WithContext(ctx).Create(view).Error; err != nil {
		return false, err
	}
	if err := adjustCounter(ctx, r.db, &models.Reel{}, view.ReelID, "views_count", 1); err != nil {
		return false, err
	}
	return true, nil
}

func (r *PostgresReelRepository) AdjustLikesCount(ctx context.Context, reelID string, delta int) error {
	return adjustCounter(ctx, r.db, &models.Reel{}, reelID, "likes_count", delta)
}
