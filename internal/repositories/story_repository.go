package repositories

import (
	"context"
	"time"

	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"gorm.io/gorm"
)

// StoryRepository defines the interface for story operations. Every read takes the
// current time and skips stories that have expired by then.
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id string) (*models.Story, error)
	GetActiveStory(ctx context.Context, id string, now time.Time) (*models.Story, error)
	GetActiveStories(ctx context.Context, userID string, now time.Time, p pagination.Params) (pagination.Page[models.Story], error)
	DeleteStory(ctx context.Context, id string) error
	MarkSeen(ctx context.Context, view *models.StoryView) (bool, error)
	GetViewers(ctx context.Context, storyID string, p pagination.Params) (pagination.Page[models.StoryView], error)
}

type PostgresStoryRepository struct {
	db *gorm.DB
}

func NewPostgresStoryRepository(db *gorm.DB) *PostgresStoryRepository {
	return &PostgresStoryRepository{db: db}
}

func (r *PostgresStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	return r.db.WithContext(ctx).Create(story).Error
}

// GetStoryByID loads a story whether or not it has expired.
func (r *PostgresStoryRepository) GetStoryByID(ctx context.Context, id string) (*models.Story, error) {
	var story models.Story
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&story).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *PostgresStoryRepository) GetActiveStory(ctx context.Context, id string, now time.Time) (*models.Story, error) {
	var story models.Story
	err := r.db.WithContext(ctx).Preload("User").
		Where("id = ? AND expires_at > ?", id, now).
		First(&story).Error
	if err != nil {
		return nil, err
	}
	return &story, nil
}

// GetActiveStories lists unexpired stories by the user and everyone they follow.
func (r *PostgresStoryRepository) GetActiveStories(ctx context.Context, userID string, now time.Time, p pagination.Params) (pagination.Page[models.Story], error) {
	return pagination.Paginate[models.Story](ctx, r.db, p, func(db *gorm.DB) *gorm.DB {
		following := r.db.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", userID)
		return db.Where("expires_at > ?", now).Where("(user_id = ? OR user_id IN (?))", userID, following)
	}, "User")
}

func (r *PostgresStoryRepository) DeleteStory(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Story{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkSeen records a view and reports whether it was the viewer's first.
func (r *PostgresStoryRepository) MarkSeen(ctx context.Context, view *models.StoryView) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StoryView{}).
		Where("story_id = ? AND viewer_id = ?", view.StoryID, view.ViewerID).
		Count(&count).Error
	if err != nil || count > 0 {
		return false, err
	}
	if err := r.db.WithContext(ctx).Create(view).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *PostgresStoryRepository) GetViewers(ctx context.Context, storyID string, p pagination.Params) (pagination.Page[models.StoryView], error) {
	return pagination.Paginate[models.StoryView](ctx, r.db, p, func(db *gorm.DB) *gorm.DB {
		return db.Where("story_id = ?", storyID)
	}, "Viewer")
}
