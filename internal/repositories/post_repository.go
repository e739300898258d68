package repositories

import (
	"context"

	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByUserID(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Post], error)
	GetFeed(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Post], error)
	UpdateCaption(ctx context.Context, id, caption string) error
	DeletePost(ctx context.Context, id string) error
	AdjustLikesCount(ctx context.Context, postID string, delta int) error
	AdjustCommentsCount(ctx context.Context, postID string, delta int) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostgresPostRepository) GetPostsByUserID(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Post], error) {
	return pagination.Paginate[models.Post](ctx, r.db, p, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}, "User")
}

// GetFeed lists posts by the user and everyone they follow.
func (r *PostgresPostRepository) GetFeed(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Post], error) {
	return pagination.Paginate[models.Post](ctx, r.db, p, func(db *gorm.DB) *gorm.DB {
		following := r.db.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", userID)
		return db.Where("(user_id = ? OR user_id IN (?))", userID, following)
	}, "User")
}

func (r *PostgresPostRepository) UpdateCaption(ctx context.Context, id, caption string) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("caption", caption).Error
}

func (r *PostgresPostRepository) DeletePost(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresPostRepository) AdjustLikesCount(ctx context.Context, postID string, delta int) error {
	return adjustCounter(ctx, r.db, &models.Post{}, postID, "likes_count", delta)
}

func (r *PostgresPostRepository) AdjustCommentsCount(ctx context.Context, postID string, delta int) error {
	return adjustCounter(ctx, r.db, &models.Post{}, postID, "comments_count", delta)
}

// adjustCounter adds delta to a denormalized counter column, never going below zero.
func adjustCounter(ctx context.Context, db *gorm.DB, model interface{}, id, column string, delta int) error {
	q := db.WithContext(ctx).Model(model).Where("id = ?", id)
	if delta < 0 {
		q = q.Where(column+" >= ?", -delta)
	}
	return q.UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}
