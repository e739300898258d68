package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/future-media/backend/internal/models"
	"gorm.io/gorm"
)

type ReactionRepository interface {
	GetReaction(ctx context.Context, userID string, target *models.Ref) (*models.Reaction, error)
	CreateReaction(ctx context.Context, reaction *models.Reaction) error
	UpdateEmoji(ctx context.Context, id, emoji string) error
	DeleteReaction(ctx context.Context, userID string, target *models.Ref) error
	GetReactions(ctx context.Context, target *models.Ref) ([]models.Reaction, error)
}

type PostgresReactionRepository struct {
	db *gorm.DB
}

func NewPostgresReactionRepository(db *gorm.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

func (r *PostgresReactionRepository) GetReaction(ctx context.Context, userID string, target *models.Ref) (*models.Reaction, error) {
	column, err := refColumn(target)
	if err != nil {
		return nil, err
	}
	var reaction models.Reaction
	err = r.db.WithContext(ctx).Where("user_id = ? AND "+column+" = ?", userID, target.ID).First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *PostgresReactionRepository) CreateReaction(ctx context.Context, reaction *models.Reaction) error {
	return r.db.WithContext(ctx).Create(reaction).Error
}

func (r *PostgresReactionRepository) UpdateEmoji(ctx context.Context, id, emoji string) error {
	return r.db.WithContext(ctx).Model(&models.Reaction{}).Where("id = ?", id).Update("emoji", emoji).Error
}

func (r *PostgresReactionRepository) DeleteReaction(ctx context.Context, userID string, target *models.Ref) error {
	column, err := refColumn(target)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Where("user_id = ? AND "+column+" = ?", userID, target.ID).Delete(&models.Reaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetReactions returns every reaction on target, oldest first.
func (r *PostgresReactionRepository) GetReactions(ctx context.Context, target *models.Ref) ([]models.Reaction, error) {
	column, err := refColumn(target)
	if err != nil {
		return nil, err
	}
	var reactions []models.Reaction
	err = r.db.WithContext(ctx).Where(column+" = ?", target.ID).Order("created_at ASC").Find(&reactions).Error
	return reactions, err
}

func refColumn(target *models.Ref) (string, error) {
	if target == nil {
		return "", fmt.Errorf("target is required")
	}
	column, ok := models.RefColumn(target.Kind)
	if !ok {
		return "", fmt.Errorf("unknown target kind %q", target.Kind)
	}
	return column, nil
}
