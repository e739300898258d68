package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"gorm.io/gorm"
)

type GroupRepository interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroupByID(ctx context.Context, id string) (*models.Group, error)
	AddMember(ctx context.Context, member *models.GroupMember) error
	GetMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error)
	RemoveMember(ctx context.Context, groupID, userID string) error
	GetMemberIDs(ctx context.Context, groupID string) ([]string, error)
	CountAdmins(ctx context.Context, groupID string) (int64, error)
	// PromoteOldestMember makes the longest-standing member an admin. It is a no-op for a
	// group without members.
	PromoteOldestMember(ctx context.Context, groupID string) error
	GetGroupsForUser(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Group], error)
}

type PostgresGroupRepository struct {
	db *gorm.DB
}

func NewPostgresGroupRepository(db *gorm.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

func (r *PostgresGroupRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *PostgresGroupRepository) GetGroupByID(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *PostgresGroupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *PostgresGroupRepository) GetMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *PostgresGroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	res := r.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) GetMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.GroupMember{}).Where("group_id = ?", groupID).Pluck("user_id", &ids).Error
	return ids, err
}

func (r *PostgresGroupRepository) CountAdmins(ctx context.Context, groupID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND role = ?", groupID, models.GroupRoleAdmin).
		Count(&count).Error
	return count, err
}

func (r *PostgresGroupRepository) PromoteOldestMember(ctx context.Context, groupID string) error {
	var member models.GroupMember
	err := r.db.WithContext(ctx).Where("group_id = ?", groupID).
		Order("created_at ASC").Order("id ASC").First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("id = ?", member.ID).Update("role", models.GroupRoleAdmin).Error
}

// GetGroupsForUser lists the groups userID belongs to, newest group first.
func (r *PostgresGroupRepository) GetGroupsForUser(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Group], error) {
	return pagination.Paginate[models.Group](ctx, r.db, p, func(db *gorm.DB) *gorm.DB {
		memberOf := r.db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)
		return db.Where("id IN (?)", memberOf)
	})
}
