package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	GroupRoleAdmin  = "admin"
	GroupRoleMember = "member"
)

type Group struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	CreatorID *string   `json:"creator_id,omitempty" gorm:"size:36;index"`
	Creator   *User     `json:"-" gorm:"foreignKey:CreatorID;constraint:OnDelete:SET NULL"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = newID()
	}
	return nil
}

func (g Group) CursorID() string { return g.ID }

// GroupMember is the membership edge, unique on (group, user).
type GroupMember struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	GroupID   string    `json:"group_id" gorm:"size:36;not null;uniqueIndex:idx_group_member"`
	Group     *Group    `json:"-" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;index;uniqueIndex:idx_group_member"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Role      string    `json:"role" gorm:"size:10;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *GroupMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = newID()
	}
	if m.Role == "" {
		m.Role = GroupRoleMember
	}
	return nil
}

type CreateGroupRequest struct {
	Name      string   `json:"name" validate:"required,min=1,max=100"`
	MemberIDs []string `json:"member_ids" validate:"max=256,dive,required"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
}
