package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Message is sent to exactly one user or one group. Content is stored as plain text.
type Message struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	SenderID   string    `json:"sender_id" gorm:"size:36;not null;index"`
	Sender     *User     `json:"-" gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	ReceiverID *string   `json:"receiver_id,omitempty" gorm:"size:36;index"`
	Receiver   *User     `json:"-" gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE"`
	GroupID    *string   `json:"group_id,omitempty" gorm:"size:36;index"`
	Group      *Group    `json:"-" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = newID()
	}
	if (m.ReceiverID == nil) == (m.GroupID == nil) {
		return errors.New("message must go to exactly one user or group")
	}
	return nil
}

func (m Message) CursorID() string { return m.ID }

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}
