package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationLike      NotificationType = "LIKE"
	NotificationComment   NotificationType = "COMMENT"
	NotificationFollow    NotificationType = "FOLLOW"
	NotificationMention   NotificationType = "MENTION"
	NotificationStoryView NotificationType = "STORY_VIEW"
	NotificationReelView  NotificationType = "REEL_VIEW"
	NotificationNewPost   NotificationType = "NEW_POST"
	NotificationNewStory  NotificationType = "NEW_STORY"
	NotificationNewReel   NotificationType = "NEW_REEL"
	NotificationSystem    NotificationType = "SYSTEM"
)

var allKinds = []RefKind{RefPost, RefComment, RefStory, RefReel, RefMessage}

// targetRules lists the reference kinds each type may carry. optional marks types that
// may also carry no reference at all.
var targetRules = map[NotificationType]struct {
	kinds    []RefKind
	optional bool
}{
	NotificationLike:      {kinds: []RefKind{RefPost, RefComment, RefReel, RefMessage}},
	NotificationComment:   {kinds: []RefKind{RefComment, RefPost, RefReel}},
	NotificationFollow:    {optional: true},
	NotificationMention:   {kinds: allKinds},
	NotificationStoryView: {kinds: []RefKind{RefStory}},
	NotificationReelView:  {kinds: []RefKind{RefReel}},
	NotificationNewPost:   {kinds: []RefKind{RefPost}},
	NotificationNewStory:  {kinds: []RefKind{RefStory}},
	NotificationNewReel:   {kinds: []RefKind{RefReel}},
	NotificationSystem:    {kinds: allKinds, optional: true},
}

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	_, ok := targetRules[t]
	return ok
}

// Accepts reports whether a notification of type t may point at target.
func (t NotificationType) Accepts(target *Ref) bool {
	rule, ok := targetRules[t]
	if !ok {
		return false
	}
	if target == nil {
		return rule.optional
	}
	for _, k := range rule.kinds {
		if k == target.Kind {
			return true
		}
	}
	return false
}

// Notification is addressed to one receiver. Deleting the receiver removes it; deleting the
// sender only clears SenderID. Deleting the referenced entity removes it.
type Notification struct {
	ID         string           `json:"id" gorm:"primaryKey;size:36"`
	ReceiverID string           `json:"receiver_id" gorm:"size:36;not null;index:idx_notification_receiver"`
	Receiver   *User            `json:"-" gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE"`
	SenderID   *string          `json:"sender_id,omitempty" gorm:"size:36;index"`
	Sender     *User            `json:"sender,omitempty" gorm:"foreignKey:SenderID;constraint:OnDelete:SET NULL"`
	Type       NotificationType `json:"type" gorm:"size:20;not null"`
	Content    string           `json:"content" gorm:"type:text"`
	PostID     *string          `json:"-" gorm:"size:36;index"`
	Post       *Post            `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CommentID  *string          `json:"-" gorm:"size:36;index"`
	Comment    *Comment         `json:"-" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
	StoryID    *string          `json:"-" gorm:"size:36;index"`
	Story      *Story           `json:"-" gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE"`
	ReelID     *string          `json:"-" gorm:"size:36;index"`
	Reel       *Reel            `json:"-" gorm:"foreignKey:ReelID;constraint:OnDelete:CASCADE"`
	MessageID  *string          `json:"-" gorm:"size:36;index"`
	Message    *Message         `json:"-" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
	Target     *Ref             `json:"target,omitempty" gorm:"-"`
	IsRead     bool             `json:"is_read" gorm:"not null;default:false;index:idx_notification_receiver"`
	CreatedAt  time.Time        `json:"created_at" gorm:"index"`
}

func (n *Notification) slots() refSlots {
	return refSlots{post: &n.PostID, comment: &n.CommentID, story: &n.StoryID, reel: &n.ReelID, message: &n.MessageID}
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = newID()
	}
	if !n.Type.Valid() {
		return fmt.Errorf("unknown notification type %q", n.Type)
	}
	if !n.Type.Accepts(n.Target) {
		return fmt.Errorf("notification type %s cannot reference %s", n.Type, n.Target)
	}
	return n.slots().store(n.Target)
}

func (n *Notification) AfterFind(tx *gorm.DB) error {
	ref, err := n.slots().load()
	n.Target = ref
	return err
}

func (n Notification) CursorID() string { return n.ID }

type CreateNotificationRequest struct {
	ReceiverID string  `json:"receiver_id" validate:"required"`
	Type       string  `json:"type" validate:"required"`
	Content    string  `json:"content" validate:"max=500"`
	PostID     *string `json:"post_id"`
	CommentID  *string `json:"comment_id"`
	StoryID    *string `json:"story_id"`
	ReelID     *string `json:"reel_id"`
	MessageID  *string `json:"message_id"`
}

// Ref collapses the request's optional references into one. More than one populated
// reference is an error.
func (r *CreateNotificationRequest) Ref() (*Ref, error) {
	var out *Ref
	pairs := []struct {
		kind RefKind
		id   *string
	}{
		{RefPost, r.PostID}, {RefComment, r.CommentID}, {RefStory, r.StoryID},
		{RefReel, r.ReelID}, {RefMessage, r.MessageID},
	}
	for _, p := range pairs {
		if p.id == nil || *p.id == "" {
			continue
		}
		if out != nil {
			return nil, fmt.Errorf("at most one reference may be set")
		}
		out = &Ref{Kind: p.kind, ID: *p.id}
	}
	return out, nil
}
