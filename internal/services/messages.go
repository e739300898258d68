package services

import (
	"context"
	"errors"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"github.com/anonto42/future-media/backend/internal/repositories"
	"gorm.io/gorm"
)

// MessageService handles direct and group chat. Content is stored as sent, without
// encryption.
type MessageService struct {
	repos         *repositories.Repositories
	notifications *NotificationService
	activity      *ActivityService
}

func NewMessageService(repos *repositories.Repositories, notifications *NotificationService, activity *ActivityService) *MessageService {
	return &MessageService{repos: repos, notifications: notifications, activity: activity}
}

// SendDirect sends a message from the caller to another user.
func (s *MessageService) SendDirect(ctx context.Context, caller auth.Caller, receiverID string, req models.SendMessageRequest) (*models.Message, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	if caller.Is(receiverID) {
		return nil, apperrors.BadRequest("you cannot message yourself")
	}
	content := sanitizeText(req.Content)
	if content == "" {
		return nil, apperrors.BadRequest("message content is empty")
	}
	exists, err := s.repos.Users.Exists(ctx, receiverID)
	if err != nil {
		return nil, apperrors.FromStore(err, "user")
	}
	if !exists {
		return nil, apperrors.NotFound("receiver")
	}
	message := &models.Message{SenderID: caller.UserID, ReceiverID: &receiverID, Content: content}
	if err := s.repos.Messages.CreateMessage(ctx, message); err != nil {
		return nil, apperrors.FromStore(err, "message")
	}
	s.activity.Record(ctx, caller.UserID, models.VerbMessage, models.MessageRef(message.ID))
	return message, nil
}

// Conversation lists the direct messages between the caller and otherID, newest first.
func (s *MessageService) Conversation(ctx context.Context, caller auth.Caller, otherID string, p pagination.Params) (pagination.Page[models.Message], error) {
	if err := caller.Require(); err != nil {
		return pagination.Page[models.Message]{}, err
	}
	if err := p.Validate(); err != nil {
		return pagination.Page[models.Message]{}, err
	}
	page, err := s.repos.Messages.GetConversation(ctx, caller.UserID, otherID, p)
	if err != nil {
		return page, apperrors.FromStore(err, "message")
	}
	return page, nil
}

// CreateGroup creates a group with the caller as admin and the listed users as members.
func (s *MessageService) CreateGroup(ctx context.Context, caller auth.Caller, req models.CreateGroupRequest) (*models.Group, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	name := sanitizeText(req.Name)
	if name == "" {
		return nil, apperrors.BadRequest("group name is empty")
	}
	creator := caller.UserID
	group := &models.Group{Name: name, CreatorID: &creator}
	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		if err := tx.Groups.CreateGroup(ctx, group); err != nil {
			return apperrors.FromStore(err, "group")
		}
		admin := &models.GroupMember{GroupID: group.ID, UserID: caller.UserID, Role: models.GroupRoleAdmin}
		if err := tx.Groups.AddMember(ctx, admin); err != nil {
			return apperrors.FromStore(err, "group member")
		}
		seen := map[string]struct{}{caller.UserID: {}}
		for _, id := range req.MemberIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if err := addMember(ctx, tx, group.ID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// AddMember adds a user to a group. Only group admins may add members.
func (s *MessageService) AddMember(ctx context.Context, caller auth.Caller, groupID string, req models.AddMemberRequest) error {
	if err := caller.Require(); err != nil {
		return err
	}
	return s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		member, err := membership(ctx, tx, groupID, caller.UserID)
		if err != nil {
			return err
		}
		if member.Role != models.GroupRoleAdmin {
			return apperrors.Forbidden("only group admins can add members")
		}
		return addMember(ctx, tx, groupID, req.UserID)
	})
}

// LeaveGroup removes the caller from a group. When the last admin leaves, the
// longest-standing remaining member becomes admin.
func (s *MessageService) LeaveGroup(ctx context.Context, caller auth.Caller, groupID string) error {
	if err := caller.Require(); err != nil {
		return err
	}
	return s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		member, err := membership(ctx, tx, groupID, caller.UserID)
		if err != nil {
			return err
		}
		if err := tx.Groups.RemoveMember(ctx, groupID, caller.UserID); err != nil {
			return apperrors.FromStore(err, "group member")
		}
		if member.Role != models.GroupRoleAdmin {
			return nil
		}
		admins, err := tx.Groups.CountAdmins(ctx, groupID)
		if err != nil {
			return apperrors.FromStore(err, "group member")
		}
		if admins > 0 {
			return nil
		}
		return apperrors.FromStore(tx.Groups.PromoteOldestMember(ctx, groupID), "group member")
	})
}

// MyGroups lists the groups the caller belongs to.
func (s *MessageService) MyGroups(ctx context.Context, caller auth.Caller, p pagination.Params) (pagination.Page[models.Group], error) {
	if err := caller.Require(); err != nil {
		return pagination.Page[models.Group]{}, err
	}
	if err := p.Validate(); err != nil {
		return pagination.Page[models.Group]{}, err
	}
	page, err := s.repos.Groups.GetGroupsForUser(ctx, caller.UserID, p)
	if err != nil {
		return page, apperrors.FromStore(err, "group")
	}
	return page, nil
}

// SendGroup posts a message to a group the caller belongs to. Members mentioned by
// @username are notified.
func (s *MessageService) SendGroup(ctx context.Context, caller auth.Caller, groupID string, req models.SendMessageRequest) (*models.Message, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	content := sanitizeText(req.Content)
	if content == "" {
		return nil, apperrors.BadRequest("message content is empty")
	}
	message := &models.Message{SenderID: caller.UserID, GroupID: &groupID, Content: content}
	err := s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		if _, err := membership(ctx, tx, groupID, caller.UserID); err != nil {
			return err
		}
		if err := tx.Messages.CreateMessage(ctx, message); err != nil {
			return apperrors.FromStore(err, "message")
		}
		ev, err := mentionEvent(ctx, tx, caller.UserID, content, models.MessageRef(message.ID))
		if err != nil || len(ev.Recipients) == 0 {
			return err
		}
		memberIDs, err := tx.Groups.GetMemberIDs(ctx, groupID)
		if err != nil {
			return apperrors.FromStore(err, "group member")
		}
		ev.Recipients = intersect(ev.Recipients, memberIDs)
		return n.Notify(ev)
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, caller.UserID, models.VerbMessage, models.MessageRef(message.ID))
	return message, nil
}

// GroupMessages lists a group's messages, newest first. Members only.
func (s *MessageService) GroupMessages(ctx context.Context, caller auth.Caller, groupID string, p pagination.Params) (pagination.Page[models.Message], error) {
	if err := caller.Require(); err != nil {
		return pagination.Page[models.Message]{}, err
	}
	if err := p.Validate(); err != nil {
		return pagination.Page[models.Message]{}, err
	}
	if _, err := membership(ctx, s.repos, groupID, caller.UserID); err != nil {
		return pagination.Page[models.Message]{}, err
	}
	page, err := s.repos.Messages.GetGroupMessages(ctx, groupID, p)
	if err != nil {
		return page, apperrors.FromStore(err, "message")
	}
	return page, nil
}

// Delete removes a message the caller sent.
func (s *MessageService) Delete(ctx context.Context, caller auth.Caller, id string) error {
	if err := caller.Require(); err != nil {
		return err
	}
	message, err := s.repos.Messages.GetMessageByID(ctx, id)
	if err != nil {
		return apperrors.FromStore(err, "message")
	}
	if !caller.Is(message.SenderID) {
		return apperrors.Forbidden("you can only delete your own messages")
	}
	return s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		if err := n.Removing(models.MessageRef(id)); err != nil {
			return err
		}
		return apperrors.FromStore(tx.Messages.DeleteMessage(ctx, id), "message")
	})
}

// membership returns the caller's membership. A missing group is NOT_FOUND, a group the
// user is not in is FORBIDDEN.
func membership(ctx context.Context, repos *repositories.Repositories, groupID, userID string) (*models.GroupMember, error) {
	if _, err := repos.Groups.GetGroupByID(ctx, groupID); err != nil {
		return nil, apperrors.FromStore(err, "group")
	}
	member, err := repos.Groups.GetMember(ctx, groupID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Forbidden("you are not a member of this group")
	}
	if err != nil {
		return nil, apperrors.FromStore(err, "group member")
	}
	return member, nil
}

func addMember(ctx context.Context, tx *repositories.Repositories, groupID, userID string) error {
	exists, err := tx.Users.Exists(ctx, userID)
	if err != nil {
		return apperrors.FromStore(err, "user")
	}
	if !exists {
		return apperrors.NotFound("user")
	}
	if _, err := tx.Groups.GetMember(ctx, groupID, userID); err == nil {
		return apperrors.BadRequest("user is already a member")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.FromStore(err, "group member")
	}
	member := &models.GroupMember{GroupID: groupID, UserID: userID, Role: models.GroupRoleMember}
	return apperrors.FromStore(tx.Groups.AddMember(ctx, member), "group member")
}

// canSee reports FORBIDDEN unless the caller took part in the message.
func canSee(ctx context.Context, repos *repositories.Repositories, caller auth.Caller, message *models.Message) error {
	if caller.Is(message.SenderID) {
		return nil
	}
	if message.ReceiverID != nil {
		if caller.Is(*message.ReceiverID) {
			return nil
		}
		return apperrors.Forbidden("not your conversation")
	}
	_, err := membership(ctx, repos, *message.GroupID, caller.UserID)
	return err
}

func intersect(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, id := range b {
		in[id] = struct{}{}
	}
	var out []string
	for _, id := range a {
		if _, ok := in[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
