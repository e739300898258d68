package services

import (
	"context"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"github.com/anonto42/future-media/backend/internal/repositories"
)

type CommentService struct {
	repos         *repositories.Repositories
	notifications *NotificationService
	activity      *ActivityService
}

func NewCommentService(repos *repositories.Repositories, notifications *NotificationService, activity *ActivityService) *CommentService {
	return &CommentService{repos: repos, notifications: notifications, activity: activity}
}

func commentParent(parent *models.Ref) error {
	if parent == nil || (parent.Kind != models.RefPost && parent.Kind != models.RefReel) {
		return apperrors.BadRequest("comments belong to a post or a reel")
	}
	return nil
}

// Create comments on a post or reel. The parent's owner is notified on every comment and
// mentioned users get a MENTION.
func (s *CommentService) Create(ctx context.Context, caller auth.Caller, parent *models.Ref, req models.CreateCommentRequest) (*models.Comment, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	if err := commentParent(parent); err != nil {
		return nil, err
	}
	content := sanitizeText(req.Content)
	if content == "" {
		return nil, apperrors.BadRequest("comment content is empty")
	}
	comment := &models.Comment{UserID: caller.UserID, Content: content}
	parentID := parent.ID
	if parent.Kind == models.RefPost {
		comment.PostID = &parentID
	} else {
		comment.ReelID = &parentID
	}

	err := s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		ownerID, err := ownerOf(ctx, tx, parent)
		if err != nil {
			return err
		}
		if err := tx.Comments.CreateComment(ctx, comment); err != nil {
			return apperrors.FromStore(err, "comment")
		}
		if parent.Kind == models.RefPost {
			if err := tx.Posts.AdjustCommentsCount(ctx, parent.ID, 1); err != nil {
				return apperrors.FromStore(err, "post")
			}
		}
		target := models.CommentRef(comment.ID)
		err = n.Notify(Event{
			Type:       models.NotificationComment,
			SenderID:   caller.UserID,
			Content:    "commented: " + truncate(content, 80),
			Target:     target,
			Recipients: []string{ownerID},
		})
		if err != nil {
			return err
		}
		ev, err := mentionEvent(ctx, tx, caller.UserID, content, target)
		if err != nil {
			return err
		}
		return n.Notify(ev)
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, caller.UserID, models.VerbComment, models.CommentRef(comment.ID))
	return comment, nil
}

// List lists the comments of a post or reel, newest first.
func (s *CommentService) List(ctx context.Context, parent *models.Ref, p pagination.Params) (pagination.Page[models.Comment], error) {
	if err := commentParent(parent); err != nil {
		return pagination.Page[models.Comment]{}, err
	}
	if err := p.Validate(); err != nil {
		return pagination.Page[models.Comment]{}, err
	}
	if _, err := ownerOf(ctx, s.repos, parent); err != nil {
		return pagination.Page[models.Comment]{}, err
	}
	page, err := s.repos.Comments.GetComments(ctx, parent, p)
	if err != nil {
		return page, apperrors.FromStore(err, "comment")
	}
	return page, nil
}

func (s *CommentService) Update(ctx context.Context, caller auth.Caller, id string, req models.UpdateCommentRequest) (*models.Comment, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	comment, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	content := sanitizeText(req.Content)
	if content == "" {
		return nil, apperrors.BadRequest("comment content is empty")
	}
	if err := s.repos.Comments.UpdateComment(ctx, id, content); err != nil {
		return nil, apperrors.FromStore(err, "comment")
	}
	comment.Content = content
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, caller auth.Caller, id string) error {
	if err := caller.Require(); err != nil {
		return err
	}
	return s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		comment, err := tx.Comments.GetCommentByID(ctx, id)
		if err != nil {
			return apperrors.FromStore(err, "comment")
		}
		if !caller.Is(comment.UserID) {
			return apperrors.Forbidden("you can only delete your own comments")
		}
		if err := n.Removing(models.CommentRef(id)); err != nil {
			return err
		}
		if err := tx.Comments.DeleteComment(ctx, id); err != nil {
			return apperrors.FromStore(err, "comment")
		}
		if comment.PostID != nil {
			if err := tx.Posts.AdjustCommentsCount(ctx, *comment.PostID, -1); err != nil {
				return apperrors.FromStore(err, "post")
			}
		}
		return nil
	})
}

func (s *CommentService) owned(ctx context.Context, caller auth.Caller, id string) (*models.Comment, error) {
	comment, err := s.repos.Comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err, "comment")
	}
	if !caller.Is(comment.UserID) {
		return nil, apperrors.Forbidden("you can only modify your own comments")
	}
	return comment, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
