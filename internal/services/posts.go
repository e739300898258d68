package services

import (
	"context"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"github.com/anonto42/future-media/backend/internal/repositories"
)

type PostService struct {
	repos         *repositories.Repositories
	notifications *NotificationService
	activity      *ActivityService
}

func NewPostService(repos *repositories.Repositories, notifications *NotificationService, activity *ActivityService) *PostService {
	return &PostService{repos: repos, notifications: notifications, activity: activity}
}

// Create publishes a post, notifying followers and mentioned users.
func (s *PostService) Create(ctx context.Context, caller auth.Caller, req models.CreatePostRequest) (*models.Post, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	if req.ContentType != "text" && req.MediaURL == "" {
		return nil, apperrors.BadRequest("media_url is required for " + req.ContentType + " posts")
	}
	post := &models.Post{
		UserID:      caller.UserID,
		Caption:     sanitizeText(req.Caption),
		MediaURL:    req.MediaURL,
		ContentType: req.ContentType,
	}

	err := s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		if err := tx.Posts.CreatePost(ctx, post); err != nil {
			return apperrors.FromStore(err, "post")
		}
		target := models.PostRef(post.ID)
		if err := n.NotifyFollowers(caller.UserID, Event{Type: models.NotificationNewPost, Content: "shared a new post", Target: target}); err != nil {
			return err
		}
		ev, err := mentionEvent(ctx, tx, caller.UserID, post.Caption, target)
		if err != nil {
			return err
		}
		return n.Notify(ev)
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, caller.UserID, models.VerbPost, models.PostRef(post.ID))
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.repos.Posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err, "post")
	}
	return post, nil
}

// ListByUser lists a user's posts, newest first.
func (s *PostService) ListByUser(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Post], error) {
	if err := p.Validate(); err != nil {
		return pagination.Page[models.Post]{}, err
	}
	if exists, err := s.repos.Users.Exists(ctx, userID); err != nil {
		return pagination.Page[models.Post]{}, apperrors.FromStore(err, "user")
	} else if !exists {
		return pagination.Page[models.Post]{}, apperrors.NotFound("user")
	}
	page, err := s.repos.Posts.GetPostsByUserID(ctx, userID, p)
	if err != nil {
		return page, apperrors.FromStore(err, "post")
	}
	return page, nil
}

// Feed lists posts by the caller and everyone they follow.
func (s *PostService) Feed(ctx context.Context, caller auth.Caller, p pagination.Params) (pagination.Page[models.Post], error) {
	if err := caller.Require(); err != nil {
		return pagination.Page[models.Post]{}, err
	}
	if err := p.Validate(); err != nil {
		return pagination.Page[models.Post]{}, err
	}
	page, err := s.repos.Posts.GetFeed(ctx, caller.UserID, p)
	if err != nil {
		return page, apperrors.FromStore(err, "post")
	}
	return page, nil
}

// UpdateCaption replaces the caption of the caller's post. Mentions in an edited caption
// do not notify again.
func (s *PostService) UpdateCaption(ctx context.Context, caller auth.Caller, id string, req models.UpdatePostRequest) (*models.Post, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	post, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	post.Caption = sanitizeText(req.Caption)
	if err := s.repos.Posts.UpdateCaption(ctx, id, post.Caption); err != nil {
		return nil, apperrors.FromStore(err, "post")
	}
	return post, nil
}

// Delete removes the caller's post. Comments, likes, saves and notifications about it
// go with it.
func (s *PostService) Delete(ctx context.Context, caller auth.Caller, id string) error {
	if err := caller.Require(); err != nil {
		return err
	}
	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}
	return s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		if err := n.Removing(models.PostRef(id)); err != nil {
			return err
		}
		return apperrors.FromStore(tx.Posts.DeletePost(ctx, id), "post")
	})
}

func (s *PostService) owned(ctx context.Context, caller auth.Caller, id string) (*models.Post, error) {
	post, err := s.repos.Posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err, "post")
	}
	if !caller.Is(post.UserID) {
		return nil, apperrors.Forbidden("you can only modify your own posts")
	}
	return post, nil
}
