package services

import (
	"context"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"github.com/anonto42/future-media/backend/internal/repositories"
)

type SavedPostService struct {
	repos    *repositories.Repositories
	activity *ActivityService
}

func NewSavedPostService(repos *repositories.Repositories, activity *ActivityService) *SavedPostService {
	return &SavedPostService{repos: repos, activity: activity}
}

// Save bookmarks a post for the caller. Saving twice is BAD_REQUEST.
func (s *SavedPostService) Save(ctx context.Context, caller auth.Caller, postID string) (*models.SavedPost, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	if _, err := s.repos.Posts.GetPostByID(ctx, postID); err != nil {
		return nil, apperrors.FromStore(err, "post")
	}
	saved, err := s.repos.SavedPosts.IsSaved(ctx, caller.UserID, postID)
	if err != nil {
		return nil, apperrors.FromStore(err, "saved post")
	}
	if saved {
		return nil, apperrors.BadRequest("post already saved")
	}
	row := &models.SavedPost{UserID: caller.UserID, PostID: postID}
	if err := s.repos.SavedPosts.SavePost(ctx, row); err != nil {
		return nil, apperrors.FromStore(err, "saved post")
	}
	s.activity.Record(ctx, caller.UserID, models.VerbSave, models.PostRef(postID))
	return row, nil
}

func (s *SavedPostService) Unsave(ctx context.Context, caller auth.Caller, postID string) error {
	if err := caller.Require(); err != nil {
		return err
	}
	if err := s.repos.SavedPosts.UnsavePost(ctx, caller.UserID, postID); err != nil {
		return apperrors.FromStore(err, "saved post")
	}
	return nil
}

// List returns the caller's saved posts, most recently saved first.
func (s *SavedPostService) List(ctx context.Context, caller auth.Caller, p pagination.Params) (pagination.Page[models.SavedPost], error) {
	if err := caller.Require(); err != nil {
		return pagination.Page[models.SavedPost]{}, err
	}
	if err := p.Validate(); err != nil {
		return pagination.Page[models.SavedPost]{}, err
	}
	page, err := s.repos.SavedPosts.GetSavedPosts(ctx, caller.UserID, p)
	if err != nil {
		return page, apperrors.FromStore(err, "saved post")
	}
	return page, nil
}
