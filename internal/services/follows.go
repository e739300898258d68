package services

import (
	"context"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"github.com/anonto42/future-media/backend/internal/repositories"
)

type FollowService struct {
	repos         *repositories.Repositories
	notifications *NotificationService
	activity      *ActivityService
}

func NewFollowService(repos *repositories.Repositories, notifications *NotificationService, activity *ActivityService) *FollowService {
	return &FollowService{repos: repos, notifications: notifications, activity: activity}
}

// Follow makes the caller follow userID and notifies them. Following yourself or someone
// you already follow is BAD_REQUEST.
func (s *FollowService) Follow(ctx context.Context, caller auth.Caller, userID string) (*models.Follow, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	if caller.Is(userID) {
		return nil, apperrors.BadRequest("you cannot follow yourself")
	}
	follow := &models.Follow{FollowerID: caller.UserID, FollowingID: userID}
	err := s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		exists, err := tx.Users.Exists(ctx, userID)
		if err != nil {
			return apperrors.FromStore(err, "user")
		}
		if !exists {
			return apperrors.NotFound("user")
		}
		following, err := tx.Follows.IsFollowing(ctx, caller.UserID, userID)
		if err != nil {
			return apperrors.FromStore(err, "follow")
		}
		if following {
			return apperrors.BadRequest("already following this user")
		}
		if err := tx.Follows.CreateFollow(ctx, follow); err != nil {
			return apperrors.FromStore(err, "follow")
		}
		return n.Notify(Event{
			Type:       models.NotificationFollow,
			SenderID:   caller.UserID,
			Content:    "started following you",
			Recipients: []string{userID},
		})
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, caller.UserID, models.VerbFollow, nil)
	return follow, nil
}

// Unfollow removes the edge. NOT_FOUND when the caller does not follow userID.
func (s *FollowService) Unfollow(ctx context.Context, caller auth.Caller, userID string) error {
	if err := caller.Require(); err != nil {
		return err
	}
	if err := s.repos.Follows.DeleteFollow(ctx, caller.UserID, userID); err != nil {
		return apperrors.FromStore(err, "follow")
	}
	return nil
}

// Followers lists who follows userID, most recent first.
func (s *FollowService) Followers(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Follow], error) {
	if err := s.checkUser(ctx, userID, p); err != nil {
		return pagination.Page[models.Follow]{}, err
	}
	page, err := s.repos.Follows.GetFollowers(ctx, userID, p)
	if err != nil {
		return page, apperrors.FromStore(err, "follow")
	}
	return page, nil
}

// Following lists who userID follows, most recent first.
func (s *FollowService) Following(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Follow], error) {
	if err := s.checkUser(ctx, userID, p); err != nil {
		return pagination.Page[models.Follow]{}, err
	}
	page, err := s.repos.Follows.GetFollowing(ctx, userID, p)
	if err != nil {
		return page, apperrors.FromStore(err, "follow")
	}
	return page, nil
}

func (s *FollowService) checkUser(ctx context.Context, userID string, p pagination.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	exists, err := s.repos.Users.Exists(ctx, userID)
	if err != nil {
		return apperrors.FromStore(err, "user")
	}
	if !exists {
		return apperrors.NotFound("user")
	}
	return nil
}
