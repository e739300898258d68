package services

import (
	"context"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/repositories"
)

type LikeService struct {
	repos         *repositories.Repositories
	notifications *NotificationService
	activity      *ActivityService
}

func NewLikeService(repos *repositories.Repositories, notifications *NotificationService, activity *ActivityService) *LikeService {
	return &LikeService{repos: repos, notifications: notifications, activity: activity}
}

func likeable(target *models.Ref) error {
	if target == nil {
		return apperrors.BadRequest("like target is required")
	}
	if _, ok := models.LikeColumn(target.Kind); !ok {
		return apperrors.BadRequest(string(target.Kind) + " cannot be liked")
	}
	return nil
}

// Like adds the caller's like to a post, comment or reel and notifies its owner. Liking
// twice is BAD_REQUEST and writes nothing.
func (s *LikeService) Like(ctx context.Context, caller auth.Caller, target *models.Ref) error {
	if err := caller.Require(); err != nil {
		return err
	}
	if err := likeable(target); err != nil {
		return err
	}
	err := s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		ownerID, err := ownerOf(ctx, tx, target)
		if err != nil {
			return err
		}
		liked, err := tx.Likes.HasLiked(ctx, caller.UserID, target)
		if err != nil {
			return apperrors.FromStore(err, "like")
		}
		if liked {
			return apperrors.BadRequest(string(target.Kind) + " already liked")
		}
		if err := tx.Likes.CreateLike(ctx, &models.Like{UserID: caller.UserID, Target: target}); err != nil {
			return apperrors.FromStore(err, "like")
		}
		if err := adjustLikes(ctx, tx, target, 1); err != nil {
			return err
		}
		return n.Notify(Event{
			Type:       models.NotificationLike,
			SenderID:   caller.UserID,
			Content:    "liked your " + string(target.Kind),
			Target:     target,
			Recipients: []string{ownerID},
		})
	})
	if err != nil {
		return err
	}
	s.activity.Record(ctx, caller.UserID, models.VerbLike, target)
	return nil
}

// Unlike removes the caller's like. The LIKE notification it caused stays.
func (s *LikeService) Unlike(ctx context.Context, caller auth.Caller, target *models.Ref) error {
	if err := caller.Require(); err != nil {
		return err
	}
	if err := likeable(target); err != nil {
		return err
	}
	return s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		if err := tx.Likes.DeleteLike(ctx, caller.UserID, target); err != nil {
			return apperrors.FromStore(err, "like")
		}
		return adjustLikes(ctx, tx, target, -1)
	})
}

func adjustLikes(ctx context.Context, tx *repositories.Repositories, target *models.Ref, delta int) error {
	switch target.Kind {
	case models.RefPost:
		return apperrors.FromStore(tx.Posts.AdjustLikesCount(ctx, target.ID, delta), "post")
	case models.RefReel:
		return apperrors.FromStore(tx.Reels.AdjustLikesCount(ctx, target.ID, delta), "reel")
	}
	return nil
}

// LikeStatus is the like count of a target and whether the caller is among the likers.
type LikeStatus struct {
	Count int64 `json:"count"`
	Liked bool  `json:"liked"`
}

// Status reports the like count of target. Anonymous callers always see liked=false.
func (s *LikeService) Status(ctx context.Context, caller auth.Caller, target *models.Ref) (*LikeStatus, error) {
	if err := likeable(target); err != nil {
		return nil, err
	}
	if _, err := ownerOf(ctx, s.repos, target); err != nil {
		return nil, err
	}
	count, err := s.repos.Likes.CountLikes(ctx, target)
	if err != nil {
		return nil, apperrors.FromStore(err, "like")
	}
	status := &LikeStatus{Count: count}
	if caller.IsAuthenticated {
		if status.Liked, err = s.repos.Likes.HasLiked(ctx, caller.UserID, target); err != nil {
			return nil, apperrors.FromStore(err, "like")
		}
	}
	return status, nil
}
