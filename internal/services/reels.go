package services

import (
	"context"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"github.com/anonto42/future-media/backend/internal/repositories"
)

type ReelService struct {
	repos         *repositories.Repositories
	notifications *NotificationService
	activity      *ActivityService
}

func NewReelService(repos *repositories.Repositories, notifications *NotificationService, activity *ActivityService) *ReelService {
	return &ReelService{repos: repos, notifications: notifications, activity: activity}
}

// Create publishes a reel, notifying followers and mentioned users.
func (s *ReelService) Create(ctx context.Context, caller auth.Caller, req models.CreateReelRequest) (*models.Reel, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	reel := &models.Reel{
		UserID:   caller.UserID,
		VideoURL: req.VideoURL,
		Caption:  sanitizeText(req.Caption),
	}
	err := s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		if err := tx.Reels.CreateReel(ctx, reel); err != nil {
			return apperrors.FromStore(err, "reel")
		}
		target := models.ReelRef(reel.ID)
		if err := n.NotifyFollowers(caller.UserID, Event{Type: models.NotificationNewReel, Content: "posted a new reel", Target: target}); err != nil {
			return err
		}
		ev, err := mentionEvent(ctx, tx, caller.UserID, reel.Caption, target)
		if err != nil {
			return err
		}
		return n.Notify(ev)
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, caller.UserID, models.VerbReel, models.ReelRef(reel.ID))
	return reel, nil
}

func (s *ReelService) Get(ctx context.Context, id string) (*models.Reel, error) {
	reel, err := s.repos.Reels.GetReelByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err, "reel")
	}
	return reel, nil
}

// List lists reels, newest first, optionally only those of userID.
func (s *ReelService) List(ctx context.Context, userID string, p pagination.Params) (pagination.Page[models.Reel], error) {
	if err := p.Validate(); err != nil {
		return pagination.Page[models.Reel]{}, err
	}
	page, err := s.repos.Reels.GetReels(ctx, userID, p)
	if err != nil {
		return page, apperrors.FromStore(err, "reel")
	}
	return page, nil
}

// View counts the caller's first view of a reel and notifies the owner about it.
func (s *ReelService) View(ctx context.Context, caller auth.Caller, id string) error {
	if err := caller.Require(); err != nil {
		return err
	}
	return s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		reel, err := tx.Reels.GetReelByID(ctx, id)
		if err != nil {
			return apperrors.FromStore(err, "reel")
		}
		if caller.Is(reel.UserID) {
			return nil
		}
		first, err := tx.Reels.MarkViewed(ctx, &models.ReelView{ReelID: id, ViewerID: caller.UserID})
		if err != nil {
			return apperrors.FromStore(err, "reel view")
		}
		if !first {
			return nil
		}
		return n.Notify(Event{
			Type:       models.NotificationReelView,
			SenderID:   caller.UserID,
			Content:    "watched your reel",
			Target:     models.ReelRef(id),
			Recipients: []string{reel.UserID},
		})
	})
}

func (s *ReelService) Delete(ctx context.Context, caller auth.Caller, id string) error {
	if err := caller.Require(); err != nil {
		return err
	}
	reel, err := s.repos.Reels.GetReelByID(ctx, id)
	if err != nil {
		return apperrors.FromStore(err, "reel")
	}
	if !caller.Is(reel.UserID) {
		return apperrors.Forbidden("you can only delete your own reels")
	}
	return s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		if err := n.Removing(models.ReelRef(id)); err != nil {
			return err
		}
		return apperrors.FromStore(tx.Reels.DeleteReel(ctx, id), "reel")
	})
}
