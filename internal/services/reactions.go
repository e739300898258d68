package services

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/repositories"
	"gorm.io/gorm"
)

type ReactionService struct {
	repos         *repositories.Repositories
	notifications *NotificationService
	activity      *ActivityService
	now           func() time.Time
}

func NewReactionService(repos *repositories.Repositories, notifications *NotificationService, activity *ActivityService, now func() time.Time) *ReactionService {
	return &ReactionService{repos: repos, notifications: notifications, activity: activity, now: now}
}

// React sets the caller's emoji on a target. The first reaction notifies the owner;
// changing the emoji later updates the reaction silently.
func (s *ReactionService) React(ctx context.Context, caller auth.Caller, target *models.Ref, req models.ReactRequest) (*models.Reaction, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperrors.BadRequest("reaction target is required")
	}
	emoji := sanitizeText(req.Emoji)
	if emoji == "" {
		return nil, apperrors.BadRequest("emoji is required")
	}

	var reaction *models.Reaction
	err := s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		ownerID, err := s.reactable(ctx, tx, caller, target)
		if err != nil {
			return err
		}

		existing, err := tx.Reactions.GetReaction(ctx, caller.UserID, target)
		if err == nil {
			if err := tx.Reactions.UpdateEmoji(ctx, existing.ID, emoji); err != nil {
				return apperrors.FromStore(err, "reaction")
			}
			existing.Emoji = emoji
			reaction = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.FromStore(err, "reaction")
		}

		reaction = &models.Reaction{UserID: caller.UserID, Emoji: emoji, Target: target}
		if err := tx.Reactions.CreateReaction(ctx, reaction); err != nil {
			return apperrors.FromStore(err, "reaction")
		}
		typ := models.NotificationLike
		if target.Kind == models.RefStory {
			typ = models.NotificationStoryView
		}
		return n.Notify(Event{
			Type:       typ,
			SenderID:   caller.UserID,
			Content:    "reacted " + emoji + " to your " + string(target.Kind),
			Target:     target,
			Recipients: []string{ownerID},
		})
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, caller.UserID, models.VerbReact, target)
	return reaction, nil
}

// Unreact removes the caller's reaction from a target.
func (s *ReactionService) Unreact(ctx context.Context, caller auth.Caller, target *models.Ref) error {
	if err := caller.Require(); err != nil {
		return err
	}
	if target == nil {
		return apperrors.BadRequest("reaction target is required")
	}
	if err := s.repos.Reactions.DeleteReaction(ctx, caller.UserID, target); err != nil {
		return apperrors.FromStore(err, "reaction")
	}
	return nil
}

// List returns every reaction on a target the caller can see.
func (s *ReactionService) List(ctx context.Context, caller auth.Caller, target *models.Ref) ([]models.Reaction, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperrors.BadRequest("reaction target is required")
	}
	if _, err := s.reactable(ctx, s.repos, caller, target); err != nil {
		return nil, err
	}
	reactions, err := s.repos.Reactions.GetReactions(ctx, target)
	if err != nil {
		return nil, apperrors.FromStore(err, "reaction")
	}
	if reactions == nil {
		reactions = []models.Reaction{}
	}
	return reactions, nil
}

// reactable checks the caller may see target and returns its owner. Expired stories are
// NOT_FOUND; messages are visible to their participants only.
func (s *ReactionService) reactable(ctx context.Context, repos *repositories.Repositories, caller auth.Caller, target *models.Ref) (string, error) {
	switch target.Kind {
	case models.RefStory:
		story, err := repos.Stories.GetActiveStory(ctx, target.ID, s.now())
		if err != nil {
			return "", apperrors.FromStore(err, "story")
		}
		return story.UserID, nil
	case models.RefMessage:
		message, err := repos.Messages.GetMessageByID(ctx, target.ID)
		if err != nil {
			return "", apperrors.FromStore(err, "message")
		}
		if err := canSee(ctx, repos, caller, message); err != nil {
			return "", err
		}
		return message.SenderID, nil
	}
	return ownerOf(ctx, repos, target)
}
