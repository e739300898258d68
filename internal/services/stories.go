package services

import (
	"context"
	"time"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"github.com/anonto42/future-media/backend/internal/repositories"
)

// StoryService manages ephemeral stories. Expired stories are invisible to every read but
// stay in the store.
type StoryService struct {
	repos         *repositories.Repositories
	notifications *NotificationService
	activity      *ActivityService
	ttl           time.Duration
	now           func() time.Time
}

func NewStoryService(repos *repositories.Repositories, notifications *NotificationService, activity *ActivityService, ttl time.Duration, now func() time.Time) *StoryService {
	return &StoryService{repos: repos, notifications: notifications, activity: activity, ttl: ttl, now: now}
}

// Create publishes a story expiring after the configured TTL and notifies followers.
func (s *StoryService) Create(ctx context.Context, caller auth.Caller, req models.CreateStoryRequest) (*models.Story, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	now := s.now()
	story := &models.Story{
		UserID:      caller.UserID,
		MediaURL:    req.MediaURL,
		ContentType: req.ContentType,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	err := s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		if err := tx.Stories.CreateStory(ctx, story); err != nil {
			return apperrors.FromStore(err, "story")
		}
		return n.NotifyFollowers(caller.UserID, Event{
			Type:    models.NotificationNewStory,
			Content: "added to their story",
			Target:  models.StoryRef(story.ID),
		})
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, caller.UserID, models.VerbStory, models.StoryRef(story.ID))
	return story, nil
}

// Get returns an active story. Expired stories are NOT_FOUND.
func (s *StoryService) Get(ctx context.Context, caller auth.Caller, id string) (*models.Story, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	story, err := s.repos.Stories.GetActiveStory(ctx, id, s.now())
	if err != nil {
		return nil, apperrors.FromStore(err, "story")
	}
	return story, nil
}

// ListActive lists active stories by the caller and everyone they follow.
func (s *StoryService) ListActive(ctx context.Context, caller auth.Caller, p pagination.Params) (pagination.Page[models.Story], error) {
	if err := caller.Require(); err != nil {
		return pagination.Page[models.Story]{}, err
	}
	if err := p.Validate(); err != nil {
		return pagination.Page[models.Story]{}, err
	}
	page, err := s.repos.Stories.GetActiveStories(ctx, caller.UserID, s.now(), p)
	if err != nil {
		return page, apperrors.FromStore(err, "story")
	}
	return page, nil
}

// View records that the caller opened a story. The first view by a viewer other than the
// owner notifies the owner.
func (s *StoryService) View(ctx context.Context, caller auth.Caller, id string) error {
	if err := caller.Require(); err != nil {
		return err
	}
	return s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		story, err := tx.Stories.GetActiveStory(ctx, id, s.now())
		if err != nil {
			return apperrors.FromStore(err, "story")
		}
		if caller.Is(story.UserID) {
			return nil
		}
		first, err := tx.Stories.MarkSeen(ctx, &models.StoryView{StoryID: id, ViewerID: caller.UserID})
		if err != nil {
			return apperrors.FromStore(err, "story view")
		}
		if !first {
			return nil
		}
		return n.Notify(Event{
			Type:       models.NotificationStoryView,
			SenderID:   caller.UserID,
			Content:    "viewed your story",
			Target:     models.StoryRef(id),
			Recipients: []string{story.UserID},
		})
	})
}

// Viewers lists who viewed a story. Only the owner may ask.
func (s *StoryService) Viewers(ctx context.Context, caller auth.Caller, id string, p pagination.Params) (pagination.Page[models.StoryView], error) {
	if err := caller.Require(); err != nil {
		return pagination.Page[models.StoryView]{}, err
	}
	if err := p.Validate(); err != nil {
		return pagination.Page[models.StoryView]{}, err
	}
	story, err := s.repos.Stories.GetStoryByID(ctx, id)
	if err != nil {
		return pagination.Page[models.StoryView]{}, apperrors.FromStore(err, "story")
	}
	if !caller.Is(story.UserID) {
		return pagination.Page[models.StoryView]{}, apperrors.Forbidden("only the owner can see story viewers")
	}
	page, err := s.repos.Stories.GetViewers(ctx, id, p)
	if err != nil {
		return page, apperrors.FromStore(err, "story view")
	}
	return page, nil
}

func (s *StoryService) Delete(ctx context.Context, caller auth.Caller, id string) error {
	if err := caller.Require(); err != nil {
		return err
	}
	story, err := s.repos.Stories.GetStoryByID(ctx, id)
	if err != nil {
		return apperrors.FromStore(err, "story")
	}
	if !caller.Is(story.UserID) {
		return apperrors.Forbidden("you can only delete your own stories")
	}
	return s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		if err := n.Removing(models.StoryRef(id)); err != nil {
			return err
		}
		return apperrors.FromStore(tx.Stories.DeleteStory(ctx, id), "story")
	})
}
